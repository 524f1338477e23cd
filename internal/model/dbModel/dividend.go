package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Dividend struct {
	DividendID     int64           `db:"dividend_id"`
	AmountPerUnit  decimal.Decimal `db:"amount_per_unit"`
	ExDividendDate time.Time       `db:"ex_dividend_date"`
	PaymentDate    time.Time       `db:"payment_date"`
}
