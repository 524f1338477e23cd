package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	TransactionID int64           `db:"transaction_id"`
	Side          string          `db:"side"`
	Quantity      int             `db:"quantity"`
	Price         decimal.Decimal `db:"price"`
	Fee           decimal.Decimal `db:"fee"`
	Ts            time.Time       `db:"ts"`
}
