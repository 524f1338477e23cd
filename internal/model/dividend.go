package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Dividend struct {
	ID             int64           `json:"id"`
	AmountPerUnit  decimal.Decimal `json:"amountPerUnit"`
	ExDividendDate time.Time       `json:"exDividendDate"`
	PaymentDate    time.Time       `json:"paymentDate"`
}
