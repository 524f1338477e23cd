package model

import (
	"time"

	"github.com/mkarpenko/stock_profit_service/internal/model/marketModel"
	"github.com/shopspring/decimal"
)

// Profit field names on the wire follow the original portfolio API.
type Profit struct {
	TotalProfit     decimal.Decimal `json:"totalProfit"`
	RealizedProfit  decimal.Decimal `json:"realizedStockProfit"`
	DividendProfit  decimal.Decimal `json:"dividendProfit"`
	UnrealizedGains decimal.Decimal `json:"unrealizedGains"`
}

// ProfitReport is the payload the xlsx generator renders: the profit
// breakdown plus the history it was computed from and an optional quote.
type ProfitReport struct {
	Profit       Profit
	Transactions []Transaction
	Dividends    []Dividend
	Quote        *marketModel.Quote
	GeneratedAt  time.Time
}
