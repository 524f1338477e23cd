// Package generator produces random but internally consistent transaction
// and dividend histories for the demo calculation endpoints.
package generator

import (
	"math/rand"
	"time"

	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/shopspring/decimal"
)

const (
	historyStartDaysAgo = 730
	historyEndDaysAgo   = 30

	maxBuyQuantity = 100

	feeRate = "0.005"
	minFee  = "1.00"
	maxFee  = "10.00"

	exDividendInterval = 90 * 24 * time.Hour
	paymentGracePeriod = 10 * 24 * time.Hour

	priceScale = 2
)

var (
	meanPrice   = decimal.RequireFromString("100.00")
	stddevPrice = decimal.RequireFromString("20.00")
)

type Generator struct {
	rng *rand.Rand
}

func New() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a deterministic generator, used in tests.
func NewSeeded(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Transactions generates n transactions over the last two years (ending a
// month ago) with strictly non-negative running holdings: the first
// transaction and any transaction at zero holdings is a buy, and sells never
// exceed the position.
func (g *Generator) Transactions(n int) []model.Transaction {
	transactions := make([]model.Transaction, 0, n)

	startTime := time.Now().UTC().Add(-historyStartDaysAgo * 24 * time.Hour)
	endTime := time.Now().UTC().Add(-historyEndDaysAgo * 24 * time.Hour)
	totalMinutes := int64(endTime.Sub(startTime).Minutes())

	totalHoldings := 0
	currentTimestamp := startTime

	for i := 0; i < n; i++ {
		side := model.Buy
		if totalHoldings > 0 && g.rng.Intn(2) == 0 {
			side = model.Sell
		}

		var quantity int
		if side == model.Buy {
			quantity = g.rng.Intn(maxBuyQuantity) + 1
			totalHoldings += quantity
		} else {
			quantity = g.rng.Intn(totalHoldings) + 1
			totalHoldings -= quantity
		}

		price := g.normalPrice()
		fee := transactionFee(price.Mul(decimal.NewFromInt(int64(quantity))))

		elapsed := int64(currentTimestamp.Sub(startTime).Minutes())
		if step := (totalMinutes - elapsed) / int64(n-i); step > 0 {
			currentTimestamp = currentTimestamp.Add(time.Duration(g.rng.Int63n(step)) * time.Minute)
		}

		transactions = append(transactions, model.Transaction{
			Side:      side,
			Quantity:  quantity,
			Price:     price,
			Fee:       fee,
			Timestamp: currentTimestamp,
		})
	}

	return transactions
}

// Dividends generates quarterly dividends spanning the transaction history:
// ex-dates every 90 days starting 90 days after the first transaction, each
// paid after a 10-day grace period.
func (g *Generator) Dividends(transactions []model.Transaction) []model.Dividend {
	if len(transactions) == 0 {
		return nil
	}

	var dividends []model.Dividend

	endDate := transactions[len(transactions)-1].Timestamp
	exDividendDate := transactions[0].Timestamp.Add(exDividendInterval)

	for exDividendDate.Before(endDate) {
		// Amount per unit uniform in [0.50, 2.00).
		amount := decimal.NewFromFloat(0.5 + 1.5*g.rng.Float64()).Round(priceScale)

		dividends = append(dividends, model.Dividend{
			AmountPerUnit:  amount,
			ExDividendDate: exDividendDate,
			PaymentDate:    exDividendDate.Add(paymentGracePeriod),
		})

		exDividendDate = exDividendDate.Add(exDividendInterval)
	}

	return dividends
}

// normalPrice draws from N(100, 20) with a floor of 1.
func (g *Generator) normalPrice() decimal.Decimal {
	price := meanPrice.Add(stddevPrice.Mul(decimal.NewFromFloat(g.rng.NormFloat64())))
	if price.LessThan(decimal.New(1, 0)) {
		price = decimal.New(1, 0)
	}
	return price.Round(priceScale)
}

// transactionFee is 0.5% of the gross amount clamped to [1.00, 10.00].
func transactionFee(grossAmount decimal.Decimal) decimal.Decimal {
	fee := grossAmount.Mul(decimal.RequireFromString(feeRate))
	switch {
	case fee.LessThan(decimal.RequireFromString(minFee)):
		fee = decimal.RequireFromString(minFee)
	case fee.GreaterThan(decimal.RequireFromString(maxFee)):
		fee = decimal.RequireFromString(maxFee)
	}
	return fee.Round(priceScale)
}
