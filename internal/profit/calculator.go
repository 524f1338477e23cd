// Package profit computes a profit breakdown for a single instrument from a
// history of buy/sell transactions and dividend payments: realized trading
// profit via FIFO lot matching with prorated fees, dividend income gated by
// payment date, and mark-to-market gains on the remaining holdings.
package profit

import (
	"fmt"
	"time"

	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/shopspring/decimal"
)

// Calculator carries only the read-only rounding scale, so a single instance
// can serve concurrent calculations.
type Calculator struct {
	scale int32
}

func NewCalculator(scale int) (*Calculator, error) {
	if scale < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidScale, scale)
	}
	return &Calculator{scale: int32(scale)}, nil
}

// Calculate produces the profit breakdown over the given history. Dividend
// recognition is gated by the current instant.
func (c *Calculator) Calculate(transactions []model.Transaction, dividends []model.Dividend) (model.Profit, error) {
	return c.CalculateAsOf(transactions, dividends, time.Now().UTC())
}

// CalculateAsOf is Calculate with an explicit recognition instant: dividends
// with a payment date after asOf contribute nothing. Inputs need not be
// sorted and are never mutated. Any error discards the whole calculation.
func (c *Calculator) CalculateAsOf(transactions []model.Transaction, dividends []model.Dividend, asOf time.Time) (model.Profit, error) {
	for _, tx := range transactions {
		if tx.Quantity <= 0 {
			return model.Profit{}, fmt.Errorf("%w: transaction %d has quantity %d", ErrZeroQuantity, tx.ID, tx.Quantity)
		}
	}

	txs := sortedTransactions(transactions)
	divs := sortedDividends(dividends)
	events := buildEvents(txs, divs)

	led := newLedger(c.scale)
	dividendProfit := decimal.Zero

	for _, ev := range events {
		switch ev.kind {
		case kindTransaction:
			if err := led.apply(ev.transaction); err != nil {
				return model.Profit{}, err
			}
		case kindDividend:
			income, err := c.dividendIncome(ev.dividend, txs, asOf)
			if err != nil {
				return model.Profit{}, err
			}
			dividendProfit = dividendProfit.Add(income)
		default:
			panic(fmt.Sprintf("unknown event kind %d", ev.kind))
		}
	}

	unrealized := led.unrealizedGains()

	// Unrealized gains are reported separately and stay out of the total.
	total := led.realized.Add(dividendProfit)

	return model.Profit{
		TotalProfit:     total.Round(c.scale),
		RealizedProfit:  led.realized.Round(c.scale),
		DividendProfit:  dividendProfit.Round(c.scale),
		UnrealizedGains: unrealized.Round(c.scale),
	}, nil
}

// dividendIncome is amount-per-unit times the holdings at the ex-dividend
// date, zero for dividends not yet paid as of asOf.
func (c *Calculator) dividendIncome(div model.Dividend, sortedTxs []model.Transaction, asOf time.Time) (decimal.Decimal, error) {
	if div.PaymentDate.After(asOf) {
		return decimal.Zero, nil
	}

	holdings, err := holdingsAt(sortedTxs, div.ExDividendDate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("dividend %d: %w", div.ID, err)
	}

	return div.AmountPerUnit.Mul(decimal.NewFromInt(int64(holdings))), nil
}

// holdingsAt replays the sorted transaction history up to and including the
// given date.
func holdingsAt(sortedTxs []model.Transaction, date time.Time) (int, error) {
	holdings := 0
	for _, tx := range sortedTxs {
		if tx.Timestamp.After(date) {
			break
		}
		if tx.Side == model.Buy {
			holdings += tx.Quantity
		} else {
			holdings -= tx.Quantity
		}
	}

	if holdings < 0 {
		return 0, fmt.Errorf("%w: %d units at %s", ErrNegativeHoldings, holdings, date.Format(time.RFC3339))
	}

	return holdings, nil
}
