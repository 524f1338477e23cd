package profit

import (
	"testing"
	"time"

	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBase = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

func at(days int) time.Time {
	return testBase.AddDate(0, 0, days)
}

func tx(id int64, side model.Side, quantity int, price, fee string, ts time.Time) model.Transaction {
	return model.Transaction{
		ID:        id,
		Side:      side,
		Quantity:  quantity,
		Price:     decimal.RequireFromString(price),
		Fee:       decimal.RequireFromString(fee),
		Timestamp: ts,
	}
}

func div(id int64, amount string, exDate, paymentDate time.Time) model.Dividend {
	return model.Dividend{
		ID:             id,
		AmountPerUnit:  decimal.RequireFromString(amount),
		ExDividendDate: exDate,
		PaymentDate:    paymentDate,
	}
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(2)
	require.NoError(t, err)
	return calc
}

func TestNewCalculatorRejectsNegativeScale(t *testing.T) {
	_, err := NewCalculator(-1)
	require.ErrorIs(t, err, ErrInvalidScale)

	_, err = NewCalculator(0)
	require.NoError(t, err)
}

func TestCalculateRealizedProfit(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 10, "100.00", "0", at(0)),
		tx(2, model.Sell, 5, "120.00", "0", at(1)),
	}

	profit, err := calc.CalculateAsOf(transactions, nil, at(30))
	require.NoError(t, err)

	assert.Equal(t, "100.00", profit.RealizedProfit.StringFixed(2))
	assert.Equal(t, "0.00", profit.DividendProfit.StringFixed(2))
	assert.Equal(t, "100.00", profit.TotalProfit.StringFixed(2))
	// 5 units left at cost 500, marked to the last trade price of 120.
	assert.Equal(t, "100.00", profit.UnrealizedGains.StringFixed(2))
}

func TestCalculateUnrealizedGains(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 10, "100.00", "0", at(0)),
		tx(2, model.Sell, 5, "120.00", "0", at(1)),
		tx(3, model.Buy, 2, "130.00", "0", at(2)),
	}

	profit, err := calc.CalculateAsOf(transactions, nil, at(30))
	require.NoError(t, err)

	// 5@100 + 2@130 remain, cost basis 760, last price 130: 130*7 - 760.
	assert.Equal(t, "150.00", profit.UnrealizedGains.StringFixed(2))
	assert.Equal(t, "100.00", profit.RealizedProfit.StringFixed(2))
	// Unrealized gains are informational and excluded from the total.
	assert.Equal(t, "100.00", profit.TotalProfit.StringFixed(2))
}

func TestCalculateFIFOOrdering(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 10, "100.00", "0", at(0)),
		tx(2, model.Buy, 5, "120.00", "0", at(1)),
		tx(3, model.Sell, 12, "150.00", "0", at(2)),
	}

	profit, err := calc.CalculateAsOf(transactions, nil, at(30))
	require.NoError(t, err)

	// 10 units against cost 100, then 2 units against cost 120.
	assert.Equal(t, "560.00", profit.RealizedProfit.StringFixed(2))
}

func TestCalculateDividendIncome(t *testing.T) {
	tests := []struct {
		name          string
		paymentDate   time.Time
		wantDividend  string
		wantTotal     string
	}{
		{
			name:         "payment date before as-of is recognized",
			paymentDate:  at(20),
			wantDividend: "10.00",
			wantTotal:    "10.00",
		},
		{
			name:         "payment date equal to as-of is recognized",
			paymentDate:  at(30),
			wantDividend: "10.00",
			wantTotal:    "10.00",
		},
		{
			name:         "payment date after as-of contributes zero",
			paymentDate:  at(31),
			wantDividend: "0.00",
			wantTotal:    "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := newTestCalculator(t)

			transactions := []model.Transaction{
				tx(1, model.Buy, 10, "100.00", "0", at(0)),
			}
			dividends := []model.Dividend{
				div(1, "1.00", at(10), tt.paymentDate),
			}

			profit, err := calc.CalculateAsOf(transactions, dividends, at(30))
			require.NoError(t, err)

			assert.Equal(t, tt.wantDividend, profit.DividendProfit.StringFixed(2))
			assert.Equal(t, tt.wantTotal, profit.TotalProfit.StringFixed(2))
		})
	}
}

func TestCalculateDividendsAccumulate(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 10, "100.00", "0", at(0)),
		tx(2, model.Sell, 4, "110.00", "0", at(5)),
	}
	dividends := []model.Dividend{
		div(1, "1.00", at(3), at(4)),  // 10 units held
		div(2, "0.50", at(6), at(7)),  // 6 units held
		div(3, "2.00", at(8), at(60)), // not paid as of day 30
	}

	profit, err := calc.CalculateAsOf(transactions, dividends, at(30))
	require.NoError(t, err)

	assert.Equal(t, "13.00", profit.DividendProfit.StringFixed(2))
}

func TestCalculateDividendUsesHoldingsAtExDate(t *testing.T) {
	calc := newTestCalculator(t)

	// The sale happens after the ex-dividend date, so the full position is
	// still entitled even though payment arrives later.
	transactions := []model.Transaction{
		tx(1, model.Buy, 10, "100.00", "0", at(0)),
		tx(2, model.Sell, 10, "110.00", "0", at(5)),
	}
	dividends := []model.Dividend{
		div(1, "1.00", at(3), at(10)),
	}

	profit, err := calc.CalculateAsOf(transactions, dividends, at(30))
	require.NoError(t, err)

	assert.Equal(t, "10.00", profit.DividendProfit.StringFixed(2))
}

func TestCalculateOverSell(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 10, "100.00", "0", at(0)),
		tx(2, model.Sell, 20, "120.00", "0", at(1)),
	}

	_, err := calc.CalculateAsOf(transactions, nil, at(30))
	require.ErrorIs(t, err, ErrOverSell)
}

func TestCalculateNegativeHoldings(t *testing.T) {
	calc := newTestCalculator(t)

	// The dividend is paid before the oversized sell is reached in event
	// order, but its ex-date lies beyond the sell, exposing the inconsistent
	// history through the holdings replay.
	transactions := []model.Transaction{
		tx(1, model.Buy, 5, "100.00", "0", at(0)),
		tx(2, model.Sell, 8, "110.00", "0", at(2)),
	}
	dividends := []model.Dividend{
		div(1, "1.00", at(3), at(1)),
	}

	_, err := calc.CalculateAsOf(transactions, dividends, at(30))
	require.ErrorIs(t, err, ErrNegativeHoldings)
}

func TestCalculateZeroQuantity(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 0, "100.00", "0", at(0)),
	}

	_, err := calc.CalculateAsOf(transactions, nil, at(30))
	require.ErrorIs(t, err, ErrZeroQuantity)
}

func TestCalculateFeeProration(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 10, "100.00", "5.00", at(0)),
		tx(2, model.Sell, 5, "120.00", "3.00", at(1)),
	}

	profit, err := calc.CalculateAsOf(transactions, nil, at(30))
	require.NoError(t, err)

	// proceeds 600 - 1.50 sell fee share, cost 500 + 2.50 buy fee share.
	assert.Equal(t, "96.00", profit.RealizedProfit.StringFixed(2))
	// 5 units left, 2.50 of the buy fee still attached: 120*5 - (500 + 2.50).
	assert.Equal(t, "97.50", profit.UnrealizedGains.StringFixed(2))
}

func TestCalculateProrationRoundsHalfUp(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 3, "100.00", "1.00", at(0)),
		tx(2, model.Sell, 1, "100.00", "0", at(1)),
	}

	profit, err := calc.CalculateAsOf(transactions, nil, at(30))
	require.NoError(t, err)

	// Buy fee share is 1.00 * 1/3 = 0.33 at scale 2.
	assert.Equal(t, "-0.33", profit.RealizedProfit.StringFixed(2))
}

func TestCalculateUnsortedInputs(t *testing.T) {
	calc := newTestCalculator(t)

	sorted := []model.Transaction{
		tx(1, model.Buy, 10, "100.00", "0", at(0)),
		tx(2, model.Buy, 5, "120.00", "0", at(1)),
		tx(3, model.Sell, 12, "150.00", "0", at(2)),
	}
	shuffled := []model.Transaction{sorted[2], sorted[0], sorted[1]}

	dividends := []model.Dividend{
		div(2, "0.50", at(3), at(4)),
		div(1, "1.00", at(1), at(2)),
	}

	want, err := calc.CalculateAsOf(sorted, dividends, at(30))
	require.NoError(t, err)

	got, err := calc.CalculateAsOf(shuffled, dividends, at(30))
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestCalculateDeterminism(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(1, model.Buy, 10, "100.37", "1.13", at(0)),
		tx(2, model.Buy, 7, "98.41", "1.00", at(1)),
		tx(3, model.Sell, 12, "103.79", "2.27", at(2)),
	}
	dividends := []model.Dividend{
		div(1, "0.73", at(1), at(3)),
	}

	first, err := calc.CalculateAsOf(transactions, dividends, at(30))
	require.NoError(t, err)

	second, err := calc.CalculateAsOf(transactions, dividends, at(30))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.RealizedProfit.Add(first.DividendProfit).Equal(first.TotalProfit))
}

func TestCalculateDoesNotMutateInputs(t *testing.T) {
	calc := newTestCalculator(t)

	transactions := []model.Transaction{
		tx(3, model.Sell, 12, "150.00", "4.00", at(2)),
		tx(1, model.Buy, 10, "100.00", "5.00", at(0)),
		tx(2, model.Buy, 5, "120.00", "2.00", at(1)),
	}

	_, err := calc.CalculateAsOf(transactions, nil, at(30))
	require.NoError(t, err)

	// Neither the order nor the lot-consumed quantities and fees leak back.
	assert.Equal(t, int64(3), transactions[0].ID)
	assert.Equal(t, 10, transactions[1].Quantity)
	assert.Equal(t, "5.00", transactions[1].Fee.StringFixed(2))
	assert.Equal(t, 5, transactions[2].Quantity)
	assert.Equal(t, "2.00", transactions[2].Fee.StringFixed(2))
}

func TestCalculateEmptyHistory(t *testing.T) {
	calc := newTestCalculator(t)

	profit, err := calc.CalculateAsOf(nil, nil, at(0))
	require.NoError(t, err)

	assert.Equal(t, "0.00", profit.TotalProfit.StringFixed(2))
	assert.Equal(t, "0.00", profit.RealizedProfit.StringFixed(2))
	assert.Equal(t, "0.00", profit.DividendProfit.StringFixed(2))
	assert.Equal(t, "0.00", profit.UnrealizedGains.StringFixed(2))
}

func TestCalculateDividendWithoutHoldings(t *testing.T) {
	calc := newTestCalculator(t)

	dividends := []model.Dividend{
		div(1, "1.00", at(1), at(2)),
	}

	profit, err := calc.CalculateAsOf(nil, dividends, at(30))
	require.NoError(t, err)

	assert.Equal(t, "0.00", profit.DividendProfit.StringFixed(2))
}
