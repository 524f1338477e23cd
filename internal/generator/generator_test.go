package generator

import (
	"testing"
	"time"

	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionsInvariants(t *testing.T) {
	gen := NewSeeded(42)

	transactions := gen.Transactions(500)
	require.Len(t, transactions, 500)

	minFee := decimal.RequireFromString("1.00")
	maxFee := decimal.RequireFromString("10.00")

	holdings := 0
	var prev time.Time
	for i, tx := range transactions {
		require.True(t, tx.Side.Valid(), "transaction %d has side %q", i, tx.Side)
		assert.Positive(t, tx.Quantity)
		assert.True(t, tx.Price.GreaterThanOrEqual(decimal.New(1, 0)), "price %s below floor", tx.Price)
		assert.True(t, tx.Fee.GreaterThanOrEqual(minFee) && tx.Fee.LessThanOrEqual(maxFee),
			"fee %s outside [1.00, 10.00]", tx.Fee)
		assert.False(t, tx.Timestamp.Before(prev), "timestamps must be ascending")
		prev = tx.Timestamp

		if tx.Side == model.Buy {
			holdings += tx.Quantity
		} else {
			holdings -= tx.Quantity
		}
		require.GreaterOrEqual(t, holdings, 0, "holdings went negative at transaction %d", i)
	}
}

func TestTransactionsFirstIsBuy(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		gen := NewSeeded(seed)
		transactions := gen.Transactions(10)
		require.NotEmpty(t, transactions)
		assert.Equal(t, model.Buy, transactions[0].Side, "seed %d", seed)
	}
}

func TestDividendsQuarterlySchedule(t *testing.T) {
	gen := NewSeeded(7)

	transactions := gen.Transactions(500)
	dividends := gen.Dividends(transactions)
	require.NotEmpty(t, dividends)

	first := transactions[0].Timestamp
	last := transactions[len(transactions)-1].Timestamp

	minAmount := decimal.RequireFromString("0.50")
	maxAmount := decimal.RequireFromString("2.00")

	for i, div := range dividends {
		wantExDate := first.Add(time.Duration(i+1) * exDividendInterval)
		assert.True(t, div.ExDividendDate.Equal(wantExDate), "dividend %d ex-date", i)
		assert.True(t, div.PaymentDate.Equal(div.ExDividendDate.Add(paymentGracePeriod)),
			"payment date must follow the grace period")
		assert.True(t, div.ExDividendDate.Before(last))
		assert.True(t, div.AmountPerUnit.GreaterThanOrEqual(minAmount) &&
			div.AmountPerUnit.LessThanOrEqual(maxAmount),
			"amount %s outside [0.50, 2.00]", div.AmountPerUnit)
	}
}

func TestDividendsEmptyHistory(t *testing.T) {
	gen := NewSeeded(1)
	assert.Empty(t, gen.Dividends(nil))
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	first := NewSeeded(99).Transactions(50)
	second := NewSeeded(99).Transactions(50)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Side, second[i].Side)
		assert.Equal(t, first[i].Quantity, second[i].Quantity)
		assert.True(t, first[i].Price.Equal(second[i].Price))
	}
}
