package profit

import (
	"fmt"

	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/shopspring/decimal"
)

// lot is a slice of bought quantity not yet sold. It is the ledger's own
// copy of the buy transaction state, caller records are never mutated.
type lot struct {
	quantity int
	price    decimal.Decimal
	fee      decimal.Decimal
}

// ledger holds the FIFO lot queue and the realized-profit accumulator for a
// single calculation pass.
type ledger struct {
	lots      []lot
	realized  decimal.Decimal
	lastPrice decimal.Decimal
	scale     int32
}

func newLedger(scale int32) *ledger {
	return &ledger{
		realized:  decimal.Zero,
		lastPrice: decimal.Zero,
		scale:     scale,
	}
}

func (l *ledger) apply(tx model.Transaction) error {
	l.lastPrice = tx.Price

	switch tx.Side {
	case model.Buy:
		l.lots = append(l.lots, lot{quantity: tx.Quantity, price: tx.Price, fee: tx.Fee})
		return nil
	case model.Sell:
		return l.sell(tx)
	default:
		return fmt.Errorf("unknown transaction side %q", tx.Side)
	}
}

func (l *ledger) sell(tx model.Transaction) error {
	needed := tx.Quantity

	for needed > 0 && len(l.lots) > 0 {
		head := &l.lots[0]
		consumed := min(head.quantity, needed)

		// Sell fee prorated against the full sell, buy fee against what is
		// left of the lot so it is exactly exhausted with the quantity.
		sellFeeShare := prorate(tx.Fee, consumed, tx.Quantity, l.scale)
		buyFeeShare := prorate(head.fee, consumed, head.quantity, l.scale)

		proceeds := tx.Price.Mul(decimal.NewFromInt(int64(consumed))).Sub(sellFeeShare)
		cost := head.price.Mul(decimal.NewFromInt(int64(consumed))).Add(buyFeeShare)
		l.realized = l.realized.Add(proceeds.Sub(cost))

		head.quantity -= consumed
		head.fee = head.fee.Sub(buyFeeShare)
		needed -= consumed

		if head.quantity == 0 {
			l.lots = l.lots[1:]
		}
	}

	if needed > 0 {
		return fmt.Errorf("%w: %d of %d units unmatched", ErrOverSell, needed, tx.Quantity)
	}

	return nil
}

// remainingHoldings is the unsold quantity across all open lots.
func (l *ledger) remainingHoldings() int {
	holdings := 0
	for _, lt := range l.lots {
		holdings += lt.quantity
	}
	return holdings
}

// unrealizedGains marks the open lots to the last observed trade price.
// Without open holdings it is exactly zero.
func (l *ledger) unrealizedGains() decimal.Decimal {
	holdings := l.remainingHoldings()
	if holdings == 0 {
		return decimal.Zero
	}

	costBasis := decimal.Zero
	for _, lt := range l.lots {
		costBasis = costBasis.Add(lt.price.Mul(decimal.NewFromInt(int64(lt.quantity)))).Add(lt.fee)
	}

	marketValue := l.lastPrice.Mul(decimal.NewFromInt(int64(holdings)))
	return marketValue.Sub(costBasis)
}

// prorate splits total proportionally to part/whole, rounded half up at the
// given scale.
func prorate(total decimal.Decimal, part, whole int, scale int32) decimal.Decimal {
	return total.
		Mul(decimal.NewFromInt(int64(part))).
		DivRound(decimal.NewFromInt(int64(whole)), scale)
}
