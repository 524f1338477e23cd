package profit

import (
	"fmt"
	"sort"
	"time"

	"github.com/mkarpenko/stock_profit_service/internal/model"
)

type eventKind int

const (
	kindTransaction eventKind = iota
	kindDividend
)

// event is a tagged union over a transaction and a dividend. The ordering
// key is the transaction timestamp or the dividend payment date.
type event struct {
	kind        eventKind
	transaction model.Transaction
	dividend    model.Dividend
}

func (e event) at() time.Time {
	switch e.kind {
	case kindTransaction:
		return e.transaction.Timestamp
	case kindDividend:
		return e.dividend.PaymentDate
	default:
		panic(fmt.Sprintf("unknown event kind %d", e.kind))
	}
}

// sortedTransactions returns a sorted copy, it never reorders the caller's
// slice. The stable sort keeps the original order of equal timestamps.
func sortedTransactions(transactions []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(transactions))
	copy(out, transactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func sortedDividends(dividends []model.Dividend) []model.Dividend {
	out := make([]model.Dividend, len(dividends))
	copy(out, dividends)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PaymentDate.Before(out[j].PaymentDate)
	})
	return out
}

// buildEvents merges pre-sorted transactions and dividends into one sequence
// ordered by event key. On equal keys a transaction sorts before a dividend.
func buildEvents(transactions []model.Transaction, dividends []model.Dividend) []event {
	events := make([]event, 0, len(transactions)+len(dividends))

	i, j := 0, 0
	for i < len(transactions) && j < len(dividends) {
		if !transactions[i].Timestamp.After(dividends[j].PaymentDate) {
			events = append(events, event{kind: kindTransaction, transaction: transactions[i]})
			i++
		} else {
			events = append(events, event{kind: kindDividend, dividend: dividends[j]})
			j++
		}
	}
	for ; i < len(transactions); i++ {
		events = append(events, event{kind: kindTransaction, transaction: transactions[i]})
	}
	for ; j < len(dividends); j++ {
		events = append(events, event{kind: kindDividend, dividend: dividends[j]})
	}

	return events
}
