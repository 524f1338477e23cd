package profit

import "errors"

var (
	// ErrOverSell: a sell quantity could not be fully matched against
	// previously bought lots.
	ErrOverSell = errors.New("error sell quantity exceeds available lots")

	// ErrNegativeHoldings: holdings at an ex-dividend date came out negative,
	// the transaction history is inconsistent.
	ErrNegativeHoldings = errors.New("error negative holdings at ex-dividend date")

	// ErrInvalidScale: rounding scale below zero.
	ErrInvalidScale = errors.New("error rounding scale must be non-negative")

	// ErrZeroQuantity: transaction with non-positive quantity, cannot be prorated.
	ErrZeroQuantity = errors.New("error transaction quantity must be positive")
)
