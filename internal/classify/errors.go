package classify

import "errors"

var (
	// ErrUnknownLabel is returned when rules or key types name a label
	// the classifier does not know.
	ErrUnknownLabel = errors.New("unknown page label")

	// ErrDuplicateKeyType is returned when a key type is listed twice.
	ErrDuplicateKeyType = errors.New("duplicate key type")
)
