package documents

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTooLarge     = errors.New("document too large")
)
