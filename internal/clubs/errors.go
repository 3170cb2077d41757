package clubs

import "errors"

var (
	ErrNotFound     = errors.New("club not found")
	ErrInvalidInput = errors.New("invalid input")
)
