package resumes

import "errors"

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicate is returned with the existing resume when the same text was already uploaded.
	ErrDuplicate = errors.New("a resume with the same content already exists")
)
