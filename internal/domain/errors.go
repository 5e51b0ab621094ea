package domain

import (
	"errors"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrInvalidNextToken = errors.New("invalid next token")
	ErrUnknown          = errors.New("unknown error")
)
