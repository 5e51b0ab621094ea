package mural

import "fmt"

// StatusCodeError возвращается при ответе Mural API со статусом отличным от 2xx.
type StatusCodeError struct {
	StatusCode int
	Body       string
}

func NewStatusCodeError(statusCode int, body string) *StatusCodeError {
	return &StatusCodeError{StatusCode: statusCode, Body: body}
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("mural api status %d: %s", e.StatusCode, e.Body)
}
