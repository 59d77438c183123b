package externalApi

import "errors"

var (
	ErrNotFound    = errors.New("error ticker not found")
	ErrUnavailable = errors.New("error quote service unavailable")
	ErrTimeout     = errors.New("error quote request timed out")
)
