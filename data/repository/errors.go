package repository

import "errors"

var (
	ErrNotFound = errors.New("error not found")

	// ErrDataCorrupted means neither the portfolio file nor its backup could
	// be parsed and validated. The caller falls back to an empty portfolio;
	// the files are left on disk.
	ErrDataCorrupted = errors.New("error portfolio data corrupted")

	// File-system failures, distinct from corruption: the data may be fine,
	// we just could not read or write it.
	ErrPermissionDenied  = errors.New("error insufficient file permissions")
	ErrInsufficientSpace = errors.New("error insufficient disk space")
	ErrIOFailure         = errors.New("error file i/o failed")
)
