package domain

import "errors"

var (
	ErrInvalidReportDate = errors.New("invalid report date")
	ErrValueOutOfRange   = errors.New("value out of range")
	ErrReportNotFound    = errors.New("report not found")
)
