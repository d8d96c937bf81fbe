package domain

import "errors"

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrConflict         = errors.New("record already exists")
	ErrMissingPriceData = errors.New("no ticket prices recorded for screening")
	ErrInvalidClockTime = errors.New("invalid clock time, expected HH:MM")
)
