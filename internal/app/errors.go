package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrThrottled    = errors.New("frame throttled")
	ErrBackpressure = errors.New("frame rejected by queue")
)
