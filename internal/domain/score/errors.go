package score

import "errors"

// Sentinel kinds for engine configuration errors.
var (
	ErrNoBands   = errors.New("no classification bands configured")
	ErrBandGap   = errors.New("classification bands must start at 0")
	ErrBandOrder = errors.New("classification bands must be strictly ascending")
	ErrBandRange = errors.New("classification band boundary exceeds maximum score")
	ErrNoTiers   = errors.New("no message tiers configured")
	ErrTierGap   = errors.New("message tiers must start at 0")
	ErrTierOrder = errors.New("message tiers must be strictly ascending")
	ErrTierRange = errors.New("message tier boundary exceeds maximum score")
)
