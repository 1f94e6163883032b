package errors

import "errors"

var (
	ErrInvalidEventInput      = errors.New("invalid event input")
	ErrInvalidTransition      = errors.New("invalid state transition")
	ErrStateNotFound          = errors.New("contribution state not found")
	ErrVersionConflict        = errors.New("contribution state version conflict")
	ErrReplayFailed           = errors.New("ledger replay failed")
	ErrRecalcSuperseded       = errors.New("recalculation superseded by a newer run")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
)
