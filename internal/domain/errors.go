package domain

import "errors"

var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentAlreadyCompleted = errors.New("payment already completed")
	ErrPaymentExpired          = errors.New("payment expired")
	ErrInvalidAmount           = errors.New("invalid amount")

	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	ErrInvalidEnvelope     = errors.New("invalid envelope")
)
