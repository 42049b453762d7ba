package models

import "errors"

// Domain errors for the claim subsystem. Handlers translate these into HTTP
// statuses; they are never retried automatically.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNotFound          = errors.New("not found")
	ErrWarrantyExpired   = errors.New("warranty expired")
	ErrDuplicateClaim    = errors.New("an active claim already exists for this purchase")
	ErrInvalidTransition = errors.New("invalid claim status transition")
	ErrInvalidState      = errors.New("claim is not in a refundable state")
	ErrAlreadySettled    = errors.New("refund already settled for this claim")
	ErrValidation        = errors.New("validation failed")
)
