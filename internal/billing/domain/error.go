package domain

import "errors"

var (
	ErrUnknownPlan      = errors.New("unknown plan")
	ErrBillingDisabled  = errors.New("billing not configured")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidPayload   = errors.New("invalid payload")
)
