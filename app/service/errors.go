package service

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidReason        = errors.New("invalid cancellation reason")
)

// Error codes carried on coordinator results. Gateway-specific codes pass
// through unchanged when the gateway supplies one.
const (
	CodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
	CodeAlreadyCancelled     = "ALREADY_CANCELLED"
	CodePayPalError          = "PAYPAL_ERROR"
	CodePayPalUpdateFailed   = "PAYPAL_UPDATE_FAILED"
	CodeSamePlan             = "SAME_PLAN"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInternalError        = "INTERNAL_ERROR"
)
