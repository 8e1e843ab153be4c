package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "PENDING"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

// Terminal reports whether no further status transitions are allowed.
func (s SubscriptionStatus) Terminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}

type CancellationReason string

const (
	CancellationReasonCustomerRequest   CancellationReason = "customer_request"
	CancellationReasonTooExpensive      CancellationReason = "too_expensive"
	CancellationReasonSwitchingServices CancellationReason = "switching_services"
	CancellationReasonNotUsing          CancellationReason = "not_using"
	CancellationReasonOther             CancellationReason = "other"
)

func IsCancellationReasonAllowed(reason CancellationReason) bool {
	switch reason {
	case CancellationReasonCustomerRequest,
		CancellationReasonTooExpensive,
		CancellationReasonSwitchingServices,
		CancellationReasonNotUsing,
		CancellationReasonOther:
		return true
	default:
		return false
	}
}

// Subscription is the durable subscription record. Rows are never deleted;
// cancellation and expiry are soft status transitions.
type Subscription struct {
	ID                   string
	CustomerID           string
	PlanTier             PlanTier
	Status               SubscriptionStatus
	MonthlyPrice         decimal.Decimal
	NextBillingDate      time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CancellationDate     *time.Time
	CancellationReason   *CancellationReason
	CancellationFeedback *string
	SuspensionReason     *string
}
