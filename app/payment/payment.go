package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StatusBlob is the typed image of the gateway's subscription payload.
// Upstream JSON is mapped into this struct at the boundary; nothing
// dict-shaped travels further inward.
type StatusBlob struct {
	SubscriptionID   string
	Status           string
	PlanID           string
	Price            decimal.Decimal
	Currency         string
	CreateTime       time.Time
	UpdateTime       time.Time
	NextBillingTime  time.Time
	StatusUpdateTime *time.Time
	StatusChangeNote string
}

// Gateway is the payment-provider boundary consumed by the billing
// engine. Implementations own their transport, retries, and timeouts;
// the engine treats any returned error as an ordinary failure to
// propagate.
type Gateway interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*StatusBlob, error)
	CancelSubscription(ctx context.Context, subscriptionID, reason string) error
	UpdateSubscription(ctx context.Context, subscriptionID, planID string, price decimal.Decimal) error
}

// GatewayError carries the provider's own error code so callers can
// surface it unchanged.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
