package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// StubGateway stands in when no PayPal credentials are configured. Every
// call fails with a typed gateway error.
type StubGateway struct{}

func NewStubGateway() *StubGateway {
	return &StubGateway{}
}

func (s *StubGateway) GetSubscription(_ context.Context, _ string) (*StatusBlob, error) {
	return nil, notConfigured()
}

func (s *StubGateway) CancelSubscription(_ context.Context, _, _ string) error {
	return notConfigured()
}

func (s *StubGateway) UpdateSubscription(_ context.Context, _, _ string, _ decimal.Decimal) error {
	return notConfigured()
}

func notConfigured() *GatewayError {
	return &GatewayError{Code: "GATEWAY_NOT_CONFIGURED", Message: "paypal gateway is not configured"}
}
