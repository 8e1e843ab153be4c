package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
)

const (
	EventSubscriptionCancelled = "subscription.cancelled"
	EventUsageThresholdWarning = "usage.threshold.warning"
	EventUsageThresholdAlert   = "usage.threshold.alert"
	EventPlanChanged           = "plan.changed"
)

// Event is emitted by the billing engine for notification collaborators.
// Delivery (email, SMS) is not this service's concern.
type Event struct {
	Name           string
	CustomerID     string
	SubscriptionID string
	At             time.Time
	Fields         map[string]interface{}
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// LogPublisher writes events to the structured log. The default publisher
// until a message-bus collaborator is wired in.
type LogPublisher struct {
	logger logrus.FieldLogger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{logger: factory.NewModuleLogger("billing-events")}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) {
	entry := p.logger.WithFields(logrus.Fields{
		"event":       event.Name,
		"customer_id": event.CustomerID,
		"at":          event.At.UTC().Format(time.RFC3339),
	})
	if event.SubscriptionID != "" {
		entry = entry.WithField("subscription_id", event.SubscriptionID)
	}
	for key, value := range event.Fields {
		entry = entry.WithField(key, value)
	}
	entry.Info("billing_event")
}
