package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/cache"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/payment"
	"github.com/vibast-solutions/ms-go-billing/app/repository"
)

// CancellationResult is the structured outcome of a cancellation attempt.
// The first successful result for a subscription is authoritative;
// repeats report ALREADY_CANCELLED with the original cancellation date.
type CancellationResult struct {
	Success              bool
	SubscriptionID       string
	Message              string
	CancellationDate     *time.Time
	RemainingAccessUntil *time.Time
	ErrorCode            string
}

type cancelRequest interface {
	GetSubscriptionId() string
	GetCustomerId() string
	GetReason() string
	GetFeedback() string
}

type cancellationSubscriptionRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Subscription, error)
	MarkCancelled(ctx context.Context, subscriptionID string, cancellationDate time.Time, reason entity.CancellationReason, feedback *string) error
}

// CancellationService drives the one-way transition into CANCELLED. It is
// the only component permitted to write that status.
type CancellationService struct {
	subscriptionRepo cancellationSubscriptionRepository
	gateway          payment.Gateway
	cache            *cache.Cache
	events           EventPublisher
	locks            *keyedMutex
	logger           logrus.FieldLogger
	now              func() time.Time
}

func NewCancellationService(
	subscriptionRepo cancellationSubscriptionRepository,
	gateway payment.Gateway,
	c *cache.Cache,
	events EventPublisher,
) *CancellationService {
	return &CancellationService{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		cache:            c,
		events:           events,
		locks:            newKeyedMutex(),
		logger:           factory.NewModuleLogger("cancellation-service"),
		now:              time.Now,
	}
}

// CancelSubscription cancels a subscription, idempotently. Attempts are
// serialized per subscription ID so two concurrent callers cannot both
// observe "not yet cancelled" and both succeed. Unexpected faults are
// converted to an INTERNAL_ERROR result rather than propagated, so the
// caller always receives a structured outcome.
func (s *CancellationService) CancelSubscription(ctx context.Context, req cancelRequest) (result CancellationResult) {
	subscriptionID := req.GetSubscriptionId()
	customerID := req.GetCustomerId()

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.WithFields(logrus.Fields{
				"subscription_id": subscriptionID,
				"panic":           rec,
			}).Error("Cancellation panicked")
			result = CancellationResult{
				SubscriptionID: subscriptionID,
				Message:        fmt.Sprintf("Cancellation failed: %v", rec),
				ErrorCode:      CodeInternalError,
			}
		}
	}()

	reason := entity.CancellationReason(req.GetReason())
	if !entity.IsCancellationReasonAllowed(reason) {
		return CancellationResult{
			SubscriptionID: subscriptionID,
			Message:        "Invalid cancellation reason",
			ErrorCode:      CodeInvalidRequest,
		}
	}

	unlock := s.locks.lock(subscriptionID)
	defer unlock()

	// Durable state, not the cache: cancellation must not act on a view
	// that may be up to a TTL stale.
	subscription, err := s.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		s.logger.WithError(err).WithField("subscription_id", subscriptionID).
			Error("Subscription lookup failed")
		return CancellationResult{
			SubscriptionID: subscriptionID,
			Message:        fmt.Sprintf("Cancellation failed: %v", err),
			ErrorCode:      CodeInternalError,
		}
	}
	if subscription == nil {
		return CancellationResult{
			SubscriptionID: subscriptionID,
			Message:        "Subscription not found",
			ErrorCode:      CodeSubscriptionNotFound,
		}
	}

	if subscription.Status == entity.SubscriptionStatusCancelled {
		return CancellationResult{
			SubscriptionID:   subscriptionID,
			Message:          "Subscription is already cancelled",
			CancellationDate: subscription.CancellationDate,
			ErrorCode:        CodeAlreadyCancelled,
		}
	}

	if err := s.gateway.CancelSubscription(ctx, subscriptionID, string(reason)); err != nil {
		code := CodePayPalError
		var gatewayErr *payment.GatewayError
		if errors.As(err, &gatewayErr) && gatewayErr.Code != "" {
			code = gatewayErr.Code
		}
		s.logger.WithError(err).WithField("subscription_id", subscriptionID).
			Error("Gateway cancellation failed")
		return CancellationResult{
			SubscriptionID: subscriptionID,
			Message:        err.Error(),
			ErrorCode:      code,
		}
	}

	cancellationDate := s.now().UTC()
	var feedback *string
	if value := req.GetFeedback(); value != "" {
		feedback = &value
	}

	if err := s.subscriptionRepo.MarkCancelled(ctx, subscriptionID, cancellationDate, reason, feedback); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotCancellable) {
			// Lost a race with another writer after our read; report the
			// authoritative date from the committed row.
			current, findErr := s.subscriptionRepo.FindByID(ctx, subscriptionID)
			if findErr == nil && current != nil {
				return CancellationResult{
					SubscriptionID:   subscriptionID,
					Message:          "Subscription is already cancelled",
					CancellationDate: current.CancellationDate,
					ErrorCode:        CodeAlreadyCancelled,
				}
			}
		}
		s.logger.WithError(err).WithField("subscription_id", subscriptionID).
			Error("Failed to persist cancellation")
		return CancellationResult{
			SubscriptionID: subscriptionID,
			Message:        fmt.Sprintf("Cancellation failed: %v", err),
			ErrorCode:      CodeInternalError,
		}
	}

	// Invalidation strictly after the durable write, so a concurrent
	// repopulation cannot resurrect ACTIVE state.
	s.cache.InvalidateCustomer(customerID)

	remainingAccess := subscription.NextBillingDate

	s.events.Publish(ctx, Event{
		Name:           EventSubscriptionCancelled,
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		At:             cancellationDate,
		Fields: map[string]interface{}{
			"reason": string(reason),
		},
	})

	s.logger.WithFields(logrus.Fields{
		"subscription_id": subscriptionID,
		"customer_id":     customerID,
		"reason":          string(reason),
	}).Info("Subscription cancelled")

	return CancellationResult{
		Success:              true,
		SubscriptionID:       subscriptionID,
		Message:              "Subscription cancelled successfully",
		CancellationDate:     &cancellationDate,
		RemainingAccessUntil: &remainingAccess,
	}
}
