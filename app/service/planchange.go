package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/cache"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/payment"
	"github.com/vibast-solutions/ms-go-billing/app/plan"
	"github.com/vibast-solutions/ms-go-billing/config"
)

// PlanChangeResult is the structured outcome of a plan-change attempt.
type PlanChangeResult struct {
	Success         bool
	PlanChangeID    string
	SubscriptionID  string
	OldPlan         entity.PlanConfig
	NewPlan         entity.PlanConfig
	Pricing         *plan.PricingCalculation
	EffectiveDate   time.Time
	NextBillingDate time.Time
	Message         string
	ErrorCode       string
}

type planChangeRequest interface {
	GetSubscriptionId() string
	GetCustomerId() string
	GetCurrentPlan() string
	GetNewPlan() string
	GetNextBillingDate() time.Time
	GetCurrentBillingDate() time.Time
}

type planChangeSubscriptionRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Subscription, error)
	Update(ctx context.Context, subscription *entity.Subscription) error
}

// PlanChangeService coordinates mid-cycle plan moves: price with the
// calculator, push to the gateway, persist, invalidate cached views.
type PlanChangeService struct {
	subscriptionRepo planChangeSubscriptionRepository
	gateway          payment.Gateway
	cache            *cache.Cache
	catalog          *plan.Catalog
	calculator       *plan.Calculator
	events           EventPublisher
	cfg              config.CacheConfig
	logger           logrus.FieldLogger
	now              func() time.Time
}

func NewPlanChangeService(
	subscriptionRepo planChangeSubscriptionRepository,
	gateway payment.Gateway,
	c *cache.Cache,
	catalog *plan.Catalog,
	calculator *plan.Calculator,
	events EventPublisher,
	cfg config.CacheConfig,
) *PlanChangeService {
	return &PlanChangeService{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		cache:            c,
		catalog:          catalog,
		calculator:       calculator,
		events:           events,
		cfg:              cfg,
		logger:           factory.NewModuleLogger("plan-change-service"),
		now:              time.Now,
	}
}

// ChangePlan executes a plan change. Nothing is persisted when pricing
// fails or the gateway rejects the update; the subscription keeps its
// current tier. Panics and unexpected faults become INTERNAL_ERROR
// results.
func (s *PlanChangeService) ChangePlan(ctx context.Context, req planChangeRequest) (result PlanChangeResult) {
	subscriptionID := req.GetSubscriptionId()
	customerID := req.GetCustomerId()

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.WithFields(logrus.Fields{
				"subscription_id": subscriptionID,
				"panic":           rec,
			}).Error("Plan change panicked")
			result = PlanChangeResult{
				SubscriptionID: subscriptionID,
				Message:        fmt.Sprintf("Plan change failed: %v", rec),
				ErrorCode:      CodeInternalError,
			}
		}
	}()

	currentTier := entity.PlanTier(req.GetCurrentPlan())
	newTier := entity.PlanTier(req.GetNewPlan())

	pricing, err := s.calculator.CalculatePlanChange(
		currentTier, newTier,
		req.GetCurrentBillingDate(), req.GetNextBillingDate(),
	)
	if err != nil {
		code := CodeInternalError
		switch {
		case errors.Is(err, plan.ErrSamePlan):
			code = CodeSamePlan
		case errors.Is(err, plan.ErrInvalidPlanTier):
			code = CodeInvalidRequest
		}
		return PlanChangeResult{
			SubscriptionID: subscriptionID,
			Message:        err.Error(),
			ErrorCode:      code,
		}
	}

	subscription, err := s.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return PlanChangeResult{
			SubscriptionID: subscriptionID,
			Message:        fmt.Sprintf("Plan change failed: %v", err),
			ErrorCode:      CodeInternalError,
		}
	}
	if subscription == nil {
		return PlanChangeResult{
			SubscriptionID: subscriptionID,
			Message:        "Subscription not found",
			ErrorCode:      CodeSubscriptionNotFound,
		}
	}

	if err := s.gateway.UpdateSubscription(ctx, subscriptionID, gatewayPlanID(newTier), pricing.NewPlanPrice); err != nil {
		s.logger.WithError(err).WithField("subscription_id", subscriptionID).
			Error("Gateway plan update failed")
		return PlanChangeResult{
			SubscriptionID: subscriptionID,
			OldPlan:        pricing.CurrentPlan,
			NewPlan:        pricing.NewPlan,
			Pricing:        &pricing,
			Message:        fmt.Sprintf("Failed to update gateway subscription: %v", err),
			ErrorCode:      CodePayPalUpdateFailed,
		}
	}

	now := s.now().UTC()
	subscription.PlanTier = newTier
	subscription.MonthlyPrice = pricing.NewPlanPrice
	subscription.UpdatedAt = now
	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return PlanChangeResult{
			SubscriptionID: subscriptionID,
			Message:        fmt.Sprintf("Plan change failed: %v", err),
			ErrorCode:      CodeInternalError,
		}
	}

	planChangeID := "pc_" + uuid.NewString()
	s.cache.Set(cache.PlanChangeKey(subscriptionID), pricing, s.cfg.PlanChangeTTL)
	s.cache.InvalidateCustomer(customerID)

	s.events.Publish(ctx, Event{
		Name:           EventPlanChanged,
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		At:             now,
		Fields: map[string]interface{}{
			"old_plan":    string(currentTier),
			"new_plan":    string(newTier),
			"change_type": string(pricing.ChangeType),
			"amount_due":  pricing.AmountDue.StringFixed(2),
		},
	})

	s.logger.WithFields(logrus.Fields{
		"subscription_id": subscriptionID,
		"old_plan":        string(currentTier),
		"new_plan":        string(newTier),
	}).Info("Plan change successful")

	return PlanChangeResult{
		Success:         true,
		PlanChangeID:    planChangeID,
		SubscriptionID:  subscriptionID,
		OldPlan:         pricing.CurrentPlan,
		NewPlan:         pricing.NewPlan,
		Pricing:         &pricing,
		EffectiveDate:   pricing.EffectiveDate,
		NextBillingDate: pricing.NextBillingDate,
		Message:         "Plan changed successfully",
	}
}
