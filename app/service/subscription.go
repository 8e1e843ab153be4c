package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/cache"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/payment"
	"github.com/vibast-solutions/ms-go-billing/config"
)

// Gateway status vocabulary, mapped onto the five-state model in exactly
// one place. Unrecognized upstream statuses default to ACTIVE and are
// logged, never silently dropped.
var gatewayStatusMap = map[string]entity.SubscriptionStatus{
	"APPROVAL_PENDING": entity.SubscriptionStatusPending,
	"APPROVED":         entity.SubscriptionStatusActive,
	"ACTIVE":           entity.SubscriptionStatusActive,
	"SUSPENDED":        entity.SubscriptionStatusSuspended,
	"CANCELLED":        entity.SubscriptionStatusCancelled,
	"EXPIRED":          entity.SubscriptionStatusExpired,
}

var gatewayPlanMap = map[string]entity.PlanTier{
	"PLAN_SOLO_PRO":     entity.PlanTierSoloPro,
	"PLAN_PROFESSIONAL": entity.PlanTierProfessional,
	"PLAN_ENTERPRISE":   entity.PlanTierEnterprise,
}

type subscriptionLookupRepository interface {
	FindByCustomer(ctx context.Context, customerID string) (*entity.Subscription, error)
}

// SubscriptionService is the single source of truth for a customer's
// subscription status. Reads are cache-first with a short TTL; misses go
// to the payment gateway.
type SubscriptionService struct {
	gateway payment.Gateway
	repo    subscriptionLookupRepository
	cache   *cache.Cache
	cfg     config.CacheConfig
	logger  logrus.FieldLogger
}

func NewSubscriptionService(gateway payment.Gateway, repo subscriptionLookupRepository, c *cache.Cache, cfg config.CacheConfig) *SubscriptionService {
	return &SubscriptionService{
		gateway: gateway,
		repo:    repo,
		cache:   c,
		cfg:     cfg,
		logger:  factory.NewModuleLogger("subscription-service"),
	}
}

// FindCustomerSubscription reads the customer's durable subscription
// record, bypassing both the cache and the gateway. Returns nil when the
// customer has none.
func (s *SubscriptionService) FindCustomerSubscription(ctx context.Context, customerID string) (*entity.Subscription, error) {
	return s.repo.FindByCustomer(ctx, customerID)
}

// GetSubscriptionStatus returns the customer's subscription record,
// serving from the cache inside its TTL window unless forceRefresh is
// set. On a miss the authoritative state is fetched from the gateway and
// cached. An empty subscriptionID is resolved from the durable record.
// A gateway failure propagates to the caller; there is no stale-cache
// fallback for billing state.
func (s *SubscriptionService) GetSubscriptionStatus(
	ctx context.Context,
	customerID, subscriptionID string,
	forceRefresh bool,
) (*entity.Subscription, error) {
	key := cache.SubscriptionKey(customerID)

	if !forceRefresh {
		if cached, ok := s.cache.Get(key); ok {
			if subscription, ok := cached.(*entity.Subscription); ok {
				return subscription, nil
			}
		}
	}

	if subscriptionID == "" {
		record, err := s.repo.FindByCustomer(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, ErrSubscriptionNotFound
		}
		subscriptionID = record.ID
	}

	blob, err := s.gateway.GetSubscription(ctx, subscriptionID)
	if err != nil {
		s.logger.WithError(err).WithField("subscription_id", subscriptionID).
			Error("Gateway subscription fetch failed")
		return nil, err
	}

	subscription := s.mapBlob(blob, customerID)
	s.cache.Set(key, subscription, s.cfg.SubscriptionTTL)

	return subscription, nil
}

// InvalidateCustomer drops every cached view for the customer. Called by
// webhook handlers when the gateway reports a change out of band.
func (s *SubscriptionService) InvalidateCustomer(customerID string) {
	s.cache.InvalidateCustomer(customerID)
	s.logger.WithField("customer_id", customerID).Info("Invalidated customer cache")
}

func (s *SubscriptionService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

func (s *SubscriptionService) mapBlob(blob *payment.StatusBlob, customerID string) *entity.Subscription {
	status, ok := gatewayStatusMap[blob.Status]
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"subscription_id": blob.SubscriptionID,
			"status":          blob.Status,
		}).Warn("Unknown gateway subscription status, defaulting to ACTIVE")
		status = entity.SubscriptionStatusActive
	}

	tier, ok := gatewayPlanMap[blob.PlanID]
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"subscription_id": blob.SubscriptionID,
			"plan_id":         blob.PlanID,
		}).Warn("Unknown gateway plan id, defaulting to solo_pro")
		tier = entity.PlanTierSoloPro
	}

	subscription := &entity.Subscription{
		ID:              blob.SubscriptionID,
		CustomerID:      customerID,
		PlanTier:        tier,
		Status:          status,
		MonthlyPrice:    blob.Price,
		NextBillingDate: blob.NextBillingTime,
		CreatedAt:       blob.CreateTime,
		UpdatedAt:       blob.UpdateTime,
	}

	switch status {
	case entity.SubscriptionStatusCancelled:
		if blob.StatusUpdateTime != nil {
			value := *blob.StatusUpdateTime
			subscription.CancellationDate = &value
		}
	case entity.SubscriptionStatusSuspended:
		if blob.StatusChangeNote != "" {
			note := blob.StatusChangeNote
			subscription.SuspensionReason = &note
		}
	}

	return subscription
}

// gatewayPlanID is the reverse of gatewayPlanMap, kept in this file so
// the two vocabularies stay together. Used when pushing plan changes
// upstream.
func gatewayPlanID(tier entity.PlanTier) string {
	for id, t := range gatewayPlanMap {
		if t == tier {
			return id
		}
	}
	return ""
}
