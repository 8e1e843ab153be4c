package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/cache"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/plan"
	"github.com/vibast-solutions/ms-go-billing/config"
)

type UsageThreshold string

const (
	ThresholdNormal  UsageThreshold = "NORMAL"
	ThresholdWarning UsageThreshold = "WARNING"
	ThresholdAlert   UsageThreshold = "ALERT"
)

// ClassifyUsage maps an uncapped usage percentage onto the threshold
// state machine. Brackets are closed at the lower bound: 80.0 is WARNING
// and 100.0 is ALERT.
func ClassifyUsage(percentageUsed float64) UsageThreshold {
	switch {
	case percentageUsed >= 100:
		return ThresholdAlert
	case percentageUsed >= 80:
		return ThresholdWarning
	default:
		return ThresholdNormal
	}
}

// UsageMetrics is a point-in-time view of a customer's consumption
// against their plan limit. PercentageUsed is uncapped so overage keeps
// driving the ALERT threshold; customer-facing summaries should use
// DisplayPercentage.
type UsageMetrics struct {
	CustomerID       string
	PlanTier         entity.PlanTier
	CallMinutesUsed  float64
	CallMinutesLimit int
	PercentageUsed   float64
	Threshold        UsageThreshold
	PeriodStart      time.Time
	PeriodEnd        time.Time
	LastUpdated      time.Time
}

// DisplayPercentage caps the percentage to the 0-100 range for display.
func (m UsageMetrics) DisplayPercentage() float64 {
	if m.PercentageUsed > 100 {
		return 100
	}
	if m.PercentageUsed < 0 {
		return 0
	}
	return m.PercentageUsed
}

// ThresholdCheck is the result of evaluating a customer's usage against
// the warning and alert thresholds.
type ThresholdCheck struct {
	Threshold        UsageThreshold
	PercentageUsed   float64
	ShouldWarn       bool
	ShouldAlert      bool
	Message          string
	UpgradeSuggested bool
}

type usageSubscriptionRepository interface {
	FindByCustomer(ctx context.Context, customerID string) (*entity.Subscription, error)
}

type usageRepository interface {
	AddMinutes(ctx context.Context, usage *entity.Usage) error
	ListOpenPeriods(ctx context.Context, periodStart time.Time) ([]*entity.Usage, error)
}

type cachedUsage struct {
	CallMinutesUsed float64
	CallCount       int
	LastUpdated     time.Time
}

// UsageService accumulates call-minute consumption per customer per
// billing period and classifies it against plan limits.
type UsageService struct {
	usageRepo        usageRepository
	subscriptionRepo usageSubscriptionRepository
	cache            *cache.Cache
	catalog          *plan.Catalog
	events           EventPublisher
	cfg              config.CacheConfig
	locks            *keyedMutex
	logger           logrus.FieldLogger
	now              func() time.Time
}

func NewUsageService(
	usageRepo usageRepository,
	subscriptionRepo usageSubscriptionRepository,
	c *cache.Cache,
	catalog *plan.Catalog,
	events EventPublisher,
	cfg config.CacheConfig,
) *UsageService {
	return &UsageService{
		usageRepo:        usageRepo,
		subscriptionRepo: subscriptionRepo,
		cache:            c,
		catalog:          catalog,
		events:           events,
		cfg:              cfg,
		locks:            newKeyedMutex(),
		logger:           factory.NewModuleLogger("usage-service"),
		now:              time.Now,
	}
}

// RecordUsage appends minutes to the customer's live usage record for the
// current billing period and writes the running total through the cache.
// Calls for the same customer are serialized so concurrent read-modify-
// writes of the cached total cannot lose updates; the durable increment
// is additionally atomic at the SQL layer.
//
// A repository failure is logged but does not fail the call: the cached
// running total still advances so metering keeps a best-effort record
// through a storage outage.
func (s *UsageService) RecordUsage(ctx context.Context, customerID string, minutes float64) error {
	if minutes < 0 {
		return fmt.Errorf("%w: minutes must be non-negative", ErrInvalidRequest)
	}

	unlock := s.locks.lock(customerID)
	defer unlock()

	now := s.now().UTC()
	periodStart, periodEnd := entity.BillingPeriod(now)

	limit := 0
	subscription, err := s.subscriptionRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customerID).
			Warn("Subscription lookup failed while recording usage")
	} else if subscription != nil {
		if cfg, err := s.catalog.Get(subscription.PlanTier); err == nil {
			limit = cfg.CallMinutesLimit
		}
	}

	if err := s.usageRepo.AddMinutes(ctx, &entity.Usage{
		CustomerID:       customerID,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		CallMinutesUsed:  minutes,
		CallMinutesLimit: limit,
		LastUpdated:      now,
	}); err != nil {
		s.logger.WithError(err).WithField("customer_id", customerID).
			Error("Failed to persist usage record")
	}

	key := cache.UsageKey(customerID)
	current := cachedUsage{LastUpdated: now}
	if cached, ok := s.cache.Get(key); ok {
		if usage, ok := cached.(cachedUsage); ok {
			current = usage
		}
	}

	current.CallMinutesUsed += minutes
	current.CallCount++
	current.LastUpdated = now
	s.cache.Set(key, current, s.cfg.UsageTTL)

	s.logger.WithFields(logrus.Fields{
		"customer_id":  customerID,
		"minutes":      minutes,
		"period_total": current.CallMinutesUsed,
		"call_count":   current.CallCount,
	}).Info("Usage recorded")

	return nil
}

// GetUsageMetrics returns the customer's metered consumption for the
// current billing period. A cache miss means no usage has been recorded
// inside the TTL window and degrades to zero; it is never an error.
func (s *UsageService) GetUsageMetrics(ctx context.Context, customerID string, tier entity.PlanTier) UsageMetrics {
	cfg, err := s.catalog.Get(tier)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"customer_id": customerID,
			"plan_tier":   tier,
		}).Warn("Invalid plan tier, defaulting to solo_pro")
		cfg, _ = s.catalog.Get(entity.PlanTierSoloPro)
	}

	now := s.now().UTC()
	periodStart, periodEnd := entity.BillingPeriod(now)

	used := 0.0
	lastUpdated := now
	if cached, ok := s.cache.Get(cache.UsageKey(customerID)); ok {
		if usage, ok := cached.(cachedUsage); ok {
			used = usage.CallMinutesUsed
			lastUpdated = usage.LastUpdated
		}
	}

	percentage := 0.0
	if cfg.CallMinutesLimit > 0 {
		percentage = used / float64(cfg.CallMinutesLimit) * 100
	}

	return UsageMetrics{
		CustomerID:       customerID,
		PlanTier:         cfg.Tier,
		CallMinutesUsed:  used,
		CallMinutesLimit: cfg.CallMinutesLimit,
		PercentageUsed:   percentage,
		Threshold:        ClassifyUsage(percentage),
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		LastUpdated:      lastUpdated,
	}
}

// CheckUsageThresholds evaluates the customer's usage against the
// warning and alert thresholds and emits the matching event.
func (s *UsageService) CheckUsageThresholds(ctx context.Context, customerID string, tier entity.PlanTier) ThresholdCheck {
	metrics := s.GetUsageMetrics(ctx, customerID, tier)

	check := ThresholdCheck{
		Threshold:      metrics.Threshold,
		PercentageUsed: metrics.PercentageUsed,
		ShouldWarn:     metrics.Threshold == ThresholdWarning,
		ShouldAlert:    metrics.Threshold == ThresholdAlert,
	}

	switch metrics.Threshold {
	case ThresholdAlert:
		check.Message = fmt.Sprintf(
			"You've used %.0f of %d minutes (%.1f%%). Consider upgrading your plan.",
			metrics.CallMinutesUsed, metrics.CallMinutesLimit, metrics.PercentageUsed,
		)
		check.UpgradeSuggested = true
		s.events.Publish(ctx, Event{
			Name:       EventUsageThresholdAlert,
			CustomerID: customerID,
			At:         s.now().UTC(),
			Fields: map[string]interface{}{
				"percentage_used": metrics.PercentageUsed,
				"plan_tier":       string(metrics.PlanTier),
			},
		})
	case ThresholdWarning:
		check.Message = fmt.Sprintf(
			"You've used %.0f of %d minutes (%.1f%%). You're approaching your limit.",
			metrics.CallMinutesUsed, metrics.CallMinutesLimit, metrics.PercentageUsed,
		)
		s.events.Publish(ctx, Event{
			Name:       EventUsageThresholdWarning,
			CustomerID: customerID,
			At:         s.now().UTC(),
			Fields: map[string]interface{}{
				"percentage_used": metrics.PercentageUsed,
				"plan_tier":       string(metrics.PlanTier),
			},
		})
	}

	return check
}

// RunThresholdSweepBatch walks the durable usage rows for the current
// billing period and emits warning and alert events for customers over
// their brackets. Driven by the jobs command; works from persisted
// totals so it stays correct across restarts and cold caches.
func (s *UsageService) RunThresholdSweepBatch(ctx context.Context) error {
	now := s.now().UTC()
	periodStart, _ := entity.BillingPeriod(now)

	rows, err := s.usageRepo.ListOpenPeriods(ctx, periodStart)
	if err != nil {
		return fmt.Errorf("list open usage periods: %w", err)
	}

	var warned, alerted int
	for _, row := range rows {
		limit := row.CallMinutesLimit
		if limit <= 0 {
			continue
		}

		percentage := row.CallMinutesUsed / float64(limit) * 100
		threshold := ClassifyUsage(percentage)
		fields := map[string]interface{}{
			"percentage_used": percentage,
		}

		switch threshold {
		case ThresholdAlert:
			alerted++
			s.events.Publish(ctx, Event{
				Name:       EventUsageThresholdAlert,
				CustomerID: row.CustomerID,
				At:         now,
				Fields:     fields,
			})
		case ThresholdWarning:
			warned++
			s.events.Publish(ctx, Event{
				Name:       EventUsageThresholdWarning,
				CustomerID: row.CustomerID,
				At:         now,
				Fields:     fields,
			})
		}
	}

	s.logger.WithFields(logrus.Fields{
		"customers": len(rows),
		"warned":    warned,
		"alerted":   alerted,
	}).Info("Usage threshold sweep completed")

	return nil
}

// InvalidateUsage drops the customer's cached running total.
func (s *UsageService) InvalidateUsage(customerID string) {
	s.cache.Delete(cache.UsageKey(customerID))
}
