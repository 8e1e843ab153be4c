package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-billing/app/cache"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/plan"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

type mockPlanChangeRepo struct {
	subscription *entity.Subscription
	findErr      error
	updateErr    error
	updated      *entity.Subscription
}

func (m *mockPlanChangeRepo) FindByID(_ context.Context, id string) (*entity.Subscription, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.subscription == nil || m.subscription.ID != id {
		return nil, nil
	}
	copied := *m.subscription
	return &copied, nil
}

func (m *mockPlanChangeRepo) Update(_ context.Context, subscription *entity.Subscription) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = subscription
	return nil
}

func planChangeRequestFixture() *types.PlanChangeRequest {
	return &types.PlanChangeRequest{
		CustomerId:         "cust-1",
		SubscriptionId:     "sub-1",
		CurrentPlan:        string(entity.PlanTierSoloPro),
		NewPlan:            string(entity.PlanTierProfessional),
		CurrentBillingDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		NextBillingDate:    time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
	}
}

func newTestPlanChangeService(repo *mockPlanChangeRepo, gateway *mockGateway, billingCache *cache.Cache, events EventPublisher) *PlanChangeService {
	if repo == nil {
		repo = &mockPlanChangeRepo{subscription: activeSubscription()}
	}
	if gateway == nil {
		gateway = &mockGateway{}
	}
	if billingCache == nil {
		billingCache = cache.New()
	}
	if events == nil {
		events = &capturePublisher{}
	}
	catalog := plan.NewCatalog()
	calculator := plan.NewCalculator(catalog)
	svc := NewPlanChangeService(repo, gateway, billingCache, catalog, calculator, events, testCacheConfig())
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestChangePlanSuccess(t *testing.T) {
	repo := &mockPlanChangeRepo{subscription: activeSubscription()}
	events := &capturePublisher{}
	billingCache := cache.New()
	billingCache.Set(cache.SubscriptionKey("cust-1"), "stale", time.Hour)

	svc := newTestPlanChangeService(repo, nil, billingCache, events)

	result := svc.ChangePlan(context.Background(), planChangeRequestFixture())
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if !strings.HasPrefix(result.PlanChangeID, "pc_") {
		t.Fatalf("unexpected plan change id: %s", result.PlanChangeID)
	}
	if result.Pricing == nil {
		t.Fatal("expected pricing on a successful change")
	}
	if result.Pricing.ChangeType != entity.PlanChangeUpgrade {
		t.Fatalf("unexpected change type: %s", result.Pricing.ChangeType)
	}
	if result.Pricing.AmountDue.IsNegative() {
		t.Fatalf("amount due must not be negative: %s", result.Pricing.AmountDue.StringFixed(2))
	}

	if repo.updated == nil {
		t.Fatal("subscription should be persisted")
	}
	if repo.updated.PlanTier != entity.PlanTierProfessional {
		t.Fatalf("unexpected persisted tier: %s", repo.updated.PlanTier)
	}
	if repo.updated.MonthlyPrice.StringFixed(2) != "499.00" {
		t.Fatalf("unexpected persisted price: %s", repo.updated.MonthlyPrice.StringFixed(2))
	}

	if _, ok := billingCache.Get(cache.SubscriptionKey("cust-1")); ok {
		t.Fatal("customer cache should be invalidated after a plan change")
	}
	if _, ok := billingCache.Get(cache.PlanChangeKey("sub-1")); !ok {
		t.Fatal("pricing should be cached under the plan change key")
	}
	if len(events.byName(EventPlanChanged)) != 1 {
		t.Fatal("expected a plan.changed event")
	}
}

func TestChangePlanSamePlan(t *testing.T) {
	svc := newTestPlanChangeService(nil, nil, nil, nil)

	req := planChangeRequestFixture()
	req.NewPlan = req.CurrentPlan
	result := svc.ChangePlan(context.Background(), req)
	if result.Success || result.ErrorCode != CodeSamePlan {
		t.Fatalf("expected SAME_PLAN, got %+v", result)
	}
}

func TestChangePlanInvalidTier(t *testing.T) {
	svc := newTestPlanChangeService(nil, nil, nil, nil)

	req := planChangeRequestFixture()
	req.NewPlan = "platinum"
	result := svc.ChangePlan(context.Background(), req)
	if result.Success || result.ErrorCode != CodeInvalidRequest {
		t.Fatalf("expected INVALID_REQUEST, got %+v", result)
	}
}

func TestChangePlanSubscriptionNotFound(t *testing.T) {
	repo := &mockPlanChangeRepo{}
	svc := newTestPlanChangeService(repo, nil, nil, nil)

	result := svc.ChangePlan(context.Background(), planChangeRequestFixture())
	if result.Success || result.ErrorCode != CodeSubscriptionNotFound {
		t.Fatalf("expected SUBSCRIPTION_NOT_FOUND, got %+v", result)
	}
}

func TestChangePlanGatewayFailureLeavesStateUntouched(t *testing.T) {
	repo := &mockPlanChangeRepo{subscription: activeSubscription()}
	gateway := &mockGateway{
		updateFn: func(_ context.Context, _, _ string, _ decimal.Decimal) error {
			return errors.New("paypal rejected the revision")
		},
	}
	billingCache := cache.New()
	billingCache.Set(cache.SubscriptionKey("cust-1"), "warm", time.Hour)

	svc := newTestPlanChangeService(repo, gateway, billingCache, nil)

	result := svc.ChangePlan(context.Background(), planChangeRequestFixture())
	if result.Success || result.ErrorCode != CodePayPalUpdateFailed {
		t.Fatalf("expected PAYPAL_UPDATE_FAILED, got %+v", result)
	}
	if repo.updated != nil {
		t.Fatal("gateway failure must not persist the plan change")
	}
	if _, ok := billingCache.Get(cache.SubscriptionKey("cust-1")); !ok {
		t.Fatal("gateway failure must not invalidate the cache")
	}
}

func TestChangePlanPersistFailure(t *testing.T) {
	repo := &mockPlanChangeRepo{
		subscription: activeSubscription(),
		updateErr:    errors.New("mysql gone away"),
	}
	svc := newTestPlanChangeService(repo, nil, nil, nil)

	result := svc.ChangePlan(context.Background(), planChangeRequestFixture())
	if result.Success || result.ErrorCode != CodeInternalError {
		t.Fatalf("expected INTERNAL_ERROR, got %+v", result)
	}
}
