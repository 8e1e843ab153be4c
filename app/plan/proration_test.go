package plan

import (
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

func newTestCalculator(now time.Time) *Calculator {
	c := NewCalculator(NewCatalog())
	c.now = func() time.Time { return now }
	return c
}

func TestUpgradeProrationExactScenario(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	calculator := newTestCalculator(now)

	currentBilling := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	nextBilling := time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)

	pricing, err := calculator.CalculatePlanChange(
		entity.PlanTierSoloPro, entity.PlanTierProfessional,
		currentBilling, nextBilling,
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if pricing.DaysRemainingInCycle != 15 {
		t.Fatalf("unexpected days remaining: %d", pricing.DaysRemainingInCycle)
	}
	if got := pricing.CurrentPlanDailyRate.StringFixed(2); got != "9.97" {
		t.Fatalf("unexpected current daily rate: %s", got)
	}
	if got := pricing.NewPlanDailyRate.StringFixed(2); got != "16.63" {
		t.Fatalf("unexpected new daily rate: %s", got)
	}
	if got := pricing.ProrationCredit.StringFixed(2); got != "99.90" {
		t.Fatalf("unexpected proration credit: %s", got)
	}
	if got := pricing.AmountDue.StringFixed(2); got != "99.90" {
		t.Fatalf("unexpected amount due: %s", got)
	}
	if pricing.ChangeType != entity.PlanChangeUpgrade {
		t.Fatalf("unexpected change type: %s", pricing.ChangeType)
	}
	if !pricing.NextBillingDate.Equal(nextBilling) {
		t.Fatalf("plan change must not shift the billing anchor: %v", pricing.NextBillingDate)
	}
}

func TestProrationSymmetry(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	calculator := newTestCalculator(now)

	currentBilling := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	nextBilling := time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)

	up, err := calculator.CalculatePlanChange(
		entity.PlanTierSoloPro, entity.PlanTierProfessional,
		currentBilling, nextBilling,
	)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	down, err := calculator.CalculatePlanChange(
		entity.PlanTierProfessional, entity.PlanTierSoloPro,
		currentBilling, nextBilling,
	)
	if err != nil {
		t.Fatalf("downgrade: %v", err)
	}

	if !down.ProrationCredit.Equal(up.ProrationCredit.Neg()) {
		t.Fatalf("credits not symmetric: up %s, down %s",
			up.ProrationCredit.StringFixed(2), down.ProrationCredit.StringFixed(2))
	}
	if up.ChangeType != entity.PlanChangeUpgrade || down.ChangeType != entity.PlanChangeDowngrade {
		t.Fatalf("change types not flipped: up %s, down %s", up.ChangeType, down.ChangeType)
	}
}

func TestDowngradeProrationExactScenario(t *testing.T) {
	now := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	calculator := newTestCalculator(now)

	pricing, err := calculator.CalculatePlanChange(
		entity.PlanTierProfessional, entity.PlanTierSoloPro,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if pricing.DaysRemainingInCycle != 10 {
		t.Fatalf("unexpected days remaining: %d", pricing.DaysRemainingInCycle)
	}
	if got := pricing.ProrationCredit.StringFixed(2); got != "-66.60" {
		t.Fatalf("unexpected proration credit: %s", got)
	}
	if !pricing.AmountDue.IsZero() {
		t.Fatalf("unexpected amount due: %s", pricing.AmountDue.StringFixed(2))
	}
	if pricing.ChangeType != entity.PlanChangeDowngrade {
		t.Fatalf("unexpected change type: %s", pricing.ChangeType)
	}
}

func TestDowngradeAmountDueIsZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	calculator := newTestCalculator(now)

	pricing, err := calculator.CalculatePlanChange(
		entity.PlanTierEnterprise, entity.PlanTierSoloPro,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !pricing.ProrationCredit.IsNegative() {
		t.Fatalf("downgrade credit should be negative: %s", pricing.ProrationCredit.StringFixed(2))
	}
	if !pricing.AmountDue.IsZero() {
		t.Fatalf("downgrade amount due should be zero: %s", pricing.AmountDue.StringFixed(2))
	}
}

func TestUpgradeAmountDueNonNegative(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	calculator := newTestCalculator(now)

	for days := 0; days <= 31; days++ {
		nextBilling := now.Add(time.Duration(days) * 24 * time.Hour)
		pricing, err := calculator.CalculatePlanChange(
			entity.PlanTierSoloPro, entity.PlanTierEnterprise,
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), nextBilling,
		)
		if err != nil {
			t.Fatalf("days=%d: %v", days, err)
		}
		if pricing.AmountDue.IsNegative() {
			t.Fatalf("days=%d: amount due is negative: %s", days, pricing.AmountDue.StringFixed(2))
		}
		if days > 0 && !pricing.AmountDue.IsPositive() {
			t.Fatalf("days=%d: upgrade with time remaining should owe money", days)
		}
	}
}

func TestSamePlanRejected(t *testing.T) {
	calculator := newTestCalculator(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

	_, err := calculator.CalculatePlanChange(
		entity.PlanTierSoloPro, entity.PlanTierSoloPro,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	)
	if !errors.Is(err, ErrSamePlan) {
		t.Fatalf("expected ErrSamePlan, got %v", err)
	}
}

func TestInvalidTierRejected(t *testing.T) {
	calculator := newTestCalculator(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

	_, err := calculator.CalculatePlanChange(
		entity.PlanTier("platinum"), entity.PlanTierSoloPro,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	)
	if !errors.Is(err, ErrInvalidPlanTier) {
		t.Fatalf("expected ErrInvalidPlanTier, got %v", err)
	}
}

func TestDaysRemainingClampedAtZero(t *testing.T) {
	now := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	calculator := newTestCalculator(now)

	// Next billing date already passed.
	pricing, err := calculator.CalculatePlanChange(
		entity.PlanTierSoloPro, entity.PlanTierProfessional,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pricing.DaysRemainingInCycle != 0 {
		t.Fatalf("expected zero days remaining, got %d", pricing.DaysRemainingInCycle)
	}
	if !pricing.ProrationCredit.IsZero() || !pricing.AmountDue.IsZero() {
		t.Fatalf("expected zero charges, credit %s due %s",
			pricing.ProrationCredit.StringFixed(2), pricing.AmountDue.StringFixed(2))
	}
}
