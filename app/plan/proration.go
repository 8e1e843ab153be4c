package plan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

var ErrSamePlan = errors.New("cannot change to the same plan")

// PricingCalculation is the immutable result of pricing a mid-cycle plan
// change. It is never persisted; callers recompute on demand.
type PricingCalculation struct {
	CurrentPlan          entity.PlanConfig
	NewPlan              entity.PlanConfig
	ChangeType           entity.PlanChangeType
	CurrentPlanPrice     decimal.Decimal
	NewPlanPrice         decimal.Decimal
	PriceDifference      decimal.Decimal
	DaysRemainingInCycle int
	CurrentPlanDailyRate decimal.Decimal
	NewPlanDailyRate     decimal.Decimal
	ProrationCredit      decimal.Decimal
	AmountDue            decimal.Decimal
	EffectiveDate        time.Time
	NextBillingDate      time.Time
	CalculatedAt         time.Time
}

// Calculator prices plan changes against the catalog. The clock is
// injectable so proration math is reproducible in tests.
type Calculator struct {
	catalog *Catalog
	now     func() time.Time
}

func NewCalculator(catalog *Catalog) *Calculator {
	return &Calculator{catalog: catalog, now: time.Now}
}

// CalculatePlanChange prices a move between tiers part-way through a
// billing cycle.
//
// The proration credit is (new daily rate - current daily rate) x whole
// days remaining, rounded half-up to cents: positive for upgrades,
// negative for downgrades. Upgrades charge the positive delta
// immediately; a downgrade's negative credit applies to the next invoice
// rather than being refunded, so AmountDue is floored at zero. The next
// billing date passes through unchanged: a plan change never shifts the
// billing anchor.
func (c *Calculator) CalculatePlanChange(
	currentTier, newTier entity.PlanTier,
	currentBillingDate, nextBillingDate time.Time,
) (PricingCalculation, error) {
	if currentTier == newTier {
		return PricingCalculation{}, ErrSamePlan
	}

	currentCfg, err := c.catalog.Get(currentTier)
	if err != nil {
		return PricingCalculation{}, err
	}
	newCfg, err := c.catalog.Get(newTier)
	if err != nil {
		return PricingCalculation{}, err
	}

	changeType := entity.PlanChangeDowngrade
	if newCfg.MonthlyPrice.GreaterThan(currentCfg.MonthlyPrice) {
		changeType = entity.PlanChangeUpgrade
	}

	now := c.now().UTC()
	daysRemaining := int(nextBillingDate.Sub(now).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	currentDaily := currentCfg.DailyRate()
	newDaily := newCfg.DailyRate()

	prorationCredit := newDaily.Sub(currentDaily).
		Mul(decimal.NewFromInt(int64(daysRemaining))).
		Round(2)

	amountDue := prorationCredit
	if amountDue.IsNegative() {
		amountDue = decimal.Zero
	}

	return PricingCalculation{
		CurrentPlan:          currentCfg,
		NewPlan:              newCfg,
		ChangeType:           changeType,
		CurrentPlanPrice:     currentCfg.MonthlyPrice,
		NewPlanPrice:         newCfg.MonthlyPrice,
		PriceDifference:      newCfg.MonthlyPrice.Sub(currentCfg.MonthlyPrice),
		DaysRemainingInCycle: daysRemaining,
		CurrentPlanDailyRate: currentDaily,
		NewPlanDailyRate:     newDaily,
		ProrationCredit:      prorationCredit,
		AmountDue:            amountDue,
		EffectiveDate:        now,
		NextBillingDate:      nextBillingDate,
		CalculatedAt:         now,
	}, nil
}
