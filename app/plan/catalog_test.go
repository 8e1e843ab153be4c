package plan

import (
	"errors"
	"testing"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

func TestCatalogGet(t *testing.T) {
	catalog := NewCatalog()

	cfg, err := catalog.Get(entity.PlanTierProfessional)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Name != "Professional" {
		t.Fatalf("unexpected plan name: %s", cfg.Name)
	}
	if cfg.MonthlyPrice.StringFixed(2) != "499.00" {
		t.Fatalf("unexpected monthly price: %s", cfg.MonthlyPrice.StringFixed(2))
	}
	if cfg.CallMinutesLimit != 5000 {
		t.Fatalf("unexpected call minutes limit: %d", cfg.CallMinutesLimit)
	}
}

func TestCatalogGetInvalidTier(t *testing.T) {
	catalog := NewCatalog()

	_, err := catalog.Get(entity.PlanTier("platinum"))
	if !errors.Is(err, ErrInvalidPlanTier) {
		t.Fatalf("expected ErrInvalidPlanTier, got %v", err)
	}
}

func TestCatalogAllOrderedByPrice(t *testing.T) {
	catalog := NewCatalog()

	plans := catalog.All()
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	for i := 1; i < len(plans); i++ {
		if !plans[i].MonthlyPrice.GreaterThan(plans[i-1].MonthlyPrice) {
			t.Fatalf("plans not in ascending price order: %s before %s",
				plans[i-1].Name, plans[i].Name)
		}
	}
}

func TestCatalogByName(t *testing.T) {
	catalog := NewCatalog()

	cfg, ok := catalog.ByName("enterprise")
	if !ok {
		t.Fatal("expected case-insensitive match")
	}
	if cfg.Tier != entity.PlanTierEnterprise {
		t.Fatalf("unexpected tier: %s", cfg.Tier)
	}

	if _, ok := catalog.ByName("gold"); ok {
		t.Fatal("expected no match for unknown name")
	}
}

func TestCatalogCompare(t *testing.T) {
	catalog := NewCatalog()

	comparison, err := catalog.Compare(entity.PlanTierSoloPro, entity.PlanTierEnterprise)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if comparison.PriceDifference.StringFixed(2) != "500.00" {
		t.Fatalf("unexpected price difference: %s", comparison.PriceDifference.StringFixed(2))
	}
	if comparison.CallMinutesDifference != 19000 {
		t.Fatalf("unexpected call minutes difference: %d", comparison.CallMinutesDifference)
	}
}

func TestUpgradeRecommendations(t *testing.T) {
	catalog := NewCatalog()

	recommendations, err := catalog.UpgradeRecommendations(entity.PlanTierSoloPro)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recommendations))
	}
	if recommendations[0].Plan.Tier != entity.PlanTierProfessional {
		t.Fatalf("expected cheapest upgrade first, got %s", recommendations[0].Plan.Tier)
	}
	if recommendations[0].PriceIncrease.StringFixed(2) != "200.00" {
		t.Fatalf("unexpected price increase: %s", recommendations[0].PriceIncrease.StringFixed(2))
	}
	if len(recommendations[0].NewFeatures) == 0 {
		t.Fatal("expected new features listed for upgrade")
	}

	top, err := catalog.UpgradeRecommendations(entity.PlanTierEnterprise)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("top tier should have no upgrades, got %d", len(top))
	}
}

func TestDailyRates(t *testing.T) {
	catalog := NewCatalog()

	cases := []struct {
		tier entity.PlanTier
		want string
	}{
		{entity.PlanTierSoloPro, "9.97"},
		{entity.PlanTierProfessional, "16.63"},
		{entity.PlanTierEnterprise, "26.63"},
	}

	for _, tc := range cases {
		cfg, err := catalog.Get(tc.tier)
		if err != nil {
			t.Fatalf("get %s: %v", tc.tier, err)
		}
		if got := cfg.DailyRate().StringFixed(2); got != tc.want {
			t.Fatalf("daily rate for %s: got %s, want %s", tc.tier, got, tc.want)
		}
	}
}
