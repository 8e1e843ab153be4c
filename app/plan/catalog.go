package plan

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

var ErrInvalidPlanTier = errors.New("invalid plan tier")

// Catalog is the static registry of plan tiers. Values are fixed at
// process start; there is no runtime mutation API.
type Catalog struct {
	plans map[entity.PlanTier]entity.PlanConfig
	order []entity.PlanTier
}

func NewCatalog() *Catalog {
	order := []entity.PlanTier{
		entity.PlanTierSoloPro,
		entity.PlanTierProfessional,
		entity.PlanTierEnterprise,
	}

	plans := map[entity.PlanTier]entity.PlanConfig{
		entity.PlanTierSoloPro: {
			Tier:             entity.PlanTierSoloPro,
			Name:             "Solo Pro",
			MonthlyPrice:     decimal.RequireFromString("299.00"),
			AnnualPrice:      decimal.RequireFromString("2990.00"),
			CallMinutesLimit: 1000,
			Features: []string{
				"AI Receptionist",
				"Call Answering",
				"Basic Scheduling",
				"Email Support",
			},
			SupportLevel:       entity.SupportLevelEmail,
			MultiLocationLimit: 1,
			CustomPromptsLimit: 10,
		},
		entity.PlanTierProfessional: {
			Tier:             entity.PlanTierProfessional,
			Name:             "Professional",
			MonthlyPrice:     decimal.RequireFromString("499.00"),
			AnnualPrice:      decimal.RequireFromString("4990.00"),
			CallMinutesLimit: 5000,
			Features: []string{
				"AI Receptionist",
				"Call Answering",
				"Advanced Scheduling",
				"CRM Integration",
				"Priority Support",
				"Multi-Location (up to 3)",
				"Custom Prompts (up to 50)",
			},
			SupportLevel:       entity.SupportLevelPriority,
			MultiLocationLimit: 3,
			CustomPromptsLimit: 50,
			APIAccess:          true,
		},
		entity.PlanTierEnterprise: {
			Tier:             entity.PlanTierEnterprise,
			Name:             "Enterprise",
			MonthlyPrice:     decimal.RequireFromString("799.00"),
			AnnualPrice:      decimal.RequireFromString("7990.00"),
			CallMinutesLimit: 20000,
			Features: []string{
				"AI Receptionist",
				"Call Answering",
				"Advanced Scheduling",
				"CRM Integration",
				"Dedicated Support",
				"Unlimited Locations",
				"Unlimited Custom Prompts",
				"Advanced Analytics",
				"Custom Integrations",
				"SLA Guarantee",
			},
			SupportLevel:       entity.SupportLevelDedicated,
			MultiLocationLimit: 999,
			CustomPromptsLimit: 999,
			APIAccess:          true,
			SSOEnabled:         true,
		},
	}

	return &Catalog{plans: plans, order: order}
}

// Get returns the configuration for a tier, or ErrInvalidPlanTier for a
// tier outside the catalog.
func (c *Catalog) Get(tier entity.PlanTier) (entity.PlanConfig, error) {
	cfg, ok := c.plans[tier]
	if !ok {
		return entity.PlanConfig{}, ErrInvalidPlanTier
	}
	return cfg, nil
}

// All returns the plans in ascending price order.
func (c *Catalog) All() []entity.PlanConfig {
	result := make([]entity.PlanConfig, 0, len(c.order))
	for _, tier := range c.order {
		result = append(result, c.plans[tier])
	}
	return result
}

// ByName looks a plan up by display name, case-insensitively.
func (c *Catalog) ByName(name string) (entity.PlanConfig, bool) {
	for _, tier := range c.order {
		cfg := c.plans[tier]
		if strings.EqualFold(cfg.Name, name) {
			return cfg, true
		}
	}
	return entity.PlanConfig{}, false
}

// Comparison is a side-by-side view of two plans.
type Comparison struct {
	First                 entity.PlanConfig
	Second                entity.PlanConfig
	PriceDifference       decimal.Decimal
	CallMinutesDifference int
}

func (c *Catalog) Compare(a, b entity.PlanTier) (Comparison, error) {
	first, err := c.Get(a)
	if err != nil {
		return Comparison{}, err
	}
	second, err := c.Get(b)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		First:                 first,
		Second:                second,
		PriceDifference:       second.MonthlyPrice.Sub(first.MonthlyPrice),
		CallMinutesDifference: second.CallMinutesLimit - first.CallMinutesLimit,
	}, nil
}

// Recommendation describes one upgrade option relative to a current plan.
type Recommendation struct {
	Plan                entity.PlanConfig
	PriceIncrease       decimal.Decimal
	CallMinutesIncrease int
	NewFeatures         []string
}

// UpgradeRecommendations lists every catalog plan priced above the
// current tier, cheapest first.
func (c *Catalog) UpgradeRecommendations(current entity.PlanTier) ([]Recommendation, error) {
	currentCfg, err := c.Get(current)
	if err != nil {
		return nil, err
	}

	recommendations := make([]Recommendation, 0)
	for _, tier := range c.order {
		cfg := c.plans[tier]
		if !cfg.MonthlyPrice.GreaterThan(currentCfg.MonthlyPrice) {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			Plan:                cfg,
			PriceIncrease:       cfg.MonthlyPrice.Sub(currentCfg.MonthlyPrice),
			CallMinutesIncrease: cfg.CallMinutesLimit - currentCfg.CallMinutesLimit,
			NewFeatures:         missingFeatures(currentCfg.Features, cfg.Features),
		})
	}
	return recommendations, nil
}

func missingFeatures(have, want []string) []string {
	result := make([]string, 0)
	for _, feature := range want {
		found := false
		for _, existing := range have {
			if existing == feature {
				found = true
				break
			}
		}
		if !found {
			result = append(result, feature)
		}
	}
	return result
}
