package entity

import "github.com/shopspring/decimal"

type PlanTier string

const (
	PlanTierSoloPro      PlanTier = "solo_pro"
	PlanTierProfessional PlanTier = "professional"
	PlanTierEnterprise   PlanTier = "enterprise"
)

type PlanChangeType string

const (
	PlanChangeUpgrade   PlanChangeType = "upgrade"
	PlanChangeDowngrade PlanChangeType = "downgrade"
)

type SupportLevel string

const (
	SupportLevelEmail     SupportLevel = "email"
	SupportLevelPriority  SupportLevel = "priority"
	SupportLevelDedicated SupportLevel = "dedicated"
)

// PlanConfig describes one tier of the static plan catalog. Instances are
// created at process start and never mutated afterwards.
type PlanConfig struct {
	Tier               PlanTier
	Name               string
	MonthlyPrice       decimal.Decimal
	AnnualPrice        decimal.Decimal
	CallMinutesLimit   int
	Features           []string
	SupportLevel       SupportLevel
	MultiLocationLimit int
	CustomPromptsLimit int
	APIAccess          bool
	SSOEnabled         bool
}

var thirty = decimal.NewFromInt(30)
var twentyFour = decimal.NewFromInt(24)

// DailyRate is MonthlyPrice/30 rounded half-up to cents. Used for
// proration math; must be bit-for-bit reproducible across calls.
func (p PlanConfig) DailyRate() decimal.Decimal {
	return p.MonthlyPrice.Div(thirty).Round(2)
}

// HourlyRate is DailyRate/24 rounded half-up to cents.
func (p PlanConfig) HourlyRate() decimal.Decimal {
	return p.DailyRate().Div(twentyFour).Round(2)
}
