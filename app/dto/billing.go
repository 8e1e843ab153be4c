package dto

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type PlanResponse struct {
	Tier               string   `json:"tier"`
	Name               string   `json:"name"`
	MonthlyPrice       string   `json:"monthly_price"`
	AnnualPrice        string   `json:"annual_price"`
	DailyRate          string   `json:"daily_rate"`
	CallMinutesLimit   int      `json:"call_minutes_limit"`
	Features           []string `json:"features"`
	SupportLevel       string   `json:"support_level"`
	MultiLocationLimit int      `json:"multi_location_limit"`
	CustomPromptsLimit int      `json:"custom_prompts_limit"`
	APIAccess          bool     `json:"api_access"`
	SSOEnabled         bool     `json:"sso_enabled"`
}

type ListPlansResponse struct {
	Plans []PlanResponse `json:"plans"`
}

type SubscriptionResponse struct {
	ID                 string  `json:"id"`
	CustomerID         string  `json:"customer_id"`
	PlanTier           string  `json:"plan_tier"`
	Status             string  `json:"status"`
	MonthlyPrice       string  `json:"monthly_price"`
	NextBillingDate    string  `json:"next_billing_date"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
	CancellationDate   *string `json:"cancellation_date,omitempty"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
	SuspensionReason   *string `json:"suspension_reason,omitempty"`
}

type SubscriptionEnvelopeResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
}

type UsageMetricsResponse struct {
	CustomerID       string  `json:"customer_id"`
	PlanTier         string  `json:"plan_tier"`
	CallMinutesUsed  float64 `json:"call_minutes_used"`
	CallMinutesLimit int     `json:"call_minutes_limit"`
	PercentageUsed   float64 `json:"percentage_used"`
	Threshold        string  `json:"threshold"`
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"`
	LastUpdated      string  `json:"last_updated"`
}

type RecordUsageResponse struct {
	Message string `json:"message"`
}

type ThresholdCheckResponse struct {
	Threshold        string  `json:"threshold"`
	PercentageUsed   float64 `json:"percentage_used"`
	ShouldWarn       bool    `json:"should_warn"`
	ShouldAlert      bool    `json:"should_alert"`
	Message          string  `json:"message,omitempty"`
	UpgradeSuggested bool    `json:"upgrade_suggested"`
}

type InvoiceResponse struct {
	ID             string  `json:"id"`
	SubscriptionID string  `json:"subscription_id"`
	CustomerID     string  `json:"customer_id"`
	Amount         string  `json:"amount"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
	PeriodStart    string  `json:"period_start"`
	PeriodEnd      string  `json:"period_end"`
	DueDate        string  `json:"due_date"`
	PaidAt         *string `json:"paid_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type BillingHistoryResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
	Count    int               `json:"count"`
}

type CancellationResponse struct {
	Success              bool    `json:"success"`
	SubscriptionID       string  `json:"subscription_id"`
	Message              string  `json:"message"`
	CancellationDate     *string `json:"cancellation_date,omitempty"`
	RemainingAccessUntil *string `json:"remaining_access_until,omitempty"`
	ErrorCode            string  `json:"error_code,omitempty"`
}

type PricingResponse struct {
	CurrentPlan          string `json:"current_plan"`
	NewPlan              string `json:"new_plan"`
	ChangeType           string `json:"change_type"`
	CurrentPlanPrice     string `json:"current_plan_price"`
	NewPlanPrice         string `json:"new_plan_price"`
	PriceDifference      string `json:"price_difference"`
	DaysRemainingInCycle int    `json:"days_remaining_in_cycle"`
	CurrentPlanDailyRate string `json:"current_plan_daily_rate"`
	NewPlanDailyRate     string `json:"new_plan_daily_rate"`
	ProrationCredit      string `json:"proration_credit"`
	AmountDue            string `json:"amount_due"`
	EffectiveDate        string `json:"effective_date"`
	NextBillingDate      string `json:"next_billing_date"`
}

type PlanChangeResponse struct {
	Success         bool             `json:"success"`
	PlanChangeID    string           `json:"plan_change_id,omitempty"`
	SubscriptionID  string           `json:"subscription_id"`
	Pricing         *PricingResponse `json:"pricing,omitempty"`
	EffectiveDate   string           `json:"effective_date,omitempty"`
	NextBillingDate string           `json:"next_billing_date,omitempty"`
	Message         string           `json:"message"`
	ErrorCode       string           `json:"error_code,omitempty"`
}
