package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/dto"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/plan"
	"github.com/vibast-solutions/ms-go-billing/app/service"
)

func PlanToResponse(item entity.PlanConfig) dto.PlanResponse {
	return dto.PlanResponse{
		Tier:               string(item.Tier),
		Name:               item.Name,
		MonthlyPrice:       item.MonthlyPrice.StringFixed(2),
		AnnualPrice:        item.AnnualPrice.StringFixed(2),
		DailyRate:          item.DailyRate().StringFixed(2),
		CallMinutesLimit:   item.CallMinutesLimit,
		Features:           item.Features,
		SupportLevel:       string(item.SupportLevel),
		MultiLocationLimit: item.MultiLocationLimit,
		CustomPromptsLimit: item.CustomPromptsLimit,
		APIAccess:          item.APIAccess,
		SSOEnabled:         item.SSOEnabled,
	}
}

func PlansToResponse(items []entity.PlanConfig) dto.ListPlansResponse {
	plans := make([]dto.PlanResponse, 0, len(items))
	for _, item := range items {
		plans = append(plans, PlanToResponse(item))
	}
	return dto.ListPlansResponse{Plans: plans}
}

func SubscriptionToResponse(item *entity.Subscription) dto.SubscriptionResponse {
	response := dto.SubscriptionResponse{
		ID:               item.ID,
		CustomerID:       item.CustomerID,
		PlanTier:         string(item.PlanTier),
		Status:           string(item.Status),
		MonthlyPrice:     item.MonthlyPrice.StringFixed(2),
		NextBillingDate:  item.NextBillingDate.UTC().Format(time.RFC3339),
		CreatedAt:        item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        item.UpdatedAt.UTC().Format(time.RFC3339),
		CancellationDate: formatTimePtr(item.CancellationDate),
		SuspensionReason: item.SuspensionReason,
	}
	if item.CancellationReason != nil {
		reason := string(*item.CancellationReason)
		response.CancellationReason = &reason
	}
	return response
}

func UsageMetricsToResponse(item service.UsageMetrics) dto.UsageMetricsResponse {
	return dto.UsageMetricsResponse{
		CustomerID:       item.CustomerID,
		PlanTier:         string(item.PlanTier),
		CallMinutesUsed:  item.CallMinutesUsed,
		CallMinutesLimit: item.CallMinutesLimit,
		PercentageUsed:   item.DisplayPercentage(),
		Threshold:        string(item.Threshold),
		PeriodStart:      item.PeriodStart.UTC().Format(time.RFC3339),
		PeriodEnd:        item.PeriodEnd.UTC().Format(time.RFC3339),
		LastUpdated:      item.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func ThresholdCheckToResponse(item service.ThresholdCheck) dto.ThresholdCheckResponse {
	return dto.ThresholdCheckResponse{
		Threshold:        string(item.Threshold),
		PercentageUsed:   item.PercentageUsed,
		ShouldWarn:       item.ShouldWarn,
		ShouldAlert:      item.ShouldAlert,
		Message:          item.Message,
		UpgradeSuggested: item.UpgradeSuggested,
	}
}

func InvoiceToResponse(item *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:             item.ID,
		SubscriptionID: item.SubscriptionID,
		CustomerID:     item.CustomerID,
		Amount:         item.Amount.StringFixed(2),
		Currency:       item.Currency,
		Status:         string(item.Status),
		PeriodStart:    item.PeriodStart.UTC().Format(time.RFC3339),
		PeriodEnd:      item.PeriodEnd.UTC().Format(time.RFC3339),
		DueDate:        item.DueDate.UTC().Format(time.RFC3339),
		PaidAt:         formatTimePtr(item.PaidAt),
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func InvoicesToResponse(items []*entity.Invoice) dto.BillingHistoryResponse {
	invoices := make([]dto.InvoiceResponse, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, InvoiceToResponse(item))
	}
	return dto.BillingHistoryResponse{Invoices: invoices, Count: len(invoices)}
}

func CancellationResultToResponse(item service.CancellationResult) dto.CancellationResponse {
	return dto.CancellationResponse{
		Success:              item.Success,
		SubscriptionID:       item.SubscriptionID,
		Message:              item.Message,
		CancellationDate:     formatTimePtr(item.CancellationDate),
		RemainingAccessUntil: formatTimePtr(item.RemainingAccessUntil),
		ErrorCode:            item.ErrorCode,
	}
}

func PricingToResponse(item *plan.PricingCalculation) *dto.PricingResponse {
	if item == nil {
		return nil
	}
	return &dto.PricingResponse{
		CurrentPlan:          string(item.CurrentPlan.Tier),
		NewPlan:              string(item.NewPlan.Tier),
		ChangeType:           string(item.ChangeType),
		CurrentPlanPrice:     item.CurrentPlanPrice.StringFixed(2),
		NewPlanPrice:         item.NewPlanPrice.StringFixed(2),
		PriceDifference:      item.PriceDifference.StringFixed(2),
		DaysRemainingInCycle: item.DaysRemainingInCycle,
		CurrentPlanDailyRate: item.CurrentPlanDailyRate.StringFixed(2),
		NewPlanDailyRate:     item.NewPlanDailyRate.StringFixed(2),
		ProrationCredit:      item.ProrationCredit.StringFixed(2),
		AmountDue:            item.AmountDue.StringFixed(2),
		EffectiveDate:        item.EffectiveDate.UTC().Format(time.RFC3339),
		NextBillingDate:      item.NextBillingDate.UTC().Format(time.RFC3339),
	}
}

func PlanChangeResultToResponse(item service.PlanChangeResult) dto.PlanChangeResponse {
	response := dto.PlanChangeResponse{
		Success:        item.Success,
		PlanChangeID:   item.PlanChangeID,
		SubscriptionID: item.SubscriptionID,
		Pricing:        PricingToResponse(item.Pricing),
		Message:        item.Message,
		ErrorCode:      item.ErrorCode,
	}
	if !item.EffectiveDate.IsZero() {
		response.EffectiveDate = item.EffectiveDate.UTC().Format(time.RFC3339)
	}
	if !item.NextBillingDate.IsZero() {
		response.NextBillingDate = item.NextBillingDate.UTC().Format(time.RFC3339)
	}
	return response
}

func formatTimePtr(v *time.Time) *string {
	if v == nil {
		return nil
	}
	formatted := v.UTC().Format(time.RFC3339)
	return &formatted
}
