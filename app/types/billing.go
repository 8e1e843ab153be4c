package types

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

type GetSubscriptionRequest struct {
	CustomerId     string
	SubscriptionId string
	Refresh        bool
}

func (r *GetSubscriptionRequest) GetCustomerId() string     { return r.CustomerId }
func (r *GetSubscriptionRequest) GetSubscriptionId() string { return r.SubscriptionId }
func (r *GetSubscriptionRequest) GetRefresh() bool          { return r.Refresh }

func NewGetSubscriptionRequestFromContext(ctx echo.Context) (*GetSubscriptionRequest, error) {
	return &GetSubscriptionRequest{
		CustomerId:     strings.TrimSpace(ctx.Param("customerID")),
		SubscriptionId: strings.TrimSpace(ctx.QueryParam("subscription_id")),
		Refresh:        ctx.QueryParam("refresh") == "true",
	}, nil
}

func (r *GetSubscriptionRequest) Validate() error {
	if r.GetCustomerId() == "" {
		return errors.New("customer id is required")
	}
	return nil
}

type RecordUsageRequest struct {
	CustomerId string  `json:"-"`
	Minutes    float64 `json:"minutes"`
}

func (r *RecordUsageRequest) GetCustomerId() string { return r.CustomerId }
func (r *RecordUsageRequest) GetMinutes() float64   { return r.Minutes }

func NewRecordUsageRequestFromContext(ctx echo.Context) (*RecordUsageRequest, error) {
	var body RecordUsageRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.CustomerId = strings.TrimSpace(ctx.Param("customerID"))
	return &body, nil
}

func (r *RecordUsageRequest) Validate() error {
	if r.GetCustomerId() == "" {
		return errors.New("customer id is required")
	}
	if r.GetMinutes() < 0 {
		return errors.New("minutes must be non-negative")
	}
	return nil
}

type GetUsageRequest struct {
	CustomerId string
}

func (r *GetUsageRequest) GetCustomerId() string { return r.CustomerId }

func NewGetUsageRequestFromContext(ctx echo.Context) (*GetUsageRequest, error) {
	return &GetUsageRequest{CustomerId: strings.TrimSpace(ctx.Param("customerID"))}, nil
}

func (r *GetUsageRequest) Validate() error {
	if r.GetCustomerId() == "" {
		return errors.New("customer id is required")
	}
	return nil
}

type CancelSubscriptionRequest struct {
	CustomerId     string `json:"-"`
	SubscriptionId string `json:"subscription_id"`
	Reason         string `json:"reason"`
	Feedback       string `json:"feedback"`
}

func (r *CancelSubscriptionRequest) GetCustomerId() string     { return r.CustomerId }
func (r *CancelSubscriptionRequest) GetSubscriptionId() string { return r.SubscriptionId }
func (r *CancelSubscriptionRequest) GetReason() string         { return r.Reason }
func (r *CancelSubscriptionRequest) GetFeedback() string       { return r.Feedback }

func NewCancelSubscriptionRequestFromContext(ctx echo.Context) (*CancelSubscriptionRequest, error) {
	var body CancelSubscriptionRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.CustomerId = strings.TrimSpace(ctx.Param("customerID"))
	body.SubscriptionId = strings.TrimSpace(body.SubscriptionId)
	body.Reason = strings.TrimSpace(body.Reason)
	body.Feedback = strings.TrimSpace(body.Feedback)
	return &body, nil
}

func (r *CancelSubscriptionRequest) Validate() error {
	if r.GetCustomerId() == "" {
		return errors.New("customer id is required")
	}
	if r.GetSubscriptionId() == "" {
		return errors.New("subscription_id is required")
	}
	if !entity.IsCancellationReasonAllowed(entity.CancellationReason(r.GetReason())) {
		return errors.New("invalid cancellation reason")
	}
	return nil
}

type PlanChangeRequest struct {
	CustomerId         string    `json:"-"`
	SubscriptionId     string    `json:"subscription_id"`
	CurrentPlan        string    `json:"current_plan"`
	NewPlan            string    `json:"new_plan"`
	CurrentBillingDate time.Time `json:"current_billing_date"`
	NextBillingDate    time.Time `json:"next_billing_date"`
}

func (r *PlanChangeRequest) GetCustomerId() string            { return r.CustomerId }
func (r *PlanChangeRequest) GetSubscriptionId() string        { return r.SubscriptionId }
func (r *PlanChangeRequest) GetCurrentPlan() string           { return r.CurrentPlan }
func (r *PlanChangeRequest) GetNewPlan() string               { return r.NewPlan }
func (r *PlanChangeRequest) GetCurrentBillingDate() time.Time { return r.CurrentBillingDate }
func (r *PlanChangeRequest) GetNextBillingDate() time.Time    { return r.NextBillingDate }

func NewPlanChangeRequestFromContext(ctx echo.Context) (*PlanChangeRequest, error) {
	var body PlanChangeRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.CustomerId = strings.TrimSpace(ctx.Param("customerID"))
	body.SubscriptionId = strings.TrimSpace(body.SubscriptionId)
	body.CurrentPlan = strings.TrimSpace(body.CurrentPlan)
	body.NewPlan = strings.TrimSpace(body.NewPlan)
	return &body, nil
}

func (r *PlanChangeRequest) Validate() error {
	if r.GetCustomerId() == "" {
		return errors.New("customer id is required")
	}
	if r.GetSubscriptionId() == "" {
		return errors.New("subscription_id is required")
	}
	if r.GetCurrentPlan() == "" || r.GetNewPlan() == "" {
		return errors.New("current_plan and new_plan are required")
	}
	if r.GetNextBillingDate().IsZero() {
		return errors.New("next_billing_date is required")
	}
	return nil
}

type BillingHistoryRequest struct {
	CustomerId string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Limit      int
	Offset     int
}

func (r *BillingHistoryRequest) GetCustomerId() string { return r.CustomerId }

func NewBillingHistoryRequestFromContext(ctx echo.Context) (*BillingHistoryRequest, error) {
	req := &BillingHistoryRequest{
		CustomerId: strings.TrimSpace(ctx.Param("customerID")),
		Status:     strings.TrimSpace(ctx.QueryParam("status")),
	}

	if raw := strings.TrimSpace(ctx.QueryParam("start_date")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("start_date must be RFC3339")
		}
		req.StartDate = &parsed
	}
	if raw := strings.TrimSpace(ctx.QueryParam("end_date")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("end_date must be RFC3339")
		}
		req.EndDate = &parsed
	}
	if raw := strings.TrimSpace(ctx.QueryParam("min_amount")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.New("min_amount must be a decimal amount")
		}
		req.MinAmount = &parsed
	}
	if raw := strings.TrimSpace(ctx.QueryParam("max_amount")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.New("max_amount must be a decimal amount")
		}
		req.MaxAmount = &parsed
	}
	if raw := strings.TrimSpace(ctx.QueryParam("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("limit must be an integer")
		}
		req.Limit = limit
	}
	if raw := strings.TrimSpace(ctx.QueryParam("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("offset must be an integer")
		}
		req.Offset = offset
	}

	return req, nil
}

func (r *BillingHistoryRequest) Validate() error {
	if r.GetCustomerId() == "" {
		return errors.New("customer id is required")
	}
	if r.Status != "" && !entity.IsInvoiceStatusAllowed(entity.InvoiceStatus(r.Status)) {
		return errors.New("invalid invoice status")
	}
	if r.Limit < 0 || r.Offset < 0 {
		return errors.New("limit and offset must be non-negative")
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return errors.New("end_date must not be before start_date")
	}
	return nil
}
