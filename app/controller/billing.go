package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/dto"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/mapper"
	"github.com/vibast-solutions/ms-go-billing/app/plan"
	"github.com/vibast-solutions/ms-go-billing/app/service"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

type BillingController struct {
	catalog             *plan.Catalog
	subscriptionService *service.SubscriptionService
	usageService        *service.UsageService
	cancellationService *service.CancellationService
	planChangeService   *service.PlanChangeService
	billingService      *service.BillingService
	logger              logrus.FieldLogger
}

func NewBillingController(
	catalog *plan.Catalog,
	subscriptionService *service.SubscriptionService,
	usageService *service.UsageService,
	cancellationService *service.CancellationService,
	planChangeService *service.PlanChangeService,
	billingService *service.BillingService,
) *BillingController {
	return &BillingController{
		catalog:             catalog,
		subscriptionService: subscriptionService,
		usageService:        usageService,
		cancellationService: cancellationService,
		planChangeService:   planChangeService,
		billingService:      billingService,
		logger:              factory.NewModuleLogger("billing-controller"),
	}
}

func (c *BillingController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &dto.HealthResponse{Status: "ok", Service: "billing"})
}

func (c *BillingController) ListPlans(ctx echo.Context) error {
	response := mapper.PlansToResponse(c.catalog.All())
	return ctx.JSON(http.StatusOK, &response)
}

func (c *BillingController) GetSubscription(ctx echo.Context) error {
	req, err := types.NewGetSubscriptionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.subscriptionService.GetSubscriptionStatus(
		ctx.Request().Context(),
		req.GetCustomerId(), req.GetSubscriptionId(), req.GetRefresh(),
	)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "subscription not found")
		}
		c.logger.WithError(err).Error("Get subscription failed")
		return c.writeError(ctx, http.StatusBadGateway, "subscription status unavailable")
	}

	return ctx.JSON(http.StatusOK, &dto.SubscriptionEnvelopeResponse{
		Subscription: mapper.SubscriptionToResponse(item),
	})
}

func (c *BillingController) RecordUsage(ctx echo.Context) error {
	req, err := types.NewRecordUsageRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.usageService.RecordUsage(ctx.Request().Context(), req.GetCustomerId(), req.GetMinutes()); err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		c.logger.WithError(err).Error("Record usage failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &dto.RecordUsageResponse{Message: "Usage recorded"})
}

func (c *BillingController) GetUsage(ctx echo.Context) error {
	req, err := types.NewGetUsageRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	metrics := c.usageService.GetUsageMetrics(
		ctx.Request().Context(),
		req.GetCustomerId(),
		c.resolveTier(ctx, req.GetCustomerId()),
	)
	response := mapper.UsageMetricsToResponse(metrics)
	return ctx.JSON(http.StatusOK, &response)
}

func (c *BillingController) CheckUsageThresholds(ctx echo.Context) error {
	req, err := types.NewGetUsageRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	check := c.usageService.CheckUsageThresholds(
		ctx.Request().Context(),
		req.GetCustomerId(),
		c.resolveTier(ctx, req.GetCustomerId()),
	)
	response := mapper.ThresholdCheckToResponse(check)
	return ctx.JSON(http.StatusOK, &response)
}

func (c *BillingController) GetBillingHistory(ctx echo.Context) error {
	req, err := types.NewBillingHistoryRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	invoices, err := c.billingService.GetBillingHistory(ctx.Request().Context(), req.GetCustomerId(), service.HistoryFilters{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    entity.InvoiceStatus(req.Status),
		MinAmount: req.MinAmount,
		MaxAmount: req.MaxAmount,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		c.logger.WithError(err).Error("Get billing history failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	response := mapper.InvoicesToResponse(invoices)
	return ctx.JSON(http.StatusOK, &response)
}

func (c *BillingController) CancelSubscription(ctx echo.Context) error {
	req, err := types.NewCancelSubscriptionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result := c.cancellationService.CancelSubscription(ctx.Request().Context(), req)
	response := mapper.CancellationResultToResponse(result)
	return ctx.JSON(cancellationStatusCode(result.ErrorCode), &response)
}

func (c *BillingController) ChangePlan(ctx echo.Context) error {
	req, err := types.NewPlanChangeRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result := c.planChangeService.ChangePlan(ctx.Request().Context(), req)
	response := mapper.PlanChangeResultToResponse(result)
	return ctx.JSON(planChangeStatusCode(result.ErrorCode), &response)
}

// resolveTier reads the customer's durable plan tier for metering. A
// missing or unreadable record degrades to an empty tier, which the
// usage service defaults downstream.
func (c *BillingController) resolveTier(ctx echo.Context, customerID string) entity.PlanTier {
	subscription, err := c.subscriptionService.FindCustomerSubscription(ctx.Request().Context(), customerID)
	if err != nil {
		c.logger.WithError(err).WithField("customer_id", customerID).
			Warn("Subscription lookup failed while resolving plan tier")
		return ""
	}
	if subscription == nil {
		return ""
	}
	return subscription.PlanTier
}

func cancellationStatusCode(errorCode string) int {
	switch errorCode {
	case "":
		return http.StatusOK
	case service.CodeSubscriptionNotFound:
		return http.StatusNotFound
	case service.CodeAlreadyCancelled:
		return http.StatusConflict
	case service.CodeInvalidRequest:
		return http.StatusBadRequest
	case service.CodePayPalError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func planChangeStatusCode(errorCode string) int {
	switch errorCode {
	case "":
		return http.StatusOK
	case service.CodeSubscriptionNotFound:
		return http.StatusNotFound
	case service.CodeSamePlan, service.CodeInvalidRequest:
		return http.StatusBadRequest
	case service.CodePayPalUpdateFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (c *BillingController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &dto.ErrorResponse{Error: message})
}
