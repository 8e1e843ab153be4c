package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/cache"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/config"
)

// HistoryFilters narrows and pages the billing-history view. Date bounds
// are inclusive on the invoice's CreatedAt. A zero Limit means no page
// cap.
type HistoryFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    entity.InvoiceStatus
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Limit     int
	Offset    int
}

func (f HistoryFilters) isZero() bool {
	return f.StartDate == nil && f.EndDate == nil && f.Status == "" &&
		f.MinAmount == nil && f.MaxAmount == nil && f.Limit == 0 && f.Offset == 0
}

// cacheKey folds the full filter tuple into the key so differently
// filtered queries never collide.
func (f HistoryFilters) cacheKey(customerID string) string {
	if f.isZero() {
		return cache.BillingHistoryKey(customerID)
	}

	var b strings.Builder
	b.WriteString(cache.BillingHistoryKey(customerID))
	if f.StartDate != nil {
		fmt.Fprintf(&b, ":start=%d", f.StartDate.UTC().UnixNano())
	}
	if f.EndDate != nil {
		fmt.Fprintf(&b, ":end=%d", f.EndDate.UTC().UnixNano())
	}
	if f.Status != "" {
		fmt.Fprintf(&b, ":status=%s", f.Status)
	}
	if f.MinAmount != nil {
		fmt.Fprintf(&b, ":min=%s", f.MinAmount.StringFixed(2))
	}
	if f.MaxAmount != nil {
		fmt.Fprintf(&b, ":max=%s", f.MaxAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, ":limit=%d:offset=%d", f.Limit, f.Offset)
	return b.String()
}

type invoiceRepository interface {
	ListByCustomer(ctx context.Context, customerID string) ([]*entity.Invoice, error)
}

// BillingService is the read-side view over invoice records.
type BillingService struct {
	invoiceRepo invoiceRepository
	cache       *cache.Cache
	cfg         config.CacheConfig
	logger      logrus.FieldLogger
}

func NewBillingService(invoiceRepo invoiceRepository, c *cache.Cache, cfg config.CacheConfig) *BillingService {
	return &BillingService{
		invoiceRepo: invoiceRepo,
		cache:       c,
		cfg:         cfg,
		logger:      factory.NewModuleLogger("billing-service"),
	}
}

// GetBillingHistory returns the customer's invoices, newest first, after
// applying the filters. Pagination is stable: concatenating pages of any
// size reconstructs the full filtered set with no gaps or overlaps.
func (s *BillingService) GetBillingHistory(ctx context.Context, customerID string, filters HistoryFilters) ([]*entity.Invoice, error) {
	key := filters.cacheKey(customerID)
	if cached, ok := s.cache.Get(key); ok {
		if invoices, ok := cached.([]*entity.Invoice); ok {
			return invoices, nil
		}
	}

	invoices, err := s.invoiceRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.WithError(err).WithField("customer_id", customerID).
			Error("Invoice listing failed")
		return nil, err
	}

	result := applyHistoryFilters(invoices, filters)
	s.cache.Set(key, result, s.cfg.BillingHistoryTTL)
	return result, nil
}

// InvalidateBillingHistory clears the default (unfiltered) history key
// for a customer. Filtered variants are keyed by their filter tuple and
// are NOT cleared here; they age out by TTL. Callers invalidating after
// a write must not assume filtered views refresh immediately.
func (s *BillingService) InvalidateBillingHistory(customerID string) {
	s.cache.Delete(cache.BillingHistoryKey(customerID))
	s.logger.WithField("customer_id", customerID).Info("Invalidated billing history cache")
}

func applyHistoryFilters(invoices []*entity.Invoice, filters HistoryFilters) []*entity.Invoice {
	filtered := make([]*entity.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if filters.StartDate != nil && invoice.CreatedAt.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && invoice.CreatedAt.After(*filters.EndDate) {
			continue
		}
		if filters.Status != "" && invoice.Status != filters.Status {
			continue
		}
		if filters.MinAmount != nil && invoice.Amount.LessThan(*filters.MinAmount) {
			continue
		}
		if filters.MaxAmount != nil && invoice.Amount.GreaterThan(*filters.MaxAmount) {
			continue
		}
		filtered = append(filtered, invoice)
	}

	// Repositories already order newest-first; a stable re-sort keeps the
	// guarantee when the source is an unordered fake or merged set.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(filtered) {
			return []*entity.Invoice{}
		}
		filtered = filtered[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(filtered) {
		filtered = filtered[:filters.Limit]
	}

	return filtered
}
