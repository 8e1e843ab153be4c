package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"
	InvoiceStatusSent    InvoiceStatus = "SENT"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusFailed  InvoiceStatus = "FAILED"
)

func IsInvoiceStatusAllowed(status InvoiceStatus) bool {
	switch status {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusPending, InvoiceStatusFailed:
		return true
	default:
		return false
	}
}

// Invoice is an append-only billing record. Rows are never mutated after
// reaching PAID or FAILED.
type Invoice struct {
	ID             string
	SubscriptionID string
	CustomerID     string
	Amount         decimal.Decimal
	Currency       string
	Status         InvoiceStatus
	PeriodStart    time.Time
	PeriodEnd      time.Time
	DueDate        time.Time
	PaidAt         *time.Time
	CreatedAt      time.Time
}
