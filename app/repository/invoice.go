package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

var ErrInvoiceAlreadyExists = errors.New("invoice already exists")

type InvoiceRepository struct {
	db DBTX
}

func NewInvoiceRepository(db DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, subscription_id, customer_id, amount, currency, status,
			period_start, period_end, due_date, paid_at, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.SubscriptionID,
		invoice.CustomerID,
		invoice.Amount.StringFixed(2),
		invoice.Currency,
		string(invoice.Status),
		invoice.PeriodStart,
		invoice.PeriodEnd,
		invoice.DueDate,
		nullableTimeValue(invoice.PaidAt),
		invoice.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrInvoiceAlreadyExists
		}
		return err
	}

	return nil
}

// ListByCustomer returns every invoice for the customer, newest first.
// Ties on created_at keep insertion order (id ascending), so pagination
// in the billing-history view is stable.
func (r *InvoiceRepository) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Invoice, error) {
	query := `
		SELECT id, subscription_id, customer_id, amount, currency, status,
		       period_start, period_end, due_date, paid_at, created_at
		FROM invoices
		WHERE customer_id = ?
		ORDER BY created_at DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Invoice, 0)
	for rows.Next() {
		item, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanInvoice(rows *sql.Rows) (*entity.Invoice, error) {
	item := &entity.Invoice{}

	var (
		amount string
		status string
		paidAt sql.NullTime
	)

	if err := rows.Scan(
		&item.ID,
		&item.SubscriptionID,
		&item.CustomerID,
		&amount,
		&item.Currency,
		&status,
		&item.PeriodStart,
		&item.PeriodEnd,
		&item.DueDate,
		&paidAt,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}

	item.Amount = value
	item.Status = entity.InvoiceStatus(status)
	if paidAt.Valid {
		t := paidAt.Time
		item.PaidAt = &t
	}

	return item, nil
}
