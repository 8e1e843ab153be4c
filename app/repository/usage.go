package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

type UsageRepository struct {
	db DBTX
}

func NewUsageRepository(db DBTX) *UsageRepository {
	return &UsageRepository{db: db}
}

// AddMinutes accumulates minutes onto the customer's row for the given
// billing period, creating the row on first use. The increment runs
// inside the database so concurrent writers cannot lose updates.
func (r *UsageRepository) AddMinutes(ctx context.Context, usage *entity.Usage) error {
	query := `
		INSERT INTO usage_records (
			customer_id, period_start, period_end,
			call_minutes_used, call_minutes_limit, last_updated
		)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			call_minutes_used = call_minutes_used + VALUES(call_minutes_used),
			last_updated = VALUES(last_updated)
	`

	_, err := r.db.ExecContext(ctx, query,
		usage.CustomerID,
		usage.PeriodStart,
		usage.PeriodEnd,
		usage.CallMinutesUsed,
		usage.CallMinutesLimit,
		usage.LastUpdated,
	)
	return err
}

func (r *UsageRepository) FindByPeriod(ctx context.Context, customerID string, periodStart time.Time) (*entity.Usage, error) {
	query := selectUsage + ` WHERE customer_id = ? AND period_start = ?`

	item := &entity.Usage{}
	err := r.db.QueryRowContext(ctx, query, customerID, periodStart).Scan(
		&item.CustomerID,
		&item.PeriodStart,
		&item.PeriodEnd,
		&item.CallMinutesUsed,
		&item.CallMinutesLimit,
		&item.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *UsageRepository) ListByPeriodRange(ctx context.Context, customerID string, from, to time.Time) ([]*entity.Usage, error) {
	query := selectUsage + ` WHERE customer_id = ? AND period_start >= ? AND period_start < ? ORDER BY period_start ASC`
	return r.listByQuery(ctx, query, customerID, from, to)
}

// ListOpenPeriods returns every customer's row for the period containing
// now. Consumed by the threshold sweep job.
func (r *UsageRepository) ListOpenPeriods(ctx context.Context, periodStart time.Time) ([]*entity.Usage, error) {
	query := selectUsage + ` WHERE period_start = ? ORDER BY customer_id ASC`
	return r.listByQuery(ctx, query, periodStart)
}

func (r *UsageRepository) listByQuery(ctx context.Context, query string, args ...interface{}) ([]*entity.Usage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Usage, 0)
	for rows.Next() {
		item := &entity.Usage{}
		if err := rows.Scan(
			&item.CustomerID,
			&item.PeriodStart,
			&item.PeriodEnd,
			&item.CallMinutesUsed,
			&item.CallMinutesLimit,
			&item.LastUpdated,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

const selectUsage = `
	SELECT customer_id, period_start, period_end,
	       call_minutes_used, call_minutes_limit, last_updated
	FROM usage_records
`
