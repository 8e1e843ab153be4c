package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

var (
	ErrSubscriptionNotFound       = errors.New("subscription not found")
	ErrSubscriptionAlreadyExists  = errors.New("subscription already exists")
	ErrSubscriptionNotCancellable = errors.New("subscription is not in a cancellable state")
)

type SubscriptionRepository struct {
	db DBTX
}

func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, subscription *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, customer_id, plan_tier, status, monthly_price,
			next_billing_date, created_at, updated_at,
			cancellation_date, cancellation_reason, cancellation_feedback,
			suspension_reason
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var reason *string
	if subscription.CancellationReason != nil {
		value := string(*subscription.CancellationReason)
		reason = &value
	}

	_, err := r.db.ExecContext(ctx, query,
		subscription.ID,
		subscription.CustomerID,
		string(subscription.PlanTier),
		string(subscription.Status),
		subscription.MonthlyPrice.StringFixed(2),
		subscription.NextBillingDate,
		subscription.CreatedAt,
		subscription.UpdatedAt,
		nullableTimeValue(subscription.CancellationDate),
		nullableStringValue(reason),
		nullableStringValue(subscription.CancellationFeedback),
		nullableStringValue(subscription.SuspensionReason),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrSubscriptionAlreadyExists
		}
		return err
	}

	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, subscription *entity.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan_tier = ?, status = ?, monthly_price = ?, next_billing_date = ?,
		    updated_at = ?, suspension_reason = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(subscription.PlanTier),
		string(subscription.Status),
		subscription.MonthlyPrice.StringFixed(2),
		subscription.NextBillingDate,
		subscription.UpdatedAt,
		nullableStringValue(subscription.SuspensionReason),
		subscription.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// MarkCancelled performs the one-way transition into CANCELLED with a
// conditional update. Zero rows affected means the row is missing or was
// already cancelled by a concurrent caller; the service re-reads to tell
// the two apart.
func (r *SubscriptionRepository) MarkCancelled(
	ctx context.Context,
	subscriptionID string,
	cancellationDate time.Time,
	reason entity.CancellationReason,
	feedback *string,
) error {
	query := `
		UPDATE subscriptions
		SET status = ?, cancellation_date = ?, cancellation_reason = ?,
		    cancellation_feedback = ?, updated_at = ?
		WHERE id = ? AND status <> ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(entity.SubscriptionStatusCancelled),
		cancellationDate,
		string(reason),
		nullableStringValue(feedback),
		cancellationDate,
		subscriptionID,
		string(entity.SubscriptionStatusCancelled),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubscriptionNotCancellable
	}

	return nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*entity.Subscription, error) {
	query := selectSubscription + ` WHERE id = ?`

	item, err := scanSubscription(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *SubscriptionRepository) FindByCustomer(ctx context.Context, customerID string) (*entity.Subscription, error) {
	query := selectSubscription + ` WHERE customer_id = ? ORDER BY created_at DESC LIMIT 1`

	item, err := scanSubscription(r.db.QueryRowContext(ctx, query, customerID))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *SubscriptionRepository) ListActive(ctx context.Context) ([]*entity.Subscription, error) {
	query := selectSubscription + ` WHERE status = ? ORDER BY customer_id ASC`

	rows, err := r.db.QueryContext(ctx, query, string(entity.SubscriptionStatusActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Subscription, 0)
	for rows.Next() {
		item, err := scanSubscriptionFromRows(rows)
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

const selectSubscription = `
	SELECT id, customer_id, plan_tier, status, monthly_price,
	       next_billing_date, created_at, updated_at,
	       cancellation_date, cancellation_reason, cancellation_feedback,
	       suspension_reason
	FROM subscriptions
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*entity.Subscription, error) {
	item := &entity.Subscription{}

	var (
		planTier             string
		status               string
		monthlyPrice         string
		cancellationDate     sql.NullTime
		cancellationReason   sql.NullString
		cancellationFeedback sql.NullString
		suspensionReason     sql.NullString
	)

	if err := row.Scan(
		&item.ID,
		&item.CustomerID,
		&planTier,
		&status,
		&monthlyPrice,
		&item.NextBillingDate,
		&item.CreatedAt,
		&item.UpdatedAt,
		&cancellationDate,
		&cancellationReason,
		&cancellationFeedback,
		&suspensionReason,
	); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(monthlyPrice)
	if err != nil {
		return nil, err
	}

	item.PlanTier = entity.PlanTier(planTier)
	item.Status = entity.SubscriptionStatus(status)
	item.MonthlyPrice = price
	if cancellationDate.Valid {
		value := cancellationDate.Time
		item.CancellationDate = &value
	}
	if cancellationReason.Valid {
		value := entity.CancellationReason(cancellationReason.String)
		item.CancellationReason = &value
	}
	if cancellationFeedback.Valid {
		value := cancellationFeedback.String
		item.CancellationFeedback = &value
	}
	if suspensionReason.Valid {
		value := suspensionReason.String
		item.SuspensionReason = &value
	}

	return item, nil
}

func scanSubscriptionFromRows(rows *sql.Rows) (*entity.Subscription, error) {
	return scanSubscription(rows)
}
