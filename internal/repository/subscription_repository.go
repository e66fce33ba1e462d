package repository

import (
	"context"

	"finpulse/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SubscriptionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSubscriptionRepository(db *pgxpool.Pool, logger *zap.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:     db,
		logger: logger,
	}
}

var subscriptionColumns = []string{
	"id", "user_id", "merchant", "average_amount", "frequency",
	"occurrence_count", "last_payment_at", "next_payment_at", "created_at", "updated_at",
}

// Upsert writes a subscription keyed by (user_id, merchant). Detection runs
// are recomputations, so an existing row is overwritten with fresh figures.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	query := squirrel.Insert("subscriptions").
		Columns(subscriptionColumns...).
		Values(sub.ID, sub.UserID, sub.Merchant, sub.AverageAmount, sub.Frequency,
			sub.OccurrenceCount, sub.LastPaymentAt, sub.NextPaymentAt, sub.CreatedAt, sub.UpdatedAt).
		Suffix(`ON CONFLICT (user_id, merchant) DO UPDATE SET
			average_amount = EXCLUDED.average_amount,
			frequency = EXCLUDED.frequency,
			occurrence_count = EXCLUDED.occurrence_count,
			last_payment_at = EXCLUDED.last_payment_at,
			next_payment_at = EXCLUDED.next_payment_at,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *SubscriptionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	query := squirrel.Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("next_payment_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.Merchant, &sub.AverageAmount, &sub.Frequency,
			&sub.OccurrenceCount, &sub.LastPaymentAt, &sub.NextPaymentAt, &sub.CreatedAt, &sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}
