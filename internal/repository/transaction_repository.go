package repository

import (
	"context"
	"time"

	"finpulse/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

var transactionColumns = []string{
	"id", "user_id", "raw_message_id", "amount", "type", "merchant", "category",
	"source", "account", "is_recurring", "occurred_at", "created_at", "updated_at",
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Values(tx.ID, tx.UserID, tx.RawMessageID, tx.Amount, tx.Type, tx.Merchant, tx.Category,
			tx.Source, tx.Account, tx.IsRecurring, tx.OccurredAt, tx.CreatedAt, tx.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var tx models.Transaction
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&tx.ID, &tx.UserID, &tx.RawMessageID, &tx.Amount, &tx.Type, &tx.Merchant, &tx.Category,
		&tx.Source, &tx.Account, &tx.IsRecurring, &tx.OccurredAt, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

// ListByUserAndRange returns a user's transactions inside [from, to), newest
// first. This is the read behind both the recurrence detector and the
// forecast engine.
func (r *TransactionRepository) ListByUserAndRange(ctx context.Context, userID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"occurred_at": from}).
		Where(squirrel.Lt{"occurred_at": to}).
		OrderBy("occurred_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if limit > 0 {
		query = query.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.RawMessageID, &tx.Amount, &tx.Type, &tx.Merchant, &tx.Category,
			&tx.Source, &tx.Account, &tx.IsRecurring, &tx.OccurredAt, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

func (r *TransactionRepository) UpdateCategory(ctx context.Context, id uuid.UUID, category models.TransactionCategory) error {
	query := squirrel.Update("transactions").
		Set("category", category).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// MarkRecurring flags every transaction of the user paid to one of the given
// merchants as recurring.
func (r *TransactionRepository) MarkRecurring(ctx context.Context, userID uuid.UUID, merchants []string) error {
	if len(merchants) == 0 {
		return nil
	}

	query := squirrel.Update("transactions").
		Set("is_recurring", true).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"merchant": merchants}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
