package repository

import (
	"context"

	"finpulse/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type MessageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMessageRepository(db *pgxpool.Pool, logger *zap.Logger) *MessageRepository {
	return &MessageRepository{
		db:     db,
		logger: logger,
	}
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.RawMessage) error {
	query := squirrel.Insert("raw_messages").
		Columns("id", "user_id", "sender", "body", "channel", "received_at", "transaction_id", "created_at").
		Values(msg.ID, msg.UserID, msg.Sender, msg.Body, msg.Channel, msg.ReceivedAt, msg.TransactionID, msg.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// LinkTransaction points a raw message at the transaction extracted from it.
// This is the last write of the per-message ingest sequence; when it fails
// both records still stand on their own.
func (r *MessageRepository) LinkTransaction(ctx context.Context, messageID, transactionID uuid.UUID) error {
	query := squirrel.Update("raw_messages").
		Set("transaction_id", transactionID).
		Where(squirrel.Eq{"id": messageID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RawMessage, error) {
	query := squirrel.Select("id", "user_id", "sender", "body", "channel", "received_at", "transaction_id", "created_at").
		From("raw_messages").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var msg models.RawMessage
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&msg.ID, &msg.UserID, &msg.Sender, &msg.Body, &msg.Channel, &msg.ReceivedAt, &msg.TransactionID, &msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &msg, nil
}
