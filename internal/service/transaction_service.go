package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"finpulse/internal/dto"
	"finpulse/internal/models"
	"finpulse/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotOwner            = errors.New("transaction does not belong to user")
	ErrInvalidAmount       = errors.New("amount must be non-zero")
)

type TransactionService struct {
	txRepo *repository.TransactionRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewTransactionService(txRepo *repository.TransactionRepository, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo: txRepo,
		logger: logger,
		now:    time.Now,
	}
}

// CreateManual records a hand-entered transaction. Unlike ingest, a
// persistence failure here surfaces to the caller: the user explicitly asked
// for this write.
func (s *TransactionService) CreateManual(ctx context.Context, userID uuid.UUID, req *dto.ManualTransactionRequest) (*dto.TransactionResponse, error) {
	if req.Amount == 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	occurredAt := now
	if req.OccurredAt > 0 {
		occurredAt = time.UnixMilli(req.OccurredAt)
	}

	category := models.CategoryOther
	if raw := strings.ToLower(strings.TrimSpace(req.Category)); raw != "" {
		if c := models.TransactionCategory(raw); models.KnownCategory(c) {
			category = c
		}
	}

	tx := &models.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		Amount:     req.Amount,
		Type:       models.TypeForAmount(req.Amount),
		Merchant:   sanitizeUTF8(strings.TrimSpace(req.Merchant)),
		Category:   category,
		Source:     models.SourceManual,
		Account:    strings.TrimSpace(req.Account),
		OccurredAt: occurredAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		s.logger.Error("Failed to create manual transaction", zap.Error(err))
		return nil, err
	}

	return toTransactionResponse(tx), nil
}

func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, from, to time.Time, limit, offset int) ([]dto.TransactionResponse, error) {
	if to.IsZero() {
		to = s.now()
	}

	transactions, err := s.txRepo.ListByUserAndRange(ctx, userID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TransactionResponse, len(transactions))
	for i, tx := range transactions {
		responses[i] = *toTransactionResponse(tx)
	}

	return responses, nil
}

// UpdateCategory is the only edit allowed on an ingested transaction besides
// the recurring flag.
func (s *TransactionService) UpdateCategory(ctx context.Context, userID, txID uuid.UUID, category string) error {
	c := models.TransactionCategory(strings.ToLower(strings.TrimSpace(category)))
	if !models.KnownCategory(c) {
		return errors.New("unknown category")
	}

	tx, err := s.txRepo.GetByID(ctx, txID)
	if err != nil {
		return ErrTransactionNotFound
	}
	if tx.UserID != userID {
		return ErrNotOwner
	}

	return s.txRepo.UpdateCategory(ctx, txID, c)
}

func toTransactionResponse(tx *models.Transaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:          tx.ID.String(),
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Merchant:    tx.Merchant,
		Category:    string(tx.Category),
		Source:      string(tx.Source),
		Account:     tx.Account,
		IsRecurring: tx.IsRecurring,
		OccurredAt:  tx.OccurredAt.Format(time.RFC3339),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}
