package service

import (
	"context"
	"time"

	"finpulse/internal/dto"
	"finpulse/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store interfaces kept narrow so the pipeline can be exercised against
// fakes. The pgx repositories satisfy them.
type messageStore interface {
	Create(ctx context.Context, msg *models.RawMessage) error
	LinkTransaction(ctx context.Context, messageID, transactionID uuid.UUID) error
}

type transactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
}

type hintProvider interface {
	ParseBatch(ctx context.Context, userID uuid.UUID, messages []dto.IncomingMessage) map[string]SemanticHint
}

// IngestService turns batches of raw device alerts into persisted
// transactions: classifier gate, one semantic batch call, then per-message
// extraction and writes with per-item error isolation.
type IngestService struct {
	msgStore     messageStore
	txStore      transactionStore
	hints        hintProvider
	maxBatchSize int
	logger       *zap.Logger
	now          func() time.Time
}

func NewIngestService(
	msgStore messageStore,
	txStore transactionStore,
	hints hintProvider,
	maxBatchSize int,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		msgStore:     msgStore,
		txStore:      txStore,
		hints:        hints,
		maxBatchSize: maxBatchSize,
		logger:       logger,
		now:          time.Now,
	}
}

// ImportMessages runs one ingestion pass. A failure on one message is counted
// and the loop continues; only the summary is returned. The write order per
// message is fixed: raw message, then transaction, then the back-link. A
// failed link leaves two individually valid records.
func (s *IngestService) ImportMessages(ctx context.Context, userID uuid.UUID, messages []dto.IncomingMessage) (*dto.ImportSummary, error) {
	dropped := 0
	if s.maxBatchSize > 0 && len(messages) > s.maxBatchSize {
		dropped = len(messages) - s.maxBatchSize
		s.logger.Warn("Import batch truncated",
			zap.Int("received", len(messages)),
			zap.Int("max", s.maxBatchSize),
			zap.Int("dropped", dropped),
		)
		messages = messages[:s.maxBatchSize]
	}

	summary := &dto.ImportSummary{Processed: len(messages), Dropped: dropped}

	var candidates []dto.IncomingMessage
	for _, msg := range messages {
		if !IsTransactionMessage(msg.Sender, msg.Body) {
			continue
		}
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		candidates = append(candidates, msg)
	}
	summary.Candidates = len(candidates)

	if len(candidates) == 0 {
		return summary, nil
	}

	// All-or-nothing batch: on failure this is empty and the whole run
	// degrades to regex-only extraction.
	hintsByID := s.hints.ParseBatch(ctx, userID, candidates)

	for _, msg := range candidates {
		var hint *SemanticHint
		if h, ok := hintsByID[msg.ID]; ok {
			hint = &h
		}

		if hint != nil && hint.ShouldSkip {
			summary.SkippedByHint++
			continue
		}

		candidate, ok := ExtractCandidate(msg.Body, hint)
		if !ok {
			// No resolvable amount is an expected outcome, not an error.
			summary.Skipped++
			continue
		}

		if err := s.persistCandidate(ctx, userID, msg, candidate); err != nil {
			s.logger.Error("Failed to persist extracted transaction",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			summary.Errors++
			continue
		}
		summary.Saved++
	}

	s.logger.Info("Message import completed",
		zap.String("user_id", userID.String()),
		zap.Int("processed", summary.Processed),
		zap.Int("candidates", summary.Candidates),
		zap.Int("saved", summary.Saved),
		zap.Int("skipped", summary.Skipped),
		zap.Int("skipped_by_hint", summary.SkippedByHint),
		zap.Int("errors", summary.Errors),
		zap.Int("dropped", summary.Dropped),
	)

	return summary, nil
}

func (s *IngestService) persistCandidate(ctx context.Context, userID uuid.UUID, msg dto.IncomingMessage, candidate *ExtractedTransaction) error {
	now := s.now()

	channel := models.ChannelSMS
	if msg.Channel == string(models.ChannelEmail) {
		channel = models.ChannelEmail
	}

	receivedAt := time.UnixMilli(msg.ReceivedAt)
	if msg.ReceivedAt <= 0 {
		receivedAt = now
	}

	raw := &models.RawMessage{
		ID:         uuid.New(),
		UserID:     userID,
		Sender:     sanitizeUTF8(msg.Sender),
		Body:       sanitizeUTF8(msg.Body),
		Channel:    channel,
		ReceivedAt: receivedAt,
		CreatedAt:  now,
	}
	if err := s.msgStore.Create(ctx, raw); err != nil {
		return err
	}

	source := models.SourceSMS
	if channel == models.ChannelEmail {
		source = models.SourceEmail
	}

	tx := &models.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		RawMessageID: &raw.ID,
		Amount:       candidate.Amount,
		Type:         candidate.Type,
		Merchant:     sanitizeUTF8(candidate.Merchant),
		Category:     candidate.Category,
		Source:       source,
		OccurredAt:   receivedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := s.txStore.Create(ctx, tx); err != nil {
		return err
	}

	// Back-link last. A failure here is logged but not counted as a lost
	// message: both records are already valid on their own.
	if err := s.msgStore.LinkTransaction(ctx, raw.ID, tx.ID); err != nil {
		s.logger.Warn("Failed to link raw message to transaction",
			zap.String("raw_message_id", raw.ID.String()),
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err),
		)
	}

	return nil
}
