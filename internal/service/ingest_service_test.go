package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finpulse/internal/dto"
	"finpulse/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMessageStore struct {
	created   []*models.RawMessage
	linked    map[uuid.UUID]uuid.UUID
	createErr error
	linkErr   error
}

func (f *fakeMessageStore) Create(_ context.Context, msg *models.RawMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeMessageStore) LinkTransaction(_ context.Context, messageID, transactionID uuid.UUID) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	if f.linked == nil {
		f.linked = make(map[uuid.UUID]uuid.UUID)
	}
	f.linked[messageID] = transactionID
	return nil
}

type fakeTransactionStore struct {
	created   []*models.Transaction
	createErr error
}

func (f *fakeTransactionStore) Create(_ context.Context, tx *models.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, tx)
	return nil
}

type fakeHintProvider struct {
	hints map[string]SemanticHint
	seen  []dto.IncomingMessage
}

func (f *fakeHintProvider) ParseBatch(_ context.Context, _ uuid.UUID, messages []dto.IncomingMessage) map[string]SemanticHint {
	f.seen = messages
	if f.hints == nil {
		return map[string]SemanticHint{}
	}
	return f.hints
}

func newTestIngestService(msgStore *fakeMessageStore, txStore *fakeTransactionStore, hints *fakeHintProvider, maxBatch int) *IngestService {
	svc := NewIngestService(msgStore, txStore, hints, maxBatch, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestImportMessagesSummary(t *testing.T) {
	msgStore := &fakeMessageStore{}
	txStore := &fakeTransactionStore{}
	hints := &fakeHintProvider{hints: map[string]SemanticHint{
		"m-skip": {ShouldSkip: true},
	}}
	svc := newTestIngestService(msgStore, txStore, hints, 0)

	receivedAt := time.Date(2026, time.August, 3, 9, 30, 0, 0, time.UTC)
	messages := []dto.IncomingMessage{
		{ID: "m-noise", Sender: "FRIEND", Body: "ok", ReceivedAt: receivedAt.UnixMilli()},
		{ID: "m-skip", Sender: "HDFCBK", Body: "Rs. 120 cashback offer CREDITED soon, T&C apply", ReceivedAt: receivedAt.UnixMilli()},
		{ID: "m-good", Sender: "HDFCBK", Body: "Rs.499.00 debited from A/c XX1234 for payment to NETFLIX.", ReceivedAt: receivedAt.UnixMilli()},
		{ID: "m-empty", Sender: "HDFCBK", Body: "BALANCE enquiry for your account", ReceivedAt: receivedAt.UnixMilli()},
	}

	summary, err := svc.ImportMessages(context.Background(), uuid.New(), messages)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 3, summary.Candidates)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.SkippedByHint)
	assert.Equal(t, 0, summary.Errors)

	// Only classifier-accepted messages reach the semantic parser.
	require.Len(t, hints.seen, 3)
	assert.Equal(t, "m-skip", hints.seen[0].ID)

	require.Len(t, txStore.created, 1)
	tx := txStore.created[0]
	assert.Equal(t, -499.0, tx.Amount)
	assert.Equal(t, models.TypeDebit, tx.Type)
	assert.Equal(t, "NETFLIX", tx.Merchant)
	assert.Equal(t, models.SourceSMS, tx.Source)
	assert.True(t, tx.OccurredAt.Equal(time.UnixMilli(receivedAt.UnixMilli())))

	require.Len(t, msgStore.created, 1)
	raw := msgStore.created[0]
	require.NotNil(t, tx.RawMessageID)
	assert.Equal(t, raw.ID, *tx.RawMessageID)
	assert.Equal(t, tx.ID, msgStore.linked[raw.ID])
}

func TestImportMessagesPersistenceErrorIsolation(t *testing.T) {
	msgStore := &fakeMessageStore{}
	txStore := &fakeTransactionStore{createErr: errors.New("insert failed")}
	svc := newTestIngestService(msgStore, txStore, &fakeHintProvider{}, 0)

	messages := []dto.IncomingMessage{
		{ID: "m1", Sender: "HDFCBK", Body: "Rs. 100 debited at SHOPONE", ReceivedAt: 1},
		{ID: "m2", Sender: "HDFCBK", Body: "Rs. 200 debited at SHOPTWO", ReceivedAt: 1},
	}

	summary, err := svc.ImportMessages(context.Background(), uuid.New(), messages)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Saved)
	assert.Equal(t, 2, summary.Errors)
}

func TestImportMessagesLinkFailureStillSaves(t *testing.T) {
	msgStore := &fakeMessageStore{linkErr: errors.New("link failed")}
	txStore := &fakeTransactionStore{}
	svc := newTestIngestService(msgStore, txStore, &fakeHintProvider{}, 0)

	messages := []dto.IncomingMessage{
		{ID: "m1", Sender: "HDFCBK", Body: "Rs. 100 debited at SHOPONE", ReceivedAt: 1},
	}

	summary, err := svc.ImportMessages(context.Background(), uuid.New(), messages)
	require.NoError(t, err)

	// Both records exist on their own; a broken back-link is not a lost message.
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 0, summary.Errors)
	assert.Len(t, msgStore.created, 1)
	assert.Len(t, txStore.created, 1)
}

func TestImportMessagesBatchTruncation(t *testing.T) {
	msgStore := &fakeMessageStore{}
	txStore := &fakeTransactionStore{}
	svc := newTestIngestService(msgStore, txStore, &fakeHintProvider{}, 2)

	messages := []dto.IncomingMessage{
		{ID: "m1", Sender: "HDFCBK", Body: "Rs. 100 debited at SHOPONE", ReceivedAt: 1},
		{ID: "m2", Sender: "HDFCBK", Body: "Rs. 200 debited at SHOPTWO", ReceivedAt: 1},
		{ID: "m3", Sender: "HDFCBK", Body: "Rs. 300 debited at SHOPTHREE", ReceivedAt: 1},
	}

	summary, err := svc.ImportMessages(context.Background(), uuid.New(), messages)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Saved)
	// The overflow is reported so the client can resend it.
	assert.Equal(t, 1, summary.Dropped)
}

func TestImportMessagesEmptyBatch(t *testing.T) {
	hints := &fakeHintProvider{}
	svc := newTestIngestService(&fakeMessageStore{}, &fakeTransactionStore{}, hints, 0)

	summary, err := svc.ImportMessages(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Processed)
	assert.Nil(t, hints.seen)
}
