package service

import (
	"context"
	"testing"
	"time"

	"finpulse/internal/models"
	"finpulse/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRecurrenceConfig() config.RecurrenceConfig {
	return config.RecurrenceConfig{
		AmountDeviationSigma:   1.5,
		IntervalDeviationSigma: 1.5,
		MinOccurrences:         2,
	}
}

func txAt(merchant string, amount float64, occurredAt time.Time) *models.Transaction {
	return &models.Transaction{
		ID:         uuid.New(),
		Amount:     amount,
		Type:       models.TypeForAmount(amount),
		Merchant:   merchant,
		OccurredAt: occurredAt,
	}
}

func monthlyDebits(merchant string, amount float64, months int) []*models.Transaction {
	var txs []*models.Transaction
	start := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		txs = append(txs, txAt(merchant, amount, start.AddDate(0, i, 0)))
	}
	return txs
}

func TestDetectMonthlySubscription(t *testing.T) {
	svc := NewRecurrenceService(nil, nil, testRecurrenceConfig(), zap.NewNop())

	patterns := svc.Detect(monthlyDebits("NETFLIX", -499, 6))
	require.Len(t, patterns, 1)

	p := patterns[0]
	assert.Equal(t, "NETFLIX", p.Merchant)
	assert.Equal(t, models.FrequencyMonthly, p.Frequency)
	assert.Equal(t, 499.0, p.AverageAmount)
	assert.Equal(t, 6, p.OccurrenceCount)

	last := time.Date(2026, time.August, 3, 10, 0, 0, 0, time.UTC)
	assert.True(t, p.LastPaymentAt.Equal(last))
	assert.True(t, p.NextPaymentAt.Equal(last.AddDate(0, 1, 0)))
}

func TestDetectWeeklyAndYearly(t *testing.T) {
	svc := NewRecurrenceService(nil, nil, testRecurrenceConfig(), zap.NewNop())

	start := time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)
	var txs []*models.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, txAt("GYMPASS", -300, start.AddDate(0, 0, 7*i)))
	}
	txs = append(txs,
		txAt("INSURER", -12000, time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)),
		txAt("INSURER", -12000, time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)),
	)

	patterns := svc.Detect(txs)
	require.Len(t, patterns, 2)

	// Output is ordered by merchant for determinism.
	assert.Equal(t, "GYMPASS", patterns[0].Merchant)
	assert.Equal(t, models.FrequencyWeekly, patterns[0].Frequency)
	assert.Equal(t, "INSURER", patterns[1].Merchant)
	assert.Equal(t, models.FrequencyYearly, patterns[1].Frequency)
	assert.True(t, patterns[1].NextPaymentAt.Equal(time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)))
}

func TestDetectRejectsDissimilarAmounts(t *testing.T) {
	svc := NewRecurrenceService(nil, nil, testRecurrenceConfig(), zap.NewNop())

	txs := monthlyDebits("VODAFONE", -100, 4)
	txs = append(txs, txAt("VODAFONE", -500, time.Date(2026, time.July, 3, 10, 0, 0, 0, time.UTC)))

	assert.Empty(t, svc.Detect(txs))
}

func TestDetectRejectsInconsistentIntervals(t *testing.T) {
	svc := NewRecurrenceService(nil, nil, testRecurrenceConfig(), zap.NewNop())

	// Gaps of 28, 28, 28, 36 days: the mean lands in the monthly window but
	// the last interval deviates too far from it.
	start := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	txs := []*models.Transaction{
		txAt("ODDSHOP", -200, start),
		txAt("ODDSHOP", -200, start.AddDate(0, 0, 28)),
		txAt("ODDSHOP", -200, start.AddDate(0, 0, 56)),
		txAt("ODDSHOP", -200, start.AddDate(0, 0, 84)),
		txAt("ODDSHOP", -200, start.AddDate(0, 0, 120)),
	}

	assert.Empty(t, svc.Detect(txs))
}

func TestDetectRejectsUnclassifiableCadence(t *testing.T) {
	svc := NewRecurrenceService(nil, nil, testRecurrenceConfig(), zap.NewNop())

	// Every 15 days falls between the weekly and monthly windows.
	start := time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)
	var txs []*models.Transaction
	for i := 0; i < 4; i++ {
		txs = append(txs, txAt("FORTNIGHTLY", -150, start.AddDate(0, 0, 15*i)))
	}

	assert.Empty(t, svc.Detect(txs))
}

func TestDetectIgnoresUnusableMerchants(t *testing.T) {
	svc := NewRecurrenceService(nil, nil, testRecurrenceConfig(), zap.NewNop())

	txs := append(monthlyDebits("Other", -499, 6), monthlyDebits("", -499, 6)...)
	txs = append(txs, txAt("ONEOFF", -99, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)))

	assert.Empty(t, svc.Detect(txs))
}

func TestDetectIdempotent(t *testing.T) {
	svc := NewRecurrenceService(nil, nil, testRecurrenceConfig(), zap.NewNop())
	txs := monthlyDebits("NETFLIX", -499, 6)

	first := svc.Detect(txs)
	second := svc.Detect(txs)
	assert.Equal(t, first, second)
}

type fakeRecurringTxStore struct {
	txs             []*models.Transaction
	markedMerchants []string
}

func (f *fakeRecurringTxStore) ListByUserAndRange(_ context.Context, _ uuid.UUID, _, _ time.Time, _, _ int) ([]*models.Transaction, error) {
	return f.txs, nil
}

func (f *fakeRecurringTxStore) MarkRecurring(_ context.Context, _ uuid.UUID, merchants []string) error {
	f.markedMerchants = merchants
	return nil
}

type fakeSubscriptionStore struct {
	upserted []*models.Subscription
	listed   []*models.Subscription
}

func (f *fakeSubscriptionStore) Upsert(_ context.Context, sub *models.Subscription) error {
	f.upserted = append(f.upserted, sub)
	return nil
}

func (f *fakeSubscriptionStore) ListByUserID(_ context.Context, _ uuid.UUID) ([]*models.Subscription, error) {
	return f.listed, nil
}

func TestSyncSubscriptions(t *testing.T) {
	txStore := &fakeRecurringTxStore{txs: monthlyDebits("NETFLIX", -499, 6)}
	subStore := &fakeSubscriptionStore{}
	svc := NewRecurrenceService(txStore, subStore, testRecurrenceConfig(), zap.NewNop())

	userID := uuid.New()
	subs, err := svc.SyncSubscriptions(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	assert.Equal(t, "NETFLIX", subs[0].Merchant)
	assert.Equal(t, userID, subs[0].UserID)
	require.Len(t, subStore.upserted, 1)
	assert.Equal(t, []string{"NETFLIX"}, txStore.markedMerchants)
}

func TestUpcomingBillsWindow(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	subStore := &fakeSubscriptionStore{listed: []*models.Subscription{
		{Merchant: "DUE-SOON", NextPaymentAt: now.AddDate(0, 0, 5)},
		{Merchant: "TOO-FAR", NextPaymentAt: now.AddDate(0, 0, 45)},
		{Merchant: "ALREADY-PAST", NextPaymentAt: now.AddDate(0, 0, -2)},
	}}
	svc := NewRecurrenceService(&fakeRecurringTxStore{}, subStore, testRecurrenceConfig(), zap.NewNop())
	svc.now = func() time.Time { return now }

	due, err := svc.UpcomingBills(context.Background(), uuid.New(), 30)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "DUE-SOON", due[0].Merchant)
}
