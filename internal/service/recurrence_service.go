package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"finpulse/internal/models"
	"finpulse/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recurringTransactionStore interface {
	ListByUserAndRange(ctx context.Context, userID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Transaction, error)
	MarkRecurring(ctx context.Context, userID uuid.UUID, merchants []string) error
}

type subscriptionStore interface {
	Upsert(ctx context.Context, sub *models.Subscription) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error)
}

// Mean-interval windows, in days, for each supported cadence. A merchant
// whose mean interval lands outside all three has no recognizable pattern.
const (
	weeklyMinDays  = 6
	weeklyMaxDays  = 9
	monthlyMinDays = 25
	monthlyMaxDays = 35
	yearlyMinDays  = 350
	yearlyMaxDays  = 380
)

// How much history SyncSubscriptions pulls. Two years is enough to observe a
// yearly cadence twice.
const recurrenceLookback = 2 * 365 * 24 * time.Hour

type RecurrenceService struct {
	txRepo  recurringTransactionStore
	subRepo subscriptionStore
	cfg     config.RecurrenceConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewRecurrenceService(
	txRepo recurringTransactionStore,
	subRepo subscriptionStore,
	cfg config.RecurrenceConfig,
	logger *zap.Logger,
) *RecurrenceService {
	return &RecurrenceService{
		txRepo:  txRepo,
		subRepo: subRepo,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Detect finds merchants with regular-interval, similar-amount payments.
// Read-only and idempotent: identical input yields identical patterns.
func (s *RecurrenceService) Detect(transactions []*models.Transaction) []models.RecurrencePattern {
	groups := make(map[string][]*models.Transaction)
	for _, tx := range transactions {
		merchant := strings.TrimSpace(tx.Merchant)
		if merchant == "" || merchant == "Other" {
			continue
		}
		groups[merchant] = append(groups[merchant], tx)
	}

	merchants := make([]string, 0, len(groups))
	for merchant := range groups {
		merchants = append(merchants, merchant)
	}
	sort.Strings(merchants)

	var patterns []models.RecurrencePattern
	for _, merchant := range merchants {
		if pattern, ok := s.detectForMerchant(merchant, groups[merchant]); ok {
			patterns = append(patterns, pattern)
		}
	}

	return patterns
}

func (s *RecurrenceService) detectForMerchant(merchant string, group []*models.Transaction) (models.RecurrencePattern, bool) {
	minOccurrences := s.cfg.MinOccurrences
	if minOccurrences < 2 {
		minOccurrences = 2
	}
	if len(group) < minOccurrences {
		return models.RecurrencePattern{}, false
	}

	sorted := make([]*models.Transaction, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	amounts := make([]float64, len(sorted))
	for i, tx := range sorted {
		amounts[i] = math.Abs(tx.Amount)
	}
	amountMean := mean(amounts)
	amountStd := stddev(amounts)
	for _, a := range amounts {
		if math.Abs(a-amountMean) > s.cfg.AmountDeviationSigma*amountStd {
			return models.RecurrencePattern{}, false
		}
	}

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		delta := sorted[i].OccurredAt.Sub(sorted[i-1].OccurredAt)
		intervals = append(intervals, delta.Hours()/24)
	}
	intervalMean := mean(intervals)

	frequency, ok := classifyFrequency(intervalMean)
	if !ok {
		return models.RecurrencePattern{}, false
	}

	intervalStd := stddev(intervals)
	for _, d := range intervals {
		if math.Abs(d-intervalMean) > s.cfg.IntervalDeviationSigma*intervalStd {
			return models.RecurrencePattern{}, false
		}
	}

	last := sorted[len(sorted)-1].OccurredAt

	return models.RecurrencePattern{
		Merchant:        merchant,
		AverageAmount:   amountMean,
		Frequency:       frequency,
		OccurrenceCount: len(sorted),
		LastPaymentAt:   last,
		NextPaymentAt:   nextPayment(last, frequency),
	}, true
}

func classifyFrequency(meanIntervalDays float64) (models.Frequency, bool) {
	switch {
	case meanIntervalDays >= monthlyMinDays && meanIntervalDays <= monthlyMaxDays:
		return models.FrequencyMonthly, true
	case meanIntervalDays >= weeklyMinDays && meanIntervalDays <= weeklyMaxDays:
		return models.FrequencyWeekly, true
	case meanIntervalDays >= yearlyMinDays && meanIntervalDays <= yearlyMaxDays:
		return models.FrequencyYearly, true
	}
	return "", false
}

// nextPayment adds exactly one period. Monthly and yearly use calendar
// arithmetic, not a fixed day count.
func nextPayment(last time.Time, frequency models.Frequency) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case models.FrequencyYearly:
		return last.AddDate(1, 0, 0)
	default:
		return last.AddDate(0, 1, 0)
	}
}

// SyncSubscriptions recomputes patterns from history, persists them as
// subscriptions deduplicated by merchant, and flags the matching
// transactions recurring.
func (s *RecurrenceService) SyncSubscriptions(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	now := s.now()
	transactions, err := s.txRepo.ListByUserAndRange(ctx, userID, now.Add(-recurrenceLookback), now, 0, 0)
	if err != nil {
		return nil, err
	}

	patterns := s.Detect(transactions)

	subs := make([]*models.Subscription, 0, len(patterns))
	merchants := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		sub := &models.Subscription{
			ID:              uuid.New(),
			UserID:          userID,
			Merchant:        pattern.Merchant,
			AverageAmount:   pattern.AverageAmount,
			Frequency:       pattern.Frequency,
			OccurrenceCount: pattern.OccurrenceCount,
			LastPaymentAt:   pattern.LastPaymentAt,
			NextPaymentAt:   pattern.NextPaymentAt,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.subRepo.Upsert(ctx, sub); err != nil {
			s.logger.Error("Failed to upsert subscription",
				zap.String("merchant", sub.Merchant),
				zap.Error(err),
			)
			continue
		}
		subs = append(subs, sub)
		merchants = append(merchants, sub.Merchant)
	}

	if err := s.txRepo.MarkRecurring(ctx, userID, merchants); err != nil {
		s.logger.Warn("Failed to flag recurring transactions", zap.Error(err))
	}

	s.logger.Info("Subscription sync completed",
		zap.String("user_id", userID.String()),
		zap.Int("patterns", len(patterns)),
	)

	return subs, nil
}

// UpcomingBills lists predicted charges due within the given window.
func (s *RecurrenceService) UpcomingBills(ctx context.Context, userID uuid.UUID, withinDays int) ([]*models.Subscription, error) {
	if withinDays <= 0 {
		withinDays = 30
	}

	subs, err := s.subRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, withinDays)

	var due []*models.Subscription
	for _, sub := range subs {
		if sub.NextPaymentAt.Before(now) || sub.NextPaymentAt.After(cutoff) {
			continue
		}
		due = append(due, sub)
	}

	return due, nil
}
