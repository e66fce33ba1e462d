package service

import (
	"context"
	"math"
	"time"

	"finpulse/internal/models"
	"finpulse/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type transactionLister interface {
	ListByUserAndRange(ctx context.Context, userID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Transaction, error)
}

type userGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Confidence assigned to the flat baseline projected when a user has no
// transaction history at all.
const baselineConfidence = 0.1

// Risk multipliers by tolerance: conservative users get a bigger
// recommended buffer.
const (
	riskMultiplierLow    = 1.5
	riskMultiplierMedium = 1.0
	riskMultiplierHigh   = 0.75
)

type ForecastService struct {
	txRepo   transactionLister
	userRepo userGetter
	cfg      config.ForecastConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewForecastService(
	txRepo transactionLister,
	userRepo userGetter,
	cfg config.ForecastConfig,
	logger *zap.Logger,
) *ForecastService {
	return &ForecastService{
		txRepo:   txRepo,
		userRepo: userRepo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// ProjectBalance projects a linear day-by-day balance trajectory from
// historical daily income/expense averages. Degenerate input never fails:
// with no history the projection is flat at currentBalance with low
// confidence.
func (s *ForecastService) ProjectBalance(currentBalance float64, transactions []*models.Transaction, horizonDays int) []models.ForecastPoint {
	if horizonDays <= 0 {
		horizonDays = 30
	}

	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	lookback := s.cfg.LookbackDays
	if lookback <= 0 {
		lookback = 30
	}
	windowStart := start.AddDate(0, 0, -lookback)

	incomeByDay := make(map[time.Time]float64)
	expenseByDay := make(map[time.Time]float64)
	activeDays := make(map[time.Time]struct{})
	for _, tx := range transactions {
		if tx.OccurredAt.Before(windowStart) {
			continue
		}
		t := tx.OccurredAt
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		activeDays[day] = struct{}{}
		if tx.Amount > 0 {
			incomeByDay[day] += tx.Amount
		} else {
			expenseByDay[day] += -tx.Amount
		}
	}

	if len(activeDays) == 0 {
		// Flat, low-confidence baseline.
		points := make([]models.ForecastPoint, horizonDays)
		for i := range points {
			points[i] = models.ForecastPoint{
				Date:             start.AddDate(0, 0, i),
				PredictedBalance: currentBalance,
				Confidence:       baselineConfidence,
			}
		}
		return points
	}

	// Averages only over days that had activity of that type; zero-activity
	// days do not dilute the average.
	avgDailyIncome := averageOverActiveDays(incomeByDay)
	avgDailyExpense := averageOverActiveDays(expenseByDay)
	drift := avgDailyIncome - avgDailyExpense

	confidence := math.Min(1, float64(len(activeDays))/float64(lookback))

	points := make([]models.ForecastPoint, horizonDays)
	for i := range points {
		points[i] = models.ForecastPoint{
			Date:             start.AddDate(0, 0, i),
			PredictedBalance: currentBalance + drift*float64(i),
			Confidence:       confidence,
		}
	}

	return points
}

func averageOverActiveDays(byDay map[time.Time]float64) float64 {
	if len(byDay) == 0 {
		return 0
	}
	var sum float64
	var days int
	for _, v := range byDay {
		if v == 0 {
			continue
		}
		sum += v
		days++
	}
	if days == 0 {
		return 0
	}
	return sum / float64(days)
}

// ClassifyRisk derives a discrete risk level from a projection. The checks
// run in fixed precedence: negative balance, then thin buffer, then
// volatility, then low.
func (s *ForecastService) ClassifyRisk(points []models.ForecastPoint) models.RiskLevel {
	if len(points) == 0 {
		return models.RiskMedium
	}

	firstNegative := -1
	for i, p := range points {
		if p.PredictedBalance < 0 {
			firstNegative = i
			break
		}
	}
	if firstNegative >= 0 {
		if float64(firstNegative) < 0.2*float64(len(points)) {
			return models.RiskHigh
		}
		return models.RiskMedium
	}

	starting := points[0].PredictedBalance
	minBalance := starting
	balances := make([]float64, len(points))
	for i, p := range points {
		balances[i] = p.PredictedBalance
		if p.PredictedBalance < minBalance {
			minBalance = p.PredictedBalance
		}
	}

	if starting > 0 && minBalance < 0.1*starting {
		return models.RiskMedium
	}

	balanceMean := mean(balances)
	if balanceMean != 0 && stddev(balances) > 0.3*balanceMean {
		return models.RiskMedium
	}

	return models.RiskLow
}

// Forecast builds the full projection for a user over one of the supported
// horizons. The current balance is the manual override when set, otherwise
// the net position over the whole history.
func (s *ForecastService) Forecast(ctx context.Context, userID uuid.UUID, horizonDays int) (*models.CashflowForecast, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.allTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	currentBalance := netPosition(transactions)
	if user.CustomCurrentBuffer != nil && *user.CustomCurrentBuffer >= 0 {
		currentBalance = *user.CustomCurrentBuffer
	}

	points := s.ProjectBalance(currentBalance, transactions, horizonDays)

	return &models.CashflowForecast{
		HorizonDays: horizonDays,
		Points:      points,
		RiskLevel:   s.ClassifyRisk(points),
	}, nil
}

// EmergencyBuffer computes buffer adequacy from monthly expense averages,
// income volatility, and the user's risk tolerance. Degenerate history
// yields zeros, never an error.
func (s *ForecastService) EmergencyBuffer(ctx context.Context, userID uuid.UUID) (*models.BufferInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.allTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	currentBuffer := netPosition(transactions)
	if user.CustomCurrentBuffer != nil && *user.CustomCurrentBuffer >= 0 {
		currentBuffer = *user.CustomCurrentBuffer
	}

	lookback := s.cfg.BufferLookbackDays
	if lookback <= 0 {
		lookback = 90
	}
	windowStart := s.now().AddDate(0, 0, -lookback)

	expenseByMonth := make(map[string]float64)
	incomeByMonth := make(map[string]float64)
	for _, tx := range transactions {
		if tx.OccurredAt.Before(windowStart) {
			continue
		}
		month := tx.OccurredAt.Format("2006-01")
		if tx.Amount > 0 {
			incomeByMonth[month] += tx.Amount
		} else {
			expenseByMonth[month] += -tx.Amount
		}
	}

	avgMonthlyExpenses := meanOfMap(expenseByMonth)

	volatilityFactor := 1.0
	if meanIncome := meanOfMap(incomeByMonth); meanIncome > 0 {
		incomes := make([]float64, 0, len(incomeByMonth))
		for _, v := range incomeByMonth {
			incomes = append(incomes, v)
		}
		volatilityFactor = 1 + 0.5*(stddev(incomes)/meanIncome)
	}

	riskMultiplier := riskMultiplierMedium
	switch user.RiskTolerance {
	case models.RiskToleranceLow:
		riskMultiplier = riskMultiplierLow
	case models.RiskToleranceHigh:
		riskMultiplier = riskMultiplierHigh
	}

	recommended := avgMonthlyExpenses * 3 * volatilityFactor * riskMultiplier
	if user.CustomBufferTarget != nil && *user.CustomBufferTarget > 0 {
		recommended = *user.CustomBufferTarget
	}

	progress := 0.0
	if recommended > 0 {
		progress = clamp(currentBuffer/recommended, 0, 1)
	}

	daysOfExpenses := 0
	if dailyExpense := avgMonthlyExpenses / 30; dailyExpense > 0 {
		daysOfExpenses = int(math.Floor(currentBuffer / dailyExpense))
		if daysOfExpenses < 0 {
			daysOfExpenses = 0
		}
	}

	return &models.BufferInfo{
		CurrentBuffer:     currentBuffer,
		RecommendedBuffer: recommended,
		Progress:          progress,
		DaysOfExpenses:    daysOfExpenses,
		VolatilityFactor:  volatilityFactor,
	}, nil
}

func (s *ForecastService) allTransactions(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return s.txRepo.ListByUserAndRange(ctx, userID, time.Time{}, s.now(), 0, 0)
}

func netPosition(transactions []*models.Transaction) float64 {
	var sum float64
	for _, tx := range transactions {
		sum += tx.Amount
	}
	return sum
}

func meanOfMap(byKey map[string]float64) float64 {
	if len(byKey) == 0 {
		return 0
	}
	var sum float64
	for _, v := range byKey {
		sum += v
	}
	return sum / float64(len(byKey))
}
