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

type fakeTransactionLister struct {
	txs []*models.Transaction
}

func (f *fakeTransactionLister) ListByUserAndRange(_ context.Context, _ uuid.UUID, _, _ time.Time, _, _ int) ([]*models.Transaction, error) {
	return f.txs, nil
}

type fakeUserGetter struct {
	user *models.User
}

func (f *fakeUserGetter) GetByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return f.user, nil
}

func testForecastConfig() config.ForecastConfig {
	return config.ForecastConfig{LookbackDays: 30, BufferLookbackDays: 90}
}

func newTestForecastService(txs []*models.Transaction, user *models.User, now time.Time) *ForecastService {
	svc := NewForecastService(&fakeTransactionLister{txs: txs}, &fakeUserGetter{user: user}, testForecastConfig(), zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestProjectBalanceLinearDrift(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	svc := newTestForecastService(nil, nil, now)

	txs := []*models.Transaction{
		txAt("ACME", 3000, now.AddDate(0, 0, -5)),
		txAt("GROCER", -1000, now.AddDate(0, 0, -3)),
		txAt("CAFE", -500, now.AddDate(0, 0, -2)),
	}

	points := svc.ProjectBalance(10000, txs, 7)
	require.Len(t, points, 7)

	// One income day averaging 3000, two expense days averaging 750.
	drift := 3000.0 - 750.0
	start := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	for i, p := range points {
		assert.True(t, p.Date.Equal(start.AddDate(0, 0, i)))
		assert.InDelta(t, 10000+drift*float64(i), p.PredictedBalance, 1e-9)
		assert.InDelta(t, 3.0/30.0, p.Confidence, 1e-9)
	}
	assert.Equal(t, 10000.0, points[0].PredictedBalance)
}

func TestProjectBalanceIgnoresHistoryOutsideWindow(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	svc := newTestForecastService(nil, nil, now)

	txs := []*models.Transaction{
		txAt("OLD", -99999, now.AddDate(0, 0, -60)),
		txAt("RECENT", -300, now.AddDate(0, 0, -1)),
	}

	points := svc.ProjectBalance(1000, txs, 3)
	require.Len(t, points, 3)
	assert.InDelta(t, 1000-300, points[1].PredictedBalance, 1e-9)
}

func TestProjectBalanceEmptyHistory(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	svc := newTestForecastService(nil, nil, now)

	points := svc.ProjectBalance(1000, nil, 7)
	require.Len(t, points, 7)
	for _, p := range points {
		assert.Equal(t, 1000.0, p.PredictedBalance)
		assert.Equal(t, baselineConfidence, p.Confidence)
	}
}

func TestClassifyRisk(t *testing.T) {
	svc := newTestForecastService(nil, nil, time.Now())

	flat := func(balances ...float64) []models.ForecastPoint {
		points := make([]models.ForecastPoint, len(balances))
		for i, b := range balances {
			points[i] = models.ForecastPoint{PredictedBalance: b}
		}
		return points
	}

	t.Run("empty projection defaults to medium", func(t *testing.T) {
		assert.Equal(t, models.RiskMedium, svc.ClassifyRisk(nil))
	})

	t.Run("early negative balance is high", func(t *testing.T) {
		points := flat(100, -50, 100, 100, 100, 100, 100)
		assert.Equal(t, models.RiskHigh, svc.ClassifyRisk(points))
	})

	t.Run("late negative balance is medium", func(t *testing.T) {
		points := flat(100, 100, 100, 100, 100, -50, 100)
		assert.Equal(t, models.RiskMedium, svc.ClassifyRisk(points))
	})

	t.Run("thin buffer is medium", func(t *testing.T) {
		points := flat(1000, 800, 400, 50, 200, 600, 900)
		assert.Equal(t, models.RiskMedium, svc.ClassifyRisk(points))
	})

	t.Run("high volatility is medium", func(t *testing.T) {
		points := flat(100, 200, 100, 200, 100, 200, 100)
		assert.Equal(t, models.RiskMedium, svc.ClassifyRisk(points))
	})

	t.Run("steady positive trajectory is low", func(t *testing.T) {
		points := flat(1000, 1010, 1020, 1030, 1040, 1050, 1060)
		assert.Equal(t, models.RiskLow, svc.ClassifyRisk(points))
	})
}

func TestForecastUsesBufferOverride(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	override := 1000.0
	user := &models.User{ID: uuid.New(), RiskTolerance: models.RiskToleranceMedium, CustomCurrentBuffer: &override}
	svc := newTestForecastService(nil, user, now)

	forecast, err := svc.Forecast(context.Background(), user.ID, 7)
	require.NoError(t, err)

	assert.Equal(t, 7, forecast.HorizonDays)
	require.Len(t, forecast.Points, 7)
	assert.Equal(t, 1000.0, forecast.Points[0].PredictedBalance)
	assert.Equal(t, models.RiskLow, forecast.RiskLevel)
}

func TestEmergencyBufferStableIncome(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	user := &models.User{ID: uuid.New(), RiskTolerance: models.RiskToleranceMedium}

	txs := []*models.Transaction{
		txAt("ACME", 60000, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)),
		txAt("RENT", -30000, time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)),
		txAt("ACME", 60000, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)),
		txAt("RENT", -30000, time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)),
		txAt("RENT", -30000, time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)),
	}
	svc := newTestForecastService(txs, user, now)

	buffer, err := svc.EmergencyBuffer(context.Background(), user.ID)
	require.NoError(t, err)

	// Net position 30000; stable income keeps the volatility factor at 1.
	assert.InDelta(t, 30000, buffer.CurrentBuffer, 1e-9)
	assert.InDelta(t, 1.0, buffer.VolatilityFactor, 1e-9)
	assert.InDelta(t, 90000, buffer.RecommendedBuffer, 1e-9)
	assert.InDelta(t, 1.0/3.0, buffer.Progress, 1e-9)
	assert.Equal(t, 30, buffer.DaysOfExpenses)
}

func TestEmergencyBufferVolatileIncome(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	user := &models.User{ID: uuid.New(), RiskTolerance: models.RiskToleranceMedium}

	txs := []*models.Transaction{
		txAt("GIG", 30000, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)),
		txAt("GIG", 60000, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)),
		txAt("RENT", -30000, time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)),
	}
	svc := newTestForecastService(txs, user, now)

	buffer, err := svc.EmergencyBuffer(context.Background(), user.ID)
	require.NoError(t, err)

	// Monthly incomes 30000 and 60000: mean 45000, stddev 15000,
	// factor = 1 + 0.5 * (15000/45000).
	assert.InDelta(t, 1+0.5/3.0, buffer.VolatilityFactor, 1e-9)
}

func TestEmergencyBufferRiskMultipliers(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	txs := []*models.Transaction{
		txAt("ACME", 60000, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)),
		txAt("RENT", -30000, time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)),
	}

	tests := []struct {
		tolerance models.RiskTolerance
		want      float64
	}{
		{models.RiskToleranceLow, 30000 * 3 * 1.5},
		{models.RiskToleranceMedium, 30000 * 3 * 1.0},
		{models.RiskToleranceHigh, 30000 * 3 * 0.75},
	}

	for _, tt := range tests {
		user := &models.User{ID: uuid.New(), RiskTolerance: tt.tolerance}
		svc := newTestForecastService(txs, user, now)

		buffer, err := svc.EmergencyBuffer(context.Background(), user.ID)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, buffer.RecommendedBuffer, 1e-9, string(tt.tolerance))
	}
}

func TestEmergencyBufferOverrides(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	current, target := 5000.0, 100000.0
	user := &models.User{
		ID:                  uuid.New(),
		RiskTolerance:       models.RiskToleranceMedium,
		CustomCurrentBuffer: &current,
		CustomBufferTarget:  &target,
	}
	svc := newTestForecastService(nil, user, now)

	buffer, err := svc.EmergencyBuffer(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 5000.0, buffer.CurrentBuffer)
	assert.Equal(t, 100000.0, buffer.RecommendedBuffer)
	assert.InDelta(t, 0.05, buffer.Progress, 1e-9)
	// No expense history at all: days of expenses stays at zero.
	assert.Equal(t, 0, buffer.DaysOfExpenses)
}

func TestEmergencyBufferEmptyHistory(t *testing.T) {
	now := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)
	user := &models.User{ID: uuid.New(), RiskTolerance: models.RiskToleranceMedium}
	svc := newTestForecastService(nil, user, now)

	buffer, err := svc.EmergencyBuffer(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, buffer.CurrentBuffer)
	assert.Equal(t, 0.0, buffer.RecommendedBuffer)
	assert.Equal(t, 0.0, buffer.Progress)
	assert.Equal(t, 0, buffer.DaysOfExpenses)
	assert.Equal(t, 1.0, buffer.VolatilityFactor)
}
