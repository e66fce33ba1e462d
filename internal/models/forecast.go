package models

import "time"

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ForecastPoint is one projected daily balance.
type ForecastPoint struct {
	Date             time.Time
	PredictedBalance float64
	Confidence       float64
}

// CashflowForecast is an ordered projection over a fixed horizon plus the risk
// classification derived from it.
type CashflowForecast struct {
	HorizonDays int
	Points      []ForecastPoint
	RiskLevel   RiskLevel
}

// BufferInfo describes emergency-buffer adequacy for a user.
type BufferInfo struct {
	CurrentBuffer     float64
	RecommendedBuffer float64
	Progress          float64
	DaysOfExpenses    int
	VolatilityFactor  float64
}
