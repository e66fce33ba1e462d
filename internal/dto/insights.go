package dto

type ForecastPointResponse struct {
	Date             string  `json:"date"`
	PredictedBalance float64 `json:"predicted_balance"`
	Confidence       float64 `json:"confidence"`
}

type ForecastResponse struct {
	HorizonDays int                     `json:"horizon_days"`
	RiskLevel   string                  `json:"risk_level"`
	Points      []ForecastPointResponse `json:"points"`
}

type SubscriptionResponse struct {
	ID              string  `json:"id"`
	Merchant        string  `json:"merchant"`
	AverageAmount   float64 `json:"average_amount"`
	Frequency       string  `json:"frequency"`
	OccurrenceCount int     `json:"occurrence_count"`
	LastPaymentAt   string  `json:"last_payment_at"`
	NextPaymentAt   string  `json:"next_payment_at"`
}

// UpcomingBillResponse is a predicted charge derived from a subscription.
type UpcomingBillResponse struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	DueAt    string  `json:"due_at"`
}

type BufferResponse struct {
	CurrentBuffer     float64 `json:"current_buffer"`
	RecommendedBuffer float64 `json:"recommended_buffer"`
	Progress          float64 `json:"progress"`
	DaysOfExpenses    int     `json:"days_of_expenses"`
	VolatilityFactor  float64 `json:"volatility_factor"`
}

// OverviewResponse bundles the insight widgets the home screen loads at once.
type OverviewResponse struct {
	Forecast      *ForecastResponse      `json:"forecast,omitempty"`
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	UpcomingBills []UpcomingBillResponse `json:"upcoming_bills"`
	Buffer        *BufferResponse        `json:"buffer,omitempty"`
}
