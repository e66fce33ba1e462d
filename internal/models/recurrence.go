package models

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// RecurrencePattern is a detected regular payment to one merchant. Patterns
// are recomputed on every detection run; only Subscription rows are persisted.
type RecurrencePattern struct {
	Merchant        string
	AverageAmount   float64
	Frequency       Frequency
	OccurrenceCount int
	LastPaymentAt   time.Time
	NextPaymentAt   time.Time
}

// Subscription is the persisted form of a recurrence pattern, deduplicated by
// merchant per user.
type Subscription struct {
	ID              uuid.UUID `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	Merchant        string    `db:"merchant"`
	AverageAmount   float64   `db:"average_amount"`
	Frequency       Frequency `db:"frequency"`
	OccurrenceCount int       `db:"occurrence_count"`
	LastPaymentAt   time.Time `db:"last_payment_at"`
	NextPaymentAt   time.Time `db:"next_payment_at"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
