package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

type TransactionSource string

const (
	SourceSMS    TransactionSource = "sms"
	SourceEmail  TransactionSource = "email"
	SourceManual TransactionSource = "manual"
)

type TransactionCategory string

const (
	CategoryFood          TransactionCategory = "food"
	CategoryTransport     TransactionCategory = "transport"
	CategoryBills         TransactionCategory = "bills"
	CategoryIncome        TransactionCategory = "income"
	CategoryShopping      TransactionCategory = "shopping"
	CategoryEntertainment TransactionCategory = "entertainment"
	CategoryHealthcare    TransactionCategory = "healthcare"
	CategoryOther         TransactionCategory = "other"
)

// KnownCategory reports whether c is one of the categories the service
// understands. Hints from the semantic parser may carry anything.
func KnownCategory(c TransactionCategory) bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryBills, CategoryIncome,
		CategoryShopping, CategoryEntertainment, CategoryHealthcare, CategoryOther:
		return true
	}
	return false
}

// Transaction is a structured financial event. Credits carry a positive
// amount, debits a negative one; Type always agrees with the sign.
type Transaction struct {
	ID           uuid.UUID           `db:"id"`
	UserID       uuid.UUID           `db:"user_id"`
	RawMessageID *uuid.UUID          `db:"raw_message_id"`
	Amount       float64             `db:"amount"`
	Type         TransactionType     `db:"type"`
	Merchant     string              `db:"merchant"`
	Category     TransactionCategory `db:"category"`
	Source       TransactionSource   `db:"source"`
	Account      string              `db:"account"`
	IsRecurring  bool                `db:"is_recurring"`
	OccurredAt   time.Time           `db:"occurred_at"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

// Validate checks the sign invariant: type == credit ⟺ amount > 0.
func (t *Transaction) Validate() error {
	if t.Amount == 0 {
		return fmt.Errorf("transaction amount must be non-zero")
	}
	if t.Amount > 0 && t.Type != TypeCredit {
		return fmt.Errorf("positive amount %.2f requires type credit, got %s", t.Amount, t.Type)
	}
	if t.Amount < 0 && t.Type != TypeDebit {
		return fmt.Errorf("negative amount %.2f requires type debit, got %s", t.Amount, t.Type)
	}
	return nil
}

// TypeForAmount returns the transaction type implied by the sign of amount.
func TypeForAmount(amount float64) TransactionType {
	if amount > 0 {
		return TypeCredit
	}
	return TypeDebit
}
