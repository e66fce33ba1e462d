package dto

type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Merchant    string  `json:"merchant,omitempty"`
	Category    string  `json:"category"`
	Source      string  `json:"source"`
	Account     string  `json:"account,omitempty"`
	IsRecurring bool    `json:"is_recurring"`
	OccurredAt  string  `json:"occurred_at"`
	CreatedAt   string  `json:"created_at"`
}

// ManualTransactionRequest creates a transaction entered by hand. A positive
// amount is a credit, a negative one a debit.
type ManualTransactionRequest struct {
	Amount     float64 `json:"amount" validate:"required"`
	Merchant   string  `json:"merchant"`
	Category   string  `json:"category"`
	Account    string  `json:"account"`
	OccurredAt int64   `json:"occurred_at"`
}

type UpdateCategoryRequest struct {
	Category string `json:"category" validate:"required"`
}
