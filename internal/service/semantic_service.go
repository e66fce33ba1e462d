package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"finpulse/internal/dto"
	"finpulse/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DirectionDebit   = "debit"
	DirectionCredit  = "credit"
	DirectionUnknown = "unknown"
)

// SemanticHint is the per-message result of the remote semantic parser. Every
// field is advisory; the extractor's regex cascade takes precedence for
// amount and direction, and a missing hint just means "no hint available".
type SemanticHint struct {
	ID                 string   `json:"id"`
	IsFinancial        bool     `json:"is_financial"`
	Direction          string   `json:"direction"`
	Amount             *float64 `json:"amount"`
	CounterpartyName   string   `json:"counterparty_name"`
	CounterpartyHandle string   `json:"counterparty_handle"`
	Bank               string   `json:"bank"`
	Category           string   `json:"category"`
	Confidence         float64  `json:"confidence"`
	ShouldSkip         bool     `json:"should_skip"`
}

func buildSemanticSystemInstruction() string {
	return `You are a financial SMS parser. You receive batches of raw bank, UPI, and wallet alert messages and return structured classification hints for each one.

Rules:
- Always return ONLY a valid JSON array, no markdown fences, no commentary.
- One object per input message, carrying the input message id unchanged.
- direction is "debit", "credit", or "unknown". Never guess: use "unknown" when the text is ambiguous.
- amount is the transaction amount as a plain number, or null when none is present.
- counterparty_name is the human-readable merchant or payer; counterparty_handle is a UPI handle like user@bank; bank is the issuing bank name. Leave fields empty when absent.
- category is one of food, transport, bills, income, shopping, entertainment, healthcare, other, or "unknown".
- confidence is between 0 and 1.
- should_skip is true for OTPs, promotions, balance-only notifications, and anything that is not an actual money movement.`
}

// SemanticService is the boundary to the remote LLM parser. It degrades
// gracefully: any transport or format failure turns into an empty hint set
// and a warning, never an ingestion failure.
type SemanticService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewSemanticService(cfg *config.GigaChatConfig, logger *zap.Logger) (*SemanticService, error) {
	if cfg.APIKey == "" {
		logger.Warn("GigaChat API key not set, semantic parsing disabled")
		return &SemanticService{logger: logger}, nil
	}

	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = buildSemanticSystemInstruction()
	model.Temperature = 0.1

	return &SemanticService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (s *SemanticService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// ParseBatch sends one all-or-nothing batch request for an ingestion run and
// returns hints keyed by message id. An empty map means the run proceeds on
// regex extraction alone.
func (s *SemanticService) ParseBatch(ctx context.Context, userID uuid.UUID, messages []dto.IncomingMessage) map[string]SemanticHint {
	if s.model == nil || len(messages) == 0 {
		return map[string]SemanticHint{}
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		s.logger.Warn("Failed to encode message batch for semantic parsing", zap.Error(err))
		return map[string]SemanticHint{}
	}

	prompt := fmt.Sprintf(`Classify each of the following alert messages for user %s.

Messages:
%s

Return a JSON array with one hint object per message:
[
  {
    "id": "input message id",
    "is_financial": true,
    "direction": "debit|credit|unknown",
    "amount": 123.45,
    "counterparty_name": "",
    "counterparty_handle": "",
    "bank": "",
    "category": "food|transport|bills|income|shopping|entertainment|healthcare|other|unknown",
    "confidence": 0.9,
    "should_skip": false
  }
]`, userID, string(payload))

	resp, err := s.model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	})
	if err != nil {
		s.logger.Warn("Semantic parsing request failed, falling back to regex-only extraction", zap.Error(err))
		return map[string]SemanticHint{}
	}

	if len(resp.Choices) == 0 {
		s.logger.Warn("Semantic parser returned no choices, falling back to regex-only extraction")
		return map[string]SemanticHint{}
	}

	hints, err := parseHintResponse(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("Failed to parse semantic parser response, falling back to regex-only extraction", zap.Error(err))
		return map[string]SemanticHint{}
	}

	byID := make(map[string]SemanticHint, len(hints))
	for _, hint := range hints {
		if hint.ID != "" {
			byID[hint.ID] = hint
		}
	}

	s.logger.Info("Semantic parsing completed",
		zap.Int("messages", len(messages)),
		zap.Int("hints", len(byID)),
	)

	return byID
}

// parseHintResponse extracts the JSON array from model output that may be
// wrapped in markdown fences or surrounded by commentary.
func parseHintResponse(content string) ([]SemanticHint, error) {
	content = strings.TrimSpace(content)

	jsonStart := strings.Index(content, "[")
	jsonEnd := strings.LastIndex(content, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return nil, fmt.Errorf("no JSON array in response: %s", content)
	}

	jsonStr := content[jsonStart : jsonEnd+1]

	var hints []SemanticHint
	if err := json.Unmarshal([]byte(jsonStr), &hints); err != nil {
		jsonStr = strings.TrimSpace(jsonStr)
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(jsonStr, "```")
		jsonStr = strings.TrimSpace(jsonStr)

		if err := json.Unmarshal([]byte(jsonStr), &hints); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w", err)
		}
	}

	return hints, nil
}
