package service

import (
	"context"
	"testing"

	"finpulse/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseHintResponse(t *testing.T) {
	content := `[
		{"id": "m1", "is_financial": true, "direction": "debit", "amount": 499.0, "counterparty_name": "NETFLIX", "category": "entertainment", "confidence": 0.95, "should_skip": false},
		{"id": "m2", "is_financial": false, "direction": "unknown", "amount": null, "confidence": 0.8, "should_skip": true}
	]`

	hints, err := parseHintResponse(content)
	require.NoError(t, err)
	require.Len(t, hints, 2)

	assert.Equal(t, "m1", hints[0].ID)
	assert.Equal(t, DirectionDebit, hints[0].Direction)
	require.NotNil(t, hints[0].Amount)
	assert.Equal(t, 499.0, *hints[0].Amount)

	assert.True(t, hints[1].ShouldSkip)
	assert.Nil(t, hints[1].Amount)
}

func TestParseHintResponseWithMarkdownFences(t *testing.T) {
	content := "Here are the hints:\n```json\n[{\"id\": \"m1\", \"direction\": \"credit\", \"should_skip\": false}]\n```"

	hints, err := parseHintResponse(content)
	require.NoError(t, err)
	require.Len(t, hints, 1)
	assert.Equal(t, DirectionCredit, hints[0].Direction)
}

func TestParseHintResponseMalformed(t *testing.T) {
	_, err := parseHintResponse("the model refused to answer")
	assert.Error(t, err)

	_, err = parseHintResponse("[{not json]")
	assert.Error(t, err)
}

func TestParseBatchDisabled(t *testing.T) {
	// No API key configured: the service exists but never issues requests.
	svc := &SemanticService{logger: zap.NewNop()}

	hints := svc.ParseBatch(context.Background(), uuid.New(), []dto.IncomingMessage{
		{ID: "m1", Sender: "HDFCBK", Body: "Rs. 100 debited at SHOP"},
	})
	assert.Empty(t, hints)
}
