package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageChannel string

const (
	ChannelSMS   MessageChannel = "sms"
	ChannelEmail MessageChannel = "email"
)

// RawMessage is one bank/UPI alert as received from the device. The record is
// kept after ingestion so an extracted transaction can be traced back to the
// exact text it came from.
type RawMessage struct {
	ID            uuid.UUID      `db:"id"`
	UserID        uuid.UUID      `db:"user_id"`
	Sender        string         `db:"sender"`
	Body          string         `db:"body"`
	Channel       MessageChannel `db:"channel"`
	ReceivedAt    time.Time      `db:"received_at"`
	TransactionID *uuid.UUID     `db:"transaction_id"`
	CreatedAt     time.Time      `db:"created_at"`
}
