package dto

// IncomingMessage is one raw alert uploaded by the device. ID is optional and
// client-assigned; when empty the server assigns one. ReceivedAt is epoch
// milliseconds as reported by the device inbox.
type IncomingMessage struct {
	ID         string `json:"id"`
	Sender     string `json:"sender" validate:"required"`
	Body       string `json:"body" validate:"required"`
	ReceivedAt int64  `json:"received_at" validate:"required"`
	Channel    string `json:"channel" validate:"omitempty,oneof=sms email"`
}

type ImportMessagesRequest struct {
	Messages []IncomingMessage `json:"messages" validate:"required"`
}

// ImportSummary is the fold result of one ingestion run. Skipped counts
// messages with no resolvable amount; SkippedByHint counts semantic-parser
// vetoes; Errors counts per-message persistence failures; Dropped counts
// messages discarded because the batch exceeded the size cap, so the client
// knows to resend them.
type ImportSummary struct {
	Processed     int `json:"processed"`
	Candidates    int `json:"candidates"`
	Saved         int `json:"saved"`
	Skipped       int `json:"skipped"`
	SkippedByHint int `json:"skipped_by_hint"`
	Errors        int `json:"errors"`
	Dropped       int `json:"dropped"`
}
