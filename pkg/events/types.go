// Package events defines the event emitted after each interaction delivery
// and the publishers that carry it.
package events

// Outcome values, one per terminal dispatcher state.
const (
	OutcomeResponded       = "responded"
	OutcomePong            = "pong"
	OutcomeUnauthorized    = "unauthorized"
	OutcomeDecodeFailed    = "decode_failed"
	OutcomeNotFound        = "not_found"
	OutcomeUnsupportedKind = "unsupported_kind"
	OutcomeHandlerFailed   = "handler_failed"
	OutcomeAborted         = "aborted"
)

// InteractionDispatchedEvent describes how one delivery was handled.
type InteractionDispatchedEvent struct {
	RequestID  string `json:"requestId"`
	Outcome    string `json:"outcome"`
	Status     int    `json:"status"`
	Kind       string `json:"kind,omitempty"`
	Key        string `json:"key,omitempty"`
	GuildID    string `json:"guildId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Timestamp  string `json:"timestamp"`
}
