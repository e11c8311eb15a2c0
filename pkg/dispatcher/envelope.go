// Package dispatcher authenticates, decodes and routes interaction deliveries.
package dispatcher

// InteractionRequest is one delivery as handed over by the transport. Body
// must be the exact bytes received.
type InteractionRequest struct {
	// ID correlates logs and events; generated when empty.
	ID        string
	Timestamp string
	Signature string
	Body      []byte
}

// InteractionResponse is what the transport writes back.
type InteractionResponse struct {
	RequestID string
	Status    int
	Body      []byte
	Outcome   string
	Kind      string
	Key       string
	// Err is set for every non-200 outcome.
	Err *InteractionError
}

// ContentType of every response body.
const ContentType = "application/json"

// ErrorBody is the JSON body for failed deliveries.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail holds the public part of an InteractionError.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
