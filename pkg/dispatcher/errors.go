package dispatcher

import "net/http"

// Error codes, one per failure kind a delivery can end in.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeDecodeError     = "DECODE_ERROR"
	CodeDispatchError   = "DISPATCH_ERROR"
	CodeUnsupportedKind = "UNSUPPORTED_KIND"
	CodeHandlerError    = "HANDLER_ERROR"
	CodeAborted         = "ABORTED"
)

// StatusClientClosedRequest is recorded when the caller went away before the
// delivery was processed. Nothing is written back in that case.
const StatusClientClosedRequest = 499

// publicMessages are the only error texts ever sent to the caller.
var publicMessages = map[string]string{
	CodeUnauthorized:    "Unauthorized.",
	CodeDecodeError:     "Error deserializing interaction",
	CodeDispatchError:   "Unknown command",
	CodeUnsupportedKind: "Unhandled interaction type received!",
	CodeHandlerError:    "Command failed",
	CodeAborted:         "Request aborted",
}

// InteractionError is a structured failure from the dispatcher. Message is
// safe to return to the caller; Err holds the internal cause and is only
// logged.
type InteractionError struct {
	Code    string
	Message string
	Err     error
}

func (e *InteractionError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *InteractionError) Unwrap() error { return e.Err }

// HTTPStatus maps the error code to the response status.
func (e *InteractionError) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeDecodeError:
		return http.StatusBadRequest
	case CodeAborted:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewInteractionError creates an InteractionError with the public message for code.
func NewInteractionError(code string, cause error) *InteractionError {
	msg, ok := publicMessages[code]
	if !ok {
		msg = "Internal error"
	}
	return &InteractionError{Code: code, Message: msg, Err: cause}
}
