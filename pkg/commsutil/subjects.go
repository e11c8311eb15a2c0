package commsutil

import (
	"strings"
)

// Default COMMS subjects.
const (
	SubjectDispatched = "interactions.dispatched"
	SubjectCommand    = "interactions.command"
)

// BuildOutcomeSubject builds the per-outcome subject, e.g.
// "interactions.dispatched.unauthorized".
func BuildOutcomeSubject(outcome string) string {
	return SubjectDispatched + "." + sanitizeToken(outcome)
}

// BuildCommandSubject builds a subject for a canonical command key, one token
// per path segment: "admin|roles|add" becomes "interactions.command.admin.roles.add".
func BuildCommandSubject(key string) string {
	parts := strings.Split(key, "|")
	for i, p := range parts {
		parts[i] = sanitizeToken(p)
	}
	return SubjectCommand + "." + strings.Join(parts, ".")
}

// sanitizeToken keeps a value usable as a single NATS subject token.
func sanitizeToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
