// Package signature authenticates interaction webhook deliveries with Ed25519.
package signature

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const logPrefix = "signature:verify"

// Header names set by the platform on every interaction delivery.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

var (
	ErrInvalidPublicKey   = errors.New("invalid public key")
	ErrMissingHeaders     = errors.New("signature headers are required")
	ErrMalformedSignature = errors.New("malformed signature")
	ErrSignatureMismatch  = errors.New("signature mismatch")
)

// Verifier checks signatures against a single static public key.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	publicKey ed25519.PublicKey
}

// NewVerifier decodes a hex-encoded Ed25519 public key.
// A malformed key is a configuration error and should stop startup.
func NewVerifier(publicKeyHex string) (*Verifier, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(publicKeyHex))
	if err != nil {
		return nil, fmt.Errorf("%s - %w: %v", logPrefix, ErrInvalidPublicKey, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%s - %w: got %d bytes, want %d", logPrefix, ErrInvalidPublicKey, len(raw), ed25519.PublicKeySize)
	}
	return &Verifier{publicKey: ed25519.PublicKey(raw)}, nil
}

// NewVerifierFromKey wraps an already decoded key.
func NewVerifierFromKey(key ed25519.PublicKey) (*Verifier, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%s - %w: got %d bytes, want %d", logPrefix, ErrInvalidPublicKey, len(key), ed25519.PublicKeySize)
	}
	return &Verifier{publicKey: key}, nil
}

// Verify authenticates rawBody as received on the wire. The signed message is
// the timestamp header bytes followed directly by the body. A nil error means
// the request is authentic.
func (v *Verifier) Verify(rawBody []byte, timestamp, signature string) error {
	if timestamp == "" || signature == "" {
		slog.Debug(fmt.Sprintf("%s - missing signature headers", logPrefix))
		return ErrMissingHeaders
	}

	sig, err := hex.DecodeString(signature)
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - signature is not hex: %v", logPrefix, err))
		return ErrMalformedSignature
	}
	if len(sig) != ed25519.SignatureSize {
		slog.Debug(fmt.Sprintf("%s - signature length %d, want %d", logPrefix, len(sig), ed25519.SignatureSize))
		return ErrMalformedSignature
	}

	msg := make([]byte, 0, len(timestamp)+len(rawBody))
	msg = append(msg, timestamp...)
	msg = append(msg, rawBody...)

	if !ed25519.Verify(v.publicKey, msg, sig) {
		slog.Debug(fmt.Sprintf("%s - signature mismatch", logPrefix))
		return ErrSignatureMismatch
	}
	return nil
}

// Sign produces the hex signature the platform would send for timestamp and
// body. Used by tests and local tooling that replay deliveries.
func Sign(key ed25519.PrivateKey, timestamp string, body []byte) string {
	msg := append([]byte(timestamp), body...)
	return hex.EncodeToString(ed25519.Sign(key, msg))
}
