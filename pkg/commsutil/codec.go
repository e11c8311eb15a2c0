package commsutil

import "encoding/json"

// EncodePayload serializes a message payload to JSON bytes.
func EncodePayload(v any) ([]byte, error) {
	return json.Marshal(v)
}
