package envelope

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const resultLogPrefix = "envelope:result"

// ErrNilResult is returned when a handler produced no result.
var ErrNilResult = errors.New("handler returned a nil result")

// Result is what a command handler returns. The set of variants is closed:
// Text, Ephemeral, Deferred and a pre-built *ResponseEnvelope. Supporting a
// new return shape means adding a variant here.
type Result interface {
	Envelope() *ResponseEnvelope
	isResult()
}

// Text is replied as a public channel message.
type Text string

func (t Text) Envelope() *ResponseEnvelope { return Message(string(t)) }
func (Text) isResult()                      {}

// Ephemeral is replied as a message only the invoking user can see.
type Ephemeral string

func (e Ephemeral) Envelope() *ResponseEnvelope {
	return &ResponseEnvelope{
		Type: TypeChannelMessageWithSource,
		Data: &ResponseData{Content: string(e), Flags: discordgo.MessageFlagsEphemeral},
	}
}
func (Ephemeral) isResult() {}

// Deferred acknowledges the command; the handler is expected to follow up
// through the platform's webhook API.
type Deferred struct {
	Ephemeral bool
}

func (d Deferred) Envelope() *ResponseEnvelope {
	env := &ResponseEnvelope{Type: TypeDeferredChannelMessage}
	if d.Ephemeral {
		env.Data = &ResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return env
}
func (Deferred) isResult() {}

// Envelope passes a pre-built envelope through unchanged.
func (e *ResponseEnvelope) Envelope() *ResponseEnvelope { return e }
func (*ResponseEnvelope) isResult()                    {}

// Encode converts a handler result into response bytes.
func Encode(result Result) ([]byte, error) {
	if result == nil {
		return nil, ErrNilResult
	}
	env := result.Envelope()
	if env == nil {
		return nil, ErrNilResult
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode envelope: %w", resultLogPrefix, err)
	}
	return data, nil
}
