// Package envelope decodes interaction payloads and encodes handler results
// into the response envelope the platform accepts.
package envelope

import (
	"encoding/json"

	"github.com/bwmarrin/discordgo"
)

// Response type codes.
const (
	TypePong                     = discordgo.InteractionResponsePong
	TypeChannelMessageWithSource = discordgo.InteractionResponseChannelMessageWithSource
	TypeDeferredChannelMessage   = discordgo.InteractionResponseDeferredChannelMessageWithSource
	TypeDeferredMessageUpdate    = discordgo.InteractionResponseDeferredMessageUpdate
	TypeUpdateMessage            = discordgo.InteractionResponseUpdateMessage
)

// ResponseEnvelope is the JSON shape returned for every interaction.
type ResponseEnvelope struct {
	Type discordgo.InteractionResponseType `json:"type"`
	Data *ResponseData                     `json:"data,omitempty"`
}

// ResponseData is the optional payload of a ResponseEnvelope.
type ResponseData struct {
	Content string                 `json:"content,omitempty"`
	TTS     bool                   `json:"tts,omitempty"`
	Flags   discordgo.MessageFlags `json:"flags,omitempty"`
}

// messageData mirrors ResponseData for envelopes that carry a message, where
// content is always present even when empty.
type messageData struct {
	Content string                 `json:"content"`
	TTS     bool                   `json:"tts,omitempty"`
	Flags   discordgo.MessageFlags `json:"flags,omitempty"`
}

// MarshalJSON keeps "content" on message envelopes so Text("") encodes as
// {"type":4,"data":{"content":""}}.
func (e ResponseEnvelope) MarshalJSON() ([]byte, error) {
	type plain ResponseEnvelope
	if e.Data == nil || !carriesMessage(e.Type) {
		return json.Marshal(plain(e))
	}
	return json.Marshal(struct {
		Type discordgo.InteractionResponseType `json:"type"`
		Data messageData                       `json:"data"`
	}{Type: e.Type, Data: messageData(*e.Data)})
}

func carriesMessage(t discordgo.InteractionResponseType) bool {
	return t == TypeChannelMessageWithSource || t == TypeUpdateMessage
}

// Pong is the acknowledgement for ping interactions.
func Pong() *ResponseEnvelope {
	return &ResponseEnvelope{Type: TypePong}
}

// Message builds a channel message envelope with the given content.
func Message(content string) *ResponseEnvelope {
	return &ResponseEnvelope{
		Type: TypeChannelMessageWithSource,
		Data: &ResponseData{Content: content},
	}
}
