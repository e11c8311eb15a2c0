package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const decodeLogPrefix = "envelope:decode"

// ErrMalformedInteraction marks payloads that are not a usable interaction.
var ErrMalformedInteraction = errors.New("malformed interaction")

// Decode parses an authenticated request body. It must only be called after
// the body's signature has been verified.
func Decode(body []byte) (*discordgo.Interaction, error) {
	var i discordgo.Interaction
	if err := json.Unmarshal(body, &i); err != nil {
		return nil, fmt.Errorf("%s - %w: %v", decodeLogPrefix, ErrMalformedInteraction, err)
	}
	// No interaction kind is 0; a missing type means the body is not an interaction.
	if i.Type == 0 {
		return nil, fmt.Errorf("%s - %w: missing interaction type", decodeLogPrefix, ErrMalformedInteraction)
	}

	if i.Type == discordgo.InteractionApplicationCommand {
		data, ok := CommandData(&i)
		if !ok {
			return nil, fmt.Errorf("%s - %w: application command without data", decodeLogPrefix, ErrMalformedInteraction)
		}
		if strings.TrimSpace(data.Name) == "" {
			return nil, fmt.Errorf("%s - %w: application command without name", decodeLogPrefix, ErrMalformedInteraction)
		}
	}
	return &i, nil
}

// CommandData returns the command payload of an application command
// interaction.
func CommandData(i *discordgo.Interaction) (*discordgo.ApplicationCommandInteractionData, bool) {
	if i == nil || i.Data == nil {
		return nil, false
	}
	switch data := i.Data.(type) {
	case discordgo.ApplicationCommandInteractionData:
		return &data, true
	case *discordgo.ApplicationCommandInteractionData:
		return data, data != nil
	default:
		return nil, false
	}
}
