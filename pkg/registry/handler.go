package registry

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/morezero/interaction-router/pkg/envelope"
)

// Handler is application logic bound to a command path.
type Handler interface {
	Handle(ctx context.Context, req *Request) (envelope.Result, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) (envelope.Result, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (envelope.Result, error) {
	return f(ctx, req)
}

// TextFunc adapts a function that always replies with text.
func TextFunc(f func(ctx context.Context, req *Request) string) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (envelope.Result, error) {
		return envelope.Text(f(ctx, req)), nil
	})
}

// Request is passed to a handler for one command invocation.
type Request struct {
	// ID correlates log lines and events for this delivery.
	ID          string
	Interaction *discordgo.Interaction
	Data        *discordgo.ApplicationCommandInteractionData
	Path        CommandPath
	// Options are the arguments below the deepest subcommand.
	Options []*discordgo.ApplicationCommandInteractionDataOption
}

// Option finds an argument by name.
func (r *Request) Option(name string) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, opt := range r.Options {
		if opt != nil && opt.Name == name {
			return opt, true
		}
	}
	return nil, false
}

// StringOption returns a string argument, or "" when absent or not a string.
func (r *Request) StringOption(name string) string {
	opt, ok := r.Option(name)
	if !ok {
		return ""
	}
	s, _ := opt.Value.(string)
	return s
}

// UserID returns the invoking user, whether the command ran in a guild or a DM.
func (r *Request) UserID() string {
	if r.Interaction == nil {
		return ""
	}
	if r.Interaction.Member != nil && r.Interaction.Member.User != nil {
		return r.Interaction.Member.User.ID
	}
	if r.Interaction.User != nil {
		return r.Interaction.User.ID
	}
	return ""
}
