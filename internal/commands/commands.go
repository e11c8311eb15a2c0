// Package commands holds the built-in application commands served by the router.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/morezero/interaction-router/pkg/envelope"
	"github.com/morezero/interaction-router/pkg/registry"
)

const logPrefix = "commands:commands"

// Version is reported by "info version". Overridden at link time with
// -ldflags "-X github.com/morezero/interaction-router/internal/commands.Version=...".
var Version = ""

// RegisterParams holds parameters for Register.
type RegisterParams struct {
	Registry  *registry.Registry
	StartTime time.Time
	// Now defaults to time.Now.
	Now func() time.Time
}

// Register adds the built-in commands to params.Registry.
func Register(params RegisterParams) error {
	b := &builtins{
		reg:   params.Registry,
		start: params.StartTime,
		now:   params.Now,
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.start.IsZero() {
		b.start = b.now()
	}

	entries := []struct {
		path registry.CommandPath
		h    registry.Handler
		desc string
	}{
		{registry.Root("ping"), registry.TextFunc(b.ping), "Replies with Pong!"},
		{registry.NewCommandPath("info", "version"), registry.TextFunc(b.version), "Shows the running build"},
		{registry.NewCommandPath("info", "uptime"), registry.TextFunc(b.uptime), "Shows how long the router has been up"},
		{registry.NewCommandPath("info", "commands"), registry.HandlerFunc(b.commands), "Lists registered commands"},
	}
	for _, e := range entries {
		if err := b.reg.Register(e.path, e.h, registry.WithDescription(e.desc)); err != nil {
			return fmt.Errorf("%s - failed to register %s: %w", logPrefix, e.path, err)
		}
	}
	slog.Debug(fmt.Sprintf("%s - registered %d built-in commands", logPrefix, len(entries)))
	return nil
}

type builtins struct {
	reg   *registry.Registry
	start time.Time
	now   func() time.Time
}

func (b *builtins) ping(context.Context, *registry.Request) string {
	return "Pong!"
}

func (b *builtins) version(context.Context, *registry.Request) string {
	return "interaction-router " + BuildVersion()
}

func (b *builtins) uptime(context.Context, *registry.Request) string {
	return "Up for " + b.now().Sub(b.start).Truncate(time.Second).String()
}

func (b *builtins) commands(_ context.Context, _ *registry.Request) (envelope.Result, error) {
	var sb strings.Builder
	for _, cmd := range b.reg.Commands() {
		sb.WriteString("/" + cmd.Path().String())
		if cmd.Description() != "" {
			sb.WriteString(" - " + cmd.Description())
		}
		sb.WriteString("\n")
	}
	return envelope.Ephemeral(strings.TrimSuffix(sb.String(), "\n")), nil
}

// BuildVersion returns Version, falling back to the main module version
// recorded in the binary.
func BuildVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
