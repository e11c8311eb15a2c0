package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/morezero/interaction-router/pkg/envelope"
	"github.com/morezero/interaction-router/pkg/registry"
)

// Handler answers with the command's fixed content.
func Handler(cmd *BootstrapCommand) registry.Handler {
	return registry.HandlerFunc(func(context.Context, *registry.Request) (envelope.Result, error) {
		if cmd.Ephemeral {
			return envelope.Ephemeral(cmd.Content), nil
		}
		return envelope.Text(cmd.Content), nil
	})
}

// Register adds every static command and alias to reg. Keys are registered in
// sorted order so replacements are deterministic. It returns the number of
// keys registered.
func Register(reg *registry.Registry, rb *ResolvedBootstrap) (int, error) {
	cmds := rb.List()
	keys := make([]string, 0, len(cmds))
	for key := range cmds {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	n := 0
	for _, key := range keys {
		cmd := cmds[key]
		if err := reg.Register(registry.ParseKey(key), Handler(cmd), registry.WithDescription(cmd.Description)); err != nil {
			return n, fmt.Errorf("%s - command %q: %w", logPrefix, key, err)
		}
		n++
	}

	aliases := make([]string, 0, len(rb.Aliases()))
	for alias := range rb.Aliases() {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		target := rb.ResolveAlias(alias)
		cmd := rb.Get(alias)
		if cmd == nil {
			return n, fmt.Errorf("%s - alias %q points at unknown command %q", logPrefix, alias, target)
		}
		desc := cmd.Description
		if desc == "" {
			desc = "Alias of /" + registry.ParseKey(target).String()
		}
		if err := reg.Register(registry.ParseKey(alias), Handler(cmd), registry.WithDescription(desc)); err != nil {
			return n, fmt.Errorf("%s - alias %q: %w", logPrefix, alias, err)
		}
		n++
	}

	slog.Info(fmt.Sprintf("%s - Registered %d static keys from %s %s", logPrefix, n, rb.Name(), rb.Version()))
	return n, nil
}
