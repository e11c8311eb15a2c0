// Package bootstrap loads static commands: commands whose reply is fixed text,
// declared in a JSON file and registered at startup next to the built-ins.
package bootstrap

// BootstrapCommand is one static command entry.
type BootstrapCommand struct {
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	Ephemeral   bool   `json:"ephemeral,omitempty"`
}

// BootstrapConfig is the root of a static command file. Command keys are
// canonical dispatch keys ("rules", "faq|shipping", "admin|docs|links").
type BootstrapConfig struct {
	Name     string                      `json:"name"`
	Version  string                      `json:"version"`
	Commands map[string]BootstrapCommand `json:"commands"`
	// Aliases map an extra dispatch key to an existing command key.
	Aliases map[string]string `json:"aliases"`
}

// ResolvedBootstrap provides fast lookup of static commands.
type ResolvedBootstrap struct {
	name     string
	version  string
	commands map[string]*BootstrapCommand
	aliases  map[string]string
}

// Get returns a command by key, following one alias hop.
func (rb *ResolvedBootstrap) Get(key string) *BootstrapCommand {
	if cmd, ok := rb.commands[key]; ok {
		return cmd
	}
	if target, ok := rb.aliases[key]; ok {
		if cmd, ok := rb.commands[target]; ok {
			return cmd
		}
	}
	return nil
}

// ResolveAlias resolves an alias to its command key.
func (rb *ResolvedBootstrap) ResolveAlias(alias string) string {
	if target, ok := rb.aliases[alias]; ok {
		return target
	}
	return alias
}

// List returns all static commands by key. The map must not be modified.
func (rb *ResolvedBootstrap) List() map[string]*BootstrapCommand {
	return rb.commands
}

// Aliases returns the alias table.
func (rb *ResolvedBootstrap) Aliases() map[string]string {
	return rb.aliases
}

// Name returns the config name.
func (rb *ResolvedBootstrap) Name() string {
	return rb.name
}

// Version returns the config version.
func (rb *ResolvedBootstrap) Version() string {
	return rb.version
}
