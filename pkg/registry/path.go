package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// KeySeparator joins path segments into a canonical key. It is not a valid
// character in a command name.
const KeySeparator = "|"

// ErrInvalidPath is returned for paths that cannot be canonicalized.
var ErrInvalidPath = errors.New("invalid command path")

// CommandPath is a command name optionally followed by a subcommand group
// and subcommand, e.g. ["admin", "roles", "add"].
type CommandPath struct {
	segments []string
}

// Root returns a single-segment path.
func Root(name string) CommandPath {
	return CommandPath{segments: []string{name}}
}

// NewCommandPath returns a path from its segments, outermost first.
func NewCommandPath(segments ...string) CommandPath {
	return CommandPath{segments: append([]string(nil), segments...)}
}

// ParseKey is the inverse of Key.
func ParseKey(key string) CommandPath {
	return CommandPath{segments: strings.Split(key, KeySeparator)}
}

// Key returns the canonical registry key.
func (p CommandPath) Key() string {
	return strings.Join(p.segments, KeySeparator)
}

// Segments returns a copy of the path segments.
func (p CommandPath) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Root returns the top-level command name.
func (p CommandPath) Root() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[0]
}

// Depth is the number of segments.
func (p CommandPath) Depth() int {
	return len(p.segments)
}

// Child returns a new path with name appended.
func (p CommandPath) Child(name string) CommandPath {
	segs := make([]string, len(p.segments), len(p.segments)+1)
	copy(segs, p.segments)
	return CommandPath{segments: append(segs, name)}
}

// String renders the path the way a user types it, e.g. "admin roles add".
func (p CommandPath) String() string {
	return strings.Join(p.segments, " ")
}

// Validate reports whether every segment is a usable command name.
func (p CommandPath) Validate() error {
	if len(p.segments) == 0 {
		return fmt.Errorf("%w: no segments", ErrInvalidPath)
	}
	// root, group, sub
	if len(p.segments) > 3 {
		return fmt.Errorf("%w: %d segments, at most 3 allowed", ErrInvalidPath, len(p.segments))
	}
	for i, s := range p.segments {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: segment %d is empty", ErrInvalidPath, i)
		}
		if s != strings.TrimSpace(s) {
			return fmt.Errorf("%w: segment %q has surrounding whitespace", ErrInvalidPath, s)
		}
		if strings.Contains(s, KeySeparator) {
			return fmt.Errorf("%w: segment %q contains %q", ErrInvalidPath, s, KeySeparator)
		}
	}
	return nil
}

// PathFor derives the path of an invoked command. Starting from the command
// name, each level's SubCommandGroup or SubCommand option contributes its
// name, so "root", "root|sub" and "root|group|sub" stay distinct. The options
// below the deepest subcommand are returned alongside.
func PathFor(data *discordgo.ApplicationCommandInteractionData) (CommandPath, []*discordgo.ApplicationCommandInteractionDataOption) {
	if data == nil {
		return CommandPath{}, nil
	}
	segments, options := appendSubcommands([]string{data.Name}, data.Options)
	return CommandPath{segments: segments}, options
}

func appendSubcommands(
	segments []string,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) ([]string, []*discordgo.ApplicationCommandInteractionDataOption) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup, discordgo.ApplicationCommandOptionSubCommand:
			return appendSubcommands(append(segments, opt.Name), opt.Options)
		}
	}
	return segments, options
}
