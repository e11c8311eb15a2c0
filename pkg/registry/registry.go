// Package registry maps canonical command keys to handlers.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

const logPrefix = "registry:registry"

// ErrNilHandler is returned when registering a nil handler.
var ErrNilHandler = errors.New("handler is nil")

// RegisteredCommand pairs a canonical key with its handler. It is never
// modified after registration.
type RegisteredCommand struct {
	key         string
	path        CommandPath
	handler     Handler
	description string
}

func (c *RegisteredCommand) Key() string         { return c.key }
func (c *RegisteredCommand) Path() CommandPath   { return c.path }
func (c *RegisteredCommand) Handler() Handler    { return c.handler }
func (c *RegisteredCommand) Description() string { return c.description }

// Option configures a registration.
type Option func(*RegisteredCommand)

// WithDescription attaches a human readable description.
func WithDescription(d string) Option {
	return func(c *RegisteredCommand) { c.description = d }
}

// Registry is safe for concurrent use. Lookups share a read lock and only
// wait on an in-progress registration.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*RegisteredCommand
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*RegisteredCommand)}
}

// Register binds handler to path. An existing handler for the same key is
// replaced.
func (r *Registry) Register(path CommandPath, handler Handler, opts ...Option) error {
	if err := path.Validate(); err != nil {
		return fmt.Errorf("%s - %w", logPrefix, err)
	}
	if handler == nil {
		return fmt.Errorf("%s - %s: %w", logPrefix, path.Key(), ErrNilHandler)
	}

	cmd := &RegisteredCommand{
		key:     path.Key(),
		path:    NewCommandPath(path.segments...),
		handler: handler,
	}
	for _, opt := range opts {
		opt(cmd)
	}

	r.mu.Lock()
	_, replaced := r.commands[cmd.key]
	r.commands[cmd.key] = cmd
	r.mu.Unlock()

	if replaced {
		slog.Warn(fmt.Sprintf("%s - Replaced handler for %s", logPrefix, cmd.key))
	} else {
		slog.Debug(fmt.Sprintf("%s - Registered %s", logPrefix, cmd.key))
	}
	return nil
}

// MustRegister is Register for startup code; it panics on error.
func (r *Registry) MustRegister(path CommandPath, handler Handler, opts ...Option) {
	if err := r.Register(path, handler, opts...); err != nil {
		panic(err)
	}
}

// Lookup returns the command registered under key.
func (r *Registry) Lookup(key string) (*RegisteredCommand, bool) {
	r.mu.RLock()
	cmd, ok := r.commands[key]
	r.mu.RUnlock()
	return cmd, ok
}

// Unregister removes key and reports whether it was present.
func (r *Registry) Unregister(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[key]; !ok {
		return false
	}
	delete(r.commands, key)
	return true
}

// Keys returns all registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.commands))
	for k := range r.commands {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Commands returns a snapshot of all registrations sorted by key.
func (r *Registry) Commands() []*RegisteredCommand {
	r.mu.RLock()
	out := make([]*RegisteredCommand, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
