package bootstrap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

const logPrefix = "bootstrap:loader"

// DefaultPaths are tried after any explicit paths.
var DefaultPaths = []string{"config/commands.json", "commands.json"}

// LoadBootstrapConfig loads static commands. Explicit paths are layers: every
// one that exists is merged over the ones before it, so later files override
// earlier keys. When none of them exists the first readable DefaultPaths entry
// is used. Missing files are skipped; a file that exists but does not parse is
// an error. With no file at all an empty config is returned.
func LoadBootstrapConfig(paths ...string) (*BootstrapConfig, error) {
	var merged *BootstrapConfig
	for _, p := range paths {
		if p == "" {
			continue
		}
		cfg, err := readBootstrapFile(p)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			continue
		}
		if merged == nil {
			merged = cfg
			continue
		}
		merged = MergeBootstrapConfigs(merged, cfg)
		slog.Info(fmt.Sprintf("%s - Layered %s over earlier static commands", logPrefix, p))
	}
	if merged != nil {
		return merged, nil
	}

	for _, p := range DefaultPaths {
		cfg, err := readBootstrapFile(p)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			return cfg, nil
		}
	}

	slog.Debug(fmt.Sprintf("%s - No static command file found", logPrefix))
	return GetDefaultBootstrapConfig(), nil
}

// readBootstrapFile returns nil, nil when the file cannot be read.
func readBootstrapFile(p string) (*BootstrapConfig, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn(fmt.Sprintf("%s - Failed to read %s: %v", logPrefix, p, err))
		}
		return nil, nil
	}

	var cfg BootstrapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s - failed to parse %s: %w", logPrefix, p, err)
	}

	slog.Info(fmt.Sprintf("%s - Loaded %d static commands from %s", logPrefix, len(cfg.Commands), p))
	return &cfg, nil
}

// GetDefaultBootstrapConfig returns an empty static command config.
func GetDefaultBootstrapConfig() *BootstrapConfig {
	return &BootstrapConfig{
		Name:     "static-commands",
		Version:  "0",
		Commands: map[string]BootstrapCommand{},
		Aliases:  map[string]string{},
	}
}

// CreateResolvedBootstrap builds a ResolvedBootstrap for fast lookups.
func CreateResolvedBootstrap(cfg *BootstrapConfig) *ResolvedBootstrap {
	cmds := make(map[string]*BootstrapCommand, len(cfg.Commands))
	for key, cmd := range cfg.Commands {
		c := cmd
		cmds[key] = &c
	}

	aliases := make(map[string]string, len(cfg.Aliases))
	for alias, target := range cfg.Aliases {
		aliases[alias] = target
	}

	return &ResolvedBootstrap{
		name:     cfg.Name,
		version:  cfg.Version,
		commands: cmds,
		aliases:  aliases,
	}
}

// MergeBootstrapConfigs merges an override config into a base config. Entries
// in override replace entries with the same key.
func MergeBootstrapConfigs(base, override *BootstrapConfig) *BootstrapConfig {
	merged := *base

	merged.Commands = make(map[string]BootstrapCommand, len(base.Commands)+len(override.Commands))
	for key, cmd := range base.Commands {
		merged.Commands[key] = cmd
	}
	for key, cmd := range override.Commands {
		merged.Commands[key] = cmd
	}

	merged.Aliases = make(map[string]string, len(base.Aliases)+len(override.Aliases))
	for alias, target := range base.Aliases {
		merged.Aliases[alias] = target
	}
	for alias, target := range override.Aliases {
		merged.Aliases[alias] = target
	}

	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	return &merged
}
