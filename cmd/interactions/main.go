// Package main is the entrypoint for the interaction-router.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/morezero/interaction-router/internal/commands"
	"github.com/morezero/interaction-router/internal/config"
	"github.com/morezero/interaction-router/internal/server"
	"github.com/morezero/interaction-router/pkg/bootstrap"
	"github.com/morezero/interaction-router/pkg/registry"
)

const usage = `Usage: interactions [command]

Commands:
  serve       (default) Start the interaction router (HTTP webhook, NATS events).
  commands    List the built-in and static commands with their dispatch keys.
  version     Print the build version.
  help        Show this message.

Environment: DISCORD_PUBLIC_KEY (required), HTTP_ADDR, HTTP_PORT, INTERACTIONS_PATH,
MAX_BODY_BYTES, HANDLER_TIMEOUT, SHUTDOWN_TIMEOUT, COMMANDS_FILE (comma-separated, later
files override earlier ones), COMMS_URL, SERVICE_NAME, EVENT_SUBJECT, EVENT_COMMAND_SUBJECTS,
OTEL_ENDPOINT, LOG_LEVEL. A .env file in the working directory is loaded when present.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "commands":
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("interactions commands: %v", err)
		}
		if err := printCommands(os.Stdout, cfg.CommandsFiles...); err != nil {
			log.Fatalf("interactions commands: %v", err)
		}
		return
	case "version":
		fmt.Println(commands.BuildVersion())
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		// serve (explicit or default)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("interactions: %v", err)
	}
}

func printCommands(w io.Writer, commandsFiles ...string) error {
	reg := registry.NewRegistry()
	if err := commands.Register(commands.RegisterParams{Registry: reg}); err != nil {
		return err
	}
	staticCfg, err := bootstrap.LoadBootstrapConfig(commandsFiles...)
	if err != nil {
		return err
	}
	static := bootstrap.CreateResolvedBootstrap(staticCfg)
	if _, err := bootstrap.Register(reg, static); err != nil {
		return err
	}
	if static.Name() != "" {
		fmt.Fprintf(w, "Static commands: %s (version %s)\n\n", static.Name(), static.Version())
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMAND\tKEY\tDESCRIPTION")
	for _, c := range reg.Commands() {
		fmt.Fprintf(tw, "/%s\t%s\t%s\n", c.Path(), c.Key(), c.Description())
	}
	return tw.Flush()
}
