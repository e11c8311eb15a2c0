// Package server orchestrates all components: verifier, command registry,
// dispatcher, NATS events, tracing and the HTTP transport.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/interaction-router/internal/commands"
	"github.com/morezero/interaction-router/internal/config"
	"github.com/morezero/interaction-router/pkg/bootstrap"
	"github.com/morezero/interaction-router/pkg/commsutil"
	"github.com/morezero/interaction-router/pkg/dispatcher"
	"github.com/morezero/interaction-router/pkg/events"
	"github.com/morezero/interaction-router/pkg/registry"
	"github.com/morezero/interaction-router/pkg/signature"
	"github.com/morezero/interaction-router/pkg/telemetry"
)

const logPrefix = "server:server"

// HeaderRequestID echoes the dispatcher's request ID back to the caller.
const HeaderRequestID = "X-Request-Id"

// Server is the interaction-router orchestrator.
type Server struct {
	cfg           *config.Config
	nc            *comms.Conn
	reg           *registry.Registry
	disp          *dispatcher.Dispatcher
	httpServer    *http.Server
	verifierReady bool
	eventsEnabled bool
}

// NewServerParams holds parameters for NewServer.
type NewServerParams struct {
	Config        *config.Config
	Registry      *registry.Registry
	Dispatcher    *dispatcher.Dispatcher
	VerifierReady bool
	EventsEnabled bool
}

// NewServer wires an HTTP front end around an existing dispatcher.
func NewServer(params NewServerParams) *Server {
	reg := params.Registry
	if reg == nil {
		reg = registry.NewRegistry()
	}
	return &Server{
		cfg:           params.Config,
		reg:           reg,
		disp:          params.Dispatcher,
		verifierReady: params.VerifierReady,
		eventsEnabled: params.EventsEnabled,
	}
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}

	// Setup structured logging
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("%s - Starting interaction-router %s", logPrefix, commands.BuildVersion()))
	startTime := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Step 1: Tracing
	shutdownTracing, err := telemetry.Setup(ctx, cfg.COMMSName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("%s - failed to set up tracing: %w", logPrefix, err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn(fmt.Sprintf("%s - tracing shutdown: %v", logPrefix, err))
		}
	}()

	// Step 2: Verifier. A bad key is fatal; the server never starts without one.
	verifier, err := signature.NewVerifier(cfg.DiscordPublicKey)
	if err != nil {
		return fmt.Errorf("%s - invalid DISCORD_PUBLIC_KEY: %w", logPrefix, err)
	}

	// Step 3: Command registry
	reg := registry.NewRegistry()
	if err := commands.Register(commands.RegisterParams{Registry: reg, StartTime: startTime}); err != nil {
		return err
	}
	staticCfg, err := bootstrap.LoadBootstrapConfig(cfg.CommandsFiles...)
	if err != nil {
		return fmt.Errorf("%s - failed to load static commands: %w", logPrefix, err)
	}
	static := bootstrap.CreateResolvedBootstrap(staticCfg)
	if _, err := bootstrap.Register(reg, static); err != nil {
		return fmt.Errorf("%s - failed to register static commands: %w", logPrefix, err)
	}
	slog.Info(fmt.Sprintf("%s - Static commands: %s version %s", logPrefix, static.Name(), static.Version()))
	slog.Info(fmt.Sprintf("%s - Registered %d commands", logPrefix, reg.Len()))

	// Step 4: Connect to NATS when configured
	var publisher events.EventPublisher = &events.NoOpPublisher{}
	var nc *comms.Conn
	if cfg.COMMSURL != "" {
		nc, err = commsutil.Connect(cfg.COMMSURL, cfg.COMMSName, commsutil.ConnectOptions{})
		if err != nil {
			return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
		}
		slog.Info(fmt.Sprintf("%s - Connected to NATS at %s", logPrefix, cfg.COMMSURL))
		publisher = events.NewCommsPublisher(nc, &events.CommsPublisherOpts{
			GlobalSubject:   cfg.EventSubject,
			CommandSubjects: cfg.EventCommands,
		})
	} else {
		slog.Info(fmt.Sprintf("%s - COMMS_URL not set, dispatch events disabled", logPrefix))
	}

	// Step 5: Dispatcher
	disp := dispatcher.NewDispatcher(dispatcher.NewDispatcherParams{
		Verifier:       verifier,
		Registry:       reg,
		Publisher:      publisher,
		HandlerTimeout: cfg.HandlerTimeout,
	})

	s := NewServer(NewServerParams{
		Config:        cfg,
		Registry:      reg,
		Dispatcher:    disp,
		VerifierReady: true,
		EventsEnabled: nc != nil,
	})
	s.nc = nc

	// Step 6: HTTP
	httpAddr := cfg.ListenAddr()
	s.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s (interactions at %s)", logPrefix, httpAddr, cfg.InteractionsPath))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	slog.Info(fmt.Sprintf("%s - Interaction router is ready", logPrefix))

	// Wait for shutdown signal or listener failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("%s - HTTP server error: %w", logPrefix, err)
			slog.Error(runErr.Error())
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn(fmt.Sprintf("%s - HTTP shutdown: %v", logPrefix, err))
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			slog.Warn(fmt.Sprintf("%s - NATS drain: %v", logPrefix, err))
		}
	}

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return runErr
}

// Handler returns the HTTP routes served by the router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.InteractionsPath, s.handleInteractions())
	mux.HandleFunc("/health", s.handleHealth())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	return mux
}

// handleInteractions reads the raw body and hands it, with the signature
// headers, to the dispatcher untouched.
func (s *Server) handleInteractions() http.HandlerFunc {
	maxBody := s.cfg.MaxBodyBytes
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, dispatcher.ErrorBody{
				Error: dispatcher.ErrorDetail{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"},
			})
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				slog.Info(fmt.Sprintf("%s - rejected body over %d bytes", logPrefix, tooLarge.Limit))
				writeJSON(w, http.StatusRequestEntityTooLarge, dispatcher.ErrorBody{
					Error: dispatcher.ErrorDetail{Code: "BODY_TOO_LARGE", Message: "Request body too large"},
				})
			case r.Context().Err() != nil:
				slog.Debug(fmt.Sprintf("%s - client went away while sending body: %v", logPrefix, err))
			default:
				slog.Info(fmt.Sprintf("%s - failed to read body: %v", logPrefix, err))
				writeJSON(w, http.StatusBadRequest, dispatcher.ErrorBody{
					Error: dispatcher.ErrorDetail{Code: dispatcher.CodeDecodeError, Message: "Error reading request body"},
				})
			}
			return
		}

		resp := s.disp.Dispatch(r.Context(), &dispatcher.InteractionRequest{
			ID:        r.Header.Get(HeaderRequestID),
			Timestamp: r.Header.Get(signature.HeaderTimestamp),
			Signature: r.Header.Get(signature.HeaderSignature),
			Body:      body,
		})
		if resp.Outcome == events.OutcomeAborted {
			return
		}

		w.Header().Set("Content-Type", dispatcher.ContentType)
		w.Header().Set(HeaderRequestID, resp.RequestID)
		w.WriteHeader(resp.Status)
		if _, err := w.Write(resp.Body); err != nil {
			slog.Debug(fmt.Sprintf("%s - [%s] failed to write response: %v", logPrefix, resp.RequestID, err))
		}
	}
}

// HealthChecks reports the state of each component.
type HealthChecks struct {
	Verifier bool `json:"verifier"`
	Commands int  `json:"commands"`
	Events   bool `json:"events"`
}

// HealthOutput is the /health response.
type HealthOutput struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp string       `json:"timestamp"`
}

func (s *Server) health() *HealthOutput {
	h := &HealthOutput{
		Status: "healthy",
		Checks: HealthChecks{
			Verifier: s.verifierReady && s.disp != nil,
			Commands: s.reg.Len(),
			Events:   s.eventsEnabled,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if s.nc != nil && !s.nc.IsConnected() {
		h.Checks.Events = false
	}
	if !h.Checks.Verifier {
		h.Status = "unhealthy"
	}
	return h
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := s.health()
		status := http.StatusOK
		if h.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, h)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(fmt.Sprintf("%s - json encode: %v", logPrefix, err))
	}
}
