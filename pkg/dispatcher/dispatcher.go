package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/morezero/interaction-router/pkg/envelope"
	"github.com/morezero/interaction-router/pkg/events"
	"github.com/morezero/interaction-router/pkg/registry"
)

const (
	logPrefix  = "dispatcher:dispatch"
	tracerName = "github.com/morezero/interaction-router/pkg/dispatcher"
)

// DefaultHandlerTimeout matches the platform's deadline for an initial response.
const DefaultHandlerTimeout = 3 * time.Second

// Verifier authenticates raw delivery bytes.
type Verifier interface {
	Verify(rawBody []byte, timestamp, signature string) error
}

// Dispatcher routes verified interactions to registered command handlers.
type Dispatcher struct {
	verifier       Verifier
	registry       *registry.Registry
	publisher      events.EventPublisher
	handlerTimeout time.Duration
	tracer         trace.Tracer
}

// NewDispatcherParams holds parameters for NewDispatcher.
type NewDispatcherParams struct {
	Verifier       Verifier
	Registry       *registry.Registry
	Publisher      events.EventPublisher
	HandlerTimeout time.Duration
}

// NewDispatcher creates a new Dispatcher. A nil Verifier rejects every
// delivery; a nil Registry behaves as an empty one.
func NewDispatcher(params NewDispatcherParams) *Dispatcher {
	reg := params.Registry
	if reg == nil {
		reg = registry.NewRegistry()
	}
	pub := params.Publisher
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}
	timeout := params.HandlerTimeout
	if timeout <= 0 {
		timeout = DefaultHandlerTimeout
	}
	return &Dispatcher{
		verifier:       params.Verifier,
		registry:       reg,
		publisher:      pub,
		handlerTimeout: timeout,
		tracer:         otel.Tracer(tracerName),
	}
}

// Dispatch processes one delivery: verify, decode, classify, look up the
// handler, invoke it and encode its result. It never panics on bad input;
// every failure becomes an InteractionResponse with an error status.
func (d *Dispatcher) Dispatch(ctx context.Context, req *InteractionRequest) *InteractionResponse {
	start := time.Now()
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	ctx, span := d.tracer.Start(ctx, "interaction.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("interaction.request_id", id)),
	)
	defer span.End()

	resp, interaction := d.dispatch(ctx, id, req)
	resp.RequestID = id

	span.SetAttributes(
		attribute.String("interaction.outcome", resp.Outcome),
		attribute.Int("http.response.status_code", resp.Status),
	)
	if resp.Key != "" {
		span.SetAttributes(attribute.String("interaction.command", resp.Key))
	}
	if resp.Err != nil {
		span.RecordError(resp.Err)
		span.SetStatus(codes.Error, resp.Err.Code)
	}

	d.publish(ctx, resp, interaction, time.Since(start))
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, id string, req *InteractionRequest) (*InteractionResponse, *discordgo.Interaction) {
	if err := ctx.Err(); err != nil {
		slog.Debug(fmt.Sprintf("%s - [%s] request abandoned before verification: %v", logPrefix, id, err))
		return failure(events.OutcomeAborted, NewInteractionError(CodeAborted, err)), nil
	}

	// Verifying
	if d.verifier == nil {
		slog.Error(fmt.Sprintf("%s - [%s] no verifier configured, rejecting delivery", logPrefix, id))
		return failure(events.OutcomeUnauthorized, NewInteractionError(CodeUnauthorized, errors.New("no verifier configured"))), nil
	}
	if err := d.verifier.Verify(req.Body, req.Timestamp, req.Signature); err != nil {
		slog.Info(fmt.Sprintf("%s - [%s] rejected delivery: %v", logPrefix, id, err))
		return failure(events.OutcomeUnauthorized, NewInteractionError(CodeUnauthorized, err)), nil
	}

	// Decoding
	interaction, err := envelope.Decode(req.Body)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - [%s] error deserializing interaction: %v", logPrefix, id, err))
		return failure(events.OutcomeDecodeFailed, NewInteractionError(CodeDecodeError, err)), nil
	}
	slog.Debug(fmt.Sprintf("%s - [%s] interaction type=%s id=%s", logPrefix, id, KindName(interaction.Type), interaction.ID))

	// Classifying
	var resp *InteractionResponse
	switch interaction.Type {
	case discordgo.InteractionPing:
		resp = encoded(events.OutcomePong, envelope.Pong())
	case discordgo.InteractionApplicationCommand:
		resp = d.handleCommand(ctx, id, interaction)
	default:
		slog.Error(fmt.Sprintf("%s - [%s] Unhandled interaction type %s received: %s", logPrefix, id, KindName(interaction.Type), req.Body))
		resp = failure(events.OutcomeUnsupportedKind, NewInteractionError(CodeUnsupportedKind,
			fmt.Errorf("interaction type %s", KindName(interaction.Type))))
	}
	resp.Kind = KindName(interaction.Type)
	return resp, interaction
}

func (d *Dispatcher) handleCommand(ctx context.Context, id string, interaction *discordgo.Interaction) *InteractionResponse {
	data, ok := envelope.CommandData(interaction)
	if !ok {
		return failure(events.OutcomeDecodeFailed, NewInteractionError(CodeDecodeError, errors.New("application command without data")))
	}

	// KeyBuilding
	path, options := registry.PathFor(data)
	key := path.Key()

	// Dispatching
	cmd, ok := d.registry.Lookup(key)
	if !ok {
		slog.Error(fmt.Sprintf("%s - [%s] No handler found for command %s", logPrefix, id, key))
		resp := failure(events.OutcomeNotFound, NewInteractionError(CodeDispatchError, fmt.Errorf("no handler for %q", key)))
		resp.Key = key
		return resp
	}

	// Handling
	result, err := d.invoke(ctx, cmd.Handler(), &registry.Request{
		ID:          id,
		Interaction: interaction,
		Data:        data,
		Path:        path,
		Options:     options,
	})
	if err != nil {
		var resp *InteractionResponse
		if ctx.Err() != nil {
			slog.Info(fmt.Sprintf("%s - [%s] request cancelled while handling %s: %v", logPrefix, id, key, err))
			resp = failure(events.OutcomeAborted, NewInteractionError(CodeAborted, err))
		} else {
			slog.Error(fmt.Sprintf("%s - [%s] handler for %s failed: %v", logPrefix, id, key, err))
			resp = failure(events.OutcomeHandlerFailed, NewInteractionError(CodeHandlerError, err))
		}
		resp.Key = key
		return resp
	}

	// Responding
	body, err := envelope.Encode(result)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - [%s] handler for %s returned an unencodable result: %v", logPrefix, id, key, err))
		resp := failure(events.OutcomeHandlerFailed, NewInteractionError(CodeHandlerError, err))
		resp.Key = key
		return resp
	}
	slog.Debug(fmt.Sprintf("%s - [%s] handled %s", logPrefix, id, key))
	return &InteractionResponse{Status: http.StatusOK, Body: body, Outcome: events.OutcomeResponded, Key: key}
}

// invoke runs the handler in its own goroutine so the dispatcher can stop
// waiting when the request is cancelled or the handler deadline passes. The
// handler observes both through ctx.
func (d *Dispatcher) invoke(ctx context.Context, h registry.Handler, req *registry.Request) (envelope.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.handlerTimeout)
	defer cancel()

	ctx, span := d.tracer.Start(ctx, "interaction.handle",
		trace.WithAttributes(attribute.String("interaction.command", req.Path.Key())))
	defer span.End()

	type outcome struct {
		result envelope.Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("handler panic: %v", r)}
			}
		}()
		result, err := h.Handle(ctx, req)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			span.RecordError(o.err)
			span.SetStatus(codes.Error, "handler error")
		}
		return o.result, o.err
	case <-ctx.Done():
		span.SetStatus(codes.Error, "handler deadline")
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) publish(ctx context.Context, resp *InteractionResponse, interaction *discordgo.Interaction, elapsed time.Duration) {
	event := &events.InteractionDispatchedEvent{
		RequestID:  resp.RequestID,
		Outcome:    resp.Outcome,
		Status:     resp.Status,
		Kind:       resp.Kind,
		Key:        resp.Key,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if interaction != nil {
		event.GuildID = interaction.GuildID
		event.UserID = (&registry.Request{Interaction: interaction}).UserID()
	}
	if err := d.publisher.PublishDispatched(context.WithoutCancel(ctx), event); err != nil {
		slog.Warn(fmt.Sprintf("%s - [%s] failed to publish dispatch event: %v", logPrefix, resp.RequestID, err))
	}
}

// --- helpers ---

func encoded(outcome string, result envelope.Result) *InteractionResponse {
	body, err := envelope.Encode(result)
	if err != nil {
		return failure(events.OutcomeHandlerFailed, NewInteractionError(CodeHandlerError, err))
	}
	return &InteractionResponse{Status: http.StatusOK, Body: body, Outcome: outcome}
}

func failure(outcome string, ierr *InteractionError) *InteractionResponse {
	return &InteractionResponse{
		Status:  ierr.HTTPStatus(),
		Body:    errorBody(ierr),
		Outcome: outcome,
		Err:     ierr,
	}
}

func errorBody(ierr *InteractionError) []byte {
	data, err := json.Marshal(ErrorBody{Error: ErrorDetail{Code: ierr.Code, Message: ierr.Message}})
	if err != nil {
		return []byte(`{"error":{"code":"` + ierr.Code + `"}}`)
	}
	return data
}

// KindName renders an interaction type for logs and events.
func KindName(t discordgo.InteractionType) string {
	switch t {
	case discordgo.InteractionPing:
		return "Ping"
	case discordgo.InteractionApplicationCommand:
		return "ApplicationCommand"
	case discordgo.InteractionMessageComponent:
		return "MessageComponent"
	case discordgo.InteractionApplicationCommandAutocomplete:
		return "ApplicationCommandAutocomplete"
	case discordgo.InteractionModalSubmit:
		return "ModalSubmit"
	default:
		return "Unknown(" + strconv.Itoa(int(t)) + ")"
	}
}
