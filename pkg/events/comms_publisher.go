package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/interaction-router/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use defaults.
type CommsPublisherOpts struct {
	// GlobalSubject overrides the global dispatch subject (EVENT_SUBJECT).
	GlobalSubject string
	// CommandSubjects also publishes command outcomes on the per-command subject.
	CommandSubjects bool
}

// CommsPublisher publishes dispatch events to COMMS subjects.
type CommsPublisher struct {
	nc              *comms.Conn
	globalSubject   string
	commandSubjects bool
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	p := &CommsPublisher{nc: nc, globalSubject: commsutil.SubjectDispatched}
	if opts != nil {
		if opts.GlobalSubject != "" {
			p.globalSubject = opts.GlobalSubject
		}
		p.commandSubjects = opts.CommandSubjects
	}
	return p
}

// PublishDispatched publishes the event to the per-outcome subject, the global
// subject and, for resolved commands, the per-command subject.
func (p *CommsPublisher) PublishDispatched(_ context.Context, event *InteractionDispatchedEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	subjects := []string{commsutil.BuildOutcomeSubject(event.Outcome), p.globalSubject}
	if p.commandSubjects && event.Key != "" {
		subjects = append(subjects, commsutil.BuildCommandSubject(event.Key))
	}

	for _, subject := range subjects {
		if err := p.nc.Publish(subject, data); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, subject, err))
			return err
		}
	}

	slog.Debug(fmt.Sprintf("%s - Published %s event for request %s", commsPublisherLogPrefix, event.Outcome, event.RequestID))
	return nil
}
