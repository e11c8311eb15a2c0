package telemetry

import (
	"context"
	"testing"
	"time"
)

const providerTestPrefix = "telemetry:provider_test"

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), "test-service", "")
	if err != nil {
		t.Fatalf("%s - unexpected error: %v", providerTestPrefix, err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("%s - shutdown error: %v", providerTestPrefix, err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address; nothing is exported because no spans are recorded.
	shutdown, err := Setup(context.Background(), "test-service", "http://192.0.2.1:4318")
	if err != nil {
		t.Fatalf("%s - unexpected error: %v", providerTestPrefix, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("%s - shutdown error: %v", providerTestPrefix, err)
	}
}
