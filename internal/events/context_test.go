package events_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SegFaultAndEC/password-manager/internal/events"
)

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return default logger when none in context
	logger := events.FromContext(ctx)
	assert.NotNil(t, logger)
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	logger := events.NewNopLogger()

	ctx = events.WithLogger(ctx, logger)
	retrieved := events.FromContext(ctx)

	assert.Same(t, logger, retrieved)
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	ctx := events.WithLogger(context.Background(), events.NewTestLogger(events.InfoLevel, "json", &buf))

	ctx = events.WithOperation(ctx, "add_platform")
	assert.Equal(t, "add_platform", events.GetOperation(ctx))

	events.FromContext(ctx).Info("tagged")
	assert.Contains(t, buf.String(), `"op":"add_platform"`)
}

func TestGetOperationEmpty(t *testing.T) {
	assert.Empty(t, events.GetOperation(context.Background()))
}

func TestSetDefault(t *testing.T) {
	customLogger := events.NewNopLogger()
	events.SetDefault(customLogger)

	retrieved := events.FromContext(context.Background())

	assert.Same(t, customLogger, retrieved)
}
