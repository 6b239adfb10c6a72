package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/knapsack/internal/telemetry"
)

func TestInitDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), telemetry.Config{ServiceName: "knapsack"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	// The global no-op providers still hand out usable instruments.
	counter, err := telemetry.Meter("test").Int64Counter("noop.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	_, span := telemetry.Tracer("test").Start(context.Background(), "noop")
	span.End()
}
