// file: internal/services/service_collection_test.go
package services

import (
	"context"
	"testing"

	"campusboard/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckEventBusHealth(t *testing.T) {
	bus := events.NewInMemoryEventBus(events.DefaultEventBusConfig(), zap.NewNop())
	sc := &ServiceCollection{EventBus: bus, Logger: zap.NewNop()}

	status := sc.checkEventBusHealth(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Empty(t, status.Error)
	assert.Equal(t, "events", status.Name)
}

func TestCheckEventBusHealthAfterStop(t *testing.T) {
	bus := events.NewInMemoryEventBus(events.DefaultEventBusConfig(), zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))

	sc := &ServiceCollection{EventBus: bus, Logger: zap.NewNop()}
	status := sc.checkEventBusHealth(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.NotEmpty(t, status.Error)
}
