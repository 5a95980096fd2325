package cache_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenziCode/genzi-rms-sub003/internal/cache"
)

func TestRedisBus(t *testing.T) {
	mr := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := cache.NewRedisClient(ctx, mr.Addr())
	require.NoError(t, err)

	defer client.Close()

	bus := cache.NewRedisBus(client, "authz:invalidate")

	var forms, fields atomic.Int32

	bus.Subscribe("forms", func() { forms.Add(1) })
	bus.Subscribe("fields", func() { fields.Add(1) })

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, "forms"))
	require.NoError(t, bus.Publish(ctx, "unknown"))

	assert.Eventually(t, func() bool { return forms.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), fields.Load())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := cache.NewRedisClient(context.Background(), addr)
	require.Error(t, err)
}
