package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemoryCache() (*MemoryForecastCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
	cache := NewMemoryForecastCache()
	cache.now = clock.Now
	return cache, clock
}

func TestMemoryForecastCache_PassiveExpiry(t *testing.T) {
	cache, clock := newTestMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "weather:seattle", model.ForecastPayload(`{"a":1}`), 600*time.Second))

	clock.Advance(599 * time.Second)
	got, found, err := cache.Get(ctx, "weather:seattle")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.ForecastPayload(`{"a":1}`), got)
	assert.Equal(t, time.Second, cache.TTL("weather:seattle"))

	clock.Advance(time.Second)
	_, found, err = cache.Get(ctx, "weather:seattle")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, cache.TTL("weather:seattle"))
}

func TestMemoryForecastCache_OverwriteResetsTTL(t *testing.T) {
	cache, clock := newTestMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "weather:boston", model.ForecastPayload(`{"v":1}`), time.Minute))
	clock.Advance(50 * time.Second)
	require.NoError(t, cache.Set(ctx, "weather:boston", model.ForecastPayload(`{"v":2}`), time.Minute))

	assert.Equal(t, time.Minute, cache.TTL("weather:boston"))
	got, found, _ := cache.Get(ctx, "weather:boston")
	assert.True(t, found)
	assert.Equal(t, model.ForecastPayload(`{"v":2}`), got)
}

func TestMemoryForecastCache_StoresCopy(t *testing.T) {
	cache, _ := newTestMemoryCache()
	ctx := context.Background()
	payload := model.ForecastPayload(`{"v":1}`)
	require.NoError(t, cache.Set(ctx, "weather:boston", payload, time.Minute))
	payload[5] = '9'

	got, _, _ := cache.Get(ctx, "weather:boston")
	assert.Equal(t, model.ForecastPayload(`{"v":1}`), got)
}

func TestMemoryForecastCache_ReturnsCopy(t *testing.T) {
	cache, _ := newTestMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "weather:boston", model.ForecastPayload(`{"v":1}`), time.Minute))

	first, found, err := cache.Get(ctx, "weather:boston")
	require.NoError(t, err)
	require.True(t, found)
	first[5] = '9'

	second, _, _ := cache.Get(ctx, "weather:boston")
	assert.Equal(t, model.ForecastPayload(`{"v":1}`), second)
}

func TestMemoryForecastCache_Sweep(t *testing.T) {
	cache, clock := newTestMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "weather:a", model.ForecastPayload(`{}`), time.Minute))
	require.NoError(t, cache.Set(ctx, "weather:b", model.ForecastPayload(`{}`), time.Hour))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 1, cache.Len())
}

func TestMemoryForecastCache_Janitor(t *testing.T) {
	cache := NewMemoryForecastCache()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cache.Set(ctx, "weather:a", model.ForecastPayload(`{}`), time.Millisecond))

	cache.StartJanitor(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemoryForecastCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryForecastCache()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Set(ctx, "weather:concurrent", model.ForecastPayload(`{}`), time.Minute)
			_, _, _ = cache.Get(ctx, "weather:concurrent")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
	assert.NoError(t, cache.Ping(ctx))
}
