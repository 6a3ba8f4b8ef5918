package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(0, 10)
	ctx := context.Background()

	key := Key("google", "Zephyr", "en", "Hello there!")
	entry := &SpeechEntry{Encoding: "pcm", Data: []byte{1, 2, 3, 4}, SampleRate: 24000}

	_, found := c.Get(ctx, key)
	assert.False(t, found)

	c.Set(ctx, key, entry)

	got, found := c.Get(ctx, key)
	require.True(t, found)
	assert.Equal(t, entry.Data, got.Data)
	assert.Equal(t, 24000, got.SampleRate)
}

func TestMemoryCacheExpiration(t *testing.T) {
	c := NewMemoryCache(time.Minute, 10)
	ctx := context.Background()

	base := time.Now()
	nowFunc = func() time.Time { return base }
	defer func() { nowFunc = time.Now }()

	c.Set(ctx, "k", &SpeechEntry{Data: []byte{1}})

	_, found := c.Get(ctx, "k")
	assert.True(t, found)

	nowFunc = func() time.Time { return base.Add(2 * time.Minute) }
	_, found = c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(0, 2)
	ctx := context.Background()

	c.Set(ctx, "a", &SpeechEntry{Data: []byte{1}})
	c.Set(ctx, "b", &SpeechEntry{Data: []byte{2}})
	c.Set(ctx, "c", &SpeechEntry{Data: []byte{3}})

	present := 0
	for _, k := range []string{"a", "b", "c"} {
		if _, found := c.Get(ctx, k); found {
			present++
		}
	}
	assert.Equal(t, 2, present)
}

func TestKeyIsStableAndDistinct(t *testing.T) {
	a := Key("google", "Zephyr", "en", "hello")
	b := Key("google", "Zephyr", "en", "hello")
	c := Key("google", "Puck", "en", "hello")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "speech:")
}
