package audio

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magic-encyclopedia/backend/pkg/logger"
)

// fakeSink records writes and can block to keep a playback alive
type fakeSink struct {
	mu      sync.Mutex
	started bool
	closed  bool
	rate    int
	written int
	block   chan struct{}
}

func (s *fakeSink) Start(sampleRate, channels int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	s.rate = sampleRate
	return nil
}

func (s *fakeSink) Write(samples []float32) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written += len(samples)
	return nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSink) snapshot() (bool, bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started, s.closed, s.written
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", JSON: false})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPlayerPlaysBufferToCompletion(t *testing.T) {
	sink := &fakeSink{}
	player := NewPlayer(func() Sink { return sink }, testLogger())

	buf := &Buffer{Samples: make([]float32, 2500), SampleRate: 24000, Channels: 1}
	player.Play(buf)

	waitFor(t, func() bool { _, closed, _ := sink.snapshot(); return closed })

	started, closed, written := sink.snapshot()
	assert.True(t, started)
	assert.True(t, closed)
	assert.Equal(t, 2500, written)
	assert.Equal(t, 24000, sink.rate)
	assert.False(t, player.IsPlaying())
}

func TestPlayerNewPlaybackInterruptsCurrent(t *testing.T) {
	first := &fakeSink{block: make(chan struct{})}
	second := &fakeSink{}
	sinks := []Sink{first, second}
	var next int
	var mu sync.Mutex

	player := NewPlayer(func() Sink {
		mu.Lock()
		defer mu.Unlock()
		s := sinks[next]
		next++
		return s
	}, testLogger())

	long := &Buffer{Samples: make([]float32, chunkSize*10), SampleRate: 24000, Channels: 1}
	player.Play(long)
	waitFor(t, func() bool { started, _, _ := first.snapshot(); return started })

	// release the blocked write once stop is signalled
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(first.block)
	}()

	short := &Buffer{Samples: make([]float32, chunkSize), SampleRate: 24000, Channels: 1}
	player.Play(short)

	waitFor(t, func() bool { _, closed, _ := second.snapshot(); return closed })

	_, firstClosed, firstWritten := first.snapshot()
	assert.True(t, firstClosed)
	assert.Less(t, firstWritten, len(long.Samples), "interrupted playback must not finish")

	_, _, secondWritten := second.snapshot()
	assert.Equal(t, chunkSize, secondWritten)
}

func TestPlayerStop(t *testing.T) {
	sink := &fakeSink{block: make(chan struct{})}
	player := NewPlayer(func() Sink { return sink }, testLogger())

	player.Play(&Buffer{Samples: make([]float32, chunkSize*4), SampleRate: 24000, Channels: 1})
	waitFor(t, func() bool { started, _, _ := sink.snapshot(); return started })
	require.True(t, player.IsPlaying())

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(sink.block)
	}()
	player.Stop()

	assert.False(t, player.IsPlaying())
	_, closed, _ := sink.snapshot()
	assert.True(t, closed)

	// repeated stop is a no-op
	player.Stop()
}
