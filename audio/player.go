package audio

import (
	"sync"

	"magic-encyclopedia/backend/pkg/logger"
)

// chunkSize is the number of samples written to the sink per call
const chunkSize = 1024

// Sink is one audio output session. Start opens the device, Write pushes a
// chunk of samples, Close releases the device.
type Sink interface {
	Start(sampleRate int, channels int) error
	Write(samples []float32) error
	Close() error
}

// SinkFactory opens a fresh sink per playback
type SinkFactory func() Sink

type playback struct {
	stop chan struct{}
	done chan struct{}
}

// Player owns the single playback slot. Starting a new playback stops and
// discards whatever is currently audible first; utterances are never queued
// or mixed.
type Player struct {
	mu      sync.Mutex
	newSink SinkFactory
	current *playback
	log     *logger.Logger
}

// NewPlayer creates a player that opens sinks through the given factory
func NewPlayer(factory SinkFactory, log *logger.Logger) *Player {
	return &Player{newSink: factory, log: log}
}

// Play starts playing the buffer, interrupting any active playback
func (p *Player) Play(buf *Buffer) {
	p.mu.Lock()
	p.stopLocked()

	pb := &playback{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	p.current = pb
	p.mu.Unlock()

	go p.run(pb, buf)
}

// Stop interrupts the active playback, if any. Safe to call repeatedly.
func (p *Player) Stop() {
	p.mu.Lock()
	p.stopLocked()
	p.mu.Unlock()
}

// IsPlaying reports whether a playback is active
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// stopLocked signals the active playback and waits until it has released
// the sink. Callers hold p.mu.
func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	close(p.current.stop)
	<-p.current.done
	p.current = nil
}

func (p *Player) run(pb *playback, buf *Buffer) {
	// done must close before clear tries to take the lock: a concurrent
	// Stop holds the lock while waiting on done.
	defer p.clear(pb)
	defer close(pb.done)

	sink := p.newSink()
	if err := sink.Start(buf.SampleRate, buf.Channels); err != nil {
		p.log.LogError(err, "failed to open audio output")
		return
	}
	defer sink.Close()

	for pos := 0; pos < len(buf.Samples); pos += chunkSize {
		select {
		case <-pb.stop:
			return
		default:
		}

		end := pos + chunkSize
		if end > len(buf.Samples) {
			end = len(buf.Samples)
		}
		if err := sink.Write(buf.Samples[pos:end]); err != nil {
			p.log.LogError(err, "audio write failed")
			return
		}
	}
}

// clear drops the current slot if it still belongs to this playback
func (p *Player) clear(pb *playback) {
	p.mu.Lock()
	if p.current == pb {
		p.current = nil
	}
	p.mu.Unlock()
}
