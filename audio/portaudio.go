package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSink plays samples through the default output device. One sink
// serves one playback; the player opens a fresh sink per utterance.
type PortAudioSink struct {
	stream *portaudio.Stream
	buffer []float32
}

// NewPortAudioSink is the production SinkFactory
func NewPortAudioSink() Sink {
	return &PortAudioSink{}
}

// Start initializes PortAudio and opens the default output stream
func (s *PortAudioSink) Start(sampleRate int, channels int) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	if channels <= 0 {
		channels = 1
	}

	s.buffer = make([]float32, chunkSize)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), chunkSize, &s.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open output stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	s.stream = stream
	return nil
}

// Write pushes one chunk of samples, zero-padding the final partial chunk
func (s *PortAudioSink) Write(samples []float32) error {
	for i := range s.buffer {
		if i < len(samples) {
			s.buffer[i] = samples[i]
		} else {
			s.buffer[i] = 0
		}
	}
	return s.stream.Write()
}

// Close stops the stream and tears down PortAudio
func (s *PortAudioSink) Close() error {
	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
		s.stream = nil
	}
	return portaudio.Terminate()
}
