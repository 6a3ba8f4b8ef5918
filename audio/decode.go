package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"magic-encyclopedia/backend/ai"
)

// Buffer is a playable in-memory audio buffer: mono float32 samples in
// [-1, 1] at a known sample rate.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration in seconds
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Decode turns a synthesis result into a playable buffer. The switch over
// encodings is exhaustive; an unknown tag is an error, never a guess.
func Decode(result ai.SpeechResult) (*Buffer, error) {
	switch result.Encoding {
	case ai.EncodingPCM:
		rate := result.SampleRate
		if rate == 0 {
			rate = ai.PCMSampleRate
		}
		return pcmToBuffer(result.Data, rate)
	case ai.EncodingFile:
		return decodeContainer(result.Data)
	default:
		return nil, fmt.Errorf("unknown audio encoding %q", result.Encoding)
	}
}

// pcmToBuffer reinterprets raw bytes as 16-bit signed little-endian mono
// samples normalized to [-1, 1].
func pcmToBuffer(data []byte, sampleRate int) (*Buffer, error) {
	if len(data) == 0 {
		return nil, errors.New("empty PCM payload")
	}

	numSamples := len(data) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		samples[i] = float32(s) / 32768.0
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   1,
	}, nil
}

// decodeContainer sniffs the container format and decodes it. WAV is parsed
// directly; anything else is handed to the MP3 decoder.
func decodeContainer(data []byte) (*Buffer, error) {
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		rate, pcm, err := parseWAV(data)
		if err != nil {
			return nil, err
		}
		return pcmToBuffer(pcm, rate)
	}
	return decodeMP3(data)
}

// parseWAV walks the RIFF chunks and returns the sample rate and raw PCM data
func parseWAV(data []byte) (int, []byte, error) {
	if len(data) < 44 {
		return 0, nil, errors.New("file too small to be a valid WAV")
	}

	pos := 12
	var sampleRate uint32
	var dataStart int
	var dataSize int

	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		// A chunk header may claim more bytes than the payload holds.
		if chunkSize < 0 || body+chunkSize > len(data) {
			return 0, nil, errors.New("truncated WAV chunk")
		}

		switch chunkID {
		case "fmt ":
			if chunkSize >= 16 {
				sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			}
		case "data":
			dataStart = body
			dataSize = chunkSize
		}

		pos = body + chunkSize
		if pos%2 != 0 {
			pos++
		}
	}

	if sampleRate == 0 || dataStart == 0 {
		return 0, nil, errors.New("missing required WAV chunks")
	}

	return int(sampleRate), data[dataStart : dataStart+dataSize], nil
}

// decodeMP3 decodes an MP3 stream and downmixes its fixed stereo output to mono
func decodeMP3(data []byte) (*Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to read mp3 stream: %w", err)
	}

	// The decoder always emits 16-bit stereo frames.
	numFrames := len(raw) / 4
	samples := make([]float32, numFrames)
	for i := 0; i < numFrames; i++ {
		left := int16(binary.LittleEndian.Uint16(raw[i*4 : i*4+2]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2 : i*4+4]))
		samples[i] = (float32(left) + float32(right)) / 2 / 32768.0
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: decoder.SampleRate(),
		Channels:   1,
	}, nil
}
