// Package audio plays the built-in alert sounds through oto.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/borgmon/lightwalker/pkg/logging"
)

var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	globalAudioCtxErr  error
)

// ErrUnsupportedFormat is returned for WAV data oto cannot play.
var ErrUnsupportedFormat = errors.New("unsupported WAV format")

type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func initAudioContext(format *wavFormat) error {
	globalAudioCtxOnce.Do(func() {
		logger := logging.Component("audio")
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			globalAudioCtxErr = fmt.Errorf("failed to initialize audio context: %w", err)
			logger.Error().Err(err).Msg("Failed to initialize audio context")
			return
		}
		<-ready
		globalAudioCtx = ctx
		logger.Info().Msg("Audio context initialized")
	})
	return globalAudioCtxErr
}

// Player plays one alert sound at a time. Starting a sound stops the previous one.
type Player struct {
	mu      sync.Mutex
	current *oto.Player
	cache   map[string][]byte
}

func NewPlayer() *Player {
	return &Player{cache: make(map[string][]byte)}
}

// Play starts soundType at volume (0..1) and returns without waiting for it to finish.
func (p *Player) Play(soundType string, volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pcm, format, err := p.load(soundType)
	if err != nil {
		return err
	}
	if err := initAudioContext(format); err != nil {
		return err
	}

	p.stopLocked()
	player := globalAudioCtx.NewPlayer(bytes.NewReader(pcm))
	player.SetVolume(clampVolume(volume))
	player.Play()
	p.current = player

	logger := logging.Component("audio")
	logger.Debug().
		Str("sound", soundType).
		Float64("volume", volume).
		Msg("Playing alert sound")
	return nil
}

// Stop silences the sound that is playing, if any.
func (p *Player) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	p.current.Pause()
	if err := p.current.Close(); err != nil {
		logger := logging.Component("audio")
		logger.Warn().Err(err).Msg("Failed to close audio player")
	}
	p.current = nil
}

func (p *Player) load(soundType string) ([]byte, *wavFormat, error) {
	wav, ok := p.cache[soundType]
	if !ok {
		var err error
		wav, err = Tone(soundType)
		if err != nil {
			return nil, nil, err
		}
		p.cache[soundType] = wav
	}
	format, pcm, err := parseWAV(wav)
	if err != nil {
		return nil, nil, err
	}
	return pcm, format, nil
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// parseWAV reads the fmt and data chunks of a RIFF/WAVE file.
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	reader := bytes.NewReader(data)

	var header [12]byte
	if _, err := io.ReadFull(reader, header[:]); err != nil {
		return nil, nil, fmt.Errorf("failed to read WAV header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrUnsupportedFormat)
	}

	var format *wavFormat
	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(reader, chunkID[:]); err != nil {
			return nil, nil, fmt.Errorf("%w: no data chunk", ErrUnsupportedFormat)
		}
		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if chunkSize < 16 {
				return nil, nil, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedFormat)
			}
			if err := binary.Read(reader, binary.LittleEndian, &fmtChunk); err != nil {
				return nil, nil, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			if _, err := reader.Seek(int64(chunkSize-16), io.SeekCurrent); err != nil {
				return nil, nil, err
			}
			format = &wavFormat{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.Channels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}
			if fmtChunk.AudioFormat != 1 || format.BitDepth != 16 {
				return nil, nil, fmt.Errorf("%w: only 16-bit PCM is supported", ErrUnsupportedFormat)
			}
		case "data":
			if format == nil {
				return nil, nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrUnsupportedFormat)
			}
			if int64(chunkSize) > int64(reader.Len()) {
				return nil, nil, fmt.Errorf("%w: truncated data chunk", ErrUnsupportedFormat)
			}
			audio := make([]byte, chunkSize)
			if _, err := io.ReadFull(reader, audio); err != nil {
				return nil, nil, err
			}
			return format, audio, nil
		default:
			if _, err := reader.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, nil, err
			}
		}
	}
}
