package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/borgmon/lightwalker/pkg/models"
)

const (
	sampleRate = 44100
	channels   = 1
	bitDepth   = 16
)

// partial is one sine component of a tone.
type partial struct {
	freq  float64 // Hz
	gain  float64
	delay float64 // seconds before the partial starts
	decay float64 // exponential decay rate per second
}

type voice struct {
	length   float64 // seconds
	attack   float64 // seconds
	partials []partial
}

var tones = map[string]voice{
	models.SoundChime: {
		length: 1.2, attack: 0.005,
		partials: []partial{
			{freq: 1046.5, gain: 0.5, decay: 3},
			{freq: 1318.5, gain: 0.35, delay: 0.12, decay: 3},
			{freq: 2093.0, gain: 0.1, decay: 6},
		},
	},
	models.SoundBell: {
		length: 1.6, attack: 0.002,
		partials: []partial{
			{freq: 880, gain: 0.45, decay: 2},
			{freq: 880 * 2.76, gain: 0.2, decay: 4},
			{freq: 880 * 5.4, gain: 0.1, decay: 7},
			{freq: 440, gain: 0.15, decay: 1.5},
		},
	},
	models.SoundDing: {
		length: 0.45, attack: 0.002,
		partials: []partial{
			{freq: 1320, gain: 0.6, decay: 9},
			{freq: 2640, gain: 0.15, decay: 14},
		},
	},
	models.SoundGentle: {
		length: 1.8, attack: 0.15,
		partials: []partial{
			{freq: 523.25, gain: 0.3, decay: 1.6},
			{freq: 659.25, gain: 0.25, delay: 0.45, decay: 1.8},
		},
	},
}

// Tone synthesizes the named built-in sound as a 16-bit mono WAV file.
func Tone(soundType string) ([]byte, error) {
	tone, ok := tones[soundType]
	if !ok {
		return nil, fmt.Errorf("unknown sound %q", soundType)
	}
	return encodeWAV(synthesize(tone)), nil
}

func synthesize(tone voice) []int16 {
	n := int(tone.length * sampleRate)
	samples := make([]int16, n)
	release := int(0.05 * sampleRate)

	for i := range samples {
		t := float64(i) / sampleRate
		var v float64
		for _, p := range tone.partials {
			if t < p.delay {
				continue
			}
			pt := t - p.delay
			v += p.gain * math.Exp(-p.decay*pt) * math.Sin(2*math.Pi*p.freq*pt)
		}

		env := 1.0
		if tone.attack > 0 && t < tone.attack {
			env = t / tone.attack
		}
		if tail := n - i; tail < release {
			env *= float64(tail) / float64(release)
		}

		v = math.Max(-1, math.Min(1, v*env))
		samples[i] = int16(v * math.MaxInt16)
	}
	return samples
}

func encodeWAV(samples []int16) []byte {
	dataSize := uint32(len(samples) * 2)
	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*bitDepth/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*bitDepth/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
