package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/lightwalker/pkg/models"
)

func TestToneProducesPlayableWAV(t *testing.T) {
	for _, name := range models.SoundTypes {
		t.Run(name, func(t *testing.T) {
			wav, err := Tone(name)
			require.NoError(t, err)

			format, pcm, err := parseWAV(wav)
			require.NoError(t, err)
			assert.Equal(t, &wavFormat{SampleRate: sampleRate, Channels: 1, BitDepth: 16}, format)
			assert.Equal(t, int(tones[name].length*sampleRate)*2, len(pcm))

			var peak int16
			for i := 0; i+1 < len(pcm); i += 2 {
				s := int16(binary.LittleEndian.Uint16(pcm[i:]))
				if s < 0 {
					s = -s
				}
				if s > peak {
					peak = s
				}
			}
			assert.Greater(t, int(peak), 1000, "tone should be audible")

			last := int16(binary.LittleEndian.Uint16(pcm[len(pcm)-2:]))
			assert.InDelta(t, 0, last, 200, "tone should fade out")
		})
	}
}

func TestToneUnknown(t *testing.T) {
	_, err := Tone("klaxon")
	assert.ErrorContains(t, err, "unknown sound")
}

func TestParseWAVSkipsUnknownChunks(t *testing.T) {
	wav := encodeWAV([]int16{1, -1, 2})
	withList := append([]byte{}, wav[:36]...)
	withList = append(withList, 'L', 'I', 'S', 'T', 4, 0, 0, 0, 'I', 'N', 'F', 'O')
	withList = append(withList, wav[36:]...)

	_, pcm, err := parseWAV(withList)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0xff, 0xff, 2, 0}, pcm)
}

func TestParseWAVRejects(t *testing.T) {
	_, _, err := parseWAV([]byte("RIFF"))
	assert.Error(t, err)

	_, _, err = parseWAV([]byte("RIFX\x00\x00\x00\x00WAVE"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	wav := encodeWAV([]int16{0, 0})
	binary.LittleEndian.PutUint16(wav[34:], 8)
	_, _, err = parseWAV(wav)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	truncated := encodeWAV([]int16{1, 2, 3, 4})
	_, _, err = parseWAV(truncated[:len(truncated)-3])
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 0.0, clampVolume(-1))
	assert.Equal(t, 0.4, clampVolume(0.4))
	assert.Equal(t, 1.0, clampVolume(3))
}
