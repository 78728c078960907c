package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// mp3Channels is the channel count go-mp3 always decodes to.
const mp3Channels = 2

// decodeMP3 decodes a whole MP3 file to 16-bit little-endian stereo samples.
func decodeMP3(data []byte) (*sampleFormat, []byte, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: mp3: %w", ErrUnsupportedFormat, err)
	}

	samples, err := io.ReadAll(decoder)
	if err != nil {
		return nil, nil, fmt.Errorf("decode mp3: %w", err)
	}

	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("%w: mp3 carries no samples", ErrUnsupportedFormat)
	}

	return &sampleFormat{
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   supportedBitDepth,
	}, samples, nil
}
