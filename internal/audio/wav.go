package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// pcmFormat is the WAVE_FORMAT_PCM tag.
	pcmFormat = 1
	// supportedBitDepth is the only sample width oto is driven with here.
	supportedBitDepth = 16
	// fmtChunkMinSize is the size of a plain PCM fmt chunk.
	fmtChunkMinSize = 16
)

var (
	// ErrUnsupportedFormat is returned for files that are neither 16-bit PCM WAV nor MP3.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// errNoDataChunk is returned when a WAV file carries no samples.
	errNoDataChunk = errors.New("wav: data chunk missing")
	// errNoFormatChunk is returned when samples come before their format.
	errNoFormatChunk = errors.New("wav: fmt chunk missing")
)

// sampleFormat holds WAV file format information.
type sampleFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// chunkHeader precedes every RIFF chunk.
type chunkHeader struct {
	ID   [4]byte
	Size uint32
}

// fmtChunk is the PCM part of the fmt chunk.
type fmtChunk struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// parseWAV splits a WAV file into its format and its sample data.
func parseWAV(data []byte) (*sampleFormat, []byte, error) {
	reader := bytes.NewReader(data)

	var riff struct {
		ID   [4]byte
		Size uint32
		Wave [4]byte
	}

	if err := binary.Read(reader, binary.LittleEndian, &riff); err != nil {
		return nil, nil, fmt.Errorf("%w: short RIFF header", ErrUnsupportedFormat)
	}

	if string(riff.ID[:]) != "RIFF" || string(riff.Wave[:]) != "WAVE" {
		return nil, nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}

	var format *sampleFormat

	for {
		var header chunkHeader
		if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, nil, errNoDataChunk
			}

			return nil, nil, fmt.Errorf("wav: read chunk header: %w", err)
		}

		switch string(header.ID[:]) {
		case "fmt ":
			parsed, err := readFormat(reader, header.Size)
			if err != nil {
				return nil, nil, err
			}

			format = parsed
		case "data":
			if format == nil {
				return nil, nil, errNoFormatChunk
			}

			size := min(int64(header.Size), int64(reader.Len()))
			if size == 0 {
				return nil, nil, fmt.Errorf("%w: wav carries no samples", ErrUnsupportedFormat)
			}

			samples := make([]byte, size)

			if _, err := io.ReadFull(reader, samples); err != nil {
				return nil, nil, fmt.Errorf("wav: read samples: %w", err)
			}

			return format, samples, nil
		default:
			if _, err := reader.Seek(int64(header.Size)+int64(header.Size&1), io.SeekCurrent); err != nil {
				return nil, nil, fmt.Errorf("wav: skip chunk: %w", err)
			}
		}
	}
}

// readFormat decodes a fmt chunk of the given size and rejects anything but
// 16-bit PCM.
func readFormat(reader *bytes.Reader, size uint32) (*sampleFormat, error) {
	if size < fmtChunkMinSize {
		return nil, fmt.Errorf("%w: fmt chunk of %d bytes", ErrUnsupportedFormat, size)
	}

	var chunk fmtChunk
	if err := binary.Read(reader, binary.LittleEndian, &chunk); err != nil {
		return nil, fmt.Errorf("wav: read fmt chunk: %w", err)
	}

	// Skip extension bytes and the pad byte of odd-sized chunks.
	if extra := int64(size-fmtChunkMinSize) + int64(size&1); extra > 0 {
		if _, err := reader.Seek(extra, io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("wav: skip fmt extension: %w", err)
		}
	}

	if chunk.AudioFormat != pcmFormat || chunk.BitsPerSample != supportedBitDepth {
		return nil, fmt.Errorf("%w: format tag %d with %d bits per sample",
			ErrUnsupportedFormat, chunk.AudioFormat, chunk.BitsPerSample)
	}

	if chunk.Channels == 0 || chunk.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, chunk.Channels, chunk.SampleRate)
	}

	return &sampleFormat{
		SampleRate: int(chunk.SampleRate),
		Channels:   int(chunk.Channels),
		BitDepth:   int(chunk.BitsPerSample),
	}, nil
}
