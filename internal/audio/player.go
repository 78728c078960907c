package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// pollInterval is how often a loop checks whether the current pass ended.
const pollInterval = 10 * time.Millisecond

// Player owns the process-wide oto context. oto allows a single context per
// process, so the first played file fixes the output format and later files
// must match it.
type Player struct {
	// mu guards the lazily created context.
	mu sync.Mutex
	// ctx is the output context, nil until the first successful Play.
	ctx *oto.Context
	// format is the format ctx was created with.
	format sampleFormat
}

// NewPlayer returns a Player; no device is opened until the first Play.
func NewPlayer() *Player {
	return new(Player)
}

// decoders turn a whole file into samples, by lower-case extension.
//
//nolint:gochecknoglobals // Fixed lookup table.
var decoders = map[string]func([]byte) (*sampleFormat, []byte, error){
	".wav": parseWAV,
	".mp3": decodeMP3,
}

// Play starts looping the audio file at path and returns a handle whose Close
// stops playback and releases the output. 16-bit PCM WAV and MP3 are supported.
func (p *Player) Play(path string) (io.Closer, error) {
	ext := strings.ToLower(filepath.Ext(path))

	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s files cannot be decoded", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	format, samples, err := decode(data)
	if err != nil {
		return nil, err
	}

	ctx, err := p.context(format)
	if err != nil {
		return nil, err
	}

	l := &loop{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go l.run(ctx, samples)

	return l, nil
}

// context returns the shared output context, creating it for format on first
// use and waiting for the device to become ready.
func (p *Player) context(format *sampleFormat) (*oto.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		if p.format != *format {
			return nil, fmt.Errorf("%w: %d Hz/%d ch differs from the open output %d Hz/%d ch",
				ErrUnsupportedFormat, format.SampleRate, format.Channels, p.format.SampleRate, p.format.Channels)
		}

		return p.ctx, nil
	}

	//nolint:exhaustruct // Default buffer size is fine.
	options := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}

	// Wait for the hardware audio device to be ready.
	<-ready

	p.ctx = ctx
	p.format = *format

	return ctx, nil
}

// loop replays one sample buffer until stopped.
type loop struct {
	// stop is closed to request the loop to end.
	stop chan struct{}
	// done is closed once the loop released its oto player.
	done chan struct{}
	// once makes Close idempotent.
	once sync.Once
}

func (l *loop) run(ctx *oto.Context, samples []byte) {
	defer close(l.done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		player := ctx.NewPlayer(bytes.NewReader(samples))
		player.Play()

		for player.IsPlaying() {
			select {
			case <-l.stop:
				player.Pause()
				_ = player.Close()

				return
			case <-ticker.C:
			}
		}

		_ = player.Close()

		select {
		case <-l.stop:
			return
		default:
		}
	}
}

// Close stops the loop and waits until the output is released.
// Calling it again is a no-op.
func (l *loop) Close() error {
	l.once.Do(func() { close(l.stop) })

	<-l.done

	return nil
}
