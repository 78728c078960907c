package tone

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o600))
	}
}

// TestScan_ListsAudioFiles keeps only recognised extensions, sorted.
func TestScan_ListsAudioFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, "chime.wav", "bell.WAV", "song.mp3", "notes.txt", "cover.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.wav"), 0o750))

	catalog, err := Scan(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"bell.WAV", "chime.wav", "song.mp3"}, catalog.Tones())
	require.True(t, catalog.Has("song.mp3"))
	require.False(t, catalog.Has("notes.txt"))
	require.False(t, catalog.Has("nested.wav"))
}

// TestScan_CreatesMissingDirectory mirrors the first-run behaviour: an empty catalog with the sentinel.
func TestScan_CreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "sounds")

	catalog, err := Scan(dir)
	require.NoError(t, err)
	require.Equal(t, []string{alarm.NoTonesAvailable}, catalog.Tones())
	require.False(t, catalog.Has(alarm.NoTonesAvailable))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

// TestScan_InaccessibleDirectory surfaces startup failures.
func TestScan_InaccessibleDirectory(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	writeFiles(t, filepath.Dir(file), filepath.Base(file))

	_, err := Scan(file)
	require.Error(t, err)
}

// TestResolve returns paths for listed tones and ErrToneNotFound otherwise.
func TestResolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, "bell.wav", "gone.wav")

	catalog, err := Scan(dir)
	require.NoError(t, err)

	path, err := catalog.Resolve("bell.wav")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "bell.wav"), path)

	_, err = catalog.Resolve("missing.wav")
	require.ErrorIs(t, err, alarm.ErrToneNotFound)

	require.NoError(t, os.Remove(filepath.Join(dir, "gone.wav")))

	_, err = catalog.Resolve("gone.wav")
	require.ErrorIs(t, err, alarm.ErrToneNotFound)
}
