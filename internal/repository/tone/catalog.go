package tone

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// directoryPermissions is used when the sound directory has to be created.
const directoryPermissions = 0o750

// Catalog resolves tones to playable files.
type Catalog interface {
	Tones() []string
	Has(tone string) bool
	Resolve(tone string) (string, error)
}

// FileCatalog is a Catalog backed by a directory listing taken at startup.
type FileCatalog struct {
	// dir is the scanned directory.
	dir string
	// tones holds the sorted file names with a recognised extension.
	tones []string
}

//nolint:gochecknoglobals // Fixed lookup table.
var extensions = []string{".mp3", ".wav"}

// Scan lists dir, creating it first when missing. Any failure to create or
// read the directory is returned, since it leaves the alarm clock mute.
func Scan(dir string) (*FileCatalog, error) {
	dir = filepath.Clean(dir)

	if err := os.MkdirAll(dir, directoryPermissions); err != nil {
		return nil, fmt.Errorf("create sound directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sound directory: %w", err)
	}

	tones := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !Recognised(entry.Name()) {
			continue
		}

		tones = append(tones, entry.Name())
	}

	slices.Sort(tones)

	return &FileCatalog{
		dir:   dir,
		tones: tones,
	}, nil
}

// Recognised reports whether name has an audio extension the catalog lists.
func Recognised(name string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(name)))
}

// Dir returns the scanned directory.
func (c *FileCatalog) Dir() string {
	return c.dir
}

// Tones returns the tone vocabulary, or only alarm.NoTonesAvailable when the
// directory held no audio files.
func (c *FileCatalog) Tones() []string {
	if len(c.tones) == 0 {
		return []string{alarm.NoTonesAvailable}
	}

	return slices.Clone(c.tones)
}

// Has reports whether tone was listed at startup.
func (c *FileCatalog) Has(tone string) bool {
	_, found := slices.BinarySearch(c.tones, tone)

	return found
}

// Resolve returns the path of tone. It fails with alarm.ErrToneNotFound when
// the tone was never listed or its file has since disappeared.
func (c *FileCatalog) Resolve(tone string) (string, error) {
	if !c.Has(tone) {
		return "", fmt.Errorf("%w: %q", alarm.ErrToneNotFound, tone)
	}

	path := filepath.Join(c.dir, tone)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: audio file %s is gone", alarm.ErrToneNotFound, path)
	}

	return path, nil
}
