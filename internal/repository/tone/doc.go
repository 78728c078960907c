// Package tone implements the sound catalog.
//
// The FileCatalog lists the audio files of a directory once at startup and
// resolves tone identifiers (file names) to paths for playback.
package tone
