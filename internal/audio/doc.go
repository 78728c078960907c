// Package audio plays WAV and MP3 files on a loop through the system output
// device. It is the only package that talks to the sound hardware.
package audio
