// Package ffmpeg adapts the ffmpeg binary to the three clip operations the
// extractor needs: lossless trim, lossless mux, and audio decode to 16 kHz mono
// PCM. Every invocation runs under its own timeout derived from the caller's
// context, and the command runner can be swapped out in tests.
package ffmpeg
