// Package ffprobe inspects extracted clips with the ffprobe binary and checks
// that a muxed clip carries both a video and an audio stream.
package ffprobe
