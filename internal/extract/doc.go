// Package extract materializes kept speaking segments as clips.
//
// Each segment is trimmed from its track's cropped video with stream copy. Audio
// comes from the track's separate WAV when one exists, trimmed over the same
// window; otherwise it is decoded from the trimmed video's own audio as 16 kHz
// mono PCM. The two are muxed with stream copy and the finished clip and WAV
// are moved into the output directory. Intermediates live in a private temp
// directory per segment that is removed on every exit path.
//
// Segments run on a bounded worker pool. Results are stored by track and
// segment position, so naming and reporting order never depend on scheduling.
package extract
