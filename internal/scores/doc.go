// Package scores loads the detector output for one video: the per-track speaking
// score sequences, the index-aligned track descriptors, and the paths of each
// track's cropped video and optional audio artifacts.
//
// The store treats descriptors as opaque; only their count and order matter.
// A missing scores or tracks file is fatal for the run (services.ErrMissingInput).
package scores
