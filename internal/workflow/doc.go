// Package workflow runs the per-video pipeline and the batch driver.
//
// A video run loads the detector output, finds and filters speaking segments
// for every track, extracts the kept segments on the worker pool, writes
// summary.txt, and records the run in the ledger. Only a missing scores or
// tracks file aborts a run; missing track media and failed segments are logged
// and skipped. Runs against the same output directory are serialized with an
// advisory lock.
//
// The batch driver discovers videos by extension, optionally copies each source
// into the output folder, skips videos whose last completed run used the same
// parameters, and keeps going when a single video fails.
package workflow
