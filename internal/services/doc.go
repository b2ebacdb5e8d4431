// Package services defines shared utilities consumed by the extraction
// pipeline and its external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, video names, track and segment
//     indices, and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into fatal (missing inputs) and scoped skips (missing track media,
//     extraction failures, cleanup warnings).
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across tracks and segments.
package services
