// Package ledger persists extraction runs and their clips in SQLite.
//
// Each run stores its detection parameters, status, and totals; each attempted
// segment stores its frame range and output paths or failure. Batch runs use
// the ledger to skip videos already completed with identical parameters, and
// the history command lists recent runs.
package ledger
