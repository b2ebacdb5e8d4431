// Package preflight provides readiness checks for the binaries and filesystem
// paths talkclip depends on.
//
// The doctor command runs RunAll and prints every result. The batch driver
// calls CheckDirectoryAccess on its output folder before processing videos so a
// permissions problem fails fast instead of once per video.
package preflight
