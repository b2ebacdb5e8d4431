// Package main hosts the talkclip CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, applies flag
// overrides to the detection and extraction settings, builds the structured
// logger and run ledger, and hands off to the workflow package for single
// video extraction, batch runs, and dry-run segment listings. Reporting
// commands (history, doctor, config) read state without touching media.
//
// Keep this package lean: add new functionality in the internal packages
// first, then surface it through dedicated commands or flags here.
package main
