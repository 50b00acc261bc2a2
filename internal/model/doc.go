// Package model defines the core data structures used throughout linkcheck.
//
// This package contains the following main types:
//   - LinkRecord: The verification result for one discovered URL
//   - Check and Checks: The tri-state consistency signals derived per record
//   - StatusTable: The concurrent-safe URL to LinkRecord map built per run
//   - Run: The state shared by all pipeline steps of one check
//   - Summary: A condensed, human-readable digest of a Run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The verifier, analyzer, ranker and report packages all operate
// on these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// history storage.
package model
