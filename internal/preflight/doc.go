// Package preflight provides readiness checks for the filesystem paths kashi
// reads and writes.
//
// The CLI "kashi doctor" command runs RunAll and renders the results; the
// batch command runs the same checks before decoding so a run does not fail
// halfway through on an unwritable output directory.
package preflight
