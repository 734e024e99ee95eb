// Package main hosts the kashi CLI entrypoint and command graph.
//
// The Cobra-based command tree turns karaoke song files into lyric documents,
// indexes batch runs in the song catalog, and offers inspection tools for the
// container layout. It centralizes configuration resolution and structured
// logging setup so subcommands can focus on output instead of wiring.
//
// Keep this package lean: decoding lives in internal/decode and storage in
// internal/catalog; commands here only translate flags into calls.
package main
