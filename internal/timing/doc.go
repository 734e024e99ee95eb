// Package timing reconstructs per-beat timestamps from scroll events.
//
// Lyric files do not store when a glyph highlights. They store when each
// line starts scrolling and every later change of scroll speed; a beat is
// reached when the scroll position passes its pixel coordinate.
package timing
