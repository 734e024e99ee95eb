// Package lyrics holds the decoded lyric-timing document and its
// deterministic line-oriented serialization.
package lyrics
