package lyrics

import (
	"time"

	"kashi/internal/decodeerr"
)

// MetaField is one metadata entry with an optional phonetic reading.
type MetaField struct {
	Key     string
	Value   string
	Reading string
}

// Compound is the timed, annotated text of one block.
type Compound struct {
	Block   int
	Row     int
	Instant bool
	Start   time.Duration
	// Timing holds one delta per beat transition.
	Timing []time.Duration
	Style  string
	Source string
}

// End is the time of the compound's last beat.
func (c Compound) End() time.Duration {
	end := c.Start
	for _, d := range c.Timing {
		end += d
	}
	return end
}

// Variant is a named selection of styles.
type Variant struct {
	Key  string
	Name string
	Tags []string
}

// Document is the decoded song.
type Document struct {
	Meta []MetaField
	// Offset shifts every compound when the song is played back.
	Offset    time.Duration
	Styles    []Style
	Variants  []Variant
	Compounds []Compound
}

// Overlaps reports timed compounds that start on a screen row before the
// previous compound on that row has finished.
func (d *Document) Overlaps() []*decodeerr.OverlapError {
	var out []*decodeerr.OverlapError
	last := make(map[int]int)
	for i, c := range d.Compounds {
		if c.Instant {
			continue
		}
		if j, ok := last[c.Row]; ok {
			prev := d.Compounds[j]
			if gap := prev.End() - c.Start; gap > 0 {
				out = append(out, &decodeerr.OverlapError{
					First:     prev.Block,
					Second:    c.Block,
					Row:       c.Row,
					OverlapMS: gap.Milliseconds(),
				})
			}
		}
		last[c.Row] = i
	}
	return out
}
