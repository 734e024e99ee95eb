package furigana

import (
	"fmt"
	"strings"
)

// DefaultRadius bounds the alignment search, one screen width.
const DefaultRadius = 640

// Base is a base glyph with its pixel extent.
type Base struct {
	Text        string
	Left, Right int
}

// Mid is the integer midpoint used as the lookup key.
func (b Base) Mid() int { return (b.Left + b.Right) / 2 }

// Group is a ruby group with its pixel extent.
type Group struct {
	Text        string
	Left, Right int
	Center      int
	Beats       int
	Assigned    bool
}

// NewGroup builds a group from decoded ruby text placed at left with the
// given pixel width. Spaces are dropped from the text.
func NewGroup(text string, left, width int) Group {
	text = strings.ReplaceAll(text, " ", "")
	right := left + width
	return Group{
		Text:   text,
		Left:   left,
		Right:  right,
		Center: (left + right) / 2,
		Beats:  BeatCount(text),
	}
}

// Result is the outcome of aligning one block.
type Result struct {
	// Ruby holds the group index for every base glyph, or -1.
	Ruby []int
	// Groups is a copy of the input with Assigned set.
	Groups []Group
	// Unassigned lists groups that no glyph took, in input order.
	Unassigned []int
}

// Policy decides which group a glyph keeps when several searches reach it.
type Policy int

const (
	// PolicyNearest keeps the group with the smallest search distance.
	PolicyNearest Policy = iota
	// PolicyLastScanned keeps the last group, in input order, whose search
	// reached the glyph. Older JOYSOUND releases were authored against it.
	PolicyLastScanned
)

func (p Policy) String() string {
	switch p {
	case PolicyNearest:
		return "nearest"
	case PolicyLastScanned:
		return "last"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "nearest":
		return PolicyNearest, nil
	case "last":
		return PolicyLastScanned, nil
	default:
		return PolicyNearest, fmt.Errorf("unknown furigana policy %q", value)
	}
}

// Aligner matches ruby groups to base glyphs by midpoint proximity.
type Aligner struct {
	// Radius is the exclusive upper bound of the search distance; zero
	// means DefaultRadius.
	Radius int
	Policy Policy
}

type candidate struct {
	dx    int
	group int
}

// Align assigns each base glyph one of the ruby groups whose search reached
// it, chosen by the Policy. A group's search widens from its center one pixel
// at a time, testing center-dx before center+dx, and stops at the first glyph
// that cannot carry ruby. Under PolicyNearest ties on distance go to the
// group listed first.
func (a Aligner) Align(bases []Base, groups []Group) Result {
	radius := a.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}

	byMid := make(map[int]int, len(bases))
	for i, b := range bases {
		byMid[b.Mid()] = i
	}

	candidates := make([][]candidate, len(bases))
	for gi, g := range groups {
		if g.Text == "" {
			continue
		}
	search:
		for dx := 0; dx < radius; dx++ {
			for _, pos := range [2]int{g.Center - dx, g.Center + dx} {
				bi, ok := byMid[pos]
				if !ok {
					continue
				}
				if !Furiganable(bases[bi].Text) {
					break search
				}
				candidates[bi] = append(candidates[bi], candidate{dx: dx, group: gi})
			}
		}
	}

	res := Result{
		Ruby:   make([]int, len(bases)),
		Groups: append([]Group(nil), groups...),
	}
	for bi, cands := range candidates {
		res.Ruby[bi] = -1
		if len(cands) == 0 {
			continue
		}
		best := cands[len(cands)-1]
		if a.Policy == PolicyNearest {
			best = cands[0]
			for _, c := range cands[1:] {
				if c.dx < best.dx {
					best = c
				}
			}
		}
		res.Ruby[bi] = best.group
		res.Groups[best.group].Assigned = true
	}
	for gi, g := range res.Groups {
		if !g.Assigned {
			res.Unassigned = append(res.Unassigned, gi)
		}
	}
	return res
}
