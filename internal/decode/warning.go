package decode

import (
	"fmt"

	"kashi/internal/decodeerr"
)

// Warning is a non-fatal finding reported alongside a document.
type Warning struct {
	Kind  string
	Block int
	Err   error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: block %d: %v", w.Kind, w.Block, w.Err)
}

// Warning kinds.
const (
	WarnUnassignedFurigana = "unassigned_furigana"
	WarnOverlap            = "overlap"
)

func overlapWarning(e *decodeerr.OverlapError) Warning {
	return Warning{Kind: WarnOverlap, Block: e.Second, Err: e}
}
