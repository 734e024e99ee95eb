package lyrics

import (
	"kashi/internal/decodeerr"
	"kashi/internal/record"
)

// ColorPair is a fill and border color as rrggbb hex.
type ColorPair struct {
	Fill   string
	Border string
}

// Style is a deduplicated block style.
type Style struct {
	Tag    string
	Key    record.StyleKey
	Idle   ColorPair
	Active ColorPair
}

// StyleTable assigns tags to style tuples in first-seen order. A table is
// scoped to one document.
type StyleTable struct {
	styles []Style
	index  map[record.StyleKey]int
}

// NewStyleTable returns an empty table.
func NewStyleTable() *StyleTable {
	return &StyleTable{index: make(map[record.StyleKey]int)}
}

// Tag returns the tag for key, allocating the next one on first use.
func (t *StyleTable) Tag(key record.StyleKey) string {
	if i, ok := t.index[key]; ok {
		return t.styles[i].Tag
	}
	tag := string(rune('A' + len(t.styles)))
	t.index[key] = len(t.styles)
	t.styles = append(t.styles, Style{Tag: tag, Key: key})
	return tag
}

// Len returns the number of distinct styles.
func (t *StyleTable) Len() int { return len(t.styles) }

// Resolve fills in colors from the palette and returns the styles in tag
// order.
func (t *StyleTable) Resolve(p record.Palette) ([]Style, error) {
	out := make([]Style, len(t.styles))
	for i, st := range t.styles {
		lookup := func(idx uint8) (string, error) {
			c, ok := p.Color(idx)
			if !ok {
				return "", decodeerr.Formatf("lyrics", "style %s: color index %d outside the %d-entry palette", st.Tag, idx, record.PaletteSize)
			}
			return c.Hex(), nil
		}
		var err error
		if st.Idle.Fill, err = lookup(st.Key.PreFill); err != nil {
			return nil, err
		}
		if st.Idle.Border, err = lookup(st.Key.PreBorder); err != nil {
			return nil, err
		}
		if st.Active.Fill, err = lookup(st.Key.PostFill); err != nil {
			return nil, err
		}
		if st.Active.Border, err = lookup(st.Key.PostBorder); err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}
