package container

import (
	"encoding/binary"
	"fmt"
	"sort"

	"kashi/internal/binread"
	"kashi/internal/decodeerr"
)

// Section names shared by all formats.
const (
	SectionMetadata  = "metadata"
	SectionLyrics    = "lyrics"
	SectionTiming    = "timing"
	SectionFonts     = "fonts"
	SectionAudio     = "audio"
	SectionTitleCard = "title_card"
	// SectionPayload is the decompressed JOY-U2 file inside a UJK1 container.
	SectionPayload = "payload"
)

// SizeVariants is the number of screen-size lyric/timing pairs in a JOY-U2
// file.
const SizeVariants = 3

// RawSection is an owned byte buffer plus its origin. Offset is relative to
// the start of Parent, which is empty for sections taken directly from the
// input file.
type RawSection struct {
	Name   string
	Parent string
	Offset int
	Data   []byte
}

// Field is one named header value, kept for inspection output.
type Field struct {
	Name  string
	Value uint32
}

// Container is the resolved section table of one input file.
type Container struct {
	Format   Format
	Header   []Field
	sections map[string]RawSection
}

// Section returns the named section.
func (c *Container) Section(name string) (RawSection, bool) {
	s, ok := c.sections[name]
	return s, ok
}

// MustSection returns the named section or a FormatError.
func (c *Container) MustSection(name string) (RawSection, error) {
	s, ok := c.sections[name]
	if !ok {
		return RawSection{}, decodeerr.Formatf(name, "section missing from %s container", c.Format)
	}
	return s, nil
}

// Sections returns all sections ordered by parent then offset.
func (c *Container) Sections() []RawSection {
	out := make([]RawSection, 0, len(c.sections))
	for _, s := range c.sections {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parent != out[j].Parent {
			return out[i].Parent < out[j].Parent
		}
		if out[i].Offset != out[j].Offset {
			return out[i].Offset < out[j].Offset
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// LyricsName returns the lyric section name for a JOY-U2 size variant.
func LyricsName(variant int) string { return fmt.Sprintf("%s.%d", SectionLyrics, variant) }

// TimingName returns the timing section name for a JOY-U2 size variant.
func TimingName(variant int) string { return fmt.Sprintf("%s.%d", SectionTiming, variant) }

func (c *Container) add(s RawSection) {
	if c.sections == nil {
		c.sections = make(map[string]RawSection)
	}
	c.sections[s.Name] = s
}

func (c *Container) header(name string, v uint32) {
	c.Header = append(c.Header, Field{Name: name, Value: v})
}

// Open detects the format of data and resolves its sections.
func Open(data []byte) (*Container, error) {
	format, err := Detect(data)
	if err != nil {
		return nil, err
	}
	c := &Container{Format: format}
	switch format {
	case FormatJoy02:
		err = c.openJoy02(data)
	case FormatJoyU2:
		err = c.openJoyU2(data, "")
	case FormatUJK:
		err = c.openUJK(data)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) openJoy02(data []byte) error {
	r := binread.New(data, binary.LittleEndian, "header", 0)
	if err := r.Skip(len(MagicJoy02)); err != nil {
		return err
	}
	names := []string{"off_metadata", "off_lyrics", "off_timing", "vol_up_time"}
	values := make([]uint32, len(names))
	for i, name := range names {
		v, err := r.U32()
		if err != nil {
			return err
		}
		values[i] = v
		c.header(name, v)
	}
	offMeta, offLyrics, offTiming := int(values[0]), int(values[1]), int(values[2])

	if offLyrics > offTiming {
		return decodeerr.FormatAt("header", len(MagicJoy02)+4, "lyrics offset 0x%x exceeds timing offset 0x%x", offLyrics, offTiming)
	}
	regions := []struct {
		name       string
		start, end int
	}{
		{SectionMetadata, offMeta, len(data)},
		{SectionLyrics, offLyrics, offTiming},
		{SectionTiming, offTiming, len(data)},
	}
	for _, region := range regions {
		s, err := slice(data, "", region.name, region.start, region.end)
		if err != nil {
			return err
		}
		c.add(s)
	}
	return nil
}

// openJoyU2 resolves the JOY-U2 offset table. parent names the buffer data
// came from when it is nested in another container.
func (c *Container) openJoyU2(data []byte, parent string) error {
	section := "header"
	if parent != "" {
		section = parent + ".header"
	}
	r := binread.New(data, binary.BigEndian, section, 0)
	if len(data) < len(MagicJoyU2) || string(data[:len(MagicJoyU2)]) != MagicJoyU2 {
		return decodeerr.FormatAt(section, 0, "expected %s magic", MagicJoyU2)
	}
	if err := r.Skip(len(MagicJoyU2)); err != nil {
		return err
	}
	names := []string{"off_metadata",
		"off_lyrics_1", "off_timing_1",
		"off_lyrics_2", "off_timing_2",
		"off_lyrics_3", "off_timing_3",
		"off_extra"}
	offsets := make([]int, len(names))
	for i, name := range names {
		v, err := r.U32()
		if err != nil {
			return err
		}
		offsets[i] = int(v)
		c.header(name, v)
	}

	meta, err := slice(data, parent, SectionMetadata, offsets[0], len(data))
	if err != nil {
		return err
	}
	c.add(meta)

	// lyrics_1, timing_1, ..., timing_3 each end where the next begins.
	for i := 1; i < len(offsets)-1; i++ {
		start, end := offsets[i], offsets[i+1]
		if start > end {
			return decodeerr.FormatAt(section, len(MagicJoyU2)+4*i, "%s 0x%x exceeds %s 0x%x", names[i], start, names[i+1], end)
		}
		variant := (i - 1) / 2
		name := LyricsName(variant)
		if i%2 == 0 {
			name = TimingName(variant)
		}
		s, err := slice(data, parent, name, start, end)
		if err != nil {
			return err
		}
		c.add(s)
	}
	return nil
}

func slice(data []byte, parent, name string, start, end int) (RawSection, error) {
	if start < 0 || start > len(data) {
		return RawSection{}, decodeerr.Truncated(name, start, 1, 0)
	}
	if end < start {
		return RawSection{}, decodeerr.FormatAt(name, start, "section ends at 0x%x before it starts", end)
	}
	if end > len(data) {
		return RawSection{}, decodeerr.Truncated(name, start, end-start, len(data)-start)
	}
	buf := make([]byte, end-start)
	copy(buf, data[start:end])
	return RawSection{Name: name, Parent: parent, Offset: start, Data: buf}, nil
}
