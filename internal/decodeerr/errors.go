package decodeerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFormat        = errors.New("format error")
	ErrTruncated     = errors.New("truncated data")
	ErrUnmappedGlyph = errors.New("unmapped glyph")
	ErrOverlap       = errors.New("overlapping lines")
)

// Classifier allows errors to declare their classification for reporting.
// Known kinds: "format", "truncated", "unmapped_glyph", "overlap".
type Classifier interface {
	ErrorKind() string
}

// Kind returns the classification of err, or "internal" when err does not
// carry one.
func Kind(err error) string {
	var classifier Classifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	return "internal"
}

// Fatal reports whether err must abort the decode of a file.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrOverlap)
}

// FormatError reports malformed structural data.
type FormatError struct {
	Section string
	Offset  int // -1 when not tied to a position
	Message string
}

// Formatf builds a FormatError not tied to a byte offset.
func Formatf(section, format string, args ...any) *FormatError {
	return &FormatError{Section: section, Offset: -1, Message: fmt.Sprintf(format, args...)}
}

// FormatAt builds a FormatError at a byte offset.
func FormatAt(section string, offset int, format string, args ...any) *FormatError {
	return &FormatError{Section: section, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFormat, buildDetail(e.Section, e.Offset, e.Message))
}

func (e *FormatError) Unwrap() error { return ErrFormat }

func (e *FormatError) ErrorKind() string { return "format" }

// TruncatedDataError reports a read that would run past the end of a buffer.
type TruncatedDataError struct {
	Section string
	Offset  int
	Need    int
	Have    int
}

// Truncated builds a TruncatedDataError.
func Truncated(section string, offset, need, have int) *TruncatedDataError {
	return &TruncatedDataError{Section: section, Offset: offset, Need: need, Have: have}
}

func (e *TruncatedDataError) Error() string {
	msg := fmt.Sprintf("need %d bytes, %d available", e.Need, e.Have)
	return fmt.Sprintf("%s: %s", ErrTruncated, buildDetail(e.Section, e.Offset, msg))
}

func (e *TruncatedDataError) Unwrap() error { return ErrTruncated }

func (e *TruncatedDataError) ErrorKind() string { return "truncated" }

// UnmappedGlyphError reports a glyph code that no codec rule maps.
type UnmappedGlyphError struct {
	Codec  string
	Code   uint16
	Width  int
	Height int
	// Bitmap is an ASCII-art rendering of the glyph when the font is known.
	Bitmap string
}

func (e *UnmappedGlyphError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s code 0x%04x", ErrUnmappedGlyph, e.Codec, e.Code)
	if e.Width > 0 || e.Height > 0 {
		fmt.Fprintf(&b, " (%dx%d)", e.Width, e.Height)
	}
	if e.Bitmap != "" {
		b.WriteString(". Bitmap:\n")
		b.WriteString(e.Bitmap)
	}
	return b.String()
}

func (e *UnmappedGlyphError) Unwrap() error { return ErrUnmappedGlyph }

func (e *UnmappedGlyphError) ErrorKind() string { return "unmapped_glyph" }

// OverlapError reports two compounds on the same row whose time spans overlap.
type OverlapError struct {
	First  int
	Second int
	Row    int
	// Overlap is how far the second compound starts before the first ends.
	OverlapMS int64
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: blocks %d and %d on row %d overlap by %dms", ErrOverlap, e.First, e.Second, e.Row, e.OverlapMS)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

func (e *OverlapError) ErrorKind() string { return "overlap" }

func buildDetail(section string, offset int, message string) string {
	parts := make([]string, 0, 3)
	if section = strings.TrimSpace(section); section != "" {
		parts = append(parts, section)
	}
	if offset >= 0 {
		parts = append(parts, fmt.Sprintf("offset 0x%x", offset))
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "decode failure"
	}
	return strings.Join(parts, ": ")
}
