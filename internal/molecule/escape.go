package molecule

import (
	"strings"

	"golang.org/x/text/width"
)

const reservedASCII = `(){}$^\`

// reserved holds the syntax characters and their full-width forms.
var reserved = reservedASCII + width.Widen.String(reservedASCII)

// Escape backslash-escapes every reserved character in text.
func Escape(text string) string {
	if !strings.ContainsAny(text, reserved) {
		return text
	}
	var b strings.Builder
	for _, r := range text {
		if strings.ContainsRune(reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
