package lyrics

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

// ReadingSuffix marks the phonetic reading of a metadata value.
const ReadingSuffix = "@k"

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo serializes the document. Equal documents produce identical bytes.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	section := func(name string) {
		fmt.Fprintf(bw, "[%s]\n", name)
	}
	kv := func(key, value string) {
		fmt.Fprintf(bw, "%s=%s\n", key, value)
	}

	section("meta")
	for _, m := range d.Meta {
		if m.Value != "" {
			kv(m.Key, m.Value)
		}
		if m.Reading != "" {
			kv(m.Key+ReadingSuffix, m.Reading)
		}
	}
	bw.WriteString("\n")

	section("timing")
	kv("offset", seconds(d.Offset))
	bw.WriteString("\n")

	for _, st := range d.Styles {
		section("style " + st.Tag)
		kv("colors", st.Idle.Fill+","+st.Idle.Border+",000000")
		kv("colors_on", st.Active.Fill+","+st.Active.Border+",000000")
		bw.WriteString("\n")
	}

	for _, v := range d.Variants {
		section("variant " + v.Key)
		kv("name", v.Name)
		kv("tags", strings.Join(v.Tags, ","))
		for _, tag := range v.Tags {
			kv(tag+".style", tag)
		}
		bw.WriteString("\n")
	}

	section("lyrics")
	for i, c := range d.Compounds {
		if i > 0 {
			bw.WriteString("\n")
		}
		parts := make([]string, 0, len(c.Timing)+1)
		parts = append(parts, "@"+seconds(c.Start))
		for _, t := range c.Timing {
			parts = append(parts, seconds(t))
		}
		bw.WriteString(strings.Join(parts, " ") + "\n")
		fmt.Fprintf(bw, "%s: %s\n", c.Style, c.Source)
	}

	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// seconds formats a duration as seconds with millisecond precision.
func seconds(d time.Duration) string {
	ms := d.Milliseconds()
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	return fmt.Sprintf("%s%d.%03d", sign, ms/1000, ms%1000)
}
