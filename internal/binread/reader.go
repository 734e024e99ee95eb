// Package binread provides a bounds-checked cursor over an in-memory buffer.
//
// Every schema in kashi is expressed as ordinary sequential code over a
// Reader: typed reads advance the cursor, At runs a nested read at another
// offset and restores the cursor, and Sub carves out a child reader whose
// offsets are relative to its own start. Reads past the end of the buffer
// fail with a decodeerr.TruncatedDataError that records the absolute file
// offset.
package binread

import (
	"bytes"
	"encoding/binary"

	"kashi/internal/decodeerr"
)

const maxVarintGroups = 10

// Reader is a cursor over buf. It is not safe for concurrent use.
type Reader struct {
	buf     []byte
	pos     int
	order   binary.ByteOrder
	section string
	base    int
}

// New returns a reader over buf. base is the absolute file offset of buf[0]
// and is only used for diagnostics.
func New(buf []byte, order binary.ByteOrder, section string, base int) *Reader {
	return &Reader{buf: buf, order: order, section: section, base: base}
}

// Order returns the byte order used for multi-byte reads.
func (r *Reader) Order() binary.ByteOrder { return r.order }

// Section returns the diagnostic section name.
func (r *Reader) Section() string { return r.section }

// Pos returns the cursor position relative to the start of the buffer.
func (r *Reader) Pos() int { return r.pos }

// Abs returns the absolute file offset of the cursor.
func (r *Reader) Abs() int { return r.base + r.pos }

// Base returns the absolute file offset of the buffer start.
func (r *Reader) Base() int { return r.base }

// Len returns the buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Buffer returns the whole underlying buffer.
func (r *Reader) Buffer() []byte { return r.buf }

// Seek moves the cursor to off.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return decodeerr.Truncated(r.section, r.base+off, 1, 0)
	}
	r.pos = off
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// At seeks to off, runs fn and restores the cursor, regardless of the
// outcome of fn.
func (r *Reader) At(off int, fn func(*Reader) error) error {
	saved := r.pos
	if err := r.Seek(off); err != nil {
		return err
	}
	defer func() { r.pos = saved }()
	return fn(r)
}

// Sub returns a child reader over [off, off+length). Offsets inside the
// child are relative to off.
func (r *Reader) Sub(section string, off, length int) (*Reader, error) {
	if off < 0 || length < 0 || off > len(r.buf) || length > len(r.buf)-off {
		have := len(r.buf) - off
		if have < 0 {
			have = 0
		}
		return nil, decodeerr.Truncated(section, r.base+off, length, have)
	}
	return New(r.buf[off:off+length:off+length], r.order, section, r.base+off), nil
}

func (r *Reader) need(n int) error {
	if n < 0 || n > len(r.buf)-r.pos {
		return decodeerr.Truncated(r.section, r.base+r.pos, n, len(r.buf)-r.pos)
	}
	return nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// U16 reads a 16-bit integer in the reader's byte order.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := r.order.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// U16LE reads a little-endian 16-bit integer regardless of the reader's
// byte order. Some big-endian records embed a single little-endian field.
func (r *Reader) U16LE() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// U32 reads a 32-bit integer in the reader's byte order.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := r.order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// U16s reads count 16-bit integers.
func (r *Reader) U16s(count int) ([]uint16, error) {
	if err := r.need(count * 2); err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = r.order.Uint16(r.buf[r.pos:])
		r.pos += 2
	}
	return out, nil
}

// Bytes reads n bytes and returns a copy.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// CString reads a NUL-terminated byte string. The terminator is consumed
// but not returned.
func (r *Reader) CString() ([]byte, error) {
	idx := bytes.IndexByte(r.buf[r.pos:], 0)
	if idx < 0 {
		return nil, decodeerr.Truncated(r.section, r.base+r.pos, len(r.buf)-r.pos+1, len(r.buf)-r.pos)
	}
	out := make([]byte, idx)
	copy(out, r.buf[r.pos:r.pos+idx])
	r.pos += idx + 1
	return out, nil
}

// VarUint reads a variable-length integer made of 7-bit groups, most
// significant group first, with the high bit of each byte marking that
// another group follows.
func (r *Reader) VarUint() (uint64, error) {
	start := r.pos
	var v uint64
	for i := 0; i < maxVarintGroups; i++ {
		b, err := r.U8()
		if err != nil {
			r.pos = start
			return 0, err
		}
		v = v<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, decodeerr.FormatAt(r.section, r.base+start, "variable-length integer longer than %d bytes", maxVarintGroups)
}
