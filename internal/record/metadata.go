package record

import (
	"golang.org/x/text/encoding/japanese"

	"kashi/internal/binread"
	"kashi/internal/container"
	"kashi/internal/decodeerr"
)

// ReadMetadata parses the metadata record at the start of sec. String fields
// are stored as offsets relative to the record's own start.
func ReadMetadata(sec container.RawSection, schema Schema) (Metadata, error) {
	r := binread.New(sec.Data, schema.Order(), sec.Name, sec.Offset)
	var meta Metadata
	var err error
	if meta.Type, err = r.U8(); err != nil {
		return Metadata{}, err
	}
	if meta.Subtype, err = r.U8(); err != nil {
		return Metadata{}, err
	}

	targets := []*string{
		&meta.Title, &meta.Artist, &meta.Writer, &meta.Composer,
		&meta.TitleKana, &meta.ArtistKana, &meta.JASRAC, &meta.Sample,
	}
	offsets := make([]uint16, len(targets))
	for i := range offsets {
		if offsets[i], err = r.U16(); err != nil {
			return Metadata{}, err
		}
	}
	if schema != SchemaCartridge {
		if meta.Duration, err = r.U16(); err != nil {
			return Metadata{}, err
		}
		if meta.VocalTracks, err = r.U32(); err != nil {
			return Metadata{}, err
		}
		if meta.RhythmTracks, err = r.U32(); err != nil {
			return Metadata{}, err
		}
	}

	for i, target := range targets {
		err := r.At(int(offsets[i]), func(r *binread.Reader) error {
			at := r.Abs()
			raw, err := r.CString()
			if err != nil {
				return err
			}
			text, err := DecodeShiftJIS(raw)
			if err != nil {
				return decodeerr.FormatAt(sec.Name, at, "metadata string: %v", err)
			}
			*target = text
			return nil
		})
		if err != nil {
			return Metadata{}, err
		}
	}
	return meta, nil
}

// DecodeShiftJIS converts a Shift_JIS byte string to UTF-8.
func DecodeShiftJIS(raw []byte) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
