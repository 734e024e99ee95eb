package record

import (
	"kashi/internal/binread"
	"kashi/internal/container"
)

// eventHeader is the smallest legacy event record: time plus payload length.
const eventHeader = 5

// ReadEvents parses a timing section. Cartridge event times are stored as
// deltas and are accumulated into absolute milliseconds here.
func ReadEvents(sec container.RawSection, schema Schema) ([]Event, error) {
	r := binread.New(sec.Data, schema.Order(), sec.Name, sec.Offset)
	var events []Event
	var now int64
	for r.Remaining() > 0 {
		ev := Event{Offset: r.Abs()}
		if schema == SchemaCartridge {
			delta, err := r.VarUint()
			if err != nil {
				return nil, err
			}
			now += int64(delta)
			ev.Time = now
		} else {
			if r.Remaining() < eventHeader {
				break
			}
			t, err := r.U32()
			if err != nil {
				return nil, err
			}
			ev.Time = int64(t)
		}
		n, err := r.U8()
		if err != nil {
			return nil, err
		}
		if ev.Payload, err = r.Bytes(int(n)); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
