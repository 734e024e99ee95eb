package timing

import (
	"math"
	"time"

	"kashi/internal/decodeerr"
	"kashi/internal/record"
)

// Scroll opcodes. The fine variants carry the speed in pixels per second,
// the coarse ones in units of ten.
const (
	OpStart         = 0x00
	OpSetSpeed      = 0x01
	OpStartFine     = 0x0c
	OpSetSpeedFine  = 0x0d
	coarseSpeedUnit = 10
)

const section = "timing"

// Line is the timing view of one lyric block.
type Line struct {
	X       int
	Instant bool
	// Beats are pixel positions in scroll order.
	Beats []int
}

// Span is the reconstructed timing of one block: a start time and one delta
// per beat transition.
type Span struct {
	Start  time.Duration
	Deltas []time.Duration
}

// End is the time of the last beat.
func (s Span) End() time.Duration {
	end := s.Start
	for _, d := range s.Deltas {
		end += d
	}
	return end
}

// Result is the reconstruction of one event stream.
type Result struct {
	Spans []Span
	// Ignored counts events whose opcode does not affect scrolling, keyed
	// by opcode.
	Ignored map[byte]int
}

// Speed decodes the speed carried by a scroll opcode in pixels per second.
func Speed(op, value byte) (float64, bool) {
	switch op {
	case OpStart, OpSetSpeed:
		return float64(value) * coarseSpeedUnit, true
	case OpStartFine, OpSetSpeedFine:
		return float64(value), true
	default:
		return 0, false
	}
}

type scanner struct {
	lines []Line
	times [][]float64

	current int
	pending []int
	started bool

	t1, x1, speed float64
}

// Reconstruct converts events into one timestamp per beat of every line.
func Reconstruct(events []record.Event, lines []Line) (Result, error) {
	s := &scanner{
		lines:   lines,
		times:   make([][]float64, len(lines)),
		current: -1,
	}
	res := Result{Ignored: make(map[byte]int)}

	for _, ev := range events {
		op, ok := ev.Opcode()
		if !ok {
			continue
		}
		if _, scroll := Speed(op, 0); !scroll {
			res.Ignored[op]++
			continue
		}
		if len(ev.Payload) < 2 {
			return Result{}, decodeerr.FormatAt(section, ev.Offset, "opcode 0x%02x without speed", op)
		}
		speed, _ := Speed(op, ev.Payload[1])
		now := float64(ev.Time) / 1000

		var err error
		switch op {
		case OpStart, OpStartFine:
			err = s.start(ev, now, speed)
		case OpSetSpeed, OpSetSpeedFine:
			err = s.setSpeed(ev, now, speed)
		}
		if err != nil {
			return Result{}, err
		}
	}

	if err := s.finish(); err != nil {
		return Result{}, err
	}
	spans, err := s.spans()
	if err != nil {
		return Result{}, err
	}
	res.Spans = spans
	return res, nil
}

func (s *scanner) start(ev record.Event, now, speed float64) error {
	if err := s.flush(); err != nil {
		return err
	}
	s.current++
	for s.current < len(s.lines) && s.lines[s.current].Instant {
		s.times[s.current] = []float64{now}
		s.current++
	}
	if s.current >= len(s.lines) {
		return decodeerr.FormatAt(section, ev.Offset, "scroll start at %dms but only %d blocks", ev.Time, len(s.lines))
	}
	line := s.lines[s.current]
	s.started = true
	s.pending = line.Beats
	s.t1 = now
	s.x1 = float64(line.X)
	s.speed = speed
	return nil
}

func (s *scanner) setSpeed(ev record.Event, now, speed float64) error {
	if !s.started {
		return decodeerr.FormatAt(section, ev.Offset, "speed change at %dms before any scroll start", ev.Time)
	}
	x2 := math.Trunc(s.x1 + s.speed*(now-s.t1))
	for len(s.pending) > 0 && float64(s.pending[0]) < x2 {
		if err := s.convert(s.pending[0]); err != nil {
			return err
		}
		s.pending = s.pending[1:]
	}
	s.t1 = now
	s.x1 = x2
	s.speed = speed
	return nil
}

func (s *scanner) convert(beat int) error {
	if s.speed == 0 {
		return decodeerr.Formatf(section, "block %d: beat at x=%d unreachable at zero speed", s.current, beat)
	}
	t := s.t1 + (float64(beat)-s.x1)/s.speed
	s.times[s.current] = append(s.times[s.current], t)
	return nil
}

// flush converts every beat still pending in the active line.
func (s *scanner) flush() error {
	for _, beat := range s.pending {
		if err := s.convert(beat); err != nil {
			return err
		}
	}
	s.pending = nil
	return nil
}

// finish flushes the last line and stamps trailing instant lines with the
// final anchor time.
func (s *scanner) finish() error {
	if err := s.flush(); err != nil {
		return err
	}
	for i := s.current + 1; i < len(s.lines); i++ {
		if !s.lines[i].Instant {
			return decodeerr.Formatf(section, "block %d never started scrolling", i)
		}
		s.times[i] = []float64{s.t1}
	}
	return nil
}

func (s *scanner) spans() ([]Span, error) {
	spans := make([]Span, len(s.lines))
	for i, line := range s.lines {
		stamps := s.times[i]
		if len(stamps) == 0 {
			return nil, decodeerr.Formatf(section, "block %d has no timestamps", i)
		}
		ms := make([]int64, len(stamps))
		for j, t := range stamps {
			ms[j] = int64(math.Round(t * 1000))
		}
		span := Span{Start: time.Duration(ms[0]) * time.Millisecond}
		for j := 1; j < len(ms); j++ {
			span.Deltas = append(span.Deltas, time.Duration(ms[j]-ms[j-1])*time.Millisecond)
		}
		want := 0
		if !line.Instant {
			want = len(line.Beats) - 1
		}
		if len(span.Deltas) != want {
			return nil, decodeerr.Formatf(section, "block %d: %d timing deltas for %d beats", i, len(span.Deltas), len(line.Beats))
		}
		spans[i] = span
	}
	return spans, nil
}
