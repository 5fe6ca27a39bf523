package engine

import (
	"fmt"
	"time"
)

// BeamState is the state of a travelling beam.
type BeamState uint8

const (
	Traveling BeamState = iota
	HitMirror
	HitEntity
	OutOfBounds
)

func (s BeamState) String() string {
	switch s {
	case Traveling:
		return "traveling"
	case HitMirror:
		return "hit_mirror"
	case HitEntity:
		return "hit_entity"
	case OutOfBounds:
		return "out_of_bounds"
	}
	return fmt.Sprintf("beam_state(%d)", uint8(s))
}

func (s BeamState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FrameSink receives every intermediate beam frame while the transient glyph
// is on the grid. Implementations log the frame and then display it.
type FrameSink interface {
	Frame(g *Grid)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(g *Grid)

func (f FrameSinkFunc) Frame(g *Grid) { f(g) }

// Pacer blocks between beam frames.
type Pacer interface {
	Pause()
}

// SleepPacer pauses for a fixed interval. It cannot be cancelled.
type SleepPacer struct {
	Interval time.Duration
}

func (p SleepPacer) Pause() {
	if p.Interval > 0 {
		time.Sleep(p.Interval)
	}
}

// NoPause is a Pacer that returns immediately.
type NoPause struct{}

func (NoPause) Pause() {}

// Reflect returns the direction a beam travelling in dir leaves a mirror with
// orientation o. Forward is "/", backward is "\".
func Reflect(o Orientation, dir Direction) Direction {
	switch o {
	case Forward:
		switch dir {
		case Down:
			return Left
		case Up:
			return Right
		case Right:
			return Up
		case Left:
			return Down
		}
	case Backward:
		switch dir {
		case Down:
			return Right
		case Up:
			return Left
		case Right:
			return Down
		case Left:
			return Up
		}
	}
	violate("Reflect", "no reflection for %s mirror and direction %s", o, dir)
	return dir
}

// BeamStep is one cell the beam entered.
type BeamStep struct {
	Pos   Position  `json:"pos"`
	Dir   Direction `json:"dir"` // direction after any reflection at Pos
	State BeamState `json:"state"`
}

// BeamResult summarises a finished beam.
type BeamResult struct {
	Firer       Role       `json:"firer"`
	State       BeamState  `json:"state"`
	Hit         bool       `json:"hit"`
	Target      Role       `json:"target"`
	Path        []BeamStep `json:"path"`
	Frames      int        `json:"frames"`
	Reflections int        `json:"reflections"`
}

// Tracer advances beams cell by cell. Sink and Pacer may be nil.
type Tracer struct {
	Sink  FrameSink
	Pacer Pacer

	// MaxSteps bounds the number of advances of a single beam. Zero means
	// 4*height*width+1, one more than the number of (cell, direction) states.
	MaxSteps int
}

func (t *Tracer) maxSteps(g *Grid) int {
	if t.MaxSteps > 0 {
		return t.MaxSteps
	}
	return 4*g.Height()*g.Width() + 1
}

// Fire traces a beam from the firer's cell in its facing direction until it
// leaves the grid or strikes the other tank. Mirrors reflect it. Each empty
// cell crossed is drawn with a transient glyph, handed to the sink, paced,
// and cleared before the next advance.
func (t *Tracer) Fire(g *Grid, d *Directory, firer Role) (*BeamResult, error) {
	shooter := d.Get(firer)
	if !g.InBounds(shooter.Pos) {
		violate("Tracer.Fire", "%s at %s outside %dx%d grid", firer, shooter.Pos, g.Height(), g.Width())
	}
	target := d.Other(firer)

	result := &BeamResult{Firer: firer, State: Traveling, Target: target.Role}
	pos, dir := shooter.Pos, shooter.Facing
	limit := t.maxSteps(g)

	for steps := 0; ; steps++ {
		if steps >= limit {
			return result, fmt.Errorf("%w: %d steps from %s", ErrBeamCycle, steps, shooter.Pos)
		}

		pos = pos.Step(dir)

		if !g.InBounds(pos) {
			result.State = OutOfBounds
			return result, nil
		}

		switch cell := g.At(pos); {
		case Classify(cell) == ClassMirror:
			dir = Reflect(cell.Orientation(), dir)
			result.Reflections++
			result.Path = append(result.Path, BeamStep{Pos: pos, Dir: dir, State: HitMirror})

		case pos == target.Pos:
			result.Path = append(result.Path, BeamStep{Pos: pos, Dir: dir, State: HitEntity})
			result.State = HitEntity
			result.Hit = true
			return result, nil

		case pos == shooter.Pos:
			// A beam reflected back onto its own tank passes through it undrawn.
			result.Path = append(result.Path, BeamStep{Pos: pos, Dir: dir, State: Traveling})

		default:
			result.Path = append(result.Path, BeamStep{Pos: pos, Dir: dir, State: Traveling})
			t.frame(g, pos, dir)
			result.Frames++
		}
	}
}

func (t *Tracer) frame(g *Grid, pos Position, dir Direction) {
	g.Set(pos, BeamCell(dir))
	if t.Sink != nil {
		t.Sink.Frame(g)
	}
	if t.Pacer != nil {
		t.Pacer.Pause()
	}
	g.Set(pos, Empty)
}
