package metronome

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTempo is returned by FixedTempo for a non-positive bpm.
var ErrInvalidTempo = errors.New("metronome: bpm must be positive")

// Source yields the ordered beat positions, in seconds, for a track of the
// given total duration. Positions are non-negative and non-decreasing;
// positions past the end of the mix canvas are filtered later, at overlay
// time.
type Source interface {
	Beats(totalSec float64) ([]float64, error)
}

// External is a beat grid estimated out-of-band (the analysis stage writes
// one next to the stems). It is passed through verbatim, independent of the
// track duration.
type External []float64

// Beats returns a copy of the externally estimated positions.
func (e External) Beats(float64) ([]float64, error) {
	out := make([]float64, len(e))
	copy(out, e)
	return out, nil
}

// FixedTempo generates a constant-interval grid from a tempo.
type FixedTempo struct {
	BPM float64
}

// Beats steps from zero in 60/bpm increments while the position stays
// within totalSec (inclusive), yielding floor(total/step)+1 entries. Each
// position is rounded to microsecond precision so repeated runs and
// exported metadata stay stable.
func (ft FixedTempo) Beats(totalSec float64) ([]float64, error) {
	if ft.BPM <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTempo, ft.BPM)
	}
	step := 60.0 / ft.BPM
	var out []float64
	for t := 0.0; ; t += step {
		r := round6(t)
		if r > totalSec {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
