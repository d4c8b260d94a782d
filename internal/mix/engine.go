// Package mix renders a drum-practice backing track from separated stems:
// drums attenuated or muted, an optional metronome click on the beat grid,
// and the result peak-normalized for consistent playback loudness.
package mix

import (
	"fmt"
	"math"

	"github.com/SHayashida/DrumTrainer/internal/audio"
	"github.com/SHayashida/DrumTrainer/internal/metronome"
)

// StemName identifies one of the five inputs a mixdown requires.
type StemName string

const (
	StemVocals StemName = "vocals"
	StemDrums  StemName = "drums"
	StemBass   StemName = "bass"
	StemOther  StemName = "other"
	StemMix    StemName = "mix"
)

// StemNames lists the required stems in load order.
var StemNames = []StemName{StemVocals, StemDrums, StemBass, StemOther, StemMix}

// NormalizeTargetDBFS is the peak level the finished backing track is
// scaled to.
const NormalizeTargetDBFS = -1.0

// StemSet carries the five decoded stems for one mixdown. Each buffer is
// owned by the invocation; the engine never mutates a caller's buffer in
// place (the drums copy is cloned before gain is applied).
type StemSet struct {
	Vocals *audio.Buffer
	Drums  *audio.Buffer
	Bass   *audio.Buffer
	Other  *audio.Buffer
	Mix    *audio.Buffer
}

// Options configures one mixdown.
type Options struct {
	// DrumGainDB is added to the drums stem before overlay. Strongly
	// negative values (the -120 default) mute the drums while keeping
	// their slot in the mix; moderate values merely duck them.
	DrumGainDB float64

	// WithClick overlays the metronome at each beat position.
	WithClick bool

	// ClickLevelDB sets the synthesized click's peak level.
	ClickLevelDB float64

	// Beats supplies the beat grid when WithClick is set.
	Beats metronome.Source
}

// Result is the finished backing track plus the files it was written to.
type Result struct {
	Buffer  *audio.Buffer
	Outputs []string
}

// Mixdown assembles the backing track in one pass: validate the stems,
// lay out a silent canvas spanning the longest stem, sum vocals, bass,
// other and the gain-adjusted drums onto it, overlay the click at each
// in-range beat, and normalize the peak to -1 dBFS. Any failure aborts the
// whole operation; no partial output is produced.
func Mixdown(stems StemSet, opts Options) (*audio.Buffer, error) {
	if err := stems.validate(); err != nil {
		return nil, err
	}

	durationMS := stems.maxDurationMS()
	canvas := audio.Silent(durationMS, stems.Mix.Rate)

	drums := stems.Drums
	if opts.DrumGainDB != 0 {
		drums = drums.Clone()
		drums.ApplyGain(opts.DrumGainDB)
	}

	// Fixed overlay order; addition is commutative, the order is for
	// reviewability only.
	canvas.Overlay(stems.Vocals, 0)
	canvas.Overlay(stems.Bass, 0)
	canvas.Overlay(stems.Other, 0)
	canvas.Overlay(drums, 0)

	if opts.WithClick && opts.Beats != nil {
		beats, err := opts.Beats.Beats(float64(durationMS) / 1000)
		if err != nil {
			return nil, fmt.Errorf("%w: beat grid: %v", ErrInvalidParameter, err)
		}
		if len(beats) > 0 {
			click := metronome.Click(canvas.Rate, opts.ClickLevelDB)
			for _, t := range beats {
				pos := int(math.Round(t * 1000))
				// Beat estimates may run past the end of the canvas;
				// those positions are skipped, not an error.
				if pos >= 0 && pos < durationMS {
					canvas.Overlay(click, pos)
				}
			}
		}
	}

	canvas.Normalize(NormalizeTargetDBFS)
	return canvas, nil
}

func (s StemSet) validate() error {
	byName := map[StemName]*audio.Buffer{
		StemVocals: s.Vocals,
		StemDrums:  s.Drums,
		StemBass:   s.Bass,
		StemOther:  s.Other,
		StemMix:    s.Mix,
	}
	for _, name := range StemNames {
		if byName[name] == nil {
			return fmt.Errorf("%w: %s", ErrMissingInput, name)
		}
	}
	for _, name := range StemNames {
		if byName[name].Rate != s.Mix.Rate {
			return fmt.Errorf("%w: stem %s sample rate %d differs from mix rate %d",
				ErrInvalidParameter, name, byName[name].Rate, s.Mix.Rate)
		}
	}
	return nil
}

func (s StemSet) maxDurationMS() int {
	maxMS := 0
	for _, b := range []*audio.Buffer{s.Vocals, s.Drums, s.Bass, s.Other, s.Mix} {
		if d := b.DurationMS(); d > maxMS {
			maxMS = d
		}
	}
	return maxMS
}
