// Package metronome synthesizes the practice click and the beat grid it
// is placed on.
package metronome

import (
	"math/rand"

	"github.com/SHayashida/DrumTrainer/internal/audio"
)

const (
	// ClickDurationMS is the length of the click pulse.
	ClickDurationMS = 20
	// clickFadeMS is the tail fade that keeps the pulse from popping.
	clickFadeMS = 15
)

// Click synthesizes the metronome tick: a broadband noise burst with a
// linear fade-out over its tail, peak-scaled so the loudest sample sits at
// levelDB dBFS. Negative levels attenuate, positive levels amplify. The
// noise content is random per call; duration, fade shape and peak level
// are deterministic.
func Click(sampleRate int, levelDB float64) *audio.Buffer {
	frames := ClickDurationMS * sampleRate / 1000
	fadeFrames := clickFadeMS * sampleRate / 1000
	fadeStart := frames - fadeFrames

	samples := make([]int16, frames*audio.Channels)
	for f := 0; f < frames; f++ {
		v := float64(rand.Intn(2*32767+1) - 32767)
		if f >= fadeStart {
			// Linear ramp down to zero at the final frame.
			v *= float64(frames-1-f) / float64(fadeFrames)
		}
		s := int16(v)
		samples[f*audio.Channels] = s
		samples[f*audio.Channels+1] = s
	}

	buf := &audio.Buffer{Rate: sampleRate, Samples: samples}
	buf.Normalize(levelDB)
	return buf
}
