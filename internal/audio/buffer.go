package audio

import (
	"encoding/binary"
	"math"
)

// Buffer holds interleaved stereo PCM samples at a fixed sample rate.
// All buffers entering one mixdown must share the same rate; the stem
// loader is responsible for resampling beforehand.
type Buffer struct {
	Rate    int
	Samples []int16
}

// Silent allocates an all-zero stereo buffer of the given duration.
func Silent(durationMS, rate int) *Buffer {
	frames := durationMS * rate / 1000
	return &Buffer{
		Rate:    rate,
		Samples: make([]int16, frames*Channels),
	}
}

// Frames returns the number of sample frames (one frame = one sample per channel).
func (b *Buffer) Frames() int {
	return len(b.Samples) / Channels
}

// DurationMS returns the buffer length in whole milliseconds.
func (b *Buffer) DurationMS() int {
	if b.Rate == 0 {
		return 0
	}
	return b.Frames() * 1000 / b.Rate
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	samples := make([]int16, len(b.Samples))
	copy(samples, b.Samples)
	return &Buffer{Rate: b.Rate, Samples: samples}
}

// GainFactor converts a decibel offset to a linear amplitude factor.
func GainFactor(db float64) float64 {
	return math.Pow(10, db/20)
}

// ApplyGain scales every sample by the given decibel offset, in place.
// Negative values attenuate, positive values amplify.
func (b *Buffer) ApplyGain(db float64) {
	factor := GainFactor(db)
	for i, s := range b.Samples {
		b.Samples[i] = clip(float64(s) * factor)
	}
}

// Overlay mixes src into b additively, starting at the given millisecond
// position. Samples of src that extend past the end of b are dropped.
func (b *Buffer) Overlay(src *Buffer, positionMS int) {
	start := positionMS * b.Rate / 1000 * Channels
	for i, s := range src.Samples {
		idx := start + i
		if idx >= len(b.Samples) {
			break
		}
		b.Samples[idx] = clip(float64(b.Samples[idx]) + float64(s))
	}
}

// PeakDBFS returns the peak level of the buffer in decibels relative to
// full scale. A fully silent buffer reports negative infinity.
func (b *Buffer) PeakDBFS() float64 {
	peak := 0
	for _, s := range b.Samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(peak)/fullScale)
}

// Normalize applies one uniform gain so the buffer's peak lands at the
// target dBFS level. Pure silence is left untouched: there is no finite
// gain that raises it.
func (b *Buffer) Normalize(targetDBFS float64) {
	peak := b.PeakDBFS()
	if math.IsInf(peak, -1) {
		return
	}
	b.ApplyGain(targetDBFS - peak)
}

func clip(v float64) int16 {
	v = math.Round(v)
	if v > maxSample {
		return maxSample
	}
	if v < minSample {
		return minSample
	}
	return int16(v)
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// BytesToSamples converts little-endian bytes back to int16 samples.
// A trailing odd byte is ignored.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples
}
