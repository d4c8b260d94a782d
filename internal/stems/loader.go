// Package stems is the input boundary of the mixdown: it resolves stem
// names to decoded stereo buffers at a common sample rate and carries the
// analysis metadata stored beside them.
package stems

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"

	"github.com/SHayashida/DrumTrainer/internal/audio"
	"github.com/SHayashida/DrumTrainer/internal/mix"
)

// Loader resolves stem names to decoded stereo buffers at a common rate.
type Loader interface {
	LoadStem(name mix.StemName) (*audio.Buffer, error)
}

// DirLoader loads stems from a directory of audio files (the layout the
// separation stage produces: vocals.wav, drums.wav, bass.wav, other.wav,
// mix.wav). Files are decoded with beep and resampled to Rate when their
// native rate differs.
type DirLoader struct {
	Dir  string
	Rate int
}

const resampleQuality = 4

// LoadStem resolves a stem name to <dir>/<name>.wav and decodes it.
func (l DirLoader) LoadStem(name mix.StemName) (*audio.Buffer, error) {
	path := filepath.Join(l.Dir, string(name)+".wav")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s (%s)", mix.ErrMissingInput, name, path)
	}
	return l.LoadFile(path)
}

// LoadFile decodes a single audio file to an interleaved stereo buffer at
// the loader's rate. The decoder is chosen by extension; wav is the
// default since that is what the separation stage emits.
func (l DirLoader) LoadFile(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	var src beep.Streamer = streamer
	rate := int(format.SampleRate)
	if l.Rate != 0 && rate != l.Rate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(l.Rate), streamer)
		rate = l.Rate
	}
	return collect(src, rate), nil
}

// LoadSet loads all five stems a mixdown requires.
func LoadSet(l Loader) (mix.StemSet, error) {
	var set mix.StemSet
	for _, name := range mix.StemNames {
		buf, err := l.LoadStem(name)
		if err != nil {
			return mix.StemSet{}, err
		}
		switch name {
		case mix.StemVocals:
			set.Vocals = buf
		case mix.StemDrums:
			set.Drums = buf
		case mix.StemBass:
			set.Bass = buf
		case mix.StemOther:
			set.Other = buf
		case mix.StemMix:
			set.Mix = buf
		}
	}
	return set, nil
}

// collect drains a beep streamer into an interleaved int16 buffer.
func collect(s beep.Streamer, rate int) *audio.Buffer {
	out := make([]int16, 0, 4096)
	frames := make([][2]float64, 512)
	for {
		n, ok := s.Stream(frames)
		for _, fr := range frames[:n] {
			out = append(out, floatToSample(fr[0]), floatToSample(fr[1]))
		}
		if !ok {
			break
		}
	}
	return &audio.Buffer{Rate: rate, Samples: out}
}

func floatToSample(v float64) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(math.Round(v * 32767))
}
