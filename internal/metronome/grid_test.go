package metronome

import (
	"errors"
	"math"
	"testing"
)

func TestFixedTempoGrid(t *testing.T) {
	tests := []struct {
		bpm   float64
		total float64
		want  []float64
	}{
		{120, 2.0, []float64{0.0, 0.5, 1.0, 1.5, 2.0}},
		{60, 1.5, []float64{0.0, 1.0}},
		{60, 0.0, []float64{0.0}},
		{240, 1.0, []float64{0.0, 0.25, 0.5, 0.75, 1.0}},
	}
	for _, tt := range tests {
		got, err := FixedTempo{BPM: tt.bpm}.Beats(tt.total)
		if err != nil {
			t.Fatalf("FixedTempo{%v}.Beats(%v) error: %v", tt.bpm, tt.total, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("FixedTempo{%v}.Beats(%v) = %v, want %v", tt.bpm, tt.total, got, tt.want)
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-9 {
				t.Errorf("bpm=%v total=%v beat[%d] = %v, want %v", tt.bpm, tt.total, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFixedTempoEntryCount(t *testing.T) {
	// floor(total/step) + 1 entries for assorted tempi.
	tests := []struct {
		bpm   float64
		total float64
	}{
		{90, 2.0},
		{113, 10.0},
		{120, 181.25},
		{72.5, 33.3},
	}
	for _, tt := range tests {
		got, err := FixedTempo{BPM: tt.bpm}.Beats(tt.total)
		if err != nil {
			t.Fatalf("Beats error: %v", err)
		}
		step := 60.0 / tt.bpm
		want := int(math.Floor(tt.total/step)) + 1
		if len(got) != want {
			t.Errorf("bpm=%v total=%v: %d entries, want %d", tt.bpm, tt.total, len(got), want)
		}
	}
}

func TestFixedTempoNonDecreasing(t *testing.T) {
	got, err := FixedTempo{BPM: 97.3}.Beats(60)
	if err != nil {
		t.Fatalf("Beats error: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("Grid not non-decreasing at %d: %v < %v", i, got[i], got[i-1])
		}
	}
}

func TestFixedTempoRejectsNonPositiveBPM(t *testing.T) {
	for _, bpm := range []float64{0, -1, -120} {
		_, err := FixedTempo{BPM: bpm}.Beats(10)
		if !errors.Is(err, ErrInvalidTempo) {
			t.Errorf("bpm=%v: err = %v, want ErrInvalidTempo", bpm, err)
		}
	}
}

func TestExternalPassThrough(t *testing.T) {
	src := External{0.1, 0.6, 1.2, 7.5}
	got, err := src.Beats(2.0) // total duration must not filter anything here
	if err != nil {
		t.Fatalf("Beats error: %v", err)
	}
	if len(got) != len(src) {
		t.Fatalf("External.Beats returned %d entries, want %d", len(got), len(src))
	}
	for i := range src {
		if got[i] != src[i] {
			t.Errorf("beat[%d] = %v, want %v", i, got[i], src[i])
		}
	}
	// The returned slice must be a copy.
	got[0] = 99
	if src[0] != 0.1 {
		t.Error("External.Beats returned its backing slice, mutation leaked")
	}
}
