package preview

import (
	"context"
	"testing"
	"time"

	"github.com/SHayashida/DrumTrainer/internal/audio"
)

func TestNewPlayerDuration(t *testing.T) {
	// 100 ms at 48 kHz is exactly five 20ms frames.
	p := NewPlayer(audio.Silent(100, audio.PreviewSampleRate))
	_, dur := p.Status()
	if dur != 5*FrameDuration {
		t.Errorf("Duration = %v, want %v", dur, 5*FrameDuration)
	}
}

func TestPlayerFrameSlicing(t *testing.T) {
	buf := audio.Silent(40, audio.PreviewSampleRate)
	for i := range buf.Samples {
		buf.Samples[i] = int16(i)
	}
	p := NewPlayer(buf)

	f0 := p.frame(0)
	f1 := p.frame(1)
	if len(f0) != FrameSamples || len(f1) != FrameSamples {
		t.Fatalf("Frame lengths = %d, %d, want %d", len(f0), len(f1), FrameSamples)
	}
	if f0[0] != 0 || f1[0] != int16(FrameSamples) {
		t.Errorf("Frame boundaries wrong: f0[0]=%d f1[0]=%d", f0[0], f1[0])
	}
}

func TestPlayerPadsFinalPartialFrame(t *testing.T) {
	// 30 ms = one full frame plus a half frame that must be zero-padded.
	buf := audio.Silent(30, audio.PreviewSampleRate)
	for i := range buf.Samples {
		buf.Samples[i] = 7
	}
	p := NewPlayer(buf)

	if got := p.totalFrames(); got != 2 {
		t.Fatalf("totalFrames = %d, want 2", got)
	}
	last := p.frame(1)
	if len(last) != FrameSamples {
		t.Fatalf("Padded frame length = %d, want %d", len(last), FrameSamples)
	}
	half := FrameSamples / 2
	if last[half-1] != 7 {
		t.Errorf("Real tail sample = %d, want 7", last[half-1])
	}
	if last[half] != 0 || last[FrameSamples-1] != 0 {
		t.Error("Final frame not zero-padded past the track end")
	}
}

func TestPlayerEmitsAndLoops(t *testing.T) {
	// Two-frame track: after two frames the player must wrap to frame 0.
	buf := audio.Silent(40, audio.PreviewSampleRate)
	buf.Samples[0] = 123 // marker at the start of frame 0
	p := NewPlayer(buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	starts := 0
	deadline := time.After(2 * time.Second)
	for received := 0; received < 5; received++ {
		select {
		case frame := <-p.Frames():
			if frame[0] == 123 {
				starts++
			}
		case <-deadline:
			t.Fatal("Timeout waiting for frames")
		}
	}
	// Five frames of a two-frame loop contain frame 0 at least twice.
	if starts < 2 {
		t.Errorf("Loop start frame seen %d times in 5 frames, want >= 2", starts)
	}
}

func TestPlayerStopsOnCancel(t *testing.T) {
	p := NewPlayer(audio.Silent(40, audio.PreviewSampleRate))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Player did not stop after context cancel")
	}
}
