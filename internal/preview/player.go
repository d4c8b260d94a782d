// Package preview plays the rendered backing track on a loop and streams
// it to practice clients over HTTP (MP3) and WebRTC (Opus).
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/SHayashida/DrumTrainer/internal/audio"
)

const (
	// FrameDuration is the pacing interval of the stream.
	FrameDuration = 20 * time.Millisecond
	// frameSize is samples per channel per 20ms frame at the preview rate.
	frameSize = audio.PreviewSampleRate / 50
	// FrameSamples is total interleaved samples per frame.
	FrameSamples = frameSize * audio.Channels
)

// Player paces a backing track as 20ms PCM frames at real-time rate,
// wrapping back to the start when the track ends.
type Player struct {
	samples []int16
	frameCh chan []int16

	mu       sync.RWMutex
	position time.Duration
	duration time.Duration
}

// NewPlayer creates a player for a track already resampled to the preview
// rate (48 kHz).
func NewPlayer(buf *audio.Buffer) *Player {
	totalFrames := (len(buf.Samples) + FrameSamples - 1) / FrameSamples
	return &Player{
		samples:  buf.Samples,
		frameCh:  make(chan []int16, 100),
		duration: time.Duration(totalFrames) * FrameDuration,
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (p *Player) Frames() <-chan []int16 {
	return p.frameCh
}

// Status returns the current loop position and the track duration.
func (p *Player) Status() (position, duration time.Duration) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.position, p.duration
}

// Run emits frames on a ticker until ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	defer close(p.frameCh)

	total := p.totalFrames()
	if total == 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % total {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		select {
		case p.frameCh <- p.frame(i):
		case <-ctx.Done():
			return
		}

		p.mu.Lock()
		p.position = time.Duration(i) * FrameDuration
		p.mu.Unlock()
	}
}

func (p *Player) totalFrames() int {
	return (len(p.samples) + FrameSamples - 1) / FrameSamples
}

// frame returns the i-th 20ms frame, zero-padding the final partial one.
func (p *Player) frame(i int) []int16 {
	start := i * FrameSamples
	end := start + FrameSamples
	if end <= len(p.samples) {
		return p.samples[start:end]
	}
	out := make([]int16, FrameSamples)
	copy(out, p.samples[start:])
	return out
}
