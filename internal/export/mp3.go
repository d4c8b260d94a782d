package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/SHayashida/DrumTrainer/internal/audio"
)

// WriteMP3 encodes the buffer to MP3 by piping raw PCM through FFmpeg.
// On failure the partial file is removed.
func WriteMP3(ctx context.Context, path string, buf *audio.Buffer, bitrate string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "s16le",
		"-ar", strconv.Itoa(buf.Rate),
		"-ac", strconv.Itoa(audio.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", bitrate,
		"-loglevel", "error",
		"-y", path,
	)
	cmd.Stdin = bytes.NewReader(audio.SamplesToBytes(buf.Samples))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(path)
		return fmt.Errorf("ffmpeg mp3 encode %s: %w: %s", path, err, stderr.String())
	}
	return nil
}
