// Package export is the output boundary of the mixdown: it serializes the
// finished backing track to its container formats.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SHayashida/DrumTrainer/internal/audio"
	"github.com/SHayashida/DrumTrainer/internal/mix"
)

// Format names an output container.
type Format string

const (
	// FormatWAV is the lossless PCM container; round-trips bit-exactly.
	FormatWAV Format = "wav"
	// FormatMP3 is the lossy container, encoded via FFmpeg.
	FormatMP3 Format = "mp3"
)

// ParseFormats parses a comma-separated format list ("wav,mp3").
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch f := Format(strings.ToLower(part)); f {
		case FormatWAV, FormatMP3:
			out = append(out, f)
		default:
			return nil, fmt.Errorf("%w: unknown export format %q", mix.ErrInvalidParameter, part)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no export formats given", mix.ErrInvalidParameter)
	}
	return out, nil
}

// Render writes the buffer as <dir>/<base>.<ext> for each requested format
// and returns the paths written. The first failure aborts; files already
// written are kept, the failing one is not.
func Render(ctx context.Context, dir, base string, buf *audio.Buffer, formats []Format, mp3Bitrate string) ([]string, error) {
	var outputs []string
	for _, f := range formats {
		path := filepath.Join(dir, base+"."+string(f))
		var err error
		switch f {
		case FormatWAV:
			err = WriteWAV(path, buf)
		case FormatMP3:
			err = WriteMP3(ctx, path, buf, mp3Bitrate)
		default:
			err = fmt.Errorf("%w: unknown export format %q", mix.ErrInvalidParameter, f)
		}
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, path)
	}
	return outputs, nil
}
