// Package separate prepares the stems directory for a song: it normalizes
// the input to a canonical mix.wav and drives the external source-separation
// engine. The separation model itself lives outside this repository; only
// its invocation and file plumbing are handled here.
package separate

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/SHayashida/DrumTrainer/internal/mix"
)

// stemFiles are the four files the separation engine must produce.
var stemFiles = []string{"vocals.wav", "drums.wav", "bass.wav", "other.wav"}

// Splitter separates a normalized mix into the four instrument stems,
// leaving them in outDir next to mix.wav.
type Splitter interface {
	Split(ctx context.Context, mixPath, outDir string) error
}

// Demucs runs the demucs CLI as a subprocess.
type Demucs struct {
	Model string // e.g. "htdemucs"
}

// Split invokes demucs on the mix, locates its output directory and copies
// the four stems into outDir. The demucs scratch directory is removed
// afterwards.
func (d Demucs) Split(ctx context.Context, mixPath, outDir string) error {
	scratch := filepath.Join(outDir, "_demucs_out")
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", scratch, err)
	}
	defer os.RemoveAll(scratch)

	var cmd *exec.Cmd
	if _, err := exec.LookPath("demucs"); err == nil {
		cmd = exec.CommandContext(ctx, "demucs", "-n", d.Model, "-o", scratch, mixPath)
	} else {
		// Fall back to the module form when the entry point is not on PATH.
		cmd = exec.CommandContext(ctx, "python3", "-m", "demucs", "-n", d.Model, "-o", scratch, mixPath)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	log.Printf("Running separation: %s", cmd.String())
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("demucs: %w", err)
	}

	src, err := findStems(scratch)
	if err != nil {
		return err
	}
	log.Printf("Separation output: %s", src)
	return CopyStems(src, outDir)
}

// ConvertToWAV normalizes any input audio file to 16-bit stereo PCM at the
// given rate, via FFmpeg.
func ConvertToWAV(ctx context.Context, inputPath, outPath string, rate int) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "2",
		"-ar", strconv.Itoa(rate),
		"-loglevel", "error",
		"-y", outPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg convert %s: %w: %s", inputPath, err, out)
	}
	return nil
}

// findStems walks the demucs scratch tree for a directory holding all four
// stem files. Demucs nests its output under <model>/<track>/, so the exact
// depth depends on the model name.
func findStems(root string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || found != "" {
			return err
		}
		for _, name := range stemFiles {
			if _, statErr := os.Stat(filepath.Join(path, name)); statErr != nil {
				return nil
			}
		}
		found = path
		return fs.SkipAll
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", root, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: no directory under %s contains all stems", mix.ErrMissingInput, root)
	}
	return found, nil
}

// CopyStems copies the four stem files from srcDir into destDir.
func CopyStems(srcDir, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}
	for _, name := range stemFiles {
		src := filepath.Join(srcDir, name)
		if _, err := os.Stat(src); err != nil {
			return fmt.Errorf("%w: %s (%s)", mix.ErrMissingInput, name, src)
		}
		if err := copyFile(src, filepath.Join(destDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copy %s: %w", dest, err)
	}
	return out.Close()
}
