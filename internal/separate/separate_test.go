package separate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/SHayashida/DrumTrainer/internal/mix"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("pcm"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindStemsNested(t *testing.T) {
	root := t.TempDir()
	// Demucs layout: <root>/<model>/<track>/<stem>.wav
	dir := filepath.Join(root, "htdemucs", "my_song")
	for _, name := range stemFiles {
		touch(t, filepath.Join(dir, name))
	}

	got, err := findStems(root)
	if err != nil {
		t.Fatalf("findStems error: %v", err)
	}
	if got != dir {
		t.Errorf("findStems = %q, want %q", got, dir)
	}
}

func TestFindStemsIgnoresIncompleteDirs(t *testing.T) {
	root := t.TempDir()
	// A directory with only some stems must not match.
	partial := filepath.Join(root, "htdemucs", "broken")
	touch(t, filepath.Join(partial, "vocals.wav"))
	touch(t, filepath.Join(partial, "drums.wav"))

	complete := filepath.Join(root, "htdemucs", "zz_good")
	for _, name := range stemFiles {
		touch(t, filepath.Join(complete, name))
	}

	got, err := findStems(root)
	if err != nil {
		t.Fatalf("findStems error: %v", err)
	}
	if got != complete {
		t.Errorf("findStems = %q, want %q", got, complete)
	}
}

func TestFindStemsEmpty(t *testing.T) {
	_, err := findStems(t.TempDir())
	if !errors.Is(err, mix.ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
}

func TestCopyStems(t *testing.T) {
	src := t.TempDir()
	for _, name := range stemFiles {
		touch(t, filepath.Join(src, name))
	}
	dest := filepath.Join(t.TempDir(), "out")

	if err := CopyStems(src, dest); err != nil {
		t.Fatalf("CopyStems error: %v", err)
	}
	for _, name := range stemFiles {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("Stem %s not copied: %v", name, err)
		}
	}
}

func TestCopyStemsMissingSource(t *testing.T) {
	src := t.TempDir()
	touch(t, filepath.Join(src, "vocals.wav")) // the rest are absent
	err := CopyStems(src, t.TempDir())
	if !errors.Is(err, mix.ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
}
