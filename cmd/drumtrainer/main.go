package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/SHayashida/DrumTrainer/internal/audio"
	"github.com/SHayashida/DrumTrainer/internal/config"
	"github.com/SHayashida/DrumTrainer/internal/export"
	"github.com/SHayashida/DrumTrainer/internal/metronome"
	"github.com/SHayashida/DrumTrainer/internal/mix"
	"github.com/SHayashida/DrumTrainer/internal/preview"
	"github.com/SHayashida/DrumTrainer/internal/separate"
	"github.com/SHayashida/DrumTrainer/internal/stems"
	"github.com/SHayashida/DrumTrainer/internal/web"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: drumtrainer <command> [flags]

Commands:
  separate <song>       split a song into stems (ffmpeg + demucs)
  backing <stems-dir>   render the backing track (drums ducked, optional click)
  preview <stems-dir>   serve the rendered backing track for practice
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "separate":
		runSeparate(ctx, cfg, os.Args[2:])
	case "backing":
		runBacking(ctx, cfg, os.Args[2:])
	case "preview":
		runPreview(ctx, cfg, os.Args[2:])
	default:
		usage()
	}
}

func runSeparate(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("separate", flag.ExitOnError)
	model := fs.String("model", cfg.DemucsModel, "demucs model name")
	outDir := fs.String("out-dir", "", "output directory (default ./outputs/<song>)")
	fs.Parse(args)

	song := fs.Arg(0)
	if song == "" {
		log.Fatal("separate: input song path required")
	}
	if _, err := os.Stat(song); err != nil {
		log.Fatalf("separate: %v", err)
	}

	name := songName(song)
	dest := *outDir
	if dest == "" {
		dest = filepath.Join("outputs", name)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		log.Fatalf("separate: %v", err)
	}

	mixWav := filepath.Join(dest, "mix.wav")
	log.Printf("Converting input to %s", mixWav)
	if err := separate.ConvertToWAV(ctx, song, mixWav, cfg.SampleRate); err != nil {
		log.Fatalf("separate: %v", err)
	}

	splitter := separate.Demucs{Model: *model}
	if err := splitter.Split(ctx, mixWav, dest); err != nil {
		log.Fatalf("separate: %v", err)
	}

	log.Printf("Stems ready in %s", dest)
	for _, n := range []string{"mix.wav", "vocals.wav", "drums.wav", "bass.wav", "other.wav"} {
		log.Printf("  %s", filepath.Join(dest, n))
	}
}

func runBacking(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("backing", flag.ExitOnError)
	drumGain := fs.Float64("drum-gain", cfg.DrumGainDB, "drum gain in dB (negative attenuates)")
	withClick := fs.Bool("with-click", cfg.WithClick, "overlay a metronome click")
	autoBPM := fs.Bool("auto-bpm", false, "take beat positions from metadata.json")
	bpm := fs.Float64("bpm", 0, "fixed tempo for the click grid")
	formats := fs.String("formats", cfg.ExportFormats, "output formats, comma-separated (wav,mp3)")
	fs.Parse(args)

	dir := fs.Arg(0)
	if dir == "" {
		log.Fatal("backing: stems directory required")
	}

	fmts, err := export.ParseFormats(*formats)
	if err != nil {
		log.Fatalf("backing: %v", err)
	}

	set, err := stems.LoadSet(stems.DirLoader{Dir: dir, Rate: cfg.SampleRate})
	if err != nil {
		log.Fatalf("backing: %v", err)
	}

	opts := mix.Options{
		DrumGainDB:   *drumGain,
		WithClick:    *withClick,
		ClickLevelDB: cfg.ClickLevelDB,
	}
	if *withClick {
		opts.Beats, err = beatSource(dir, *autoBPM, *bpm)
		if err != nil {
			log.Fatalf("backing: %v", err)
		}
	}

	buf, err := mix.Mixdown(set, opts)
	if err != nil {
		log.Fatalf("backing: %v", err)
	}

	outputs, err := export.Render(ctx, dir, "backing", buf, fmts, cfg.MP3Bitrate)
	if err != nil {
		log.Fatalf("backing: %v", err)
	}

	res := mix.Result{Buffer: buf, Outputs: outputs}
	for _, p := range res.Outputs {
		log.Printf("Wrote %s", p)
	}
	log.Printf("Backing track: %d ms, peak %.2f dBFS", res.Buffer.DurationMS(), res.Buffer.PeakDBFS())
}

// beatSource picks the beat grid: externally estimated positions from
// metadata.json, or a fixed-tempo grid from -bpm.
func beatSource(dir string, autoBPM bool, bpm float64) (metronome.Source, error) {
	if autoBPM {
		meta, err := stems.ReadMetadata(dir)
		if err != nil {
			return nil, fmt.Errorf("no beat metadata (run the analyzer first): %w", err)
		}
		return metronome.External(meta.Beats), nil
	}
	if bpm <= 0 {
		return nil, errors.New("-with-click needs -auto-bpm or a positive -bpm")
	}
	return metronome.FixedTempo{BPM: bpm}, nil
}

func runPreview(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	port := fs.Int("port", cfg.PreviewPort, "HTTP port")
	fs.Parse(args)

	dir := fs.Arg(0)
	if dir == "" {
		log.Fatal("preview: stems directory required")
	}

	// The preview transport runs at 48 kHz for Opus; the loader resamples.
	loader := stems.DirLoader{Dir: dir, Rate: audio.PreviewSampleRate}
	buf, err := loader.LoadFile(filepath.Join(dir, "backing.wav"))
	if err != nil {
		log.Fatalf("preview: %v (render it with `drumtrainer backing` first)", err)
	}

	player := preview.NewPlayer(buf)
	go player.Run(ctx)

	broadcaster := preview.NewBroadcaster()
	go broadcaster.Run(ctx, player.Frames())

	webrtcHandler := preview.NewWebRTCHandler(broadcaster)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.IndexHTML)
	})
	mux.Handle("/stream", preview.NewHTTPHandler(broadcaster, cfg.MP3Bitrate))
	mux.Handle("/offer", webrtcHandler)
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		position, duration := player.Status()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"position":  position.Seconds(),
			"duration":  duration.Seconds(),
			"listeners": broadcaster.ListenerCount() + webrtcHandler.PeerCount(),
		})
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", *port), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Practice preview on http://localhost:%d (source: %s)", *port, dir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("preview: %v", err)
	}
}

// songName derives the output directory name from the input file name.
func songName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, " ", "_")
}
