package config

import (
	"os"
	"strconv"
)

// Config holds runtime configuration, loaded from environment variables.
// Subcommand flags override individual values at the call site.
type Config struct {
	// Rendering
	SampleRate   int     // stem/mixdown sample rate
	DrumGainDB   float64 // gain applied to the drums stem (negative = duck/mute)
	ClickLevelDB float64 // synthesized click peak level
	WithClick    bool    // overlay the metronome by default

	// Separation
	DemucsModel string

	// Export
	ExportFormats string // comma-separated: wav,mp3
	MP3Bitrate    string

	// Preview server
	PreviewPort int
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate:   envInt("TRAINER_SAMPLE_RATE", 44100),
		DrumGainDB:   envFloat("TRAINER_DRUM_GAIN", -120),
		ClickLevelDB: envFloat("TRAINER_CLICK_LEVEL", -6),
		WithClick:    envBool("TRAINER_WITH_CLICK", false),

		DemucsModel: envStr("TRAINER_DEMUCS_MODEL", "htdemucs"),

		ExportFormats: envStr("TRAINER_EXPORT_FORMATS", "wav"),
		MP3Bitrate:    envStr("TRAINER_MP3_BITRATE", "192k"),

		PreviewPort: envInt("TRAINER_PREVIEW_PORT", 8080),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
