// Package config holds runtime configuration: defaults, settings-file
// loading, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// --- Enum types for validated string fields ---

// Mode selects which operation the tool performs.
type Mode string

const (
	ModeSplit        Mode = "split"         // Split video into size/duration bounded parts (default).
	ModeAudioExtract Mode = "audio-extract" // Extract the audio track to MP3.
	ModeAudioSplit   Mode = "audio-split"   // Segment the audio track by stream copy.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [Default], then
// optionally overlaid with a settings file, and finally mutated by
// [ParseFlags] before being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputPath string
	OutputDir string

	// Split limits.
	MaxSizeGB      float64 // Default: 1.5. Per-part size budget in GiB.
	MaxDurationMin float64 // Default: 50. Per-part duration budget in minutes.

	// External binaries. Bare names resolve through PATH.
	FFmpegPath  string // Default: "ffmpeg".
	FFprobePath string // Default: "ffprobe".

	// Operation selection.
	Mode Mode // Default: "split".

	// Audio settings (audio-extract mode).
	AudioBitrate string // Default: "192k".

	// Behavior flags.
	Force              bool // Remove pre-existing part files in the output directory.
	DryRun             bool // Print the plan without invoking ffmpeg.
	KeepOversizeEncode bool // Default: true. Keep the last CRF attempt even when oversize.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.

	// Settings file.
	SettingsPath string // Optional YAML settings file; see settings.go.
	SaveSettings bool   // Default: true. Write effective values back after a run starts.
}

// Default returns a Config with all defaults matching the legacy
// VideoSplitter behavior (1.5 GiB / 50 min limits, best-effort oversize
// encodes kept).
func Default() Config {
	return Config{
		MaxSizeGB:          1.5,
		MaxDurationMin:     50,
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		Mode:               ModeSplit,
		AudioBitrate:       "192k",
		KeepOversizeEncode: true,
		ColorMode:          ColorAuto,
		SaveSettings:       true,
	}
}

// Validate checks enum fields and numeric ranges. When not in CheckOnly
// mode, it also requires the input path and output directory.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSplit, ModeAudioExtract, ModeAudioSplit:
		// valid
	default:
		return errors.New("invalid mode (use 'split', 'audio-extract' or 'audio-split')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.MaxSizeGB <= 0 {
		return errors.New("max size (GB) must be greater than zero")
	}
	if c.MaxDurationMin <= 0 {
		return errors.New("max duration (minutes) must be greater than zero")
	}
	if c.FFmpegPath == "" || c.FFprobePath == "" {
		return errors.New("ffmpeg and ffprobe paths must not be empty")
	}

	normalized, err := normalizeAudioBitrate(c.AudioBitrate)
	if err != nil {
		return err
	}
	c.AudioBitrate = normalized

	if c.CheckOnly {
		return nil
	}
	if c.InputPath == "" || c.OutputDir == "" {
		return errors.New("need exactly input_file and output_dir")
	}
	return nil
}

// normalizeAudioBitrate validates and canonicalizes user bitrate input.
// Accepted forms: "192", "192k", "192K", "192kbps". Output is "<n>k".
func normalizeAudioBitrate(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("audio bitrate must not be empty")
	}
	if strings.HasSuffix(s, "kbps") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "kbps"))
	} else if strings.HasSuffix(s, "k") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid audio bitrate %q (use positive Kbps value, e.g. 192k)", raw)
	}
	return fmt.Sprintf("%dk", n), nil
}
