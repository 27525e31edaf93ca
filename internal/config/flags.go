package config

// This file implements CLI flag parsing and help text.
// Negated flags (e.g. --no-keep-oversize) are applied after Parse so Config
// defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
)

// version is shown in --version and help; override at build time with
// -ldflags "-X videosplit/internal/config.version=...".
var version = "1.0.0-dev"

// Version returns the build version string.
func Version() string { return version }

// ParseFlags parses args (normally os.Args[1:]) into cfg. On --help or
// --version it prints and exits. On error it returns non-nil (e.g. unknown
// flag, missing positional args).
func ParseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("videosplit", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	// Negated/override flags: we capture bools then apply to cfg after Parse,
	// so that defaults from Default() hold unless the user passes the flag.
	var n negatedFlags

	defineLimitFlags(fs, cfg)
	defineModeFlags(fs, cfg, &n)
	defineBehaviorFlags(fs, cfg, &n)
	defineDisplayFlags(fs, cfg, &n)
	defineUtilityFlags(fs, cfg, &n)

	if err := fs.Parse(args); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &n)

	if n.showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if n.showVersion {
		fmt.Fprintln(os.Stdout, "videosplit v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noKeepOversize -> KeepOversizeEncode=false)
// or trigger exit (showHelp, showVersion).
type negatedFlags struct {
	noKeepOversize bool
	noSaveSettings bool
	forceColor     bool
	noColor        bool
	audioExtract   bool
	audioSplit     bool
	showVersion    bool
	showHelp       bool
}

// defineLimitFlags registers -s/--max-size and -d/--max-duration.
func defineLimitFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Float64Var(&cfg.MaxSizeGB, "max-size", cfg.MaxSizeGB, "Max part size in GB")
	fs.Float64Var(&cfg.MaxSizeGB, "s", cfg.MaxSizeGB, "Same as --max-size")
	fs.Float64Var(&cfg.MaxDurationMin, "max-duration", cfg.MaxDurationMin, "Max part duration in minutes")
	fs.Float64Var(&cfg.MaxDurationMin, "d", cfg.MaxDurationMin, "Same as --max-duration")
}

// defineModeFlags registers -m/--mode (plus the audio shorthands),
// --audio-bitrate and the binary paths.
func defineModeFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.Var(&modeValue{&cfg.Mode}, "mode", "Operation: split | audio-extract | audio-split")
	fs.Var(&modeValue{&cfg.Mode}, "m", "Same as --mode")
	fs.BoolVar(&n.audioExtract, "audio-extract", false, "Same as --mode audio-extract")
	fs.BoolVar(&n.audioSplit, "audio-split", false, "Same as --mode audio-split")
	fs.StringVar(&cfg.AudioBitrate, "audio-bitrate", cfg.AudioBitrate, "MP3 bitrate for audio-extract (e.g. 192k)")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "Path to the ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "Path to the ffprobe binary")
}

// defineBehaviorFlags registers --force, --dry-run, --no-keep-oversize, --no-save-settings.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.Force, "force", false, "Remove existing part files in the output directory")
	fs.BoolVar(&cfg.Force, "f", false, "Same as --force")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Print the split plan without running ffmpeg")
	fs.BoolVar(&n.noKeepOversize, "no-keep-oversize", false, "Revert to the original part when every CRF attempt is still oversize")
	fs.BoolVar(&n.noSaveSettings, "no-save-settings", false, "Do not write effective values back to the settings file")
}

// defineDisplayFlags registers -v/--verbose, --color, --no-color, --log-file.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output (includes command lines)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&n.forceColor, "color", false, "Force ANSI colors on")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable ANSI colors")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Append log output to file")
}

// defineUtilityFlags registers --check, --settings, --version, -h/--help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "YAML settings file (default: ./videosplit.yaml when present)")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags transfers post-Parse negations onto cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noKeepOversize {
		cfg.KeepOversizeEncode = false
	}
	if n.noSaveSettings {
		cfg.SaveSettings = false
	}
	if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	}
	if n.audioExtract {
		cfg.Mode = ModeAudioExtract
	}
	if n.audioSplit {
		cfg.Mode = ModeAudioSplit
	}
}

// parsePositionalArgs consumes the input file and output directory.
// Both are optional on the command line when a settings file supplied them.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	rest := fs.Args()
	switch len(rest) {
	case 0:
		// Settings file (or --check) may stand in; Validate decides.
	case 1:
		cfg.InputPath = rest[0]
	case 2:
		cfg.InputPath = rest[0]
		cfg.OutputDir = rest[1]
	default:
		return fmt.Errorf("too many arguments (expected input_file [output_dir], got %d)", len(rest))
	}
	return nil
}

// modeValue adapts Mode to the flag.Value interface with validation at parse time.
type modeValue struct{ m *Mode }

func (v *modeValue) String() string {
	if v.m == nil {
		return ""
	}
	return string(*v.m)
}

func (v *modeValue) Set(s string) error {
	switch Mode(s) {
	case ModeSplit, ModeAudioExtract, ModeAudioSplit:
		*v.m = Mode(s)
		return nil
	}
	return fmt.Errorf("invalid mode %q", s)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `videosplit v%s - split large videos into size/duration bounded parts

Usage:
  videosplit [options] input_file output_dir

The input is segmented by stream copy into parts no larger than --max-size
GB and no longer than --max-duration minutes. Parts that still exceed the
size budget are re-encoded to fit (bitrate targeting, then a CRF fallback
ladder).

Options:
`, version)
	fs.PrintDefaults()
}
