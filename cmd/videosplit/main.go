// Command videosplit is the CLI entrypoint for the video splitter.
//
// It loads settings and flags, validates configuration, and either runs
// system diagnostics (--check) or the split pipeline, rendering pipeline
// events as a progress line when stdout is a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"videosplit/internal/check"
	"videosplit/internal/config"
	"videosplit/internal/logging"
	"videosplit/internal/pipeline"
	"videosplit/internal/splitter"
	"videosplit/internal/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "videosplit: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "videosplit: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "videosplit: %v\n", err)
		return 1
	}
	defer log.Close()

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	log.Info("=== videosplit v%s ===", config.Version())
	log.Info("In:  %s", cfg.InputPath)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN, no files will be written")
	}

	// Fail fast if ffmpeg/ffprobe are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return 1
	}

	if (cfg.Mode == config.ModeSplit || cfg.Mode == config.ModeAudioSplit) && !cfg.DryRun {
		if err := clearStaleParts(&cfg, log); err != nil {
			log.Error("%v", err)
			return 1
		}
	}

	if cfg.SaveSettings {
		path := cfg.SettingsPath
		if path == "" {
			path = config.DefaultSettingsFile
		}
		if err := config.WriteSettings(&cfg, path); err != nil {
			log.Warn("Could not save settings to %s: %v", path, err)
		}
	}

	// Cancel the context on SIGINT/SIGTERM; the pipeline stops at the next
	// output line or part boundary and the child process is torn down.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return consume(pipeline.Start(ctx, &cfg, log), log)
}

// clearStaleParts removes part files a previous run for the same input left
// in the output directory. The segmenter would otherwise interleave old and
// new parts in the final glob. Refuses without --force.
func clearStaleParts(cfg *config.Config, log *logging.Logger) error {
	pattern := splitter.PartPattern(cfg.InputPath, cfg.OutputDir)
	if cfg.Mode == config.ModeAudioSplit {
		pattern = splitter.AudioPartPattern(cfg.InputPath, cfg.OutputDir)
	}
	stale, err := filepath.Glob(pattern)
	if err != nil || len(stale) == 0 {
		return err
	}
	if !cfg.Force {
		return fmt.Errorf("%d part file(s) from a previous run in %s (use --force to remove)",
			len(stale), cfg.OutputDir)
	}
	for _, p := range stale {
		if err := os.Remove(p); err != nil {
			return fmt.Errorf("remove stale part %s: %w", p, err)
		}
	}
	log.Warn("Removed %d stale part file(s).", len(stale))
	return nil
}

// consume drains the pipeline event channel, rendering progress inline when
// stdout is a terminal, and maps the terminal outcome to an exit code.
func consume(events <-chan pipeline.Event, log *logging.Logger) int {
	tty := term.IsTerminal(os.Stdout)
	code := 0
	inline := false

	endInline := func() {
		if inline {
			fmt.Println()
			inline = false
		}
	}

	for ev := range events {
		switch ev.Type {
		case pipeline.EventStatus:
			endInline()
			log.Info("%s", ev.Message)
		case pipeline.EventProgressReset:
			endInline()
		case pipeline.EventProgress:
			if tty {
				fmt.Printf("\r%sPart %d/%d%s", term.Cyan, ev.Current, ev.Total, term.NC)
				inline = true
			}
		case pipeline.EventCompleted:
			endInline()
			code = 0
		case pipeline.EventCancelled:
			endInline()
			code = 130
		case pipeline.EventFailed:
			endInline()
			code = 1
		case pipeline.EventDone:
			endInline()
		}
	}
	return code
}
