// Package pipeline orchestrates one run: probe, plan, split, enforce.
// The run executes in a single background goroutine; the caller consumes
// progress and outcome through the returned event channel and shares no
// other state with the run besides the cancellation context.
package pipeline

import (
	"context"
	"time"

	"videosplit/internal/config"
	"videosplit/internal/display"
	"videosplit/internal/execx"
	"videosplit/internal/logging"
	"videosplit/internal/planner"
	"videosplit/internal/probe"
	"videosplit/internal/splitter"
)

// Start launches the run in a background goroutine and returns its event
// channel. The channel is closed after the Done event. Cancel the context
// to request cooperative abort; a fresh context is required for every run.
func Start(ctx context.Context, cfg *config.Config, log *logging.Logger) <-chan Event {
	events := make(chan Event, 64)
	go func() {
		defer close(events)
		run(ctx, cfg, log, events)
	}()
	return events
}

// Run executes the pipeline synchronously, emitting events as it goes.
// Exposed for callers (and tests) that manage their own goroutine.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, events chan<- Event) {
	run(ctx, cfg, log, events)
}

// run resolves the single terminal outcome and always finishes with Done.
func run(ctx context.Context, cfg *config.Config, log *logging.Logger, events chan<- Event) {
	defer func() { events <- Event{Type: EventDone} }()

	start := time.Now()
	parts, err := execute(ctx, cfg, log, events)

	switch {
	case execx.IsCancelled(err) || (err == nil && ctx.Err() != nil):
		log.Warn("Run cancelled.")
		events <- Event{Type: EventCancelled}
	case err != nil:
		log.Error("Run failed: %v", err)
		events <- Event{Type: EventFailed, Message: err.Error()}
	default:
		logSummary(log, collectStats(parts, time.Since(start)))
		events <- Event{Type: EventCompleted, Parts: parts}
	}
}

// execute performs the mode-selected work and returns the final output
// paths. All stage errors surface here; per-part soft failures never do.
func execute(ctx context.Context, cfg *config.Config, log *logging.Logger, events chan<- Event) ([]string, error) {
	runner := execx.NewRunner(log)
	prober := probe.NewProber(cfg.FFprobePath, runner)
	sp := splitter.New(cfg, log, runner, prober)

	meta, err := prober.Probe(ctx, cfg.InputPath)
	if err != nil {
		return nil, err
	}
	log.Info("Input duration=%.2fs size=%s bitrate=%s",
		meta.Duration, display.FormatBytes(meta.Size), display.FormatBitrate(meta.BitRate))

	if cfg.Mode == config.ModeAudioExtract {
		events <- Event{Type: EventStatus, Message: "Extracting audio..."}
		dest, err := sp.ExtractAudio(ctx, cfg.InputPath, cfg.OutputDir, cfg.AudioBitrate)
		if err != nil {
			return nil, err
		}
		return []string{dest}, nil
	}

	plan, err := planner.MakePlan(meta.Duration, meta.Size, cfg.MaxSizeGB, cfg.MaxDurationMin)
	if err != nil {
		return nil, err
	}
	log.Info("Split plan: %d part(s), segment %.2fs.", plan.Parts, plan.SegmentSeconds)

	if cfg.DryRun {
		log.Success("[DRY] Would split into %d part(s).", plan.Parts)
		return nil, nil
	}

	if cfg.Mode == config.ModeAudioSplit {
		events <- Event{Type: EventStatus, Message: "Splitting audio..."}
		return sp.SplitAudioByCopy(ctx, cfg.InputPath, cfg.OutputDir, plan.SegmentSeconds)
	}

	events <- Event{Type: EventStatus, Message: "Splitting..."}
	parts, err := sp.SplitByCopy(ctx, cfg.InputPath, cfg.OutputDir, plan.SegmentSeconds)
	if err != nil {
		return nil, err
	}
	if len(parts) != plan.Parts {
		// The segmenter may end early; a changed total is not a failure.
		log.Warn("Segmenter produced %d part(s), plan expected %d.", len(parts), plan.Parts)
	}

	events <- Event{Type: EventProgressReset, Total: len(parts)}
	events <- Event{Type: EventStatus, Message: "Checking sizes & re-encoding..."}

	return sp.EnforceSizeLimit(ctx, parts, cfg.MaxSizeGB, func(current, total int) {
		events <- Event{Type: EventProgress, Current: current, Total: total}
	})
}
