// Package splitter implements the media operations: stream-copy
// segmentation, size-limit enforcement with re-encode fallback, audio
// extraction, and audio segmentation. All external work goes through
// execx; all metadata comes from probe.
package splitter

import (
	"errors"

	"videosplit/internal/config"
	"videosplit/internal/execx"
	"videosplit/internal/logging"
	"videosplit/internal/probe"
)

// Encoding constants shared by the enforcement ladder.
const (
	// audioBitrateFloor is the fixed AAC audio bitrate of re-encoded parts,
	// subtracted from the size budget before computing the video bitrate.
	audioBitrateFloor = 128_000 // bits/s

	// minVideoBitrate is the floor below which a computed target bitrate is
	// clamped; encoding below it produces unusable video.
	minVideoBitrate = 200_000 // bits/s

	// safetyRatio leaves headroom under the size budget for container
	// overhead and rate-control overshoot.
	safetyRatio = 0.95
)

// crfLadder holds the constant-quality fallback rungs, in ascending
// compression order.
var crfLadder = []int{23, 26, 28}

// ErrNoOutput is returned when a segmentation run completes without
// producing any part file. Never retried: a missing first part means the
// source was unreadable or the output pattern was wrong.
var ErrNoOutput = errors.New("ffmpeg did not produce any output parts")

// Splitter executes the split and enforcement operations for one run.
type Splitter struct {
	ffmpeg       string
	keepOversize bool
	log          *logging.Logger
	runner       *execx.Runner
	prober       *probe.Prober
}

// New returns a Splitter wired to the run's binaries and logger.
func New(cfg *config.Config, log *logging.Logger, runner *execx.Runner, prober *probe.Prober) *Splitter {
	return &Splitter{
		ffmpeg:       cfg.FFmpegPath,
		keepOversize: cfg.KeepOversizeEncode,
		log:          log,
		runner:       runner,
		prober:       prober,
	}
}
