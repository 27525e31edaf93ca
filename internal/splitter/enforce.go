package splitter

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"

	"videosplit/internal/display"
	"videosplit/internal/execx"
	"videosplit/internal/planner"
)

// ProgressFunc receives (current, total) after each part's processing is
// fully resolved (accepted, re-encoded, or fallback exhausted). current is
// 1-based and strictly increasing; exactly one call per part.
type ProgressFunc func(current, total int)

// EnforceSizeLimit measures every part and re-encodes those exceeding the
// maxGB budget, replacing them in place. Returns one entry per input part,
// in input order.
//
// Per-part failures are soft: a part that cannot be repaired (probe
// undeterminable, encode failed, every CRF rung failed) is kept as-is and
// the pass continues. Only cancellation aborts the whole pass; parts
// committed before the abort stay on disk.
func (s *Splitter) EnforceSizeLimit(ctx context.Context, parts []string, maxGB float64, progress ProgressFunc) ([]string, error) {
	maxBytes := int64(maxGB * planner.GiB)
	final := make([]string, 0, len(parts))
	total := len(parts)

	report := func(current int) {
		if progress != nil {
			progress(current, total)
		}
	}

	for i, part := range parts {
		if ctx.Err() != nil {
			return nil, execx.ErrCancelled
		}

		fi, err := os.Stat(part)
		if err != nil {
			s.log.Error("Cannot stat part %s: %v", filepath.Base(part), err)
			final = append(final, part)
			report(i + 1)
			continue
		}

		if fi.Size() <= maxBytes {
			s.log.Info("Part %s within limits (%s).", filepath.Base(part), display.FormatBytes(fi.Size()))
			final = append(final, part)
			report(i + 1)
			continue
		}

		s.log.Warn("Part %s exceeds limit (%s > %.2f GB). Re-encoding...",
			filepath.Base(part), display.FormatBytes(fi.Size()), maxGB)

		if err := s.repairPart(ctx, part, maxBytes, maxGB); err != nil {
			// Cancellation is the only hard error out of repairPart.
			return nil, err
		}

		final = append(final, part)
		report(i + 1)
	}

	return final, nil
}

// repairPart runs the re-encode ladder for one oversize part: bitrate
// targeting first, then the CRF rungs. The part file is replaced atomically
// when a temporary result exists at the end; otherwise the original stands.
// Returns execx.ErrCancelled on cancellation, nil otherwise.
func (s *Splitter) repairPart(ctx context.Context, part string, maxBytes int64, maxGB float64) error {
	meta, err := s.prober.Probe(ctx, part)
	if err != nil {
		if execx.IsCancelled(err) {
			return err
		}
		s.log.Error("Unable to probe %s; keeping original: %v", filepath.Base(part), err)
		return nil
	}
	if meta.Duration <= 0 {
		s.log.Error("Unable to determine duration for %s; keeping original.", filepath.Base(part))
		return nil
	}

	tmp := tmpPath(part)
	if err := removeIfExists(tmp); err != nil {
		s.log.Error("Cannot remove stale temp file %s: %v", tmp, err)
		return nil
	}

	bitrate := targetVideoBitrate(meta.Duration, maxGB)

	if err := s.runner.Stream(ctx, s.ffmpeg, bitrateEncodeArgs(part, tmp, bitrate)...); err != nil {
		// ffmpeg creates the output up front; a failed run leaves a partial
		// file that must never reach commit.
		_ = removeIfExists(tmp)
		if execx.IsCancelled(err) {
			return err
		}
		s.log.Error("Bitrate-targeted encode failed for %s: %v", filepath.Base(part), err)
	}

	tmpInfo, statErr := os.Stat(tmp)
	switch {
	case statErr != nil:
		s.log.Error("FFmpeg failed to create %s; keeping original.", tmp)
		return nil
	case tmpInfo.Size() > maxBytes:
		s.log.Warn("Re-encoded file still too large (%s). Trying CRF fallback.",
			display.FormatBytes(tmpInfo.Size()))
		_ = removeIfExists(tmp)
		if err := s.crfFallback(ctx, part, tmp, maxBytes); err != nil {
			return err
		}
	}

	return s.commit(part, tmp)
}

// crfFallback tries each CRF rung in ascending compression order, accepting
// the first whose output fits the budget. When every rung overshoots, the
// last attempt is kept as best effort unless the keep-oversize policy is
// disabled; a re-encode that exists is never discarded in favor of the
// larger original.
func (s *Splitter) crfFallback(ctx context.Context, part, tmp string, maxBytes int64) error {
	for i, crf := range crfLadder {
		if ctx.Err() != nil {
			_ = removeIfExists(tmp)
			return execx.ErrCancelled
		}

		if err := s.runner.Stream(ctx, s.ffmpeg, crfEncodeArgs(part, tmp, crf)...); err != nil {
			_ = removeIfExists(tmp)
			if execx.IsCancelled(err) {
				return err
			}
			s.log.Error("CRF %d encode failed for %s: %v", crf, filepath.Base(part), err)
			continue
		}

		fi, err := os.Stat(tmp)
		if err != nil {
			continue
		}
		if fi.Size() <= maxBytes {
			s.log.Info("CRF %d produced acceptable size for %s (%s).",
				crf, filepath.Base(part), display.FormatBytes(fi.Size()))
			return nil
		}

		s.log.Warn("CRF %d still too large (%s).", crf, display.FormatBytes(fi.Size()))

		lastRung := i == len(crfLadder)-1
		if !lastRung || !s.keepOversize {
			_ = removeIfExists(tmp)
		}
	}
	return nil
}

// commit atomically replaces part with tmp when tmp exists. The rename
// keeps a file present at the part path at every instant; a reader never
// observes the path missing.
func (s *Splitter) commit(part, tmp string) error {
	if _, err := os.Stat(tmp); err != nil {
		s.log.Warn("Falling back to original oversize part %s.", filepath.Base(part))
		return nil
	}
	if err := os.Rename(tmp, part); err != nil {
		s.log.Error("Cannot replace %s with re-encoded file: %v", filepath.Base(part), err)
		_ = removeIfExists(tmp)
		return nil
	}
	if fi, err := os.Stat(part); err == nil {
		s.log.Info("Re-encoded %s -> %s.", filepath.Base(part), display.FormatBytes(fi.Size()))
	}
	return nil
}

// targetVideoBitrate computes the video bitrate (bits/s) that fits a
// segment of the given duration into the size budget: 95% of the budget in
// bits, spread over the duration, minus the fixed audio bitrate, floored
// at minVideoBitrate.
func targetVideoBitrate(durationSec, maxGB float64) int {
	targetBytes := maxGB * planner.GiB * safetyRatio
	targetBits := math.Max(targetBytes*8, 1)
	videoBits := targetBits/durationSec - audioBitrateFloor
	return max(int(videoBits), minVideoBitrate)
}

// tmpPath returns the temporary encode destination for a part file
// (<part-without-ext>.tmp.mp4, same directory so the final rename is
// atomic).
func tmpPath(part string) string {
	return strings.TrimSuffix(part, filepath.Ext(part)) + ".tmp.mp4"
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
