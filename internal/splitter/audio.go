package splitter

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"videosplit/internal/execx"
)

// ExtractAudio extracts the input's audio track to <base>.mp3 in outDir at
// the given bitrate (e.g. "192k"). The encode writes to a temporary file
// that is renamed into place on success, so a partially written output is
// never left at the destination path.
func (s *Splitter) ExtractAudio(ctx context.Context, inputPath, outDir, bitrate string) (string, error) {
	if ctx.Err() != nil {
		return "", execx.ErrCancelled
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	dest := filepath.Join(outDir, baseName(inputPath)+".mp3")
	tmp := tmpAudioPath(dest)
	if err := removeIfExists(tmp); err != nil {
		return "", err
	}

	if err := s.runner.Stream(ctx, s.ffmpeg, audioExtractArgs(inputPath, tmp, bitrate)...); err != nil {
		_ = removeIfExists(tmp)
		return "", err
	}
	if _, err := os.Stat(tmp); err != nil {
		return "", ErrNoOutput
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = removeIfExists(tmp)
		return "", err
	}

	s.log.Info("Extracted audio to %s.", filepath.Base(dest))
	return dest, nil
}

// SplitAudioByCopy segments the input's audio track by stream copy into
// <base>_audio_NN files in outDir. Copied codec data cannot change
// container, so parts keep the input extension.
func (s *Splitter) SplitAudioByCopy(ctx context.Context, inputPath, outDir string, segmentSeconds float64) ([]string, error) {
	if ctx.Err() != nil {
		return nil, execx.ErrCancelled
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	segmentSeconds = math.Max(segmentSeconds, 1.0)
	pattern := filepath.Join(outDir, baseName(inputPath)+"_audio_%02d"+filepath.Ext(inputPath))

	if err := s.runner.Stream(ctx, s.ffmpeg, audioSplitArgs(inputPath, pattern, segmentSeconds)...); err != nil {
		return nil, err
	}

	parts, err := globSorted(AudioPartPattern(inputPath, outDir))
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrNoOutput
	}

	s.log.Info("Created %d audio part(s) via copy split.", len(parts))
	return parts, nil
}

// AudioPartPattern returns the glob matching audio part files a run for
// inputPath would produce in outDir. Used by callers to clear stale parts
// from a previous run.
func AudioPartPattern(inputPath, outDir string) string {
	return filepath.Join(outDir, baseName(inputPath)+"_audio_*"+filepath.Ext(inputPath))
}

// tmpAudioPath returns the temporary destination for an audio extract
// (same directory as dest so the final rename is atomic).
func tmpAudioPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp")
}
