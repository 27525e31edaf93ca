package splitter

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"videosplit/internal/execx"
)

// SplitByCopy segments the input into parts of segmentSeconds each by
// stream copy, writing <base>_part_NN.mp4 files into outDir. It returns
// the produced part paths sorted by segment index (the zero-padded
// numbering makes lexicographic order equal creation order).
//
// The segmenter may produce fewer parts than planned when the stream ends
// early; that is not a failure. Zero parts is: ErrNoOutput.
func (s *Splitter) SplitByCopy(ctx context.Context, inputPath, outDir string, segmentSeconds float64) ([]string, error) {
	if ctx.Err() != nil {
		return nil, execx.ErrCancelled
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	segmentSeconds = math.Max(segmentSeconds, 1.0)
	base := baseName(inputPath)
	pattern := filepath.Join(outDir, base+"_part_%02d.mp4")

	if err := s.runner.Stream(ctx, s.ffmpeg, copySplitArgs(inputPath, pattern, segmentSeconds)...); err != nil {
		return nil, err
	}

	parts, err := globSorted(filepath.Join(outDir, base+"_part_*.mp4"))
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrNoOutput
	}

	s.log.Info("Created %d part(s) via copy split.", len(parts))
	return parts, nil
}

// PartPattern returns the glob matching part files a run for inputPath
// would produce in outDir. Used by callers to clear stale parts from a
// previous run.
func PartPattern(inputPath, outDir string) string {
	return filepath.Join(outDir, baseName(inputPath)+"_part_*.mp4")
}

// baseName returns the file name without directory or extension.
func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

// globSorted lists files matching pattern in lexicographic order.
func globSorted(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
