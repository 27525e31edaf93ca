package pipeline

import (
	"os"
	"time"

	"videosplit/internal/display"
	"videosplit/internal/logging"
)

// RunStats aggregates the outcome of one run for the final summary line.
type RunStats struct {
	Parts      int
	TotalBytes int64
	Elapsed    time.Duration
}

// collectStats sizes the final part files.
func collectStats(parts []string, elapsed time.Duration) RunStats {
	st := RunStats{Parts: len(parts), Elapsed: elapsed}
	for _, p := range parts {
		if fi, err := os.Stat(p); err == nil {
			st.TotalBytes += fi.Size()
		}
	}
	return st
}

// logSummary prints the end-of-run summary.
func logSummary(log *logging.Logger, st RunStats) {
	log.Success("Done: %d part(s), %s total, in %ds.",
		st.Parts, display.FormatBytes(st.TotalBytes), int(st.Elapsed.Seconds()))
}
