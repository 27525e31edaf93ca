// Package probe extracts media metadata through a single ffprobe JSON call
// per file.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"videosplit/internal/execx"
)

// Sentinel errors for the two probe failure classes. Cancellation passes
// through as execx.ErrCancelled.
var (
	ErrNotFound    = errors.New("input file not found")
	ErrProbeFailed = errors.New("ffprobe failed")
)

// Prober runs ffprobe through a Runner. The binary path comes from config
// so tests and non-PATH installs can substitute it.
type Prober struct {
	bin    string
	runner *execx.Runner
}

// NewProber returns a Prober invoking bin via runner.
func NewProber(bin string, runner *execx.Runner) *Prober {
	return &Prober{bin: bin, runner: runner}
}

// Probe runs ffprobe against path and returns the parsed metadata.
// A missing path fails with ErrNotFound; a non-zero ffprobe exit or
// unparseable output fails with ErrProbeFailed.
func (p *Prober) Probe(ctx context.Context, path string) (*Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	out, err := p.runner.Capture(ctx, p.bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil {
		if execx.IsCancelled(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	return ParseJSON([]byte(out))
}

// ParseJSON converts raw ffprobe JSON output into Metadata. Exported for
// testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Metadata, error) {
	var raw struct {
		Format  map[string]any   `json:"format"`
		Streams []map[string]any `json:"streams"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrProbeFailed, err)
	}

	m := &Metadata{
		Format:   raw.Format,
		Streams:  raw.Streams,
		Duration: toFloat(raw.Format["duration"]),
		Size:     toInt64(raw.Format["size"]),
		BitRate:  toInt64(raw.Format["bit_rate"]),
	}

	// The container sometimes omits or zeroes the bit-rate; derive it from
	// size and duration when both are known.
	if m.BitRate <= 0 && m.Duration > 0 && m.Size > 0 {
		m.BitRate = int64(float64(m.Size) * 8 / m.Duration)
	}

	// Some containers report duration only per stream; take the first
	// positive value.
	if m.Duration <= 0 {
		for _, s := range raw.Streams {
			if d := toFloat(s["duration"]); d > 0 {
				m.Duration = d
				break
			}
		}
	}

	return m, nil
}

// --- Numeric coercion helpers ---
//
// ffprobe emits numbers as strings or (depending on version and field) as
// JSON numbers. Each helper accepts both and yields a documented default
// (0) for anything else.

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		return int64(f)
	default:
		return 0
	}
}
