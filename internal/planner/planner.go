// Package planner derives the split plan: how many parts a file needs and
// what segment duration to request from the segmenter. Pure functions only;
// no I/O.
package planner

import (
	"errors"
	"fmt"
	"math"
)

// GiB is the size unit the limits are expressed in.
const GiB = 1 << 30

// ErrInvalidInput is returned when any plan parameter is not strictly
// positive. Wrapped errors carry the offending field.
var ErrInvalidInput = errors.New("invalid plan input")

// Plan is the computed split plan. Immutable once computed; consumed once
// by the segment splitter.
type Plan struct {
	Parts          int     // >= 1.
	SegmentSeconds float64 // >= 1.0.
}

// MakePlan computes the number of parts and the target segment duration
// from the input's duration and size and the two per-part limits.
//
// The binding constraint (whichever dimension needs more splits) determines
// the part count; segment length is duration divided evenly across parts,
// floored at one second to avoid degenerate segment requests. Deterministic
// for identical inputs.
func MakePlan(durationSec float64, sizeBytes int64, maxGB, maxMinutes float64) (Plan, error) {
	if durationSec <= 0 {
		return Plan{}, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	if sizeBytes <= 0 {
		return Plan{}, fmt.Errorf("%w: size must be positive", ErrInvalidInput)
	}
	if maxGB <= 0 {
		return Plan{}, fmt.Errorf("%w: max size (GB) must be positive", ErrInvalidInput)
	}
	if maxMinutes <= 0 {
		return Plan{}, fmt.Errorf("%w: max duration (minutes) must be positive", ErrInvalidInput)
	}

	maxBytes := maxGB * GiB
	maxSeconds := maxMinutes * 60

	sizeParts := int(math.Ceil(float64(sizeBytes) / maxBytes))
	timeParts := int(math.Ceil(durationSec / maxSeconds))

	parts := max(sizeParts, timeParts, 1)
	segment := math.Max(durationSec/float64(parts), 1.0)

	return Plan{Parts: parts, SegmentSeconds: segment}, nil
}
