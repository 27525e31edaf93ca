package probe

// Metadata is the parsed result of a single ffprobe call. Duration, Size
// and BitRate are coerced defensively (missing or malformed fields become
// zero values, never parse errors); Format and Streams carry the raw
// records through unparsed for callers that need more.
type Metadata struct {
	Duration float64 // Seconds, >= 0.
	Size     int64   // Bytes, >= 0.
	BitRate  int64   // Bits per second, >= 0.

	Format  map[string]any
	Streams []map[string]any
}
