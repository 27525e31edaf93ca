package splitter

// ffmpeg argument assembly. Each builder returns the full argument slice
// (without the binary name); execution and logging happen in execx.

import "fmt"

// copySplitArgs segments a container by stream copy at the requested
// interval. No re-encode: codec data is passed through untouched.
func copySplitArgs(input, outputPattern string, segmentSeconds float64) []string {
	return []string{
		"-y",
		"-v", "error",
		"-i", input,
		"-c", "copy",
		"-map", "0",
		"-f", "segment",
		"-reset_timestamps", "1",
		"-segment_time", fmt.Sprintf("%.3f", segmentSeconds),
		outputPattern,
	}
}

// bitrateEncodeArgs re-encodes source at a capped target video bitrate.
// maxrate 110% and bufsize 200% bound burst overshoot; +faststart enables
// progressive playback of the result.
func bitrateEncodeArgs(source, dest string, videoBitrate int) []string {
	bitrateK := max(videoBitrate/1000, 1)
	maxrateK := bitrateK * 11 / 10
	bufsizeK := bitrateK * 2

	return []string{
		"-y",
		"-i", source,
		"-map", "0",
		"-c:v", "libx264",
		"-preset", "medium",
		"-b:v", fmt.Sprintf("%dk", bitrateK),
		"-maxrate", fmt.Sprintf("%dk", maxrateK),
		"-bufsize", fmt.Sprintf("%dk", bufsizeK),
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		dest,
	}
}

// crfEncodeArgs re-encodes source in constant-quality mode.
func crfEncodeArgs(source, dest string, crf int) []string {
	return []string{
		"-y",
		"-i", source,
		"-map", "0",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", fmt.Sprintf("%d", crf),
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		dest,
	}
}

// audioExtractArgs extracts the audio track to MP3 at a fixed bitrate.
func audioExtractArgs(input, dest, bitrate string) []string {
	return []string{
		"-y",
		"-i", input,
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", bitrate,
		"-f", "mp3",
		dest,
	}
}

// audioSplitArgs segments the audio track by stream copy. The output keeps
// the input container since copied codec data cannot change format.
func audioSplitArgs(input, outputPattern string, segmentSeconds float64) []string {
	return []string{
		"-y",
		"-v", "error",
		"-i", input,
		"-vn",
		"-c:a", "copy",
		"-f", "segment",
		"-reset_timestamps", "1",
		"-segment_time", fmt.Sprintf("%.3f", segmentSeconds),
		outputPattern,
	}
}
