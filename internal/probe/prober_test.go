package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"videosplit/internal/config"
	"videosplit/internal/execx"
	"videosplit/internal/logging"
)

func quietConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ColorMode = config.ColorNever
	return &cfg
}

// --- ParseJSON ---

func TestParseJSON_StringFields(t *testing.T) {
	data := []byte(`{
		"format": {"duration": "3600.500000", "size": "4831838208", "bit_rate": "10737418"},
		"streams": [{"codec_type": "video"}]
	}`)
	m, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if m.Duration != 3600.5 {
		t.Errorf("duration: got %v, want 3600.5", m.Duration)
	}
	if m.Size != 4831838208 {
		t.Errorf("size: got %d, want 4831838208", m.Size)
	}
	if m.BitRate != 10737418 {
		t.Errorf("bit_rate: got %d, want 10737418", m.BitRate)
	}
	if len(m.Streams) != 1 {
		t.Errorf("streams: got %d, want 1", len(m.Streams))
	}
}

func TestParseJSON_NumberFields(t *testing.T) {
	data := []byte(`{"format": {"duration": 120.0, "size": 1048576, "bit_rate": 69905}}`)
	m, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if m.Duration != 120.0 || m.Size != 1048576 || m.BitRate != 69905 {
		t.Errorf("got duration=%v size=%d bit_rate=%d", m.Duration, m.Size, m.BitRate)
	}
}

func TestParseJSON_DerivesBitRate(t *testing.T) {
	// No container bit_rate; derive size*8/duration.
	data := []byte(`{"format": {"duration": "100", "size": "1000000"}}`)
	m, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if m.BitRate != 80000 {
		t.Errorf("derived bit_rate: got %d, want 80000", m.BitRate)
	}
}

func TestParseJSON_StreamDurationFallback(t *testing.T) {
	data := []byte(`{
		"format": {"size": "1000"},
		"streams": [{"codec_type": "video"}, {"codec_type": "audio", "duration": "42.5"}]
	}`)
	m, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if m.Duration != 42.5 {
		t.Errorf("duration from streams: got %v, want 42.5", m.Duration)
	}
}

func TestParseJSON_MalformedValuesDefaultToZero(t *testing.T) {
	data := []byte(`{"format": {"duration": "N/A", "size": true, "bit_rate": null}}`)
	m, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if m.Duration != 0 || m.Size != 0 || m.BitRate != 0 {
		t.Errorf("got duration=%v size=%d bit_rate=%d, want zeros", m.Duration, m.Size, m.BitRate)
	}
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	_, err := ParseJSON([]byte("not json"))
	if !errors.Is(err, ErrProbeFailed) {
		t.Fatalf("error: got %v, want ErrProbeFailed", err)
	}
}

// --- Probe ---

func TestProbe_NonZeroExitKeepsErrorChain(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mp4")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	ffprobe := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(ffprobe, []byte("#!/bin/sh\nexit 2\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	log, err := logging.NewLogger(quietConfig(t))
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer log.Close()

	p := NewProber(ffprobe, execx.NewRunner(log))
	_, err = p.Probe(context.Background(), input)
	if !errors.Is(err, ErrProbeFailed) {
		t.Fatalf("error: got %v, want ErrProbeFailed", err)
	}
	// The exit status stays reachable through the wrap.
	var ee *execx.ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("error: got %v, want wrapped *ExitError", err)
	}
	if ee.Code != 2 {
		t.Errorf("exit code: got %d, want 2", ee.Code)
	}
}

func TestProbe_MissingFile(t *testing.T) {
	log, err := logging.NewLogger(quietConfig(t))
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer log.Close()

	p := NewProber("ffprobe", execx.NewRunner(log))
	_, err = p.Probe(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}
