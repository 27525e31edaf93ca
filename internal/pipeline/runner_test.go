package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"videosplit/internal/config"
	"videosplit/internal/logging"
)

// --- Helper builders ---

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

// testSetup creates an input file, fake binaries and a quiet logger, and
// returns a ready Config.
func testSetup(t *testing.T, ffmpegBody string) (*config.Config, *logging.Logger) {
	t.Helper()
	dir := t.TempDir()

	input := filepath.Join(dir, "movie.mp4")
	if err := os.WriteFile(input, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cfg := config.Default()
	cfg.ColorMode = config.ColorNever
	cfg.InputPath = input
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.FFprobePath = writeScript(t, dir, "ffprobe",
		`echo '{"format": {"duration": "120", "size": "1024", "bit_rate": "68"}}'`)
	cfg.FFmpegPath = writeScript(t, dir, "ffmpeg", ffmpegBody)

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return &cfg, log
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	return got
}

// terminalType returns the single terminal event type in evs and fails when
// there is not exactly one, or when Done does not follow it.
func terminalType(t *testing.T, evs []Event) EventType {
	t.Helper()
	terminal := -1
	for i, ev := range evs {
		switch ev.Type {
		case EventCompleted, EventCancelled, EventFailed:
			if terminal >= 0 {
				t.Fatalf("multiple terminal events: %v", evs)
			}
			terminal = i
		}
	}
	if terminal < 0 {
		t.Fatalf("no terminal event: %v", evs)
	}
	if len(evs) == 0 || evs[len(evs)-1].Type != EventDone {
		t.Fatalf("last event should be Done: %v", evs)
	}
	if terminal != len(evs)-2 {
		t.Fatalf("terminal event should precede Done: %v", evs)
	}
	return evs[terminal].Type
}

// --- Runs ---

func TestRun_DryRunCompletes(t *testing.T) {
	cfg, log := testSetup(t, "echo should-not-run >&2; exit 1")
	cfg.DryRun = true

	// Synchronous variant: the caller owns the channel.
	events := make(chan Event, 64)
	Run(context.Background(), cfg, log, events)
	close(events)

	evs := collect(t, events)
	if typ := terminalType(t, evs); typ != EventCompleted {
		t.Errorf("terminal: got %d, want Completed", typ)
	}
}

func TestRun_SplitCompletes(t *testing.T) {
	// The fake segmenter drops two part files into the output directory;
	// both fit the budget so no re-encode happens.
	cfg, log := testSetup(t, "")
	body := fmt.Sprintf(`printf a > %q; printf b > %q`,
		filepath.Join(cfg.OutputDir, "movie_part_00.mp4"),
		filepath.Join(cfg.OutputDir, "movie_part_01.mp4"))
	cfg.FFmpegPath = writeScript(t, filepath.Dir(cfg.InputPath), "ffmpeg2", body)

	evs := collect(t, Start(context.Background(), cfg, log))
	if typ := terminalType(t, evs); typ != EventCompleted {
		t.Fatalf("terminal: got %d, want Completed (%v)", typ, evs)
	}

	var completed Event
	var progress []Event
	sawReset := false
	for _, ev := range evs {
		switch ev.Type {
		case EventCompleted:
			completed = ev
		case EventProgress:
			progress = append(progress, ev)
		case EventProgressReset:
			if len(progress) > 0 {
				t.Error("reset should come before progress events")
			}
			sawReset = true
		}
	}
	if !sawReset {
		t.Error("missing progress reset event")
	}
	if len(completed.Parts) != 2 {
		t.Errorf("completed parts: got %v, want 2 paths", completed.Parts)
	}
	if len(progress) != 2 {
		t.Fatalf("progress events: got %d, want 2", len(progress))
	}
	for i, ev := range progress {
		if ev.Current != i+1 || ev.Total != 2 {
			t.Errorf("progress[%d]: got %d/%d, want %d/2", i, ev.Current, ev.Total, i+1)
		}
	}
}

func TestRun_MissingInputFails(t *testing.T) {
	cfg, log := testSetup(t, "exit 0")
	cfg.InputPath = filepath.Join(t.TempDir(), "absent.mp4")

	evs := collect(t, Start(context.Background(), cfg, log))
	if typ := terminalType(t, evs); typ != EventFailed {
		t.Fatalf("terminal: got %d, want Failed", typ)
	}
	for _, ev := range evs {
		if ev.Type == EventFailed && ev.Message == "" {
			t.Error("failed event should carry a message")
		}
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	cfg, log := testSetup(t, "exit 0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evs := collect(t, Start(ctx, cfg, log))
	if typ := terminalType(t, evs); typ != EventCancelled {
		t.Errorf("terminal: got %d, want Cancelled", typ)
	}
}

func TestRun_AudioExtractCompletes(t *testing.T) {
	cfg, log := testSetup(t,
		`for a in "$@"; do last="$a"; done; printf mp3 > "$last"`)
	cfg.Mode = config.ModeAudioExtract

	evs := collect(t, Start(context.Background(), cfg, log))
	if typ := terminalType(t, evs); typ != EventCompleted {
		t.Fatalf("terminal: got %d, want Completed (%v)", typ, evs)
	}
	for _, ev := range evs {
		if ev.Type == EventCompleted {
			if len(ev.Parts) != 1 || filepath.Base(ev.Parts[0]) != "movie.mp3" {
				t.Errorf("completed parts: %v", ev.Parts)
			}
		}
	}
}
