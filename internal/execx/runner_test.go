package execx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// --- Mock logger capturing lines per level ---

type mockLogger struct {
	mu    sync.Mutex
	info  []string
	warns []string
	errs  []string
	debug []string
}

func (m *mockLogger) record(dst *[]string, format string, args ...interface{}) {
	m.mu.Lock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
	m.mu.Unlock()
}

func (m *mockLogger) Info(f string, a ...interface{})  { m.record(&m.info, f, a...) }
func (m *mockLogger) Warn(f string, a ...interface{})  { m.record(&m.warns, f, a...) }
func (m *mockLogger) Error(f string, a ...interface{}) { m.record(&m.errs, f, a...) }
func (m *mockLogger) Debug(f string, a ...interface{}) { m.record(&m.debug, f, a...) }

func (m *mockLogger) infoLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.info...)
}

func (m *mockLogger) errLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errs...)
}

// --- Stream ---

func TestStream_ForwardsCombinedOutput(t *testing.T) {
	log := &mockLogger{}
	r := NewRunner(log)

	err := r.Stream(context.Background(), "/bin/sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	lines := log.infoLines()
	if len(lines) != 2 {
		t.Fatalf("lines: got %d (%v), want 2", len(lines), lines)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "out") || !strings.Contains(joined, "err") {
		t.Errorf("combined output missing a stream: %v", lines)
	}
}

func TestStream_NonZeroExit(t *testing.T) {
	r := NewRunner(&mockLogger{})

	err := r.Stream(context.Background(), "/bin/sh", "-c", "exit 3")
	var ee *ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("error: got %v, want *ExitError", err)
	}
	if ee.Code != 3 {
		t.Errorf("exit code: got %d, want 3", ee.Code)
	}
}

func TestStream_PreCancelled(t *testing.T) {
	r := NewRunner(&mockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Stream(ctx, "/bin/sh", "-c", "echo should-not-run")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error: got %v, want ErrCancelled", err)
	}
}

func TestStream_CancelMidRun(t *testing.T) {
	log := &mockLogger{}
	r := NewRunner(log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	// Emits a line every 100ms; cancellation is noticed at a line boundary
	// and the process torn down well before its 30s sleep finishes.
	start := time.Now()
	err := r.Stream(ctx, "/bin/sh", "-c",
		"for i in 1 2 3 4 5; do echo tick $i; sleep 0.1; done; sleep 30")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error: got %v, want ErrCancelled", err)
	}
	if elapsed > GracePeriod+5*time.Second {
		t.Errorf("cancellation took %s, want well under grace+margin", elapsed)
	}
}

func TestStream_SplitsCarriageReturnUpdates(t *testing.T) {
	log := &mockLogger{}
	r := NewRunner(log)

	// Stats-style output: in-place updates separated by bare \r, then a
	// final newline-terminated line.
	err := r.Stream(context.Background(), "/bin/sh", "-c",
		`printf 'frame=1\rframe=2\rdone\n'`)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	lines := log.infoLines()
	want := []string{"frame=1", "frame=2", "done"}
	if len(lines) != len(want) {
		t.Fatalf("lines: got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line[%d]: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestStream_CancelDuringStatsUpdates(t *testing.T) {
	r := NewRunner(&mockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	// \r-only output, no newline ever: cancellation must still be noticed
	// at each update, not after the process finishes.
	start := time.Now()
	err := r.Stream(ctx, "/bin/sh", "-c",
		`i=0; while [ $i -lt 40 ]; do printf 'frame=%d\r' $i; sleep 0.1; i=$((i+1)); done`)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error: got %v, want ErrCancelled", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("cancellation took %s, want well under the 4s run time", elapsed)
	}
}

func TestStream_OverlongLineDoesNotHang(t *testing.T) {
	r := NewRunner(&mockLogger{})

	// A 2 MiB unbroken token overflows the scanner buffer; Stream must
	// surface the read error and reap the process rather than block in Wait.
	err := r.Stream(context.Background(), "/bin/sh", "-c",
		`head -c 2097152 /dev/zero | tr '\0' a`)
	if err == nil {
		t.Fatal("want error for overlong output line")
	}
	if errors.Is(err, ErrCancelled) {
		t.Fatalf("overlong line must not report cancellation: %v", err)
	}
}

func TestStream_MissingBinary(t *testing.T) {
	r := NewRunner(&mockLogger{})

	err := r.Stream(context.Background(), "/nonexistent/binary-xyz")
	if err == nil {
		t.Fatal("want error for missing binary")
	}
	if errors.Is(err, ErrCancelled) {
		t.Fatalf("missing binary must not report cancellation: %v", err)
	}
}

// --- Capture ---

func TestCapture_ReturnsStdout(t *testing.T) {
	r := NewRunner(&mockLogger{})

	out, err := r.Capture(context.Background(), "/bin/sh", "-c", "printf 'hello\\nworld\\n'")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if out != "hello\nworld\n" {
		t.Errorf("stdout: got %q", out)
	}
}

func TestCapture_ForwardsStderrAsErrors(t *testing.T) {
	log := &mockLogger{}
	r := NewRunner(log)

	out, err := r.Capture(context.Background(), "/bin/sh", "-c", "echo data; echo oops >&2")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if out != "data\n" {
		t.Errorf("stdout: got %q, want data only", out)
	}
	errs := log.errLines()
	if len(errs) != 1 || errs[0] != "oops" {
		t.Errorf("stderr lines: got %v, want [oops]", errs)
	}
}

func TestCapture_NonZeroExit(t *testing.T) {
	r := NewRunner(&mockLogger{})

	_, err := r.Capture(context.Background(), "/bin/sh", "-c", "exit 1")
	var ee *ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("error: got %v, want *ExitError", err)
	}
	if ee.Code != 1 {
		t.Errorf("exit code: got %d, want 1", ee.Code)
	}
}

func TestCapture_InvalidUTF8(t *testing.T) {
	r := NewRunner(&mockLogger{})

	_, err := r.Capture(context.Background(), "/bin/sh", "-c", `printf '\377\376'`)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error: got %v, want ErrDecode", err)
	}
}

func TestCapture_PreCancelled(t *testing.T) {
	r := NewRunner(&mockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Capture(ctx, "/bin/sh", "-c", "echo hi")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error: got %v, want ErrCancelled", err)
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(ErrCancelled) {
		t.Error("ErrCancelled should report cancelled")
	}
	if !IsCancelled(fmt.Errorf("wrapped: %w", ErrCancelled)) {
		t.Error("wrapped ErrCancelled should report cancelled")
	}
	if IsCancelled(errors.New("other")) {
		t.Error("unrelated error must not report cancelled")
	}
}
