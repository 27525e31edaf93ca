// Package execx runs the external media binaries. It provides the two
// execution modes the pipeline needs: streaming (combined output forwarded
// line-by-line, cancellation polled at every line) and captured (stdout
// buffered and returned, used for short-lived probe calls).
//
// Cancellation of a streaming process is an escalation: SIGTERM, then a
// bounded grace period, then SIGKILL. The process is always reaped before
// Stream returns.
package execx

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"
)

// GracePeriod is how long a terminated process may take to exit before it
// is killed.
const GracePeriod = 5 * time.Second

// maxLineSize bounds a single output line; ffmpeg progress lines stay far
// below this.
const maxLineSize = 1 << 20

// Logger is the minimal logging interface the runner needs. Defined here
// (rather than importing the logging package) so execx stays testable with
// a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Runner executes external commands against a shared logger.
type Runner struct {
	log Logger
}

// NewRunner returns a Runner that reports through log.
func NewRunner(log Logger) *Runner {
	return &Runner{log: log}
}

// Stream runs name with args, forwarding combined stdout+stderr to the log
// sink line by line. After every line the context is polled; once cancelled,
// the process is terminated (grace period, then kill) and ErrCancelled is
// returned regardless of the process's own exit status. A non-zero exit
// without cancellation returns *ExitError.
//
// Lines with invalid UTF-8 are repaired with replacement characters: this
// is log output, not authoritative data.
func (r *Runner) Stream(ctx context.Context, name string, args ...string) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}

	r.log.Debug("Running command: %s", QuoteCommand(append([]string{name}, args...)))

	cmd := exec.Command(name, args...)

	pr, pw, err := os.Pipe()
	if err != nil {
		return err
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return err
	}
	// The child holds its own copy of the write end; close ours so the read
	// side sees EOF when the process exits.
	pw.Close()
	defer pr.Close()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	scanner.Split(scanOutputLines)

	for scanner.Scan() {
		r.log.Info("%s", strings.ToValidUTF8(scanner.Text(), "�"))

		if ctx.Err() != nil {
			r.log.Warn("Cancellation requested; terminating process.")
			r.shutdown(cmd)
			return ErrCancelled
		}
	}

	if scanErr := scanner.Err(); scanErr != nil {
		// The pipe is no longer drained; tear the process down instead of
		// waiting on a child stalled writing to it.
		r.log.Error("Reading process output: %v", scanErr)
		r.shutdown(cmd)
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return scanErr
	}

	if err := cmd.Wait(); err != nil {
		// A cancellation racing the final lines still wins over the exit status.
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return exitError(err)
	}
	if ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

// Capture runs name with args, buffering stdout and returning it as a
// string. Stderr lines are forwarded to the log sink as errors. A non-zero
// exit returns *ExitError; stdout that is not valid UTF-8 returns ErrDecode.
// Capture does not poll cancellation mid-read: captured calls are expected
// to be short-lived.
func (r *Runner) Capture(ctx context.Context, name string, args ...string) (string, error) {
	if ctx.Err() != nil {
		return "", ErrCancelled
	}

	r.log.Debug("Running command: %s", QuoteCommand(append([]string{name}, args...)))

	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	for _, line := range splitLines(stderr.String()) {
		r.log.Error("%s", strings.ToValidUTF8(line, "�"))
	}

	if runErr != nil {
		return "", exitError(runErr)
	}
	if !utf8.Valid(stdout.Bytes()) {
		return "", ErrDecode
	}

	out := stdout.String()
	for _, line := range splitLines(out) {
		r.log.Debug("%s", line)
	}
	return out, nil
}

// shutdown escalates: SIGTERM, wait up to GracePeriod, then SIGKILL. It
// always reaps the process before returning.
func (r *Runner) shutdown(cmd *exec.Cmd) {
	_ = cmd.Process.Signal(syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-done:
	case <-time.After(GracePeriod):
		r.log.Warn("Process did not exit within %s; killing.", GracePeriod)
		_ = cmd.Process.Kill()
		<-done
	}
}

// exitError converts an exec error into *ExitError when an exit status is
// available, passing other errors (e.g. ErrNotFound) through unchanged.
func exitError(err error) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Code: ee.ExitCode()}
	}
	return err
}

// scanOutputLines is a bufio.SplitFunc treating \n, \r and \r\n as line
// boundaries. ffmpeg rewrites its stats line in place with bare carriage
// returns during an encode; splitting on \r makes every update a line, so
// the cancellation poll fires throughout.
func scanOutputLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 == len(data) && !atEOF {
				// A \n may follow in the next read; wait for it.
				return 0, nil, nil
			}
			if i+1 < len(data) && data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
