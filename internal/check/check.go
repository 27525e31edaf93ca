// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation for ffmpeg, ffprobe, and the encoders the repair
// path needs (libx264, aac, libmp3lame).
package check

import (
	"errors"
	"os/exec"
	"strings"

	"videosplit/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
)

// Logger is the minimal logging interface needed by RunCheck. Defined here
// (rather than importing the logging package) so that check remains
// dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// CheckDeps verifies both external binaries resolve. Called before the
// pipeline starts so a missing tool fails fast, not mid-split.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return ErrFfprobeNotFound
	}
	return nil
}

// RunCheck runs the --check flow: prints availability of ffmpeg, ffprobe,
// and the encoders used by the re-encode and audio paths. Returns false
// when either binary is missing; missing encoders only warn.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkBinary(log, "ffmpeg", cfg.FFmpegPath)
	ok = checkBinary(log, "ffprobe", cfg.FFprobePath) && ok
	if ok {
		checkEncoders(log, cfg.FFmpegPath)
	}
	return ok
}

// checkBinary verifies bin resolves and logs its version string.
func checkBinary(log Logger, name, bin string) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("%s not found (%s)", name, bin)
		return false
	}
	out, err := exec.Command(bin, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return true
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", name, firstLine)
	return true
}

// checkEncoders reports whether the encoders the tool invokes are built in.
func checkEncoders(log Logger, ffmpeg string) {
	out, err := exec.Command(ffmpeg, "-hide_banner", "-encoders").Output()
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	listing := string(out)
	for _, enc := range []string{"libx264", "aac", "libmp3lame"} {
		if containsEncoder(listing, enc) {
			log.Success("encoder %s available", enc)
		} else {
			log.Warn("encoder %s not available", enc)
		}
	}
}

// containsEncoder scans the `ffmpeg -encoders` listing for an exact
// encoder name token (substring match would confuse aac with libfdk_aac).
func containsEncoder(listing, name string) bool {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}
