package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner runs an external command and returns its output streams. Engine
// uses it for every tesseract call; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	attrs := []any{
		"cmd", name,
		"input", inputArg(args),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	switch notes := stderrNotes(stderr.Bytes()); {
	case err != nil:
		r.logger.Error("tesseract failed", append(attrs, "error", err, "stderr", notes)...)
	case len(notes) > 0:
		r.logger.Warn("tesseract warnings", append(attrs, "warnings", notes)...)
	default:
		r.logger.Debug("tesseract ok", append(attrs, "stdout_bytes", stdout.Len())...)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// Banner and progress lines tesseract prints on every run.
var stderrChatter = []string{
	"tesseract open source ocr engine",
	"estimating resolution as",
	"warning: invalid resolution 0 dpi",
	"detected ",
}

// maxNotes bounds what is kept from a noisy stderr; the tail carries the
// actual failure.
const maxNotes = 8

// stderrNotes returns the stderr lines worth reporting, without the chatter
// above, keeping at most the last maxNotes.
func stderrNotes(stderr []byte) []string {
	var notes []string
	for _, l := range strings.Split(string(stderr), "\n") {
		l = strings.TrimSpace(l)
		if l == "" || isChatter(l) {
			continue
		}
		notes = append(notes, l)
	}
	if len(notes) > maxNotes {
		notes = notes[len(notes)-maxNotes:]
	}
	return notes
}

func isChatter(l string) bool {
	lower := strings.ToLower(l)
	for _, c := range stderrChatter {
		if strings.HasPrefix(lower, c) {
			return true
		}
	}
	return false
}

// runError describes a failed tesseract call, ending with the last stderr
// note such as a missing traineddata file.
func runError(op string, err error, stderr []byte) error {
	notes := stderrNotes(stderr)
	if len(notes) == 0 {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %s", op, err, notes[len(notes)-1])
}

// inputArg is the image path, tesseract's first argument.
func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
