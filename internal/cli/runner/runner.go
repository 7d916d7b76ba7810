// Package runner runs external converter processes for the headless backend.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/stackvity/converty/pkg/converter/engine"
)

const (
	// maxLogOutputBytes limits the size of stdout/stderr echoed into logs.
	maxLogOutputBytes = 1024
	// maxReadBytes caps how much stdout/stderr is captured per process.
	maxReadBytes = 10 * 1024 * 1024
)

// ErrStart indicates the process could not be started at all, typically
// because the binary is not installed.
var ErrStart = errors.New("failed to start converter process")

// execRunner implements engine.ProcessRunner using os/exec.
type execRunner struct {
	logger *slog.Logger
}

// NewExecRunner creates a runner that executes programs as child processes.
func NewExecRunner(loggerHandler slog.Handler) engine.ProcessRunner { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "processRunner"))
	return &execRunner{logger: logger}
}

// Run executes name with args and waits for it. The process is killed when ctx
// is cancelled.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (engine.ProcessResult, error) {
	logArgs := []any{slog.String("command", name), slog.String("args", strings.Join(args, " "))}

	if name == "" {
		return engine.ProcessResult{ExitCode: -1}, fmt.Errorf("%w: command cannot be empty", ErrStart)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return engine.ProcessResult{ExitCode: -1}, fmt.Errorf("%w: stdout pipe for '%s': %w", ErrStart, name, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return engine.ProcessResult{ExitCode: -1}, fmt.Errorf("%w: stderr pipe for '%s': %w", ErrStart, name, err)
	}

	if startErr := cmd.Start(); startErr != nil {
		r.logger.Error("Failed to start process", append(logArgs, slog.Any("error", startErr))...)
		return engine.ProcessResult{ExitCode: -1}, fmt.Errorf("%w: '%s': %w", ErrStart, name, startErr)
	}
	r.logger.Debug("Process started", logArgs...)

	var wg sync.WaitGroup
	var stdoutData, stderrData []byte
	wg.Add(2)
	go func() {
		defer wg.Done()
		stdoutData = r.capture(stdoutPipe, "stdout", logArgs)
	}()
	go func() {
		defer wg.Done()
		stderrData = r.capture(stderrPipe, "stderr", logArgs)
	}()

	// Pipes must be drained before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()

	res := engine.ProcessResult{
		Stdout: string(stdoutData),
		Stderr: strings.TrimSpace(string(stderrData)),
	}
	if res.Stderr != "" {
		logArgs = append(logArgs, slog.String("stderr", truncate(res.Stderr)))
	}

	if ctx.Err() != nil {
		res.ExitCode = -1
		r.logger.Warn("Process cancelled or timed out", append(logArgs, slog.Any("error", ctx.Err()))...)
		return res, fmt.Errorf("'%s' cancelled: %w", name, ctx.Err())
	}

	if waitErr != nil {
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
		r.logger.Error("Process failed", append(logArgs, slog.Int("exitCode", res.ExitCode), slog.Any("error", waitErr))...)
		return res, fmt.Errorf("%w: '%s' exited with code %d: %s", engine.ErrProcessNonZeroExit, name, res.ExitCode, truncate(res.Stderr))
	}

	r.logger.Debug("Process finished successfully", logArgs...)
	return res, nil
}

// capture reads at most maxReadBytes from a pipe and discards the rest so the
// child never blocks on a full pipe.
func (r *execRunner) capture(pipe io.Reader, stream string, logArgs []any) []byte {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(pipe, maxReadBytes))
	if err == nil && n >= maxReadBytes {
		r.logger.Warn("Process output truncated", append(logArgs, slog.String("stream", stream), slog.Int64("limit_bytes", maxReadBytes))...)
		_, _ = io.Copy(io.Discard, pipe)
	} else if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		r.logger.Warn("Error reading process output", append(logArgs, slog.String("stream", stream), slog.Any("error", err))...)
	}
	return buf.Bytes()
}

func truncate(s string) string {
	if len(s) > maxLogOutputBytes {
		return s[:maxLogOutputBytes] + "... (truncated)"
	}
	return s
}
