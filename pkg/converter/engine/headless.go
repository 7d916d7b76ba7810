package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSofficeBinary is the LibreOffice executable looked up on PATH.
const DefaultSofficeBinary = "soffice"

// ProcessResult is the captured outcome of an external process.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ProcessRunner runs an external program to completion. Implementations
// return an error wrapping ErrProcessNonZeroExit when the program exits
// non-zero.
type ProcessRunner interface {
	Run(ctx context.Context, name string, args ...string) (ProcessResult, error)
}

// HeadlessOptions configures the headless office backend.
type HeadlessOptions struct {
	// Binary is the office executable. Empty means DefaultSofficeBinary.
	Binary string
	// Slots is how many conversions may run at once. Each slot above one gets
	// its own user profile directory, because office suites lock their profile.
	Slots int
}

// HeadlessBackend converts decks to PDF by invoking an office suite in
// headless mode, one process per file.
type HeadlessBackend struct {
	runner ProcessRunner
	opts   HeadlessOptions
	logger *slog.Logger
}

// NewHeadlessBackend creates the headless DeckToRaster backend.
func NewHeadlessBackend(runner ProcessRunner, opts HeadlessOptions, loggerHandler slog.Handler) *HeadlessBackend {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	if opts.Binary == "" {
		opts.Binary = DefaultSofficeBinary
	}
	if opts.Slots < 1 {
		opts.Slots = 1
	}
	return &HeadlessBackend{
		runner: runner,
		opts:   opts,
		logger: slog.New(loggerHandler).With(slog.String("component", "headlessBackend")),
	}
}

// Name implements Backend.
func (b *HeadlessBackend) Name() string { return string(EngineHeadless) }

// Concurrent implements Backend.
func (b *HeadlessBackend) Concurrent() bool { return b.opts.Slots > 1 }

// Open implements Backend. With more than one slot it prepares an isolated
// profile directory per slot.
func (b *HeadlessBackend) Open(ctx context.Context) (Session, error) {
	if b.runner == nil {
		return nil, fmt.Errorf("%w: no process runner configured for %s", ErrEngineUnavailable, b.opts.Binary)
	}
	s := &headlessSession{b: b}
	if b.opts.Slots == 1 {
		return s, nil
	}

	root, err := os.MkdirTemp("", "converty-profiles-")
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create profile root: %w", ErrEngineUnavailable, err)
	}
	s.profileRoot = root
	s.profiles = make(chan string, b.opts.Slots)
	for i := 0; i < b.opts.Slots; i++ {
		s.profiles <- filepath.Join(root, fmt.Sprintf("slot%d", i))
	}
	b.logger.Debug("Prepared isolated office profiles", slog.String("root", root), slog.Int("slots", b.opts.Slots))
	return s, nil
}

type headlessSession struct {
	b           *HeadlessBackend
	profileRoot string
	profiles    chan string
}

// Convert runs `soffice --headless --convert-to pdf <input> --outdir <dir>`.
func (s *headlessSession) Convert(ctx context.Context, inputPath, outputDir string) (string, error) {
	args := []string{"--headless"}
	if s.profiles != nil {
		var profile string
		select {
		case profile = <-s.profiles:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		defer func() { s.profiles <- profile }()
		args = append(args, "-env:UserInstallation="+profileURL(profile))
	}
	args = append(args, "--convert-to", "pdf", inputPath, "--outdir", outputDir)

	res, err := s.b.runner.Run(ctx, s.b.opts.Binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", WrapConversionError(err, "%s failed for %s", s.b.opts.Binary, filepath.Base(inputPath))
	}
	if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
		s.b.logger.Debug("Office process stderr", slog.String("path", inputPath), slog.String("stderr", stderr))
	}

	outPath := OutputPath(inputPath, outputDir, ".pdf")
	if _, statErr := os.Stat(outPath); statErr != nil {
		return "", WrapConversionError(ErrMissingOutput, "expected %s", outPath)
	}
	return outPath, nil
}

// Close removes any profile directories created by Open.
func (s *headlessSession) Close() error {
	if s.profileRoot == "" {
		return nil
	}
	return os.RemoveAll(s.profileRoot)
}

func profileURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
