package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

// App is a running presentation application able to export decks to PDF.
// An App is not safe for concurrent use.
type App interface {
	Convert(inputPath, outputPath string) error
	Quit() error
}

// AppLauncher acquires the presentation application.
type AppLauncher interface {
	Launch(ctx context.Context) (App, error)
}

// AutomationBackend drives a desktop presentation application. The
// application is launched once per batch and quit when the batch ends.
type AutomationBackend struct {
	launcher AppLauncher
	logger   *slog.Logger
}

// NewAutomationBackend creates the automation DeckToRaster backend. A nil
// launcher uses the platform default, which is only functional on Windows.
func NewAutomationBackend(launcher AppLauncher, loggerHandler slog.Handler) *AutomationBackend {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	if launcher == nil {
		launcher = DefaultLauncher()
	}
	return &AutomationBackend{
		launcher: launcher,
		logger:   slog.New(loggerHandler).With(slog.String("component", "automationBackend")),
	}
}

// Name implements Backend.
func (b *AutomationBackend) Name() string { return string(EngineAutomation) }

// Concurrent implements Backend. The application handle is shared by every
// file in the batch, so conversions are strictly sequential.
func (b *AutomationBackend) Concurrent() bool { return false }

// Open implements Backend by launching the application.
func (b *AutomationBackend) Open(ctx context.Context) (Session, error) {
	app, err := b.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot launch presentation application: %w", ErrEngineUnavailable, err)
	}
	b.logger.Debug("Presentation application launched")
	return &automationSession{app: app, logger: b.logger}, nil
}

type automationSession struct {
	app    App
	logger *slog.Logger
}

func (s *automationSession) Convert(ctx context.Context, inputPath, outputDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	absIn, err := filepath.Abs(inputPath)
	if err != nil {
		return "", WrapConversionError(err, "cannot resolve %s", inputPath)
	}
	outPath := OutputPath(absIn, outputDir, ".pdf")
	if absOut, err := filepath.Abs(outPath); err == nil {
		outPath = absOut
	}
	if err := s.app.Convert(absIn, outPath); err != nil {
		return "", WrapConversionError(err, "export failed for %s", filepath.Base(inputPath))
	}
	return outPath, nil
}

func (s *automationSession) Close() error {
	if err := s.app.Quit(); err != nil {
		return fmt.Errorf("failed to quit presentation application: %w", err)
	}
	s.logger.Debug("Presentation application released")
	return nil
}
