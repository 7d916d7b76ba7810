package hooks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"

	"github.com/stackvity/converty/internal/cli/i18n"
	"github.com/stackvity/converty/pkg/converter"
)

// --- TUI Message Structs ---

// BatchStartMsg signals that a batch began with Total units.
type BatchStartMsg struct {
	BatchID string
	Total   int
}

// UnitStatusMsg signals a change in a unit's processing status.
type UnitStatusMsg struct {
	Path     string
	Status   converter.Status
	Message  string
	Duration time.Duration
}

// ProgressMsg carries one event of the batch's progress channel.
type ProgressMsg struct{ Event converter.ProgressEvent }

// BatchCompleteMsg signals the completion of the entire batch.
type BatchCompleteMsg struct{ Result converter.Result }

// --- Hook Implementation ---

// CLIHooks implements converter.Hooks and supplies the batch's progress
// callback, bridging library events to the TUI, the progress bar or the log.
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram
	progressBar    ProgressBar
	hasBar         bool
	loc            *i18n.Localizer
	out            io.Writer
	mu             sync.Mutex // Protects progressBar
}

// TUIProgram defines the interface needed to interact with the Bubble Tea program.
// *tea.Program satisfies it.
type TUIProgram interface {
	Send(msg tea.Msg)
}

var _ TUIProgram = (*tea.Program)(nil)

// ProgressBar is the subset of *progressbar.ProgressBar the hooks drive.
type ProgressBar interface {
	Add(num int) error
	Describe(description string)
	Finish() error
}

// --- No-Op Implementations for Decoupling ---

// NoOpTUIProgram provides a default null implementation.
type NoOpTUIProgram struct{}

// Send implements TUIProgram.
func (n *NoOpTUIProgram) Send(msg tea.Msg) {}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// Add implements ProgressBar.
func (n *NoOpProgressBar) Add(num int) error { return nil }

// Describe implements ProgressBar.
func (n *NoOpProgressBar) Describe(description string) {}

// Finish implements ProgressBar.
func (n *NoOpProgressBar) Finish() error { return nil }

// --- Constructors ---

// Config selects how CLIHooks reports.
type Config struct {
	TUIEnabled     bool
	VerboseEnabled bool
	TUIProgram     TUIProgram  // nil when the TUI is not running
	ProgressBar    ProgressBar // nil when no bar is shown
	Localizer      *i18n.Localizer
	Out            io.Writer // where the bar's trailing newline goes; defaults to io.Discard
}

// NewCLIHooks creates a new CLIHooks instance.
func NewCLIHooks(logger *slog.Logger, cfg Config) *CLIHooks {
	h := &CLIHooks{
		logger:         logger,
		tuiEnabled:     cfg.TUIEnabled,
		verboseEnabled: cfg.VerboseEnabled,
		tuiProgram:     cfg.TUIProgram,
		progressBar:    cfg.ProgressBar,
		hasBar:         cfg.ProgressBar != nil,
		loc:            cfg.Localizer,
		out:            cfg.Out,
	}
	if h.tuiProgram == nil {
		h.tuiProgram = &NoOpTUIProgram{}
	}
	if h.progressBar == nil {
		h.progressBar = &NoOpProgressBar{}
	}
	if h.loc == nil {
		h.loc = i18n.New(converter.DefaultLanguage)
	}
	if h.out == nil {
		h.out = io.Discard
	}
	return h
}

// NewProgressBar builds the terminal bar used when the TUI is off.
func NewProgressBar(total int, w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
}

// --- Interface Method Implementations ---

// OnBatchStart implements converter.Hooks.
func (h *CLIHooks) OnBatchStart(batchID string, total int) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(BatchStartMsg{BatchID: batchID, Total: total})
	} else if h.verboseEnabled {
		h.logger.Debug("Batch started", slog.String("batchID", batchID), slog.Int("total", total))
	}
	return nil
}

// OnUnitStatus handles events when a unit's processing status changes.
// This method MUST be thread-safe.
func (h *CLIHooks) OnUnitStatus(path string, status converter.Status, message string, duration time.Duration) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(UnitStatusMsg{
			Path:     path,
			Status:   status,
			Message:  message,
			Duration: duration,
		})
		return nil
	}

	if h.verboseEnabled {
		logLevel := slog.LevelDebug
		logMsg := "File status updated"
		attrs := []any{
			slog.String("path", path),
			slog.String("status", string(status)),
		}
		if duration > 0 {
			attrs = append(attrs, slog.Duration("duration", duration))
		}
		if message != "" {
			attrs = append(attrs, slog.String("error", message))
		}
		switch status {
		case converter.StatusSuccess:
			logLevel = slog.LevelInfo
		case converter.StatusFailed:
			logLevel = slog.LevelError
			logMsg = "File conversion failed"
		}
		h.logger.Log(context.Background(), logLevel, logMsg, attrs...)
		return nil
	}

	if h.hasBar {
		h.mu.Lock()
		if isFinalStatus(status) {
			_ = h.progressBar.Add(1)
		}
		h.mu.Unlock()
	}

	// Failures are always reported outside the TUI.
	if status == converter.StatusFailed {
		h.logger.Error("File conversion failed", slog.String("path", path), slog.String("error", message))
	}
	return nil
}

// Progress is the converter.ProgressFunc for the batch. It runs on the
// progress consumer goroutine.
func (h *CLIHooks) Progress(ev converter.ProgressEvent) {
	if h.tuiEnabled {
		h.tuiProgram.Send(ProgressMsg{Event: ev})
		return
	}
	label := h.describe(ev)
	if h.hasBar {
		h.mu.Lock()
		h.progressBar.Describe(label)
		h.mu.Unlock()
		return
	}
	if h.verboseEnabled {
		h.logger.Debug(label, slog.Int("current", ev.Current), slog.Int("total", ev.Total))
	}
}

func (h *CLIHooks) describe(ev converter.ProgressEvent) string {
	if ev.Done {
		return h.loc.T(i18n.KeyFinished)
	}
	return fmt.Sprintf("[%d/%d] %s", ev.Current, ev.Total, h.loc.T(i18n.KeyProcessing, filepath.Base(ev.Label)))
}

// OnBatchComplete sends the result to the TUI or finalizes the progress bar.
// The text summary is printed by the caller.
func (h *CLIHooks) OnBatchComplete(res converter.Result) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(BatchCompleteMsg{Result: res})
		return nil
	}
	if h.hasBar {
		h.mu.Lock()
		_ = h.progressBar.Finish()
		h.mu.Unlock()
		_, _ = fmt.Fprintln(h.out)
	}
	return nil
}

func isFinalStatus(status converter.Status) bool {
	return status == converter.StatusSuccess || status == converter.StatusFailed
}

var (
	_ converter.Hooks = (*CLIHooks)(nil)
	_ ProgressBar     = (*progressbar.ProgressBar)(nil)
)
