// Package cli runs one conversion batch for the converty command: it resolves
// the selection, picks a presentation (TUI, progress bar or plain output),
// drives the converter and prints a localized summary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/stackvity/converty/internal/cli/hooks"
	"github.com/stackvity/converty/internal/cli/i18n"
	"github.com/stackvity/converty/internal/cli/metrics"
	"github.com/stackvity/converty/internal/cli/picker"
	"github.com/stackvity/converty/internal/cli/prefs"
	"github.com/stackvity/converty/internal/cli/runner"
	"github.com/stackvity/converty/internal/cli/ui"
	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/engine"
)

// Deps are the process-level collaborators of a run.
type Deps struct {
	// Out receives the summary.
	Out io.Writer
	// Err receives the TUI and the progress bar.
	Err io.Writer
	// Interactive reports whether Err is a terminal.
	Interactive bool
	Runner      engine.ProcessRunner
	Prefs       prefs.Store
}

// DefaultDeps wires the real terminal, process runner and preference file.
func DefaultDeps(opts converter.Options) Deps {
	return Deps{
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: term.IsTerminal(int(os.Stderr.Fd())),
		Runner:      runner.NewExecRunner(opts.Logger),
		Prefs:       prefs.NewJSONStore(opts.PrefsFile, opts.Logger),
	}
}

// Run orchestrates the main application logic after configuration loading.
func Run(ctx context.Context, opts converter.Options, logger *slog.Logger) error {
	return RunWith(ctx, opts, logger, DefaultDeps(opts))
}

// RunWith is Run with explicit dependencies.
//
// An empty selection or a missing output folder prints a cancellation notice
// and returns nil without touching the converter. A batch stopped by the user
// also returns nil. Any other batch error is returned after the summary.
func RunWith(ctx context.Context, opts converter.Options, logger *slog.Logger, deps Deps) error {
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Err == nil {
		deps.Err = io.Discard
	}
	loc := i18n.New(opts.Language)

	picked, err := picker.New(opts.Logger).Pick(ctx, picker.Selection{
		Inputs:    opts.InputPaths,
		InputDir:  opts.InputDir,
		Direction: opts.Direction,
	})
	if err != nil {
		return err
	}
	if len(picked.Paths) == 0 {
		notice(deps.Out, loc.T(i18n.KeyNoFileSelected))
		return nil
	}
	if opts.OutputPath == "" {
		notice(deps.Out, loc.T(i18n.KeyNoOutputFolder))
		return nil
	}
	opts.Mode = picked.Mode

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// --- Presentation ---
	hookCfg := hooks.Config{
		VerboseEnabled: opts.Verbose,
		Localizer:      loc,
		Out:            deps.Err,
	}
	var program *tea.Program
	var model ui.Model
	switch {
	case opts.TuiEnabled && deps.Interactive:
		model = ui.NewModel(ui.Options{
			Theme:     opts.Theme,
			Localizer: loc,
			Version:   opts.AppVersion,
			OnQuit:    cancel,
		})
		program = tea.NewProgram(&model, tea.WithOutput(deps.Err), tea.WithContext(ctx))
		hookCfg.TUIEnabled = true
		hookCfg.TUIProgram = program
	case deps.Interactive && !opts.Verbose:
		hookCfg.ProgressBar = hooks.NewProgressBar(len(picked.Paths), deps.Err, "")
	}
	cliHooks := hooks.NewCLIHooks(logger, hookCfg)
	recorder := metrics.NewRecorder(cliHooks)

	opts.EventHooks = recorder
	if opts.ProcessRunner == nil {
		opts.ProcessRunner = deps.Runner
	}

	req := converter.Request{
		Inputs:     picked.Paths,
		OutputDir:  opts.OutputPath,
		Direction:  opts.Direction,
		Compressed: opts.Zip,
		Engine:     opts.Engine,
		Mode:       picked.Mode,
	}

	var programDone chan error
	if program != nil {
		programDone = make(chan error, 1)
		go func() {
			_, err := program.Run()
			programDone <- err
		}()
	}

	res, runErr := converter.Run(runCtx, opts, req, cliHooks.Progress)

	if program != nil {
		// A rejected batch never sends BatchCompleteMsg.
		program.Quit()
		if err := <-programDone; err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			logger.Warn("Terminal UI exited with error", slog.Any("error", err))
		}
	}

	if opts.MetricsFile != "" {
		if err := recorder.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file", slog.String("path", opts.MetricsFile), slog.Any("error", err))
		}
	}
	if opts.SavePrefs && deps.Prefs != nil {
		if err := deps.Prefs.Save(prefs.FromOptions(opts)); err != nil {
			logger.Warn("Failed to save preferences", slog.Any("error", err))
		} else {
			notice(deps.Out, loc.T(i18n.KeyPrefsSaved, deps.Prefs.Path()))
		}
	}

	return report(deps.Out, loc, res, runErr, logger)
}

// report prints the outcome of a batch and decides the command's error.
func report(out io.Writer, loc *i18n.Localizer, res converter.Result, runErr error, logger *slog.Logger) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	switch {
	case errors.Is(runErr, converter.ErrNoInputs):
		notice(out, loc.T(i18n.KeyNoFileSelected))
		return nil
	case errors.Is(runErr, converter.ErrOutputDir):
		logger.Warn("Output folder unusable", slog.Any("error", runErr))
		notice(out, loc.T(i18n.KeyNoOutputFolder))
		return nil
	case errors.Is(runErr, converter.ErrPrecondition):
		logger.Warn("Batch rejected", slog.Any("error", runErr))
		notice(out, loc.T(i18n.KeyCancelled))
		return nil
	case errors.Is(runErr, context.Canceled):
		notice(out, loc.T(i18n.KeyCancelled))
		return nil
	}

	failed := len(res.Failures)
	switch {
	case runErr == nil && failed == 0:
		if res.Archive != "" {
			_, _ = green.Fprintf(out, "%s %s\n", loc.T(i18n.KeyZipCompleted), res.Archive)
			return nil
		}
		_, _ = green.Fprintln(out, loc.T(i18n.KeyCompleted))
		for _, p := range res.Outputs {
			fmt.Fprintf(out, "  %s\n", p)
		}
		return nil

	case len(res.Outputs) > 0:
		if failed > 0 {
			_, _ = yellow.Fprintln(out, loc.T(i18n.KeyPartial, failed, res.Total))
			printFailures(out, res.Failures)
		} else {
			// Every unit converted but packaging did not.
			_, _ = yellow.Fprintln(out, loc.T(i18n.KeyCompleted))
		}
		if res.Archive != "" {
			fmt.Fprintf(out, "%s %s\n", loc.T(i18n.KeyZipCompleted), res.Archive)
		} else {
			for _, p := range res.Outputs {
				fmt.Fprintf(out, "  %s\n", p)
			}
		}
		if runErr != nil {
			_, _ = red.Fprintf(out, "%s %v\n", loc.T(i18n.KeyFailed), runErr)
		}
		return runErr

	default:
		_, _ = red.Fprintln(out, loc.T(i18n.KeyFailed))
		printFailures(out, res.Failures)
		if failed == 0 && runErr != nil {
			fmt.Fprintf(out, "  %v\n", runErr)
		}
		if runErr == nil {
			runErr = fmt.Errorf("%w: no file was converted", converter.ErrConversion)
		}
		return runErr
	}
}

func printFailures(out io.Writer, failures []converter.UnitFailure) {
	for _, f := range failures {
		fmt.Fprintf(out, "  %s: %s\n", filepath.Base(f.Path), f.Error)
	}
}

func notice(out io.Writer, msg string) {
	_, _ = color.New(color.FgYellow).Fprintln(out, msg)
}
