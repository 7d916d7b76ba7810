// Package converter converts batches of PDF files into slide decks and decks
// into PDF files, reporting progress while it runs and recording every batch
// in a history ledger.
package converter

import (
	"context"
	"log/slog"
)

// Run is the main entry point for the library. It builds an Orchestrator from
// opts and runs a single batch. Callers running several batches should keep
// one Orchestrator instead.
func Run(ctx context.Context, opts Options, req Request, onProgress ProgressFunc) (Result, error) {
	orch, err := NewOrchestrator(opts)
	if err != nil {
		return Result{}, err
	}
	slog.New(opts.Logger).Debug("Starting converty library execution", slog.String("version", opts.AppVersion))
	return orch.Run(ctx, req, onProgress)
}
