package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/stackvity/converty/pkg/converter/archive"
	"github.com/stackvity/converty/pkg/converter/engine"
	"github.com/stackvity/converty/pkg/converter/history"
)

// Orchestrator drives conversion batches. It is safe for concurrent use;
// batches run one at a time.
type Orchestrator struct {
	mu             sync.Mutex
	logger         *slog.Logger
	hooks          Hooks
	resolver       BackendResolver
	packer         Packager
	ledger         history.Ledger
	concurrency    int
	progressBuffer int
}

// unitResult is owned by the slot of its unit; workers never share one.
type unitResult struct {
	attempted bool
	output    string
	err       error
}

// NewOrchestrator validates opts and fills in default collaborators.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency cannot be negative", ErrConfigValidation)
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "orchestrator"))

	hooks := opts.EventHooks
	if hooks == nil {
		hooks = &NoOpHooks{}
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewResolver(opts, opts.Logger)
		logger.Debug("Resolver not provided, using default backends.")
	}
	packer := opts.Packer
	if packer == nil {
		packer = archive.NewPacker(opts.Logger)
	}
	ledger := opts.Ledger
	if ledger == nil {
		path := opts.HistoryFile
		if path == "" {
			var err error
			if path, err = history.DefaultPath(); err != nil {
				logger.Warn("History location unavailable, batches will not be recorded", slog.Any("error", err))
			}
		}
		if path != "" {
			ledger = history.NewCSVLedger(path, opts.Logger)
		}
	}
	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}

	return &Orchestrator{
		logger:         logger,
		hooks:          hooks,
		resolver:       resolver,
		packer:         packer,
		ledger:         ledger,
		concurrency:    concurrency,
		progressBuffer: opts.ProgressBuffer,
	}, nil
}

// Run converts every input of req and reports progress to onProgress, which may
// be nil. Unit failures are collected in Result.Failures and do not stop the
// batch. The returned error is non-nil when a precondition fails, the engine is
// unavailable, packaging fails, ctx is cancelled, or every unit failed.
//
// Unless a precondition fails, onProgress receives exactly one event with Done
// set and it is the last one, delivered before Run returns.
func (o *Orchestrator) Run(ctx context.Context, req Request, onProgress ProgressFunc) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	req = req.clone()
	if err := validateRequest(req); err != nil {
		o.logger.Info("Batch rejected", slog.String("error", err.Error()))
		return Result{}, err
	}

	batchID := uuid.NewString()
	logger := o.logger.With(slog.String("batchID", batchID))
	total := len(req.Inputs)
	res := Result{
		BatchID:    batchID,
		Direction:  req.Direction,
		Mode:       req.Mode,
		Compressed: req.Compressed,
		Total:      total,
		Outputs:    []string{},
		StartedAt:  time.Now(),
	}
	logger.Info("Starting batch",
		slog.String("direction", string(req.Direction)),
		slog.String("engine", string(req.Engine)),
		slog.Int("units", total),
		slog.Bool("compressed", req.Compressed),
	)

	pump := newProgressPump(o.progressBuffer, onProgress, logger)
	if err := o.hooks.OnBatchStart(batchID, total); err != nil {
		logger.Warn("OnBatchStart hook returned an error", slog.String("error", err.Error()))
	}

	session, backend, err := o.open(ctx, req)
	if err != nil {
		logger.Error("Conversion engine unavailable", slog.String("error", err.Error()))
		res.Duration = time.Since(res.StartedAt)
		pump.finish(total)
		o.complete(logger, res)
		return res, err
	}

	results := o.dispatch(ctx, logger, session, backend, req, pump, outputCollisions(req))
	if closeErr := session.Close(); closeErr != nil {
		logger.Warn("Closing engine session failed", slog.String("error", closeErr.Error()))
	}

	var unitErrs *multierror.Error
	for i, r := range results {
		switch {
		case !r.attempted:
		case r.err != nil:
			res.Failures = append(res.Failures, UnitFailure{Path: req.Inputs[i], Error: r.err.Error()})
			unitErrs = multierror.Append(unitErrs, fmt.Errorf("%s: %w", filepath.Base(req.Inputs[i]), r.err))
		default:
			res.Outputs = append(res.Outputs, r.output)
		}
	}

	cancelled := ctx.Err() != nil
	var packErr error
	if req.Compressed && len(res.Outputs) > 0 && !cancelled {
		res.Archive, packErr = o.pack(logger, res.Outputs, req)
	}

	res.Duration = time.Since(res.StartedAt)
	o.record(logger, res)
	pump.finish(total)

	logger.Info("Batch finished",
		slog.Duration("duration", res.Duration),
		slog.Int("succeeded", res.Succeeded()),
		slog.Int("failed", res.Failed()),
		slog.String("archive", res.Archive),
	)
	o.complete(logger, res)

	switch {
	case cancelled:
		logger.Info("Batch cancelled", slog.String("reason", ctx.Err().Error()))
		return res, ctx.Err()
	case len(res.Outputs) == 0 && len(res.Failures) > 0:
		return res, fmt.Errorf("%w: all %d files failed: %w", ErrConversion, total, unitErrs.ErrorOrNil())
	case packErr != nil:
		return res, packErr
	}
	return res, nil
}

// outputCollisions returns, per input, an error when an earlier input of the
// batch already writes the same output file. Names are compared without case
// since the common desktop filesystems ignore it.
func outputCollisions(req Request) []error {
	errs := make([]error, len(req.Inputs))
	claimed := make(map[string]string, len(req.Inputs))
	ext := req.Direction.TargetExt()
	for i, in := range req.Inputs {
		out := engine.OutputPath(in, req.OutputDir, ext)
		key := strings.ToLower(out)
		if first, ok := claimed[key]; ok {
			errs[i] = fmt.Errorf("%w: output %s collides with the output of %s", ErrConversion, filepath.Base(out), first)
			continue
		}
		claimed[key] = in
	}
	return errs
}

func validateRequest(req Request) error {
	if len(req.Inputs) == 0 {
		return fmt.Errorf("%w: %w", ErrPrecondition, ErrNoInputs)
	}
	if !req.Direction.Valid() {
		return fmt.Errorf("%w: unknown conversion direction '%s'", ErrPrecondition, req.Direction)
	}
	if req.OutputDir == "" {
		return fmt.Errorf("%w: %w: no output directory given", ErrPrecondition, ErrOutputDir)
	}
	info, err := os.Stat(req.OutputDir)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrPrecondition, ErrOutputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %w: '%s' is not a directory", ErrPrecondition, ErrOutputDir, req.OutputDir)
	}
	probe, err := os.CreateTemp(req.OutputDir, ".converty-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %w: not writable: %w", ErrPrecondition, ErrOutputDir, err)
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return nil
}

// open resolves the backend and acquires its batch session.
func (o *Orchestrator) open(ctx context.Context, req Request) (engine.Session, engine.Backend, error) {
	backend, err := o.resolver.Resolve(req.Direction, req.Engine)
	if err != nil {
		return nil, nil, ensureWrapped(err, ErrEngineUnavailable)
	}
	session, err := backend.Open(ctx)
	if err != nil {
		return nil, nil, ensureWrapped(err, ErrEngineUnavailable)
	}
	o.logger.Debug("Engine session opened", slog.String("backend", backend.Name()), slog.Bool("concurrent", backend.Concurrent()))
	return session, backend, nil
}

// dispatch converts the units in input order. Sequential backends run inline;
// concurrent ones fan out to a bounded pool while events stay in input order.
func (o *Orchestrator) dispatch(ctx context.Context, logger *slog.Logger, session engine.Session, backend engine.Backend, req Request, pump *progressPump, collisions []error) []unitResult {
	total := len(req.Inputs)
	results := make([]unitResult, total)

	workers := 1
	if backend.Concurrent() && o.concurrency > 1 {
		workers = min(o.concurrency, total)
	}

	announce := func(u Unit) {
		pump.emit(ProgressEvent{Current: u.Index, Total: u.Total, Label: filepath.Base(u.Path)})
		if err := o.hooks.OnUnitStatus(u.Path, StatusProcessing, "", 0); err != nil {
			logger.Warn("OnUnitStatus hook returned an error", slog.String("path", u.Path), slog.String("error", err.Error()))
		}
	}

	if workers == 1 {
		for i, in := range req.Inputs {
			if ctx.Err() != nil {
				break
			}
			u := Unit{Path: in, Index: i + 1, Total: total}
			announce(u)
			results[i] = o.convertUnit(ctx, logger, session, req.OutputDir, u, collisions[i])
		}
		return results
	}

	// A unit is announced only once a slot is free, so every announced unit
	// is converted and reaches a final status.
	logger.Debug("Starting worker pool", slog.Int("count", workers))
	slots := make(chan struct{}, workers)
	var wg sync.WaitGroup

dispatchLoop:
	for i, in := range req.Inputs {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			break dispatchLoop
		}
		if ctx.Err() != nil {
			<-slots
			break
		}
		u := Unit{Path: in, Index: i + 1, Total: total}
		announce(u)
		wg.Add(1)
		go func(u Unit, collision error) {
			defer wg.Done()
			defer func() { <-slots }()
			results[u.Index-1] = o.convertUnit(ctx, logger, session, req.OutputDir, u, collision)
		}(u, collisions[i])
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) convertUnit(ctx context.Context, logger *slog.Logger, session engine.Session, outputDir string, u Unit, collision error) (res unitResult) {
	uLogger := logger.With(slog.String("path", u.Path), slog.Int("index", u.Index))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			uLogger.Error("Panic recovered during conversion", "panicValue", r)
			res = unitResult{attempted: true, err: fmt.Errorf("%w: panic: %v", ErrConversion, r)}
			o.unitStatus(uLogger, u.Path, StatusFailed, res.err.Error(), time.Since(start))
		}
	}()

	if collision != nil {
		uLogger.Warn("File skipped", slog.String("error", collision.Error()))
		o.unitStatus(uLogger, u.Path, StatusFailed, collision.Error(), 0)
		return unitResult{attempted: true, err: collision}
	}

	out, err := session.Convert(ctx, u.Path, outputDir)
	elapsed := time.Since(start)
	if err != nil {
		err = ensureWrapped(err, ErrConversion)
		uLogger.Warn("File conversion failed", slog.String("error", err.Error()))
		o.unitStatus(uLogger, u.Path, StatusFailed, err.Error(), elapsed)
		return unitResult{attempted: true, err: err}
	}
	uLogger.Debug("File converted", slog.String("output", out), slog.Duration("duration", elapsed))
	o.unitStatus(uLogger, u.Path, StatusSuccess, out, elapsed)
	return unitResult{attempted: true, output: out}
}

func (o *Orchestrator) unitStatus(logger *slog.Logger, path string, status Status, message string, d time.Duration) {
	if err := o.hooks.OnUnitStatus(path, status, message, d); err != nil {
		logger.Warn("OnUnitStatus hook returned an error", slog.String("error", err.Error()))
	}
}

// pack bundles outputs. Failing to delete a source after a verified archive
// is only logged; the archive path is still returned.
func (o *Orchestrator) pack(logger *slog.Logger, outputs []string, req Request) (string, error) {
	archivePath, err := o.packer.Pack(outputs, req.OutputDir, req.Direction)
	if err == nil {
		return archivePath, nil
	}
	if archivePath != "" {
		logger.Warn("Archive written but some sources could not be removed", slog.String("error", err.Error()))
		return archivePath, nil
	}
	logger.Error("Packaging failed, outputs left in place", slog.String("error", err.Error()))
	return "", ensureWrapped(err, ErrPackaging)
}

func (o *Orchestrator) record(logger *slog.Logger, res Result) {
	if o.ledger == nil {
		return
	}
	rec := history.Record{
		Timestamp:  time.Now().Truncate(time.Second),
		Direction:  string(res.Direction),
		Mode:       int(res.Mode),
		Compressed: res.Compressed,
		Files:      len(res.Outputs),
		Location:   res.Location(),
	}
	if err := o.ledger.Append(rec); err != nil {
		logger.Error("Failed to record batch in history", slog.String("error", err.Error()))
	}
}

func (o *Orchestrator) complete(logger *slog.Logger, res Result) {
	if err := o.hooks.OnBatchComplete(res); err != nil {
		logger.Warn("OnBatchComplete hook returned an error", slog.String("error", err.Error()))
	}
}

func ensureWrapped(err, category error) error {
	if errors.Is(err, category) {
		return err
	}
	return fmt.Errorf("%w: %w", category, err)
}
