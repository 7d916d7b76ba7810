package converter

import (
	"errors"

	"github.com/stackvity/converty/pkg/converter/archive"
	"github.com/stackvity/converty/pkg/converter/engine"
)

// --- Exported Error Variables ---
// These errors represent the categories of failure Run can return. Library
// users can check against them using errors.Is.

var (
	// ErrPrecondition indicates the request was rejected before any backend was
	// touched. No progress event is emitted and no history is recorded.
	// It always wraps a more specific error such as ErrNoInputs or ErrOutputDir.
	ErrPrecondition = errors.New("batch precondition failed")

	// ErrNoInputs indicates the request carried no input paths.
	ErrNoInputs = errors.New("no input files selected")

	// ErrOutputDir indicates the output directory is missing, not a directory,
	// or not writable.
	ErrOutputDir = errors.New("output directory unusable")

	// ErrEngineUnavailable indicates the requested backend could not be
	// resolved or its batch session could not be opened. The batch stops but the
	// final progress event is still delivered.
	ErrEngineUnavailable = engine.ErrEngineUnavailable

	// ErrConversion is the category of every unit-level failure. Run returns it
	// only when every unit of the batch failed, aggregating the unit errors.
	ErrConversion = engine.ErrConversion

	// ErrPackaging indicates the output archive could not be written or
	// verified. Produced files are left in place and reported in Result.Outputs.
	ErrPackaging = archive.ErrPackaging

	// ErrConfigValidation indicates that Options failed validation in
	// NewOrchestrator or during configuration loading.
	ErrConfigValidation = errors.New("invalid configuration options provided")
)
