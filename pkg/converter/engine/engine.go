// Package engine holds the conversion backends a batch can dispatch to and the
// strategy that picks one for a given direction.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stackvity/converty/pkg/util"
)

// Direction names which way a batch converts.
type Direction string

const (
	// DirectionRasterToDeck turns each PDF into a slide deck with one slide per page.
	DirectionRasterToDeck Direction = "pdf_to_pptx"
	// DirectionDeckToRaster turns each slide deck into a PDF.
	DirectionDeckToRaster Direction = "pptx_to_pdf"
)

// SourceExt returns the file extension consumed by the direction.
func (d Direction) SourceExt() string {
	if d == DirectionDeckToRaster {
		return ".pptx"
	}
	return ".pdf"
}

// TargetExt returns the file extension produced by the direction.
func (d Direction) TargetExt() string {
	if d == DirectionDeckToRaster {
		return ".pdf"
	}
	return ".pptx"
}

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionRasterToDeck || d == DirectionDeckToRaster
}

// EngineID identifies a DeckToRaster backend. It is a closed set and never
// derived from localized display text.
type EngineID string

const (
	EngineAutomation EngineID = "automation"
	EngineHeadless   EngineID = "headless"
)

// ParseEngine maps a configured engine name onto an EngineID. The names used by
// older preference files ("powerpoint_com", "libreoffice") are accepted.
func ParseEngine(s string) (EngineID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(EngineAutomation), "powerpoint_com", "powerpoint":
		return EngineAutomation, nil
	case string(EngineHeadless), "libreoffice", "soffice", "":
		return EngineHeadless, nil
	}
	return "", fmt.Errorf("%w: unknown engine %q", ErrEngineUnavailable, s)
}

var (
	// ErrEngineUnavailable indicates a backend could not be resolved or its
	// batch session could not be opened. No unit of the batch can run.
	ErrEngineUnavailable = errors.New("conversion engine unavailable")

	// ErrConversion indicates a single file failed to convert. It never stops
	// the batch.
	ErrConversion = errors.New("conversion failed")

	// ErrProcessNonZeroExit indicates an external converter process exited with
	// a non-zero status. errors.Is(err, ErrConversion) is also true.
	ErrProcessNonZeroExit = errors.New("converter process exited non-zero")

	// ErrMissingOutput indicates a backend reported success but the expected
	// output file is not on disk. errors.Is(err, ErrConversion) is also true.
	ErrMissingOutput = errors.New("converter produced no output file")
)

// Errorf returns a formatted error that wraps ErrConversion.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConversion}, args...)...)
}

// WrapConversionError wraps a specific failure with ErrConversion so callers
// can match either.
func WrapConversionError(specific error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", ErrConversion, fmt.Sprintf(format, args...), specific)
}

// Converter converts a single file into outputDir and returns the path of the
// produced file.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputDir string) (string, error)
}

// Session is a Converter bound to resources held for the whole batch.
// Close is called exactly once, after the last unit.
type Session interface {
	Converter
	Close() error
}

// Backend opens batch sessions for one conversion strategy.
type Backend interface {
	Name() string
	// Concurrent reports whether a session may convert several files at once.
	Concurrent() bool
	Open(ctx context.Context) (Session, error)
}

// OutputPath returns the path a converter writes for inputPath: the same base
// name inside outputDir with its extension replaced by ext.
func OutputPath(inputPath, outputDir, ext string) string {
	return filepath.Join(outputDir, util.StemWithExt(inputPath, ext))
}
