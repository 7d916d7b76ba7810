// Package picker turns the CLI's input flags into the ordered list of files a
// batch converts, plus the selection mode recorded in history.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/util"
)

// ErrConflictingSelection indicates both explicit files and a folder were given.
var ErrConflictingSelection = errors.New("--input and --input-dir cannot be combined")

// Selection describes what the user picked on the command line.
type Selection struct {
	Inputs    []string
	InputDir  string
	Direction converter.Direction
}

// Picked is the resolved selection. An empty Paths slice means nothing was
// selected; the caller treats that as a cancellation.
type Picked struct {
	Paths []string
	Mode  converter.Mode
}

// Picker resolves a Selection.
type Picker struct {
	logger *slog.Logger
}

// New creates a Picker.
func New(loggerHandler slog.Handler) *Picker { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &Picker{logger: slog.New(loggerHandler).With(slog.String("component", "picker"))}
}

// Pick resolves sel. Explicit files keep their order and are filtered to the
// direction's source extension. A folder is scanned one level deep in lexical
// order.
func (p *Picker) Pick(ctx context.Context, sel Selection) (Picked, error) {
	if len(sel.Inputs) > 0 && sel.InputDir != "" {
		return Picked{}, ErrConflictingSelection
	}
	ext := sel.Direction.SourceExt()

	if sel.InputDir != "" {
		paths, err := p.scan(ctx, sel.InputDir, ext)
		if err != nil {
			return Picked{}, err
		}
		return Picked{Paths: paths, Mode: converter.ModeFolder}, nil
	}

	paths := make([]string, 0, len(sel.Inputs))
	for _, in := range sel.Inputs {
		if in == "" {
			continue
		}
		if !util.HasExt(in, ext) {
			p.logger.Warn("Skipping file with wrong extension", slog.String("path", in), slog.String("expected", ext))
			continue
		}
		paths = append(paths, in)
	}
	return Picked{Paths: paths, Mode: ModeFor(len(paths))}, nil
}

// ModeFor returns the mode of an explicit selection of n files.
func ModeFor(n int) converter.Mode {
	if n > 1 {
		return converter.ModeMultiple
	}
	return converter.ModeSingle
}

func (p *Picker) scan(ctx context.Context, dir, ext string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read input folder %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input folder %q is not a directory", dir)
	}

	p.logger.Debug("Scanning input folder", slog.String("path", dir), slog.String("ext", ext))
	var paths []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			p.logger.Warn("Error accessing path during scan", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		if d.Type()&fs.ModeSymlink != 0 {
			p.logger.Debug("Skipping symbolic link", slog.String("path", path))
			return nil
		}
		if !util.HasExt(path, ext) || util.IsOfficeLockFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scanning input folder %q: %w", dir, walkErr)
	}
	p.logger.Debug("Input folder scanned", slog.Int("matches", len(paths)))
	return paths, nil
}
