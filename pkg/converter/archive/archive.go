// Package archive bundles converted files into a single zip in the output
// directory and removes the originals once the archive is known to be good.
package archive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/stackvity/converty/pkg/converter/engine"
)

// ErrPackaging indicates the archive could not be written or verified. When
// it is returned no source file has been deleted.
var ErrPackaging = errors.New("failed to package outputs")

// Name returns the fixed archive file name for a direction.
func Name(direction engine.Direction) string {
	if direction == engine.DirectionDeckToRaster {
		return "converted_pdf_files.zip"
	}
	return "converted_pptx_files.zip"
}

// Packer writes batch archives.
type Packer struct {
	logger *slog.Logger
}

// NewPacker creates a Packer.
func NewPacker(loggerHandler slog.Handler) *Packer {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &Packer{logger: slog.New(loggerHandler).With(slog.String("component", "packer"))}
}

// Pack stores files flat under their base names in outputDir/Name(direction),
// replacing any archive already there. Sources are deleted only after the
// archive has been closed, re-opened and checked entry by entry. Failures to
// delete a source are logged and returned joined, with the archive path.
func (p *Packer) Pack(files []string, outputDir string, direction engine.Direction) (string, error) {
	archivePath := filepath.Join(outputDir, Name(direction))
	if len(files) == 0 {
		return "", fmt.Errorf("%w: nothing to archive", ErrPackaging)
	}

	tmp, err := os.CreateTemp(outputDir, ".converty-*.zip")
	if err != nil {
		return "", fmt.Errorf("%w: cannot create temporary archive: %w", ErrPackaging, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	sizes := make(map[string]int64, len(files))
	zw := zip.NewWriter(tmp)
	for _, f := range files {
		if _, dup := sizes[filepath.Base(f)]; dup {
			continue
		}
		n, err := addFile(zw, f)
		if err != nil {
			_ = zw.Close()
			return "", fmt.Errorf("%w: %w", ErrPackaging, err)
		}
		sizes[filepath.Base(f)] = n
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("%w: cannot finish archive: %w", ErrPackaging, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: cannot close archive: %w", ErrPackaging, err)
	}
	if err := verify(tmpPath, sizes); err != nil {
		return "", fmt.Errorf("%w: archive verification failed: %w", ErrPackaging, err)
	}
	if err := os.Rename(tmpPath, archivePath); err != nil {
		return "", fmt.Errorf("%w: cannot move archive into place: %w", ErrPackaging, err)
	}
	committed = true
	p.logger.Debug("Archive written", slog.String("path", archivePath), slog.Int("entries", len(sizes)))

	var removeErrs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("Could not remove archived source", slog.String("path", f), slog.Any("error", err))
			removeErrs = append(removeErrs, err)
		}
	}
	return archivePath, errors.Join(removeErrs...)
}

func addFile(zw *zip.Writer, path string) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, fmt.Errorf("cannot build header for %s: %w", path, err)
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, fmt.Errorf("cannot add %s: %w", hdr.Name, err)
	}
	n, err := io.Copy(w, src)
	if err != nil {
		return 0, fmt.Errorf("cannot write %s: %w", hdr.Name, err)
	}
	return n, nil
}

// verify re-reads the archive and checks every expected entry is present with
// its original size and a valid checksum.
func verify(path string, sizes map[string]int64) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer zr.Close()

	seen := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		want, ok := sizes[f.Name]
		if !ok {
			continue
		}
		if int64(f.UncompressedSize64) != want {
			return fmt.Errorf("entry %s has size %d, want %d", f.Name, f.UncompressedSize64, want)
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("entry %s: %w", f.Name, err)
		}
		_, err = io.Copy(io.Discard, rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("entry %s: %w", f.Name, err)
		}
		seen[f.Name] = true
	}
	for name := range sizes {
		if !seen[name] {
			return fmt.Errorf("entry %s missing", name)
		}
	}
	return nil
}
