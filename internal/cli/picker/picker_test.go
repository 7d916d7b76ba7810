package picker_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stackvity/converty/internal/cli/picker"
	"github.com/stackvity/converty/internal/testutil"
	"github.com/stackvity/converty/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPicker() (*picker.Picker, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return picker.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func TestPick_FolderScan(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateDummyFile(t, filepath.Join(dir, "b.PDF"), "%PDF")
	testutil.CreateDummyFile(t, filepath.Join(dir, "a.pdf"), "%PDF")
	testutil.CreateDummyFile(t, filepath.Join(dir, "notes.txt"), "x")
	testutil.CreateDummyFile(t, filepath.Join(dir, "deck.pptx"), "x")
	testutil.CreateDummyFile(t, filepath.Join(dir, "nested", "c.pdf"), "%PDF")
	p, _ := newPicker()

	got, err := p.Pick(context.Background(), picker.Selection{InputDir: dir, Direction: converter.DirectionRasterToDeck})
	require.NoError(t, err)
	assert.Equal(t, converter.ModeFolder, got.Mode)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.PDF")}, got.Paths,
		"non-recursive, case-insensitive, lexical order")
}

func TestPick_FolderScanSkipsLockFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateDummyFile(t, filepath.Join(dir, "deck.pptx"), "x")
	testutil.CreateDummyFile(t, filepath.Join(dir, "~$deck.pptx"), "x")
	testutil.CreateDummyFile(t, filepath.Join(dir, ".~lock.deck.pptx"), "x")
	p, _ := newPicker()

	got, err := p.Pick(context.Background(), picker.Selection{InputDir: dir, Direction: converter.DirectionDeckToRaster})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "deck.pptx")}, got.Paths)
}

func TestPick_FolderScanSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Symlink creation requires privileges on Windows")
	}
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.pdf")
	testutil.CreateDummyFile(t, target, "%PDF")
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.pdf")))
	p, logBuf := newPicker()

	got, err := p.Pick(context.Background(), picker.Selection{InputDir: dir, Direction: converter.DirectionRasterToDeck})
	require.NoError(t, err)
	assert.Empty(t, got.Paths)
	assert.Contains(t, logBuf.String(), "Skipping symbolic link")
}

func TestPick_EmptyFolder(t *testing.T) {
	p, _ := newPicker()
	got, err := p.Pick(context.Background(), picker.Selection{InputDir: t.TempDir(), Direction: converter.DirectionRasterToDeck})
	require.NoError(t, err)
	assert.Empty(t, got.Paths)
	assert.Equal(t, converter.ModeFolder, got.Mode)
}

func TestPick_FolderErrors(t *testing.T) {
	p, _ := newPicker()
	_, err := p.Pick(context.Background(), picker.Selection{InputDir: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "file.pdf")
	testutil.CreateDummyFile(t, file, "%PDF")
	_, err = p.Pick(context.Background(), picker.Selection{InputDir: file})
	assert.ErrorContains(t, err, "not a directory")
}

func TestPick_FolderCancelled(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateDummyFile(t, filepath.Join(dir, "a.pdf"), "%PDF")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _ := newPicker()

	_, err := p.Pick(ctx, picker.Selection{InputDir: dir, Direction: converter.DirectionRasterToDeck})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPick_ExplicitInputs(t *testing.T) {
	p, logBuf := newPicker()

	one, err := p.Pick(context.Background(), picker.Selection{Inputs: []string{"a.pdf"}, Direction: converter.DirectionRasterToDeck})
	require.NoError(t, err)
	assert.Equal(t, converter.ModeSingle, one.Mode)
	assert.Equal(t, []string{"a.pdf"}, one.Paths)

	many, err := p.Pick(context.Background(), picker.Selection{
		Inputs:    []string{"z.pptx", "", "notes.txt", "A.PPTX"},
		Direction: converter.DirectionDeckToRaster,
	})
	require.NoError(t, err)
	assert.Equal(t, converter.ModeMultiple, many.Mode)
	assert.Equal(t, []string{"z.pptx", "A.PPTX"}, many.Paths, "input order preserved")
	assert.Contains(t, logBuf.String(), "Skipping file with wrong extension")
}

func TestPick_NothingSelected(t *testing.T) {
	p, _ := newPicker()
	got, err := p.Pick(context.Background(), picker.Selection{Direction: converter.DirectionRasterToDeck})
	require.NoError(t, err)
	assert.Empty(t, got.Paths)
}

func TestPick_Conflict(t *testing.T) {
	p, _ := newPicker()
	_, err := p.Pick(context.Background(), picker.Selection{Inputs: []string{"a.pdf"}, InputDir: "."})
	assert.ErrorIs(t, err, picker.ErrConflictingSelection)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, converter.ModeSingle, picker.ModeFor(0))
	assert.Equal(t, converter.ModeSingle, picker.ModeFor(1))
	assert.Equal(t, converter.ModeMultiple, picker.ModeFor(2))
}
