package cli_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/converty/internal/cli"
	"github.com/stackvity/converty/internal/cli/picker"
	"github.com/stackvity/converty/internal/cli/prefs"
	"github.com/stackvity/converty/internal/testutil"
	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/history"
)

type env struct {
	t        *testing.T
	opts     converter.Options
	deps     cli.Deps
	out      *bytes.Buffer
	logBuf   *bytes.Buffer
	resolver *testutil.MockResolver
	backend  *testutil.MockBackend
	session  *testutil.MockSession
	ledger   *history.CSVLedger
	inDir    string
	outDir   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	color.NoColor = true
	root := t.TempDir()
	e := &env{
		t:        t,
		out:      &bytes.Buffer{},
		logBuf:   &bytes.Buffer{},
		resolver: &testutil.MockResolver{},
		backend:  &testutil.MockBackend{},
		session:  &testutil.MockSession{},
		inDir:    filepath.Join(root, "in"),
		outDir:   filepath.Join(root, "out"),
	}
	testutil.CreateDummyDir(t, e.inDir)
	testutil.CreateDummyDir(t, e.outDir)
	handler := slog.NewTextHandler(e.logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	e.ledger = history.NewCSVLedger(filepath.Join(root, "history.csv"), handler)
	e.opts = converter.Options{
		Direction:  converter.DirectionRasterToDeck,
		Engine:     converter.EngineHeadless,
		Language:   converter.LanguageEnglish,
		Theme:      converter.ThemeLight,
		OutputPath: e.outDir,
		PrefsFile:  filepath.Join(root, "prefs.json"),
		Logger:     handler,
		Resolver:   e.resolver,
		Ledger:     e.ledger,
	}
	e.deps = cli.Deps{
		Out:    e.out,
		Runner: &testutil.MockProcessRunner{},
		Prefs:  prefs.NewJSONStore(e.opts.PrefsFile, handler),
	}
	return e
}

func (e *env) input(name string) string {
	p := filepath.Join(e.inDir, name)
	testutil.CreateDummyFile(e.t, p, "%PDF-1.4")
	return p
}

func (e *env) expectBackend() {
	e.resolver.On("Resolve", converter.DirectionRasterToDeck, mock.Anything).Return(e.backend, nil)
	e.backend.On("Name").Return("fake")
	e.backend.On("Concurrent").Return(false)
	e.backend.On("Open", mock.Anything).Return(e.session, nil)
	e.session.On("Close").Return(nil)
}

func (e *env) converts(in string) string {
	out := filepath.Join(e.outDir, filepath.Base(in)+".pptx")
	e.session.On("Convert", mock.Anything, in, e.outDir).Return(out, nil).Run(func(mock.Arguments) {
		testutil.CreateDummyFile(e.t, out, "deck")
	})
	return out
}

func (e *env) run() error {
	e.t.Helper()
	return cli.RunWith(context.Background(), e.opts, slog.New(e.opts.Logger), e.deps)
}

func TestRun_NoSelection(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.run())

	assert.Contains(t, e.out.String(), "No files selected! Process cancelled.")
	e.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	recs, err := e.ledger.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRun_NoOutputFolder(t *testing.T) {
	e := newEnv(t)
	e.opts.InputPaths = []string{e.input("a.pdf")}
	e.opts.OutputPath = ""
	e.opts.Language = converter.LanguageTurkish

	require.NoError(t, e.run())

	assert.Contains(t, e.out.String(), "Çıktı klasörü seçilmedi!")
	e.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestRun_UnusableOutputFolder(t *testing.T) {
	e := newEnv(t)
	e.opts.InputPaths = []string{e.input("a.pdf")}
	e.opts.OutputPath = filepath.Join(e.outDir, "missing")

	require.NoError(t, e.run())

	assert.Contains(t, e.out.String(), "No output folder selected!")
	assert.Contains(t, e.logBuf.String(), "Output folder unusable")
}

func TestRun_ConflictingSelection(t *testing.T) {
	e := newEnv(t)
	e.opts.InputPaths = []string{e.input("a.pdf")}
	e.opts.InputDir = e.inDir

	err := e.run()

	assert.ErrorIs(t, err, picker.ErrConflictingSelection)
}

func TestRun_Success(t *testing.T) {
	e := newEnv(t)
	a, b := e.input("a.pdf"), e.input("b.pdf")
	e.opts.InputPaths = []string{a, b}
	e.opts.SavePrefs = true
	e.opts.MetricsFile = filepath.Join(e.outDir, "converty.prom")
	e.expectBackend()
	outA, outB := e.converts(a), e.converts(b)

	require.NoError(t, e.run())

	out := e.out.String()
	assert.Contains(t, out, "Process completed! Files saved:")
	assert.Contains(t, out, outA)
	assert.Contains(t, out, outB)
	assert.Contains(t, out, "Preferences saved to "+e.opts.PrefsFile)

	recs, err := e.ledger.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].Files)
	assert.Equal(t, int(converter.ModeMultiple), recs[0].Mode)

	saved, err := e.deps.Prefs.Load()
	require.NoError(t, err)
	assert.Equal(t, "en", saved.Language)
	assert.Equal(t, int(converter.ModeMultiple), saved.Mode)

	metrics, err := os.ReadFile(e.opts.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `converty_batches_total{direction="pdf_to_pptx",outcome="success"} 1`)
}

func TestRun_FolderSelectionWithArchive(t *testing.T) {
	e := newEnv(t)
	a := e.input("a.pdf")
	e.input("notes.txt")
	e.opts.InputDir = e.inDir
	e.opts.Zip = true
	e.expectBackend()
	e.converts(a)

	require.NoError(t, e.run())

	assert.Contains(t, e.out.String(), "Process completed! All files are in "+filepath.Join(e.outDir, "converted_pptx_files.zip"))
	recs, err := e.ledger.ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int(converter.ModeFolder), recs[0].Mode)
	assert.True(t, recs[0].Compressed)
}

func TestRun_PartialFailure(t *testing.T) {
	e := newEnv(t)
	a, b := e.input("a.pdf"), e.input("b.pdf")
	e.opts.InputPaths = []string{a, b}
	e.expectBackend()
	e.converts(a)
	e.session.On("Convert", mock.Anything, b, e.outDir).Return("", errors.New("corrupt page"))

	require.NoError(t, e.run())

	out := e.out.String()
	assert.Contains(t, out, "Process completed with errors. 1 of 2 files failed:")
	assert.Contains(t, out, "b.pdf: ")
	assert.Contains(t, out, "corrupt page")
}

func TestRun_AllFailed(t *testing.T) {
	e := newEnv(t)
	a := e.input("a.pdf")
	e.opts.InputPaths = []string{a}
	e.expectBackend()
	e.session.On("Convert", mock.Anything, a, e.outDir).Return("", errors.New("corrupt page"))

	err := e.run()

	require.Error(t, err)
	assert.ErrorIs(t, err, converter.ErrConversion)
	assert.Contains(t, e.out.String(), "Process failed:")
	assert.Contains(t, e.out.String(), "corrupt page")
}

func TestRun_EngineUnavailable(t *testing.T) {
	e := newEnv(t)
	e.opts.InputPaths = []string{e.input("a.pdf")}
	e.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, converter.ErrEngineUnavailable)

	err := e.run()

	assert.ErrorIs(t, err, converter.ErrEngineUnavailable)
	assert.Contains(t, e.out.String(), "Process failed:")
}

func TestRun_Cancelled(t *testing.T) {
	e := newEnv(t)
	a := e.input("a.pdf")
	e.opts.InputPaths = []string{a}
	e.expectBackend()
	ctx, cancel := context.WithCancel(context.Background())
	out := filepath.Join(e.outDir, "a.pptx")
	e.session.On("Convert", mock.Anything, a, e.outDir).Return(out, nil).Run(func(mock.Arguments) { cancel() })

	err := cli.RunWith(ctx, e.opts, slog.New(e.opts.Logger), e.deps)

	require.NoError(t, err)
	assert.Contains(t, e.out.String(), "Process cancelled.")
}
