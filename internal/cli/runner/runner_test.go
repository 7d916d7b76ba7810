package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stackvity/converty/internal/testutil"
	"github.com/stackvity/converty/pkg/converter/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping shell script process test on Windows")
	}
}

func newTestRunner(t *testing.T) (engine.ProcessRunner, *bytes.Buffer) {
	t.Helper()
	logBuf := &bytes.Buffer{}
	return NewExecRunner(slog.NewTextHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})), logBuf
}

func TestExecRunner_Success(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	// Behaves like soffice: writes <outdir>/<stem>.pdf.
	script := testutil.CreateFakeExecutable(t, dir, "fake-soffice", `
for last; do :; done
echo "convert $3 -> $last"
echo "warning: font substituted" >&2
touch "$last/out.pdf"
`)
	outDir := t.TempDir()
	r, logBuf := newTestRunner(t)

	res, err := r.Run(context.Background(), script, "--headless", "--convert-to", "in.pptx", "--outdir", outDir)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "convert")
	assert.Equal(t, "warning: font substituted", res.Stderr)
	assert.FileExists(t, filepath.Join(outDir, "out.pdf"))
	assert.Contains(t, logBuf.String(), "Process finished successfully")
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	script := testutil.CreateFakeExecutable(t, t.TempDir(), "failing", `echo "source file could not be loaded" >&2; exit 3`)
	r, logBuf := newTestRunner(t)

	res, err := r.Run(context.Background(), script)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrProcessNonZeroExit)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, err.Error(), "source file could not be loaded")
	assert.Contains(t, logBuf.String(), "exitCode=3")
}

func TestExecRunner_StartFailure(t *testing.T) {
	r, _ := newTestRunner(t)

	_, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "no-such-binary"))
	assert.ErrorIs(t, err, ErrStart)

	_, err = r.Run(context.Background(), "")
	assert.ErrorIs(t, err, ErrStart)
}

func TestExecRunner_Cancelled(t *testing.T) {
	skipOnWindows(t)
	script := testutil.CreateFakeExecutable(t, t.TempDir(), "slow", `exec sleep 5`)
	r, _ := newTestRunner(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := r.Run(ctx, script)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, engine.ErrProcessNonZeroExit))
	assert.Less(t, time.Since(start), 4*time.Second, "process killed on cancellation")
}

func TestExecRunner_LargeOutputIsCapped(t *testing.T) {
	skipOnWindows(t)
	if _, err := os.Stat("/dev/zero"); err != nil {
		t.Skip("no /dev/zero")
	}
	script := testutil.CreateFakeExecutable(t, t.TempDir(), "chatty", `head -c 11000000 /dev/zero`)
	r, logBuf := newTestRunner(t)

	res, err := r.Run(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, maxReadBytes, len(res.Stdout))
	assert.Contains(t, logBuf.String(), "Process output truncated")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))
	long := strings.Repeat("x", maxLogOutputBytes+10)
	assert.True(t, strings.HasSuffix(truncate(long), "... (truncated)"))
	assert.Len(t, truncate(long), maxLogOutputBytes+len("... (truncated)"))
}
