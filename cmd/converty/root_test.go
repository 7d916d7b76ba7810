package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/history"
)

// executeCommand runs a fresh command tree and captures its output.
func executeCommand(args ...string) (stdout string, stderr string, err error) {
	root := newRootCmd()
	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)
	root.SetOut(stdoutBuf)
	root.SetErr(stderrBuf)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return stdoutBuf.String(), stderrBuf.String(), err
}

// isolate keeps the developer's own config, history and preferences out of
// the test and returns flags pointing at per-test files.
func isolate(t *testing.T) (historyFile, prefsFile string, flags []string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("CONVERTY_PREFSFILE", "")
	historyFile = filepath.Join(home, "history.csv")
	prefsFile = filepath.Join(home, "prefs.json")
	return historyFile, prefsFile, []string{"--history-file", historyFile, "--prefs-file", prefsFile}
}

func TestRootCmdHelp_AllFlagsPresent(t *testing.T) {
	root := newRootCmd()
	stdout, stderr, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "converty (-i <file>... | --input-dir <dir>) -o <outputDir>")

	visit := func(f *pflag.Flag) {
		assert.Contains(t, stdout, "--"+f.Name, "Help output should contain flag --%s", f.Name)
		if f.Shorthand != "" {
			assert.Contains(t, stdout, "-"+f.Shorthand+",", "Help output should contain shorthand -%s", f.Shorthand)
		}
	}
	root.Flags().VisitAll(visit)
	root.PersistentFlags().VisitAll(visit)

	for _, sub := range []string{"history", "prefs"} {
		assert.Contains(t, stdout, sub)
	}
}

func TestRootCmdVersion(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	version, commit, date = "test-1.2.3", "testcommit123", "2024-01-01T10:00:00Z"
	defer func() {
		version, commit, date = originalVersion, originalCommit, originalDate
	}()

	stdout, stderr, err := executeCommand("--version")

	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, fmt.Sprintf("converty version %s (commit: %s, built: %s)\n", version, commit, date), stdout)
}

func TestRootCmdFlagParsingErrors(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		errorMsg string
	}{
		{"Unknown flag", []string{"--unknown-flag"}, "unknown flag: --unknown-flag"},
		{"Invalid int", []string{"--concurrency", "abc"}, `invalid argument "abc" for "--concurrency" flag`},
		{"Positional argument", []string{"a.pdf"}, `unknown command "a.pdf"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, stderr, err := executeCommand(tc.args...)
			require.Error(t, err)
			assert.Contains(t, stderr, tc.errorMsg)
		})
	}
}

func TestRootCmd_InvalidConfigValue(t *testing.T) {
	_, _, flags := isolate(t)

	_, _, err := executeCommand(append(flags, "--no-tui", "-d", "docx_to_pdf")...)

	require.Error(t, err)
	assert.ErrorIs(t, err, converter.ErrConfigValidation)
}

func TestRootCmd_NothingSelected(t *testing.T) {
	historyFile, _, flags := isolate(t)

	stdout, _, err := executeCommand(append(flags, "--no-tui", "-o", t.TempDir())...)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Seçili dosya yok! İşlem iptal edildi.")
	_, statErr := os.Stat(historyFile)
	assert.True(t, os.IsNotExist(statErr), "no batch ran, so no ledger is created")
}

func TestHistoryList(t *testing.T) {
	historyFile, _, flags := isolate(t)

	stdout, _, err := executeCommand(append([]string{"history", "list", "--lang", "en"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No operations recorded yet.")

	ledger := history.NewCSVLedger(historyFile, nil)
	require.NoError(t, ledger.Append(history.Record{
		Timestamp:  time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local),
		Direction:  string(converter.DirectionDeckToRaster),
		Mode:       int(converter.ModeFolder),
		Compressed: true,
		Files:      3,
		Location:   "/tmp/out",
	}))

	stdout, _, err = executeCommand(append([]string{"history", "list", "--lang", "en"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Operation History:")
	assert.Contains(t, stdout, "2024-05-01 10:30:00")
	assert.Contains(t, stdout, "PPTX to PDF")
	assert.Contains(t, stdout, "/tmp/out")
}

func TestHistoryClear(t *testing.T) {
	historyFile, _, flags := isolate(t)
	ledger := history.NewCSVLedger(historyFile, nil)
	require.NoError(t, ledger.Append(history.Record{Timestamp: time.Now(), Direction: "pdf_to_pptx", Mode: 1, Files: 1}))

	stdout, _, err := executeCommand(append([]string{"history", "clear"}, flags...)...)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Geçmiş temizlendi.")
	recs, err := ledger.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPrefsShowAndReset(t *testing.T) {
	_, prefsFile, flags := isolate(t)
	require.NoError(t, os.WriteFile(prefsFile, []byte(`{"language":"en","conversion_type":"pptx_to_pdf","mode":2,"zip_option":true,"pdf_engine":"libreoffice","theme":"Koyu"}`), 0o644))

	stdout, _, err := executeCommand(append([]string{"prefs", "show"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# "+prefsFile)
	assert.Contains(t, stdout, "conversion_type: pptx_to_pdf")
	assert.Contains(t, stdout, "pdf_engine: headless")
	assert.Contains(t, stdout, "theme: dark")
	assert.Contains(t, stdout, "# [en] PPTX to PDF | LibreOffice | Dark")

	stdout, _, err = executeCommand(append([]string{"prefs", "reset", "--lang", "en"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Preferences reset to defaults.")
	_, statErr := os.Stat(prefsFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPrefsShow_LabelsFollowSavedLanguage(t *testing.T) {
	_, prefsFile, flags := isolate(t)
	require.NoError(t, os.WriteFile(prefsFile, []byte(`{"language":"tr","conversion_type":"pptx_to_pdf","mode":1,"pdf_engine":"powerpoint","theme":"light"}`), 0o644))

	stdout, _, err := executeCommand(append([]string{"prefs", "show"}, flags...)...)

	require.NoError(t, err)
	assert.Contains(t, stdout, "# [tr] PPTX'ten PDF'e | PowerPoint COM (Sadece Windows) | ")
}

func TestSubcommandsRejectArgs(t *testing.T) {
	root := newRootCmd()
	for _, c := range root.Commands() {
		for _, sub := range append([]*cobra.Command{c}, c.Commands()...) {
			assert.NotNil(t, sub.Args, "command %q should validate its arguments", sub.Name())
		}
	}
}
