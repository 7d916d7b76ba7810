package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/converty/internal/cli/prefs"
	"github.com/stackvity/converty/pkg/converter"
)

// isolate points every per-user location at a temp dir so the developer's own
// config and preferences never leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	t.Setenv("CONVERTY_PREFSFILE", "")
	return home
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// defineAllFlags mirrors the flags the converty root command registers.
func defineAllFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Config file")
	flags.String("profile", "", "Config profile")
	flags.BoolP("verbose", "v", false, "Verbose logging")

	flags.StringArrayP("input", "i", nil, "Input file")
	flags.String("input-dir", "", "Input folder")
	flags.StringP("output", "o", "", "Output folder")
	flags.StringP("direction", "d", string(converter.DefaultDirection), "Conversion direction")
	flags.String("engine", string(converter.DefaultEngine), "DeckToRaster engine")
	flags.String("mode", "", "Selection mode")
	flags.BoolP("zip", "z", converter.DefaultZip, "Zip outputs")
	flags.Int("concurrency", converter.DefaultConcurrency, "Concurrent conversions")
	flags.Float64("dpi", converter.DefaultDPI, "Rasterization DPI")
	flags.String("slide-size", converter.DefaultSlideSize, "Slide size")
	flags.String("soffice", converter.DefaultSofficePath, "soffice binary")
	flags.String("history-file", "", "History ledger")
	flags.String("prefs-file", "", "Preferences file")
	flags.String("metrics-file", "", "Metrics textfile")
	flags.String("lang", converter.DefaultLanguage, "Language")
	flags.String("theme", string(converter.DefaultTheme), "Theme")
	flags.Bool("no-tui", false, "Disable TUI")
	flags.Bool("save-prefs", false, "Save preferences")
}

func newFlags(t *testing.T, home string, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	defineAllFlags(flags)
	require.NoError(t, flags.Parse(append([]string{"--prefs-file", filepath.Join(home, "prefs.json")}, args...)))
	return flags
}

func TestLoadAndValidate_Defaults(t *testing.T) {
	home := isolate(t)
	flags := newFlags(t, home)

	opts, logger, err := LoadAndValidate("", "", "v1.0.0", false, flags)

	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, opts.Logger)
	assert.Equal(t, converter.DirectionRasterToDeck, opts.Direction)
	assert.Equal(t, converter.EngineHeadless, opts.Engine)
	assert.Equal(t, converter.ModeSingle, opts.Mode)
	assert.False(t, opts.Zip)
	assert.Equal(t, converter.DefaultConcurrency, opts.Concurrency)
	assert.Equal(t, converter.DefaultDPI, opts.DPI)
	assert.Equal(t, "16:9", opts.SlideSize)
	assert.Equal(t, "tr", opts.Language)
	assert.Equal(t, converter.ThemeLight, opts.Theme)
	assert.True(t, opts.TuiEnabled)
	assert.False(t, opts.Verbose)
	assert.Equal(t, "v1.0.0", opts.AppVersion)
	assert.Equal(t, filepath.Join(home, "prefs.json"), opts.PrefsFile)
	assert.Empty(t, opts.ConfigFilePath)
}

func TestLoadAndValidate_PreferencesLayer(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "prefs.json"),
		`{"language":"en","conversion_type":"pptx_to_pdf","mode":3,"zip_option":true,"pdf_engine":"powerpoint_com","theme":"Koyu"}`)

	opts, _, err := LoadAndValidate("", "", "dev", false, newFlags(t, home))

	require.NoError(t, err)
	assert.Equal(t, "en", opts.Language)
	assert.Equal(t, converter.DirectionDeckToRaster, opts.Direction)
	assert.Equal(t, converter.ModeFolder, opts.Mode)
	assert.True(t, opts.Zip)
	assert.Equal(t, converter.EngineAutomation, opts.Engine)
	assert.Equal(t, converter.ThemeDark, opts.Theme)
}

func TestLoadAndValidate_CorruptPreferencesFallBackToDefaults(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "prefs.json"), "{not json")

	opts, _, err := LoadAndValidate("", "", "dev", false, newFlags(t, home))

	require.NoError(t, err)
	assert.Equal(t, converter.DirectionRasterToDeck, opts.Direction)
	assert.Equal(t, "tr", opts.Language)
}

func TestLoadAndValidate_ConfigFileOverridesPreferences(t *testing.T) {
	home := isolate(t)
	store := prefs.NewJSONStore(filepath.Join(home, "prefs.json"), nil)
	p := prefs.Defaults()
	p.Language = "en"
	p.ZipOption = true
	require.NoError(t, store.Save(p))
	cfg := writeFile(t, filepath.Join(home, "converty.yaml"), `
language: tr
dpi: 300
slideSize: "4:3"
mode: folder
`)

	opts, _, err := LoadAndValidate(cfg, "", "dev", false, newFlags(t, home))

	require.NoError(t, err)
	assert.Equal(t, cfg, opts.ConfigFilePath)
	assert.Equal(t, "tr", opts.Language, "config file beats preferences")
	assert.True(t, opts.Zip, "preferences fill keys the file does not set")
	assert.Equal(t, 300.0, opts.DPI)
	assert.Equal(t, "4:3", opts.SlideSize)
	assert.Equal(t, converter.ModeFolder, opts.Mode)
}

func TestLoadAndValidate_Profile(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "converty.yaml"), `
zip: false
profiles:
  office:
    conversionType: pptx_to_pdf
    pdfEngine: libreoffice
    zip: true
    concurrency: 4
`)

	opts, _, err := LoadAndValidate(cfg, "office", "dev", false, newFlags(t, home))

	require.NoError(t, err)
	assert.Equal(t, "office", opts.ProfileName)
	assert.Equal(t, converter.DirectionDeckToRaster, opts.Direction)
	assert.Equal(t, converter.EngineHeadless, opts.Engine)
	assert.True(t, opts.Zip)
	assert.Equal(t, 4, opts.Concurrency)
}

func TestLoadAndValidate_MissingProfile(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "converty.yaml"), "zip: true\n")

	_, _, err := LoadAndValidate(cfg, "nope", "dev", false, newFlags(t, home))

	require.Error(t, err)
	assert.ErrorIs(t, err, converter.ErrConfigValidation)
	assert.Contains(t, err.Error(), "profile 'nope' not found")
}

func TestLoadAndValidate_MissingExplicitConfigFile(t *testing.T) {
	home := isolate(t)

	_, _, err := LoadAndValidate(filepath.Join(home, "absent.yaml"), "", "dev", false, newFlags(t, home))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadAndValidate_EnvOverridesConfigFile(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "converty.yaml"), "dpi: 300\n")
	t.Setenv("CONVERTY_DPI", "96")
	t.Setenv("CONVERTY_THEME", "dark")

	opts, _, err := LoadAndValidate(cfg, "", "dev", false, newFlags(t, home))

	require.NoError(t, err)
	assert.Equal(t, 96.0, opts.DPI)
	assert.Equal(t, converter.ThemeDark, opts.Theme)
}

func TestLoadAndValidate_FlagsOverrideEverything(t *testing.T) {
	home := isolate(t)
	cfg := writeFile(t, filepath.Join(home, "converty.yaml"), "conversionType: pdf_to_pptx\nlanguage: tr\n")
	t.Setenv("CONVERTY_LANGUAGE", "tr")
	in := writeFile(t, filepath.Join(home, "a.pptx"), "x")
	out := filepath.Join(home, "out")

	flags := newFlags(t, home,
		"-d", "pptx_to_pdf",
		"--engine", "powerpoint_com",
		"--lang", "en",
		"-z",
		"-i", in,
		"-o", out,
		"--save-prefs",
		"--no-tui",
	)
	opts, _, err := LoadAndValidate(cfg, "", "dev", false, flags)

	require.NoError(t, err)
	assert.Equal(t, converter.DirectionDeckToRaster, opts.Direction)
	assert.Equal(t, converter.EngineAutomation, opts.Engine)
	assert.Equal(t, "en", opts.Language)
	assert.True(t, opts.Zip)
	assert.Equal(t, []string{in}, opts.InputPaths)
	assert.Equal(t, out, opts.OutputPath)
	assert.True(t, opts.SavePrefs)
	assert.False(t, opts.TuiEnabled)
}

func TestLoadAndValidate_InputDirRecordsFolderMode(t *testing.T) {
	home := isolate(t)
	flags := newFlags(t, home, "--input-dir", home)

	opts, _, err := LoadAndValidate("", "", "dev", false, flags)

	require.NoError(t, err)
	assert.Equal(t, home, opts.InputDir)
	assert.Equal(t, converter.ModeFolder, opts.Mode)
}

func TestLoadAndValidate_VerboseDisablesTUI(t *testing.T) {
	home := isolate(t)

	opts, _, err := LoadAndValidate("", "", "dev", true, newFlags(t, home))

	require.NoError(t, err)
	assert.True(t, opts.Verbose)
	assert.False(t, opts.TuiEnabled)
}

func TestLoadAndValidate_InvalidValues(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"direction", []string{"-d", "docx_to_pdf"}, "key 'conversionType'"},
		{"engine", []string{"--engine", "keynote"}, "key 'pdfEngine'"},
		{"mode", []string{"--mode", "7"}, "key 'mode'"},
		{"language", []string{"--lang", "de"}, "key 'language'"},
		{"slide size", []string{"--slide-size", "21:9"}, "key 'slideSize'"},
		{"concurrency", []string{"--concurrency", "-2"}, "key 'concurrency'"},
		{"dpi", []string{"--dpi", "0"}, "key 'dpi'"},
		{"soffice", []string{"--soffice", " "}, "key 'sofficePath'"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			home := isolate(t)
			_, _, err := LoadAndValidate("", "", "dev", false, newFlags(t, home, tc.args...))
			require.Error(t, err)
			assert.ErrorIs(t, err, converter.ErrConfigValidation)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestLoadAndValidate_SubsetFlagSet(t *testing.T) {
	home := isolate(t)
	t.Setenv("CONVERTY_PREFSFILE", filepath.Join(home, "env-prefs.json"))
	flags := pflag.NewFlagSet("history", pflag.ContinueOnError)
	flags.String("history-file", "", "")
	flags.String("lang", "", "")
	require.NoError(t, flags.Parse([]string{"--lang", "en"}))

	opts, _, err := LoadAndValidate("", "", "dev", false, flags)

	require.NoError(t, err)
	assert.Equal(t, "en", opts.Language)
	assert.Equal(t, filepath.Join(home, "env-prefs.json"), opts.PrefsFile)
	assert.Empty(t, opts.InputPaths)
}

func TestIsValidEnumValue(t *testing.T) {
	assert.True(t, isValidEnumValue(converter.ThemeDark, []converter.Theme{converter.ThemeLight, converter.ThemeDark}))
	assert.False(t, isValidEnumValue("Dark", []string{"dark"}))
}
