// Package prefs persists the user's last-used conversion choices between runs.
//
// Preferences are a JSON object stored under the user config directory. The
// file is optional: a missing file yields Defaults and nothing is written unless
// the user opts in with --save-prefs.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/engine"
)

// FileName is the preference file name inside the converty config directory.
const FileName = "preferences.json"

var (
	// ErrPrefsLoad indicates the preference file exists but could not be read or decoded.
	ErrPrefsLoad = errors.New("failed to load preferences")
	// ErrPrefsSave indicates the preference file could not be written.
	ErrPrefsSave = errors.New("failed to save preferences")
)

// Preferences mirrors the JSON document on disk. Keys keep the names older
// versions of the tool wrote so existing files load unchanged.
type Preferences struct {
	Language       string `json:"language" yaml:"language"`
	ConversionType string `json:"conversion_type" yaml:"conversion_type"`
	Mode           int    `json:"mode" yaml:"mode"`
	ZipOption      bool   `json:"zip_option" yaml:"zip_option"`
	PDFEngine      string `json:"pdf_engine" yaml:"pdf_engine"`
	Theme          string `json:"theme" yaml:"theme"`
}

// Defaults returns the preferences used when no file exists.
func Defaults() Preferences {
	return Preferences{
		Language:       converter.DefaultLanguage,
		ConversionType: string(converter.DefaultDirection),
		Mode:           int(converter.DefaultMode),
		ZipOption:      converter.DefaultZip,
		PDFEngine:      string(converter.DefaultEngine),
		Theme:          string(converter.DefaultTheme),
	}
}

// Normalize maps legacy and localized values onto canonical identifiers and
// fills unknown or empty fields from Defaults.
func (p Preferences) Normalize() Preferences {
	d := Defaults()
	out := p

	lang := strings.ToLower(strings.TrimSpace(p.Language))
	if lang != converter.LanguageEnglish && lang != converter.LanguageTurkish {
		lang = d.Language
	}
	out.Language = lang

	dir := engine.Direction(strings.ToLower(strings.TrimSpace(p.ConversionType)))
	if !dir.Valid() {
		dir = engine.Direction(d.ConversionType)
	}
	out.ConversionType = string(dir)

	if !converter.Mode(p.Mode).Valid() {
		out.Mode = d.Mode
	}

	// Older files store null for the engine when the direction was pdf_to_pptx.
	if id, err := engine.ParseEngine(p.PDFEngine); err == nil {
		out.PDFEngine = string(id)
	} else {
		out.PDFEngine = d.PDFEngine
	}

	out.Theme = string(parseTheme(p.Theme))
	return out
}

// parseTheme accepts canonical names plus the display labels written by older
// versions in either language.
func parseTheme(s string) converter.Theme {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(converter.ThemeDark), "koyu":
		return converter.ThemeDark
	case string(converter.ThemeLight), "default", "varsayılan":
		return converter.ThemeLight
	}
	return converter.DefaultTheme
}

// ConfigMap returns the preferences keyed by the configuration keys used by
// converter.Options, ready to be merged into the config layer.
func (p Preferences) ConfigMap() map[string]any {
	n := p.Normalize()
	return map[string]any{
		"language":       n.Language,
		"conversionType": n.ConversionType,
		"mode":           n.Mode,
		"zip":            n.ZipOption,
		"pdfEngine":      n.PDFEngine,
		"theme":          n.Theme,
	}
}

// FromOptions captures the choices of a finished run.
func FromOptions(opts converter.Options) Preferences {
	return Preferences{
		Language:       opts.Language,
		ConversionType: string(opts.Direction),
		Mode:           int(opts.Mode),
		ZipOption:      opts.Zip,
		PDFEngine:      string(opts.Engine),
		Theme:          string(opts.Theme),
	}.Normalize()
}

// Store loads and saves Preferences.
type Store interface {
	Load() (Preferences, error)
	Save(p Preferences) error
	Reset() error
	Path() string
}

// JSONStore is a Store backed by a single JSON file.
type JSONStore struct {
	path   string
	logger *slog.Logger
}

// DefaultPath returns <user config dir>/converty/preferences.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user config directory: %w", err)
	}
	return filepath.Join(dir, "converty", FileName), nil
}

// NewJSONStore creates a store for path. The file is not touched until Save or Reset.
func NewJSONStore(path string, loggerHandler slog.Handler) *JSONStore { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &JSONStore{
		path:   path,
		logger: slog.New(loggerHandler).With(slog.String("component", "prefs")),
	}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string { return s.path }

// Load reads the preference file. A missing file is not an error.
func (s *JSONStore) Load() (Preferences, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("No preference file, using defaults", slog.String("path", s.path))
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("%w: %s: %w", ErrPrefsLoad, s.path, err)
	}

	p := Defaults()
	if err := json.Unmarshal(data, &p); err != nil {
		// pdf_engine may be JSON null; that decodes fine. Anything else is corrupt.
		return Defaults(), fmt.Errorf("%w: %s: %w", ErrPrefsLoad, s.path, err)
	}
	return p.Normalize(), nil
}

// Save writes p atomically, creating the parent directory if needed.
func (s *JSONStore) Save(p Preferences) error {
	data, err := json.MarshalIndent(p.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrefsSave, err)
	}
	if err := s.write(data); err != nil {
		return err
	}
	s.logger.Info("Preferences saved", slog.String("path", s.path))
	return nil
}

// Reset removes the preference file so the next Load returns Defaults.
func (s *JSONStore) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", ErrPrefsSave, s.path, err)
	}
	s.logger.Info("Preferences reset", slog.String("path", s.path))
	return nil
}

func (s *JSONStore) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrPrefsSave, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+FileName+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrefsSave, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %w", ErrPrefsSave, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrPrefsSave, tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: rename into %s: %w", ErrPrefsSave, s.path, err)
	}
	return nil
}
