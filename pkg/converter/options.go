package converter

import (
	"log/slog"
	"time"

	"github.com/stackvity/converty/pkg/converter/engine"
	"github.com/stackvity/converty/pkg/converter/history"
)

// Hooks defines callbacks for status updates during a batch.
// Implementations MUST be thread-safe: with a concurrent backend OnUnitStatus
// is called from several worker goroutines.
type Hooks interface {
	OnBatchStart(batchID string, total int) error
	OnUnitStatus(path string, status Status, message string, duration time.Duration) error
	OnBatchComplete(result Result) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnBatchStart implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnBatchStart(batchID string, total int) error { return nil }

// OnUnitStatus implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnUnitStatus(path string, status Status, message string, duration time.Duration) error { // minimal comment
	return nil
}

// OnBatchComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnBatchComplete(result Result) error { return nil }

// BackendResolver maps a direction and engine id to a backend.
// *engine.Resolver satisfies it.
type BackendResolver interface {
	Resolve(direction engine.Direction, id engine.EngineID) (engine.Backend, error)
}

// Packager bundles produced files into one archive in outputDir.
// *archive.Packer satisfies it.
type Packager interface {
	Pack(files []string, outputDir string, direction engine.Direction) (string, error)
}

// Options holds all configuration for the orchestrator and the CLI around it.
type Options struct {
	// --- Conversion ---
	Direction   Direction `mapstructure:"conversionType"` // pdf_to_pptx or pptx_to_pdf
	Engine      EngineID  `mapstructure:"pdfEngine"`      // DeckToRaster backend
	Mode        Mode      `mapstructure:"mode"`           // recorded in history only
	Zip         bool      `mapstructure:"zip"`
	Concurrency int       `mapstructure:"concurrency"` // >1 only takes effect on concurrent backends
	DPI         float64   `mapstructure:"dpi"`
	SlideSize   string    `mapstructure:"slideSize"` // "16:9" or "4:3"
	SofficePath string    `mapstructure:"sofficePath"`

	// --- Persistence ---
	HistoryFile string `mapstructure:"historyFile"`
	PrefsFile   string `mapstructure:"prefsFile"`
	MetricsFile string `mapstructure:"metricsFile"`

	// --- Presentation ---
	Language   string `mapstructure:"language"`
	Theme      Theme  `mapstructure:"theme"`
	TuiEnabled bool   `mapstructure:"tuiEnabled"`
	Verbose    bool   `mapstructure:"verbose"`

	// --- Invocation (flags only) ---
	InputPaths []string `mapstructure:"-"`
	InputDir   string   `mapstructure:"-"`
	OutputPath string   `mapstructure:"-"`
	SavePrefs  bool     `mapstructure:"-"`

	// --- Application Info ---
	AppVersion     string `mapstructure:"-"`
	ConfigFilePath string `mapstructure:"-"` // config file actually loaded, if any
	ProfileName    string `mapstructure:"-"`

	// --- Injected Dependencies ---
	Logger         slog.Handler         `mapstructure:"-"` // Required
	EventHooks     Hooks                `mapstructure:"-"` // Defaults to NoOpHooks
	Resolver       BackendResolver      `mapstructure:"-"` // Defaults to NewResolver(opts)
	ProcessRunner  engine.ProcessRunner `mapstructure:"-"` // Needed by the headless backend
	AppLauncher    engine.AppLauncher   `mapstructure:"-"` // Defaults to engine.DefaultLauncher
	Ledger         history.Ledger       `mapstructure:"-"` // Defaults to a CSV ledger at HistoryFile
	Packer         Packager             `mapstructure:"-"` // Defaults to archive.Packer
	ProgressBuffer int                  `mapstructure:"-"` // Defaults to DefaultProgressBuffer
}
