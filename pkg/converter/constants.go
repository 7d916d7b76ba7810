package converter

import "github.com/stackvity/converty/pkg/converter/engine"

// Constants defining default values for configuration options. They seed the
// viper defaults in the configuration layer.
const (
	// DefaultDirection is the conversion performed when none is configured.
	DefaultDirection = DirectionRasterToDeck
	// DefaultEngine is the DeckToRaster backend used when none is configured.
	DefaultEngine = EngineHeadless
	// DefaultMode is the selection mode recorded when none is configured.
	DefaultMode = ModeSingle
	// DefaultZip controls whether outputs are bundled into an archive.
	DefaultZip = false
	// DefaultConcurrency keeps batches sequential.
	DefaultConcurrency = 1
	// DefaultDPI is the rasterization resolution for RasterToDeck.
	DefaultDPI = engine.DefaultDPI
	// DefaultSlideSize is the slide canvas aspect ratio.
	DefaultSlideSize = "16:9"
	// DefaultSofficePath is the headless office binary looked up on PATH.
	DefaultSofficePath = engine.DefaultSofficeBinary
	// DefaultLanguage is the interface language.
	DefaultLanguage = LanguageTurkish
	// DefaultTheme is the terminal palette.
	DefaultTheme = ThemeLight
	// DefaultTuiEnabled is the default state for the Terminal UI.
	DefaultTuiEnabled = true
	// DefaultVerbose is the default state for verbose logging.
	DefaultVerbose = false
	// DefaultProgressBuffer is the capacity of the progress event channel.
	DefaultProgressBuffer = 16
)

// FinishedLabel is the Label of the final progress event of every batch.
const FinishedLabel = "finished"

// Allowed values for enumerated options.
var (
	ValidSlideSizes = []string{"16:9", "4:3"}
	ValidLanguages  = []string{LanguageEnglish, LanguageTurkish}
)
