package converter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stackvity/converty/pkg/converter/engine"
)

// Direction selects which way a batch converts. See engine.Direction.
type Direction = engine.Direction

// Conversion directions.
const (
	DirectionRasterToDeck = engine.DirectionRasterToDeck
	DirectionDeckToRaster = engine.DirectionDeckToRaster
)

// EngineID names a DeckToRaster backend. See engine.EngineID.
type EngineID = engine.EngineID

// Engine identifiers.
const (
	EngineAutomation = engine.EngineAutomation
	EngineHeadless   = engine.EngineHeadless
)

// Status defines the processing states of a single unit.
type Status string

// Constants representing the defined unit statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// Mode records how the inputs of a batch were selected. It is stored in history
// and has no effect on conversion.
type Mode int

// Selection modes, numbered as they are persisted.
const (
	ModeSingle   Mode = 1
	ModeMultiple Mode = 2
	ModeFolder   Mode = 3
)

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool { return m >= ModeSingle && m <= ModeFolder }

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeMultiple:
		return "multiple"
	case ModeFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// ParseMode accepts a mode name or its persisted number.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if m := Mode(n); m.Valid() {
			return m, nil
		}
		return 0, fmt.Errorf("%w: mode %d out of range 1-3", ErrConfigValidation, n)
	}
	for _, m := range []Mode{ModeSingle, ModeMultiple, ModeFolder} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode '%s'", ErrConfigValidation, s)
}

// Theme selects the terminal palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Supported interface languages.
const (
	LanguageEnglish = "en"
	LanguageTurkish = "tr"
)
