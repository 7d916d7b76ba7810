package i18n

import (
	"testing"

	"github.com/stackvity/converty/pkg/converter"
	"github.com/stretchr/testify/assert"
)

func TestCatalogsHaveSameKeys(t *testing.T) {
	en := messages[converter.LanguageEnglish]
	tr := messages[converter.LanguageTurkish]
	assert.Equal(t, len(en), len(tr))
	for key := range en {
		_, ok := tr[key]
		assert.True(t, ok, "missing Turkish message for %q", key)
	}
}

func TestLocalizer_T(t *testing.T) {
	en := New("en")
	tr := New("tr")

	assert.Equal(t, "Processing: deck.pdf", en.T(KeyProcessing, "deck.pdf"))
	assert.Equal(t, "İşleniyor: deck.pdf", tr.T(KeyProcessing, "deck.pdf"))
	assert.Equal(t, "Process completed!", en.T(KeyFinished))
	assert.Equal(t, "İşlem tamamlandı!", tr.T(KeyFinished))
	assert.Equal(t, "Seçili dosya yok! İşlem iptal edildi.", tr.T(KeyNoFileSelected))
	assert.Equal(t, "Process completed with errors. 1 of 3 files failed:", en.T(KeyPartial, 1, 3))
}

func TestNew_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	l := New("de")
	assert.Equal(t, "en", l.Language())
	assert.Equal(t, "Date", l.T(KeyDate))
}

func TestLocalizer_Labels(t *testing.T) {
	en, tr := New("en"), New("tr")

	assert.Equal(t, "PDF to PPTX", en.Direction(converter.DirectionRasterToDeck))
	assert.Equal(t, "PPTX'ten PDF'e", tr.Direction(converter.DirectionDeckToRaster))
	assert.Equal(t, "legacy_key", en.Direction("legacy_key"))

	assert.Equal(t, "PowerPoint COM (Sadece Windows)", tr.Engine(converter.EngineAutomation))
	assert.Equal(t, "LibreOffice", en.Engine(converter.EngineHeadless))

	assert.Equal(t, "Koyu", tr.Theme(converter.ThemeDark))
	assert.Equal(t, "Light", en.Theme(converter.ThemeLight))

	assert.Equal(t, "Select multiple PPTX files", en.Mode(converter.DirectionDeckToRaster, converter.ModeMultiple))
	assert.Equal(t, "PDF dosyanı seç", tr.Mode(converter.DirectionRasterToDeck, converter.ModeSingle))
	assert.Equal(t, "Bir klasör seç", tr.Mode(converter.DirectionDeckToRaster, converter.ModeFolder))
	assert.Equal(t, "unknown", en.Mode(converter.DirectionRasterToDeck, converter.Mode(0)))
}
