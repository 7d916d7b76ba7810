// Package i18n holds the user-facing strings of the CLI in English and Turkish.
//
// Labels are display-only. Control flow never depends on translated text;
// directions, engines, modes and themes are identified by their canonical
// values and only mapped to a label for output.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/stackvity/converty/pkg/converter"
)

// Key identifies a message in the catalog.
type Key string

const (
	KeyProcessing     Key = "processing"
	KeyFinished       Key = "finished"
	KeyCompleted      Key = "completed"
	KeyZipCompleted   Key = "zip_completed"
	KeyPartial        Key = "partial"
	KeyFailed         Key = "failed"
	KeyNoFileSelected Key = "no_file_selected"
	KeyNoOutputFolder Key = "no_output_folder"
	KeyCancelled      Key = "cancelled"
	KeyHistoryTitle   Key = "operation_history"
	KeyHistoryEmpty   Key = "history_empty"
	KeyHistoryCleared Key = "history_cleared"
	KeyPrefsSaved     Key = "prefs_saved"
	KeyPrefsReset     Key = "prefs_reset"

	KeyDate           Key = "date"
	KeyConversionType Key = "conversion_type"
	KeyMode           Key = "mode"
	KeyCompressed     Key = "compressed"
	KeyFilesProcessed Key = "files_processed"
	KeyOutputLocation Key = "output_location"

	KeyPdfToPptx     Key = "pdf_to_pptx"
	KeyPptxToPdf     Key = "pptx_to_pdf"
	KeyPowerPointCOM Key = "powerpoint_com"
	KeyLibreOffice   Key = "libreoffice"
	KeyLightTheme    Key = "default_theme"
	KeyDarkTheme     Key = "dark_theme"

	KeySelectPDF          Key = "select_pdf"
	KeySelectMultiplePDFs Key = "select_multiple_pdfs"
	KeySelectPPTX         Key = "select_pptx"
	KeySelectMultiplePPTX Key = "select_multiple_pptxs"
	KeySelectFolder       Key = "select_folder"
)

var messages = map[string]map[Key]string{
	converter.LanguageEnglish: {
		KeyProcessing:     "Processing: %s",
		KeyFinished:       "Process completed!",
		KeyCompleted:      "Process completed! Files saved:",
		KeyZipCompleted:   "Process completed! All files are in",
		KeyPartial:        "Process completed with errors. %d of %d files failed:",
		KeyFailed:         "Process failed:",
		KeyNoFileSelected: "No files selected! Process cancelled.",
		KeyNoOutputFolder: "No output folder selected! Process cancelled.",
		KeyCancelled:      "Process cancelled.",
		KeyHistoryTitle:   "Operation History:",
		KeyHistoryEmpty:   "No operations recorded yet.",
		KeyHistoryCleared: "History cleared.",
		KeyPrefsSaved:     "Preferences saved to %s",
		KeyPrefsReset:     "Preferences reset to defaults.",

		KeyDate:           "Date",
		KeyConversionType: "Conversion Type",
		KeyMode:           "Mode",
		KeyCompressed:     "Compressed",
		KeyFilesProcessed: "Files Processed",
		KeyOutputLocation: "Output Location",

		KeyPdfToPptx:     "PDF to PPTX",
		KeyPptxToPdf:     "PPTX to PDF",
		KeyPowerPointCOM: "PowerPoint COM",
		KeyLibreOffice:   "LibreOffice",
		KeyLightTheme:    "Light",
		KeyDarkTheme:     "Dark",

		KeySelectPDF:          "Select a PDF file",
		KeySelectMultiplePDFs: "Select multiple PDF files",
		KeySelectPPTX:         "Select a PPTX file",
		KeySelectMultiplePPTX: "Select multiple PPTX files",
		KeySelectFolder:       "Select a folder",
	},
	converter.LanguageTurkish: {
		KeyProcessing:     "İşleniyor: %s",
		KeyFinished:       "İşlem tamamlandı!",
		KeyCompleted:      "İşlem tamamlandı! Kaydedilen dosyalar:",
		KeyZipCompleted:   "İşlem tamamlandı! Tüm dosyalar:",
		KeyPartial:        "İşlem hatalarla tamamlandı. %d / %d dosya başarısız:",
		KeyFailed:         "İşlem başarısız:",
		KeyNoFileSelected: "Seçili dosya yok! İşlem iptal edildi.",
		KeyNoOutputFolder: "Çıktı klasörü seçilmedi! İşlem iptal edildi.",
		KeyCancelled:      "İşlem iptal edildi.",
		KeyHistoryTitle:   "İşlem Geçmişi:",
		KeyHistoryEmpty:   "Henüz kayıtlı işlem yok.",
		KeyHistoryCleared: "Geçmiş temizlendi.",
		KeyPrefsSaved:     "Tercihler kaydedildi: %s",
		KeyPrefsReset:     "Tercihler varsayılana döndürüldü.",

		KeyDate:           "Tarih",
		KeyConversionType: "Dönüşüm Türü",
		KeyMode:           "Mod",
		KeyCompressed:     "Sıkıştırıldı",
		KeyFilesProcessed: "İşlenen Dosyalar",
		KeyOutputLocation: "Kayıt Konumu",

		KeyPdfToPptx:     "PDF'ten PPTX'e",
		KeyPptxToPdf:     "PPTX'ten PDF'e",
		KeyPowerPointCOM: "PowerPoint COM (Sadece Windows)",
		KeyLibreOffice:   "LibreOffice",
		KeyLightTheme:    "Varsayılan",
		KeyDarkTheme:     "Koyu",

		KeySelectPDF:          "PDF dosyanı seç",
		KeySelectMultiplePDFs: "Birden fazla PDF dosyası seç",
		KeySelectPPTX:         "PPTX dosyanı seç",
		KeySelectMultiplePPTX: "Birden fazla PPTX dosyası seç",
		KeySelectFolder:       "Bir klasör seç",
	},
}

var (
	tags = map[string]language.Tag{
		converter.LanguageEnglish: language.English,
		converter.LanguageTurkish: language.Turkish,
	}
	cat = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for lang, msgs := range messages {
		tag := tags[lang]
		for key, msg := range msgs {
			// Only fails for malformed message trees; plain strings never do.
			_ = b.SetString(tag, string(key), msg)
		}
	}
	return b
}

// Localizer renders catalog messages in one language.
type Localizer struct {
	lang    string
	printer *message.Printer
}

// New returns a Localizer for lang ("en" or "tr"). Unknown languages fall back
// to English.
func New(lang string) *Localizer {
	tag, ok := tags[lang]
	if !ok {
		lang, tag = converter.LanguageEnglish, language.English
	}
	return &Localizer{lang: lang, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// Language returns the resolved language code.
func (l *Localizer) Language() string { return l.lang }

// T formats the message for key with args.
func (l *Localizer) T(key Key, args ...any) string {
	return l.printer.Sprintf(string(key), args...)
}

// Direction returns the display name of a conversion direction.
func (l *Localizer) Direction(d converter.Direction) string {
	switch d {
	case converter.DirectionRasterToDeck:
		return l.T(KeyPdfToPptx)
	case converter.DirectionDeckToRaster:
		return l.T(KeyPptxToPdf)
	}
	return string(d)
}

// Engine returns the display name of a DeckToRaster backend.
func (l *Localizer) Engine(id converter.EngineID) string {
	switch id {
	case converter.EngineAutomation:
		return l.T(KeyPowerPointCOM)
	case converter.EngineHeadless:
		return l.T(KeyLibreOffice)
	}
	return string(id)
}

// Theme returns the display name of a theme.
func (l *Localizer) Theme(t converter.Theme) string {
	if t == converter.ThemeDark {
		return l.T(KeyDarkTheme)
	}
	return l.T(KeyLightTheme)
}

// Mode describes a selection mode for a direction, e.g. "Select multiple PDF files".
func (l *Localizer) Mode(d converter.Direction, m converter.Mode) string {
	deck := d == converter.DirectionDeckToRaster
	switch m {
	case converter.ModeSingle:
		if deck {
			return l.T(KeySelectPPTX)
		}
		return l.T(KeySelectPDF)
	case converter.ModeMultiple:
		if deck {
			return l.T(KeySelectMultiplePPTX)
		}
		return l.T(KeySelectMultiplePDFs)
	case converter.ModeFolder:
		return l.T(KeySelectFolder)
	}
	return m.String()
}
