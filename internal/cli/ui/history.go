package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/stackvity/converty/internal/cli/i18n"
	"github.com/stackvity/converty/pkg/converter"
	"github.com/stackvity/converty/pkg/converter/history"
)

// RenderHistory draws the ledger as a table with localized headers. Direction
// and mode columns are rendered in the current language; unknown keys from
// older ledgers are shown verbatim.
func RenderHistory(records []history.Record, loc *i18n.Localizer, st Styles) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		dir := converter.Direction(r.Direction)
		rows = append(rows, []string{
			r.Timestamp.Format(history.TimeLayout),
			loc.Direction(dir),
			loc.Mode(dir, converter.Mode(r.Mode)),
			history.Mark(r.Compressed),
			strconv.Itoa(r.Files),
			r.Location,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.TableBorder).
		Headers(
			loc.T(i18n.KeyDate),
			loc.T(i18n.KeyConversionType),
			loc.T(i18n.KeyMode),
			loc.T(i18n.KeyCompressed),
			loc.T(i18n.KeyFilesProcessed),
			loc.T(i18n.KeyOutputLocation),
		).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			// Row 0 is the header row.
			if row == 0 {
				return st.TableHeader
			}
			return st.TableCell
		})
	return t.Render()
}
