package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stackvity/converty/internal/cli/hooks"
	"github.com/stackvity/converty/internal/cli/i18n"
	"github.com/stackvity/converty/pkg/converter"
)

// --- Constants ---

// listHeightMargin is the number of rows used by header, progress bar and footer.
const listHeightMargin = 4

const listUpdateDebounceDuration = 50 * time.Millisecond

// --- Model Struct ---

// Model is the TUI state for one batch: a progress bar fed by the progress
// channel and a list of units fed by the status hooks.
type Model struct {
	list    list.Model
	spinner spinner.Model
	bar     progress.Model
	styles  Styles
	loc     *i18n.Localizer
	version string

	width       int
	height      int
	initialized bool

	// units holds one entry per input seen so far, in the order first seen.
	units   []listItem
	itemMap map[string]int
	summary Summary

	// phaseMessage is the localized label of the latest progress event.
	phaseMessage string
	current      int
	total        int
	done         bool
	quitting     bool
	listDirty    bool

	// onQuit is called when the user quits before the batch is complete.
	onQuit func()
}

// listItem is one unit in the TUI list.
type listItem struct {
	path     string
	status   converter.Status
	message  string
	duration time.Duration
	styles   *Styles
}

// Summary holds the counts shown in the footer.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	StartTime time.Time
}

// Options configures NewModel.
type Options struct {
	Theme     converter.Theme
	Localizer *i18n.Localizer
	Version   string
	// OnQuit cancels the batch; it is only called if the user quits early.
	OnQuit func()
}

// --- Bubble Tea Interface Implementations ---

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles key input and the hook messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - listHeightMargin
		if listHeight < 1 {
			listHeight = 1
		}
		m.list.SetSize(m.width, listHeight)
		m.bar.Width = max(m.width-4, 10)
		m.initialized = true

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if !m.done && m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
		var listCmd tea.Cmd
		m.list, listCmd = m.list.Update(msg)
		cmds = append(cmds, listCmd)

	case spinner.TickMsg:
		if m.quitting || m.done {
			return m, nil
		}
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmds = append(cmds, spinnerCmd)

	// --- Custom Messages from Library Hooks ---
	case hooks.BatchStartMsg:
		m.total = msg.Total
		m.summary.Total = msg.Total
		m.summary.StartTime = time.Now()

	case hooks.UnitStatusMsg:
		idx, ok := m.itemMap[msg.Path]
		if !ok {
			m.units = append(m.units, listItem{path: msg.Path, status: converter.StatusPending, styles: &m.styles})
			idx = len(m.units) - 1
			m.itemMap[msg.Path] = idx
		}
		item := &m.units[idx]
		if isFinalStatus(msg.Status) && !isFinalStatus(item.status) {
			m.incrementSummaryCount(msg.Status)
		}
		item.status = msg.Status
		item.message = msg.Message
		item.duration = msg.Duration
		cmds = append(cmds, m.debounceListUpdate())

	case hooks.ProgressMsg:
		ev := msg.Event
		m.current, m.total = ev.Current, ev.Total
		if ev.Done {
			m.phaseMessage = m.loc.T(i18n.KeyFinished)
		} else {
			m.phaseMessage = m.loc.T(i18n.KeyProcessing, filepath.Base(ev.Label))
		}

	case hooks.BatchCompleteMsg:
		m.done = true
		m.current = msg.Result.Total
		m.phaseMessage = m.loc.T(i18n.KeyFinished)
		// Refresh the list once more so final states are visible before exit.
		m.syncList()
		cmds = append(cmds, tea.Quit)

	case UpdateListMsg:
		m.syncList()
	}

	return m, tea.Batch(cmds...)
}

// View renders header, progress bar, unit list and footer.
func (m *Model) View() string {
	if m.quitting && !m.done {
		return m.loc.T(i18n.KeyCancelled) + "\n"
	}
	if !m.initialized {
		return "..."
	}

	// --- Header ---
	headerLeft := fmt.Sprintf("converty %s", m.version)
	headerRight := m.phaseMessage
	if !m.done && m.phaseMessage != "" {
		headerRight = m.spinner.View() + " " + m.phaseMessage
	}
	header := m.styles.Header.Width(m.width).Render(spread(m.width-2, headerLeft, headerRight))

	// --- Progress ---
	percent := 0.0
	if m.total > 0 {
		percent = float64(m.current) / float64(m.total)
	}
	bar := m.bar.ViewAs(percent)

	// --- Footer ---
	elapsed := time.Duration(0)
	if !m.summary.StartTime.IsZero() {
		elapsed = time.Since(m.summary.StartTime).Round(time.Second)
	}
	footerLeft := fmt.Sprintf("%d/%d | ✓ %d | ✗ %d | %s",
		m.current, m.total, m.summary.Succeeded, m.summary.Failed, elapsed)
	footer := m.styles.Footer.Width(m.width).Render(spread(m.width-2, footerLeft, "q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		bar,
		m.list.View(),
		footer,
	)
}

// spread places left and right at the edges of a line of width w.
func spread(w int, left, right string) string {
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.PlaceHorizontal(gap, lipgloss.Center, " "), right)
}

// --- Helper Methods ---

// NewModel creates the initial model for the TUI.
func NewModel(opts Options) Model {
	styles := NewStyles(PaletteFor(opts.Theme))
	loc := opts.Localizer
	if loc == nil {
		loc = i18n.New(converter.DefaultLanguage)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.StatusProcessing

	b := progress.New(progress.WithSolidFill(string(styles.Palette.Success)))
	b.EmptyColor = string(styles.Palette.Secondary)

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = styles.SelectedTitle
	delegate.Styles.SelectedDesc = styles.SelectedDesc
	delegate.Styles.NormalTitle = styles.NormalTitle
	delegate.Styles.NormalDesc = styles.NormalDesc

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		list:    l,
		spinner: s,
		bar:     b,
		styles:  styles,
		loc:     loc,
		version: opts.Version,
		units:   make([]listItem, 0, 16),
		itemMap: make(map[string]int),
		onQuit:  opts.OnQuit,
	}
}

// Done reports whether the batch finished before the program exited.
func (m *Model) Done() bool { return m.done }

func isFinalStatus(status converter.Status) bool {
	return status == converter.StatusSuccess || status == converter.StatusFailed
}

func (m *Model) incrementSummaryCount(status converter.Status) {
	switch status {
	case converter.StatusSuccess:
		m.summary.Succeeded++
	case converter.StatusFailed:
		m.summary.Failed++
	}
}

func (m *Model) syncList() {
	m.listDirty = false
	items := make([]list.Item, len(m.units))
	for i, item := range m.units {
		items[i] = item
	}
	m.list.SetItems(items)
}

// --- List Item Interface ---

// FilterValue implements the list.Item interface.
func (i listItem) FilterValue() string { return i.path }

// Title implements the list.Item interface.
func (i listItem) Title() string { return filepath.Base(i.path) }

// Description implements the list.Item interface.
func (i listItem) Description() string {
	st := i.styles
	var statusStyle lipgloss.Style
	statusIcon := " "
	switch i.status {
	case converter.StatusSuccess:
		statusStyle = st.StatusSuccess
		statusIcon = "✓"
	case converter.StatusFailed:
		statusStyle = st.StatusFailed
		statusIcon = "✗"
	case converter.StatusProcessing:
		statusStyle = st.StatusProcessing
		statusIcon = "…"
	default:
		statusStyle = st.StatusPending
	}

	details := ""
	switch i.status {
	case converter.StatusFailed:
		details = i.message
	case converter.StatusSuccess:
		details = formatDuration(i.duration)
	}
	return fmt.Sprintf("%s %s", statusStyle.Render("["+statusIcon+"]"), details)
}

// formatDuration formats duration for display.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// --- Update Debouncing ---

// UpdateListMsg signals that the list component should update its items.
type UpdateListMsg struct{}

// debounceListUpdate schedules one list refresh for a burst of status changes.
func (m *Model) debounceListUpdate() tea.Cmd {
	if m.listDirty {
		return nil
	}
	m.listDirty = true
	return tea.Tick(listUpdateDebounceDuration, func(time.Time) tea.Msg { return UpdateListMsg{} })
}
