// Package tui is the terminal view of the activity log. It renders only the
// rows inside the scroll window, so drawing cost stays flat as the buffer
// fills.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"activitylog/filter"
	"activitylog/models"
	"activitylog/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	searchDebounce = 300 * time.Millisecond
	clockInterval  = time.Second
	overscan       = 5

	maxInlinePayloadLines = 12
	headerLines           = 2
)

type changeMsg store.Change

type storeClosedMsg struct{}

// clockMsg re-evaluates time-window filters while no store change arrives.
type clockMsg time.Time

// searchMsg applies a debounced query; stale sequence numbers are ignored.
type searchMsg struct {
	seq   int
	query string
}

type Model struct {
	store   *store.Store
	changes <-chan store.Change

	keys   keyMap
	help   help.Model
	styles styles
	search textinput.Model
	detail viewport.Model

	events   []models.LogEvent
	filters  models.FilterState
	layout   Layout
	expanded map[string]bool
	payloads map[string][]string

	cursor     int
	scrollTop  int
	width      int
	height     int
	searchSeq  int
	clockOn    bool
	showDetail bool
	status     string
}

// New subscribes to s immediately so no change between New and the first
// render is missed. Call Close when done.
func New(s *store.Store) *Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search events"
	search.CharLimit = filter.MaxQueryLength

	m := &Model{
		store:    s,
		changes:  s.Subscribe(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		styles:   defaultStyles(),
		search:   search,
		detail:   viewport.New(0, 0),
		expanded: make(map[string]bool),
		payloads: make(map[string][]string),
		width:    80,
		height:   24,
	}
	m.search.SetValue(s.Filters().SearchQuery)
	m.refresh()
	if m.filters.AutoScroll {
		m.scrollToEnd()
	}
	return m
}

func (m *Model) Close() {
	m.store.Unsubscribe(m.changes)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), m.startClock())
}

// startClock arms the refresh tick when the time range depends on the
// current time. At most one tick is pending.
func (m *Model) startClock() tea.Cmd {
	if m.clockOn || !relative(m.filters.TimeRange) {
		return nil
	}
	m.clockOn = true
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func relative(r models.TimeRange) bool {
	_, ok := r.Window()
	return ok || r == models.TimeRangeToday
}

func waitForChange(ch <-chan store.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return storeClosedMsg{}
		}
		return changeMsg(c)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-4, 10)
		m.resizeDetail()
		m.clampScroll()
		return m, nil

	case changeMsg:
		m.applyChange(store.Change(msg))
		return m, tea.Batch(waitForChange(m.changes), m.startClock())

	case clockMsg:
		m.clockOn = false
		if !relative(m.filters.TimeRange) {
			return m, nil
		}
		m.refresh()
		return m, m.startClock()

	case storeClosedMsg:
		return m, tea.Quit

	case searchMsg:
		if msg.seq == m.searchSeq {
			m.store.SetSearchQuery(msg.query)
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyChange(c store.Change) {
	if c.Kind == store.EventsCleared {
		m.expanded = make(map[string]bool)
		m.payloads = make(map[string][]string)
		m.cursor, m.scrollTop = 0, 0
	}
	m.refresh()

	if c.Kind != store.EventAdded || c.Event == nil || !m.filters.AutoScroll {
		return
	}
	if n := len(m.events); n > 0 && m.events[n-1].ID == c.Event.ID {
		m.scrollToEnd()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.Focused() {
		return m.handleSearchKey(msg)
	}
	if m.showDetail {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back, m.keys.Detail):
			m.showDetail = false
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.pageSize())
	case key.Matches(msg, m.keys.Top):
		m.cursor, m.scrollTop = 0, 0
	case key.Matches(msg, m.keys.Bottom):
		m.scrollToEnd()
	case key.Matches(msg, m.keys.Expand):
		m.toggleExpanded()
	case key.Matches(msg, m.keys.Detail):
		m.openDetail()
	case key.Matches(msg, m.keys.Category):
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(models.AllCategories) {
			c := models.AllCategories[idx]
			m.store.ToggleCategory(c)
			m.refresh()
			m.status = fmt.Sprintf("%s %s", c.Label(), onOff(m.filters.Categories.Has(c)))
		}
	case key.Matches(msg, m.keys.Info):
		m.toggleSeverity(models.SeverityInfo)
	case key.Matches(msg, m.keys.Success):
		m.toggleSeverity(models.SeveritySuccess)
	case key.Matches(msg, m.keys.Warning):
		m.toggleSeverity(models.SeverityWarning)
	case key.Matches(msg, m.keys.Error):
		m.toggleSeverity(models.SeverityError)
	case key.Matches(msg, m.keys.TimeRange):
		r := m.store.CycleTimeRange()
		m.refresh()
		m.status = "Time range: " + r.Label()
		return m, m.startClock()
	case key.Matches(msg, m.keys.Search):
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Clear):
		m.store.ClearEvents()
		m.applyChange(store.Change{Kind: store.EventsCleared})
		m.status = "Events cleared"
	case key.Matches(msg, m.keys.AutoScroll):
		on := m.store.ToggleAutoScroll()
		m.refresh()
		if on {
			m.scrollToEnd()
		}
		m.status = "Auto-scroll " + onOff(on)
	case key.Matches(msg, m.keys.Reset):
		m.store.ResetFilters()
		m.searchSeq++
		m.search.SetValue("")
		m.refresh()
		m.status = "Filters reset"
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeDetail()
		m.clampScroll()
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Apply):
		m.search.Blur()
		m.searchSeq++
		m.store.SetSearchQuery(m.search.Value())
		m.refresh()
		return m, nil
	}

	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == prev {
		return m, cmd
	}

	m.searchSeq++
	seq, query := m.searchSeq, m.search.Value()
	return m, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchMsg{seq: seq, query: query}
	}))
}

func (m *Model) toggleSeverity(sev models.Severity) {
	m.store.ToggleSeverity(sev)
	m.refresh()
	m.status = fmt.Sprintf("%s %s", severityLabel(sev), onOff(m.filters.Severities.Has(sev)))
}

// refresh re-reads the filtered events, keeping the cursor on the same event
// when it is still visible.
func (m *Model) refresh() {
	var selected string
	if m.cursor < len(m.events) {
		selected = m.events[m.cursor].ID
	}

	m.events = m.store.FilteredEvents()
	m.filters = m.store.Filters()
	m.prune()
	m.relayout()

	if selected != "" {
		for i := range m.events {
			if m.events[i].ID == selected {
				m.cursor = i
				break
			}
		}
	}
	m.clampScroll()
}

// prune forgets row state for events no longer in the buffer. Rows hidden by
// a filter keep theirs.
func (m *Model) prune() {
	if len(m.expanded) == 0 && len(m.payloads) == 0 {
		return
	}
	live := make(map[string]struct{}, m.store.Len())
	for _, e := range m.store.Events() {
		live[e.ID] = struct{}{}
	}
	for id := range m.expanded {
		if _, ok := live[id]; !ok {
			delete(m.expanded, id)
		}
	}
	for id := range m.payloads {
		if _, ok := live[id]; !ok {
			delete(m.payloads, id)
		}
	}
}

func (m *Model) relayout() {
	events := m.events
	m.layout = NewLayout(len(events), func(i int) int {
		return m.rowHeight(events[i])
	})
}

func (m *Model) rowHeight(e models.LogEvent) int {
	if !m.expanded[e.ID] {
		return 1
	}
	return 1 + len(m.inlinePayload(e))
}

func (m *Model) listHeight() int {
	footer := 1 + lipgloss.Height(m.help.View(m.keys))
	return max(m.height-headerLines-footer, 1)
}

func (m *Model) pageSize() int {
	return max(m.listHeight()-1, 1)
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.ensureCursorVisible()
}

func (m *Model) scrollToEnd() {
	m.cursor = max(len(m.events)-1, 0)
	m.scrollTop = m.layout.MaxScroll(m.listHeight())
}

func (m *Model) ensureCursorVisible() {
	m.clampScroll()
	h := m.listHeight()
	top, bottom := m.layout.Offset(m.cursor), m.layout.Offset(m.cursor+1)
	switch {
	case top < m.scrollTop:
		m.scrollTop = top
	case bottom > m.scrollTop+h:
		m.scrollTop = min(bottom-h, top)
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	m.cursor = min(max(m.cursor, 0), max(len(m.events)-1, 0))
	m.scrollTop = min(max(m.scrollTop, 0), m.layout.MaxScroll(m.listHeight()))
}

func (m *Model) toggleExpanded() {
	if len(m.events) == 0 {
		return
	}
	id := m.events[m.cursor].ID
	if m.expanded[id] {
		delete(m.expanded, id)
	} else {
		m.expanded[id] = true
	}
	m.relayout()
	m.ensureCursorVisible()
}

func (m *Model) openDetail() {
	if len(m.events) == 0 {
		return
	}
	e := m.events[m.cursor]
	header := fmt.Sprintf("%s  %s  %s\n%s\n\n",
		e.Timestamp.Local().Format(time.RFC3339), e.EventType, e.ID, e.Message)
	m.resizeDetail()
	m.detail.SetContent(header + strings.Join(m.payloadLines(e), "\n"))
	m.detail.GotoTop()
	m.showDetail = true
}

func (m *Model) resizeDetail() {
	m.detail.Width = max(m.width-2, 1)
	m.detail.Height = max(m.listHeight()-2, 1)
}

func (m *Model) payloadLines(e models.LogEvent) []string {
	if lines, ok := m.payloads[e.ID]; ok {
		return lines
	}
	lines := strings.Split(prettyPayload(e.Payload), "\n")
	m.payloads[e.ID] = lines
	return lines
}

// inlinePayload is the part of the payload shown under an expanded row.
// Longer payloads are cut and point at the detail pane.
func (m *Model) inlinePayload(e models.LogEvent) []string {
	lines := m.payloadLines(e)
	if len(lines) <= maxInlinePayloadLines {
		return lines
	}
	out := make([]string, 0, maxInlinePayloadLines+1)
	out = append(out, lines[:maxInlinePayloadLines]...)
	return append(out, fmt.Sprintf("… %d more lines (v to view)", len(lines)-maxInlinePayloadLines))
}

func prettyPayload(payload map[string]any) string {
	if len(payload) == 0 {
		return "(no payload)"
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("(unprintable payload: %v)", err)
	}
	return string(b)
}

func severityLabel(sev models.Severity) string {
	s := string(sev)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')
	b.WriteString(m.filterBarView())
	b.WriteByte('\n')
	if m.showDetail {
		b.WriteString(m.styles.Border.Render(m.detail.View()))
	} else {
		b.WriteString(m.listView())
	}
	b.WriteByte('\n')
	b.WriteString(m.footerView())
	return b.String()
}

func (m *Model) truncate(s string) string {
	return lipgloss.NewStyle().MaxWidth(m.width).Render(s)
}

func (m *Model) headerView() string {
	stats := m.store.Stats()
	status := fmt.Sprintf("%d of %d events · buffer %d/%d · auto-scroll %s",
		len(m.events), stats.Buffered, stats.Buffered, stats.Capacity, onOff(m.filters.AutoScroll))
	if m.status != "" {
		status += " · " + m.status
	}
	return m.truncate(m.styles.Title.Render("Activity Log") + "  " + m.styles.Status.Render(status))
}

func (m *Model) filterBarView() string {
	var chips []string
	for i, c := range models.AllCategories {
		chips = append(chips, m.chip(fmt.Sprintf("%d %s", i+1, c.Label()), m.filters.Categories.Has(c)))
	}
	chips = append(chips, " ")
	for _, sev := range models.AllSeverities {
		chips = append(chips, m.chip(string(sev), m.filters.Severities.Has(sev)))
	}
	chips = append(chips, " ", m.styles.Status.Render("t "+m.filters.TimeRange.Label()))
	return m.truncate(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
}

func (m *Model) chip(label string, on bool) string {
	if on {
		return m.styles.ChipOn.Render(label)
	}
	return m.styles.ChipOff.Render(label)
}

func (m *Model) listView() string {
	h := m.listHeight()
	lines := make([]string, 0, h)

	if len(m.events) == 0 {
		msg := "No events yet"
		if m.store.Len() > 0 {
			msg = "No events match the current filters"
		}
		lines = append(lines, m.styles.Empty.Render(msg))
	} else {
		w := m.layout.Window(m.scrollTop, h, overscan)
		for i := w.Start; i < w.End; i++ {
			lines = append(lines, m.renderRow(i)...)
		}
		skip := min(max(m.scrollTop-w.OffsetTop, 0), len(lines))
		lines = lines[skip:]
		if len(lines) > h {
			lines = lines[:h]
		}
	}

	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(i int) []string {
	e := m.events[i]
	marker := "▸"
	if m.expanded[e.ID] {
		marker = "▾"
	}
	message := strings.ReplaceAll(e.Message, "\n", " ")

	row := fmt.Sprintf("%s %s %s %s %s",
		marker,
		m.styles.Time.Render(e.Timestamp.Local().Format("15:04:05")),
		m.styles.Severity(e.Severity).Render(strings.ToUpper(string(e.Severity))),
		m.styles.Category.Render(e.Category.Label()),
		message,
	)
	if i == m.cursor {
		row = m.styles.Selected.Render(row)
	}

	out := []string{m.truncate(row)}
	if m.expanded[e.ID] {
		for _, line := range m.inlinePayload(e) {
			out = append(out, m.truncate("    "+m.styles.Payload.Render(line)))
		}
	}
	return out
}

func (m *Model) footerView() string {
	var line string
	switch {
	case m.search.Focused() || m.search.Value() != "":
		line = m.search.View()
	default:
		line = m.styles.Status.Render(fmt.Sprintf("%d dropped notifications · %d duplicates",
			m.store.Stats().DroppedNotifications, m.store.Stats().Duplicates))
	}
	return m.truncate(line) + "\n" + m.help.View(m.keys)
}
