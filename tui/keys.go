package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Expand     key.Binding
	Detail     key.Binding
	Category   key.Binding
	Info       key.Binding
	Success    key.Binding
	Warning    key.Binding
	Error      key.Binding
	TimeRange  key.Binding
	Search     key.Binding
	Clear      key.Binding
	AutoScroll key.Binding
	Reset      key.Binding
	Help       key.Binding
	Quit       key.Binding
	Back       key.Binding
	Apply      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Expand:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
		Detail:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "payload")),
		Category:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "category")),
		Info:       key.NewBinding(key.WithKeys("i", "f1"), key.WithHelp("i", "info")),
		Success:    key.NewBinding(key.WithKeys("s", "f2"), key.WithHelp("s", "success")),
		Warning:    key.NewBinding(key.WithKeys("w", "f3"), key.WithHelp("w", "warning")),
		Error:      key.NewBinding(key.WithKeys("e", "f4"), key.WithHelp("e", "error")),
		TimeRange:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		AutoScroll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-scroll")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset filters")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Apply:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Category, k.TimeRange, k.Search, k.Expand, k.AutoScroll, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Category, k.Info, k.Success, k.Warning, k.Error, k.TimeRange},
		{k.Search, k.Expand, k.Detail, k.Clear, k.AutoScroll, k.Reset},
		{k.Help, k.Quit},
	}
}
