// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"reflect"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/flowboard/internal/config"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/services"
)

// Actions are the board operations the UI can request. Implementations
// must not block; results arrive as later snapshots.
type Actions interface {
	AddTask(req services.AddTaskRequest)
	Cycle(id string)
	Focus(id string)
	ClearFocus()
	Delete(id string)
	StartTimer()
	StopTimer()
	StartBreak()
}

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// snapshotMsg carries a fresh board snapshot into the program.
type snapshotMsg domain.BoardSnapshot

type mode int

const (
	modeBoard mode = iota
	modeAdd
	modeFilter
)

// typeTabs are the board tabs in display order; "" shows every type.
var typeTabs = []domain.TaskType{"", domain.TypeProject, domain.TypeDaily}

// Model represents the TUI state.
type Model struct {
	snap    domain.BoardSnapshot
	actions Actions
	theme   config.ThemeConfig
	width   int
	height  int

	mode          mode
	column        int // index into domain.ValidStatuses
	row           int
	tab           int // index into typeTabs
	confirmDelete bool

	form   addForm
	filter textinput.Model
}

// NewModel creates a new TUI model.
func NewModel(initial domain.BoardSnapshot, actions Actions, theme *config.ThemeConfig) Model {
	fi := textinput.New()
	fi.Prompt = "/"
	fi.Placeholder = "filter titles"
	fi.CharLimit = 60

	return Model{
		snap:    initial,
		actions: actions,
		theme:   resolveTheme(theme),
		width:   getTerminalWidth(),
		filter:  fi,
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = domain.BoardSnapshot(msg)
		m.clampRow()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	switch m.mode {
	case modeAdd:
		return m.updateAdd(msg)
	case modeFilter:
		return m.updateFilter(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// Any key other than a second [d] cancels a pending delete.
	confirming := m.confirmDelete
	m.confirmDelete = false

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		if m.column > 0 {
			m.column--
			m.clampRow()
		}
	case "right", "l":
		if m.column < len(domain.ValidStatuses)-1 {
			m.column++
			m.clampRow()
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.columnTasks(m.column))-1 {
			m.row++
		}
	case "tab":
		m.tab = (m.tab + 1) % len(typeTabs)
		m.clampRow()
	case "a", "n":
		m.mode = modeAdd
		m.form = newAddForm(m.width, typeTabs[m.tab])
		return m, textinput.Blink
	case "/":
		m.mode = modeFilter
		m.filter.Focus()
		return m, textinput.Blink
	case "esc":
		m.filter.SetValue("")
		m.clampRow()
	case "enter", " ":
		if task := m.selected(); task != nil {
			m.actions.Cycle(task.ID)
		}
	case "f":
		if task := m.selected(); task != nil {
			m.actions.Focus(task.ID)
		}
	case "x":
		m.actions.ClearFocus()
	case "s":
		if m.snap.Timer.Status.IsActive() {
			m.actions.StopTimer()
		} else {
			m.actions.StartTimer()
		}
	case "b":
		m.actions.StartBreak()
	case "d":
		task := m.selected()
		if task == nil {
			break
		}
		if confirming {
			m.actions.Delete(task.ID)
		} else {
			m.confirmDelete = true
		}
	}
	return m, nil
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, done, submit, cmd := m.form.update(msg)
	m.form = form
	if !done {
		return m, cmd
	}
	if submit {
		m.actions.AddTask(form.request())
	}
	m.mode = modeBoard
	return m, nil
}

func (m Model) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.mode = modeBoard
			m.filter.Blur()
			m.clampRow()
			return m, nil
		case "esc", "ctrl+c":
			m.mode = modeBoard
			m.filter.Blur()
			m.filter.SetValue("")
			m.clampRow()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.row = 0
	return m, cmd
}

// columnTasks returns the visible tasks of one column after the type tab
// and the title filter.
func (m Model) columnTasks(column int) []*domain.Task {
	tasks := m.snap.Column(domain.ValidStatuses[column], typeTabs[m.tab])
	if query := m.filter.Value(); query != "" {
		tasks = services.FuzzyFilter(tasks, query)
	}
	return tasks
}

// selected returns the task under the cursor, or nil.
func (m Model) selected() *domain.Task {
	tasks := m.columnTasks(m.column)
	if m.row < 0 || m.row >= len(tasks) {
		return nil
	}
	return tasks[m.row]
}

func (m *Model) clampRow() {
	n := len(m.columnTasks(m.column))
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// progressBar returns a bar styled for the timer status.
func (m Model) progressBar() progress.Model {
	var pbar progress.Model
	if m.snap.Timer.Status == domain.TimerBreak {
		pbar = progress.New(progress.WithGradient(m.theme.BreakGradientStart, m.theme.BreakGradientEnd))
	} else {
		pbar = progress.New(progress.WithGradient(m.theme.FocusGradientStart, m.theme.FocusGradientEnd))
	}
	pbar.Width = max(m.width-16, 20)
	return pbar
}
