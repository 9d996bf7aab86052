package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/flowboard/internal/config"
	"github.com/xvierd/flowboard/internal/domain"
	"github.com/xvierd/flowboard/internal/services"
)

// formField is the focused row of the add-task form.
type formField int

const (
	fieldTitle formField = iota
	fieldFocusTime
	fieldEnergy
	fieldType
	fieldCount
)

var (
	energyOptions = []domain.EnergyLevel{domain.EnergyHigh, domain.EnergyMedium, domain.EnergyLow}
	typeOptions   = []domain.TaskType{domain.TypeProject, domain.TypeDaily}
)

// addForm collects a new task. Option rows work like a horizontal picker.
type addForm struct {
	title  textinput.Model
	field  formField
	focus  int // index into domain.AllowedFocusTimes
	energy int
	kind   int
}

func newAddForm(width int, taskType domain.TaskType) addForm {
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 120
	ti.Width = max(width-20, 20)
	ti.Focus()

	f := addForm{title: ti, focus: 1, energy: 1}
	if taskType == domain.TypeDaily {
		f.kind = 1
	}
	return f
}

// request builds the create request from the current selections.
func (f addForm) request() services.AddTaskRequest {
	return services.AddTaskRequest{
		Title:       f.title.Value(),
		FocusTime:   domain.AllowedFocusTimes[f.focus],
		EnergyLevel: energyOptions[f.energy],
		Type:        typeOptions[f.kind],
	}
}

// update handles one message. done is true on submit or cancel; submit
// distinguishes the two.
func (f addForm) update(msg tea.Msg) (form addForm, done, submit bool, cmd tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			return f, true, false, nil
		case "enter":
			return f, true, true, nil
		case "tab", "down":
			f.setField((f.field + 1) % fieldCount)
			return f, false, false, nil
		case "shift+tab", "up":
			f.setField((f.field + fieldCount - 1) % fieldCount)
			return f, false, false, nil
		case "left", "right":
			if f.field != fieldTitle {
				f.shift(key.String() == "right")
				return f, false, false, nil
			}
		}
	}

	if f.field == fieldTitle {
		f.title, cmd = f.title.Update(msg)
	}
	return f, false, false, cmd
}

func (f *addForm) setField(field formField) {
	f.field = field
	if field == fieldTitle {
		f.title.Focus()
	} else {
		f.title.Blur()
	}
}

func (f *addForm) shift(forward bool) {
	step := -1
	if forward {
		step = 1
	}
	switch f.field {
	case fieldFocusTime:
		f.focus = wrap(f.focus+step, len(domain.AllowedFocusTimes))
	case fieldEnergy:
		f.energy = wrap(f.energy+step, len(energyOptions))
	case fieldType:
		f.kind = wrap(f.kind+step, len(typeOptions))
	}
}

func wrap(i, n int) int {
	return (i%n + n) % n
}

func (f addForm) view(theme config.ThemeConfig) string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorTitle))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorHelp)).Width(12)
	activeLabel := labelStyle.Foreground(lipgloss.Color(theme.ColorInProgress)).Bold(true)
	chosenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorInProgress)).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorHelp))

	b.WriteString(titleStyle.Render("  New task") + "\n\n")

	label := func(field formField, text string) string {
		if f.field == field {
			return activeLabel.Render("▸ " + text)
		}
		return labelStyle.Render("  " + text)
	}

	options := func(items []string, cursor int) string {
		parts := make([]string, len(items))
		for i, item := range items {
			if i == cursor {
				parts[i] = chosenStyle.Render("[" + item + "]")
			} else {
				parts[i] = dimStyle.Render(" " + item + " ")
			}
		}
		return strings.Join(parts, " ")
	}

	focusItems := make([]string, len(domain.AllowedFocusTimes))
	for i, m := range domain.AllowedFocusTimes {
		focusItems[i] = fmt.Sprintf("%dm", m)
	}
	energyItems := make([]string, len(energyOptions))
	for i, e := range energyOptions {
		energyItems[i] = string(e)
	}
	typeItems := make([]string, len(typeOptions))
	for i, t := range typeOptions {
		typeItems[i] = string(t)
	}

	b.WriteString("  " + label(fieldTitle, "Title") + f.title.View() + "\n")
	b.WriteString("  " + label(fieldFocusTime, "Focus") + options(focusItems, f.focus) + "\n")
	b.WriteString("  " + label(fieldEnergy, "Energy") + options(energyItems, f.energy) + "\n")
	b.WriteString("  " + label(fieldType, "Type") + options(typeItems, f.kind) + "\n\n")
	b.WriteString(dimStyle.Render("  tab/↑/↓ field · ←/→ choose · enter add · esc cancel") + "\n")

	return b.String()
}
