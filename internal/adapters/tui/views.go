package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/xvierd/flowboard/internal/domain"
)

// getTerminalWidth returns the current terminal width, defaulting to 80.
func getTerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w < 40 {
		return 80
	}
	return w
}

// View renders the board.
func (m Model) View() string {
	if m.mode == modeAdd {
		return m.form.view(m.theme)
	}

	sections := []string{
		m.viewHeader(),
		m.viewTimer(),
		m.viewColumns(),
	}

	if m.mode == modeFilter || m.filter.Value() != "" {
		sections = append(sections, "  "+m.filter.View())
	}
	if m.snap.LastError != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorError))
		sections = append(sections, errStyle.Render("  ✗ "+m.snap.LastError))
	}
	sections = append(sections, m.viewHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	activeTab := lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color(m.theme.ColorInProgress))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	tabs := make([]string, len(typeTabs))
	for i, t := range typeTabs {
		label := domain.GetTaskTypeLabel(t)
		if i == m.tab {
			tabs[i] = activeTab.Render(label)
		} else {
			tabs[i] = dimStyle.Render(label)
		}
	}

	header := fmt.Sprintf("  %s %s   %s", m.theme.IconApp, titleStyle.Render("flowboard"), strings.Join(tabs, dimStyle.Render(" │ ")))

	var badges []string
	if m.snap.Offline {
		badges = append(badges, "read-only")
	}
	if m.snap.Submitting {
		badges = append(badges, "saving…")
	}
	if len(badges) > 0 {
		header += "   " + dimStyle.Render(strings.Join(badges, " · "))
	}
	return header + "\n"
}

func (m Model) viewTimer() string {
	state := m.snap.Timer
	color := lipgloss.Color(m.theme.ColorTitle)
	icon := ""
	switch state.Status {
	case domain.TimerRunning:
		color = lipgloss.Color(m.theme.ColorInProgress)
		icon = m.theme.IconFocus + " "
	case domain.TimerBreak:
		color = lipgloss.Color(m.theme.BreakGradientStart)
		icon = m.theme.IconBreak + " "
	}

	statusStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	taskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorFocus))

	lines := []string{statusStyle.Render("  " + icon + state.Status.Label())}

	clock := renderBigTime(formatDuration(state.Remaining()), color, m.width)
	for _, line := range strings.Split(clock, "\n") {
		lines = append(lines, "  "+line)
	}

	if m.snap.Focused != nil {
		focused := fmt.Sprintf("  Focus: %s", m.snap.Focused.Title)
		if n := m.snap.Sessions[m.snap.Focused.ID]; n > 0 {
			focused += fmt.Sprintf(" (%d done)", n)
		}
		lines = append(lines, taskStyle.Render(focused))
	}

	if state.Status.IsActive() {
		pbar := m.progressBar()
		lines = append(lines, "  "+pbar.ViewAs(state.Progress()))
	}

	return strings.Join(lines, "\n") + "\n"
}

func (m Model) viewColumns() string {
	colWidth := max((m.width-4)/len(domain.ValidStatuses), 18)

	columns := make([]string, len(domain.ValidStatuses))
	for i, status := range domain.ValidStatuses {
		columns[i] = m.viewColumn(i, status, colWidth)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func (m Model) viewColumn(index int, status domain.TaskStatus, width int) string {
	color := lipgloss.Color(m.statusColor(status))
	tasks := m.columnTasks(index)

	border := lipgloss.NormalBorder()
	if index == m.column {
		border = lipgloss.ThickBorder()
	}
	box := lipgloss.NewStyle().
		Border(border).
		BorderForeground(color).
		Width(width - 2).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorTodo))
	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorFocus))
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", status.Label(), len(tasks)))}
	for i, task := range tasks {
		marker := "  "
		if m.snap.IsFocused(task.ID) {
			marker = focusStyle.Render(m.theme.IconFocus + " ")
		}
		title := truncate(task.Title, width-8)
		line := rowStyle.Render(title)
		if index == m.column && i == m.row {
			line = cursorStyle.Render(title)
		}
		lines = append(lines, marker+line)
		lines = append(lines, "  "+metaStyle.Render(fmt.Sprintf("%dm · %s · %s", task.FocusTime, task.EnergyLevel, task.Type)))
	}
	if len(tasks) == 0 {
		lines = append(lines, metaStyle.Render("  (empty)"))
	}

	return box.Render(strings.Join(lines, "\n"))
}

func (m Model) statusColor(status domain.TaskStatus) string {
	switch status {
	case domain.StatusInProgress:
		return m.theme.ColorInProgress
	case domain.StatusComplete:
		return m.theme.ColorComplete
	default:
		return m.theme.ColorTodo
	}
}

func (m Model) viewHelp() string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	if m.confirmDelete {
		warn := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorError))
		return warn.Render("  Press [d] again to delete, any other key to cancel")
	}
	if m.mode == modeFilter {
		return helpStyle.Render("  enter keep filter · esc clear")
	}

	timerKey := "[s] start"
	if m.snap.Timer.Status.IsActive() {
		timerKey = "[s] stop"
	}
	return helpStyle.Render(fmt.Sprintf(
		"  [a] add  [enter] advance  [f] focus  [x] unfocus  %s  [b] break  [d] delete  [/] filter  [tab] type  [q] quit",
		timerKey,
	))
}

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func truncate(s string, width int) string {
	if width < 4 {
		width = 4
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
