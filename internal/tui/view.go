package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daystreak/internal/cli"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateHabits:
		content = docStyle.Render(m.habitsModel.View())
	case StateWeek:
		content = docStyle.Render(m.weekModel.View())
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewStats(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= tabCount {
		active = StateHabits
	}
	var tabs []string
	for i, title := range []string{"Habits", "Week"} {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStats() string {
	return statsStyle.Render(fmt.Sprintf("%s  Today %d/%d %s %s  🔥 %d  🏆 %d",
		m.daily.Date,
		m.daily.CompletedCount, m.daily.TotalHabits,
		cli.ProgressBar(m.daily.CompletionRate, 10), cli.FormatRate(m.daily.CompletionRate),
		m.aggregate.TotalActiveStreakDays, m.aggregate.LongestStreakOverall,
	))
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsError {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-chromeHeight,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and its entire history?", m.habitToDelete.Name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
