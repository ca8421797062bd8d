package week

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/utils"
)

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(20)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	missStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	rateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows the seven-day completion grid.
type Model struct {
	viewport viewport.Model
	Stats    *models.WeeklyStats
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Stats == nil || m.Stats.TotalHabits == 0 {
		return "No habits tracked this week."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m *Model) SetStats(stats models.WeeklyStats) {
	m.Stats = &stats
	m.viewport.SetContent(Render(stats))
}

// Render draws the grid as plain rows, one per habit.
func Render(stats models.WeeklyStats) string {
	var b strings.Builder

	days, _ := utils.DayRange(stats.StartDate, stats.EndDate)
	b.WriteString(nameStyle.Render(""))
	for _, day := range days {
		t, err := utils.ParseDay(day)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, " %s", t.Format("Mon")[:2])
	}
	b.WriteString("\n")

	for _, h := range stats.Habits {
		name := h.Name
		if r := []rune(name); len(r) > 19 {
			name = string(r[:18]) + "…"
		}
		b.WriteString(nameStyle.Render(name))
		for _, done := range h.Days {
			if done {
				b.WriteString(doneStyle.Render("  ■"))
			} else {
				b.WriteString(missStyle.Render("  ·"))
			}
		}
		b.WriteString(rateStyle.Render(fmt.Sprintf("  %d/%d", h.DaysCompleted, h.PossibleDays)))
		b.WriteString("\n")
	}
	return b.String()
}
