package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daystreak/internal/ledger"
	"github.com/julianstephens/daystreak/internal/logger"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/streak"
	"github.com/julianstephens/daystreak/internal/tui/components/habits"
	"github.com/julianstephens/daystreak/internal/tui/components/week"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateWeek
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab, starting at StateHabits.
const tabCount = 2

type HabitFormModel struct {
	Name     string
	Category string
}

type Model struct {
	ctx           context.Context
	ledger        *ledger.Ledger
	state         SessionState
	keys          KeyMap
	help          help.Model
	habitsModel   habits.Model
	weekModel     week.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	habitToDelete habits.DeleteHabitMsg
	daily         models.DailyStats
	aggregate     models.AggregateStats
	status        string
	statusIsError bool
	quitting      bool
	width         int
	height        int
}

func NewModel(ctx context.Context, l *ledger.Ledger) Model {
	m := Model{
		ctx:         ctx,
		ledger:      l,
		state:       StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(nil, 0, 0),
		weekModel:   week.New(0, 0),
	}
	if err := m.refresh(); err != nil {
		m.setError(err)
	}
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateHabits {
		hk := habits.DefaultKeyMap()
		keys = append(keys, hk.Add, hk.Toggle, hk.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == StateHabits {
		hk := habits.DefaultKeyMap()
		actions = []key.Binding{hk.Add, hk.Toggle, hk.Mark, hk.Unmark, hk.Delete}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads habits and stats. On failure the previous rows stay on
// screen and the error is returned for the status line.
func (m *Model) refresh() error {
	items, err := m.loadItems()
	if err != nil {
		return err
	}
	today := m.ledger.Today()
	daily, err := m.ledger.DailyStats(m.ctx, today)
	if err != nil {
		return err
	}
	weekly, err := m.ledger.WeeklyStats(m.ctx, today)
	if err != nil {
		return err
	}
	agg, err := m.ledger.AggregateStats(m.ctx)
	if err != nil {
		return err
	}

	m.habitsModel.SetItems(items)
	m.weekModel.SetStats(weekly)
	m.daily = daily
	m.aggregate = agg
	return nil
}

func (m *Model) loadItems() ([]habits.Item, error) {
	hs, err := m.ledger.Habits(m.ctx)
	if err != nil {
		return nil, err
	}
	today := m.ledger.Today()
	items := make([]habits.Item, 0, len(hs))
	for _, h := range hs {
		state, err := m.ledger.StreakState(m.ctx, h.ID, today)
		if err != nil {
			return nil, err
		}
		items = append(items, habits.Item{Habit: h, Streak: state, Done: state.LastCompletedDate == today})
	}
	return items, nil
}

// refreshWithStatus reloads and reports success, or the reload error.
func (m *Model) refreshWithStatus(success string) {
	if err := m.refresh(); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(success)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusIsError = false
}

func (m *Model) setError(err error) {
	logger.Warn("TUI operation failed", "error", err)
	m.status = "Error: " + err.Error()
	m.statusIsError = true
}

func (m *Model) findItem(id string) (habits.Item, bool) {
	for _, it := range m.habitsModel.Items() {
		if it.Habit.ID == id {
			return it, true
		}
	}
	return habits.Item{}, false
}

func (m *Model) mark(id string) {
	before, _ := m.findItem(id)
	after, err := m.ledger.RecordCompletion(m.ctx, id, m.ledger.Today())
	if err != nil {
		m.setError(err)
		return
	}

	status := fmt.Sprintf("✓ %s done for today (🔥 %d)", before.Habit.Name, after.CurrentStreak)
	if msg, ok := streak.NewMilestone(before.Streak, after); ok {
		status += " " + msg
	}
	m.refreshWithStatus(status)
}

func (m *Model) unmark(id string) {
	item, _ := m.findItem(id)
	if _, err := m.ledger.UnmarkCompletion(m.ctx, id, m.ledger.Today()); err != nil {
		m.setError(err)
		return
	}
	m.refreshWithStatus(fmt.Sprintf("Unmarked %s for today", item.Habit.Name))
}

func (m *Model) createHabit(name string, category models.Category) {
	h, err := m.ledger.CreateHabit(m.ctx, name, category)
	if err != nil {
		m.setError(err)
		return
	}
	m.refreshWithStatus(fmt.Sprintf("Added %s", h.Name))
}

func (m *Model) deleteHabit(target habits.DeleteHabitMsg) {
	if err := m.ledger.DeleteHabit(m.ctx, target.ID); err != nil {
		m.setError(err)
		return
	}
	m.refreshWithStatus(fmt.Sprintf("Deleted %s", target.Name))
}

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	options := []huh.Option[string]{huh.NewOption("None", string(models.CategoryNone))}
	for _, c := range models.Categories {
		options = append(options, huh.NewOption(c.Label(), string(c)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(options...).
				Value(&fm.Category),
		),
	).WithTheme(huh.ThemeDracula())
}
