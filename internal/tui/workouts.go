package tui

import (
	"fmt"
	"strings"

	"fitagent/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WorkoutsModel is the scrollable workout list screen
type WorkoutsModel struct {
	db     *store.DB
	userID int64

	workouts []store.Workout
	viewport viewport.Model
	ready    bool

	loading bool
	err     error
}

// NewWorkoutsModel creates a new workouts model
func NewWorkoutsModel(db *store.DB, userID int64) WorkoutsModel {
	return WorkoutsModel{
		db:      db,
		userID:  userID,
		loading: true,
	}
}

// Init initializes the workouts screen
func (m WorkoutsModel) Init() tea.Cmd {
	return m.loadData
}

func (m WorkoutsModel) loadData() tea.Msg {
	workouts, err := m.db.ListWorkouts(m.userID, 200)
	return workoutsDataMsg{workouts: workouts, err: err}
}

type workoutsDataMsg struct {
	workouts []store.Workout
	err      error
}

// Update handles messages
func (m WorkoutsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workoutsDataMsg:
		m.loading = false
		m.err = msg.err
		m.workouts = msg.workouts
		if m.ready {
			m.viewport.SetContent(m.renderList())
		}

	case tea.WindowSizeMsg:
		// Leave room for the chrome above and below
		height := msg.Height - 8
		if height < 5 {
			height = 5
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.renderList())

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the workouts screen
func (m WorkoutsModel) View() string {
	if m.loading {
		return "\n  Loading workouts..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return m.renderList()
	}

	help := statusStyle.Render("Use arrows/pgup/pgdn to scroll, 'r' to refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), help)
}

func (m WorkoutsModel) renderList() string {
	if len(m.workouts) == 0 {
		return "\n  No workouts yet. They appear after a 'pull workout history' run."
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-28s  %-8s  %9s  %7s  %-5s",
		"Date", "Name", "Sport", "Distance", "Time", "Route"))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	for _, w := range m.workouts {
		routeMark := "-"
		if w.RouteID != nil {
			routeMark = fmt.Sprintf("#%d", *w.RouteID)
		}
		b.WriteString(tableRowStyle.Render(fmt.Sprintf("%-10s  %-28s  %-8s  %7.1fkm  %7s  %-5s",
			w.StartedAt.Format("2006-01-02"),
			truncateName(w.Name, 28),
			w.Sport,
			w.Distance/1000,
			formatDuration(w.MovingTime),
			routeMark,
		)))
		b.WriteString("\n")
	}

	return b.String()
}
