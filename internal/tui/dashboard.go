package tui

import (
	"fmt"
	"time"

	"fitagent/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	db     *store.DB
	userID int64

	upcoming  []store.ExecutableActionEvent
	recent    []store.Workout
	distances []float64

	loading bool
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(db *store.DB, userID int64) DashboardModel {
	return DashboardModel{
		db:      db,
		userID:  userID,
		loading: true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	upcoming, err := m.db.UpcomingActionEvents(time.Now(), 7*24*time.Hour)
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	recent, err := m.db.ListWorkouts(m.userID, 5)
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	distances, err := m.db.WeeklyDistances(m.userID, 12, time.Now())
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{upcoming: upcoming, recent: recent, distances: distances}
}

type dashboardDataMsg struct {
	upcoming  []store.ExecutableActionEvent
	recent    []store.Workout
	distances []float64
	err       error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.upcoming = msg.upcoming
		m.recent = msg.recent
		m.distances = msg.distances
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var sections []string
	sections = append(sections, m.renderUpcoming())

	if len(m.distances) > 2 {
		sections = append(sections, m.renderChart())
	}

	sections = append(sections, m.renderRecentWorkouts())

	help := statusStyle.Render("Press 'r' to refresh, '2' for workouts, '3' for routes")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderUpcoming() string {
	title := cardTitleStyle.Render("Upcoming Actions (next 7 days)")

	if len(m.upcoming) == 0 {
		empty := "Nothing scheduled. Run 'fitagent schedule' to expand your rules."
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, empty))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-16s  %-24s  %-12s",
		"When", "Action", "Provider"))

	rows := []string{header}
	for i, e := range m.upcoming {
		if i >= 8 {
			break
		}
		row := tableRowStyle.Render(fmt.Sprintf("%-16s  %-24s  %-12s",
			e.ScheduledAt.Local().Format("Mon Jan 02 15:04"),
			truncateName(e.ActionName, 24),
			e.ProviderName,
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render("Weekly Distance (km, last 12 weeks)")

	km := make([]float64, len(m.distances))
	for i, d := range m.distances {
		km[i] = d / 1000
	}

	graph := asciigraph.Plot(km,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentWorkouts() string {
	title := cardTitleStyle.Render("Recent Workouts")

	if len(m.recent) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No workouts yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-24s  %-8s  %9s  %7s",
		"Date", "Name", "Sport", "Distance", "Time"))

	rows := []string{header}
	for _, w := range m.recent {
		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-24s  %-8s  %7.1fkm  %7s",
			w.StartedAt.Format("Jan 02"),
			truncateName(w.Name, 24),
			w.Sport,
			w.Distance/1000,
			formatDuration(w.MovingTime),
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
