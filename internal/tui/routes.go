package tui

import (
	"fmt"

	"fitagent/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RoutesModel shows the user's deduplicated routes
type RoutesModel struct {
	db     *store.DB
	userID int64

	routes  []store.Route
	counts  map[int64]int
	loading bool
	err     error
}

// NewRoutesModel creates a new routes model
func NewRoutesModel(db *store.DB, userID int64) RoutesModel {
	return RoutesModel{
		db:      db,
		userID:  userID,
		loading: true,
	}
}

// Init initializes the routes screen
func (m RoutesModel) Init() tea.Cmd {
	return m.loadData
}

func (m RoutesModel) loadData() tea.Msg {
	routes, err := m.db.RoutesForUser(m.userID)
	if err != nil {
		return routesDataMsg{err: err}
	}

	// Count how many workouts follow each route
	counts := make(map[int64]int)
	workouts, err := m.db.ListWorkouts(m.userID, 500)
	if err != nil {
		return routesDataMsg{err: err}
	}
	for _, w := range workouts {
		if w.RouteID != nil {
			counts[*w.RouteID]++
		}
	}

	return routesDataMsg{routes: routes, counts: counts}
}

type routesDataMsg struct {
	routes []store.Route
	counts map[int64]int
	err    error
}

// Update handles messages
func (m RoutesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case routesDataMsg:
		m.loading = false
		m.err = msg.err
		m.routes = msg.routes
		m.counts = msg.counts
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the routes screen
func (m RoutesModel) View() string {
	if m.loading {
		return "\n  Loading routes..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	title := cardTitleStyle.Render("Routes")

	if len(m.routes) == 0 {
		empty := "No routes yet. They are derived from GPS workouts."
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, empty))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-4s  %-28s  %9s  %7s  %7s  %8s",
		"ID", "Name", "Distance", "Ascent", "Descent", "Workouts"))

	rows := []string{header}
	for _, r := range m.routes {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-4d  %-28s  %7.1fkm  %6.0fm  %6.0fm  %8d",
			r.ID,
			truncateName(r.Name, 28),
			r.Distance/1000,
			r.Ascent,
			r.Descent,
			m.counts[r.ID],
		)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))

	help := statusStyle.Render("Press 'r' to refresh")
	return lipgloss.JoinVertical(lipgloss.Left, card, help)
}
