package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	navSection := m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Workouts list"},
		{"3", "Routes"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	})
	sections = append(sections, navSection)

	screenSection := m.renderSection("All Screens", []keyHelp{
		{"r", "Refresh data"},
	})
	sections = append(sections, screenSection)

	workoutsSection := m.renderSection("Workouts List", []keyHelp{
		{"j / down", "Scroll down"},
		{"k / up", "Scroll up"},
		{"pgdn", "Next page"},
		{"pgup", "Previous page"},
	})
	sections = append(sections, workoutsSection)

	cliSection := m.renderCLIHelp()
	sections = append(sections, cliSection)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderCLIHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Commands"))
	lines = append(lines, "")

	commands := []struct {
		name string
		desc string
	}{
		{"fitagent schedule", "Expand action rules into concrete events and purge expired ones."},
		{"fitagent run <provider>", "Execute pending action events for one provider."},
		{"fitagent connect <user-id>", "Link a user's tracker account via OAuth."},
	}

	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	for _, cmd := range commands {
		lines = append(lines, "  "+helpKeyStyle.Render(cmd.name))
		lines = append(lines, "  "+mutedStyle.Render(cmd.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
