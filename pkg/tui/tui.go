// Package tui implements `foundry tui`: an optional interactive
// front-end listing team/persona standups and dispatching an Intent bus
// action against the selected one.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/containifyci/foundry/pkg/async"
	"github.com/containifyci/foundry/pkg/foundry"
	"github.com/containifyci/foundry/pkg/intent"
	"github.com/containifyci/foundry/pkg/team"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model is the bubbletea model listing a team.Store's standups.
type Model struct {
	ctx      *foundry.Context
	store    team.Store
	standups []team.Standup
	cursor   int
	status   string
	err      error
}

// New constructs a Model listing every standup currently in store.
func New(ctx *foundry.Context, store team.Store) (Model, error) {
	standups, err := store.ListStandups(context.Background())
	if err != nil {
		return Model{}, err
	}
	return Model{ctx: ctx, store: store, standups: standups}, nil
}

func (m Model) Init() tea.Cmd { return nil }

// Status returns the model's current status line, for tests.
func (m Model) Status() string { return m.status }

type dispatchResultMsg struct {
	standupName string
	err         error
}

func (m Model) dispatchSelected() tea.Cmd {
	if len(m.standups) == 0 {
		return nil
	}
	s := m.standups[m.cursor]
	return func() tea.Msg {
		i := intent.NewAction(team.RunStandupIntentName, s.ID)
		_, err := async.Await(intent.Dispatch(m.ctx, i))
		return dispatchResultMsg{standupName: s.Name, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.standups)-1 {
				m.cursor++
			}
		case "enter":
			m.status = "dispatching..."
			return m, m.dispatchSelected()
		}
	case dispatchResultMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("dispatched %q", msg.standupName)
		} else {
			m.status = ""
		}
	}
	return m, nil
}

func (m Model) View() string {
	out := titleStyle.Render("Foundry — team standups") + "\n\n"
	if len(m.standups) == 0 {
		out += dimStyle.Render("no standups registered") + "\n"
	}
	for i, s := range m.standups {
		line := fmt.Sprintf("%s  %s", s.CronSchedule, s.Name)
		if i == m.cursor {
			out += selectedStyle.Render("> "+line) + "\n"
		} else {
			out += dimStyle.Render("  "+line) + "\n"
		}
	}
	out += "\n"
	if m.err != nil {
		out += errorStyle.Render("error: "+m.err.Error()) + "\n"
	} else if m.status != "" {
		out += dimStyle.Render(m.status) + "\n"
	}
	out += dimStyle.Render("\nup/down to navigate, enter to dispatch, q to quit")
	return out
}
