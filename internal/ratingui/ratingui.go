// internal/ratingui/ratingui.go
// Package ratingui provides the interactive terminal interface for rating an
// experiment's sample outputs. The rating rules live in the rating package;
// this package only renders a session and translates key presses into
// session calls.
package ratingui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptlab/promptlab/internal/rating"
	"github.com/promptlab/promptlab/internal/util"
)

// viewState represents the current screen of the rating flow.
type viewState int

const (
	// viewLoading is the state while the experiment is being fetched.
	viewLoading viewState = iota
	// viewReviewing is the state where the user walks the samples.
	viewReviewing
	// viewDone is the terminal state after a save or an abandon.
	viewDone
)

// Loader fetches the rating session once the program starts. Running the
// fetch inside the program keeps the spinner visible during slow loads.
type Loader func(ctx context.Context) (*rating.Session, error)

// sessionReadyMsg is sent when the session has been loaded.
type sessionReadyMsg struct{ session *rating.Session }

// sessionLoadErr is sent when loading the session fails.
type sessionLoadErr struct{ error }

var (
	headerStyle = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	starStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// Model is the Bubble Tea model for the rating flow.
type Model struct {
	ctx     context.Context
	load    Loader
	store   *rating.Store
	session *rating.Session
	state   viewState
	spinner spinner.Model
	err     error
	notice  string
	saved   *rating.Saved
	width   int
}

// NewModel creates the rating model. The store receives the completed rating
// on save.
func NewModel(ctx context.Context, load Loader, store *rating.Store) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Model{
		ctx:     ctx,
		load:    load,
		store:   store,
		state:   viewLoading,
		spinner: s,
		width:   80,
	}
}

// Saved returns the persisted rating after the program exits, or nil when
// the session was abandoned.
func (m *Model) Saved() *rating.Saved { return m.saved }

// Err returns the load error, if any, after the program exits.
func (m *Model) Err() error { return m.err }

func (m *Model) loadSessionCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.load(m.ctx)
		if err != nil {
			return sessionLoadErr{error: err}
		}
		return sessionReadyMsg{session: session}
	}
}

// Init starts the spinner and kicks off the session load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadSessionCmd())
}

// Update is the central update function for the rating model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case sessionReadyMsg:
		m.session = msg.session
		m.state = viewReviewing
		return m, nil

	case sessionLoadErr:
		m.err = msg.error
		m.state = viewDone
		return m, tea.Quit

	case spinner.TickMsg:
		if m.state == viewLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.session != nil && !m.session.Closed() {
			m.session.Close()
		}
		m.state = viewDone
		return m, tea.Quit
	}

	if m.state != viewReviewing {
		return m, nil
	}

	switch msg.String() {
	case "1", "2", "3", "4", "5":
		stars := int(msg.String()[0] - '0')
		if err := m.session.Rate(stars); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = ""
	case "left", "h":
		m.session.Prev()
		m.notice = ""
	case "right", "l":
		m.session.Next()
		m.notice = ""
	case "s", "enter":
		saved, err := m.session.Save(m.store)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.saved = &saved
		m.state = viewDone
		return m, tea.Quit
	}
	return m, nil
}

// View renders the rating UI based on the current state.
func (m *Model) View() string {
	switch m.state {
	case viewLoading:
		return fmt.Sprintf("\n  %s Loading experiment...\n", m.spinner.View())

	case viewReviewing:
		return m.reviewView()

	case viewDone:
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
		}
		if m.saved != nil {
			return doneStyle.Render(fmt.Sprintf("Rating saved. Manual accuracy: %.1f%%", m.saved.Accuracy))
		}
		return doneStyle.Render("Rating abandoned, nothing saved.")

	default:
		return "Unknown state"
	}
}

// reviewView renders the sample under review with its rating and progress.
func (m *Model) reviewView() string {
	var builder strings.Builder
	s := m.session
	current := s.Current()
	width := util.Max(m.width-4, 20)

	header := headerStyle.Render(fmt.Sprintf("Rating %s  sample %d/%d  rated %d/%d",
		s.ExperimentID(), s.Cursor()+1, s.Len(), s.Rated(), s.Len()))
	builder.WriteString(header)
	builder.WriteString("\n\n")

	builder.WriteString(labelStyle.Render("Input:"))
	builder.WriteString("\n")
	builder.WriteString(util.WrapToWidth(current.Input, width))
	builder.WriteString("\n\n")

	if current.Expected != "" {
		builder.WriteString(labelStyle.Render("Expected:"))
		builder.WriteString("\n")
		builder.WriteString(util.WrapToWidth(current.Expected, width))
		builder.WriteString("\n\n")
	}

	builder.WriteString(labelStyle.Render("Output:"))
	builder.WriteString("\n")
	builder.WriteString(util.WrapToWidth(current.Output, width))
	builder.WriteString("\n\n")

	builder.WriteString(labelStyle.Render("Rating: "))
	builder.WriteString(starStyle.Render(util.Stars(s.RatingAt(s.Cursor()))))
	builder.WriteString("\n")

	if m.notice != "" {
		builder.WriteString("\n")
		builder.WriteString(errorStyle.Render(m.notice))
		builder.WriteString("\n")
	}

	builder.WriteString(helpStyle.Render("1-5 rate • ←/→ navigate • s save • q quit"))
	return builder.String()
}

// Run executes the rating flow and returns the saved rating, or nil when the
// user quit without saving.
func Run(ctx context.Context, load Loader, store *rating.Store) (*rating.Saved, error) {
	m := NewModel(ctx, load, store)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return nil, fmt.Errorf("rating interface: %w", err)
	}
	if m.Err() != nil {
		return nil, m.Err()
	}
	return m.Saved(), nil
}
