package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pverge/blindtest/internal/core"
	"github.com/pverge/blindtest/internal/game"
	"github.com/pverge/blindtest/internal/tui/styles"
)

// Messages
type sessionEventMsg game.Event
type sessionClosedMsg struct{}

// GameModel is the bubbletea model for a solo quiz session. The session
// runs its own clock; the model only renders snapshots and forwards input.
type GameModel struct {
	session       *game.Session
	roundDuration int
	input         textinput.Model
	width         int
	height        int

	snap     game.Snapshot
	revealed *core.Track // track shown during the reveal dwell
	correct  bool        // whether the reveal came from a correct guess
	quitting bool
}

// NewGameModel creates the game screen for an already started session.
func NewGameModel(session *game.Session, roundDuration int) GameModel {
	ti := textinput.New()
	ti.Placeholder = "Enter song title or artist name..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Focus()

	return GameModel{
		session:       session,
		roundDuration: roundDuration,
		input:         ti,
		snap:          session.Snapshot(),
	}
}

// Init starts listening for session events.
func (m GameModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

// waitForEvent blocks on the session's event stream.
func (m GameModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.session.Events()
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionEventMsg(ev)
	}
}

func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionEventMsg:
		ev := game.Event(msg)
		m.snap = m.session.Snapshot()

		switch ev.Kind {
		case game.EventRoundStarted:
			m.revealed = nil
			m.correct = false
			m.input.SetValue("")
		case game.EventCorrect:
			m.revealed = ev.Track
			m.correct = true
		case game.EventExpired:
			m.revealed = ev.Track
			m.correct = false
		case game.EventSkipped:
			m.revealed = nil
			m.correct = false
		case game.EventComplete:
			return m, tea.Quit
		}
		return m, m.waitForEvent()

	case sessionClosedMsg:
		return m, tea.Quit
	}

	// Forward everything else to the guess input while playing.
	if m.snap.Phase == game.PhasePlaying {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.session.SetGuess(m.input.Value())
		m.snap = m.session.Snapshot()
		return m, cmd
	}

	return m, nil
}

func (m GameModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.session.Close()
		return m, tea.Quit

	case "enter":
		if m.snap.Phase == game.PhasePlaying {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			m.session.SubmitGuess(ctx)
			cancel()
			m.snap = m.session.Snapshot()
		}
		return m, nil

	case "ctrl+k":
		if m.snap.Phase == game.PhasePlaying {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			m.session.Skip(ctx)
			cancel()
			m.snap = m.session.Snapshot()
		}
		return m, nil

	case "tab":
		// Accept the first suggestion as the guess.
		if m.snap.Phase == game.PhasePlaying && len(m.snap.Suggestions) > 0 {
			title := m.snap.Suggestions[0]
			if i := strings.Index(title, " - "); i >= 0 {
				title = title[:i]
			}
			m.input.SetValue(title)
			m.input.CursorEnd()
			m.session.SetGuess(title)
			m.snap = m.session.Snapshot()
		}
		return m, nil
	}

	// Everything else is guess input.
	if m.snap.Phase == game.PhasePlaying {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.session.SetGuess(m.input.Value())
		m.snap = m.session.Snapshot()
		return m, cmd
	}

	return m, nil
}

func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	if m.snap.Phase == game.PhaseComplete {
		return m.finalView()
	}

	var b strings.Builder

	// Header: score, round, skips
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Score.Render(fmt.Sprintf("Score: %d", m.snap.Score)),
		styles.Muted.Render(fmt.Sprintf("   Song %d of %d", m.snap.Round+1, m.snap.TrackCount)),
		styles.Muted.Render(fmt.Sprintf("   Skips left: %d", m.snap.SkipsRemaining)),
	)
	b.WriteString(header + "\n\n")

	b.WriteString(m.countdownView() + "\n\n")

	if m.revealed != nil {
		banner := fmt.Sprintf("%s - %s", m.revealed.Title, m.revealed.ArtistLine())
		if m.correct {
			b.WriteString(styles.Correct.Render("Correct!  "+banner) + "\n")
		} else {
			b.WriteString(styles.Revealed.Render("Time's up!  The answer was: "+banner) + "\n")
		}
		return styles.Panel.Render(b.String())
	}

	b.WriteString(m.input.View() + "\n")

	for _, s := range m.snap.Suggestions {
		b.WriteString(styles.Dim.Render("  "+s) + "\n")
	}

	b.WriteString("\n" + styles.Label.Render("enter submit · tab complete · ctrl+k skip · esc quit"))

	return styles.Panel.Render(b.String())
}

// countdownView renders the remaining time as a bar plus a counter.
func (m GameModel) countdownView() string {
	width := 40

	filled := 0
	if m.roundDuration > 0 {
		filled = width * m.snap.TimeLeft / m.roundDuration
	}
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	timer := fmt.Sprintf(" 00:%02d", m.snap.TimeLeft)
	if m.snap.TimeLeft <= 5 {
		return bar + styles.CountdownLow.Render(timer)
	}
	return bar + styles.Countdown.Render(timer)
}

func (m GameModel) finalView() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Game Over!") + "\n\n")
	b.WriteString(styles.Score.Render(fmt.Sprintf("Final Score: %d", m.snap.Score)) + "\n\n")
	b.WriteString(styles.Label.Render("Run 'blindtest play' to play again"))
	return styles.Panel.Render(b.String())
}
