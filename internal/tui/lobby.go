package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pverge/blindtest/internal/multiplayer"
	"github.com/pverge/blindtest/internal/tui/styles"
)

// Messages
type broadcastMsg multiplayer.Broadcast
type channelClosedMsg struct{}

// LobbyModel is the bubbletea model for a multiplayer game. All round
// state is derived from server broadcasts; the model only renders the
// latest view and publishes intents.
type LobbyModel struct {
	client *multiplayer.Client
	remote *multiplayer.RemoteState

	state    multiplayer.State
	cursor   int
	ready    bool
	err      error
	quitting bool
}

// NewLobbyModel creates the multiplayer screen.
func NewLobbyModel(client *multiplayer.Client) LobbyModel {
	return LobbyModel{
		client: client,
		remote: multiplayer.NewRemoteState(client.PlayerID()),
	}
}

// Init starts consuming broadcasts.
func (m LobbyModel) Init() tea.Cmd {
	return m.waitForBroadcast()
}

func (m LobbyModel) waitForBroadcast() tea.Cmd {
	return func() tea.Msg {
		b, ok := <-m.client.Broadcasts()
		if !ok {
			return channelClosedMsg{}
		}
		return broadcastMsg(b)
	}
}

func (m LobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case broadcastMsg:
		b := multiplayer.Broadcast(msg)
		if err := m.remote.Apply(b); err != nil {
			m.err = err
		}
		prev := m.state
		m.state = m.remote.Snapshot()
		// A fresh question resets the option cursor.
		if m.state.Question != prev.Question {
			m.cursor = 0
		}
		return m, m.waitForBroadcast()

	case channelClosedMsg:
		m.err = fmt.Errorf("lost connection to the game server")
		return m, tea.Quit
	}

	return m, nil
}

func (m LobbyModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		_ = m.client.Close()
		return m, tea.Quit

	case "r":
		if !m.ready {
			m.ready = true
			_ = m.client.SendReady()
		}
		return m, nil

	case "s":
		_ = m.client.SendStart()
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.state.Options)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if m.state.CanSubmit && m.cursor < len(m.state.Options) {
			_ = m.client.SendAnswer(m.state.Options[m.cursor])
			m.remote.MarkSubmitted()
			m.state = m.remote.Snapshot()
		}
		return m, nil
	}

	return m, nil
}

func (m LobbyModel) View() string {
	if m.quitting {
		return ""
	}

	if m.state.GameOver {
		return m.finalView()
	}

	var b strings.Builder

	b.WriteString(styles.Score.Render(fmt.Sprintf("Score: %d", m.state.Score)))
	b.WriteString(styles.Muted.Render(fmt.Sprintf("   Players ready: %d", m.state.ReadyCount)))
	b.WriteString("\n\n")

	if m.state.Question == "" {
		b.WriteString(styles.Subtitle.Render("Waiting for the game to start...") + "\n\n")
		b.WriteString(styles.Label.Render("r ready · s start game · q quit"))
		return styles.Panel.Render(b.String())
	}

	b.WriteString(styles.Title.Render(m.state.Question) + "\n\n")

	for i, opt := range m.state.Options {
		line := "  " + opt
		if i == m.cursor {
			line = styles.Highlight.Render("> " + opt)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if m.state.WaitingForOthers {
		b.WriteString(styles.Subtitle.Render("Waiting for other players to submit...") + "\n")
	}
	if m.err != nil {
		b.WriteString(styles.ErrorText.Render(m.err.Error()) + "\n")
	}
	b.WriteString(styles.Label.Render("enter submit · q quit"))

	return styles.Panel.Render(b.String())
}

// FinalScores returns the terminal score map, or nil if the game never
// finished.
func (m LobbyModel) FinalScores() map[string]int {
	return m.state.FinalScores
}

func (m LobbyModel) finalView() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Game Over!") + "\n\n")

	ids := make([]string, 0, len(m.state.FinalScores))
	for id := range m.state.FinalScores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.state.FinalScores[ids[i]] > m.state.FinalScores[ids[j]]
	})

	for _, id := range ids {
		label := id
		if id == m.client.PlayerID() {
			label = id + " (you)"
		}
		b.WriteString(fmt.Sprintf("%s  %d\n", styles.Muted.Render(label), m.state.FinalScores[id]))
	}

	return styles.Panel.Render(b.String())
}
