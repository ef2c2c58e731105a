package multiplayer

import (
	"encoding/json"
	"fmt"
	"sync"
)

// State is the UI-facing view of the remote game. Every field is derived
// from the latest broadcast of its kind, never merged incrementally: a
// new question fully replaces the prior prompt and re-enables submission.
type State struct {
	Question         string
	Options          []string
	ReadyCount       int
	Score            int
	CanSubmit        bool
	WaitingForOthers bool
	GameOver         bool
	FinalScores      map[string]int
}

// RemoteState folds broadcasts into a State for one local player. It is a
// read-only reflection of authoritative server state; the local session
// treats it as advisory input.
type RemoteState struct {
	playerID string

	mu    sync.Mutex
	state State
}

// NewRemoteState creates remote state for the given local player id.
func NewRemoteState(playerID string) *RemoteState {
	return &RemoteState{playerID: playerID}
}

// Apply folds one broadcast into the state. Broadcasts of unknown type
// are ignored; the topic is shared and may grow new message kinds.
func (r *RemoteState) Apply(b Broadcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch b.Type {
	case BroadcastQuestion:
		var p QuestionPayload
		if err := json.Unmarshal(b.Payload, &p); err != nil {
			return fmt.Errorf("bad question payload: %w", err)
		}
		r.state.Question = p.QuestionText
		r.state.Options = p.Options
		r.state.CanSubmit = true
		r.state.WaitingForOthers = false

	case BroadcastPlayersReady:
		var p PlayersReadyPayload
		if err := json.Unmarshal(b.Payload, &p); err != nil {
			return fmt.Errorf("bad players-ready payload: %w", err)
		}
		r.state.ReadyCount = p.ReadyCount

	case BroadcastScoreUpdate:
		var p ScoreUpdatePayload
		if err := json.Unmarshal(b.Payload, &p); err != nil {
			return fmt.Errorf("bad score-update payload: %w", err)
		}
		// Only the local player's score is reflected; a stale update
		// arriving after the next question touches nothing else.
		if p.PlayerID == r.playerID {
			r.state.Score = p.Score
		}

	case BroadcastGameOver:
		var p GameOverPayload
		if err := json.Unmarshal(b.Payload, &p); err != nil {
			return fmt.Errorf("bad game-over payload: %w", err)
		}
		r.state.GameOver = true
		r.state.FinalScores = p.FinalScores
		r.state.CanSubmit = false
		r.state.WaitingForOthers = false
	}

	return nil
}

// MarkSubmitted records a local submission: input locks until the next
// question broadcast re-enables it.
func (r *RemoteState) MarkSubmitted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.CanSubmit = false
	r.state.WaitingForOthers = true
}

// Snapshot returns a copy of the current state.
func (r *RemoteState) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.state
	snap.Options = append([]string(nil), r.state.Options...)
	if r.state.FinalScores != nil {
		snap.FinalScores = make(map[string]int, len(r.state.FinalScores))
		for k, v := range r.state.FinalScores {
			snap.FinalScores[k] = v
		}
	}
	return snap
}
