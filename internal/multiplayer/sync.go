// Package multiplayer reconciles a local quiz session against an
// authoritative remote coordinator over a publish/subscribe channel.
// The channel is best-effort: outbound intents are fire-and-forget and
// dropped while disconnected, and inbound broadcasts may arrive out of
// order relative to local timer events.
package multiplayer

import "encoding/json"

// Named destinations for outbound intents.
const (
	DestStart  = "/app/start"
	DestReady  = "/app/player-ready"
	DestSubmit = "/app/submit"

	// TopicGame carries all inbound broadcasts.
	TopicGame = "/topic/game"
)

// BroadcastType identifies an inbound broadcast.
type BroadcastType string

const (
	BroadcastQuestion     BroadcastType = "QUESTION"
	BroadcastPlayersReady BroadcastType = "PLAYERS_READY"
	BroadcastScoreUpdate  BroadcastType = "SCORE_UPDATE"
	BroadcastGameOver     BroadcastType = "GAME_OVER"
)

// Broadcast is one inbound envelope from the game topic.
type Broadcast struct {
	Type    BroadcastType   `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// QuestionPayload is the authoritative prompt for the next round.
type QuestionPayload struct {
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// PlayersReadyPayload reports how many players are ready.
type PlayersReadyPayload struct {
	ReadyCount int `json:"readyCount"`
}

// ScoreUpdatePayload carries one player's score.
type ScoreUpdatePayload struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// GameOverPayload carries the terminal score map.
type GameOverPayload struct {
	FinalScores map[string]int `json:"finalScores"`
}

// Port is the engine-facing side of the sync channel. The channel is a
// shared, externally owned resource; the engine only publishes and
// subscribes, never assuming exclusive access.
type Port interface {
	SendStart() error
	SendReady() error
	SendAnswer(answer string) error
	Broadcasts() <-chan Broadcast
	Close() error
}

// startIntent, readyIntent and submitIntent are the outbound bodies.
type startIntent struct {
	Type string `json:"type"`
}

type readyIntent struct {
	PlayerID string `json:"playerId"`
}

type submitIntent struct {
	PlayerID string `json:"playerId"`
	Answer   string `json:"answer"`
}
