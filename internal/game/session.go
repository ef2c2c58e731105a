package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pverge/blindtest/internal/core"
	apperrors "github.com/pverge/blindtest/internal/errors"
)

// Phase represents the state of a quiz session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlaying
	PhaseRevealing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlaying:
		return "playing"
	case PhaseRevealing:
		return "revealing"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Config holds the session knobs. The zero value gets defaults applied.
type Config struct {
	RoundDuration   int           // seconds per round
	RevealDwell     time.Duration // pause while the answer is shown
	SkipSettle      time.Duration // delay after a skip before the next round
	RequestedCount  int           // tracks selected per session
	SkipBudget      int           // skips allowed per session
	SuggestionLimit int           // max autocomplete suggestions
	TickInterval    time.Duration // clock tick length; tests shorten it
}

func (c *Config) applyDefaults() {
	if c.RoundDuration == 0 {
		c.RoundDuration = 30
	}
	if c.RevealDwell == 0 {
		c.RevealDwell = 3 * time.Second
	}
	if c.SkipSettle == 0 {
		c.SkipSettle = 250 * time.Millisecond
	}
	if c.RequestedCount == 0 {
		c.RequestedCount = 10
	}
	if c.SkipBudget == 0 {
		c.SkipBudget = 5
	}
	if c.SuggestionLimit == 0 {
		c.SuggestionLimit = 5
	}
	if c.TickInterval == 0 {
		c.TickInterval = time.Second
	}
}

// Announcer relays session intents to a multiplayer coordinator. Sends are
// fire-and-forget; the session logs failures and never blocks on them.
type Announcer interface {
	AnnounceStart() error
	AnnounceAnswer(answer string) error
}

// EventKind identifies a session event.
type EventKind int

const (
	EventRoundStarted EventKind = iota
	EventTick
	EventCorrect
	EventExpired
	EventSkipped
	EventComplete
)

// Event is a session state change delivered to the single UI consumer.
type Event struct {
	Kind     EventKind
	Round    int // 0-based track index
	TimeLeft int
	Score    int
	Track    *core.Track // the revealed track for Correct/Expired events
}

// Snapshot is a point-in-time copy of session state for rendering.
type Snapshot struct {
	Phase          Phase
	Round          int
	TrackCount     int
	TimeLeft       int
	Score          int
	SkipsRemaining int
	Guess          string
	Suggestions    []string
	Current        *core.Track
}

// Session is the quiz state machine. It owns the track order, score, skip
// budget and round phase, and wires the pool, clock, matcher and playback
// together. All transitions run under one mutex, so a guess submission and
// a clock expiry can never both conclude the same round.
type Session struct {
	mu       sync.Mutex
	cfg      Config
	pool     *TrackPool
	clock    *RoundClock
	playback core.Playback
	announce Announcer
	logf     func(format string, args ...interface{})

	phase       Phase
	candidates  []core.Track // full fetched set, kept for suggestions
	tracks      []core.Track
	idx         int
	score       int
	skips       int
	timeLeft    int
	guess       string
	suggestions []string

	dwellTimer *time.Timer
	events     chan Event
	closed     bool
}

// NewSession creates a session with its own track pool and round clock.
// The playback port is injected and never owned.
func NewSession(cfg Config, playback core.Playback) *Session {
	cfg.applyDefaults()
	s := &Session{
		cfg:      cfg,
		pool:     NewTrackPool(),
		clock:    NewRoundClock(cfg.TickInterval),
		playback: playback,
		events:   make(chan Event, 64),
	}
	s.clock.SetHandlers(s.handleTick, s.handleExpired)
	return s
}

// SetPool replaces the track pool, for deterministic selection in tests.
func (s *Session) SetPool(pool *TrackPool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = pool
}

// SetAnnouncer attaches an optional multiplayer announcer.
func (s *Session) SetAnnouncer(a Announcer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announce = a
}

// SetLogFunc enables diagnostic logging.
func (s *Session) SetLogFunc(logf func(format string, args ...interface{})) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logf = logf
}

func (s *Session) log(format string, args ...interface{}) {
	if s.logf != nil {
		s.logf(format, args...)
	}
}

// Events returns the session's event stream. The channel is buffered;
// events are dropped rather than blocking a slow consumer.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Start selects tracks from candidates and begins round 0. It fails with
// ErrEmptyCatalog when no usable candidates exist and propagates
// ErrInsufficientCandidates from selection. Both failures are terminal:
// the caller constructs a new session to retry.
func (s *Session) Start(ctx context.Context, candidates []core.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return apperrors.ErrSessionNotIdle
	}

	usable := make([]core.Track, 0, len(candidates))
	for _, t := range candidates {
		if t.Playable() {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return apperrors.ErrEmptyCatalog
	}

	tracks, err := s.pool.Select(usable, s.cfg.RequestedCount)
	if err != nil {
		return err
	}

	s.candidates = usable
	s.tracks = tracks
	s.idx = 0
	s.score = 0
	s.skips = s.cfg.SkipBudget
	s.timeLeft = s.cfg.RoundDuration
	s.guess = ""
	s.suggestions = nil
	s.phase = PhasePlaying

	s.startPlayback(ctx, &s.tracks[0])
	s.clock.Start(s.cfg.RoundDuration)

	if s.announce != nil {
		if err := s.announce.AnnounceStart(); err != nil {
			s.log("announce start: %v", err)
		}
	}

	s.emit(Event{Kind: EventRoundStarted, Round: 0, TimeLeft: s.timeLeft, Score: 0})
	return nil
}

// SetGuess records the current guess text and, while playing, recomputes
// the autocomplete suggestions. Suggestions are advisory and never affect
// scoring.
func (s *Session) SetGuess(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guess = text
	if s.phase != PhasePlaying {
		return
	}
	s.suggestions = s.suggest(text)
}

// SubmitGuess evaluates the current guess against the current track.
// Only valid in Playing with a non-blank guess; otherwise a no-op. A wrong
// guess changes nothing, so the player may retry until time or the skip
// budget runs out. A correct guess scores 10 plus floor(timeLeft/5),
// stops playback, suspends the clock and reveals the answer.
func (s *Session) SubmitGuess(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || strings.TrimSpace(s.guess) == "" {
		return false
	}

	track := &s.tracks[s.idx]

	if s.announce != nil {
		if err := s.announce.AnnounceAnswer(s.guess); err != nil {
			s.log("announce answer: %v", err)
		}
	}

	if !MatchGuess(s.guess, track) {
		return false
	}

	bonus := s.timeLeft / 5
	s.score += 10 + bonus
	s.clock.Pause()
	s.stopPlayback(ctx)
	s.phase = PhaseRevealing
	s.scheduleAdvance(s.cfg.RevealDwell)
	s.emit(Event{Kind: EventCorrect, Round: s.idx, TimeLeft: s.timeLeft, Score: s.score, Track: track})
	return true
}

// Skip spends one skip to abandon the current round without a reveal
// banner or score. A no-op outside Playing or with no skips remaining.
func (s *Session) Skip(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || s.skips <= 0 {
		return
	}

	s.skips--
	s.clock.Cancel()
	s.stopPlayback(ctx)
	s.phase = PhaseRevealing
	// Short settle so an in-flight stop lands before the next play.
	s.scheduleAdvance(s.cfg.SkipSettle)
	s.emit(Event{Kind: EventSkipped, Round: s.idx, Score: s.score})
}

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:          s.phase,
		Round:          s.idx,
		TrackCount:     len(s.tracks),
		TimeLeft:       s.timeLeft,
		Score:          s.score,
		SkipsRemaining: s.skips,
		Guess:          s.guess,
		Suggestions:    append([]string(nil), s.suggestions...),
	}
	if s.idx < len(s.tracks) {
		snap.Current = &s.tracks[s.idx]
	}
	return snap
}

// Close tears the session down: the clock, any pending reveal dwell and
// playback are all stopped so no orphaned callback can mutate discarded
// state. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.clock.Cancel()
	if s.dwellTimer != nil {
		s.dwellTimer.Stop()
		s.dwellTimer = nil
	}
	s.stopPlayback(context.Background())
}

// handleTick is the clock's tick subscriber.
func (s *Session) handleTick(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || s.closed {
		return
	}
	s.timeLeft = remaining
	s.emit(Event{Kind: EventTick, Round: s.idx, TimeLeft: remaining, Score: s.score})
}

// handleExpired concludes the round without score. Guarded on Playing:
// if a correct guess already moved the session to Revealing, a queued
// expiry from the same round is dropped here.
func (s *Session) handleExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || s.closed {
		return
	}

	track := &s.tracks[s.idx]
	s.timeLeft = 0
	s.stopPlayback(context.Background())
	s.phase = PhaseRevealing
	s.scheduleAdvance(s.cfg.RevealDwell)
	s.emit(Event{Kind: EventExpired, Round: s.idx, Score: s.score, Track: track})
}

// scheduleAdvance arms the dwell timer for the transition out of
// Revealing. Any previously armed timer is stopped first.
func (s *Session) scheduleAdvance(after time.Duration) {
	if s.dwellTimer != nil {
		s.dwellTimer.Stop()
	}
	s.dwellTimer = time.AfterFunc(after, s.advance)
}

// advance moves to the next round, or to Complete when the track list is
// exhausted.
func (s *Session) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRevealing || s.closed {
		return
	}

	s.idx++
	s.guess = ""
	s.suggestions = nil

	if s.idx >= len(s.tracks) {
		s.phase = PhaseComplete
		s.clock.Cancel()
		s.emit(Event{Kind: EventComplete, Round: s.idx, Score: s.score})
		return
	}

	s.timeLeft = s.cfg.RoundDuration
	s.phase = PhasePlaying
	s.startPlayback(context.Background(), &s.tracks[s.idx])
	s.clock.Start(s.cfg.RoundDuration)
	s.emit(Event{Kind: EventRoundStarted, Round: s.idx, TimeLeft: s.timeLeft, Score: s.score})
}

// startPlayback begins audio for a track. Playback failures are logged
// and otherwise ignored: the round proceeds on the timer alone.
func (s *Session) startPlayback(ctx context.Context, track *core.Track) {
	if s.playback == nil {
		return
	}
	if err := s.playback.Play(ctx, track.PlayableRef); err != nil {
		s.log("playback start for %s: %v", track.ID, err)
	}
}

func (s *Session) stopPlayback(ctx context.Context) {
	if s.playback == nil {
		return
	}
	if err := s.playback.Stop(ctx); err != nil {
		s.log("playback stop: %v", err)
	}
}

// suggest filters the not-yet-played remainder and the full candidate set
// for case-insensitive title or artist substring matches, capped to the
// configured limit.
func (s *Session) suggest(input string) []string {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string

	add := func(tracks []core.Track) {
		for i := range tracks {
			if len(out) >= s.cfg.SuggestionLimit {
				return
			}
			t := &tracks[i]
			if _, dup := seen[t.ID]; dup {
				continue
			}
			if !matchesSubstring(t, needle) {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, fmt.Sprintf("%s - %s", t.Title, t.ArtistLine()))
		}
	}

	add(s.tracks[s.idx+1:])
	add(s.candidates)
	return out
}

func matchesSubstring(t *core.Track, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	for _, artist := range t.Artists {
		if strings.Contains(strings.ToLower(artist), needle) {
			return true
		}
	}
	return false
}

// emit delivers an event without blocking; a full buffer drops the event.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
