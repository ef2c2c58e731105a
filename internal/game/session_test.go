package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/pverge/blindtest/internal/core"
	apperrors "github.com/pverge/blindtest/internal/errors"
)

// fakePlayback records playback calls.
type fakePlayback struct {
	mu    sync.Mutex
	plays []string
	stops int
}

func (f *fakePlayback) Play(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, ref)
	return nil
}

func (f *fakePlayback) Pause(context.Context) error  { return nil }
func (f *fakePlayback) Resume(context.Context) error { return nil }

func (f *fakePlayback) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakePlayback) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.plays)
}

func (f *fakePlayback) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// failingPlayback always errors; rounds must still proceed on the timer.
type failingPlayback struct{}

func (failingPlayback) Play(context.Context, string) error {
	return apperrors.ErrPlayback
}
func (failingPlayback) Pause(context.Context) error  { return apperrors.ErrPlayback }
func (failingPlayback) Resume(context.Context) error { return apperrors.ErrPlayback }
func (failingPlayback) Stop(context.Context) error   { return apperrors.ErrPlayback }

func testSession(t *testing.T, cfg Config, pb core.Playback) *Session {
	t.Helper()
	if pb == nil {
		pb = &fakePlayback{}
	}
	s := NewSession(cfg, pb)
	s.SetPool(NewTrackPoolWithRand(rand.New(rand.NewSource(1))))
	t.Cleanup(s.Close)
	return s
}

func (s *Session) phaseIs(want Phase) func() bool {
	return func() bool { return s.Snapshot().Phase == want }
}

func (s *Session) roundIs(want int) func() bool {
	return func() bool {
		snap := s.Snapshot()
		return snap.Phase == PhasePlaying && snap.Round == want
	}
}

func TestStartFailsOnEmptyCatalog(t *testing.T) {
	s := testSession(t, Config{}, nil)

	err := s.Start(context.Background(), nil)
	if !errors.Is(err, apperrors.ErrEmptyCatalog) {
		t.Fatalf("Start() error = %v, want ErrEmptyCatalog", err)
	}
	if got := s.Snapshot().Phase; got != PhaseIdle {
		t.Errorf("Phase after failed start = %v, want PhaseIdle", got)
	}
}

func TestStartFailsOnInsufficientCandidates(t *testing.T) {
	s := testSession(t, Config{RequestedCount: 10}, nil)

	err := s.Start(context.Background(), makeTracks("a", "b"))
	if !errors.Is(err, apperrors.ErrInsufficientCandidates) {
		t.Fatalf("Start() error = %v, want ErrInsufficientCandidates", err)
	}
}

func TestStartRejectsUnplayableTracks(t *testing.T) {
	s := testSession(t, Config{RequestedCount: 1}, nil)

	// Tracks without a playable reference are not usable candidates.
	err := s.Start(context.Background(), []core.Track{{ID: "x", Title: "X"}})
	if !errors.Is(err, apperrors.ErrEmptyCatalog) {
		t.Fatalf("Start() error = %v, want ErrEmptyCatalog", err)
	}
}

func TestStartTwiceFails(t *testing.T) {
	s := testSession(t, Config{RequestedCount: 2}, nil)

	if err := s.Start(context.Background(), makeTracks("a", "b", "c")); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	err := s.Start(context.Background(), makeTracks("d", "e"))
	if !errors.Is(err, apperrors.ErrSessionNotIdle) {
		t.Errorf("second Start() error = %v, want ErrSessionNotIdle", err)
	}
}

func TestSubmitGuessScoring(t *testing.T) {
	pb := &fakePlayback{}
	s := testSession(t, Config{
		RoundDuration:  20,
		RevealDwell:    40 * time.Millisecond,
		RequestedCount: 1,
		TickInterval:   time.Hour, // no ticks: timeLeft stays at 20
	}, pb)

	if err := s.Start(context.Background(), makeTracks("a", "b", "c")); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	current := s.Snapshot().Current
	if current == nil {
		t.Fatal("no current track")
	}

	// Wrong guess: no state change, retries stay allowed.
	s.SetGuess("definitely wrong")
	if s.SubmitGuess(context.Background()) {
		t.Error("wrong guess accepted")
	}
	if got := s.Snapshot().Phase; got != PhasePlaying {
		t.Fatalf("Phase after wrong guess = %v, want PhasePlaying", got)
	}

	// Blank guess is a no-op.
	s.SetGuess("   ")
	if s.SubmitGuess(context.Background()) {
		t.Error("blank guess accepted")
	}

	// Correct guess at timeLeft=20 scores 10 + floor(20/5) = 14.
	s.SetGuess(current.Title)
	if !s.SubmitGuess(context.Background()) {
		t.Fatal("correct guess rejected")
	}

	snap := s.Snapshot()
	if snap.Score != 14 {
		t.Errorf("Score = %d, want 14", snap.Score)
	}
	if snap.Phase != PhaseRevealing {
		t.Errorf("Phase = %v, want PhaseRevealing", snap.Phase)
	}
	if pb.stopCount() == 0 {
		t.Error("playback was not stopped on correct guess")
	}

	// A second submit during the reveal changes nothing.
	if s.SubmitGuess(context.Background()) {
		t.Error("submit during reveal accepted")
	}
	if got := s.Snapshot().Score; got != 14 {
		t.Errorf("Score after reveal submit = %d, want 14", got)
	}
}

func TestGuessByArtist(t *testing.T) {
	s := testSession(t, Config{
		RoundDuration:  30,
		RequestedCount: 1,
		TickInterval:   time.Hour,
	}, nil)

	if err := s.Start(context.Background(), makeTracks("a", "b")); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	current := s.Snapshot().Current
	s.SetGuess("  " + current.Artists[0] + "  ")
	if !s.SubmitGuess(context.Background()) {
		t.Error("artist guess rejected")
	}
}

func TestExpiryAfterCorrectGuessIsDropped(t *testing.T) {
	s := testSession(t, Config{
		RoundDuration:  2,
		RevealDwell:    time.Hour, // hold the reveal so we can observe it
		RequestedCount: 1,
		TickInterval:   30 * time.Millisecond,
	}, nil)

	if err := s.Start(context.Background(), makeTracks("a", "b")); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s.SetGuess(s.Snapshot().Current.Title)
	if !s.SubmitGuess(context.Background()) {
		t.Fatal("correct guess rejected")
	}
	score := s.Snapshot().Score

	// Let the round's expiry window pass; the queued expiry must not
	// re-conclude the revealed round.
	time.Sleep(200 * time.Millisecond)

	snap := s.Snapshot()
	if snap.Phase != PhaseRevealing {
		t.Errorf("Phase = %v, want PhaseRevealing", snap.Phase)
	}
	if snap.Score != score {
		t.Errorf("Score changed from %d to %d after expiry window", score, snap.Score)
	}
}

func TestSessionEndToEnd(t *testing.T) {
	pb := &fakePlayback{}
	s := testSession(t, Config{
		RoundDuration:  20,
		RevealDwell:    40 * time.Millisecond,
		SkipSettle:     20 * time.Millisecond,
		RequestedCount: 3,
		SkipBudget:     5,
		TickInterval:   50 * time.Millisecond,
	}, pb)

	if err := s.Start(context.Background(), makeTracks("a", "b", "c")); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if pb.playCount() != 1 {
		t.Fatalf("playback started %d times, want 1", pb.playCount())
	}

	// Round 1: correct answer at timeLeft=20 scores 14.
	s.SetGuess(s.Snapshot().Current.Title)
	if !s.SubmitGuess(context.Background()) {
		t.Fatal("correct guess rejected")
	}
	if got := s.Snapshot().Score; got != 14 {
		t.Fatalf("Score after round 1 = %d, want 14", got)
	}

	if !waitFor(t, 2*time.Second, s.roundIs(1)) {
		t.Fatal("round 2 never started")
	}

	// Round 2: let the clock run out. Score is unchanged.
	if !waitFor(t, 3*time.Second, s.phaseIs(PhaseRevealing)) {
		t.Fatal("round 2 never expired")
	}
	if got := s.Snapshot().Score; got != 14 {
		t.Errorf("Score after expiry = %d, want 14", got)
	}

	if !waitFor(t, 2*time.Second, s.roundIs(2)) {
		t.Fatal("round 3 never started")
	}

	// Round 3: skip it.
	s.Skip(context.Background())
	if got := s.Snapshot().SkipsRemaining; got != 4 {
		t.Errorf("SkipsRemaining = %d, want 4", got)
	}

	if !waitFor(t, 2*time.Second, s.phaseIs(PhaseComplete)) {
		t.Fatal("session never completed")
	}

	snap := s.Snapshot()
	if snap.Score != 14 {
		t.Errorf("final Score = %d, want 14", snap.Score)
	}
	if snap.Round != 3 {
		t.Errorf("final Round = %d, want 3", snap.Round)
	}
	if pb.playCount() != 3 {
		t.Errorf("playback started %d times, want 3", pb.playCount())
	}
}

func TestSkipBudgetExhausted(t *testing.T) {
	s := testSession(t, Config{
		RoundDuration:  20,
		SkipSettle:     20 * time.Millisecond,
		RequestedCount: 2,
		SkipBudget:     1,
		TickInterval:   time.Hour,
	}, nil)

	if err := s.Start(context.Background(), makeTracks("a", "b", "c")); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s.Skip(context.Background())
	if got := s.Snapshot().SkipsRemaining; got != 0 {
		t.Fatalf("SkipsRemaining = %d, want 0", got)
	}

	if !waitFor(t, 2*time.Second, s.roundIs(1)) {
		t.Fatal("round 2 never started")
	}

	// Skip with an empty budget is a no-op: still playing, still 0.
	s.Skip(context.Background())
	snap := s.Snapshot()
	if snap.Phase != PhasePlaying {
		t.Errorf("Phase after exhausted skip = %v, want PhasePlaying", snap.Phase)
	}
	if snap.SkipsRemaining != 0 {
		t.Errorf("SkipsRemaining went negative: %d", snap.SkipsRemaining)
	}
}

func TestSuggestions(t *testing.T) {
	s := testSession(t, Config{
		RoundDuration:   30,
		RequestedCount:  2,
		SuggestionLimit: 2,
		TickInterval:    time.Hour,
	}, nil)

	candidates := []core.Track{
		{ID: "1", Title: "Yellow Submarine", Artists: []string{"The Beatles"}, PlayableRef: "r1"},
		{ID: "2", Title: "Yesterday", Artists: []string{"The Beatles"}, PlayableRef: "r2"},
		{ID: "3", Title: "Back in Black", Artists: []string{"AC/DC"}, PlayableRef: "r3"},
	}
	if err := s.Start(context.Background(), candidates); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s.SetGuess("ye")
	got := s.Snapshot().Suggestions
	if len(got) == 0 {
		t.Fatal("no suggestions for matching input")
	}
	if len(got) > 2 {
		t.Errorf("suggestion count = %d, want <= 2", len(got))
	}

	s.SetGuess("zzzz")
	if got := s.Snapshot().Suggestions; len(got) != 0 {
		t.Errorf("suggestions for garbage input = %v, want none", got)
	}

	// Suggestions never affect scoring: a suggestion-looking guess that
	// is not the title still misses.
	s.SetGuess("Yell")
	if s.SubmitGuess(context.Background()) {
		t.Error("partial title accepted as correct")
	}
}

func TestPlaybackFailureIsNonFatal(t *testing.T) {
	s := testSession(t, Config{
		RoundDuration:  20,
		RequestedCount: 1,
		TickInterval:   time.Hour,
	}, failingPlayback{})

	if err := s.Start(context.Background(), makeTracks("a")); err != nil {
		t.Fatalf("Start() with failing playback error = %v", err)
	}
	if got := s.Snapshot().Phase; got != PhasePlaying {
		t.Errorf("Phase = %v, want PhasePlaying", got)
	}
}

func TestCloseStopsPendingAdvance(t *testing.T) {
	s := testSession(t, Config{
		RoundDuration:  20,
		RevealDwell:    30 * time.Millisecond,
		RequestedCount: 2,
		TickInterval:   time.Hour,
	}, nil)

	if err := s.Start(context.Background(), makeTracks("a", "b")); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s.SetGuess(s.Snapshot().Current.Title)
	s.SubmitGuess(context.Background())
	s.Close()

	// The armed dwell timer must not advance a closed session.
	time.Sleep(100 * time.Millisecond)
	if got := s.Snapshot().Phase; got != PhaseRevealing {
		t.Errorf("Phase after Close = %v, want PhaseRevealing", got)
	}
}
