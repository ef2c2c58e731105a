package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pverge/blindtest/internal/core"
	apperrors "github.com/pverge/blindtest/internal/errors"
)

// TrackPool selects random, non-repeating subsets of candidate tracks.
// Issued track IDs accumulate for the lifetime of the pool, so repeated
// selections within one session never replay a track. A pool is owned by
// exactly one session and is not safe for concurrent use.
type TrackPool struct {
	rng      *rand.Rand
	issuedID map[string]struct{}
}

// NewTrackPool creates a pool seeded from the current time.
func NewTrackPool() *TrackPool {
	return NewTrackPoolWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewTrackPoolWithRand creates a pool using the given random source.
// Selection is deterministic for a fixed source.
func NewTrackPoolWithRand(rng *rand.Rand) *TrackPool {
	return &TrackPool{
		rng:      rng,
		issuedID: make(map[string]struct{}),
	}
}

// Select returns count tracks drawn at random from candidates, excluding
// any track whose ID was issued by a previous call. The returned order is
// the play order. If fewer than count eligible tracks remain, Select
// fails with ErrInsufficientCandidates and issues nothing.
func (p *TrackPool) Select(candidates []core.Track, count int) ([]core.Track, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid selection count %d", count)
	}

	eligible := make([]core.Track, 0, len(candidates))
	for _, t := range candidates {
		if t.ID == "" {
			continue
		}
		if _, taken := p.issuedID[t.ID]; taken {
			continue
		}
		eligible = append(eligible, t)
	}

	if len(eligible) < count {
		return nil, fmt.Errorf("%w: want %d, have %d", apperrors.ErrInsufficientCandidates, count, len(eligible))
	}

	p.rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	selected := eligible[:count]
	for _, t := range selected {
		p.issuedID[t.ID] = struct{}{}
	}

	return selected, nil
}

// Issued returns the number of track IDs issued so far.
func (p *TrackPool) Issued() int {
	return len(p.issuedID)
}
