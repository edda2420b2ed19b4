package repository

import (
	"context"
	"sync"
	"time"

	"ctchen222/Gomoku/internal/game"
)

type memoryEntry struct {
	state     game.State
	updatedAt time.Time
}

type memoryGameRepository struct {
	mu    sync.RWMutex
	games map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryGameRepository creates an in-process GameRepository. Games not
// written for longer than ttl read as missing and are evicted on the next
// Create; a zero ttl keeps games until they are deleted.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return &memoryGameRepository{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create stores a new game, replacing only an entry that has already expired.
func (r *memoryGameRepository) Create(ctx context.Context, id string, state game.State) (err error) {
	_, span := startSpan(ctx, "GameRepository.Create", id)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictExpired(now)

	if _, ok := r.games[id]; ok {
		return ErrGameExists
	}
	r.games[id] = memoryEntry{state: cloneState(state), updatedAt: now}
	return nil
}

func (r *memoryGameRepository) FindByID(ctx context.Context, id string) (state game.State, err error) {
	_, span := startSpan(ctx, "GameRepository.FindByID", id)
	defer func() { endSpan(span, err) }()

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.live(id, r.now())
	if !ok {
		return game.State{}, ErrGameNotFound
	}
	return cloneState(entry.state), nil
}

// Save overwrites a live game and refreshes its expiry.
func (r *memoryGameRepository) Save(ctx context.Context, id string, state game.State) (err error) {
	_, span := startSpan(ctx, "GameRepository.Save", id)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if _, ok := r.live(id, now); !ok {
		return ErrGameNotFound
	}
	r.games[id] = memoryEntry{state: cloneState(state), updatedAt: now}
	return nil
}

func (r *memoryGameRepository) Delete(ctx context.Context, id string) (err error) {
	_, span := startSpan(ctx, "GameRepository.Delete", id)
	defer func() { endSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.live(id, r.now())
	delete(r.games, id)
	if !ok {
		return ErrGameNotFound
	}
	return nil
}

// live returns the entry for id unless it is missing or expired.
func (r *memoryGameRepository) live(id string, now time.Time) (memoryEntry, bool) {
	entry, ok := r.games[id]
	if !ok || r.expired(entry, now) {
		return memoryEntry{}, false
	}
	return entry, true
}

func (r *memoryGameRepository) expired(entry memoryEntry, now time.Time) bool {
	return r.ttl > 0 && !now.Before(entry.updatedAt.Add(r.ttl))
}

// evictExpired drops every expired entry. Callers hold the write lock.
func (r *memoryGameRepository) evictExpired(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, entry := range r.games {
		if r.expired(entry, now) {
			delete(r.games, id)
		}
	}
}

// cloneState detaches the stored snapshot from the caller's board and last move.
func cloneState(s game.State) game.State {
	s.Board = s.Board.Clone()
	if s.LastMove != nil {
		last := *s.LastMove
		s.LastMove = &last
	}
	return s
}
