package room

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/davefol/sudoku-with-friends/game/board"
)

// DefaultGrace is how long a room may sit empty before it is reaped.
const DefaultGrace = 5 * time.Minute

// Registry handles room lifecycle: creation, lookup, deletion, and the
// deferred reaping of abandoned rooms. It is the only owner of the
// roomID -> Room mapping; nothing else holds a process-wide room table.
type Registry struct {
	grace time.Duration
	log   *slog.Logger

	mu      sync.RWMutex
	rooms   map[string]*Room
	reapers map[string]*time.Timer
}

// NewRegistry creates a registry whose reaper fires after the given grace
// period. A non-positive grace falls back to DefaultGrace.
func NewRegistry(grace time.Duration, log *slog.Logger) *Registry {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Registry{
		grace:   grace,
		log:     log,
		rooms:   make(map[string]*Room),
		reapers: make(map[string]*time.Timer),
	}
}

// Create parses the puzzle encoding into a board and registers a new room
// under a fresh unguessable id. A parse failure registers nothing.
func (r *Registry) Create(encoding string) (*Room, error) {
	id := newRoomID()
	b, err := board.Parse(id, encoding)
	if err != nil {
		return nil, err
	}

	rm := newRoom(b, r.log)

	r.mu.Lock()
	r.rooms[id] = rm
	r.mu.Unlock()

	r.log.Info("room created", "room", id)
	return rm, nil
}

// Get retrieves a room by id.
func (r *Registry) Get(id string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// Join seats a connection in the room and disarms any pending reap for it.
func (r *Registry) Join(id, connectionID string) (*Room, *Player, error) {
	rm, err := r.Get(id)
	if err != nil {
		return nil, nil, err
	}

	player, err := rm.AddPlayer(connectionID)
	if err != nil {
		return nil, nil, err
	}

	r.disarmReaper(id)
	return rm, player, nil
}

// Leave removes a connection from the room's roster; once the roster is
// empty, the reaper is armed so the room is deleted after the grace period
// unless someone joins first. Leaving a deleted room is a no-op.
func (r *Registry) Leave(id, connectionID string) {
	rm, err := r.Get(id)
	if err != nil {
		return
	}

	rm.RemovePlayer(connectionID)
	if rm.Empty() {
		r.armReaper(id)
	}
}

// Delete removes a room unconditionally. Deleting an absent id is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteLocked(id)
}

// Count returns the number of live rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// armReaper schedules deletion of the room after the grace period,
// replacing any timer already pending for the same id.
func (r *Registry) armReaper(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.reapers[id]; ok {
		timer.Stop()
	}
	r.reapers[id] = time.AfterFunc(r.grace, func() { r.reap(id) })
	r.log.Debug("reaper armed", "room", id, "grace", r.grace)
}

// disarmReaper cancels a pending reap, if any.
func (r *Registry) disarmReaper(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.reapers[id]; ok {
		timer.Stop()
		delete(r.reapers, id)
	}
}

// reap deletes the room if its roster is still empty when the grace
// period elapses. A room repopulated in the meantime survives.
func (r *Registry) reap(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.reapers, id)

	rm, ok := r.rooms[id]
	if !ok || !rm.Empty() {
		return
	}
	r.deleteLocked(id)
	r.log.Info("room reaped", "room", id)
}

func (r *Registry) deleteLocked(id string) {
	if timer, ok := r.reapers[id]; ok {
		timer.Stop()
		delete(r.reapers, id)
	}
	delete(r.rooms, id)
}

// newRoomID generates a 40-character hex room id from 20 bytes of
// cryptographic randomness.
func newRoomID() string {
	bytes := make([]byte, 20)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
