package room

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/davefol/sudoku-with-friends/game/board"
)

// palette holds the cursor colors handed out to players. Its size caps the
// roster: a room is full when every color is taken.
var palette = [...]string{"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4"}

// MaxPlayers is the roster limit per room, one player per palette color.
const MaxPlayers = len(palette)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrPlayerNotFound = errors.New("player not found in room")
)

// Position is a cursor location on the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Player is one occupant of a room, keyed by its connection id.
type Player struct {
	ConnectionID string   `json:"connection_id"`
	Color        string   `json:"color"`
	Selection    Position `json:"selection"`
}

// Room is one live game session: a shared board plus the roster of
// connections currently editing it. All methods are safe for concurrent
// use; the per-room mutex serializes board and roster mutation so
// occupants observe edits in a single order.
type Room struct {
	id  string
	log *slog.Logger

	mu      sync.Mutex
	board   *board.Board
	players []*Player
	pool    []string // colors not currently assigned
}

func newRoom(b *board.Board, log *slog.Logger) *Room {
	pool := make([]string, MaxPlayers)
	copy(pool, palette[:])
	return &Room{
		id:    b.ID,
		log:   log,
		board: b,
		pool:  pool,
	}
}

// ID returns the room's identifier, which is also the board's id.
func (r *Room) ID() string { return r.id }

// AddPlayer seats a new connection in the room, assigning it the next
// available color and a default selection at the origin. Fails with
// ErrRoomFull when the palette is exhausted.
func (r *Room) AddPlayer(connectionID string) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}

	player := &Player{
		ConnectionID: connectionID,
		Color:        r.pool[0],
	}
	r.pool = r.pool[1:]
	r.players = append(r.players, player)
	return player, nil
}

// RemovePlayer takes a connection out of the roster and returns its color
// to the pool. Removing an unknown connection is logged and ignored.
func (r *Room) RemovePlayer(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, player := range r.players {
		if player.ConnectionID == connectionID {
			r.pool = append(r.pool, player.Color)
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
	r.log.Warn("remove of unknown player", "room", r.id, "connection", connectionID)
}

// SetSelection records the player's cursor position and returns its
// assigned color for the broadcast payload.
func (r *Room) SetSelection(connectionID string, pos Position) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, player := range r.players {
		if player.ConnectionID == connectionID {
			player.Selection = pos
			return player.Color, nil
		}
	}
	return "", ErrPlayerNotFound
}

// ApplyEdit applies a single-cell patch to the room's board.
func (r *Room) ApplyEdit(x, y int, patch board.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.Apply(x, y, patch)
}

// Empty reports whether the roster has no players.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

// PlayerCount returns the current roster size.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Snapshot is a point-in-time copy of a room's full state, sent to a
// client when it enters the room.
type Snapshot struct {
	Board   *board.Board `json:"board"`
	Players []Player     `json:"players"`
}

// Snapshot copies the board and roster under the room lock so the result
// can be marshaled without racing later edits.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	boardCopy := *r.board
	for x := range boardCopy.Cells {
		for y := range boardCopy.Cells[x] {
			cell := &boardCopy.Cells[x][y]
			cell.Candidates = append([]int{}, cell.Candidates...)
		}
	}

	players := make([]Player, len(r.players))
	for i, player := range r.players {
		players[i] = *player
	}

	return Snapshot{Board: &boardCopy, Players: players}
}
