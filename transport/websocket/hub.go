package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/davefol/sudoku-with-friends/game/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Hub is the session gateway. It owns the connection-to-room bindings and
// serializes message handling and fan-out under one mutex, so occupants
// of a room observe edits in the order they were applied.
type Hub struct {
	registry *room.Registry
	log      *slog.Logger

	mu    sync.Mutex
	rooms map[string]map[*Client]bool // occupants by room id
	conns map[*Client]bool
}

// NewHub creates a gateway over the given room registry.
func NewHub(registry *room.Registry, log *slog.Logger) *Hub {
	return &Hub{
		registry: registry,
		log:      log,
		rooms:    make(map[string]map[*Client]bool),
		conns:    make(map[*Client]bool),
	}
}

// ServeWS upgrades an HTTP request and starts the connection's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		id:   uuid.NewString(),
	}

	h.mu.Lock()
	h.conns[client] = true
	h.mu.Unlock()

	h.log.Info("client connected", "connection", client.id)

	go client.writePump()
	go client.readPump()
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// dispatch routes one inbound frame. No frame may take the gateway down:
// malformed JSON and unknown types are dropped, and a panic inside a
// handler is converted into a room-unavailable notice for the sender's
// room instead of propagating.
func (h *Hub) dispatch(c *Client, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("message handler panicked", "connection", c.id, "panic", r)
			h.mu.Lock()
			defer h.mu.Unlock()
			if c.roomID != "" {
				h.broadcastLocked(c.roomID, c, mustEncode(MsgRoomNoLongerAvailable, nil))
			}
		}
	}()

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Warn("malformed frame", "connection", c.id, "err", err)
		return
	}

	switch env.Type {
	case MsgCreateRoom:
		var req CreateRoomRequest
		if !h.decode(c, env.Data, &req) {
			return
		}
		h.createRoom(c, req)

	case MsgJoinRoom:
		var req JoinRoomRequest
		if !h.decode(c, env.Data, &req) {
			return
		}
		h.joinRoom(c, req)

	case MsgUpdateCell:
		var req UpdateCellRequest
		if !h.decode(c, env.Data, &req) {
			return
		}
		h.updateCell(c, req)

	case MsgShowSelection:
		var req ShowSelectionRequest
		if !h.decode(c, env.Data, &req) {
			return
		}
		h.showSelection(c, req)

	default:
		h.log.Warn("unknown message type", "connection", c.id, "type", env.Type)
	}
}

// decode unmarshals a payload, logging and dropping the frame on failure.
func (h *Hub) decode(c *Client, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		h.log.Warn("malformed payload", "connection", c.id, "err", err)
		return false
	}
	return true
}

// createRoom leaves any current room, registers a fresh one around the
// puzzle encoding, and seats the sender in it. A parse failure leaves the
// sender unbound.
func (h *Hub) createRoom(c *Client, req CreateRoomRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(c)

	rm, err := h.registry.Create(req.Puzzle)
	if err != nil {
		h.log.Info("puzzle rejected", "connection", c.id, "err", err)
		c.enqueue(mustEncode(MsgCantParseSDK, nil))
		return
	}

	_, player, err := h.registry.Join(rm.ID(), c.id)
	if err != nil {
		// A brand-new room cannot be full; it can only have been
		// deleted out from under us.
		h.log.Error("join of fresh room failed", "room", rm.ID(), "err", err)
		c.enqueue(mustEncode(MsgRoomNotFound, nil))
		return
	}

	h.bindLocked(c, rm.ID())
	h.sendSnapshot(c, rm, player)
}

// joinRoom moves the sender into an existing room, notifying it when the
// room is unknown or full. Either failure leaves the sender unbound.
func (h *Hub) joinRoom(c *Client, req JoinRoomRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(c)

	rm, player, err := h.registry.Join(req.RoomID, c.id)
	switch {
	case err == nil:
		h.bindLocked(c, rm.ID())
		h.sendSnapshot(c, rm, player)
	case errors.Is(err, room.ErrRoomNotFound):
		c.enqueue(mustEncode(MsgRoomNotFound, nil))
	case errors.Is(err, room.ErrRoomFull):
		c.enqueue(mustEncode(MsgRoomIsFull, nil))
	default:
		h.log.Error("join failed", "room", req.RoomID, "err", err)
		c.enqueue(mustEncode(MsgRoomNotFound, nil))
	}
}

// updateCell applies a patch to the sender's board and relays it,
// unchanged, to every other occupant. Any failure is converted into a
// room-unavailable notice for the others; the sender's own binding is
// left as-is.
func (h *Hub) updateCell(c *Client, req UpdateCellRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.roomID == "" {
		h.log.Warn("update-cell without a room", "connection", c.id)
		return
	}

	fail := func(err error) {
		h.log.Warn("update-cell failed", "connection", c.id, "room", c.roomID, "err", err)
		h.broadcastLocked(c.roomID, c, mustEncode(MsgRoomNoLongerAvailable, nil))
	}

	rm, err := h.registry.Get(c.roomID)
	if err != nil {
		fail(err)
		return
	}
	if err := req.Validate(); err != nil {
		fail(err)
		return
	}
	if err := rm.ApplyEdit(req.X, req.Y, req.Patch()); err != nil {
		fail(err)
		return
	}

	h.broadcastLocked(c.roomID, c, mustEncode(MsgUpdateCell, req))
}

// showSelection records the sender's cursor and relays position plus
// roster color to the other occupants. The color comes from the roster,
// never from the caller.
func (h *Hub) showSelection(c *Client, req ShowSelectionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.roomID == "" {
		return
	}

	rm, err := h.registry.Get(c.roomID)
	if err != nil {
		h.log.Warn("selection for vanished room", "connection", c.id, "room", c.roomID)
		return
	}

	color, err := rm.SetSelection(c.id, req.Pos)
	if err != nil {
		h.log.Warn("selection for unknown player", "connection", c.id, "room", c.roomID)
		return
	}

	h.broadcastLocked(c.roomID, c, mustEncode(MsgShowSelected, ShowSelected{Pos: req.Pos, Color: color}))
}

// disconnect performs roster cleanup when a connection's read pump exits.
func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.conns[c] {
		return
	}

	h.leaveLocked(c)
	delete(h.conns, c)
	close(c.send)
	h.log.Info("client disconnected", "connection", c.id)
}

// leaveLocked unbinds the client from its current room, if any, updating
// the roster and arming the reaper when the room empties.
func (h *Hub) leaveLocked(c *Client) {
	if c.roomID == "" {
		return
	}

	h.registry.Leave(c.roomID, c.id)

	if occupants, ok := h.rooms[c.roomID]; ok {
		delete(occupants, c)
		if len(occupants) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
	c.roomID = ""
}

// bindLocked attaches the client to a room for fan-out.
func (h *Hub) bindLocked(c *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	c.roomID = roomID
}

// broadcastLocked fans a frame out to every occupant of the room except
// the sender.
func (h *Hub) broadcastLocked(roomID string, except *Client, data []byte) {
	for client := range h.rooms[roomID] {
		if client == except {
			continue
		}
		client.enqueue(data)
	}
}

// sendSnapshot delivers the full board-plus-roster state to one client.
func (h *Hub) sendSnapshot(c *Client, rm *room.Room, player *room.Player) {
	snap := rm.Snapshot()
	c.enqueue(mustEncode(MsgSetUpBoard, SetUpBoard{
		Board:   snap.Board,
		Players: snap.Players,
		You:     *player,
	}))
}

// mustEncode builds an outbound frame; all outbound payloads are
// marshalable by construction.
func mustEncode(msgType string, payload any) []byte {
	data, err := encode(msgType, payload)
	if err != nil {
		panic(err)
	}
	return data
}
