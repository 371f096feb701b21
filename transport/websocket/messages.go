package websocket

import (
	"encoding/json"
	"errors"

	"github.com/davefol/sudoku-with-friends/game/board"
	"github.com/davefol/sudoku-with-friends/game/room"
)

// Client -> server message types.
const (
	MsgCreateRoom    = "create-room"
	MsgJoinRoom      = "join-room"
	MsgUpdateCell    = "update-cell"
	MsgShowSelection = "show-selection"
)

// Server -> client message types. MsgUpdateCell is reused on the way out:
// the patch is relayed to the other occupants unchanged.
const (
	MsgSetUpBoard            = "set-up-board"
	MsgCantParseSDK          = "cant-parse-sdk"
	MsgRoomNotFound          = "room-not-found"
	MsgRoomIsFull            = "room-is-full"
	MsgShowSelected          = "show-selected"
	MsgRoomNoLongerAvailable = "room-no-longer-available"
)

var errMissingPatch = errors.New("update-cell carries neither digit nor candidate change")

// Envelope is the wire frame for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CreateRoomRequest asks for a fresh room around the given puzzle encoding.
type CreateRoomRequest struct {
	Puzzle string `json:"puzzle"`
}

// JoinRoomRequest asks to join an existing room by id.
type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
}

// UpdateCellRequest is a single-cell patch. The same shape is broadcast
// verbatim to the rest of the room on success.
type UpdateCellRequest struct {
	X               int                    `json:"x"`
	Y               int                    `json:"y"`
	Digit           *int                   `json:"digit,omitempty"`
	ModifyCandidate *board.CandidateToggle `json:"modify_candidate,omitempty"`
}

// Validate rejects patches that would change nothing before they reach
// the board.
func (r UpdateCellRequest) Validate() error {
	if r.Digit == nil && r.ModifyCandidate == nil {
		return errMissingPatch
	}
	return nil
}

// Patch converts the request into a board mutation.
func (r UpdateCellRequest) Patch() board.Patch {
	return board.Patch{Digit: r.Digit, ModifyCandidate: r.ModifyCandidate}
}

// ShowSelectionRequest reports the sender's cursor position.
type ShowSelectionRequest struct {
	Pos room.Position `json:"pos"`
}

// SetUpBoard is the full room snapshot sent to a client entering a room.
// You identifies the recipient's own seat so it can pick its color.
type SetUpBoard struct {
	Board   *board.Board  `json:"board"`
	Players []room.Player `json:"players"`
	You     room.Player   `json:"you"`
}

// ShowSelected relays another player's cursor position and color.
type ShowSelected struct {
	Pos   room.Position `json:"pos"`
	Color string        `json:"color"`
}

// encode wraps a payload in an Envelope and marshals the frame.
func encode(msgType string, payload any) ([]byte, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}
