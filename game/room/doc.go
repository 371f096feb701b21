// Package room provides room lifecycle management for shared Sudoku boards.
//
// The package implements:
//   - Room: one live game session owning a board and a player roster
//   - Registry: thread-safe storage and retrieval of rooms by id
//   - Deferred reaping of rooms left empty past a grace period
//
// Room Identifiers:
//
// Rooms use 40-character hex IDs derived from 20 bytes of cryptographic
// randomness. Rooms are joinable only by id, so the id doubles as the
// room's access token and is never reused.
//
// Rosters and Colors:
//
// Each room seats at most five players. Every player is assigned a color
// from a fixed palette on join; the color returns to the room's pool when
// the player leaves. Colors identify players' cursors on other clients.
//
// Concurrency:
//
// The registry is guarded by its own lock and each room by a per-room
// mutex, so edits to one board are serialized while different rooms
// proceed independently. Reaping is a cancellable timer keyed by room id:
// it is armed when a roster empties, disarmed by the next join, and on
// expiry deletes the room only if it is still empty.
package room
