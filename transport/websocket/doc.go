// Package websocket implements the per-connection session gateway.
//
// Each browser client holds one WebSocket connection and is bound to at
// most one room at a time. The gateway translates inbound protocol
// messages (create-room, join-room, update-cell, show-selection) into
// registry and board operations and fans the resulting state changes out
// to the other occupants of the same room. Senders never receive their
// own echoes; they apply edits optimistically on their own view.
//
// Every frame in both directions is a JSON Envelope carrying a message
// type and a type-specific payload. Malformed frames and unknown types
// are logged and dropped; no inbound message can take the gateway down.
//
// Within one room, message handling and fan-out happen under a single
// hub critical section, so all occupants observe edits in the order the
// gateway applied them.
package websocket
