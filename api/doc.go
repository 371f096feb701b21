// Package api provides the HTTP surface for the Sudoku server.
//
// The api package implements:
//   - WebSocket upgrade handling at /ws
//   - A liveness probe at /healthz
//   - Basic counters at /api/stats
//   - Optional static file serving for the browser client
//
// All game traffic flows over the WebSocket protocol handled by the
// transport/websocket package; the HTTP surface itself is a thin wrapper
// with no game logic.
package api
