// Package board implements the shared Sudoku grid for one room.
//
// A Board is constructed once from an 81-character puzzle encoding and is
// mutated one cell at a time through Apply. The board is a shared
// scratchpad: it never validates edits against Sudoku rules, and it accepts
// any digit a client sends. Prefilled cells (the puzzle's givens) are
// marked so clients can refuse edits locally, but the server does not
// enforce that guard.
//
// Puzzle encoding:
//
// The encoding is any string that, after stripping every character outside
// digits, '.' and '-', is exactly 81 characters long. Positions are
// row-major: index i maps to (x = i/9, y = i%9). A digit 1-9 is a
// prefilled given; '.' or '-' is an empty cell.
//
//	b, err := board.Parse(id, "53..7....6..195....98....6.8...6...34..8.3..17...2...6.6....28....419..5....8..79")
package board
