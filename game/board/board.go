package board

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the grid dimension; boards are always Size x Size.
const Size = 9

var (
	ErrBadEncoding = errors.New("puzzle encoding does not contain exactly 81 cells")
	ErrOutOfRange  = errors.New("cell position out of range")
)

// Cell is a single grid cell. Digit 0 means empty. Prefilled marks a given
// from the original puzzle; the server never rejects writes to prefilled
// cells, clients enforce that locally.
type Cell struct {
	X          int   `json:"x"`
	Y          int   `json:"y"`
	Digit      int   `json:"digit"`
	Prefilled  bool  `json:"prefilled"`
	Candidates []int `json:"candidates"`
}

// Board is the 9x9 grid for one puzzle instance. Cells are addressed
// Cells[x][y] with x = row, matching the row-major parse order.
type Board struct {
	ID    string           `json:"id"`
	Cells [Size][Size]Cell `json:"cells"`
}

// CandidateToggle adds or removes a single pencil-mark on a cell.
type CandidateToggle struct {
	Candidate int  `json:"candidate"`
	Remove    bool `json:"remove"`
}

// Patch is a single-cell mutation. Either field may be nil; both may be
// set. Digit carries no range validation: the board accepts whatever the
// client sends, keeping the server puzzle-agnostic.
type Patch struct {
	Digit           *int             `json:"digit,omitempty"`
	ModifyCandidate *CandidateToggle `json:"modify_candidate,omitempty"`
}

// Parse builds a Board from a puzzle encoding. All characters outside
// digits, '.' and '-' are stripped first; the result must be exactly 81
// characters or Parse fails with ErrBadEncoding.
func Parse(id, encoding string) (*Board, error) {
	stripped := stripEncoding(encoding)
	if len(stripped) != Size*Size {
		return nil, fmt.Errorf("%w: got %d", ErrBadEncoding, len(stripped))
	}

	b := &Board{ID: id}
	for i, c := range []byte(stripped) {
		x, y := i/Size, i%Size
		cell := Cell{X: x, Y: y, Candidates: []int{}}
		if c >= '1' && c <= '9' {
			cell.Digit = int(c - '0')
			cell.Prefilled = true
		}
		b.Cells[x][y] = cell
	}
	return b, nil
}

// stripEncoding drops everything that is not a digit, '.' or '-'.
func stripEncoding(s string) string {
	var sb strings.Builder
	sb.Grow(Size * Size)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Apply mutates the cell at (x, y). It fails only when the position is
// outside the grid; the patch contents are applied verbatim.
func (b *Board) Apply(x, y int, p Patch) error {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfRange, x, y)
	}

	cell := &b.Cells[x][y]
	if p.Digit != nil {
		cell.Digit = *p.Digit
	}
	if p.ModifyCandidate != nil {
		if p.ModifyCandidate.Remove {
			cell.removeCandidate(p.ModifyCandidate.Candidate)
		} else {
			cell.addCandidate(p.ModifyCandidate.Candidate)
		}
	}
	return nil
}

// addCandidate inserts a pencil-mark unless it is already present.
func (c *Cell) addCandidate(candidate int) {
	for _, existing := range c.Candidates {
		if existing == candidate {
			return
		}
	}
	c.Candidates = append(c.Candidates, candidate)
}

// removeCandidate drops the pencil-mark if present; absent is a no-op.
func (c *Cell) removeCandidate(candidate int) {
	for i, existing := range c.Candidates {
		if existing == candidate {
			c.Candidates = append(c.Candidates[:i], c.Candidates[i+1:]...)
			return
		}
	}
}

// Encode returns the canonical 81-character form of the puzzle's givens:
// prefilled digits in row-major order, '.' everywhere else. Player-entered
// digits and candidates are not part of the canonical form, so
// Parse(Encode()) reproduces the original puzzle.
func (b *Board) Encode() string {
	var sb strings.Builder
	sb.Grow(Size * Size)
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			cell := b.Cells[x][y]
			if cell.Prefilled {
				sb.WriteByte(byte('0' + cell.Digit))
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
