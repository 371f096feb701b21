package board

import (
	"errors"
	"strings"
	"testing"
)

const testPuzzle = "53..7....6..195....98....6.8...6...34..8.3..17...2...6.6....28....419..5....8..79"

func intPtr(v int) *int { return &v }

func TestParse(t *testing.T) {
	t.Run("valid puzzle", func(t *testing.T) {
		b, err := Parse("room-1", testPuzzle)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if b.ID != "room-1" {
			t.Errorf("Expected board ID 'room-1', got '%s'", b.ID)
		}

		// First row of the puzzle: 5 3 . . 7 . . . .
		if !b.Cells[0][0].Prefilled || b.Cells[0][0].Digit != 5 {
			t.Errorf("Expected prefilled 5 at (0,0), got %+v", b.Cells[0][0])
		}
		if !b.Cells[0][1].Prefilled || b.Cells[0][1].Digit != 3 {
			t.Errorf("Expected prefilled 3 at (0,1), got %+v", b.Cells[0][1])
		}
		if b.Cells[0][2].Prefilled || b.Cells[0][2].Digit != 0 {
			t.Errorf("Expected empty cell at (0,2), got %+v", b.Cells[0][2])
		}

		// Last cell of the puzzle is 9.
		if !b.Cells[8][8].Prefilled || b.Cells[8][8].Digit != 9 {
			t.Errorf("Expected prefilled 9 at (8,8), got %+v", b.Cells[8][8])
		}
	})

	t.Run("prefilled cells match encoding", func(t *testing.T) {
		b, err := Parse("room-1", testPuzzle)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		for i := 0; i < Size*Size; i++ {
			cell := b.Cells[i/Size][i%Size]
			want := testPuzzle[i] != '.'
			if cell.Prefilled != want {
				t.Errorf("Cell %d: expected prefilled=%v for encoding char %q", i, want, testPuzzle[i])
			}
			if len(cell.Candidates) != 0 {
				t.Errorf("Cell %d: expected no candidates on a fresh board", i)
			}
		}
	})

	t.Run("formatting characters are stripped", func(t *testing.T) {
		var pretty strings.Builder
		for i := 0; i < Size*Size; i += Size {
			pretty.WriteString(testPuzzle[i : i+3])
			pretty.WriteString(" | ")
			pretty.WriteString(testPuzzle[i+3 : i+6])
			pretty.WriteString(" | ")
			pretty.WriteString(testPuzzle[i+6 : i+9])
			pretty.WriteString("\n")
		}

		b, err := Parse("room-1", pretty.String())
		if err != nil {
			t.Fatalf("Parse failed on formatted encoding: %v", err)
		}
		if b.Encode() != testPuzzle {
			t.Error("Formatted encoding did not parse to the same board")
		}
	})

	t.Run("dashes encode blanks", func(t *testing.T) {
		b, err := Parse("room-1", strings.ReplaceAll(testPuzzle, ".", "-"))
		if err != nil {
			t.Fatalf("Parse failed on dash encoding: %v", err)
		}
		if b.Cells[0][2].Prefilled {
			t.Error("Expected dash to encode an empty cell")
		}
	})

	t.Run("zero encodes an empty cell", func(t *testing.T) {
		b, err := Parse("room-1", strings.ReplaceAll(testPuzzle, ".", "0"))
		if err != nil {
			t.Fatalf("Parse failed on zero encoding: %v", err)
		}
		if b.Cells[0][2].Prefilled || b.Cells[0][2].Digit != 0 {
			t.Errorf("Expected '0' to encode an empty cell, got %+v", b.Cells[0][2])
		}
	})

	t.Run("too short", func(t *testing.T) {
		_, err := Parse("room-1", testPuzzle[:80])
		if !errors.Is(err, ErrBadEncoding) {
			t.Errorf("Expected ErrBadEncoding, got %v", err)
		}
	})

	t.Run("too long", func(t *testing.T) {
		_, err := Parse("room-1", testPuzzle+"1")
		if !errors.Is(err, ErrBadEncoding) {
			t.Errorf("Expected ErrBadEncoding, got %v", err)
		}
	})

	t.Run("only junk characters", func(t *testing.T) {
		_, err := Parse("room-1", "not a puzzle at all")
		if !errors.Is(err, ErrBadEncoding) {
			t.Errorf("Expected ErrBadEncoding, got %v", err)
		}
	})
}

func TestApply(t *testing.T) {
	newBoard := func(t *testing.T) *Board {
		t.Helper()
		b, err := Parse("room-1", testPuzzle)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		return b
	}

	t.Run("set digit", func(t *testing.T) {
		b := newBoard(t)
		if err := b.Apply(0, 2, Patch{Digit: intPtr(4)}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Cells[0][2].Digit != 4 {
			t.Errorf("Expected digit 4, got %d", b.Cells[0][2].Digit)
		}
	})

	t.Run("clear digit", func(t *testing.T) {
		b := newBoard(t)
		if err := b.Apply(0, 2, Patch{Digit: intPtr(4)}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if err := b.Apply(0, 2, Patch{Digit: intPtr(0)}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Cells[0][2].Digit != 0 {
			t.Errorf("Expected cleared digit, got %d", b.Cells[0][2].Digit)
		}
	})

	t.Run("prefilled cells accept writes", func(t *testing.T) {
		// The server does not guard givens; clients do.
		b := newBoard(t)
		if err := b.Apply(0, 0, Patch{Digit: intPtr(9)}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if b.Cells[0][0].Digit != 9 {
			t.Errorf("Expected digit 9, got %d", b.Cells[0][0].Digit)
		}
	})

	t.Run("add candidate", func(t *testing.T) {
		b := newBoard(t)
		if err := b.Apply(0, 2, Patch{ModifyCandidate: &CandidateToggle{Candidate: 4}}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if len(b.Cells[0][2].Candidates) != 1 || b.Cells[0][2].Candidates[0] != 4 {
			t.Errorf("Expected candidates [4], got %v", b.Cells[0][2].Candidates)
		}
	})

	t.Run("duplicate candidate is a no-op", func(t *testing.T) {
		b := newBoard(t)
		b.Apply(0, 2, Patch{ModifyCandidate: &CandidateToggle{Candidate: 4}})
		b.Apply(0, 2, Patch{ModifyCandidate: &CandidateToggle{Candidate: 4}})
		if len(b.Cells[0][2].Candidates) != 1 {
			t.Errorf("Expected candidates [4] after duplicate add, got %v", b.Cells[0][2].Candidates)
		}
	})

	t.Run("remove candidate", func(t *testing.T) {
		b := newBoard(t)
		b.Apply(0, 2, Patch{ModifyCandidate: &CandidateToggle{Candidate: 4}})
		b.Apply(0, 2, Patch{ModifyCandidate: &CandidateToggle{Candidate: 7}})
		if err := b.Apply(0, 2, Patch{ModifyCandidate: &CandidateToggle{Candidate: 4, Remove: true}}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if len(b.Cells[0][2].Candidates) != 1 || b.Cells[0][2].Candidates[0] != 7 {
			t.Errorf("Expected candidates [7], got %v", b.Cells[0][2].Candidates)
		}
	})

	t.Run("remove absent candidate is a no-op", func(t *testing.T) {
		b := newBoard(t)
		if err := b.Apply(0, 2, Patch{ModifyCandidate: &CandidateToggle{Candidate: 4, Remove: true}}); err != nil {
			t.Fatalf("Expected no error removing absent candidate, got %v", err)
		}
		if len(b.Cells[0][2].Candidates) != 0 {
			t.Errorf("Expected no candidates, got %v", b.Cells[0][2].Candidates)
		}
	})

	t.Run("digit and candidate in one patch", func(t *testing.T) {
		b := newBoard(t)
		patch := Patch{Digit: intPtr(2), ModifyCandidate: &CandidateToggle{Candidate: 6}}
		if err := b.Apply(4, 4, patch); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		cell := b.Cells[4][4]
		if cell.Digit != 2 || len(cell.Candidates) != 1 {
			t.Errorf("Expected digit 2 and one candidate, got %+v", cell)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		b := newBoard(t)
		for _, pos := range [][2]int{{-1, 0}, {0, -1}, {9, 0}, {0, 9}, {100, 100}} {
			err := b.Apply(pos[0], pos[1], Patch{Digit: intPtr(1)})
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Expected ErrOutOfRange for %v, got %v", pos, err)
			}
		}
	})

	t.Run("empty patch", func(t *testing.T) {
		b := newBoard(t)
		if err := b.Apply(0, 0, Patch{}); err != nil {
			t.Fatalf("Empty patch should be accepted, got %v", err)
		}
		if b.Cells[0][0].Digit != 5 {
			t.Error("Empty patch should not change the cell")
		}
	})
}

func TestEncode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		b, err := Parse("room-1", testPuzzle)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if got := b.Encode(); got != testPuzzle {
			t.Errorf("Round trip mismatch:\n want %s\n got  %s", testPuzzle, got)
		}
	})

	t.Run("player edits do not change the canonical form", func(t *testing.T) {
		b, err := Parse("room-1", testPuzzle)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		b.Apply(0, 2, Patch{Digit: intPtr(4)})
		b.Apply(0, 3, Patch{ModifyCandidate: &CandidateToggle{Candidate: 1}})
		if got := b.Encode(); got != testPuzzle {
			t.Errorf("Canonical form changed by player edits:\n want %s\n got  %s", testPuzzle, got)
		}
	})
}
