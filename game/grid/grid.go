// Package grid contains the square of letters that words are swiped on.
package grid

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Size is the number of rows and columns in the grid.
const Size = 5

// NumCells is the number of letters in the grid.
const NumCells = Size * Size

type (
	// Grid is a square of uppercase letters.
	Grid [Size][Size]byte

	// Coord identifies a cell of the grid.
	Coord struct {
		Row int `json:"r"`
		Col int `json:"c"`
	}
)

// Valid determines if the coordinate is inside the grid.
func (c Coord) Valid() bool {
	return 0 <= c.Row && c.Row < Size && 0 <= c.Col && c.Col < Size
}

// coordAt converts an index in [0,NumCells) to a coordinate, going across each row.
func coordAt(i int) Coord {
	return Coord{
		Row: i / Size,
		Col: i % Size,
	}
}

// At is the letter at the coordinate.
func (g Grid) At(c Coord) byte {
	return g[c.Row][c.Col]
}

// Word joins the letters of the path.
func (g Grid) Word(path []Coord) string {
	var sb strings.Builder
	for _, c := range path {
		sb.WriteByte(g.At(c))
	}
	return sb.String()
}

// Count is the number of times the letter occurs in the grid.
func (g Grid) Count(letter byte) int {
	n := 0
	for _, row := range g {
		for _, l := range row {
			if l == letter {
				n++
			}
		}
	}
	return n
}

// Valid determines if every cell is filled with an uppercase letter.
func (g Grid) Valid() bool {
	for _, row := range g {
		for _, l := range row {
			if !isLetter(l) {
				return false
			}
		}
	}
	return true
}

// String joins the rows with slashes.
func (g Grid) String() string {
	return strings.Join(g.rows(), "/")
}

func (g Grid) rows() []string {
	rows := make([]string, Size)
	for i, row := range g {
		rows[i] = string(row[:])
	}
	return rows
}

// MarshalJSON implements the encoding/json.Marshaler interface to marshal grids into strings of rows.
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.rows())
}

// UnmarshalJSON implements the encoding/json.Unmarshaler interface to unmarshal grids from strings of rows.
func (g *Grid) UnmarshalJSON(b []byte) error {
	var rows []string
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	g2, err := Parse(rows...)
	if err != nil {
		return err
	}
	*g = *g2
	return nil
}

// Parse creates a grid from rows of uppercase letters.
func Parse(rows ...string) (*Grid, error) {
	if len(rows) != Size {
		return nil, fmt.Errorf("grid must have %v rows, got %v", Size, len(rows))
	}
	var g Grid
	for i, row := range rows {
		if len(row) != Size {
			return nil, fmt.Errorf("grid row %v must have %v letters: %q", i, Size, row)
		}
		for j := 0; j < Size; j++ {
			if !isLetter(row[j]) {
				return nil, fmt.Errorf("letter must be uppercase and between A and Z: %q", row[j])
			}
			g[i][j] = row[j]
		}
	}
	return &g, nil
}

// isLetter determines if the byte is an uppercase letter.
func isLetter(b byte) bool {
	return 'A' <= b && b <= 'Z'
}
