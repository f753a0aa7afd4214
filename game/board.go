package game

import "fmt"

// Position is a board coordinate.
type Position struct {
	X, Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Chebyshev distance: diagonal steps cost one.
func Chebyshev(a, b Position) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// Manhattan distance: orthogonal steps only.
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Board is a fixed grid holding at most one unit per cell.
type Board struct {
	width    int
	height   int
	diagonal bool
	cells    []*Unit // row-major
}

func NewBoard(width, height int, diagonal bool) *Board {
	return &Board{
		width:    width,
		height:   height,
		diagonal: diagonal,
		cells:    make([]*Unit, width*height),
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// Inside reports whether p is on the board.
func (b *Board) Inside(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.width && p.Y < b.height
}

// At returns the unit at p, or nil when p is empty or off the board.
func (b *Board) At(p Position) *Unit {
	if !b.Inside(p) {
		return nil
	}
	return b.cells[p.Y*b.width+p.X]
}

// Distance measures under the board's adjacency metric.
func (b *Board) Distance(from, to Position) int {
	if b.diagonal {
		return Chebyshev(from, to)
	}
	return Manhattan(from, to)
}

func (b *Board) put(u *Unit) {
	b.cells[u.Pos.Y*b.width+u.Pos.X] = u
}

func (b *Board) clear(p Position) {
	b.cells[p.Y*b.width+p.X] = nil
}

// Units returns the units on the board in row-major order.
func (b *Board) Units() []*Unit {
	var units []*Unit
	for _, u := range b.cells {
		if u != nil {
			units = append(units, u)
		}
	}
	return units
}
