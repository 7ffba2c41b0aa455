// Package blueprint expands row-string building layouts into absolute tile
// placements.
package blueprint

import "fmt"

// TileType is what a layout symbol builds.
type TileType string

const (
	TypeWall   TileType = "wall"
	TypeFloor  TileType = "floor"
	TypeDoor   TileType = "door"
	TypeWindow TileType = "window"
)

// Symbol maps one layout character to a buildable tile.
type Symbol struct {
	Type     TileType
	Material string
}

// Placement is one expanded target tile in absolute coordinates.
type Placement struct {
	X, Y     int
	Type     TileType
	Material string
}

// NormalizeRotation converts a caller-provided rotation into a quarter-turn
// count in [0,3]. It accepts quarter-turns (0..3) or degrees (multiples of 90).
func NormalizeRotation(r int) int {
	if r%90 == 0 && (r > 3 || r < -3) {
		r = r / 90
	}
	r %= 4
	if r < 0 {
		r += 4
	}
	return r
}

// RotateXY rotates an (x,y) layout offset by rot*90 degrees clockwise.
// rot must be normalized.
func RotateXY(x, y, rot int) (rx, ry int) {
	switch rot & 3 {
	case 0:
		return x, y
	case 1:
		return -y, x
	case 2:
		return -x, -y
	default: // 3
		return y, -x
	}
}

// ParseLayout expands rows into placements anchored at origin. Rows must be
// equal length; every non-space symbol must appear in symbols. Space (and the
// '.' symbol when unmapped) leaves the cell untouched.
func ParseLayout(rows []string, symbols map[string]Symbol, originX, originY, rotation int) ([]Placement, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("layout: no rows")
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("layout: row %d length %d, want %d", i, len(r), width)
		}
	}
	rot := NormalizeRotation(rotation)

	var out []Placement
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			ch := string(row[x])
			if ch == " " {
				continue
			}
			sym, ok := symbols[ch]
			if !ok {
				return nil, fmt.Errorf("layout: unmapped symbol %q at (%d,%d)", ch, x, y)
			}
			rx, ry := RotateXY(x, y, rot)
			out = append(out, Placement{
				X:        originX + rx,
				Y:        originY + ry,
				Type:     sym.Type,
				Material: sym.Material,
			})
		}
	}
	return out, nil
}
