package world

type Vec2i struct {
	X int
	Y int
}

func (v Vec2i) ToArray() [2]int { return [2]int{v.X, v.Y} }

func (v Vec2i) Add(o Vec2i) Vec2i { return Vec2i{X: v.X + o.X, Y: v.Y + o.Y} }

// Manhattan is the L1 distance to o.
func (v Vec2i) Manhattan(o Vec2i) int {
	dx := v.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := v.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Dir indexes the four cardinal neighbor slots of a tile.
type Dir int

const (
	North Dir = iota
	East
	South
	West
)

var dirOffsets = [4]Vec2i{
	North: {X: 0, Y: -1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: 1},
	West:  {X: -1, Y: 0},
}

func (d Dir) Offset() Vec2i { return dirOffsets[d] }

func (d Dir) Opposite() Dir { return (d + 2) & 3 }

func (d Dir) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	default:
		return "W"
	}
}

// Rect is an inclusive tile-aligned bounding box.
type Rect struct {
	MinX, MinY int
	MaxX, MaxY int
}

func (r Rect) Width() int  { return r.MaxX - r.MinX + 1 }
func (r Rect) Height() int { return r.MaxY - r.MinY + 1 }

func (r Rect) Extend(p Vec2i) Rect {
	if p.X < r.MinX {
		r.MinX = p.X
	}
	if p.X > r.MaxX {
		r.MaxX = p.X
	}
	if p.Y < r.MinY {
		r.MinY = p.Y
	}
	if p.Y > r.MaxY {
		r.MaxY = p.Y
	}
	return r
}

func rectAt(p Vec2i) Rect {
	return Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
}
