package world

// Terrain is the natural ground type of a tile, independent of anything
// built on top of it.
type Terrain uint8

const (
	TerrainGrass Terrain = iota
	TerrainDirt
	TerrainSand
	TerrainRock
	TerrainWater
)

func (t Terrain) String() string {
	switch t {
	case TerrainGrass:
		return "GRASS"
	case TerrainDirt:
		return "DIRT"
	case TerrainSand:
		return "SAND"
	case TerrainRock:
		return "ROCK"
	default:
		return "WATER"
	}
}

// OccupantKind tags the Occupant union. A tile holds at most one built
// structure; wall+door on the same tile is unrepresentable.
type OccupantKind uint8

const (
	OccupantNone OccupantKind = iota
	OccupantWall
	OccupantDoor
	OccupantWindow
)

func (k OccupantKind) String() string {
	switch k {
	case OccupantWall:
		return "WALL"
	case OccupantDoor:
		return "DOOR"
	case OccupantWindow:
		return "WINDOW"
	default:
		return "NONE"
	}
}

// Occupant is the built structure on a tile. Material/Health/Progress are
// meaningful for every kind except OccupantNone; Open only for doors;
// Orientation only for walls.
type Occupant struct {
	Kind        OccupantKind
	Material    string
	Health      int
	Progress    int
	Open        bool
	Orientation Dir
}

// Tile is one grid cell. Tiles live in chunk-owned arenas; neighbor slots
// are direct references resolved at chunk link time and nil while the
// adjacent tile is unloaded.
type Tile struct {
	Pos       Vec2i
	Terrain   Terrain
	Floor     string // floor material id, "" = bare terrain
	Elevation int

	occ Occupant

	neighbors [4]*Tile
}

// Neighbor returns the adjacent tile in direction d, or nil at a chunk
// boundary whose peer is not loaded.
func (t *Tile) Neighbor(d Dir) *Tile { return t.neighbors[d] }

func (t *Tile) Occupant() Occupant { return t.occ }

func (t *Tile) HasFloor() bool { return t.Floor != "" }

// Passable reports whether the built structure on the tile admits entry.
// Terrain and elevation gating live in the movement system.
func (t *Tile) Passable() bool {
	switch t.occ.Kind {
	case OccupantWall:
		return false
	case OccupantDoor:
		return t.occ.Open
	default:
		return true
	}
}
