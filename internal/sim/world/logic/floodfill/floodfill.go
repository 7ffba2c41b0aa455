// Package floodfill implements the room-partitioning traversal over floor
// tiles. It is pure: callers supply a classifier and get back regions, so
// the algorithm is testable without a live tile graph.
package floodfill

// P is a tile coordinate.
type P struct {
	X int
	Y int
}

// Class is what the flood sees at a coordinate.
type Class int

const (
	// ClassVoid marks unloaded or out-of-bounds coordinates.
	ClassVoid Class = iota
	// ClassTerrain is a loaded tile with no floor material.
	ClassTerrain
	// ClassFloor is traversable room interior.
	ClassFloor
	// ClassWall bounds a region and is recorded, not traversed.
	ClassWall
	// ClassDoor bounds a region and is recorded as a connector.
	ClassDoor
)

// Region is one maximal connected set of floor tiles.
type Region struct {
	Floor []P
	Walls []P
	Doors []P

	// Enclosed is true only when every floor tile's four neighbors are
	// wall, door, or floor belonging to this same region.
	Enclosed bool
}

var neighborOffsets = [4]P{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Fill runs a BFS from start across ClassFloor tiles. classAt is consulted
// once per visited coordinate; visited is shared across calls within one
// partition pass so regions never overlap. budget, when non-nil, is
// decremented per expanded floor tile; the fill aborts with ok=false once it
// reaches zero, leaving visited consistent so the pass can resume later. An
// aborted region is never Enclosed.
func Fill(start P, classAt func(P) Class, visited map[P]bool, budget *int) (Region, bool) {
	var reg Region
	if classAt(start) != ClassFloor || visited[start] {
		return reg, true
	}

	reg.Enclosed = true
	inRegion := map[P]bool{}
	wallSeen := map[P]bool{}
	doorSeen := map[P]bool{}

	queue := []P{start}
	visited[start] = true
	inRegion[start] = true

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if budget != nil {
			if *budget <= 0 {
				// The boundary was never fully examined.
				reg.Enclosed = false
				return reg, false
			}
			*budget--
		}
		reg.Floor = append(reg.Floor, p)

		for _, off := range neighborOffsets {
			np := P{X: p.X + off.X, Y: p.Y + off.Y}
			switch classAt(np) {
			case ClassFloor:
				if !visited[np] {
					visited[np] = true
					inRegion[np] = true
					queue = append(queue, np)
				} else if !inRegion[np] {
					// Floor already claimed by a previous region; should not
					// happen for a true partition but disqualifies enclosure.
					reg.Enclosed = false
				}
			case ClassWall:
				if !wallSeen[np] {
					wallSeen[np] = true
					reg.Walls = append(reg.Walls, np)
				}
			case ClassDoor:
				if !doorSeen[np] {
					doorSeen[np] = true
					reg.Doors = append(reg.Doors, np)
				}
			default:
				// Void or plain terrain next to a floor tile leaks the room.
				reg.Enclosed = false
			}
		}
	}
	return reg, true
}
