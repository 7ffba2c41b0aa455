package world

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"tilecolony/internal/sim/world/logic/floodfill"
)

// Room is a derived, disposable view over the tile graph. Recomputed whole
// each detection pass; consumers must tolerate staleness between passes.
type Room struct {
	ID int

	Floor mapset.Set[Vec2i]
	Walls mapset.Set[Vec2i]
	Doors mapset.Set[Vec2i]

	Bounds Rect
	Area   int

	Enclosed      bool
	AvgInsulation float64
	Temperature   float64

	// tempSeeded is false until the temperature system (or a carried-over
	// previous room) has given Temperature a meaningful value.
	tempSeeded bool
}

// FloorTiles returns the room's floor coordinates in deterministic order.
func (r *Room) FloorTiles() []Vec2i {
	out := make([]Vec2i, 0, r.Floor.Size())
	r.Floor.Each(func(p Vec2i) { out = append(out, p) })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// RoomDetector partitions floor tiles into rooms with a throttled full
// flood-fill over the loaded tile graph.
type RoomDetector struct {
	graph  *TileGraph
	traits MaterialTraits

	recalcTicks int
	scanBudget  int

	rooms   []*Room
	index   map[Vec2i]*Room
	nextID  int
	lastRun uint64
	ranOnce bool

	// truncated reports that the previous pass hit the scan budget.
	truncated bool
}

func newRoomDetector(g *TileGraph, traits MaterialTraits, recalcTicks, scanBudget int) *RoomDetector {
	return &RoomDetector{
		graph:       g,
		traits:      traits,
		recalcTicks: recalcTicks,
		scanBudget:  scanBudget,
		index:       map[Vec2i]*Room{},
	}
}

// Due reports whether a recalculation should run this tick.
func (rd *RoomDetector) Due(nowTick uint64) bool {
	if !rd.ranOnce {
		return true
	}
	return nowTick-rd.lastRun >= uint64(rd.recalcTicks)
}

// RoomAt returns the room containing the floor tile at pos, or nil. The
// answer reflects the last recalculation, not the current tick.
func (rd *RoomDetector) RoomAt(pos Vec2i) *Room {
	return rd.index[pos]
}

func (rd *RoomDetector) Rooms() []*Room { return rd.rooms }

func (rd *RoomDetector) Truncated() bool { return rd.truncated }

func (rd *RoomDetector) classAt(p floodfill.P) floodfill.Class {
	t := rd.graph.PeekTile(Vec2i{X: p.X, Y: p.Y})
	if t == nil {
		return floodfill.ClassVoid
	}
	switch t.Occupant().Kind {
	case OccupantWall, OccupantWindow:
		return floodfill.ClassWall
	case OccupantDoor:
		return floodfill.ClassDoor
	}
	if !t.HasFloor() {
		return floodfill.ClassTerrain
	}
	return floodfill.ClassFloor
}

// Recalculate rebuilds the full room partition. Temperature carries over
// from the previous pass for rooms sharing a floor tile, so the thermal
// state survives re-detection.
func (rd *RoomDetector) Recalculate(nowTick uint64) {
	prevIndex := rd.index

	rd.rooms = rd.rooms[:0]
	rd.index = map[Vec2i]*Room{}
	rd.nextID = 0
	rd.truncated = false
	rd.lastRun = nowTick
	rd.ranOnce = true

	visited := map[floodfill.P]bool{}
	budget := rd.scanBudget

	for _, key := range rd.graph.LoadedChunkKeys() {
		ch, _ := rd.graph.EnsureChunk(key)
		for i := range ch.Tiles {
			t := &ch.Tiles[i]
			start := floodfill.P{X: t.Pos.X, Y: t.Pos.Y}
			if visited[start] {
				continue
			}
			if rd.classAt(start) != floodfill.ClassFloor {
				continue
			}

			reg, ok := floodfill.Fill(start, rd.classAt, visited, &budget)
			if len(reg.Floor) > 0 {
				rd.addRoom(reg, prevIndex)
			}
			if !ok {
				// Budget exhausted: defer the rest of the world to the next
				// pass rather than blocking the tick.
				rd.truncated = true
				return
			}
		}
	}
}

func (rd *RoomDetector) addRoom(reg floodfill.Region, prevIndex map[Vec2i]*Room) {
	rd.nextID++
	room := &Room{
		ID:       rd.nextID,
		Floor:    mapset.New[Vec2i](),
		Walls:    mapset.New[Vec2i](),
		Doors:    mapset.New[Vec2i](),
		Enclosed: reg.Enclosed,
	}

	first := Vec2i{X: reg.Floor[0].X, Y: reg.Floor[0].Y}
	room.Bounds = rectAt(first)
	for _, p := range reg.Floor {
		v := Vec2i{X: p.X, Y: p.Y}
		room.Floor.Put(v)
		room.Bounds = room.Bounds.Extend(v)
		rd.index[v] = room
	}
	room.Area = room.Floor.Size()

	// Insulation: arithmetic mean over boundary wall tiles' materials.
	// Rooms with no walls insulate nothing.
	sum := 0.0
	walls := 0
	for _, p := range reg.Walls {
		v := Vec2i{X: p.X, Y: p.Y}
		room.Walls.Put(v)
		if t := rd.graph.PeekTile(v); t != nil {
			sum += rd.traits.Insulation(t.Occupant().Material)
			walls++
		}
	}
	if walls > 0 {
		room.AvgInsulation = sum / float64(walls)
	}
	for _, p := range reg.Doors {
		room.Doors.Put(Vec2i{X: p.X, Y: p.Y})
	}

	// Carry temperature across recalculation when the room persists.
	for _, p := range reg.Floor {
		if prev := prevIndex[Vec2i{X: p.X, Y: p.Y}]; prev != nil && prev.tempSeeded {
			room.Temperature = prev.Temperature
			room.tempSeeded = true
			break
		}
	}

	rd.rooms = append(rd.rooms, room)
}
