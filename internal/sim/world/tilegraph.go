package world

import (
	"sort"

	"tilecolony/internal/sim/world/logic/mathx"
)

// TileGen holds the deterministic worldgen parameters for tile terrain.
type TileGen struct {
	Seed      int64
	BoundaryR int // tiles
	Flat      bool

	WaterClusterGrid   int
	WaterClusterRadius int
	WaterProbPermille  uint64
	RockPermille       uint64
	SandPermille       uint64
	DirtPermille       uint64
	ElevationRegion    int
	ElevationMax       int
}

func (g *TileGen) applyDefaults() {
	if g.WaterClusterGrid <= 0 {
		g.WaterClusterGrid = 24
	}
	if g.WaterClusterRadius <= 0 {
		g.WaterClusterRadius = 4
	}
	if g.WaterProbPermille == 0 {
		g.WaterProbPermille = 120
	}
	if g.RockPermille == 0 {
		g.RockPermille = 40
	}
	if g.SandPermille == 0 {
		g.SandPermille = 30
	}
	if g.DirtPermille == 0 {
		g.DirtPermille = 80
	}
	if g.ElevationRegion <= 0 {
		g.ElevationRegion = 32
	}
	if g.ElevationMax <= 0 {
		g.ElevationMax = 3
	}
}

// TileGraph is the chunked tile store. Accessed only from the world loop
// goroutine; neighbor references make hot-path adjacency a single pointer
// read with no coordinate arithmetic.
type TileGraph struct {
	gen    TileGen
	chunks map[ChunkKey]*Chunk
}

func NewTileGraph(gen TileGen) *TileGraph {
	gen.applyDefaults()
	return &TileGraph{
		gen:    gen,
		chunks: map[ChunkKey]*Chunk{},
	}
}

func (g *TileGraph) InBounds(pos Vec2i) bool {
	if g.gen.BoundaryR > 0 {
		if pos.X < -g.gen.BoundaryR || pos.X > g.gen.BoundaryR || pos.Y < -g.gen.BoundaryR || pos.Y > g.gen.BoundaryR {
			return false
		}
	}
	return true
}

func (g *TileGraph) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(g.chunks))
	for k := range g.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CY < keys[j].CY
	})
	return keys
}

func (g *TileGraph) LoadedChunks() int { return len(g.chunks) }

func chunkKeyFor(pos Vec2i) (ChunkKey, int, int) {
	cx := mathx.FloorDiv(pos.X, ChunkSize)
	cy := mathx.FloorDiv(pos.Y, ChunkSize)
	lx := mathx.Mod(pos.X, ChunkSize)
	ly := mathx.Mod(pos.Y, ChunkSize)
	return ChunkKey{CX: cx, CY: cy}, lx, ly
}

// GetTile returns the tile at pos, loading (and generating) its chunk on
// demand. Returns nil outside the world boundary.
func (g *TileGraph) GetTile(pos Vec2i) *Tile {
	if !g.InBounds(pos) {
		return nil
	}
	k, lx, ly := chunkKeyFor(pos)
	ch := g.chunks[k]
	if ch == nil {
		ch = g.loadChunk(k)
	}
	return ch.At(lx, ly)
}

// PeekTile is GetTile without the on-demand load: nil when the chunk is not
// resident. Room detection uses it so a scan never faults in new terrain.
func (g *TileGraph) PeekTile(pos Vec2i) *Tile {
	if !g.InBounds(pos) {
		return nil
	}
	k, lx, ly := chunkKeyFor(pos)
	ch := g.chunks[k]
	if ch == nil {
		return nil
	}
	return ch.At(lx, ly)
}

// EnsureChunk loads the chunk, generating it first if needed. Reports
// whether this call generated it (callers seed resources on fresh chunks).
func (g *TileGraph) EnsureChunk(k ChunkKey) (*Chunk, bool) {
	if ch, ok := g.chunks[k]; ok {
		return ch, false
	}
	return g.loadChunk(k), true
}

func (g *TileGraph) loadChunk(k ChunkKey) *Chunk {
	ch := &Chunk{
		CX:    k.CX,
		CY:    k.CY,
		Tiles: make([]Tile, ChunkSize*ChunkSize),
	}
	g.generate(ch)
	ch.dirty = true
	_ = ch.Digest()
	g.chunks[k] = ch
	g.linkNeighbors(ch)
	return ch
}

// UnloadChunk unlinks the chunk's border peers and drops it. Neighbor slots
// in adjacent chunks resolve to nil afterwards instead of dangling.
func (g *TileGraph) UnloadChunk(k ChunkKey) {
	ch := g.chunks[k]
	if ch == nil {
		return
	}
	g.unlinkNeighbors(ch)
	delete(g.chunks, k)
}

// linkNeighbors wires interior adjacency and stitches the chunk's border
// tiles to any already-loaded adjacent chunks, in both directions. After
// this pass, neighbor access is a direct reference read.
func (g *TileGraph) linkNeighbors(ch *Chunk) {
	// Interior links.
	for y := 0; y < ChunkSize; y++ {
		for x := 0; x < ChunkSize; x++ {
			t := ch.At(x, y)
			t.Pos = Vec2i{X: ch.CX*ChunkSize + x, Y: ch.CY*ChunkSize + y}
			if y > 0 {
				t.neighbors[North] = ch.At(x, y-1)
			}
			if y < ChunkSize-1 {
				t.neighbors[South] = ch.At(x, y+1)
			}
			if x > 0 {
				t.neighbors[West] = ch.At(x-1, y)
			}
			if x < ChunkSize-1 {
				t.neighbors[East] = ch.At(x+1, y)
			}
		}
	}

	// Border stitching with loaded peers.
	if peer := g.chunks[ChunkKey{CX: ch.CX, CY: ch.CY - 1}]; peer != nil {
		for x := 0; x < ChunkSize; x++ {
			a := ch.At(x, 0)
			b := peer.At(x, ChunkSize-1)
			a.neighbors[North] = b
			b.neighbors[South] = a
		}
	}
	if peer := g.chunks[ChunkKey{CX: ch.CX, CY: ch.CY + 1}]; peer != nil {
		for x := 0; x < ChunkSize; x++ {
			a := ch.At(x, ChunkSize-1)
			b := peer.At(x, 0)
			a.neighbors[South] = b
			b.neighbors[North] = a
		}
	}
	if peer := g.chunks[ChunkKey{CX: ch.CX - 1, CY: ch.CY}]; peer != nil {
		for y := 0; y < ChunkSize; y++ {
			a := ch.At(0, y)
			b := peer.At(ChunkSize-1, y)
			a.neighbors[West] = b
			b.neighbors[East] = a
		}
	}
	if peer := g.chunks[ChunkKey{CX: ch.CX + 1, CY: ch.CY}]; peer != nil {
		for y := 0; y < ChunkSize; y++ {
			a := ch.At(ChunkSize-1, y)
			b := peer.At(0, y)
			a.neighbors[East] = b
			b.neighbors[West] = a
		}
	}
}

func (g *TileGraph) unlinkNeighbors(ch *Chunk) {
	for y := 0; y < ChunkSize; y++ {
		for x := 0; x < ChunkSize; x++ {
			t := ch.At(x, y)
			for d := Dir(0); d < 4; d++ {
				peer := t.neighbors[d]
				if peer == nil {
					continue
				}
				peer.neighbors[d.Opposite()] = nil
				t.neighbors[d] = nil
			}
		}
	}
}

// SetOccupant writes the built structure on a tile. Only the construction
// system and demolition paths call this.
func (g *TileGraph) SetOccupant(pos Vec2i, occ Occupant) bool {
	t := g.GetTile(pos)
	if t == nil {
		return false
	}
	t.occ = occ
	g.markDirty(pos)
	return true
}

func (g *TileGraph) ClearOccupant(pos Vec2i) {
	g.SetOccupant(pos, Occupant{})
}

// SetDoorOpen flips door state in place; no-op for non-doors.
func (g *TileGraph) SetDoorOpen(pos Vec2i, open bool) bool {
	t := g.GetTile(pos)
	if t == nil || t.occ.Kind != OccupantDoor {
		return false
	}
	if t.occ.Open == open {
		return true
	}
	t.occ.Open = open
	g.markDirty(pos)
	return true
}

func (g *TileGraph) SetFloor(pos Vec2i, materialID string) bool {
	t := g.GetTile(pos)
	if t == nil {
		return false
	}
	t.Floor = materialID
	g.markDirty(pos)
	return true
}

func (g *TileGraph) markDirty(pos Vec2i) {
	k, _, _ := chunkKeyFor(pos)
	if ch := g.chunks[k]; ch != nil {
		ch.dirty = true
	}
}

func (g *TileGraph) generate(ch *Chunk) {
	for y := 0; y < ChunkSize; y++ {
		for x := 0; x < ChunkSize; x++ {
			t := ch.At(x, y)
			wx := ch.CX*ChunkSize + x
			wy := ch.CY*ChunkSize + y
			t.Pos = Vec2i{X: wx, Y: wy}

			if g.gen.Flat {
				t.Terrain = TerrainGrass
				t.Elevation = 0
				continue
			}

			if g.inWaterCluster(wx, wy) {
				t.Terrain = TerrainWater
				t.Elevation = 0
				continue
			}

			roll := mathx.Hash2(g.gen.Seed, wx, wy) % 1000
			switch {
			case roll < g.gen.RockPermille:
				t.Terrain = TerrainRock
			case roll < g.gen.RockPermille+g.gen.SandPermille:
				t.Terrain = TerrainSand
			case roll < g.gen.RockPermille+g.gen.SandPermille+g.gen.DirtPermille:
				t.Terrain = TerrainDirt
			default:
				t.Terrain = TerrainGrass
			}

			rx := mathx.FloorDiv(wx, g.gen.ElevationRegion)
			ry := mathx.FloorDiv(wy, g.gen.ElevationRegion)
			t.Elevation = int(mathx.Hash2(g.gen.Seed+7, rx, ry) % uint64(g.gen.ElevationMax+1))
		}
	}
}

func (g *TileGraph) inWaterCluster(x, y int) bool {
	grid := g.gen.WaterClusterGrid
	radius := g.gen.WaterClusterRadius
	gx := mathx.FloorDiv(x, grid)
	gy := mathx.FloorDiv(y, grid)
	r2 := radius * radius

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			cgx := gx + dx
			cgy := gy + dy
			h := mathx.Hash2(g.gen.Seed+13, cgx, cgy)
			if h%1000 >= g.gen.WaterProbPermille {
				continue
			}
			// Deterministic center inside this grid cell.
			ox := int((h >> 10) % uint64(grid))
			oy := int((h >> 20) % uint64(grid))
			cx := cgx*grid + ox
			cy := cgy*grid + oy

			ddx := x - cx
			ddy := y - cy
			if ddx*ddx+ddy*ddy <= r2 {
				return true
			}
		}
	}
	return false
}
