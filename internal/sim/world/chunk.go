package world

import (
	"crypto/sha256"
	"encoding/binary"
)

const ChunkSize = 16

type ChunkKey struct {
	CX int
	CY int
}

// Chunk owns an arena of ChunkSize*ChunkSize tiles. Tiles are never
// reallocated for the lifetime of the chunk, so neighbor references into the
// arena stay valid until UnlinkNeighbors runs at unload.
type Chunk struct {
	CX, CY int
	Tiles  []Tile // len = ChunkSize*ChunkSize

	dirty bool
	hash  [32]byte
}

func (c *Chunk) index(x, y int) int {
	// x fastest, then y
	return x + y*ChunkSize
}

func (c *Chunk) At(x, y int) *Tile {
	return &c.Tiles[c.index(x, y)]
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [8]byte
		for i := range c.Tiles {
			t := &c.Tiles[i]
			tmp[0] = byte(t.Terrain)
			tmp[1] = byte(t.occ.Kind)
			tmp[2] = byte(t.occ.Orientation)
			if t.occ.Open {
				tmp[3] = 1
			} else {
				tmp[3] = 0
			}
			binary.LittleEndian.PutUint16(tmp[4:6], uint16(int16(t.Elevation)))
			tmp[6] = byte(t.occ.Progress)
			tmp[7] = byte(t.occ.Health)
			h.Write(tmp[:])
			h.Write([]byte(t.Floor))
			h.Write([]byte{0})
			h.Write([]byte(t.occ.Material))
			h.Write([]byte{0})
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}
