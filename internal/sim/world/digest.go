package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// StateDigest is a deterministic hash of the authoritative world state:
// chunk contents, agent positions/inventories, resources and open tasks.
// Two worlds stepped identically from the same seed produce equal digests.
func (w *World) StateDigest() string {
	h := sha256.New()
	var buf [8]byte

	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putInt := func(v int) { putU64(uint64(int64(v))) }
	putStr := func(s string) {
		putInt(len(s))
		h.Write([]byte(s))
	}

	putU64(w.tick.Load())

	for _, k := range w.graph.LoadedChunkKeys() {
		putInt(k.CX)
		putInt(k.CY)
		ch, _ := w.graph.EnsureChunk(k)
		d := ch.Digest()
		h.Write(d[:])
	}

	for _, a := range w.sortedAgents() {
		putStr(a.ID)
		putInt(a.Pos.X)
		putInt(a.Pos.Y)
		for _, item := range sortedKeys(a.Inventory) {
			putStr(item)
			putInt(a.Inventory[item])
		}
	}

	for _, id := range w.sortedResourceIDs() {
		r := w.resources[id]
		putStr(id)
		putInt(r.Pos.X)
		putInt(r.Pos.Y)
		putInt(r.CurrentHeight)
	}

	for _, id := range w.sortedConstructionIDs() {
		ct := w.ctasks[id]
		putStr(id)
		putStr(string(ct.State))
		for i := range ct.Tiles {
			ts := &ct.Tiles[i]
			putInt(ts.Progress)
			putInt(ts.Delivered)
			if ts.Placed {
				putInt(1)
			} else {
				putInt(0)
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
