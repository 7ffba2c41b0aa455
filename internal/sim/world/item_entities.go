package world

import "sort"

// ItemEntity is a stack of items lying on a tile. Felling drops and
// cancelled deliveries both land here; transport behaviors pick stacks up
// before falling back to containers.
type ItemEntity struct {
	ID        string
	Pos       Vec2i
	ItemID    string
	Count     int
	Origin    string // FELL_DROP, CANCEL_REFUND, AGENT_DROP
	DroppedBy string
	BornTick  uint64
}

func (w *World) sortedItemIDs() []string {
	ids := make([]string, 0, len(w.items))
	for id := range w.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (w *World) spawnItemEntity(nowTick uint64, by string, pos Vec2i, itemID string, count int, origin string) *ItemEntity {
	if count <= 0 {
		return nil
	}
	// Merge into an existing stack of the same item on the tile.
	for _, id := range w.sortedItemIDs() {
		it := w.items[id]
		if it.Pos == pos && it.ItemID == itemID {
			it.Count += count
			return it
		}
	}
	it := &ItemEntity{
		ID:        w.newItemID(),
		Pos:       pos,
		ItemID:    itemID,
		Count:     count,
		Origin:    origin,
		DroppedBy: by,
		BornTick:  nowTick,
	}
	w.items[it.ID] = it
	return it
}

// findGroundItem locates the nearest stack of itemID by Manhattan distance,
// ties broken by ID for determinism.
func (w *World) findGroundItem(from Vec2i, itemID string) *ItemEntity {
	var best *ItemEntity
	bestDist := 0
	for _, id := range w.sortedItemIDs() {
		it := w.items[id]
		if it.ItemID != itemID || it.Count <= 0 {
			continue
		}
		d := from.Manhattan(it.Pos)
		if best == nil || d < bestDist {
			best = it
			bestDist = d
		}
	}
	return best
}

// takeFromGround removes up to count items from a stack, deleting it when
// emptied. Returns the amount actually taken.
func (w *World) takeFromGround(it *ItemEntity, count int) int {
	if it == nil || it.Count <= 0 {
		return 0
	}
	n := count
	if n > it.Count {
		n = it.Count
	}
	it.Count -= n
	if it.Count <= 0 {
		delete(w.items, it.ID)
	}
	return n
}

// systemItemExpiry sweeps stale ground stacks.
func (w *World) systemItemExpiry(nowTick uint64) {
	if w.cfg.ItemExpiryTicks <= 0 {
		return
	}
	for _, id := range w.sortedItemIDs() {
		it := w.items[id]
		if nowTick-it.BornTick >= uint64(w.cfg.ItemExpiryTicks) {
			delete(w.items, id)
		}
	}
}
