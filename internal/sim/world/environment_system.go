package world

import "sort"

// systemEnvironment runs the slow-moving world upkeep: resource regrowth,
// ground item expiry, and door auto-close.
func (w *World) systemEnvironment(nowTick uint64) {
	w.systemResourceRegen(nowTick)
	w.systemItemExpiry(nowTick)
	w.systemDoorAutoClose(nowTick)
}

func (w *World) systemDoorAutoClose(nowTick uint64) {
	if w.cfg.DoorAutoCloseTicks <= 0 || len(w.doorOpenedAt) == 0 {
		return
	}
	due := make([]Vec2i, 0, len(w.doorOpenedAt))
	for pos, openedAt := range w.doorOpenedAt {
		if nowTick-openedAt >= uint64(w.cfg.DoorAutoCloseTicks) {
			due = append(due, pos)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].X != due[j].X {
			return due[i].X < due[j].X
		}
		return due[i].Y < due[j].Y
	})
	for _, pos := range due {
		if w.agentOn(pos) {
			// Never close a door on an occupant; retry next sweep.
			w.doorOpenedAt[pos] = nowTick
			continue
		}
		w.closeDoor(pos, nowTick)
	}
}

func (w *World) agentOn(pos Vec2i) bool {
	for _, a := range w.agents {
		if a.Pos == pos {
			return true
		}
	}
	return false
}
