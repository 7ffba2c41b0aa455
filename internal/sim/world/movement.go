package world

import (
	"tilecolony/internal/protocol"
	"tilecolony/internal/sim/tasks"
	"tilecolony/internal/sim/world/logic/movement"
)

// detourDepth bounds the local search around a blocked greedy step.
const detourDepth = 16

// MoveTo starts (or replaces) a movement task for an agent. tolerance is the
// Manhattan distance at which the target counts as reached.
func (w *World) MoveTo(a *Agent, target Vec2i, tolerance int, nowTick uint64) {
	a.Move = &tasks.MovementTask{
		TaskID:      w.newTaskID(),
		Target:      tasks.Vec2i{X: target.X, Y: target.Y},
		Tolerance:   tolerance,
		StartedTick: nowTick,
	}
}

// enterable reports whether an agent standing on from may step onto to.
// Closed doors are reported separately so the caller can open them.
func (w *World) enterable(from, to *Tile) (ok, closedDoor bool) {
	if to == nil {
		return false, false
	}
	if to.Terrain == TerrainWater {
		return false, false
	}
	occ := to.Occupant()
	switch occ.Kind {
	case OccupantWall, OccupantWindow:
		return false, false
	case OccupantDoor:
		if !occ.Open {
			return false, true
		}
	}
	d := to.Elevation - from.Elevation
	if d < 0 {
		d = -d
	}
	if d > w.cfg.MaxStepElevation {
		return false, false
	}
	return true, false
}

func (w *World) openDoor(pos Vec2i, nowTick uint64) {
	if !w.graph.SetDoorOpen(pos, true) {
		return
	}
	w.doorOpenedAt[pos] = nowTick
	w.emit(protocol.Event{"t": nowTick, "type": protocol.EvDoorOpened, "pos": pos.ToArray()})
}

func (w *World) closeDoor(pos Vec2i, nowTick uint64) {
	if !w.graph.SetDoorOpen(pos, false) {
		return
	}
	delete(w.doorOpenedAt, pos)
	w.emit(protocol.Event{"t": nowTick, "type": protocol.EvDoorClosed, "pos": pos.ToArray()})
}

// systemMovement advances every movement task by at most one tile.
//
// An agent facing a closed door spends the tick opening it and steps through
// on the next tick; between those two ticks the door reads as open to every
// other mover.
func (w *World) systemMovement(nowTick uint64) {
	for _, a := range w.sortedAgents() {
		if a.Move == nil {
			continue
		}
		switch w.stepMovement(a, nowTick) {
		case tasks.StatusSuccess:
			a.Move = nil
		case tasks.StatusFailed:
			w.failBehavior(a, a.Move.TaskID, string(tasks.KindMoveTo), protocol.ErrBlocked, nowTick)
			a.Move = nil
		}
	}
}

func (w *World) stepMovement(a *Agent, nowTick uint64) tasks.Status {
	target := Vec2i{X: a.Move.Target.X, Y: a.Move.Target.Y}
	if a.Pos.Manhattan(target) <= a.Move.Tolerance {
		return tasks.StatusSuccess
	}
	if !w.graph.InBounds(target) {
		return tasks.StatusFailed
	}
	w.ensureChunkAt(a.Pos)

	from := w.graph.GetTile(a.Pos)
	if from == nil {
		return tasks.StatusFailed
	}

	// Greedy: prefer the neighbor that most reduces distance, fixed
	// direction order on ties.
	best := Dir(0)
	bestDist := -1
	var doorPos Vec2i
	haveDoor := false
	for d := Dir(0); d < 4; d++ {
		np := a.Pos.Add(d.Offset())
		if !w.graph.InBounds(np) {
			continue
		}
		w.ensureChunkAt(np)
		to := w.graph.GetTile(np)
		nd := np.Manhattan(target)
		if nd >= a.Pos.Manhattan(target) {
			continue
		}
		ok, closed := w.enterable(from, to)
		if closed && !haveDoor {
			doorPos = np
			haveDoor = true
		}
		if !ok {
			continue
		}
		if bestDist < 0 || nd < bestDist {
			best = d
			bestDist = nd
		}
	}

	if bestDist >= 0 {
		a.Pos = a.Pos.Add(best.Offset())
		w.ensureChunkAt(a.Pos)
		return tasks.StatusRunning
	}

	// All distance-reducing steps blocked. A closed door on the direct
	// route gets opened this tick; anything else triggers a detour search.
	if haveDoor {
		w.openDoor(doorPos, nowTick)
		return tasks.StatusRunning
	}

	step, ok := movement.DetourStep(
		movement.Pos{X: a.Pos.X, Y: a.Pos.Y},
		movement.Pos{X: target.X, Y: target.Y},
		detourDepth,
		func(p movement.Pos) bool { return w.graph.InBounds(Vec2i{X: p.X, Y: p.Y}) },
		func(p movement.Pos) bool {
			np := Vec2i{X: p.X, Y: p.Y}
			w.ensureChunkAt(np)
			t := w.graph.GetTile(np)
			// Elevation is checked per actual step; the detour search
			// filters on structure and terrain only.
			return t == nil || t.Terrain == TerrainWater || !t.Passable() || t.Occupant().Kind == OccupantWindow
		},
	)
	if !ok {
		return tasks.StatusFailed
	}
	np := Vec2i{X: step.X, Y: step.Y}
	if enterOK, _ := w.enterable(from, w.graph.GetTile(np)); !enterOK {
		return tasks.StatusFailed
	}
	a.Pos = np
	w.ensureChunkAt(a.Pos)
	return tasks.StatusRunning
}

// failBehavior surfaces a behavior failure as a world event for external
// planners.
func (w *World) failBehavior(a *Agent, taskID, kind, code string, nowTick uint64) {
	w.emit(protocol.Event{
		"t":        nowTick,
		"type":     protocol.EvBehaviorFailed,
		"agent_id": a.ID,
		"task_id":  taskID,
		"kind":     kind,
		"code":     code,
	})
}
