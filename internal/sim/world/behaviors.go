package world

import (
	"fmt"

	"tilecolony/internal/protocol"
	"tilecolony/internal/sim/tasks"
)

const (
	// harvestWorkTicks is the work time of one cut.
	harvestWorkTicks = 5
	// demolishWorkTicks is the work time of tearing down one structure.
	demolishWorkTicks = 8
	// plannerRetryTicks backs off an assigned builder after E_NO_RESOURCE.
	plannerRetryTicks = 20
)

// OrderHarvest starts a harvest behavior on a resource instance. cutLevel 0
// is a ground-level (felling) cut; positive levels cut from the top down.
func (w *World) OrderHarvest(a *Agent, resourceID string, cutLevel int, nowTick uint64) error {
	r, ok := w.resources[resourceID]
	if !ok {
		return fmt.Errorf("%s: resource %q", protocol.ErrNoResource, resourceID)
	}
	if cutLevel >= r.CurrentHeight {
		return fmt.Errorf("%s: cut level %d above height %d", protocol.ErrBadRequest, cutLevel, r.CurrentHeight)
	}
	w.releaseHarvest(a)
	a.Harvest = &tasks.HarvestTask{
		TaskID:      w.newTaskID(),
		ResourceID:  resourceID,
		CutLevel:    cutLevel,
		WorkTicks:   harvestWorkTicks,
		StartedTick: nowTick,
	}
	return nil
}

// releaseHarvest drops an in-flight harvest, returning the resource's
// regeneration lock so an abandoned instance keeps regrowing.
func (w *World) releaseHarvest(a *Agent) {
	if a.Harvest == nil {
		return
	}
	if r, ok := w.resources[a.Harvest.ResourceID]; ok && r.harvestingBy == a.ID {
		r.harvestingBy = ""
	}
	a.Harvest = nil
}

// OrderDemolish starts tearing down the structure at pos.
func (w *World) OrderDemolish(a *Agent, pos Vec2i, nowTick uint64) error {
	w.ensureChunkAt(pos)
	t := w.graph.GetTile(pos)
	if t == nil || t.Occupant().Kind == OccupantNone {
		return fmt.Errorf("%s: nothing to demolish at (%d,%d)", protocol.ErrBadRequest, pos.X, pos.Y)
	}
	a.Demolish = &tasks.DemolishTask{
		TaskID:      w.newTaskID(),
		Pos:         tasks.Vec2i{X: pos.X, Y: pos.Y},
		WorkTicks:   demolishWorkTicks,
		StartedTick: nowTick,
	}
	return nil
}

func (w *World) stepHarvest(a *Agent, nowTick uint64) tasks.Status {
	ht := a.Harvest
	r, ok := w.resources[ht.ResourceID]
	if !ok {
		return tasks.StatusFailed
	}
	if a.Pos.Manhattan(r.Pos) > w.cfg.InteractionRange {
		if a.Move == nil {
			w.MoveTo(a, r.Pos, w.cfg.InteractionRange, nowTick)
		}
		return tasks.StatusRunning
	}
	a.Move = nil
	r.harvestingBy = a.ID

	ht.WorkTicks--
	if ht.WorkTicks > 0 {
		return tasks.StatusRunning
	}

	res := w.harvestCut(a, r, ht.CutLevel, nowTick)
	if !res.Removed {
		r.harvestingBy = ""
	}
	w.grantXP(a, "harvesting", w.cfg.HarvestXP, nowTick)
	return tasks.StatusSuccess
}

func (w *World) stepDemolish(a *Agent, nowTick uint64) tasks.Status {
	dt := a.Demolish
	pos := Vec2i{X: dt.Pos.X, Y: dt.Pos.Y}
	t := w.graph.GetTile(pos)
	if t == nil || t.Occupant().Kind == OccupantNone {
		return tasks.StatusFailed
	}
	if a.Pos.Manhattan(pos) > w.cfg.InteractionRange {
		if a.Move == nil {
			w.MoveTo(a, pos, w.cfg.InteractionRange, nowTick)
		}
		return tasks.StatusRunning
	}
	a.Move = nil

	dt.WorkTicks--
	if dt.WorkTicks > 0 {
		return tasks.StatusRunning
	}

	occ := t.Occupant()
	w.graph.ClearOccupant(pos)
	delete(w.doorOpenedAt, pos)
	if occ.Material != "" {
		w.spawnItemEntity(nowTick, a.ID, pos, w.traits.ItemFor(occ.Material), 1, "AGENT_DROP")
	}
	w.emit(protocol.Event{
		"t":    nowTick,
		"type": protocol.EvTileWritten,
		"pos":  pos.ToArray(),
		"kind": "cleared",
	})
	return tasks.StatusSuccess
}

// systemConstruction runs every agent's behavior stack for the tick: harvest
// and demolish orders first, then the builder planner for agents attached to
// a construction task. Build is preferred over transport; a build step that
// comes back Blocked falls through to transport on the next planning pass.
func (w *World) systemConstruction(nowTick uint64) {
	for _, a := range w.sortedAgents() {
		switch {
		case a.Harvest != nil:
			switch w.stepHarvest(a, nowTick) {
			case tasks.StatusSuccess:
				w.releaseHarvest(a)
			case tasks.StatusFailed:
				w.failBehavior(a, a.Harvest.TaskID, string(tasks.KindHarvest), protocol.ErrNoResource, nowTick)
				w.releaseHarvest(a)
			}
		case a.Demolish != nil:
			switch w.stepDemolish(a, nowTick) {
			case tasks.StatusSuccess:
				a.Demolish = nil
			case tasks.StatusFailed:
				w.failBehavior(a, a.Demolish.TaskID, string(tasks.KindDemolish), protocol.ErrBadRequest, nowTick)
				a.Demolish = nil
			}
		case a.AssignedTask != "":
			w.stepBuilder(a, nowTick)
		}
	}

	// Resolve finished tasks after all builders have acted this tick.
	for _, id := range w.sortedConstructionIDs() {
		ct := w.ctasks[id]
		if ct.State == tasks.StateInProgress && ct.AllPlaced() {
			w.finishConstruction(ct, nowTick)
		}
	}
}

// stepBuilder drives one assigned agent: run the active sub-behavior, or
// plan the next one.
func (w *World) stepBuilder(a *Agent, nowTick uint64) {
	ct, ok := w.ctasks[a.AssignedTask]
	if !ok || ct.State == tasks.StateCancelled || ct.State == tasks.StateCompleted {
		w.detachBuilder(a)
		return
	}

	if a.Build != nil {
		switch w.stepBuild(a, nowTick) {
		case tasks.StatusSuccess, tasks.StatusBlocked:
			a.Build = nil
		case tasks.StatusFailed:
			w.failBehavior(a, a.Build.TaskID, string(tasks.KindBuild), protocol.ErrTaskNotFound, nowTick)
			a.Build = nil
			w.detachBuilder(a)
		}
		return
	}

	if a.Transport != nil {
		switch w.stepTransport(a, nowTick) {
		case tasks.StatusSuccess:
			a.Transport = nil
			a.Move = nil
		case tasks.StatusBlocked:
			w.failBehavior(a, a.Transport.TaskID, string(tasks.KindTransport), protocol.ErrNoResource, nowTick)
			w.abortTransport(a, nowTick)
			a.retryAt = nowTick + plannerRetryTicks
		case tasks.StatusFailed:
			w.abortTransport(a, nowTick)
		}
		return
	}

	if nowTick < a.retryAt {
		return
	}

	if idx := ct.NextTileForBuild(a.ID); idx >= 0 {
		ct.Tiles[idx].ClaimedBy = a.ID
		a.Build = &tasks.BuildTask{
			TaskID:         w.newTaskID(),
			ConstructionID: ct.TaskID,
			TileIndex:      idx,
			StartedTick:    nowTick,
		}
		return
	}
	if idx := ct.NextTileForTransport(a.ID); idx >= 0 {
		ct.Tiles[idx].ClaimedBy = a.ID
		a.Transport = &tasks.TransportTask{
			TaskID:         w.newTaskID(),
			ConstructionID: ct.TaskID,
			TileIndex:      idx,
			Material:       ct.Tiles[idx].Material,
			Phase:          tasks.PhaseFindingMaterial,
			StartedTick:    nowTick,
		}
		return
	}
	// Nothing claimable: either the task is about to complete or the
	// remaining tiles belong to other builders.
}
