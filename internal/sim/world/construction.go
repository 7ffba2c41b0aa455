package world

import (
	"fmt"
	"sort"

	"tilecolony/internal/protocol"
	"tilecolony/internal/sim/tasks"
	"tilecolony/internal/sim/world/logic/blueprint"
)

// CreateConstructionTask instantiates a catalog blueprint at origin with the
// given rotation. The returned task is planned; builders are attached via
// AssignBuilder and stepped by the construction system.
func (w *World) CreateConstructionTask(blueprintID string, origin Vec2i, rotation int, nowTick uint64) (*tasks.ConstructionTask, error) {
	def, ok := w.catalogs.Blueprints.ByID[blueprintID]
	if !ok {
		return nil, fmt.Errorf("%s: unknown blueprint %q", protocol.ErrBadRequest, blueprintID)
	}

	symbols := make(map[string]blueprint.Symbol, len(def.Symbol))
	for ch, sd := range def.Symbol {
		symbols[ch] = blueprint.Symbol{Type: blueprint.TileType(sd.Type), Material: sd.Material}
	}
	placements, err := blueprint.ParseLayout(def.Rows, symbols, origin.X, origin.Y, rotation)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", protocol.ErrBadRequest, err)
	}
	if len(placements) == 0 {
		return nil, fmt.Errorf("%s: blueprint %q is empty", protocol.ErrBadRequest, blueprintID)
	}
	for _, p := range placements {
		if !w.graph.InBounds(Vec2i{X: p.X, Y: p.Y}) {
			return nil, fmt.Errorf("%s: placement (%d,%d) outside world boundary", protocol.ErrOutOfBounds, p.X, p.Y)
		}
	}

	ct := tasks.NewConstructionTask(w.newTaskID(), blueprintID, tasks.Vec2i{X: origin.X, Y: origin.Y}, blueprint.NormalizeRotation(rotation), nowTick)
	ct.Tiles = make([]tasks.TileSpec, 0, len(placements))
	for _, p := range placements {
		w.ensureChunkAt(Vec2i{X: p.X, Y: p.Y})
		ct.Tiles = append(ct.Tiles, tasks.TileSpec{
			Pos:      tasks.Vec2i{X: p.X, Y: p.Y},
			Type:     tasks.TileType(p.Type),
			Material: p.Material,
			Required: w.cfg.RequiredPerTile,
		})
	}
	w.ctasks[ct.TaskID] = ct

	w.emit(protocol.Event{
		"t":            nowTick,
		"type":         protocol.EvTaskCreated,
		"task_id":      ct.TaskID,
		"blueprint_id": blueprintID,
		"pos":          origin.ToArray(),
		"tiles":        len(ct.Tiles),
	})
	return ct, nil
}

// ConstructionTask looks a task up by id.
func (w *World) ConstructionTask(taskID string) (*tasks.ConstructionTask, bool) {
	ct, ok := w.ctasks[taskID]
	return ct, ok
}

func (w *World) sortedConstructionIDs() []string {
	ids := make([]string, 0, len(w.ctasks))
	for id := range w.ctasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AssignBuilder attaches an agent to a construction task. The agent's
// planner picks build or transport work each tick until the task resolves.
func (w *World) AssignBuilder(agentID, taskID string) error {
	a, ok := w.agents[agentID]
	if !ok {
		return fmt.Errorf("%s: unknown agent %q", protocol.ErrBadRequest, agentID)
	}
	ct, ok := w.ctasks[taskID]
	if !ok {
		return fmt.Errorf("%s: %q", protocol.ErrTaskNotFound, taskID)
	}
	if ct.State == tasks.StateCompleted || ct.State == tasks.StateCancelled {
		return fmt.Errorf("%s: task %q is %s", protocol.ErrTaskNotFound, taskID, ct.State)
	}
	if a.AssignedTask != "" && a.AssignedTask != taskID {
		w.detachBuilder(a)
	}
	a.AssignedTask = taskID
	ct.ActiveBuilders.Put(agentID)
	if ct.State == tasks.StatePlanned {
		ct.State = tasks.StateInProgress
	}
	return nil
}

// detachBuilder drops the agent from its assigned task, releasing claims and
// any in-flight behavior sub-task.
func (w *World) detachBuilder(a *Agent) {
	if a.AssignedTask == "" {
		return
	}
	if ct, ok := w.ctasks[a.AssignedTask]; ok {
		ct.ActiveBuilders.Remove(a.ID)
		ct.ReleaseClaims(a.ID)
	}
	a.AssignedTask = ""
	a.Transport = nil
	a.Build = nil
	a.Move = nil
}

// CancelConstructionTask aborts a task. Unconsumed deliveries are refunded
// as ground item stacks at their tiles; already placed tiles remain.
func (w *World) CancelConstructionTask(taskID string, nowTick uint64) error {
	ct, ok := w.ctasks[taskID]
	if !ok {
		return fmt.Errorf("%s: %q", protocol.ErrTaskNotFound, taskID)
	}
	if ct.State == tasks.StateCompleted || ct.State == tasks.StateCancelled {
		return fmt.Errorf("%s: task %q already %s", protocol.ErrTaskNotFound, taskID, ct.State)
	}
	ct.State = tasks.StateCancelled

	for i := range ct.Tiles {
		ts := &ct.Tiles[i]
		if ts.Placed || ts.Delivered <= 0 {
			continue
		}
		item := w.traits.ItemFor(ts.Material)
		w.spawnItemEntity(nowTick, "", Vec2i{X: ts.Pos.X, Y: ts.Pos.Y}, item, ts.Delivered, "CANCEL_REFUND")
		ts.Delivered = 0
	}

	for _, id := range ct.Builders() {
		if a, ok := w.agents[id]; ok {
			w.detachBuilder(a)
		}
	}

	w.emit(protocol.Event{
		"t":       nowTick,
		"type":    protocol.EvTaskCancelled,
		"task_id": taskID,
	})
	return nil
}

// deliverToTile credits one carried load against a construction tile.
func (w *World) deliverToTile(a *Agent, ct *tasks.ConstructionTask, idx, count int, nowTick uint64) {
	ts := &ct.Tiles[idx]
	ts.Delivered += count
	w.grantXP(a, "hauling", w.cfg.DeliverXP, nowTick)
	w.emit(protocol.Event{
		"t":        nowTick,
		"type":     protocol.EvMaterialDelivered,
		"task_id":  ct.TaskID,
		"agent_id": a.ID,
		"pos":      [2]int{ts.Pos.X, ts.Pos.Y},
		"material": ts.Material,
		"amount":   count,
	})
}

// placeTile commits a finished tile to the graph and emits placement events.
func (w *World) placeTile(a *Agent, ct *tasks.ConstructionTask, idx int, nowTick uint64) {
	ts := &ct.Tiles[idx]
	pos := Vec2i{X: ts.Pos.X, Y: ts.Pos.Y}
	ts.Placed = true
	ts.Progress = 100

	switch ts.Type {
	case tasks.TileFloor:
		w.graph.SetFloor(pos, ts.Material)
	case tasks.TileWall:
		w.graph.SetOccupant(pos, Occupant{Kind: OccupantWall, Material: ts.Material, Health: 100, Progress: 100})
	case tasks.TileDoor:
		w.graph.SetOccupant(pos, Occupant{Kind: OccupantDoor, Material: ts.Material, Health: 100, Progress: 100, Open: false})
	case tasks.TileWindow:
		w.graph.SetOccupant(pos, Occupant{Kind: OccupantWindow, Material: ts.Material, Health: 100, Progress: 100})
	}

	w.grantXP(a, "construction", w.cfg.BuildXP, nowTick)

	// Relationship buildup is per placement, across whoever shares the
	// task at that moment.
	collaborators := ct.Builders()
	for i := 0; i < len(collaborators); i++ {
		for j := i + 1; j < len(collaborators); j++ {
			w.improveRelationship(w.agents[collaborators[i]], w.agents[collaborators[j]], w.cfg.RelationshipDelta, nowTick)
		}
	}

	w.emit(protocol.Event{
		"t":             nowTick,
		"type":          protocol.EvTilePlaced,
		"task_id":       ct.TaskID,
		"agent_id":      a.ID,
		"pos":           pos.ToArray(),
		"kind":          string(ts.Type),
		"material":      ts.Material,
		"collaborators": collaborators,
	})
	w.emit(protocol.Event{
		"t":    nowTick,
		"type": protocol.EvTileWritten,
		"pos":  pos.ToArray(),
		"kind": string(ts.Type),
	})
}

// finishConstruction resolves a fully placed task: completion event, detach
// every builder.
func (w *World) finishConstruction(ct *tasks.ConstructionTask, nowTick uint64) {
	ct.State = tasks.StateCompleted

	for _, id := range ct.Builders() {
		if a, ok := w.agents[id]; ok {
			w.detachBuilder(a)
		}
	}

	w.emit(protocol.Event{
		"t":       nowTick,
		"type":    protocol.EvTaskCompleted,
		"task_id": ct.TaskID,
		"tick":    nowTick,
	})
}
