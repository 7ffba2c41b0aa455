package world

import (
	"tilecolony/internal/sim/tasks"
)

// stepTransport advances one agent's material-transport state machine by one
// phase check. Phases:
//
//	finding_material -> moving_to_storage -> picking_up -> transporting -> delivering
//
// Ground item stacks (felling drops, cancellation refunds) are preferred over
// containers so spilled material gets recycled first.
func (w *World) stepTransport(a *Agent, nowTick uint64) tasks.Status {
	tt := a.Transport
	ct, ok := w.ctasks[tt.ConstructionID]
	if !ok || ct.State == tasks.StateCancelled || ct.State == tasks.StateCompleted {
		return tasks.StatusFailed
	}
	if tt.TileIndex < 0 || tt.TileIndex >= len(ct.Tiles) {
		return tasks.StatusFailed
	}
	ts := &ct.Tiles[tt.TileIndex]
	if ts.Placed || (ts.MaterialsReady() && tt.Carrying == 0) {
		// Someone else finished the tile while we were en route.
		ts.ClaimedBy = ""
		return tasks.StatusSuccess
	}

	switch tt.Phase {
	case tasks.PhaseFindingMaterial:
		item := w.traits.ItemFor(tt.Material)
		if a.Inventory[item] > 0 {
			// Already holding stock; skip straight to hauling.
			tt.Carrying = 1
			a.Inventory[item]--
			tt.Phase = tasks.PhaseTransporting
			return tasks.StatusRunning
		}
		if gi := w.findGroundItem(a.Pos, item); gi != nil {
			tt.SourcePos = tasks.Vec2i{X: gi.Pos.X, Y: gi.Pos.Y}
			tt.SourceItemID = gi.ID
			tt.Phase = tasks.PhaseMovingToStorage
			return tasks.StatusRunning
		}
		if pos, found := w.containers.FindSource(item, a.Pos); found {
			tt.SourcePos = tasks.Vec2i{X: pos.X, Y: pos.Y}
			tt.SourceItemID = ""
			tt.Phase = tasks.PhaseMovingToStorage
			return tasks.StatusRunning
		}
		return tasks.StatusBlocked

	case tasks.PhaseMovingToStorage:
		src := Vec2i{X: tt.SourcePos.X, Y: tt.SourcePos.Y}
		if a.Pos.Manhattan(src) <= w.cfg.InteractionRange {
			a.Move = nil
			tt.Phase = tasks.PhasePickingUp
			return tasks.StatusRunning
		}
		if a.Move == nil {
			w.MoveTo(a, src, w.cfg.InteractionRange, nowTick)
		}
		return tasks.StatusRunning

	case tasks.PhasePickingUp:
		item := w.traits.ItemFor(tt.Material)
		if tt.SourceItemID != "" {
			gi := w.items[tt.SourceItemID]
			if w.takeFromGround(gi, 1) == 0 {
				// Stack vanished; search again.
				tt.Phase = tasks.PhaseFindingMaterial
				return tasks.StatusRunning
			}
		} else {
			src := Vec2i{X: tt.SourcePos.X, Y: tt.SourcePos.Y}
			if !w.containers.Take(src, item, 1) {
				tt.Phase = tasks.PhaseFindingMaterial
				return tasks.StatusRunning
			}
		}
		tt.Carrying = 1
		tt.Phase = tasks.PhaseTransporting
		return tasks.StatusRunning

	case tasks.PhaseTransporting:
		dst := Vec2i{X: ts.Pos.X, Y: ts.Pos.Y}
		if a.Pos.Manhattan(dst) <= w.cfg.InteractionRange {
			a.Move = nil
			tt.Phase = tasks.PhaseDelivering
			return tasks.StatusRunning
		}
		if a.Move == nil {
			w.MoveTo(a, dst, w.cfg.InteractionRange, nowTick)
		}
		return tasks.StatusRunning

	case tasks.PhaseDelivering:
		w.deliverToTile(a, ct, tt.TileIndex, tt.Carrying, nowTick)
		tt.Carrying = 0
		ts.ClaimedBy = ""
		return tasks.StatusSuccess
	}

	return tasks.StatusFailed
}

// abortTransport returns any carried load to the ground at the agent's feet.
func (w *World) abortTransport(a *Agent, nowTick uint64) {
	tt := a.Transport
	if tt == nil {
		return
	}
	if tt.Carrying > 0 {
		w.spawnItemEntity(nowTick, a.ID, a.Pos, w.traits.ItemFor(tt.Material), tt.Carrying, "AGENT_DROP")
		tt.Carrying = 0
	}
	if ct, ok := w.ctasks[tt.ConstructionID]; ok {
		ct.ReleaseClaims(a.ID)
	}
	a.Transport = nil
	a.Move = nil
}
