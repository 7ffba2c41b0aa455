package world

import (
	"tilecolony/internal/sim/tasks"
)

// stepBuild advances one agent's build behavior. The agent walks into
// interaction range of its claimed tile, then adds BuildRatePerTick progress
// per tick until 100, at which point the tile is committed to the graph.
//
// Returns Blocked when the tile's materials disappeared underneath the
// behavior (e.g. a concurrent cancellation refund); the planner falls back
// to transport in that case instead of failing the agent.
func (w *World) stepBuild(a *Agent, nowTick uint64) tasks.Status {
	bt := a.Build
	ct, ok := w.ctasks[bt.ConstructionID]
	if !ok || ct.State == tasks.StateCancelled || ct.State == tasks.StateCompleted {
		return tasks.StatusFailed
	}
	if bt.TileIndex < 0 || bt.TileIndex >= len(ct.Tiles) {
		return tasks.StatusFailed
	}
	ts := &ct.Tiles[bt.TileIndex]
	if ts.Placed {
		ts.ClaimedBy = ""
		return tasks.StatusSuccess
	}
	if !ts.MaterialsReady() {
		ts.ClaimedBy = ""
		return tasks.StatusBlocked
	}

	dst := Vec2i{X: ts.Pos.X, Y: ts.Pos.Y}
	if a.Pos.Manhattan(dst) > w.cfg.InteractionRange {
		if a.Move == nil {
			w.MoveTo(a, dst, w.cfg.InteractionRange, nowTick)
		}
		return tasks.StatusRunning
	}
	a.Move = nil

	ts.Progress += w.cfg.BuildRatePerTick
	if ts.Progress < 100 {
		return tasks.StatusRunning
	}
	w.placeTile(a, ct, bt.TileIndex, nowTick)
	ts.ClaimedBy = ""
	return tasks.StatusSuccess
}
