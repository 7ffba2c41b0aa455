package world

import (
	"sort"

	"tilecolony/internal/protocol"
	"tilecolony/internal/sim/tasks"
)

// Agent is one simulated colonist. Behavior tasks are stepped once per tick;
// at most one movement task and one work-type task are active at a time.
type Agent struct {
	ID   string
	Name string

	Pos Vec2i

	Inventory map[string]int

	// XP per skill (e.g. "construction", "hauling", "harvesting").
	XP map[string]int

	// Relationships maps other agent ids to a relationship strength.
	Relationships map[string]int

	// AssignedTask is the construction task this agent works via the
	// builder planner; "" when idle.
	AssignedTask string

	Move      *tasks.MovementTask
	Transport *tasks.TransportTask
	Build     *tasks.BuildTask
	Harvest   *tasks.HarvestTask
	Demolish  *tasks.DemolishTask

	// retryAt backs off the builder planner after a failed material
	// search so the failure is not re-reported every tick.
	retryAt uint64
}

func (a *Agent) initDefaults() {
	if a.Inventory == nil {
		a.Inventory = map[string]int{}
	}
	if a.XP == nil {
		a.XP = map[string]int{}
	}
	if a.Relationships == nil {
		a.Relationships = map[string]int{}
	}
}

// Busy reports whether any behavior task is active.
func (a *Agent) Busy() bool {
	return a.Move != nil || a.Transport != nil || a.Build != nil || a.Harvest != nil || a.Demolish != nil
}

func (w *World) sortedAgents() []*Agent {
	out := make([]*Agent, 0, len(w.agents))
	for _, a := range w.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// grantXP adds skill experience and emits progression:xp_gained.
func (w *World) grantXP(a *Agent, skill string, amount int, nowTick uint64) {
	if amount <= 0 {
		return
	}
	a.XP[skill] += amount
	w.emit(protocol.Event{
		"t":        nowTick,
		"type":     protocol.EvXPGained,
		"agent_id": a.ID,
		"skill":    skill,
		"amount":   amount,
	})
}

// improveRelationship applies a symmetric relationship-strength delta and
// emits one event per direction. A social side effect of collaboration, not
// a speed bonus.
func (w *World) improveRelationship(a, b *Agent, delta int, nowTick uint64) {
	if a == nil || b == nil || a.ID == b.ID || delta <= 0 {
		return
	}
	a.Relationships[b.ID] += delta
	b.Relationships[a.ID] += delta
	w.emit(protocol.Event{
		"t":               nowTick,
		"type":            protocol.EvRelationship,
		"agent_id":        a.ID,
		"target_agent_id": b.ID,
		"amount":          delta,
	})
	w.emit(protocol.Event{
		"t":               nowTick,
		"type":            protocol.EvRelationship,
		"agent_id":        b.ID,
		"target_agent_id": a.ID,
		"amount":          delta,
	})
}
