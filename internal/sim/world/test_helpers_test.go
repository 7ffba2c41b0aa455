package world

import (
	"testing"

	"tilecolony/internal/sim/catalogs"
)

func testCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

// newTestWorld builds a flat, resource-free world with fast room recalcs so
// scenarios control every tile themselves.
func newTestWorld(t *testing.T, mut ...func(*WorldConfig)) *World {
	t.Helper()
	cfg := WorldConfig{
		ID:              "test",
		Seed:            42,
		BoundaryR:       200,
		FlatWorld:       true,
		RoomRecalcTicks: 5,
		AmbientBase:     12.0,
		AmbientDayRange: -1, // constant ambient
	}
	for _, m := range mut {
		m(&cfg)
	}
	w, err := New(cfg, testCatalogs(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func stepN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.StepOnce()
	}
}

// buildWall places a finished wall directly on the graph.
func buildWall(w *World, pos Vec2i, material string) {
	w.ensureChunkAt(pos)
	w.graph.SetOccupant(pos, Occupant{Kind: OccupantWall, Material: material, Health: 100, Progress: 100})
}

func buildDoor(w *World, pos Vec2i, material string, open bool) {
	w.ensureChunkAt(pos)
	w.graph.SetOccupant(pos, Occupant{Kind: OccupantDoor, Material: material, Health: 100, Progress: 100, Open: open})
}

func layFloor(w *World, pos Vec2i, material string) {
	w.ensureChunkAt(pos)
	w.graph.SetFloor(pos, material)
}

// buildRoom writes a rectangular enclosure: walls on the perimeter, floor
// inside. The door, when doorPos is non-nil, replaces one perimeter wall.
func buildRoom(w *World, min, max Vec2i, wallMat, floorMat string, doorPos *Vec2i) {
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			p := Vec2i{X: x, Y: y}
			onEdge := x == min.X || x == max.X || y == min.Y || y == max.Y
			if onEdge {
				if doorPos != nil && p == *doorPos {
					buildDoor(w, p, "wood_door", false)
				} else {
					buildWall(w, p, wallMat)
				}
			} else {
				layFloor(w, p, floorMat)
			}
		}
	}
}

type mapEvent = map[string]any

// drainEvents returns and clears the events accumulated since the last tick
// boundary. Only meaningful when called between manual system invocations.
func drainEvents(w *World) []mapEvent {
	ev := make([]mapEvent, 0, len(w.eventsThisTick))
	for _, e := range w.eventsThisTick {
		ev = append(ev, map[string]any(e))
	}
	w.eventsThisTick = nil
	return ev
}

// eventRecorder captures every logged tick entry, letting tests assert on
// emitted events after StepOnce (which drains the per-tick buffer).
type eventRecorder struct {
	entries []TickLogEntry
}

func (r *eventRecorder) WriteTick(e TickLogEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *eventRecorder) all() []mapEvent {
	var out []mapEvent
	for _, e := range r.entries {
		for _, ev := range e.Events {
			out = append(out, map[string]any(ev))
		}
	}
	return out
}

func countEvents(events []mapEvent, typ string) int {
	n := 0
	for _, e := range events {
		if e["type"] == typ {
			n++
		}
	}
	return n
}
