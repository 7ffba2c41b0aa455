package world

import (
	"math"
	"testing"

	"tilecolony/internal/sim/world/logic/heat"
)

func TestHeatStepApproachesAmbient(t *testing.T) {
	temp := 20.0
	for i := 0; i < 100; i++ {
		temp = heat.Step(temp, 12.0, 0.0, 1.0, 0.2, 1)
	}
	if math.Abs(temp-12.0) > 0.5 {
		t.Fatalf("temp = %f, did not approach ambient", temp)
	}
}

func TestHeatStepNeverOvershoots(t *testing.T) {
	if got := heat.Step(20.0, 12.0, 0.0, 100.0, 1.0, 1); got != 12.0 {
		t.Fatalf("overshot to %f", got)
	}
	if got := heat.Step(5.0, 12.0, 0.0, 100.0, 1.0, 1); got != 12.0 {
		t.Fatalf("overshot to %f", got)
	}
}

func TestRoomsSeedAtAmbient(t *testing.T) {
	w := newTestWorld(t)
	buildRoom(w, Vec2i{X: 0, Y: 0}, Vec2i{X: 5, Y: 3}, "wood_wall", "wood_floor", nil)
	stepN(w, 6)

	room := w.rooms.RoomAt(Vec2i{X: 2, Y: 1})
	if room == nil {
		t.Fatal("no room detected")
	}
	if room.Temperature != 12.0 {
		t.Fatalf("seeded temperature = %f, want ambient 12", room.Temperature)
	}
}

func TestInsulationSlowsTemperatureChange(t *testing.T) {
	w := newTestWorld(t)
	// Two identical huts, one wood, one brick, far enough apart to stay
	// separate rooms.
	buildRoom(w, Vec2i{X: 0, Y: 0}, Vec2i{X: 5, Y: 3}, "wood_wall", "wood_floor", nil)
	buildRoom(w, Vec2i{X: 20, Y: 0}, Vec2i{X: 25, Y: 3}, "brick_wall", "wood_floor", nil)
	stepN(w, 6)

	wood := w.rooms.RoomAt(Vec2i{X: 2, Y: 1})
	brick := w.rooms.RoomAt(Vec2i{X: 22, Y: 1})
	if wood == nil || brick == nil {
		t.Fatal("rooms not detected")
	}
	if !wood.Enclosed || !brick.Enclosed {
		t.Fatal("rooms not enclosed")
	}

	wood.Temperature = 22.0
	brick.Temperature = 22.0
	w.systemTemperature(w.Tick() + 1)

	woodDrop := 22.0 - wood.Temperature
	brickDrop := 22.0 - brick.Temperature
	if woodDrop <= 0 {
		t.Fatalf("wood room did not cool (drop=%f)", woodDrop)
	}
	if brickDrop >= woodDrop {
		t.Fatalf("brick (drop=%f) should cool slower than wood (drop=%f)", brickDrop, woodDrop)
	}
}

func TestNonEnclosedRoomTracksAmbient(t *testing.T) {
	w := newTestWorld(t)
	buildRoom(w, Vec2i{X: 0, Y: 0}, Vec2i{X: 5, Y: 3}, "wood_wall", "wood_floor", nil)
	w.graph.ClearOccupant(Vec2i{X: 2, Y: 0})
	stepN(w, 6)

	room := w.rooms.RoomAt(Vec2i{X: 2, Y: 1})
	if room == nil {
		t.Fatal("no region detected")
	}
	if room.Enclosed {
		t.Fatal("breached room still enclosed")
	}
	room.Temperature = 30.0
	w.systemTemperature(w.Tick() + 1)
	if room.Temperature != 12.0 {
		t.Fatalf("non-enclosed room temp = %f, want ambient", room.Temperature)
	}
}

func TestTemperatureAtFallsBackToAmbient(t *testing.T) {
	w := newTestWorld(t)
	buildRoom(w, Vec2i{X: 0, Y: 0}, Vec2i{X: 5, Y: 3}, "wood_wall", "wood_floor", nil)
	stepN(w, 6)

	room := w.rooms.RoomAt(Vec2i{X: 2, Y: 1})
	room.Temperature = 18.0

	if got := w.TemperatureAt(Vec2i{X: 2, Y: 1}, w.Tick()); got != 18.0 {
		t.Fatalf("interior temp = %f, want 18", got)
	}
	if got := w.TemperatureAt(Vec2i{X: 50, Y: 50}, w.Tick()); got != 12.0 {
		t.Fatalf("open field temp = %f, want ambient 12", got)
	}
}

func TestLargerRoomChangesSlower(t *testing.T) {
	w := newTestWorld(t)
	buildRoom(w, Vec2i{X: 0, Y: 0}, Vec2i{X: 4, Y: 3}, "wood_wall", "wood_floor", nil)
	buildRoom(w, Vec2i{X: 20, Y: 0}, Vec2i{X: 31, Y: 9}, "wood_wall", "wood_floor", nil)
	stepN(w, 6)

	small := w.rooms.RoomAt(Vec2i{X: 2, Y: 1})
	large := w.rooms.RoomAt(Vec2i{X: 25, Y: 5})
	if small == nil || large == nil {
		t.Fatal("rooms not detected")
	}
	if large.Area <= small.Area {
		t.Fatalf("areas: large=%d small=%d", large.Area, small.Area)
	}

	small.Temperature = 22.0
	large.Temperature = 22.0
	w.systemTemperature(w.Tick() + 1)

	if 22.0-large.Temperature >= 22.0-small.Temperature {
		t.Fatal("larger thermal mass should damp the step more")
	}
}
