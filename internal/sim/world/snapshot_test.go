package world

import (
	"testing"

	"tilecolony/internal/sim/tasks"
)

// populatedWorld builds a world with every snapshotted entity kind present.
func populatedWorld(t *testing.T) *World {
	t.Helper()
	w := newTestWorld(t)

	buildRoom(w, Vec2i{X: 0, Y: 0}, Vec2i{X: 5, Y: 3}, "brick_wall", "wood_floor", nil)
	buildDoor(w, Vec2i{X: 8, Y: 8}, "wood_door", false)
	w.openDoor(Vec2i{X: 8, Y: 8}, 1)

	a := w.SpawnAgent("snapper", Vec2i{X: 10, Y: 10})
	a.Inventory["wood"] = 7
	a.XP["construction"] = 30

	w.ensureChunkAt(Vec2i{X: 12, Y: 12})
	r := w.spawnResource("oak_tree", Vec2i{X: 12, Y: 12}, 1)
	r.CurrentHeight = 2

	w.spawnItemEntity(1, a.ID, Vec2i{X: 11, Y: 10}, "stone", 5, "AGENT_DROP")
	stockContainer(w, Vec2i{X: 9, Y: 9}, "wood", 25)

	ct, err := w.CreateConstructionTask("wall_line", Vec2i{X: 0, Y: 6}, 0, 1)
	if err != nil {
		t.Fatalf("CreateConstructionTask: %v", err)
	}
	w.deliverToTile(a, ct, 0, 1, 2)
	ct.Tiles[3].Progress = 40
	if err := w.AssignBuilder(a.ID, ct.TaskID); err != nil {
		t.Fatalf("AssignBuilder: %v", err)
	}

	stepN(w, 3)
	return w
}

func TestSnapshotRoundtripPreservesDigest(t *testing.T) {
	src := populatedWorld(t)
	snap := src.ExportSnapshot()

	if snap.Version != 1 || snap.Digest == "" {
		t.Fatalf("bad snapshot header: v=%d digest=%q", snap.Version, snap.Digest)
	}
	if snap.Digest != src.StateDigest() {
		t.Fatal("exported digest disagrees with live state")
	}

	dst := newTestWorld(t)
	if err := dst.ImportSnapshot(snap); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}

	if dst.StateDigest() != src.StateDigest() {
		t.Fatal("state digest changed across roundtrip")
	}
	if dst.Tick() != src.Tick() {
		t.Fatalf("tick %d != %d", dst.Tick(), src.Tick())
	}
}

func TestSnapshotRestoresEntities(t *testing.T) {
	src := populatedWorld(t)
	snap := src.ExportSnapshot()

	dst := newTestWorld(t)
	if err := dst.ImportSnapshot(snap); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}

	var a *Agent
	for _, ag := range dst.sortedAgents() {
		if ag.Name == "snapper" {
			a = ag
		}
	}
	if a == nil {
		t.Fatal("agent not restored")
	}
	if a.Inventory["wood"] != 7 || a.XP["construction"] != 30 {
		t.Fatalf("agent state lost: inv=%v xp=%v", a.Inventory, a.XP)
	}

	r := dst.ResourceAt(Vec2i{X: 12, Y: 12})
	if r == nil || r.ResourceID != "oak_tree" || r.CurrentHeight != 2 {
		t.Fatalf("resource not restored: %+v", r)
	}
	// Species fields come from the catalog, not the snapshot.
	if r.BlocksPerLevel != 4 || r.MaxHeight != 4 {
		t.Fatalf("resource def fields wrong: %+v", r)
	}

	c := dst.containers.At(Vec2i{X: 9, Y: 9})
	if c == nil || c.Items["wood"] != 25 {
		t.Fatalf("container not restored: %+v", c)
	}

	found := false
	for _, it := range dst.items {
		if it.Pos == (Vec2i{X: 11, Y: 10}) && it.ItemID == "stone" && it.Count == 5 {
			found = true
		}
	}
	if !found {
		t.Fatal("ground item not restored")
	}

	if !dst.graph.PeekTile(Vec2i{X: 8, Y: 8}).Occupant().Open {
		t.Fatal("open door state lost")
	}

	wall := dst.graph.PeekTile(Vec2i{X: 0, Y: 0})
	if wall == nil || wall.Occupant().Kind != OccupantWall || wall.Occupant().Material != "brick_wall" {
		t.Fatal("built wall lost")
	}
}

func TestSnapshotRestoresTaskProgress(t *testing.T) {
	src := populatedWorld(t)
	snap := src.ExportSnapshot()

	dst := newTestWorld(t)
	if err := dst.ImportSnapshot(snap); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}

	if len(dst.ctasks) != 1 {
		t.Fatalf("tasks restored = %d, want 1", len(dst.ctasks))
	}
	for _, ct := range dst.ctasks {
		if ct.State != tasks.StateInProgress {
			t.Fatalf("state = %s", ct.State)
		}
		if ct.Tiles[0].Delivered != 1 {
			t.Fatalf("delivered = %d", ct.Tiles[0].Delivered)
		}
		if ct.Tiles[3].Progress != 40 {
			t.Fatalf("progress = %d", ct.Tiles[3].Progress)
		}
		if len(ct.Builders()) != 1 {
			t.Fatalf("builders = %v", ct.Builders())
		}
	}
}

func TestSnapshotRejectsWrongSeed(t *testing.T) {
	src := populatedWorld(t)
	snap := src.ExportSnapshot()

	dst := newTestWorld(t, func(c *WorldConfig) { c.Seed = 999 })
	if err := dst.ImportSnapshot(snap); err == nil {
		t.Fatal("seed mismatch accepted")
	}
}

func TestSnapshotRejectsCorruptDigest(t *testing.T) {
	src := populatedWorld(t)
	snap := src.ExportSnapshot()
	snap.Digest = "deadbeef"

	dst := newTestWorld(t)
	if err := dst.ImportSnapshot(snap); err == nil {
		t.Fatal("corrupt digest accepted")
	}
}

func TestSnapshotRejectsUnknownVersion(t *testing.T) {
	src := populatedWorld(t)
	snap := src.ExportSnapshot()
	snap.Version = 99

	dst := newTestWorld(t)
	if err := dst.ImportSnapshot(snap); err == nil {
		t.Fatal("unknown version accepted")
	}
}
