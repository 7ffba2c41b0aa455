package world

import (
	"fmt"
	"sort"

	"tilecolony/internal/sim/encoding"
	"tilecolony/internal/sim/tasks"
)

// SnapshotV1 is the versioned world snapshot. Export/import round-trips the
// full authoritative state; persistence compresses and stores the JSON form.
type SnapshotV1 struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
	Seed    int64  `json:"seed"`

	Chunks     []ChunkSnap     `json:"chunks"`
	Agents     []AgentSnap     `json:"agents"`
	Resources  []ResourceSnap  `json:"resources"`
	Items      []ItemSnap      `json:"items"`
	Containers []ContainerSnap `json:"containers"`
	Tasks      []TaskSnap      `json:"tasks"`
	OpenDoors  []DoorSnap      `json:"open_doors,omitempty"`

	NextTask     uint64 `json:"next_task"`
	NextAgent    uint64 `json:"next_agent"`
	NextItem     uint64 `json:"next_item"`
	NextResource uint64 `json:"next_resource"`

	Digest string `json:"digest"`
}

// ChunkSnap stores terrain and elevation run-length encoded; both are long
// runs of identical small values in practice.
type ChunkSnap struct {
	CX        int       `json:"cx"`
	CY        int       `json:"cy"`
	Terrain   string    `json:"terrain"`
	Elevation string    `json:"elevation"`
	Floors    []string  `json:"floors"`
	Occupants []OccSnap `json:"occupants"`
}

type OccSnap struct {
	Idx      int    `json:"i"`
	Kind     uint8  `json:"k"`
	Material string `json:"m"`
	Health   int    `json:"h"`
	Progress int    `json:"p"`
	Open     bool   `json:"o,omitempty"`
}

type AgentSnap struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Pos           [2]int         `json:"pos"`
	Inventory     map[string]int `json:"inventory,omitempty"`
	XP            map[string]int `json:"xp,omitempty"`
	Relationships map[string]int `json:"relationships,omitempty"`
	AssignedTask  string         `json:"assigned_task,omitempty"`
}

type ResourceSnap struct {
	ID            string `json:"id"`
	Species       string `json:"species"`
	Pos           [2]int `json:"pos"`
	CurrentHeight int    `json:"height"`
	State         string `json:"state"`
	LastRegen     uint64 `json:"last_regen"`
}

type ItemSnap struct {
	ID       string `json:"id"`
	Pos      [2]int `json:"pos"`
	ItemID   string `json:"item_id"`
	Count    int    `json:"count"`
	BornTick uint64 `json:"born_tick"`
}

type ContainerSnap struct {
	Pos   [2]int         `json:"pos"`
	Items map[string]int `json:"items"`
}

type TaskSnap struct {
	TaskID      string         `json:"task_id"`
	BlueprintID string         `json:"blueprint_id"`
	Origin      [2]int         `json:"origin"`
	Rotation    int            `json:"rotation"`
	State       string         `json:"state"`
	CreatedTick uint64         `json:"created_tick"`
	Builders    []string       `json:"builders,omitempty"`
	Tiles       []TileSpecSnap `json:"tiles"`
}

type TileSpecSnap struct {
	Pos       [2]int `json:"pos"`
	Type      string `json:"type"`
	Material  string `json:"material"`
	Progress  int    `json:"progress"`
	Placed    bool   `json:"placed"`
	Delivered int    `json:"delivered"`
	Required  int    `json:"required"`
}

type DoorSnap struct {
	Pos      [2]int `json:"pos"`
	OpenedAt uint64 `json:"opened_at"`
}

// ExportSnapshot captures the full world state. World-goroutine only.
func (w *World) ExportSnapshot() *SnapshotV1 {
	s := &SnapshotV1{
		Version: 1,
		WorldID: w.cfg.ID,
		Tick:    w.tick.Load(),
		Seed:    w.cfg.Seed,

		NextTask:     w.nextTaskNum.Load(),
		NextAgent:    w.nextAgentNum.Load(),
		NextItem:     w.nextItemNum.Load(),
		NextResource: w.nextResourceNum.Load(),
	}

	for _, k := range w.graph.LoadedChunkKeys() {
		ch, _ := w.graph.EnsureChunk(k)
		terrain := make([]uint16, len(ch.Tiles))
		elevation := make([]uint16, len(ch.Tiles))
		cs := ChunkSnap{
			CX:     k.CX,
			CY:     k.CY,
			Floors: make([]string, len(ch.Tiles)),
		}
		for i := range ch.Tiles {
			t := &ch.Tiles[i]
			terrain[i] = uint16(t.Terrain)
			elevation[i] = uint16(t.Elevation)
			cs.Floors[i] = t.Floor
			if occ := t.Occupant(); occ.Kind != OccupantNone {
				cs.Occupants = append(cs.Occupants, OccSnap{
					Idx:      i,
					Kind:     uint8(occ.Kind),
					Material: occ.Material,
					Health:   occ.Health,
					Progress: occ.Progress,
					Open:     occ.Open,
				})
			}
		}
		cs.Terrain = encoding.EncodeRLE(terrain)
		cs.Elevation = encoding.EncodeRLE(elevation)
		s.Chunks = append(s.Chunks, cs)
	}

	for _, a := range w.sortedAgents() {
		s.Agents = append(s.Agents, AgentSnap{
			ID:            a.ID,
			Name:          a.Name,
			Pos:           a.Pos.ToArray(),
			Inventory:     a.Inventory,
			XP:            a.XP,
			Relationships: a.Relationships,
			AssignedTask:  a.AssignedTask,
		})
	}

	for _, id := range w.sortedResourceIDs() {
		r := w.resources[id]
		s.Resources = append(s.Resources, ResourceSnap{
			ID:            r.ID,
			Species:       r.ResourceID,
			Pos:           r.Pos.ToArray(),
			CurrentHeight: r.CurrentHeight,
			State:         string(r.State),
			LastRegen:     r.lastRegenTick,
		})
	}

	for _, id := range w.sortedItemIDs() {
		it := w.items[id]
		s.Items = append(s.Items, ItemSnap{
			ID:       it.ID,
			Pos:      it.Pos.ToArray(),
			ItemID:   it.ItemID,
			Count:    it.Count,
			BornTick: it.BornTick,
		})
	}

	for _, p := range w.containers.sortedPositions() {
		c := w.containers.byPos[p]
		s.Containers = append(s.Containers, ContainerSnap{Pos: p.ToArray(), Items: c.Items})
	}

	for _, id := range w.sortedConstructionIDs() {
		ct := w.ctasks[id]
		tsn := TaskSnap{
			TaskID:      ct.TaskID,
			BlueprintID: ct.BlueprintID,
			Origin:      [2]int{ct.Origin.X, ct.Origin.Y},
			Rotation:    ct.Rotation,
			State:       string(ct.State),
			CreatedTick: ct.CreatedTick,
			Builders:    ct.Builders(),
		}
		for i := range ct.Tiles {
			t := &ct.Tiles[i]
			tsn.Tiles = append(tsn.Tiles, TileSpecSnap{
				Pos:       [2]int{t.Pos.X, t.Pos.Y},
				Type:      string(t.Type),
				Material:  t.Material,
				Progress:  t.Progress,
				Placed:    t.Placed,
				Delivered: t.Delivered,
				Required:  t.Required,
			})
		}
		s.Tasks = append(s.Tasks, tsn)
	}

	for pos, at := range w.doorOpenedAt {
		s.OpenDoors = append(s.OpenDoors, DoorSnap{Pos: pos.ToArray(), OpenedAt: at})
	}
	sort.Slice(s.OpenDoors, func(i, j int) bool {
		if s.OpenDoors[i].Pos[0] != s.OpenDoors[j].Pos[0] {
			return s.OpenDoors[i].Pos[0] < s.OpenDoors[j].Pos[0]
		}
		return s.OpenDoors[i].Pos[1] < s.OpenDoors[j].Pos[1]
	})

	s.Digest = w.StateDigest()
	return s
}

// ImportSnapshot restores state into a freshly constructed world. The seed
// and catalogs of the receiving world must match the snapshot's origin.
func (w *World) ImportSnapshot(s *SnapshotV1) error {
	if s == nil || s.Version != 1 {
		return fmt.Errorf("snapshot: unsupported version")
	}
	if s.Seed != w.cfg.Seed {
		return fmt.Errorf("snapshot: seed mismatch (snap %d, world %d)", s.Seed, w.cfg.Seed)
	}

	w.tick.Store(s.Tick)
	w.nextTaskNum.Store(s.NextTask)
	w.nextAgentNum.Store(s.NextAgent)
	w.nextItemNum.Store(s.NextItem)
	w.nextResourceNum.Store(s.NextResource)

	for _, cs := range s.Chunks {
		ch, _ := w.graph.EnsureChunk(ChunkKey{CX: cs.CX, CY: cs.CY})
		terrain, err := encoding.DecodeRLE(cs.Terrain)
		if err != nil {
			return fmt.Errorf("snapshot: chunk (%d,%d) terrain: %w", cs.CX, cs.CY, err)
		}
		elevation, err := encoding.DecodeRLE(cs.Elevation)
		if err != nil {
			return fmt.Errorf("snapshot: chunk (%d,%d) elevation: %w", cs.CX, cs.CY, err)
		}
		if len(terrain) != len(ch.Tiles) || len(elevation) != len(ch.Tiles) || len(cs.Floors) != len(ch.Tiles) {
			return fmt.Errorf("snapshot: chunk (%d,%d) size mismatch", cs.CX, cs.CY)
		}
		for i := range ch.Tiles {
			t := &ch.Tiles[i]
			t.Terrain = Terrain(terrain[i])
			t.Elevation = int(elevation[i])
			t.Floor = cs.Floors[i]
			t.occ = Occupant{}
		}
		for _, os := range cs.Occupants {
			if os.Idx < 0 || os.Idx >= len(ch.Tiles) {
				return fmt.Errorf("snapshot: chunk (%d,%d) occupant index %d", cs.CX, cs.CY, os.Idx)
			}
			ch.Tiles[os.Idx].occ = Occupant{
				Kind:     OccupantKind(os.Kind),
				Material: os.Material,
				Health:   os.Health,
				Progress: os.Progress,
				Open:     os.Open,
			}
		}
		ch.dirty = true
	}

	for _, as := range s.Agents {
		a := &Agent{
			ID:            as.ID,
			Name:          as.Name,
			Pos:           Vec2i{X: as.Pos[0], Y: as.Pos[1]},
			Inventory:     as.Inventory,
			XP:            as.XP,
			Relationships: as.Relationships,
			AssignedTask:  as.AssignedTask,
		}
		a.initDefaults()
		w.agents[a.ID] = a
	}

	for _, rs := range s.Resources {
		r := &VoxelResource{
			ID:            rs.ID,
			ResourceID:    rs.Species,
			Pos:           Vec2i{X: rs.Pos[0], Y: rs.Pos[1]},
			CurrentHeight: rs.CurrentHeight,
			State:         ResourceState(rs.State),
			lastRegenTick: rs.LastRegen,
		}
		if def, ok := w.catalogs.Resources.Defs[rs.Species]; ok {
			r.BlocksPerLevel = def.BlocksPerLevel
			r.MaxHeight = def.MaxHeight
			r.RegenerationRate = def.RegenerationRate
			r.RegenIntervalTicks = def.RegenIntervalTicks
			r.YieldItem = def.YieldItem
		}
		w.resources[r.ID] = r
		w.resourceAt[r.Pos] = r.ID
	}

	for _, is := range s.Items {
		w.items[is.ID] = &ItemEntity{
			ID:       is.ID,
			Pos:      Vec2i{X: is.Pos[0], Y: is.Pos[1]},
			ItemID:   is.ItemID,
			Count:    is.Count,
			BornTick: is.BornTick,
		}
	}

	for _, cs := range s.Containers {
		c := w.containers.AddContainer(Vec2i{X: cs.Pos[0], Y: cs.Pos[1]})
		for item, n := range cs.Items {
			c.Items[item] = n
		}
	}

	for _, tsn := range s.Tasks {
		ct := tasks.NewConstructionTask(tsn.TaskID, tsn.BlueprintID,
			tasks.Vec2i{X: tsn.Origin[0], Y: tsn.Origin[1]}, tsn.Rotation, tsn.CreatedTick)
		ct.State = tasks.ConstructionState(tsn.State)
		for _, id := range tsn.Builders {
			ct.ActiveBuilders.Put(id)
		}
		for _, t := range tsn.Tiles {
			ct.Tiles = append(ct.Tiles, tasks.TileSpec{
				Pos:       tasks.Vec2i{X: t.Pos[0], Y: t.Pos[1]},
				Type:      tasks.TileType(t.Type),
				Material:  t.Material,
				Progress:  t.Progress,
				Placed:    t.Placed,
				Delivered: t.Delivered,
				Required:  t.Required,
			})
		}
		w.ctasks[ct.TaskID] = ct
	}

	for _, ds := range s.OpenDoors {
		w.doorOpenedAt[Vec2i{X: ds.Pos[0], Y: ds.Pos[1]}] = ds.OpenedAt
	}

	if s.Digest != "" && s.Digest != w.StateDigest() {
		return fmt.Errorf("snapshot: digest mismatch after restore")
	}
	return nil
}
