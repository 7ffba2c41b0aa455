package tasks

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

type Kind string

const (
	KindMoveTo    Kind = "MOVE_TO"
	KindHarvest   Kind = "HARVEST"
	KindTransport Kind = "TRANSPORT"
	KindBuild     Kind = "BUILD"
	KindDemolish  Kind = "DEMOLISH"
)

// Status is the per-tick result of stepping a behavior.
//
// Blocked is distinct from Failed: a Blocked build step means the tile is
// waiting on materials and the agent should fall back to transport; Failed
// aborts the behavior and is surfaced to the caller's planner.
type Status int

const (
	StatusRunning Status = iota
	StatusSuccess
	StatusBlocked
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusBlocked:
		return "BLOCKED"
	case StatusFailed:
		return "FAILED"
	default:
		return "RUNNING"
	}
}

type MovementTask struct {
	TaskID      string
	Target      Vec2i
	Tolerance   int
	StartedTick uint64
}

// TransportPhase enumerates the material-transport state machine.
type TransportPhase string

const (
	PhaseFindingMaterial TransportPhase = "finding_material"
	PhaseMovingToStorage TransportPhase = "moving_to_storage"
	PhasePickingUp       TransportPhase = "picking_up"
	PhaseTransporting    TransportPhase = "transporting"
	PhaseDelivering      TransportPhase = "delivering"
)

type TransportTask struct {
	TaskID         string
	ConstructionID string
	TileIndex      int
	Material       string
	Phase          TransportPhase

	// Source resolved during finding_material.
	SourcePos    Vec2i
	SourceItemID string // ground item entity id, "" when pulling from storage

	Carrying    int
	StartedTick uint64
}

type BuildTask struct {
	TaskID         string
	ConstructionID string
	TileIndex      int
	StartedTick    uint64
}

type HarvestTask struct {
	TaskID      string
	ResourceID  string
	CutLevel    int // height index of the cut; 0 = ground level
	WorkTicks   int
	StartedTick uint64
}

type DemolishTask struct {
	TaskID      string
	Pos         Vec2i
	WorkTicks   int
	StartedTick uint64
}

// TileType mirrors the blueprint symbol types without importing the layout
// package (tasks is imported by world, which owns the layout expansion).
type TileType string

const (
	TileWall   TileType = "wall"
	TileFloor  TileType = "floor"
	TileDoor   TileType = "door"
	TileWindow TileType = "window"
)

// TileSpec tracks one target tile of a construction task.
type TileSpec struct {
	Pos      Vec2i
	Type     TileType
	Material string

	Progress  int // 0..100, monotone until Placed
	Placed    bool
	Delivered int
	Required  int

	// ClaimedBy reserves the tile for one agent's current behavior so two
	// builders never duplicate work on the same tile.
	ClaimedBy string
}

func (ts *TileSpec) MaterialsReady() bool { return ts.Delivered >= ts.Required }

type ConstructionState string

const (
	StatePlanned    ConstructionState = "planned"
	StateInProgress ConstructionState = "in_progress"
	StateCompleted  ConstructionState = "completed"
	StateCancelled  ConstructionState = "cancelled"
)

// ConstructionTask is one instantiated blueprint. Owned by the world's
// construction system; behaviors reference it by TaskID only.
type ConstructionTask struct {
	TaskID      string
	BlueprintID string
	Origin      Vec2i
	Rotation    int
	Tiles       []TileSpec
	State       ConstructionState
	CreatedTick uint64

	ActiveBuilders mapset.Set[string]
}

func NewConstructionTask(taskID, blueprintID string, origin Vec2i, rotation int, tick uint64) *ConstructionTask {
	return &ConstructionTask{
		TaskID:         taskID,
		BlueprintID:    blueprintID,
		Origin:         origin,
		Rotation:       rotation,
		State:          StatePlanned,
		CreatedTick:    tick,
		ActiveBuilders: mapset.New[string](),
	}
}

// Builders returns the active builder ids in sorted order for deterministic
// iteration.
func (ct *ConstructionTask) Builders() []string {
	out := make([]string, 0, ct.ActiveBuilders.Size())
	ct.ActiveBuilders.Each(func(id string) { out = append(out, id) })
	sort.Strings(out)
	return out
}

// NextTileForBuild returns the index of the first unplaced, unclaimed tile
// whose materials are fully delivered, or -1.
func (ct *ConstructionTask) NextTileForBuild(agentID string) int {
	for i := range ct.Tiles {
		ts := &ct.Tiles[i]
		if ts.Placed || !ts.MaterialsReady() {
			continue
		}
		if ts.ClaimedBy != "" && ts.ClaimedBy != agentID {
			continue
		}
		return i
	}
	return -1
}

// NextTileForTransport returns the index of the first unplaced, unclaimed
// tile still missing materials, or -1.
func (ct *ConstructionTask) NextTileForTransport(agentID string) int {
	for i := range ct.Tiles {
		ts := &ct.Tiles[i]
		if ts.Placed || ts.MaterialsReady() {
			continue
		}
		if ts.ClaimedBy != "" && ts.ClaimedBy != agentID {
			continue
		}
		return i
	}
	return -1
}

func (ct *ConstructionTask) AllPlaced() bool {
	for i := range ct.Tiles {
		if !ct.Tiles[i].Placed {
			return false
		}
	}
	return len(ct.Tiles) > 0
}

// ReleaseClaims drops every tile claim held by agentID.
func (ct *ConstructionTask) ReleaseClaims(agentID string) {
	for i := range ct.Tiles {
		if ct.Tiles[i].ClaimedBy == agentID {
			ct.Tiles[i].ClaimedBy = ""
		}
	}
}

// Vec2i is duplicated here to avoid import cycles (tasks is used by world).
type Vec2i struct{ X, Y int }
