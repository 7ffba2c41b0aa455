package world

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"tilecolony/internal/protocol"
	"tilecolony/internal/sim/catalogs"
	"tilecolony/internal/sim/tasks"
)

// MaterialTraits is the read-only material registry the simulation consumes.
// catalogs.MaterialCatalog implements it; tests may inject stubs.
type MaterialTraits interface {
	Insulation(materialID string) float64
	ItemFor(materialID string) string
}

// AmbientSource supplies the outdoor world temperature per tick. Supplied by
// an external weather/time system; the built-in default is a daily sine.
type AmbientSource interface {
	AmbientTemperature(tick uint64) float64
}

// Storage is the inventory/source interface material transport searches.
// The world's container store implements it.
type Storage interface {
	FindSource(materialID string, near Vec2i) (Vec2i, bool)
	Take(pos Vec2i, materialID string, count int) bool
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	traits   MaterialTraits
	ambient  AmbientSource

	tick atomic.Uint64

	graph *TileGraph
	rooms *RoomDetector

	resources  map[string]*VoxelResource
	resourceAt map[Vec2i]string

	ctasks map[string]*tasks.ConstructionTask

	agents     map[string]*Agent
	items      map[string]*ItemEntity
	containers *ContainerStore

	// doorOpenedAt drives the auto-close sweep; entries are removed when
	// the door closes.
	doorOpenedAt map[Vec2i]uint64

	// Events emitted this tick, drained to observers and the tick logger.
	eventsThisTick []protocol.Event

	observers map[string]*observerState

	cmds          chan Command
	observerJoin  chan observerJoinReq
	observerLeave chan string
	stop          chan struct{}
	stopOnce      sync.Once

	nextAgentNum    atomic.Uint64
	nextTaskNum     atomic.Uint64
	nextItemNum     atomic.Uint64
	nextResourceNum atomic.Uint64
	nextObserverNum atomic.Uint64

	metrics atomic.Value // WorldMetrics

	tickLogger   TickLogger
	snapshotSink chan<- SnapshotRequest
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick   uint64           `json:"tick"`
	Events []protocol.Event `json:"events,omitempty"`
	Digest string           `json:"digest"`
}

// SnapshotRequest carries an exported snapshot to the off-thread writer.
type SnapshotRequest struct {
	Tick uint64
	Snap *SnapshotV1
}

type observerState struct {
	ID  string
	Out chan []byte
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	cfg.applyDefaults()
	if cats == nil {
		return nil, fmt.Errorf("world: nil catalogs")
	}

	w := &World{
		cfg:      cfg,
		catalogs: cats,
		traits:   &cats.Materials,

		graph: NewTileGraph(TileGen{
			Seed:      cfg.Seed,
			BoundaryR: cfg.BoundaryR,
			Flat:      cfg.FlatWorld,
		}),

		resources:    map[string]*VoxelResource{},
		resourceAt:   map[Vec2i]string{},
		ctasks:       map[string]*tasks.ConstructionTask{},
		agents:       map[string]*Agent{},
		items:        map[string]*ItemEntity{},
		doorOpenedAt: map[Vec2i]uint64{},

		observers: map[string]*observerState{},

		cmds:          make(chan Command, 256),
		observerJoin:  make(chan observerJoinReq, 8),
		observerLeave: make(chan string, 8),
		stop:          make(chan struct{}),
	}
	w.containers = newContainerStore(w)
	w.rooms = newRoomDetector(w.graph, w.traits, cfg.RoomRecalcTicks, cfg.RoomScanBudget)
	w.ambient = dayCycleAmbient{base: cfg.AmbientBase, swing: cfg.AmbientDayRange, dayTicks: cfg.DayTicks}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) CatalogDigests() protocol.Digests {
	return protocol.Digests{
		Materials:  w.catalogs.Materials.Digest,
		Resources:  w.catalogs.Resources.Digest,
		Blueprints: w.catalogs.Blueprints.Digest,
	}
}

// SetAmbientSource replaces the default weather model. Call before Run.
func (w *World) SetAmbientSource(src AmbientSource) {
	if src != nil {
		w.ambient = src
	}
}

// SetTickLogger attaches a persistence tick logger. Call before Run.
func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

// SetSnapshotSink attaches the off-thread snapshot writer. Call before Run.
func (w *World) SetSnapshotSink(ch chan<- SnapshotRequest) { w.snapshotSink = ch }

// dayCycleAmbient is the default sinusoidal outdoor temperature.
type dayCycleAmbient struct {
	base     float64
	swing    float64
	dayTicks int
}

func (d dayCycleAmbient) AmbientTemperature(tick uint64) float64 {
	if d.dayTicks <= 0 || d.swing == 0 {
		return d.base
	}
	phase := float64(tick%uint64(d.dayTicks)) / float64(d.dayTicks)
	// Coldest at phase 0 (midnight), warmest at phase 0.5 (noon).
	return d.base - d.swing*0.5*math.Cos(2*math.Pi*phase)
}

func (w *World) newTaskID() string {
	n := w.nextTaskNum.Add(1)
	return fmt.Sprintf("T%06d", n)
}

func (w *World) newAgentID() string {
	n := w.nextAgentNum.Add(1)
	return fmt.Sprintf("A%d", n)
}

func (w *World) newItemID() string {
	n := w.nextItemNum.Add(1)
	return fmt.Sprintf("I%06d", n)
}

func (w *World) newResourceID() string {
	n := w.nextResourceNum.Add(1)
	return fmt.Sprintf("R%06d", n)
}

// emit queues a world event for this tick's observers/log.
func (w *World) emit(e protocol.Event) {
	w.eventsThisTick = append(w.eventsThisTick, e)
}

// SpawnAgent creates an agent at pos. Safe only from the world goroutine
// (tests) or via the Command channel.
func (w *World) SpawnAgent(name string, pos Vec2i) *Agent {
	a := &Agent{
		ID:   w.newAgentID(),
		Name: name,
		Pos:  pos,
	}
	a.initDefaults()
	w.agents[a.ID] = a
	w.ensureChunkAt(pos)
	w.emit(protocol.Event{
		"t":        w.tick.Load(),
		"type":     protocol.EvAgentSpawned,
		"agent_id": a.ID,
		"name":     name,
		"pos":      pos.ToArray(),
	})
	return a
}

func (w *World) ensureChunkAt(pos Vec2i) {
	if !w.graph.InBounds(pos) {
		return
	}
	k, _, _ := chunkKeyFor(pos)
	if ch, fresh := w.graph.EnsureChunk(k); fresh {
		w.seedResources(ch)
	}
}
