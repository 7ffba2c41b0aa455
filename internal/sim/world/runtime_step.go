package world

import (
	"encoding/json"
	"strconv"
	"time"

	"tilecolony/internal/protocol"
)

// StepOnce advances the world by exactly one tick. Tests drive the
// simulation through this; Run calls it on the tick ticker.
func (w *World) StepOnce() {
	start := time.Now()
	nowTick := w.tick.Add(1)

	w.drainCommands(nowTick)
	w.drainObserverChurn()

	w.stepSystems(nowTick)

	events := w.eventsThisTick
	w.eventsThisTick = nil

	w.publishMetrics(nowTick, len(events), float64(time.Since(start).Microseconds())/1000.0)
	w.broadcastFrame(nowTick, events)

	if w.tickLogger != nil && len(events) > 0 {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:   nowTick,
			Events: events,
			Digest: w.StateDigest(),
		})
	}
	if w.snapshotSink != nil && w.cfg.SnapshotEveryTicks > 0 && nowTick%uint64(w.cfg.SnapshotEveryTicks) == 0 {
		select {
		case w.snapshotSink <- SnapshotRequest{Tick: nowTick, Snap: w.ExportSnapshot()}:
		default:
			// Writer backlog; skip this cadence rather than stall the tick.
		}
	}
}

// stepSystems is the fixed per-tick system order. Room detection is
// throttled; everything else runs every tick.
func (w *World) stepSystems(nowTick uint64) {
	if w.rooms.Due(nowTick) {
		w.rooms.Recalculate(nowTick)
		if w.rooms.Truncated() {
			w.emit(protocol.Event{"t": nowTick, "type": protocol.EvRoomScanTruncated, "code": protocol.ErrBudget})
		}
	}
	w.systemTemperature(nowTick)
	w.systemConstruction(nowTick)
	w.systemMovement(nowTick)
	w.systemEnvironment(nowTick)
}

func (w *World) drainCommands(nowTick uint64) {
	for {
		select {
		case cmd := <-w.cmds:
			res := w.applyCommand(cmd, nowTick)
			if cmd.Reply != nil {
				select {
				case cmd.Reply <- res:
				default:
				}
			}
		default:
			return
		}
	}
}

func (w *World) drainObserverChurn() {
	for {
		select {
		case req := <-w.observerJoin:
			w.addObserver(req)
		case id := <-w.observerLeave:
			if obs, ok := w.observers[id]; ok {
				close(obs.Out)
				delete(w.observers, id)
			}
		default:
			return
		}
	}
}

func (w *World) addObserver(req observerJoinReq) {
	n := w.nextObserverNum.Add(1)
	obs := &observerState{
		ID:  req.Name + "#" + strconv.FormatUint(n, 10),
		Out: make(chan []byte, 64),
	}
	w.observers[obs.ID] = obs
	req.Reply <- ObserverHandle{
		ID: obs.ID,
		Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			ObserverID:      obs.ID,
			WorldParams: protocol.WorldParams{
				TickRateHz: w.cfg.TickRateHz,
				ChunkSize:  [2]int{ChunkSize, ChunkSize},
				Seed:       w.cfg.Seed,
				BoundaryR:  w.cfg.BoundaryR,
			},
			Catalogs: w.CatalogDigests(),
		},
		Frames: obs.Out,
	}
}

// broadcastFrame fans the tick's frame out to observers. Idle ticks (no
// events) are skipped; a slow observer drops frames rather than stalling
// the loop.
func (w *World) broadcastFrame(nowTick uint64, events []protocol.Event) {
	if len(w.observers) == 0 || len(events) == 0 {
		return
	}
	m := w.Metrics()
	frame := protocol.FrameMsg{
		Type:   protocol.TypeFrame,
		Tick:   nowTick,
		Events: events,
		World: protocol.WorldFrame{
			Agents:       m.Agents,
			Rooms:        m.Rooms,
			OpenTasks:    m.OpenTasks,
			Resources:    m.Resources,
			AmbientTempC: m.AmbientTempC,
			StepMS:       m.StepMS,
		},
	}
	b, err := json.Marshal(frame)
	if err != nil {
		return
	}
	for _, obs := range w.observers {
		select {
		case obs.Out <- b:
		default:
		}
	}
}
