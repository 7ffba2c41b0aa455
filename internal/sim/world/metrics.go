package world

import "tilecolony/internal/sim/tasks"

// WorldMetrics is a point-in-time snapshot published after every tick.
// Readable from any goroutine via Metrics().
type WorldMetrics struct {
	Tick         uint64
	Agents       int
	BusyAgents   int
	Rooms        int
	OpenTasks    int
	Resources    int
	GroundItems  int
	LoadedChunks int
	AmbientTempC float64
	EventsPerSec float64
	StepMS       float64
}

func (w *World) Metrics() WorldMetrics {
	m, _ := w.metrics.Load().(WorldMetrics)
	return m
}

func (w *World) publishMetrics(nowTick uint64, events int, stepMS float64) {
	open := 0
	for _, ct := range w.ctasks {
		switch ct.State {
		case tasks.StatePlanned, tasks.StateInProgress:
			open++
		}
	}
	busy := 0
	for _, a := range w.agents {
		if a.Busy() {
			busy++
		}
	}
	w.metrics.Store(WorldMetrics{
		Tick:         nowTick,
		Agents:       len(w.agents),
		BusyAgents:   busy,
		Rooms:        len(w.rooms.Rooms()),
		OpenTasks:    open,
		Resources:    len(w.resources),
		GroundItems:  len(w.items),
		LoadedChunks: w.graph.LoadedChunks(),
		AmbientTempC: w.ambient.AmbientTemperature(nowTick),
		EventsPerSec: float64(events) * float64(w.cfg.TickRateHz),
		StepMS:       stepMS,
	})
}
