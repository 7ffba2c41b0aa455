package world

import "tilecolony/internal/sim/world/logic/heat"

// systemTemperature advances every room's thermal state one tick. Enclosed
// rooms approach ambient at a rate damped by wall insulation and scaled down
// by thermal mass (floor area, height 1); everything else tracks ambient
// with no lag.
func (w *World) systemTemperature(nowTick uint64) {
	ambient := w.ambient.AmbientTemperature(nowTick)
	dt := 1.0 / float64(w.cfg.TickRateHz)

	for _, room := range w.rooms.Rooms() {
		if !room.tempSeeded {
			room.Temperature = ambient
			room.tempSeeded = true
			continue
		}
		if !room.Enclosed {
			room.Temperature = ambient
			continue
		}
		room.Temperature = heat.Step(
			room.Temperature,
			ambient,
			room.AvgInsulation,
			w.cfg.HeatTransferK,
			dt,
			float64(room.Area),
		)
	}
}

// TemperatureAt reports the effective temperature at a tile: the containing
// enclosed room's temperature, otherwise ambient.
func (w *World) TemperatureAt(pos Vec2i, nowTick uint64) float64 {
	if room := w.rooms.RoomAt(pos); room != nil && room.Enclosed && room.tempSeeded {
		return room.Temperature
	}
	return w.ambient.AmbientTemperature(nowTick)
}
