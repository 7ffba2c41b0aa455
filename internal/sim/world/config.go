package world

import "tilecolony/internal/sim/tuning"

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64
	// BoundaryR bounds the world in tiles from the origin; outside is void.
	BoundaryR int

	// FlatWorld disables terrain variation and resource seeding. Used by
	// tests and controlled scenarios.
	FlatWorld bool

	// Room detection.
	RoomRecalcTicks int
	RoomScanBudget  int

	// Temperature.
	HeatTransferK   float64
	AmbientBase     float64
	AmbientDayRange float64
	DayTicks        int

	// Construction/behaviors.
	BuildRatePerTick  int // progress points per builder per tick
	InteractionRange  int // Manhattan range for deliver/build/harvest
	RequiredPerTile   int // materials required per construction tile
	BuildXP           int
	DeliverXP         int
	HarvestXP         int
	RelationshipDelta int

	// Movement.
	MaxStepElevation   int
	DoorAutoCloseTicks int // 0 = doors stay open

	// Resources.
	ResourceSpawnScalePermille int

	// Items.
	ItemExpiryTicks int

	// Persistence.
	SnapshotEveryTicks int
}

func (c *WorldConfig) applyDefaults() {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 5
	}
	if c.BoundaryR <= 0 {
		c.BoundaryR = 2000
	}
	if c.RoomRecalcTicks <= 0 {
		c.RoomRecalcTicks = 25
	}
	if c.RoomScanBudget <= 0 {
		c.RoomScanBudget = 20000
	}
	if c.HeatTransferK <= 0 {
		c.HeatTransferK = 1.0
	}
	if c.AmbientBase == 0 {
		c.AmbientBase = 12.0
	}
	if c.AmbientDayRange < 0 {
		c.AmbientDayRange = 0
	}
	if c.DayTicks <= 0 {
		c.DayTicks = 6000
	}
	if c.BuildRatePerTick <= 0 {
		c.BuildRatePerTick = 10
	}
	if c.InteractionRange <= 0 {
		c.InteractionRange = 2
	}
	if c.RequiredPerTile <= 0 {
		c.RequiredPerTile = 1
	}
	if c.BuildXP <= 0 {
		c.BuildXP = 5
	}
	if c.DeliverXP <= 0 {
		c.DeliverXP = 2
	}
	if c.HarvestXP <= 0 {
		c.HarvestXP = 3
	}
	if c.RelationshipDelta <= 0 {
		c.RelationshipDelta = 1
	}
	if c.MaxStepElevation <= 0 {
		c.MaxStepElevation = 1
	}
	if c.DoorAutoCloseTicks < 0 {
		c.DoorAutoCloseTicks = 0
	}
	if c.ResourceSpawnScalePermille <= 0 {
		c.ResourceSpawnScalePermille = 1000
	}
	if c.ItemExpiryTicks <= 0 {
		c.ItemExpiryTicks = 6000
	}
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = 3000
	}
}

// ConfigFromTuning maps the operator tuning file onto a WorldConfig.
// Zero-valued tuning fields keep the built-in defaults.
func ConfigFromTuning(id string, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:                 id,
		TickRateHz:         t.TickRateHz,
		Seed:               t.Seed,
		BoundaryR:          t.BoundaryR,
		RoomRecalcTicks:    t.RoomRecalcTicks,
		RoomScanBudget:     t.RoomScanBudget,
		HeatTransferK:      t.HeatTransferK,
		AmbientBase:        t.AmbientBase,
		AmbientDayRange:    t.AmbientDayRange,
		DayTicks:           t.DayTicks,
		BuildRatePerTick:   t.BuildRatePerTick,
		InteractionRange:   t.InteractionRange,
		BuildXP:            t.BuildXP,
		DeliverXP:          t.DeliverXP,
		HarvestXP:          t.HarvestXP,
		RelationshipDelta:  t.RelBuildup,
		MaxStepElevation:   t.MaxStepElevation,
		DoorAutoCloseTicks: t.DoorAutoCloseTicks,
		ItemExpiryTicks:    t.ItemExpiryTicks,
		SnapshotEveryTicks: t.SnapshotEveryTicks,
	}
}
