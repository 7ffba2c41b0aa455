package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the operator-editable simulation configuration. Zero values fall
// back to WorldConfig defaults.
type Tuning struct {
	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"`
	BoundaryR  int   `yaml:"world_boundary_r"`

	RoomRecalcTicks int `yaml:"room_recalc_ticks"`
	RoomScanBudget  int `yaml:"room_scan_budget"`

	HeatTransferK      float64 `yaml:"heat_transfer_k"`
	AmbientBase        float64 `yaml:"ambient_base_c"`
	AmbientDayRange    float64 `yaml:"ambient_day_range_c"`
	DayTicks           int     `yaml:"day_ticks"`
	BuildRatePerTick   int     `yaml:"build_rate_per_tick"`
	InteractionRange   int     `yaml:"interaction_range"`
	MaxStepElevation   int     `yaml:"max_step_elevation"`
	DoorAutoCloseTicks int     `yaml:"door_auto_close_ticks"`
	ItemExpiryTicks    int     `yaml:"item_expiry_ticks"`

	BuildXP    int `yaml:"build_xp"`
	DeliverXP  int `yaml:"deliver_xp"`
	HarvestXP  int `yaml:"harvest_xp"`
	RelBuildup int `yaml:"relationship_delta"`

	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
