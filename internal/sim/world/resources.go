package world

import (
	"sort"

	"tilecolony/internal/protocol"
	"tilecolony/internal/sim/world/logic/mathx"
)

// ResourceState is the voxel resource lifecycle.
type ResourceState string

const (
	ResourceGrowing ResourceState = "GROWING"
	ResourceStable  ResourceState = "STABLE"
	ResourceFalling ResourceState = "FALLING"
	// ResourceDepleted is terminal; the instance is removed on entry.
	ResourceDepleted ResourceState = "DEPLETED"
)

// VoxelResource is a harvestable entity whose total yield is a function of
// its height: BlocksPerLevel items per height level, never more than
// MaxHeight*BlocksPerLevel over its lifetime.
type VoxelResource struct {
	ID         string
	ResourceID string // catalog species id
	Pos        Vec2i

	BlocksPerLevel int
	CurrentHeight  int
	MaxHeight      int

	RegenerationRate   int
	RegenIntervalTicks int
	lastRegenTick      uint64

	YieldItem string
	State     ResourceState

	// harvestingBy pauses regeneration while an agent works the resource.
	harvestingBy string
}

func (w *World) sortedResourceIDs() []string {
	ids := make([]string, 0, len(w.resources))
	for id := range w.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResourceAt returns the resource occupying a tile, or nil.
func (w *World) ResourceAt(pos Vec2i) *VoxelResource {
	id := w.resourceAt[pos]
	if id == "" {
		return nil
	}
	return w.resources[id]
}

// spawnResource places a full-height instance of a catalog species.
func (w *World) spawnResource(speciesID string, pos Vec2i, nowTick uint64) *VoxelResource {
	def, ok := w.catalogs.Resources.Defs[speciesID]
	if !ok {
		return nil
	}
	if w.resourceAt[pos] != "" {
		return nil
	}
	r := &VoxelResource{
		ID:                 w.newResourceID(),
		ResourceID:         speciesID,
		Pos:                pos,
		BlocksPerLevel:     def.BlocksPerLevel,
		CurrentHeight:      def.MaxHeight,
		MaxHeight:          def.MaxHeight,
		RegenerationRate:   def.RegenerationRate,
		RegenIntervalTicks: def.RegenIntervalTicks,
		lastRegenTick:      nowTick,
		YieldItem:          def.YieldItem,
		State:              ResourceStable,
	}
	w.resources[r.ID] = r
	w.resourceAt[pos] = r.ID
	return r
}

func (w *World) removeResource(r *VoxelResource) {
	delete(w.resources, r.ID)
	delete(w.resourceAt, r.Pos)
}

// seedResources deterministically populates a freshly generated chunk with
// resource instances. Flat worlds are left empty for controlled scenarios.
func (w *World) seedResources(ch *Chunk) {
	if w.cfg.FlatWorld {
		return
	}

	species := make([]string, 0, len(w.catalogs.Resources.Defs))
	for id := range w.catalogs.Resources.Defs {
		species = append(species, id)
	}
	sort.Strings(species)

	for i := range ch.Tiles {
		t := &ch.Tiles[i]
		if t.Terrain == TerrainWater || t.Terrain == TerrainRock {
			continue
		}
		roll := mathx.Hash2(w.cfg.Seed+29, t.Pos.X, t.Pos.Y) % 1000
		acc := uint64(0)
		for _, sid := range species {
			def := w.catalogs.Resources.Defs[sid]
			p := uint64(def.SpawnPermille) * uint64(w.cfg.ResourceSpawnScalePermille) / 1000
			acc += p
			if roll < acc {
				w.spawnResource(sid, t.Pos, 0)
				break
			}
		}
	}
}

// harvestResult reports one harvest cut.
type harvestResult struct {
	Yield  int  // items granted directly to the harvester
	Felled bool // the cut collapsed the resource
	// Dropped is the item count spilled at the tile by a felling collapse.
	Dropped int
	Removed bool
}

// harvestCut applies one cut at cutLevel. A cut strictly above ground
// removes exactly one level. A ground-level cut while more than one level
// remains severs structural support: the harvester keeps one level's yield
// and everything that was still standing above drops at the tile.
func (w *World) harvestCut(a *Agent, r *VoxelResource, cutLevel int, nowTick uint64) harvestResult {
	var res harvestResult
	if r.CurrentHeight <= 0 {
		return res
	}

	if cutLevel <= 0 && r.CurrentHeight > 1 {
		// Felling cut. Remaining height is measured before the final
		// decrement: one level goes to the harvester, the rest hits the
		// ground.
		remaining := r.CurrentHeight - 1
		res.Yield = r.BlocksPerLevel
		res.Felled = true
		res.Dropped = remaining * r.BlocksPerLevel
		res.Removed = true

		r.CurrentHeight = 0
		r.State = ResourceFalling

		a.Inventory[r.YieldItem] += res.Yield
		if res.Dropped > 0 {
			w.spawnItemEntity(nowTick, a.ID, r.Pos, r.YieldItem, res.Dropped, "FELL_DROP")
		}
		w.emit(protocol.Event{
			"t":                nowTick,
			"type":             protocol.EvTreeFelled,
			"pos":              r.Pos.ToArray(),
			"material_dropped": res.Dropped,
		})
		r.State = ResourceDepleted
		w.removeResource(r)
		return res
	}

	// Top-down cut: one level, no collapse.
	res.Yield = r.BlocksPerLevel
	r.CurrentHeight--
	a.Inventory[r.YieldItem] += res.Yield
	if r.CurrentHeight <= 0 {
		res.Removed = r.RegenerationRate <= 0
		if res.Removed {
			r.State = ResourceDepleted
			w.removeResource(r)
		} else {
			r.State = ResourceGrowing
		}
	}
	return res
}

// systemResourceRegen restores height over time, paused while a harvest is
// in progress on the instance.
func (w *World) systemResourceRegen(nowTick uint64) {
	for _, id := range w.sortedResourceIDs() {
		r := w.resources[id]
		if r.RegenerationRate <= 0 || r.RegenIntervalTicks <= 0 {
			continue
		}
		if r.harvestingBy != "" {
			r.lastRegenTick = nowTick
			continue
		}
		if r.CurrentHeight >= r.MaxHeight {
			r.State = ResourceStable
			continue
		}
		if nowTick-r.lastRegenTick < uint64(r.RegenIntervalTicks) {
			continue
		}
		r.lastRegenTick = nowTick
		r.CurrentHeight += r.RegenerationRate
		if r.CurrentHeight >= r.MaxHeight {
			r.CurrentHeight = r.MaxHeight
			r.State = ResourceStable
		} else {
			r.State = ResourceGrowing
		}
	}
}
