package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Catalogs struct {
	Materials  MaterialCatalog
	Resources  ResourceCatalog
	Blueprints BlueprintCatalog
}

// MaterialCatalog is the read-only material-trait registry. The simulation
// core receives it by injection; it is never a package-level singleton.
type MaterialCatalog struct {
	Defs   map[string]MaterialDef
	Digest string
}

type MaterialDef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "wall","floor","door","window","raw"
	// TemperatureResistance is the raw trait from material data; insulation
	// is this value normalized against the catalog maximum.
	TemperatureResistance float64 `json:"temperature_resistance"`
	// ItemID is the inventory item consumed to build with this material.
	ItemID string `json:"item_id"`

	insulation float64
}

// Insulation returns the normalized 0..1 insulation coefficient for a
// material id. Unknown materials insulate nothing.
func (mc *MaterialCatalog) Insulation(materialID string) float64 {
	d, ok := mc.Defs[materialID]
	if !ok {
		return 0
	}
	return d.insulation
}

// ItemFor maps a material id to the inventory item it is built from.
// Falls back to the material id itself when unset.
func (mc *MaterialCatalog) ItemFor(materialID string) string {
	if d, ok := mc.Defs[materialID]; ok && d.ItemID != "" {
		return d.ItemID
	}
	return materialID
}

// ResourceCatalog defines the harvestable voxel resource species.
type ResourceCatalog struct {
	Defs   map[string]ResourceDef
	Digest string
}

type ResourceDef struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"` // "tree","ore"
	BlocksPerLevel int    `json:"blocks_per_level"`
	MaxHeight      int    `json:"max_height"`
	// RegenerationRate is height levels restored per RegenIntervalTicks;
	// 0 disables regrowth (ore).
	RegenerationRate   int    `json:"regeneration_rate"`
	RegenIntervalTicks int    `json:"regen_interval_ticks"`
	YieldItem          string `json:"yield_item"`
	// SpawnPermille is the per-tile seeding probability at worldgen.
	SpawnPermille int `json:"spawn_permille"`
}

type BlueprintCatalog struct {
	ByID   map[string]BlueprintDef
	Digest string
}

// BlueprintDef is a row-string layout plus its symbol table.
type BlueprintDef struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	Rows   []string             `json:"rows"`
	Symbol map[string]SymbolDef `json:"symbols"`
}

type SymbolDef struct {
	Type     string `json:"type"` // "wall","floor","door","window"
	Material string `json:"material"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadMaterials(filepath.Join(configDir, "materials.json"), &c.Materials); err != nil {
		return nil, err
	}
	if err := loadResources(filepath.Join(configDir, "resources.json"), &c.Resources); err != nil {
		return nil, err
	}
	if err := loadBlueprints(filepath.Join(configDir, "blueprints"), &c.Blueprints); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadMaterials(path string, out *MaterialCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []MaterialDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("materials.json: %w", err)
	}
	out.Defs = map[string]MaterialDef{}
	maxRes := 0.0
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("materials.json: empty id")
		}
		if d.TemperatureResistance < 0 {
			return fmt.Errorf("materials.json: %s: negative temperature_resistance", d.ID)
		}
		if d.TemperatureResistance > maxRes {
			maxRes = d.TemperatureResistance
		}
		out.Defs[d.ID] = d
	}
	// Normalize resistance to a 0..1 insulation coefficient.
	for id, d := range out.Defs {
		if maxRes > 0 {
			d.insulation = d.TemperatureResistance / maxRes
		}
		out.Defs[id] = d
	}
	return nil
}

func loadResources(path string, out *ResourceCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ResourceDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("resources.json: %w", err)
	}
	out.Defs = map[string]ResourceDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("resources.json: empty id")
		}
		if d.BlocksPerLevel <= 0 || d.MaxHeight <= 0 {
			return fmt.Errorf("resources.json: %s: non-positive yield geometry", d.ID)
		}
		out.Defs[d.ID] = d
	}
	return nil
}

func loadBlueprints(dir string, out *BlueprintCatalog) error {
	out.ByID = map[string]BlueprintDef{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	h := sha256.New()
	for _, name := range files {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		var def BlueprintDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return fmt.Errorf("blueprints/%s: %w", name, err)
		}
		if def.ID == "" {
			return fmt.Errorf("blueprints/%s: empty id", name)
		}
		if len(def.Rows) == 0 {
			return fmt.Errorf("blueprints/%s: empty layout", name)
		}
		width := len(def.Rows[0])
		for i, r := range def.Rows {
			if len(r) != width {
				return fmt.Errorf("blueprints/%s: row %d length %d, want %d", name, i, len(r), width)
			}
		}
		out.ByID[def.ID] = def
		h.Write(raw)
	}
	out.Digest = hex.EncodeToString(h.Sum(nil))
	return nil
}
