package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tuning holds the knobs of the construction planner and its placement
// strategies.
type Tuning struct {
	Planner    Planner    `yaml:"planner"`
	Strategies Strategies `yaml:"strategies"`
}

type Planner struct {
	// Workers evaluating candidates in parallel. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// SearchRadius bounds candidate generation around a settlement center.
	SearchRadius int `yaml:"search_radius"`
}

type Strategies struct {
	NearRequiredMaxDistance int `yaml:"near_required_max_distance"`
	BorderMaxDistance       int `yaml:"border_max_distance"`
	MineSearchRadius        int `yaml:"mine_search_radius"`
	MinFarmSpace            int `yaml:"min_farm_space"`
	ForesterLumberjackRange int `yaml:"forester_lumberjack_range"`
}

func Defaults() Tuning {
	return Tuning{
		Planner: Planner{
			Workers:      0,
			SearchRadius: 40,
		},
		Strategies: Strategies{
			NearRequiredMaxDistance: 20,
			BorderMaxDistance:       12,
			MineSearchRadius:        3,
			MinFarmSpace:            20,
			ForesterLumberjackRange: 12,
		},
	}
}

// Load reads path on top of Defaults. An empty path yields the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		return t.Normalize(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t.Normalize(), nil
}

// Normalize fills zero values with usable ones.
func (t Tuning) Normalize() Tuning {
	d := Defaults()
	if t.Planner.Workers <= 0 {
		t.Planner.Workers = runtime.GOMAXPROCS(0)
	}
	if t.Planner.SearchRadius <= 0 {
		t.Planner.SearchRadius = d.Planner.SearchRadius
	}
	if t.Strategies.NearRequiredMaxDistance <= 0 {
		t.Strategies.NearRequiredMaxDistance = d.Strategies.NearRequiredMaxDistance
	}
	if t.Strategies.BorderMaxDistance <= 0 {
		t.Strategies.BorderMaxDistance = d.Strategies.BorderMaxDistance
	}
	if t.Strategies.MineSearchRadius <= 0 {
		t.Strategies.MineSearchRadius = d.Strategies.MineSearchRadius
	}
	if t.Strategies.ForesterLumberjackRange <= 0 {
		t.Strategies.ForesterLumberjackRange = d.Strategies.ForesterLumberjackRange
	}
	return t
}

func (t Tuning) Validate() error {
	if t.Planner.Workers < 0 {
		return fmt.Errorf("planner.workers must be >= 0")
	}
	if t.Strategies.MinFarmSpace < 0 {
		return fmt.Errorf("strategies.min_farm_space must be >= 0")
	}
	return nil
}

// Digest is the sha256 hex of the canonical YAML encoding of t.
func (t Tuning) Digest() string {
	b, err := yaml.Marshal(t)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
