// Package validation checks the structural invariants of every resolved
// building record in a catalog.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/jobs"
)

const (
	RuleDisjoint   = "disjoint"
	RuleDoor       = "door"
	RuleStack      = "stack"
	RuleFootprint  = "footprint"
	RuleWorkRadius = "work_radius"
	RuleJobNames   = "job_names"
)

// Kinds whose door offset is not a walkable entrance.
var doorExempt = map[buildings.Kind]bool{
	buildings.Temple:      true,
	buildings.MarketPlace: true,
}

type Violation struct {
	Kind         buildings.Kind   `json:"kind"`
	Civilisation civ.Civilisation `json:"civilisation"`
	Rule         string           `json:"rule"`
	Detail       string           `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s/%s %s: %s", v.Kind, v.Civilisation, v.Rule, v.Detail)
}

type Report struct {
	Checked    int         `json:"checked"`
	Violations []Violation `json:"violations"`
}

func (r Report) OK() bool { return len(r.Violations) == 0 }

// Check resolves every eligible pair of cat and reports invariant
// violations. A pair that cannot be resolved at all is an error, not a
// violation.
func Check(cat *catalogs.Catalog) (Report, error) {
	var rep Report
	for _, k := range buildings.All() {
		for _, cv := range cat.Eligible(k) {
			info, err := cat.Resolve(k, cv)
			if err != nil {
				return rep, err
			}
			rep.Checked++
			rep.Violations = append(rep.Violations, CheckInfo(info)...)
		}
	}
	sort.SliceStable(rep.Violations, func(i, j int) bool {
		a, b := rep.Violations[i], rep.Violations[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Civilisation != b.Civilisation {
			return a.Civilisation < b.Civilisation
		}
		return a.Rule < b.Rule
	})
	return rep, nil
}

// CheckInfo applies every rule to a single record.
func CheckInfo(info *catalogs.BuildingInfo) []Violation {
	var out []Violation
	add := func(rule, format string, args ...any) {
		out = append(out, Violation{
			Kind:         info.Kind,
			Civilisation: info.Civilisation,
			Rule:         rule,
			Detail:       fmt.Sprintf(format, args...),
		})
	}

	blocked := geom.NewPointSet(info.Blocked)
	protected := geom.NewPointSet(info.Protected)
	if both := blocked.Intersect(protected); len(both) > 0 {
		add(RuleDisjoint, "tiles both blocked and protected: %s", joinPoints(both))
	}

	if !doorExempt[info.Kind] {
		if !protected.Contains(info.Door) {
			add(RuleDoor, "door %s is not protected", info.Door)
		}
		if blocked.Contains(info.Door) {
			add(RuleDoor, "door %s is blocked", info.Door)
		}
	}

	for _, s := range info.AllStacks() {
		if !protected.Contains(s.At) {
			add(RuleStack, "%s stack at %s is not protected", s.Material, s.At)
		}
		if blocked.Contains(s.At) {
			add(RuleStack, "%s stack at %s is blocked", s.Material, s.At)
		}
	}

	fp := info.Footprint()
	want := len(protected)
	for p := range protected {
		if !fp.Contains(p.DX, p.DY) {
			add(RuleFootprint, "protected %s missing from footprint", p)
		}
	}
	if info.Mine && !protected.Contains(geom.Rel(0, 0)) {
		want++
		if !fp.Contains(0, 0) {
			add(RuleFootprint, "mine anchor missing from footprint")
		}
	}
	if fp.Len() != want {
		add(RuleFootprint, "footprint has %d cells, expected %d", fp.Len(), want)
	}

	if info.WorkRadius < 0 {
		add(RuleWorkRadius, "negative work radius %d", info.WorkRadius)
	}

	if dups := jobs.DuplicateNames(info.StartJob); len(dups) > 0 {
		add(RuleJobNames, "duplicate job names: %s", strings.Join(dups, ","))
	}
	return out
}

func joinPoints(pts []geom.RelativePoint) string {
	parts := make([]string, 0, len(pts))
	for _, p := range pts {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " ")
}
