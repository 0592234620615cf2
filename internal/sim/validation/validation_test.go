package validation

import (
	"testing"

	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
	"github.com/Da-Krause/settlers-remake/internal/sim/jobs"
	"github.com/Da-Krause/settlers-remake/internal/sim/material"
)

func TestCheck_DefaultCatalog(t *testing.T) {
	src, err := catalogs.DefaultSource()
	if err != nil {
		t.Fatalf("DefaultSource: %v", err)
	}
	rep, err := Check(catalogs.New(src))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := 0
	for _, k := range buildings.All() {
		want += len(k.RequiredCivilisations())
	}
	if rep.Checked != want {
		t.Fatalf("expected %d checked records, got %d", want, rep.Checked)
	}
	if !rep.OK() {
		for _, v := range rep.Violations {
			t.Errorf("violation: %s", v)
		}
		t.Fatalf("expected a clean report")
	}
}

func only(kind buildings.Kind, cv civ.Civilisation, def catalogs.Definition) *catalogs.Catalog {
	src := catalogs.MapSource{kind: {cv: def}}
	return catalogs.New(src, catalogs.WithEligibility(func(k buildings.Kind) []civ.Civilisation {
		if k == kind {
			return []civ.Civilisation{cv}
		}
		return nil
	}))
}

func rules(rep Report) map[string]int {
	out := map[string]int{}
	for _, v := range rep.Violations {
		out[v.Rule]++
	}
	return out
}

func TestCheck_ReportsViolations(t *testing.T) {
	a, b, c := jobs.NewNode("work"), jobs.NewNode("rest"), jobs.NewNode("work")
	a.Link(b, nil)
	b.Link(c, nil)

	def := catalogs.Definition{
		Door:      geom.Rel(0, 0),
		Blocked:   []geom.RelativePoint{geom.Rel(0, 0), geom.Rel(1, 0)},
		Protected: []geom.RelativePoint{geom.Rel(1, 0), geom.Rel(0, 1)},
		OfferStacks: []catalogs.RelativeStack{
			{At: geom.Rel(5, 5), Material: material.Coal},
		},
		WorkRadius: -1,
		StartJob:   a,
	}
	rep, err := Check(only(buildings.Sawmill, civ.Romans, def))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	got := rules(rep)
	want := map[string]int{
		RuleDisjoint:   1,
		RuleDoor:       2,
		RuleStack:      1,
		RuleWorkRadius: 1,
		RuleJobNames:   1,
	}
	for rule, n := range want {
		if got[rule] != n {
			t.Fatalf("rule %s: expected %d violations, got %d (%v)", rule, n, got[rule], rep.Violations)
		}
	}
	if got[RuleFootprint] != 0 {
		t.Fatalf("unexpected footprint violation: %v", rep.Violations)
	}
	for i := 1; i < len(rep.Violations); i++ {
		if rep.Violations[i-1].Rule > rep.Violations[i].Rule {
			t.Fatalf("violations not sorted: %v", rep.Violations)
		}
	}
}

func TestCheck_DoorExemption(t *testing.T) {
	def := catalogs.Definition{
		Door:      geom.Rel(0, 0),
		Blocked:   []geom.RelativePoint{geom.Rel(0, 0)},
		Protected: []geom.RelativePoint{geom.Rel(0, 1)},
	}
	for _, k := range []buildings.Kind{buildings.Temple, buildings.MarketPlace} {
		rep, err := Check(only(k, civ.Asians, def))
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !rep.OK() {
			t.Fatalf("%s: expected door exemption, got %v", k, rep.Violations)
		}
	}
	rep, _ := Check(only(buildings.Stock, civ.Asians, def))
	if rules(rep)[RuleDoor] == 0 {
		t.Fatalf("STOCK is not exempt: %v", rep.Violations)
	}
}

func TestCheck_UnresolvablePair(t *testing.T) {
	cat := catalogs.New(catalogs.MapSource{}, catalogs.WithEligibility(func(k buildings.Kind) []civ.Civilisation {
		if k == buildings.Farm {
			return []civ.Civilisation{civ.Romans}
		}
		return nil
	}))
	if _, err := Check(cat); err == nil {
		t.Fatalf("expected an error for a missing definition")
	}
}
