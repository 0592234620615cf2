package main

import (
	"testing"

	"github.com/Da-Krause/settlers-remake/internal/protocol"
)

func TestStrategyQueries(t *testing.T) {
	w := protocol.WelcomeMsg{
		Kinds:         []string{"CASTLE", "FISHER"},
		Civilisations: []string{"ROMANS", "EGYPTIANS", "ASIANS"},
	}
	qs := strategyQueries(w)
	if len(qs) != 6 {
		t.Fatalf("expected 6 queries, got %d", len(qs))
	}
	if qs[0].ReqID != "CASTLE/ROMANS" || qs[5].ReqID != "FISHER/ASIANS" {
		t.Fatalf("unexpected order %s .. %s", qs[0].ReqID, qs[5].ReqID)
	}
	seen := map[string]bool{}
	for _, q := range qs {
		if q.Type != protocol.TypeQueryStrategy || q.ProtocolVersion != protocol.Version {
			t.Fatalf("unexpected query %+v", q)
		}
		if seen[q.ReqID] {
			t.Fatalf("duplicate req id %s", q.ReqID)
		}
		seen[q.ReqID] = true
	}
}
