package traverse

import (
	"testing"

	"github.com/matzehuels/smdgraph/pkg/kg"
)

func TestRoundRobinCyclesTypes(t *testing.T) {
	entries := []kg.Incidence{
		{Neighbor: "a1", Type: kg.HasSymptom},
		{Neighbor: "a2", Type: kg.HasSymptom},
		{Neighbor: "b1", Type: kg.HasMechanism},
		{Neighbor: "a3", Type: kg.HasSymptom},
		{Neighbor: "c1", Type: kg.Causes},
		{Neighbor: "c2", Type: kg.Causes},
	}
	rr := newRoundRobin(entries)

	want := []string{"a1", "b1", "c1", "a2", "c2", "a3"}
	for i, w := range want {
		inc, ok := rr.next()
		if !ok {
			t.Fatalf("next() exhausted at %d", i)
		}
		if inc.Neighbor != w {
			t.Errorf("next() #%d = %s, want %s", i, inc.Neighbor, w)
		}
	}
	if _, ok := rr.next(); ok {
		t.Error("next() should be exhausted")
	}
}

func TestRoundRobinEmpty(t *testing.T) {
	if _, ok := newRoundRobin(nil).next(); ok {
		t.Error("empty round-robin returned an entry")
	}
}
