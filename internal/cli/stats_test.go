package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/smdgraph/pkg/kg"
)

func TestKindTable(t *testing.T) {
	s := kg.Stats{
		Nodes: 5,
		Kinds: map[string]int{"Symptom": 3, "Mechanism": 1, "Disease": 1},
	}
	out := kindTable(s)
	for _, want := range []string{"Kind", "Symptom", "Mechanism", "Disease", "Total", "5"} {
		if !strings.Contains(out, want) {
			t.Errorf("kind table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unknown") {
		t.Errorf("unknown row should be hidden when empty:\n%s", out)
	}
}

func TestTypeTable(t *testing.T) {
	s := kg.Stats{
		Edges: 4,
		Types: map[kg.EdgeType]int{kg.HasSymptom: 3, "TREATS": 1},
	}
	out := typeTable(s)
	for _, want := range []string{"HAS_SYMPTOM", "TREATS (unknown)", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("type table missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "HAS_SYMPTOM") > strings.Index(out, "TREATS") {
		t.Error("known types should come first")
	}
}
