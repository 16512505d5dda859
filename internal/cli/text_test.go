package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
)

func testGraph(t *testing.T) *kg.Graph {
	t.Helper()
	g := kg.New()
	for _, n := range []kg.Node{
		{ID: "S_fever", Name: "Fever", Kind: kg.KindSymptom},
		{ID: "S_chills", Kind: kg.KindSymptom},
		{ID: "S_ache", Kind: kg.KindSymptom},
		{ID: "D_flu", Name: "Influenza", Kind: kg.KindDisease},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []kg.Edge{
		{From: "S_fever", To: "S_chills", Type: kg.AssociatedWith, Context: []kg.Anchor{{ID: "D_flu"}}},
		{From: "S_chills", To: "S_ache", Type: kg.AssociatedWith, Context: []kg.Anchor{{ID: "D_flu"}}},
		{From: "D_flu", To: "S_fever", Type: kg.HasSymptom},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	g.Freeze()
	return g
}

func TestWritePathsText(t *testing.T) {
	g := testGraph(t)
	res, err := traverse.New(g).FindPaths("S_fever", "S_ache", traverse.PathParams{MaxPaths: 3, MaxDepth: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Paths) != 1 {
		t.Fatalf("paths = %d, want 1", len(res.Paths))
	}

	var buf bytes.Buffer
	writePathsText(&buf, g, res, 3)
	out := buf.String()

	for _, want := range []string{
		"(Fever)",
		"Found",
		"fewer than the 3 requested",
		"--[ASSOCIATED_WITH]-->",
		"shared context:",
		"Influenza",
		"Path 1: S_fever -> S_chills -> S_ache",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePathsTextEmpty(t *testing.T) {
	g := testGraph(t)
	res := &traverse.PathResult{From: "S_fever", To: "S_nowhere"}

	var buf bytes.Buffer
	writePathsText(&buf, g, res, 3)
	if !strings.Contains(buf.String(), "No path found.") {
		t.Errorf("output = %q", buf.String())
	}
	if strings.Contains(buf.String(), "Summary") {
		t.Error("empty result should not print a summary")
	}
}

func TestWriteExpandText(t *testing.T) {
	g := testGraph(t)
	sub := &traverse.Subgraph{
		Center: "D_flu",
		Nodes:  []string{"D_flu", "S_fever", "S_chills"},
		Edges: []*kg.Edge{
			{From: "D_flu", To: "S_fever", Type: kg.HasSymptom},
			{From: "S_fever", To: "S_chills", Type: kg.AssociatedWith},
		},
		ClosureEdges: 1,
		Dropped:      2,
	}

	var buf bytes.Buffer
	writeExpandText(&buf, g, sub)
	out := buf.String()

	for _, want := range []string{
		"Nodes (3):",
		"[D] D_flu *",
		"[S] S_chills\n",
		"Edges (2):",
		"D_flu --[HAS_SYMPTOM]--> S_fever\n",
		"S_fever --[ASSOCIATED_WITH]--> S_chills",
		"(closure)",
		"2 association(s) left out",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHopArrow(t *testing.T) {
	e := &kg.Edge{From: "D_flu", To: "S_fever", Type: kg.HasSymptom}
	if got := hopArrow(e, "D_flu"); got != "--[HAS_SYMPTOM]-->" {
		t.Errorf("forward = %q", got)
	}
	if got := hopArrow(e, "S_fever"); got != "<--[HAS_SYMPTOM]--" {
		t.Errorf("backward = %q", got)
	}
}
