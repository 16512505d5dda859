package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/smdgraph/pkg/kg"
)

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func update(m NodeListModel, msgs ...tea.Msg) NodeListModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(NodeListModel)
	}
	return m
}

func TestNodeItems(t *testing.T) {
	g := kg.New()
	_ = g.AddNode(kg.Node{ID: "S_lonely", Kind: kg.KindSymptom})
	_ = g.AddNode(kg.Node{ID: "D_flu", Name: "Influenza", Kind: kg.KindDisease})
	_ = g.AddEdge(kg.Edge{From: "D_flu", To: "S_fever", Type: kg.HasSymptom})
	g.Freeze()

	items := nodeItems(g)
	if len(items) != 2 {
		t.Fatalf("items = %+v, want D_flu and S_fever", items)
	}
	if items[0].ID != "D_flu" || items[0].Name != "Influenza" || items[0].Degree != 1 {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].ID != "S_fever" || items[1].Kind != kg.KindSymptom {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestNodeListFilterAndSelect(t *testing.T) {
	m := NewNodeListModel([]NodeItem{
		{ID: "D_flu", Name: "Influenza"},
		{ID: "S_cough"},
		{ID: "S_fever", Name: "Fever"},
	})
	if len(m.Visible) != 3 {
		t.Fatalf("visible = %v", m.Visible)
	}

	m = update(m, typed("fe"))
	if len(m.Visible) != 1 || m.Items[m.Visible[0]].ID != "S_fever" {
		t.Fatalf("filter %q: visible = %v", m.Filter, m.Visible)
	}

	m = update(m, key(tea.KeyBackspace), key(tea.KeyBackspace), typed("S_"))
	if len(m.Visible) != 2 {
		t.Fatalf("filter %q: visible = %v", m.Filter, m.Visible)
	}

	m = update(m, key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyEnter))
	if m.Selected == nil || m.Selected.ID != "S_fever" {
		t.Errorf("selected = %+v, want S_fever", m.Selected)
	}
}

func TestNodeListQuit(t *testing.T) {
	m := NewNodeListModel([]NodeItem{{ID: "D_flu"}})
	next, cmd := m.Update(key(tea.KeyEsc))
	if cmd == nil {
		t.Error("esc should quit")
	}
	if next.(NodeListModel).Selected != nil {
		t.Error("esc should not select")
	}
}

func TestNodeListEnterWithoutMatches(t *testing.T) {
	m := update(NewNodeListModel([]NodeItem{{ID: "D_flu"}}), typed("zzz"))
	next, cmd := m.Update(key(tea.KeyEnter))
	if cmd != nil || next.(NodeListModel).Selected != nil {
		t.Error("enter on an empty list should do nothing")
	}
	if !strings.Contains(m.View(), "no matching nodes") {
		t.Errorf("view = %q", m.View())
	}
}

func TestNodeListView(t *testing.T) {
	m := NewNodeListModel([]NodeItem{
		{ID: "D_flu", Name: "Influenza", Kind: kg.KindDisease, Degree: 4},
	})
	view := m.View()
	for _, want := range []string{"Select Center Node", "D_flu", "Influenza", "[1/1]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
