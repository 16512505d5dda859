package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/smdgraph/pkg/kg"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listFilterStyle = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
)

// kindColors mirrors the node palette of the rendered diagrams.
var kindColors = map[kg.Kind]lipgloss.Color{
	kg.KindSymptom:   lipgloss.Color("#3B82F6"),
	kg.KindMechanism: lipgloss.Color("#F59E0B"),
	kg.KindDisease:   lipgloss.Color("#DC2626"),
}

// =============================================================================
// NodeListModel - Interactive node selection
// =============================================================================

// NodeItem is one row of the node picker.
type NodeItem struct {
	ID     string
	Name   string
	Kind   kg.Kind
	Degree int
}

// nodeItems lists every node that has edges, in id order. Nodes without
// edges cannot be expanded and are left out.
func nodeItems(g *kg.Graph) []NodeItem {
	var items []NodeItem
	for _, id := range g.IDs() {
		if !g.HasEdges(id) {
			continue
		}
		name := ""
		if n, ok := g.Node(id); ok {
			name = n.Name
		}
		items = append(items, NodeItem{ID: id, Name: name, Kind: g.Kind(id), Degree: g.Degree(id)})
	}
	return items
}

// NodeListModel is the bubbletea model for interactive node selection.
// Typing narrows the list to ids and names containing the filter text.
type NodeListModel struct {
	Items    []NodeItem
	Filter   string
	Visible  []int
	Cursor   int
	Offset   int
	Height   int
	Selected *NodeItem
}

// NewNodeListModel creates a new node list model.
func NewNodeListModel(items []NodeItem) NodeListModel {
	m := NodeListModel{Items: items, Height: 15}
	m.applyFilter()
	return m
}

func (m *NodeListModel) applyFilter() {
	m.Visible = make([]int, 0, len(m.Items))
	needle := strings.ToLower(m.Filter)
	for i, it := range m.Items {
		if needle == "" ||
			strings.Contains(strings.ToLower(it.ID), needle) ||
			strings.Contains(strings.ToLower(it.Name), needle) {
			m.Visible = append(m.Visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Visible) == 0 {
				return m, nil
			}
			item := m.Items[m.Visible[m.Cursor]]
			m.Selected = &item
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.Filter = string(r[:len(r)-1])
				m.applyFilter()
			}
		case tea.KeyRunes, tea.KeySpace:
			m.Filter += string(msg.Runes)
			m.applyFilter()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Center Node"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("filter: ") + listFilterStyle.Render(m.Filter))
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matching nodes"))
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Visible) {
		end = len(m.Visible)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[m.Visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := it.Name
		if name == "" {
			name = "—"
		}
		rows = append(rows, []string{cursor, it.ID, it.Kind.Tag(), name, fmt.Sprint(it.Degree)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "Name", "Edges").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Visible) {
				return lipgloss.NewStyle()
			}
			it := m.Items[m.Visible[idx]]
			base := lipgloss.NewStyle()
			if col == 2 {
				if c, ok := kindColors[it.Kind]; ok {
					base = base.Foreground(c)
				}
			} else if col == 4 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				if col == 1 || col == 3 {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))

	return b.String()
}
