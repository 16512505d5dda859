package io

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smdgraph/pkg/kg"
)

// Skipped describes one record a loader dropped.
type Skipped struct {
	Source string `json:"source"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`
}

func (s Skipped) String() string {
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", s.Source, s.Line, s.Reason)
	}
	return fmt.Sprintf("%s: %s", s.Source, s.Reason)
}

// LoadReport summarizes a load. Skipped records never fail a load; they are
// logged and listed here.
type LoadReport struct {
	Source       string    `json:"source"`
	Nodes        int       `json:"nodes"`
	Edges        int       `json:"edges"`
	UnknownTypes int       `json:"unknown_types,omitempty"`
	Skipped      []Skipped `json:"skipped,omitempty"`
}

// Builder assembles a graph from records of any origin, skipping the ones
// the graph rejects. File and database loaders share it.
type Builder struct {
	g      *kg.Graph
	report *LoadReport
	logger *log.Logger
}

// NewBuilder starts a graph for the named source. A nil logger uses
// log.Default().
func NewBuilder(source string, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		g:      kg.New(),
		report: &LoadReport{Source: source},
		logger: logger,
	}
}

// Node adds a catalog entry. where and line locate the record for the report.
func (b *Builder) Node(n kg.Node, where string, line int) {
	if err := b.g.AddNode(n); err != nil {
		if errors.Is(err, kg.ErrDuplicateNodeID) {
			b.Skip(where, line, "duplicate node "+n.ID)
			return
		}
		b.Skip(where, line, err.Error())
		return
	}
	b.report.Nodes++
}

// Edge adds an edge record.
func (b *Builder) Edge(e kg.Edge, where string, line int) {
	if err := b.g.AddEdge(e); err != nil {
		b.Skip(where, line, err.Error())
		return
	}
	if !e.Type.Known() {
		b.report.UnknownTypes++
		b.logger.Debug("unknown edge type", "type", e.Type, "from", e.From, "to", e.To)
	}
	b.report.Edges++
}

// Skip records a dropped record and logs it as a warning.
func (b *Builder) Skip(where string, line int, reason string) {
	s := Skipped{Source: where, Line: line, Reason: reason}
	b.report.Skipped = append(b.report.Skipped, s)
	b.logger.Warn("skipping record", "at", s.Source, "line", s.Line, "reason", reason)
}

// Finish freezes the graph and returns it with the report. The Builder must
// not be used afterwards.
func (b *Builder) Finish() (*kg.Graph, *LoadReport) {
	b.g.Freeze()
	return b.g, b.report
}
