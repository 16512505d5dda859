// Package source defines where a graph comes from.
//
// A [Source] produces a frozen graph plus a load report. Two implementations
// exist: [local.Dir] reads the JSON catalog layout from a directory, and
// [mongo.Source] reads node and edge collections from MongoDB.
//
// [local.Dir]: github.com/matzehuels/smdgraph/pkg/source/local
// [mongo.Source]: github.com/matzehuels/smdgraph/pkg/source/mongo
package source

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
)

// Source loads a graph.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Load reads the whole graph. The returned graph is frozen. Malformed
	// records are skipped and listed in the report; only failures to reach
	// or parse the source as a whole are errors.
	Load(ctx context.Context, logger *log.Logger) (*kg.Graph, *io.LoadReport, error)
}
