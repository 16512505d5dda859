// Package local loads graphs from a data directory on disk.
package local

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/source"
)

// Dir is a [source.Source] backed by a directory in the layout described in
// package io.
type Dir struct {
	Path     string
	EdgeFile string
}

// New returns a source for dir.
func New(dir string) *Dir { return &Dir{Path: dir} }

// Name returns the directory path.
func (d *Dir) Name() string { return d.Path }

// Load reads the directory. The context is checked once before reading;
// file reads themselves are not interruptible.
func (d *Dir) Load(ctx context.Context, logger *log.Logger) (*kg.Graph, *io.LoadReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return io.LoadDir(d.Path, io.LoadOptions{EdgeFile: d.EdgeFile, Logger: logger})
}

var _ source.Source = (*Dir)(nil)
