package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/kg"
)

// Default file names inside a data directory.
const (
	SymptomFile   = "S_nodes.json"
	MechanismFile = "M_nodes.json"
	DiseaseFile   = "D_nodes.json"
	EdgeFile      = "all_edges.json"
)

// maxLineBytes bounds a single JSONL edge record.
const maxLineBytes = 4 << 20

// NodeFiles lists the catalog files in load order with the kind each implies.
var NodeFiles = []struct {
	Name string
	Kind kg.Kind
}{
	{SymptomFile, kg.KindSymptom},
	{MechanismFile, kg.KindMechanism},
	{DiseaseFile, kg.KindDisease},
}

// LoadOptions configures [LoadDir].
type LoadOptions struct {
	// EdgeFile overrides the edge file name. Defaults to all_edges.json.
	EdgeFile string
	Logger   *log.Logger
}

// LoadDir reads the node catalogs and the edge file from dir and returns a
// frozen graph.
//
// Node catalogs are optional; a missing S_nodes.json only means symptoms get
// no display names. The edge file is required and yields a FILE_NOT_FOUND
// error when absent. A node catalog that is not a JSON array fails the load
// with INVALID_FORMAT. Individual bad records never do.
func LoadDir(dir string, opts LoadOptions) (*kg.Graph, *LoadReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	edgeFile := opts.EdgeFile
	if edgeFile == "" {
		edgeFile = EdgeFile
	}

	b := NewBuilder(dir, logger)
	for _, nf := range NodeFiles {
		path := filepath.Join(dir, nf.Name)
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			logger.Debug("node catalog not found", "path", path)
			continue
		}
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		err = ReadNodes(f, nf.Kind, nf.Name, b)
		f.Close()
		if err != nil {
			return nil, nil, err
		}
	}

	path := filepath.Join(dir, edgeFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open edge file %s", path)
	}
	defer f.Close()
	if err := ReadEdges(f, edgeFile, b); err != nil {
		return nil, nil, err
	}

	g, report := b.Finish()
	return g, report, nil
}

// ReadNodes decodes a node catalog: a JSON array whose items are either bare
// id strings or objects with "id" and optional "name". Every node gets kind.
func ReadNodes(r io.Reader, kind kg.Kind, where string, b *Builder) error {
	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode node catalog %s", where)
	}
	for i, raw := range items {
		n, err := decodeNode(raw)
		if err != nil {
			b.Skip(where, i+1, err.Error())
			continue
		}
		n.Kind = kind
		b.Node(n, where, i+1)
	}
	return nil
}

func decodeNode(raw json.RawMessage) (kg.Node, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		if id == "" {
			return kg.Node{}, kg.ErrInvalidNodeID
		}
		return kg.Node{ID: id}, nil
	}
	var obj struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return kg.Node{}, fmt.Errorf("node is neither a string nor an object")
	}
	if obj.ID == "" {
		return kg.Node{}, kg.ErrInvalidNodeID
	}
	return kg.Node{ID: obj.ID, Name: obj.Name}, nil
}

// rawEdge accepts both the compact edge format and raw extraction records
// (source/target/edge_type, context under properties).
type rawEdge struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Source     json.RawMessage `json:"source"`
	Target     json.RawMessage `json:"target"`
	Type       string          `json:"type"`
	EdgeType   string          `json:"edge_type"`
	Properties map[string]any  `json:"properties"`
	Context    any             `json:"context"`
}

// ReadEdges decodes a JSONL edge file, one record per line. Blank lines are
// ignored; lines that fail to decode, lack from/to/type, or exceed
// maxLineBytes are skipped. Only a read error fails the file.
func ReadEdges(r io.Reader, where string, b *Builder) error {
	br := bufio.NewReaderSize(r, 64*1024)
	line := 0
	for {
		data, tooLong, err := readLine(br)
		if err == io.EOF && data == nil && !tooLong {
			return nil
		}
		if err != nil && err != io.EOF {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s at line %d", where, line+1)
		}
		line++

		switch text := bytes.TrimSpace(data); {
		case tooLong:
			b.Skip(where, line, fmt.Sprintf("line longer than %d bytes", maxLineBytes))
		case len(text) == 0:
		default:
			if e, derr := DecodeEdge(text); derr != nil {
				b.Skip(where, line, derr.Error())
			} else {
				b.Edge(e, where, line)
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

// readLine returns the next line without its newline. A line over
// maxLineBytes is consumed and reported as tooLong with no data. At end of
// input it returns io.EOF, together with the final unterminated line if any.
func readLine(br *bufio.Reader) (data []byte, tooLong bool, err error) {
	for {
		chunk, rerr := br.ReadSlice('\n')
		if !tooLong {
			if len(data)+len(chunk) > maxLineBytes+1 {
				tooLong, data = true, nil
			} else {
				data = append(data, chunk...)
			}
		}
		switch rerr {
		case bufio.ErrBufferFull:
			continue
		case nil:
			return bytes.TrimSuffix(data, []byte("\n")), tooLong, nil
		default:
			return data, tooLong, rerr
		}
	}
}

// DecodeEdge parses one edge record.
func DecodeEdge(data []byte) (kg.Edge, error) {
	var r rawEdge
	if err := json.Unmarshal(data, &r); err != nil {
		return kg.Edge{}, fmt.Errorf("malformed JSON: %w", err)
	}
	e := kg.Edge{
		From: firstNonEmpty(r.From, endpoint(r.Source)),
		To:   firstNonEmpty(r.To, endpoint(r.Target)),
		Type: kg.EdgeType(firstNonEmpty(r.Type, r.EdgeType)),
	}
	if e.From == "" || e.To == "" || e.Type == "" {
		return kg.Edge{}, kg.ErrMissingField
	}

	ctx := r.Context
	if ctx == nil && r.Properties != nil {
		ctx = r.Properties["context"]
	}
	e.Context = ParseAnchors(ctx)

	if len(r.Properties) > 0 {
		e.Properties = make(kg.Metadata, len(r.Properties))
		for k, v := range r.Properties {
			if k != "context" {
				e.Properties[k] = v
			}
		}
		if len(e.Properties) == 0 {
			e.Properties = nil
		}
	}
	return e, nil
}

// ParseAnchors normalizes a decoded context value: a bare id string, an
// object with "id" and "name", or an array mixing both. Entries without an id
// are dropped.
func ParseAnchors(v any) []kg.Anchor {
	switch c := v.(type) {
	case string:
		if c == "" {
			return nil
		}
		return []kg.Anchor{{ID: c}}
	case map[string]any:
		id, _ := c["id"].(string)
		if id == "" {
			return nil
		}
		name, _ := c["name"].(string)
		return []kg.Anchor{{ID: id, Name: name}}
	case []any:
		var out []kg.Anchor
		for _, item := range c {
			out = append(out, ParseAnchors(item)...)
		}
		return out
	default:
		return nil
	}
}

func endpoint(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
