// Package mongo loads and stores graphs in MongoDB.
//
// Nodes and edges live in two collections of the same database:
//
//	nodes: {id: "S_fever", name: "Fever", kind: "S"}
//	edges: {from: "S_a", to: "S_b", type: "ASSOCIATED_WITH",
//	        context: [{id: "D_x", name: "..."}], properties: {...}}
//
// kind is optional and falls back to the id prefix. context accepts the same
// shapes as the JSONL files: one document, an array, or bare id strings.
// Edges are read in _id order so expansion stays deterministic across loads.
package mongo

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/io"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/source"
)

// Defaults applied by [New].
const (
	DefaultNodes   = "nodes"
	DefaultEdges   = "edges"
	DefaultTimeout = 10 * time.Second
)

// Config locates the collections.
type Config struct {
	URI      string
	Database string
	Nodes    string
	Edges    string
	Timeout  time.Duration
}

// Source is a [source.Source] backed by MongoDB. Each Load opens and closes
// its own client.
type Source struct {
	cfg Config
}

// New returns a source for cfg with defaults filled in.
func New(cfg Config) *Source {
	if cfg.Nodes == "" {
		cfg.Nodes = DefaultNodes
	}
	if cfg.Edges == "" {
		cfg.Edges = DefaultEdges
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Source{cfg: cfg}
}

// Name returns "mongo:<database>".
func (s *Source) Name() string { return "mongo:" + s.cfg.Database }

type nodeDoc struct {
	ID   string `bson:"id"`
	Name string `bson:"name,omitempty"`
	Kind string `bson:"kind,omitempty"`
}

type edgeDoc struct {
	From       string        `bson:"from"`
	To         string        `bson:"to"`
	Type       string        `bson:"type"`
	Properties bson.M        `bson:"properties,omitempty"`
	Context    bson.RawValue `bson:"context,omitempty"`
}

// Load reads both collections.
func (s *Source) Load(ctx context.Context, logger *log.Logger) (*kg.Graph, *io.LoadReport, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer client.Disconnect(context.WithoutCancel(ctx))

	db := client.Database(s.cfg.Database)
	b := io.NewBuilder(s.Name(), logger)

	if err := s.readNodes(ctx, db.Collection(s.cfg.Nodes), b); err != nil {
		return nil, nil, err
	}
	if err := s.readEdges(ctx, db.Collection(s.cfg.Edges), b); err != nil {
		return nil, nil, err
	}
	g, report := b.Finish()
	return g, report, nil
}

func (s *Source) readNodes(ctx context.Context, coll *mongo.Collection, b *io.Builder) error {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "query %s", coll.Name())
	}
	defer cur.Close(ctx)

	where := s.cfg.Database + "." + coll.Name()
	for i := 1; cur.Next(ctx); i++ {
		var doc nodeDoc
		if err := cur.Decode(&doc); err != nil {
			b.Skip(where, i, err.Error())
			continue
		}
		b.Node(toNode(doc), where, i)
	}
	if err := cur.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "read %s", coll.Name())
	}
	return nil
}

func (s *Source) readEdges(ctx context.Context, coll *mongo.Collection, b *io.Builder) error {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "query %s", coll.Name())
	}
	defer cur.Close(ctx)

	where := s.cfg.Database + "." + coll.Name()
	for i := 1; cur.Next(ctx); i++ {
		var doc edgeDoc
		if err := cur.Decode(&doc); err != nil {
			b.Skip(where, i, err.Error())
			continue
		}
		e, err := toEdge(doc)
		if err != nil {
			b.Skip(where, i, err.Error())
			continue
		}
		b.Edge(e, where, i)
	}
	if err := cur.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "read %s", coll.Name())
	}
	return nil
}

// Import replaces both collections with the contents of g.
func (s *Source) Import(ctx context.Context, g *kg.Graph) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.WithoutCancel(ctx))
	db := client.Database(s.cfg.Database)

	nodes := make([]any, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes = append(nodes, nodeDoc{ID: n.ID, Name: n.Name, Kind: n.Kind.Tag()})
	}
	edges := make([]any, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edges = append(edges, fromEdge(e))
	}

	for name, docs := range map[string][]any{s.cfg.Nodes: nodes, s.cfg.Edges: edges} {
		coll := db.Collection(name)
		if err := coll.Drop(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "drop %s", name)
		}
		if len(docs) == 0 {
			continue
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "insert into %s", name)
		}
	}
	return nil
}

func (s *Source) connect(ctx context.Context) (*mongo.Client, error) {
	if s.cfg.URI == "" || s.cfg.Database == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo source needs a uri and a database")
	}
	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetServerSelectionTimeout(s.cfg.Timeout).
		SetConnectTimeout(s.cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "mongo client")
	}
	err = errors.RetryWithBackoff(ctx, func() error {
		err := client.Ping(ctx, readpref.Primary())
		var ne net.Error
		if stderrors.As(err, &ne) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
			return errors.Retryable(err)
		}
		return err
	})
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return client, nil
}

func toNode(doc nodeDoc) kg.Node {
	return kg.Node{ID: doc.ID, Name: doc.Name, Kind: kg.ParseKind(doc.Kind)}
}

func toEdge(doc edgeDoc) (kg.Edge, error) {
	e := kg.Edge{From: doc.From, To: doc.To, Type: kg.EdgeType(doc.Type)}
	if e.From == "" || e.To == "" || e.Type == "" {
		return kg.Edge{}, kg.ErrMissingField
	}
	if len(doc.Context.Value) > 0 {
		var v any
		if err := doc.Context.Unmarshal(&v); err != nil {
			return kg.Edge{}, fmt.Errorf("decode context: %w", err)
		}
		e.Context = io.ParseAnchors(plain(v))
	}
	if len(doc.Properties) > 0 {
		e.Properties = plain(doc.Properties).(map[string]any)
	}
	return e, nil
}

type edgeOut struct {
	From       string      `bson:"from"`
	To         string      `bson:"to"`
	Type       string      `bson:"type"`
	Properties kg.Metadata `bson:"properties,omitempty"`
	Context    []kg.Anchor `bson:"context,omitempty"`
}

func fromEdge(e *kg.Edge) edgeOut {
	return edgeOut{From: e.From, To: e.To, Type: string(e.Type), Properties: e.Properties, Context: e.Context}
}

// plain converts BSON container types into the map/slice shapes
// encoding/json produces.
func plain(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := make(map[string]any, len(t))
		for _, el := range t {
			m[el.Key] = plain(el.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	default:
		return v
	}
}

var _ source.Source = (*Source)(nil)
