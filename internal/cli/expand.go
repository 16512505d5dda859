package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
	"github.com/matzehuels/smdgraph/pkg/pipeline"
)

// expandCommand creates the expand command for drawing a node's neighborhood.
func (c *CLI) expandCommand() *cobra.Command {
	var (
		opts    queryOpts
		level   int
		fanout  int
		closure bool
	)

	cmd := &cobra.Command{
		Use:   "expand [CENTER]",
		Short: "Show the neighborhood of a node",
		Long: `Grow a bounded subgraph around CENTER, one level at a time.

Each level follows at most --fanout edges per node, picked round-robin across
edge types so no single relation crowds out the rest. Symptom-to-symptom
associations are kept only when their context node is part of the subgraph.
With --closure, every stored edge between discovered nodes is added at the end.

Without CENTER on an interactive terminal, a node picker opens.`,
		Example: `  smdgraph expand D_influenza
  smdgraph expand D_influenza --level 2 --fanout 5 -f html
  smdgraph expand`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(opts.format)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			p := cfg.ExpandParams()
			if cmd.Flags().Changed("level") {
				p.Level = level
			}
			if cmd.Flags().Changed("fanout") {
				p.MaxFanout = fanout
			}
			if cmd.Flags().Changed("closure") {
				p.Closure = closure
			}
			if err := p.Validate(); err != nil {
				return err
			}
			center := ""
			if len(args) == 1 {
				center = args[0]
			}
			return c.runExpand(cmd.Context(), cmd.OutOrStdout(), center, p, formats, opts)
		},
	}

	cmd.Flags().IntVarP(&level, "level", "l", 0, "expansion depth (1-3, default from config)")
	cmd.Flags().IntVarP(&fanout, "fanout", "e", 0, "edges followed per node and level (1-10, default from config)")
	cmd.Flags().BoolVar(&closure, "closure", false, "add every edge between discovered nodes")
	opts.register(cmd)

	return cmd
}

func (c *CLI) runExpand(ctx context.Context, out io.Writer, center string, p traverse.ExpandParams, formats []string, opts queryOpts) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	g := runner.Graph()

	if center == "" {
		if !interactive() {
			return errors.New(errors.ErrCodeInvalidInput, "expand needs a CENTER node id")
		}
		center, err = pickNode(g)
		if err != nil {
			return err
		}
		if center == "" {
			return nil
		}
	}

	if _, ok := g.Node(center); !ok {
		printWarning("%s is not in the node catalog; proceeding anyway", center)
	}
	if !g.HasEdges(center) {
		printWarning("%s has no edges in the graph", center)
		return nil
	}

	prog := newProgress(logger)
	sub, err := runner.Expand(ctx, center, p)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Expanded to %d nodes, %d edges", len(sub.Nodes), len(sub.Edges)))

	if formats[0] == pipeline.FormatText {
		writeExpandText(out, g, sub)
		return nil
	}
	view := pipeline.NewSubgraphView(g, sub, p)
	return c.writeArtifacts(ctx, runner, view, formats, errors.SafeFilename(center)+"_graph", opts)
}

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pickNode runs the node picker and returns the chosen id, or "" when the
// user quit without choosing.
func pickNode(g *kg.Graph) (string, error) {
	model := NewNodeListModel(nodeItems(g))
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "node picker")
	}
	m := final.(NodeListModel)
	if m.Selected == nil {
		return "", nil
	}
	return m.Selected.ID, nil
}
