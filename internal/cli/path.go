package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
	"github.com/matzehuels/smdgraph/pkg/pipeline"
)

// queryOpts holds the output flags shared by path and expand.
type queryOpts struct {
	format  string
	output  string
	noCache bool
	refresh bool
}

func (o *queryOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format(s): text, html, svg, dot, json, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default derived from the query)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "re-render even when a cached diagram exists")
}

// pathCommand creates the path command for finding routes between two nodes.
func (c *CLI) pathCommand() *cobra.Command {
	var (
		opts  queryOpts
		paths int
		depth int
	)

	cmd := &cobra.Command{
		Use:   "path FROM TO",
		Short: "Find the shortest connections between two nodes",
		Long: `Find up to --paths simple paths of at most --depth hops between two nodes.

Negative evidence (RULES_OUT, PERTINENT_NEGATIVE) is never walked. Consecutive
symptom-to-symptom associations must share a context node; the shared context
is listed with each path. Shorter paths come first.`,
		Example: `  smdgraph path S_fever D_influenza
  smdgraph path S_fever D_influenza --paths 5 --depth 4
  smdgraph path S_fever D_influenza -f html -o flu.html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(opts.format)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			p := cfg.PathParams()
			if cmd.Flags().Changed("paths") {
				p.MaxPaths = paths
			}
			if cmd.Flags().Changed("depth") {
				p.MaxDepth = depth
			}
			if err := p.Validate(); err != nil {
				return err
			}
			return c.runPath(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], p, formats, opts)
		},
	}

	cmd.Flags().IntVarP(&paths, "paths", "p", 0, "maximum number of paths (1-20, default from config)")
	cmd.Flags().IntVar(&depth, "depth", 0, "maximum path length in hops (1-10, default from config)")
	opts.register(cmd)

	return cmd
}

func (c *CLI) runPath(ctx context.Context, out io.Writer, from, to string, p traverse.PathParams, formats []string, opts queryOpts) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	g := runner.Graph()
	for _, id := range []string{from, to} {
		if !g.HasEdges(id) {
			printWarning("%s is not in the graph or has no edges", id)
		}
	}

	prog := newProgress(logger)
	res, err := runner.Paths(ctx, from, to, p)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Found %d path(s)", len(res.Paths)))

	if formats[0] == pipeline.FormatText {
		writePathsText(out, g, res, p.MaxPaths)
		return nil
	}
	if len(res.Paths) == 0 {
		printWarning("No path found between %s and %s", from, to)
		return nil
	}
	view := pipeline.NewPathsView(g, res, p.MaxPaths)
	base := fmt.Sprintf("path_%s_to_%s", errors.SafeFilename(from), errors.SafeFilename(to))
	return c.writeArtifacts(ctx, runner, view, formats, base, opts)
}

// writeArtifacts renders view in every requested format and writes one file
// per format.
func (c *CLI) writeArtifacts(ctx context.Context, runner *pipeline.Runner, view *pipeline.View, formats []string, base string, opts queryOpts) error {
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	res, err := runner.Render(ctx, view, pipeline.RenderOptions{Formats: formats, Refresh: opts.refresh})
	spinner.Stop()
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", view.Title)
	printStats(len(view.Nodes), len(view.Edges), res.CacheHit)
	multi := len(formats) > 1
	html := ""
	for _, f := range formats {
		path := outputPath(opts.output, base, f, multi)
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		printFile(path)
		if f == pipeline.FormatHTML {
			html = path
		}
	}
	if html != "" {
		printNewline()
		printNextStep("Open in browser", html)
	}
	return nil
}
