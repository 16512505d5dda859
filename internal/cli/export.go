package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/smdgraph/pkg/config"
	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/io"
)

// exportCommand creates the export command that writes the loaded graph as
// a data directory.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export DIR",
		Short: "Write the loaded graph as node and edge files",
		Long: `Write the graph to DIR as S_nodes.json, M_nodes.json, D_nodes.json and
all_edges.json. Records skipped while loading are not written, so exporting
a directory yields a cleaned copy. Combined with a MongoDB source this dumps
the database to files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			g := runner.Graph()
			if err := io.WriteCatalog(args[0], g); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "export")
			}
			printSuccess("Exported %d nodes and %d edges", g.NodeCount(), g.EdgeCount())
			printFile(args[0])
			return nil
		},
	}
}

// dbCommand creates the db command group for the MongoDB source.
func (c *CLI) dbCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the MongoDB copy of the graph",
	}
	cmd.AddCommand(c.dbImportCommand())
	return cmd
}

// dbImportCommand creates the "db import" subcommand.
func (c *CLI) dbImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import DIR",
		Short: "Replace the MongoDB collections with a data directory",
		Long: `Load the data directory DIR and replace the configured MongoDB node and
edge collections with its contents. Needs data.mongo.uri and
data.mongo.database in the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			target := mongoSource(cfg)
			if cfg.Data.Mongo.URI == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "db import needs data.mongo.uri")
			}

			cfg.Data.Source = config.SourceFiles
			cfg.Data.Dir = args[0]
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			g := runner.Graph()
			spinner := newSpinnerWithContext(ctx, "Writing to "+target.Name()+"...")
			spinner.Start()
			if err := target.Import(ctx, g); err != nil {
				spinner.Stop()
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Imported %d nodes and %d edges into %s", g.NodeCount(), g.EdgeCount(), target.Name()))
			return nil
		},
	}
}
