package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/smdgraph/pkg/buildinfo"
	"github.com/matzehuels/smdgraph/pkg/cache"
	"github.com/matzehuels/smdgraph/pkg/config"
	"github.com/matzehuels/smdgraph/pkg/pipeline"
	"github.com/matzehuels/smdgraph/pkg/source"
	"github.com/matzehuels/smdgraph/pkg/source/local"
	"github.com/matzehuels/smdgraph/pkg/source/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "smdgraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value.
	configPath string
	// dataDir overrides data.dir (and forces the files source) when set.
	dataDir string
	cfg     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "smdgraph explores a symptom-mechanism-disease knowledge graph",
		Long: `smdgraph loads a medical knowledge graph of symptoms, mechanisms and diseases
and answers two questions about it: how are two nodes connected (path), and
what surrounds a node (expand). Results print as text or render as HTML, SVG,
PNG, PDF, DOT or JSON. The same queries are served over HTTP by "serve".`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $"+config.EnvVar+" or the user config dir)")
	root.PersistentFlags().StringVar(&c.dataDir, "data", "", "data directory with S/M/D node files and all_edges.json")

	root.AddCommand(c.pathCommand())
	root.AddCommand(c.expandCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.dbCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig loads the settings once per process. The --data flag overrides
// the data section.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := config.Resolve(c.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("config loaded", "path", path)
	}
	if c.dataDir != "" {
		cfg.Data.Source = config.SourceFiles
		cfg.Data.Dir = c.dataDir
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use and loads the graph.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	runner := pipeline.NewRunner(newSource(cfg), cc, keyer, c.Logger)
	runner.Theme = cfg.Theme()
	if cfg.Cache.TTL > 0 {
		runner.TTL = cfg.Cache.TTL
	}

	spinner := newSpinnerWithContext(ctx, "Loading graph...")
	spinner.Start()
	_, err = runner.Load(ctx)
	spinner.Stop()
	if err != nil {
		_ = runner.Close()
		return nil, err
	}
	return runner, nil
}

// newSource picks the graph source named by the data section.
func newSource(cfg *config.Config) source.Source {
	if cfg.Data.Source == config.SourceMongo {
		return mongoSource(cfg)
	}
	return &local.Dir{Path: cfg.Data.Dir, EdgeFile: cfg.Data.EdgeFile}
}

func mongoSource(cfg *config.Config) *mongo.Source {
	m := cfg.Data.Mongo
	return mongo.New(mongo.Config{
		URI:      m.URI,
		Database: m.Database,
		Nodes:    m.Nodes,
		Edges:    m.Edges,
		Timeout:  m.Timeout,
	})
}

// newCache opens the artifact cache selected by the config.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cache.DefaultRedisPrefix)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/smdgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// Text is handled by the CLI itself and may not be combined with others.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{pipeline.FormatText}, nil
	}
	formats := strings.Split(s, ",")
	for i, f := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	if len(formats) == 1 && formats[0] == pipeline.FormatText {
		return formats, nil
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// outputPath returns the file an artifact is written to. An explicit -o is
// used as the base name; its extension is replaced per format when several
// formats are requested.
func outputPath(output, base, format string, multi bool) string {
	if output == "" {
		return base + "." + format
	}
	if !multi {
		return output
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
}
