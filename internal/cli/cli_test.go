package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/smdgraph/pkg/cache"
	"github.com/matzehuels/smdgraph/pkg/config"
	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/source/local"
	"github.com/matzehuels/smdgraph/pkg/source/mongo"
)

// isolate points config and cache lookups at empty temp dirs so tests never
// read the developer's own settings.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

// writeDataDir writes a small graph:
//
//	D_flu -HAS_SYMPTOM-> S_fever, D_flu -HAS_SYMPTOM-> S_cough,
//	M_inflammation -CAUSES-> S_fever, D_flu -RULES_OUT-> S_rash
func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"S_nodes.json": `[{"id": "S_fever", "name": "Fever"}, "S_cough", "S_rash", "S_lonely"]`,
		"M_nodes.json": `["M_inflammation"]`,
		"D_nodes.json": `[{"id": "D_flu", "name": "Influenza"}]`,
		"all_edges.json": strings.Join([]string{
			`{"from": "D_flu", "to": "S_fever", "type": "HAS_SYMPTOM"}`,
			`{"from": "D_flu", "to": "S_cough", "type": "HAS_SYMPTOM"}`,
			`{"from": "M_inflammation", "to": "S_fever", "type": "CAUSES"}`,
			`{"from": "D_flu", "to": "S_rash", "type": "RULES_OUT"}`,
			`not json`,
		}, "\n") + "\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// runCLI executes the root command and returns what it wrote to its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"", []string{"text"}, false},
		{"text", []string{"text"}, false},
		{"html", []string{"html"}, false},
		{"SVG, dot", []string{"svg", "dot"}, false},
		{"text,svg", nil, true},
		{"gif", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormats(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidFormat) {
					t.Errorf("parseFormats(%q) error = %v, want INVALID_FORMAT", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFormats(%q): %v", tt.in, err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, base, format string
		multi                bool
		want                 string
	}{
		{"", "path_a_to_b", "html", false, "path_a_to_b.html"},
		{"out.html", "ignored", "html", false, "out.html"},
		{"out.html", "ignored", "svg", true, "out.svg"},
		{"dir/out", "ignored", "png", true, "dir/out.png"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.base, tt.format, tt.multi); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %v) = %q, want %q", tt.output, tt.base, tt.format, tt.multi, got, tt.want)
		}
	}
}

func TestLoadConfigDataOverride(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	c.dataDir = "/srv/kg"
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data.Source != config.SourceFiles || cfg.Data.Dir != "/srv/kg" {
		t.Errorf("data = %+v", cfg.Data)
	}
	again, _ := c.loadConfig()
	if again != cfg {
		t.Error("loadConfig should cache the settings")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := c.loadConfig(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestNewSource(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Dir = "/data"
	if d, ok := newSource(cfg).(*local.Dir); !ok || d.Path != "/data" || d.EdgeFile != "all_edges.json" {
		t.Errorf("files source = %#v", newSource(cfg))
	}

	cfg.Data.Source = config.SourceMongo
	cfg.Data.Mongo.URI = "mongodb://localhost:27017"
	src, ok := newSource(cfg).(*mongo.Source)
	if !ok {
		t.Fatalf("mongo source = %T", newSource(cfg))
	}
	if src.Name() != "mongo:smdgraph" {
		t.Errorf("Name() = %q", src.Name())
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	c, err := newCache(ctx, cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("noCache: got %T", c)
	}

	c, err = newCache(ctx, cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*cache.FileCache); !ok || fc.Dir() != cfg.Cache.Dir {
		t.Errorf("file backend: got %T", c)
	}

	cfg.Cache.Backend = config.CacheNone
	c, _ = newCache(ctx, cfg, false)
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("none backend: got %T", c)
	}
}

func TestPathCommandText(t *testing.T) {
	isolate(t)
	dir := writeDataDir(t)

	out, err := runCLI(t, "--data", dir, "path", "S_fever", "S_cough")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	for _, want := range []string{
		"Path 1",
		"<--[HAS_SYMPTOM]--",
		"--[HAS_SYMPTOM]-->",
		"Path 1: S_fever -> D_flu -> S_cough",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPathCommandNoPath(t *testing.T) {
	isolate(t)
	dir := writeDataDir(t)

	// S_rash is only reachable through RULES_OUT, which is never walked.
	out, err := runCLI(t, "--data", dir, "path", "S_fever", "S_rash")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if !strings.Contains(out, "No path found.") {
		t.Errorf("output = %q", out)
	}
}

func TestPathCommandInvalidParameter(t *testing.T) {
	isolate(t)
	dir := writeDataDir(t)

	for _, args := range [][]string{
		{"--paths", "0"},
		{"--paths", "21"},
		{"--depth", "11"},
	} {
		all := append([]string{"--data", dir, "path", "S_fever", "D_flu"}, args...)
		if _, err := runCLI(t, all...); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("%v: error = %v, want INVALID_PARAMETER", args, err)
		}
	}
}

func TestPathCommandArtifacts(t *testing.T) {
	isolate(t)
	dir := writeDataDir(t)
	outDir := t.TempDir()
	base := filepath.Join(outDir, "flu.dot")

	if _, err := runCLI(t, "--data", dir, "path", "S_fever", "D_flu", "-f", "dot,json", "-o", base, "--no-cache"); err != nil {
		t.Fatalf("path: %v", err)
	}

	dot, err := os.ReadFile(filepath.Join(outDir, "flu.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "digraph") || !strings.Contains(string(dot), "D_flu") {
		t.Errorf("dot = %s", dot)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "flu.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("json: %v", err)
	}
}

func TestExpandCommandText(t *testing.T) {
	isolate(t)
	dir := writeDataDir(t)

	out, err := runCLI(t, "--data", dir, "expand", "D_flu", "--fanout", "5")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	for _, want := range []string{
		"[D] D_flu *",
		"[S] S_fever",
		"[S] S_cough",
		"D_flu --[HAS_SYMPTOM]--> S_fever",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "S_rash") {
		t.Errorf("negative evidence should not be expanded:\n%s", out)
	}
}

func TestExpandCommandNeedsCenter(t *testing.T) {
	if interactive() {
		t.Skip("stdin is a terminal")
	}
	isolate(t)
	dir := writeDataDir(t)

	if _, err := runCLI(t, "--data", dir, "expand"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestExpandCommandInvalidLevel(t *testing.T) {
	isolate(t)
	dir := writeDataDir(t)

	if _, err := runCLI(t, "--data", dir, "expand", "D_flu", "--level", "4"); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("error = %v, want INVALID_PARAMETER", err)
	}
}

func TestStatsCommandJSON(t *testing.T) {
	isolate(t)
	dir := writeDataDir(t)

	out, err := runCLI(t, "--data", dir, "stats", "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var got struct {
		Nodes    int            `json:"nodes"`
		Edges    int            `json:"edges"`
		Isolated int            `json:"isolated"`
		Types    map[string]int `json:"types"`
		Skipped  []any          `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Nodes != 6 || got.Edges != 4 {
		t.Errorf("nodes = %d, edges = %d", got.Nodes, got.Edges)
	}
	if got.Isolated != 1 {
		t.Errorf("isolated = %d, want 1 (S_lonely)", got.Isolated)
	}
	if got.Types["HAS_SYMPTOM"] != 2 {
		t.Errorf("types = %v", got.Types)
	}
	if len(got.Skipped) != 1 {
		t.Errorf("skipped = %v, want the malformed line", got.Skipped)
	}
}

func TestExportCommand(t *testing.T) {
	isolate(t)
	dir := writeDataDir(t)
	dest := filepath.Join(t.TempDir(), "clean")

	if _, err := runCLI(t, "--data", dir, "export", dest); err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, name := range []string{"S_nodes.json", "M_nodes.json", "D_nodes.json", "all_edges.json"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	// The exported copy loads to the same graph, minus the skipped line.
	out, err := runCLI(t, "--data", dest, "stats", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, `"skipped"`) {
		t.Errorf("exported data should load cleanly:\n%s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "smdgraph.toml")

	if _, err := runCLI(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := runCLI(t, "config", "init", path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init error = %v, want INVALID_INPUT", err)
	}
	if _, err := runCLI(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	out, err := runCLI(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"# " + path, "[data]", "[server]"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestCacheClearCommand(t *testing.T) {
	isolate(t)
	cacheRoot := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\ndir = \""+filepath.ToSlash(cacheRoot)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := cache.NewFileCache(cacheRoot)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "artifact:abc", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfgPath, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != cacheRoot {
		t.Errorf("cache path = %q, want %q", out, cacheRoot)
	}

	if _, err := runCLI(t, "--config", cfgPath, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "artifact:abc"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "version:") || !strings.Contains(out, "commit:") {
		t.Errorf("version output = %q", out)
	}
}
