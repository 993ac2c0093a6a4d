package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thoughttree/pkg/cache"
	"github.com/matzehuels/thoughttree/pkg/config"
	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/view"
)

const sampleTree = `{
  "mode": "tot",
  "move": 4,
  "reasoning": "center",
  "tree": {
    "thought": "start",
    "children": [
      {"thought": "go left", "children": [{"thought": "deeper"}]},
      {"thought": "go right", "score": 0.82}
    ]
  }
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "move.json")
	if err := os.WriteFile(path, []byte(sampleTree), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// isolate points config and cache lookups at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"layout", "render", "view", "fetch", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestLayoutCommand(t *testing.T) {
	isolate(t)
	input := writeSample(t)
	out := filepath.Join(filepath.Dir(input), "scene.json")

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"layout", input, "-o", out, "--collapse", "0-0"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"collapsed": [`) || !strings.Contains(string(data), `"go right (82%)"`) {
		t.Errorf("unexpected scene JSON:\n%s", data)
	}
}

func TestRenderCommand(t *testing.T) {
	isolate(t)
	input := writeSample(t)

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"render", input, "-f", "svg,dot,json", "--max-depth", "1", "--no-cache"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}

	base := strings.TrimSuffix(input, ".json")
	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(svg), "deeper") {
		t.Error("node below the depth cutoff was rendered")
	}
	if _, err := os.Stat(base + ".dot"); err != nil {
		t.Error(err)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	isolate(t)
	input := writeSample(t)

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"render", input, "-f", "gif"})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestServeRejectsSweepInterval(t *testing.T) {
	isolate(t)
	for _, interval := range []string{"0", "-1m"} {
		root := New(&bytes.Buffer{}, LogInfo).RootCommand()
		root.SetArgs([]string{"serve", "--sweep-interval=" + interval})
		root.SetErr(&bytes.Buffer{})
		err := root.ExecuteContext(context.Background())
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("--sweep-interval %s: got %v, want %s", interval, err, errors.ErrCodeInvalidConfig)
		}
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range completionShells {
		var out bytes.Buffer
		root := New(&bytes.Buffer{}, LogInfo).RootCommand()
		root.SetOut(&out)
		root.SetArgs([]string{"completion", shell})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out.String(), appName) {
			t.Errorf("completion %s: script does not mention %s", shell, appName)
		}
	}
}

func TestFlagValueCompletion(t *testing.T) {
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{cobra.ShellCompNoDescRequestCmd, "serve", "--tree-store", ""})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{config.StoreMemory, config.StoreFile, config.StoreMongo} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("--tree-store completions missing %q:\n%s", want, out.String())
		}
	}
}

func TestNewCache(t *testing.T) {
	dir := isolate(t)
	c := New(&bytes.Buffer{}, LogInfo)
	cfg := config.Default()

	store, err := c.newCache(context.Background(), cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cache", appName)); err != nil {
		t.Errorf("file cache not created under XDG_CACHE_HOME: %v", err)
	}

	null, err := c.newCache(context.Background(), cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := null.Get(context.Background(), "k"); ok {
		t.Error("--no-cache should never hit")
	}
	if reason, off := cache.DisabledReason(null); !off || reason != "--no-cache" {
		t.Errorf("DisabledReason = %q, %v", reason, off)
	}

	cfg.Cache.Enabled = false
	off, err := c.newCache(context.Background(), cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if reason, _ := cache.DisabledReason(off); reason != "disabled in config" {
		t.Errorf("DisabledReason = %q", reason)
	}
}

func TestClearCache(t *testing.T) {
	isolate(t)
	cfg := config.Default()
	c := New(&bytes.Buffer{}, LogInfo)

	// Nothing cached yet.
	if err := clearCache(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}

	store, err := c.newCache(context.Background(), cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if err := store.Set(context.Background(), k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := clearCache(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(context.Background(), "a"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestOpenStoresFromConfig(t *testing.T) {
	dir := isolate(t)
	c := New(&bytes.Buffer{}, LogInfo)
	cfg := config.Default()
	cfg.Server.SessionStore = config.StoreFile
	cfg.Server.TreeStore = config.StoreFile

	sessions, err := c.openSessionStore(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer sessions.Close()
	trees, err := c.openTreeStore(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer trees.Close()

	for _, sub := range []string{"sessions", "trees"} {
		if _, err := os.Stat(filepath.Join(dir, "data", appName, sub)); err != nil {
			t.Errorf("%s store dir missing: %v", sub, err)
		}
	}
}

func TestRenderHint(t *testing.T) {
	tests := []struct {
		name string
		st   view.State
		want string
	}{
		{"default", view.State{MaxDepth: -1}, "thoughttree render t.json"},
		{"depth", view.State{MaxDepth: 2}, "thoughttree render t.json --max-depth 2"},
		{"collapsed", view.State{MaxDepth: -1, Collapsed: []tree.Identity{"0-0", "0-1"}}, "thoughttree render t.json --collapse 0-0,0-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderHint("t.json", tt.st); got != tt.want {
				t.Errorf("renderHint() = %q, want %q", got, tt.want)
			}
		})
	}
}
