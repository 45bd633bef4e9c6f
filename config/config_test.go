package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, `
listen: ":9000"
boards:
  api_token: tok-123
  deals_id: "111"
  work_orders_id: "222"
cache:
  freshness: 2m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9000" {
		t.Fatalf("listen: got %q", cfg.Listen)
	}
	if cfg.Boards.DealsID != "111" || cfg.Boards.WorkID != "222" {
		t.Fatalf("board ids: got %q / %q", cfg.Boards.DealsID, cfg.Boards.WorkID)
	}
	if cfg.Cache.Freshness != 2*time.Minute {
		t.Fatalf("freshness: got %v", cfg.Cache.Freshness)
	}
	// Defaults fill the rest.
	if cfg.Boards.APIURL == "" || cfg.Gemini.Model == "" {
		t.Fatal("defaults not applied")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, `
boards:
  api_token: from-file
  deals_id: "111"
  work_orders_id: "222"
`)
	t.Setenv("BOARD_API_TOKEN", "from-env")
	t.Setenv("CACHE_FRESHNESS", "90s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Boards.APIToken != "from-env" {
		t.Fatalf("token: got %q, want env value", cfg.Boards.APIToken)
	}
	if cfg.Cache.Freshness != 90*time.Second {
		t.Fatalf("freshness: got %v", cfg.Cache.Freshness)
	}
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("BOARD_API_TOKEN", "")
	t.Setenv("DEALS_BOARD_ID", "1")
	t.Setenv("WO_BOARD_ID", "2")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for explicit missing file")
	}
}
