package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/threatstage/internal/config"
	"github.com/ppiankov/threatstage/internal/gateway"
)

func TestReadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attack.sh")
	if err := os.WriteFile(path, []byte("  echo simulated scan  \n"), 0600); err != nil {
		t.Fatal(err)
	}

	script, err := readScript(path)
	if err != nil {
		t.Fatalf("readScript: %v", err)
	}
	if script != "echo simulated scan" {
		t.Errorf("script = %q", script)
	}
}

func TestReadScriptEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sh")
	if err := os.WriteFile(path, []byte("   \n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := readScript(path); err == nil {
		t.Fatal("expected error for empty script")
	}
}

func TestReadScriptMissingFile(t *testing.T) {
	if _, err := readScript(filepath.Join(t.TempDir(), "absent.sh")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildAnalyzerWithoutFallback(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, ok := buildAnalyzer(cfg).(*gateway.Client); !ok {
		t.Error("expected a plain client when no fallback is configured")
	}
}

func TestBuildAnalyzerWithFallback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fallback.APIURL = "https://fallback.example.com/v1"
	cfg.Fallback.Model = "small-model"
	if _, ok := buildAnalyzer(cfg).(*gateway.Chain); !ok {
		t.Error("expected a fallback chain when a secondary backend is configured")
	}
}
