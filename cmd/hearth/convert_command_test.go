package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConvertCommandConvertsAndSkips(t *testing.T) {
	env := setupCLITestEnv(t)

	writeZip(t, filepath.Join(env.cfg.Convert.SourceDir, "scans.zip"), map[string][]byte{
		"scans/p2.png": testPNG,
		"scans/p1.png": testPNG,
	})
	brokenPath := filepath.Join(env.cfg.Convert.SourceDir, "broken.zip")
	if err := os.WriteFile(brokenPath, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write broken zip: %v", err)
	}

	out, _, err := runCLI(t, []string{"convert"}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Converted scans.zip -> scans.cbz (2 pages)")
	requireContains(t, out, "Failed broken.zip")
	requireContains(t, out, "1 converted, 0 skipped, 1 failed")
	if _, err := os.Stat(filepath.Join(env.cfg.Convert.OutputDir, "scans.cbz")); err != nil {
		t.Fatalf("expected cbz output: %v", err)
	}

	out, _, err = runCLI(t, []string{"convert"}, env.configPath)
	if err != nil {
		t.Fatalf("second convert: %v", err)
	}
	requireContains(t, out, "Skipped scans.zip: output already exists")
	requireContains(t, out, "0 converted, 1 skipped, 1 failed")
}

func TestConvertCommandEmptySource(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.cfg.Convert.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}

	out, _, err := runCLI(t, []string{"convert"}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "No zip archives found")
}

func TestConvertCommandMissingSourceDir(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"convert"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "source directory") {
		t.Fatalf("expected source directory error, got %v", err)
	}
}
