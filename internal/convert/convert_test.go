package convert_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"hearth/internal/config"
	"hearth/internal/convert"
	"hearth/internal/logging"
	"hearth/internal/services"
)

var (
	pngBytes  = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x00}, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x11}, 32)...)
)

func writeZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture zip: %v", err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %q: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close fixture zip: %v", err)
	}
}

func readCbz(t *testing.T, path string) map[string][]byte {
	t.Helper()
	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open cbz: %v", err)
	}
	defer reader.Close()

	entries := map[string][]byte{}
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %q: %v", f.Name, err)
		}
		entries[f.Name] = data
	}
	return entries
}

func newConverter(t *testing.T) (*convert.Converter, *config.Config) {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Convert.SourceDir = filepath.Join(base, "zip")
	cfg.Convert.OutputDir = filepath.Join(base, "cbz")
	if err := os.MkdirAll(cfg.Convert.SourceDir, 0o755); err != nil {
		t.Fatalf("create source dir: %v", err)
	}
	return convert.New(&cfg, logging.NewNop()), &cfg
}

func TestConvertFileRenumbersImagePages(t *testing.T) {
	converter, cfg := newConverter(t)
	src := filepath.Join(cfg.Convert.SourceDir, "volume1.zip")
	writeZip(t, src, map[string][]byte{
		"scans/page2.png": pngBytes,
		"scans/page1.jpg": jpegBytes,
		"notes.txt":       []byte("not a page"),
	})

	result := converter.ConvertFile(context.Background(), src)
	if result.Err != nil {
		t.Fatalf("ConvertFile returned error: %v", result.Err)
	}
	if result.Status != convert.StatusConverted {
		t.Fatalf("Status = %q, want converted", result.Status)
	}
	if result.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", result.Pages)
	}

	if filepath.Base(result.Output) != "scans.cbz" {
		t.Fatalf("output should be named after the page directory, got %q", filepath.Base(result.Output))
	}

	entries := readCbz(t, result.Output)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", keys(entries))
	}
	if !bytes.Equal(entries["001.jpg"], jpegBytes) {
		t.Fatalf("001.jpg content mismatch, have entries %v", keys(entries))
	}
	if !bytes.Equal(entries["002.png"], pngBytes) {
		t.Fatalf("002.png content mismatch, have entries %v", keys(entries))
	}
}

func TestConvertFileNamesFlatArchiveAfterItself(t *testing.T) {
	converter, cfg := newConverter(t)
	src := filepath.Join(cfg.Convert.SourceDir, "第1巻.zip")
	writeZip(t, src, map[string][]byte{
		"p1.jpg": jpegBytes,
		"p2.png": pngBytes,
	})

	result := converter.ConvertFile(context.Background(), src)
	if result.Err != nil {
		t.Fatalf("ConvertFile returned error: %v", result.Err)
	}
	if filepath.Base(result.Output) != "第1巻.cbz" {
		t.Fatalf("output name = %q", filepath.Base(result.Output))
	}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestConvertFileSanitizesOutputName(t *testing.T) {
	converter, cfg := newConverter(t)
	src := filepath.Join(cfg.Convert.SourceDir, "vol 1: special.zip")
	writeZip(t, src, map[string][]byte{"p1.png": pngBytes})

	result := converter.ConvertFile(context.Background(), src)
	if result.Err != nil {
		t.Fatalf("ConvertFile returned error: %v", result.Err)
	}
	if filepath.Base(result.Output) != "vol 1- special.cbz" {
		t.Fatalf("output name = %q", filepath.Base(result.Output))
	}
	if _, err := os.Stat(result.Output); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestConvertFileSkipsExistingOutput(t *testing.T) {
	converter, cfg := newConverter(t)
	src := filepath.Join(cfg.Convert.SourceDir, "volume1.zip")
	writeZip(t, src, map[string][]byte{"p1.png": pngBytes})

	if err := os.MkdirAll(cfg.Convert.OutputDir, 0o755); err != nil {
		t.Fatalf("create output dir: %v", err)
	}
	existing := filepath.Join(cfg.Convert.OutputDir, "volume1.cbz")
	if err := os.WriteFile(existing, []byte("already here"), 0o644); err != nil {
		t.Fatalf("write existing output: %v", err)
	}

	result := converter.ConvertFile(context.Background(), src)
	if result.Status != convert.StatusSkipped {
		t.Fatalf("Status = %q, want skipped", result.Status)
	}
	data, err := os.ReadFile(existing)
	if err != nil || string(data) != "already here" {
		t.Fatalf("existing output should be untouched: %q err=%v", data, err)
	}
}

func TestConvertFileRejectsArchiveWithoutImages(t *testing.T) {
	converter, cfg := newConverter(t)
	src := filepath.Join(cfg.Convert.SourceDir, "textonly.zip")
	writeZip(t, src, map[string][]byte{"readme.txt": []byte("words")})

	result := converter.ConvertFile(context.Background(), src)
	if result.Status != convert.StatusFailed {
		t.Fatalf("Status = %q, want failed", result.Status)
	}
	if !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", result.Err)
	}
	if result.Output != "" {
		t.Fatalf("no output should be chosen, got %q", result.Output)
	}
	entries, err := os.ReadDir(cfg.Convert.OutputDir)
	if err == nil && len(entries) != 0 {
		t.Fatalf("output dir should stay empty, got %d entries", len(entries))
	}
}

func TestConvertDirProcessesAllZips(t *testing.T) {
	converter, cfg := newConverter(t)
	writeZip(t, filepath.Join(cfg.Convert.SourceDir, "a.zip"), map[string][]byte{"p1.png": pngBytes})
	writeZip(t, filepath.Join(cfg.Convert.SourceDir, "b.zip"), map[string][]byte{"p1.jpg": jpegBytes})
	if err := os.WriteFile(filepath.Join(cfg.Convert.SourceDir, "ignore.rar"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write extra file: %v", err)
	}

	results, err := converter.ConvertDir(context.Background())
	if err != nil {
		t.Fatalf("ConvertDir returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, result := range results {
		if result.Status != convert.StatusConverted {
			t.Fatalf("result %q status = %q", result.Source, result.Status)
		}
		if _, err := os.Stat(result.Output); err != nil {
			t.Fatalf("output missing for %q: %v", result.Source, err)
		}
	}
}

func TestConvertDirRequiresSourceDir(t *testing.T) {
	cfg := config.Default()
	cfg.Convert.SourceDir = filepath.Join(t.TempDir(), "absent")
	cfg.Convert.OutputDir = t.TempDir()
	converter := convert.New(&cfg, logging.NewNop())

	_, err := converter.ConvertDir(context.Background())
	if err == nil {
		t.Fatal("expected error for missing source dir")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
