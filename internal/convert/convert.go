// Package convert repacks zip archives of scanned comic pages into cbz
// files. Pages are sniffed by content, renumbered into a stable order, and
// written flat into the output archive, so reader apps page through them
// correctly regardless of how the source archive was laid out.
package convert

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/flate"

	"hearth/internal/config"
	"hearth/internal/fileutil"
	"hearth/internal/logging"
	"hearth/internal/services"
	"hearth/internal/textutil"
)

// Status summarizes the outcome for one archive.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FileResult describes what happened to one source archive.
type FileResult struct {
	Source string
	Output string
	Status Status
	Pages  int
	Err    error
}

// Converter turns zip archives into cbz files.
type Converter struct {
	sourceDir string
	outputDir string
	logger    *slog.Logger
}

// New builds a converter from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Converter {
	return &Converter{
		sourceDir: cfg.Convert.SourceDir,
		outputDir: cfg.Convert.OutputDir,
		logger:    logging.NewComponentLogger(logger, "convert"),
	}
}

// ConvertDir converts every zip archive in the source directory. Archives
// are processed independently; one bad archive does not stop the rest.
func (c *Converter) ConvertDir(ctx context.Context) ([]FileResult, error) {
	entries, err := os.ReadDir(c.sourceDir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "convert", "source directory", c.sourceDir, err)
	}

	var results []FileResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.ConvertFile(ctx, filepath.Join(c.sourceDir, entry.Name())))
	}
	return results, nil
}

// ConvertFile repacks one archive. The output is named after the directory
// holding the pages, or after the archive itself when pages sit at the
// root. An archive whose output already exists is skipped.
func (c *Converter) ConvertFile(ctx context.Context, srcPath string) FileResult {
	result := FileResult{Source: srcPath}

	pages, err := readPages(ctx, srcPath)
	if err != nil {
		return result.fail(err)
	}
	if len(pages) == 0 {
		return result.fail(services.Wrap(services.ErrValidation, "convert", "read archive", srcPath+" has no image entries", nil))
	}

	result.Output = filepath.Join(c.outputDir, textutil.SanitizeFileName(archiveTitle(srcPath, pages))+".cbz")
	if _, err := os.Stat(result.Output); err == nil {
		result.Status = StatusSkipped
		c.logger.Info("output already exists, skipping", "output", result.Output)
		return result
	}

	if err := fileutil.EnsureDir(c.outputDir); err != nil {
		return result.fail(services.Wrap(services.ErrTransient, "convert", "output directory", "", err))
	}
	if err := writeArchive(result.Output, pages); err != nil {
		return result.fail(err)
	}

	result.Status = StatusConverted
	result.Pages = len(pages)
	c.logger.Info("archive converted",
		"source", filepath.Base(srcPath),
		"output", filepath.Base(result.Output),
		"pages", result.Pages)
	return result
}

func (r FileResult) fail(err error) FileResult {
	r.Status = StatusFailed
	r.Err = err
	return r
}

// page is one image entry pulled out of the source archive.
type page struct {
	name string
	ext  string
	data []byte
}

// archiveTitle derives the cbz name from the directory holding the first
// page, falling back to the archive name for flat archives.
func archiveTitle(srcPath string, pages []page) string {
	if dir := path.Dir(pages[0].name); dir != "." && dir != "/" {
		return path.Base(dir)
	}
	return strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
}

// readPages extracts the image entries of the archive in name order.
// Non-image entries are ignored. Entry names only decide ordering and the
// output title; they are never used as filesystem paths.
func readPages(ctx context.Context, srcPath string) ([]page, error) {
	reader, err := zip.OpenReader(srcPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "convert", "open archive", srcPath, err)
	}
	defer reader.Close()

	files := make([]*zip.File, 0, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var pages []page
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "convert", "read entry", f.Name, err)
		}
		mime := mimetype.Detect(data)
		if !strings.HasPrefix(mime.String(), "image/") {
			continue
		}
		ext := mime.Extension()
		if ext == "" {
			ext = strings.ToLower(filepath.Ext(f.Name))
		}
		pages = append(pages, page{name: f.Name, ext: ext, data: data})
	}
	return pages, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// writeArchive stages the cbz next to its final location and moves it into
// place once fully written.
func writeArchive(outPath string, pages []page) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".cbz-*")
	if err != nil {
		return services.Wrap(services.ErrTransient, "convert", "create temp archive", "", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	zw := zip.NewWriter(tmp)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestSpeed)
	})

	for i, p := range pages {
		entry, err := zw.Create(fmt.Sprintf("%03d%s", i+1, p.ext))
		if err != nil {
			cleanup()
			return services.Wrap(services.ErrTransient, "convert", "write entry", p.name, err)
		}
		if _, err := entry.Write(p.data); err != nil {
			cleanup()
			return services.Wrap(services.ErrTransient, "convert", "write entry", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		cleanup()
		return services.Wrap(services.ErrTransient, "convert", "finalize archive", "", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrTransient, "convert", "close archive", "", err)
	}
	if err := fileutil.MoveFile(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrTransient, "convert", "publish archive", outPath, err)
	}
	return nil
}
