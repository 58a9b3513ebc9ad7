package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/gqlcodegen/internal/fileutil"
)

// Writer renders, formats and writes the output of a Generator to one target
// file. Passes may run concurrently; the target always holds a complete
// pass.
type Writer struct {
	gen  *Generator
	path string

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks generation performance.
type WriterMetrics struct {
	Passes     int
	Writes     int
	TotalBytes int64
	RenderTime time.Duration
	FormatTime time.Duration
	WriteTime  time.Duration
}

// WriteResult describes one pass of a Writer.
type WriteResult struct {
	// Path is the absolute target path.
	Path string
	// Changed reports whether the file was written.
	Changed bool
	// Code is the formatted text.
	Code string
}

// NewWriter creates a Writer for the target path.
func NewWriter(g *Generator, path string) (*Writer, error) {
	if path == "" {
		return nil, NewConfigError("TargetPath", path, "target path cannot be empty")
	}
	return &Writer{gen: g, path: path}, nil
}

// Path returns the target path as given.
func (w *Writer) Path() string {
	return w.path
}

// Metrics returns a copy of the generation metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write runs one pass over schema and writes the result if it differs from
// the file on disk.
func (w *Writer) Write(ctx context.Context, schema *ast.Schema) (*WriteResult, error) {
	// 1. Render plugins
	start := time.Now()
	text, err := w.gen.Render(ctx, schema)
	if err != nil {
		return nil, err
	}
	rendered := time.Now()

	// 2. Format
	code, err := w.gen.Format(ctx, text)
	if err != nil {
		// Write unformatted text for debugging (errors intentionally ignored as we're already in error state)
		debugPath := w.path + ".error"
		_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
		_ = os.WriteFile(debugPath, []byte(text), 0o644)
		return nil, fmt.Errorf("%w (unformatted written to %s)", err, debugPath)
	}
	formatted := time.Now()

	// 3. Write when changed
	abs, changed, err := fileutil.WriteStringIfChanged(w.path, code)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", w.path, err)
	}

	// Update metrics
	w.mu.Lock()
	w.metrics.Passes++
	if changed {
		w.metrics.Writes++
		w.metrics.TotalBytes += int64(len(code))
	}
	w.metrics.RenderTime += rendered.Sub(start)
	w.metrics.FormatTime += formatted.Sub(rendered)
	w.metrics.WriteTime += time.Since(formatted)
	w.mu.Unlock()

	return &WriteResult{Path: abs, Changed: changed, Code: code}, nil
}
