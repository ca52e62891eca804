// Package documents stores receipts and invoices fetched after a sale.
package documents

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Sink writes documents under a base directory
type Sink struct {
	fs  afero.Fs
	dir string
}

// NewSink creates a sink rooted at dir on fs, creating dir if needed
func NewSink(fs afero.Fs, dir string) (*Sink, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir %s: %w", dir, err)
	}
	return &Sink{fs: fs, dir: dir}, nil
}

// NewOSSink creates a sink on the local disk
func NewOSSink(dir string) (*Sink, error) {
	return NewSink(afero.NewOsFs(), dir)
}

// Save writes data as name and returns the stored path. Names are reduced
// to their base so they cannot escape the directory.
func (s *Sink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("invalid document name %q", name)
	}

	path := filepath.Join(s.dir, base)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
