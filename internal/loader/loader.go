// SPDX-License-Identifier: Apache-2.0

// Package loader turns files on disk into raw document text and page counts.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when no loader handles a path.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrEmptyDocument is returned when a document yields no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
	// ErrFileTooLarge is returned when a file exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

// Source is the text extracted from one file.
type Source struct {
	Path      string
	Text      string
	PageCount int
}

// Loader reads one document format.
type Loader interface {
	Name() string
	// CanHandle reports whether this loader reads the file at path.
	CanHandle(path string) bool
	Load(ctx context.Context, path string) (Source, error)
}

// Registry picks a Loader per path.
type Registry struct {
	loaders  []Loader
	maxBytes int64
}

// NewRegistry creates a Registry with the provided loaders. Loaders are
// consulted in order. A maxBytes of zero disables the size check.
func NewRegistry(maxBytes int64, loaders ...Loader) *Registry {
	return &Registry{loaders: loaders, maxBytes: maxBytes}
}

// Default returns a registry with the PDF, plain text and Markdown loaders.
func Default(maxBytes int64) *Registry {
	return NewRegistry(maxBytes, NewPDFLoader(), NewTextLoader(), NewMarkdownLoader())
}

// Supports reports whether any registered loader handles path.
func (r *Registry) Supports(path string) bool {
	_, err := r.selectLoader(path)
	return err == nil
}

// Load reads path with the first loader that can handle it.
func (r *Registry) Load(ctx context.Context, path string) (Source, error) {
	l, err := r.selectLoader(path)
	if err != nil {
		return Source{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if r.maxBytes > 0 && info.Size() > r.maxBytes {
		return Source{}, fmt.Errorf("%s is %d bytes, limit %d: %w", path, info.Size(), r.maxBytes, ErrFileTooLarge)
	}

	src, err := l.Load(ctx, path)
	if err != nil {
		return Source{}, fmt.Errorf("loader %q failed: %w", l.Name(), err)
	}
	if strings.TrimSpace(src.Text) == "" {
		return src, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}
	return src, nil
}

// Discover expands paths into the files the registry can load. Directories
// are walked recursively; unsupported files inside them are skipped, while
// an explicitly named unsupported file is still returned so that it is
// reported as a failure.
func (r *Registry) Discover(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && r.Supports(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	return out, nil
}

// selectLoader returns the first registered loader that can handle path.
func (r *Registry) selectLoader(path string) (Loader, error) {
	for _, l := range r.loaders {
		if l.CanHandle(path) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
