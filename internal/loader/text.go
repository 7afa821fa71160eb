// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TextLoader reads plain text exports. Form feeds separate pages.
type TextLoader struct{}

func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Name() string {
	return "text"
}

func (l *TextLoader) CanHandle(path string) bool {
	return hasExt(path, ".txt", ".text")
}

func (l *TextLoader) Load(_ context.Context, path string) (Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read text: %w", err)
	}
	text := string(raw)
	return Source{
		Path:      path,
		Text:      strings.ReplaceAll(text, "\f", "\n"),
		PageCount: 1 + strings.Count(text, "\f"),
	}, nil
}
