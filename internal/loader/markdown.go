// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// MarkdownLoader reads Markdown notes. Heading markers are stripped and
// each section becomes a paragraph headed by its title, so headings such as
// "Discharge Diagnosis" stay visible to classification.
type MarkdownLoader struct{}

func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

func (l *MarkdownLoader) Name() string {
	return "markdown"
}

func (l *MarkdownLoader) CanHandle(path string) bool {
	return hasExt(path, ".md", ".markdown")
}

func (l *MarkdownLoader) Load(_ context.Context, path string) (Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read markdown: %w", err)
	}
	return Source{
		Path:      path,
		Text:      flattenMarkdown(string(raw)),
		PageCount: 1,
	}, nil
}

// flattenMarkdown splits on heading lines and joins the non-empty sections
// with blank lines.
func flattenMarkdown(content string) string {
	var sections []string
	var heading string
	var body []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		switch {
		case heading != "" && text != "":
			sections = append(sections, heading+"\n"+text)
		case heading != "":
			sections = append(sections, heading)
		case text != "":
			sections = append(sections, text)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			flush()
			heading = strings.TrimSpace(strings.TrimLeft(line, "#"))
			body = nil
			continue
		}
		body = append(body, strings.TrimRight(line, "\r"))
	}
	flush()

	return strings.Join(sections, "\n\n")
}
