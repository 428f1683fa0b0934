// Package markdown turns markdown files into the text blocks that go into
// container messages.
package markdown

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// DefaultLevel is the deepest heading that starts a section when Split is
// given a level <= 0.
const DefaultLevel = 2

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Split cuts source into sections at top-level headings of the given level
// or shallower. Text before the first such heading is its own section.
// Sections are trimmed of surrounding whitespace and empty ones are dropped.
// Headings nested in lists, quotes or code blocks never split.
func Split(source []byte, level int) []string {
	if level <= 0 {
		level = DefaultLevel
	}

	doc := md.Parser().Parse(text.NewReader(source))

	var cuts []int
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level > level || h.Lines().Len() == 0 {
			continue
		}
		cuts = append(cuts, lineStart(source, h.Lines().At(0).Start))
	}

	var sections []string
	prev := 0
	for _, c := range append(cuts, len(source)) {
		if c < prev {
			continue
		}
		if s := strings.TrimSpace(string(source[prev:c])); s != "" {
			sections = append(sections, s)
		}
		prev = c
	}
	return sections
}

// lineStart returns the offset of the first byte of the line holding pos.
func lineStart(source []byte, pos int) int {
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

// Expand resolves glob patterns (with ** support) to a sorted, de-duplicated
// list of files. A pattern that matches no file is an error.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", p)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
