// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts the site's Markdown documents into HTML using
// goldmark. Raw HTML in the source is not passed through.
package markdown

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"reactvite/internal/slug"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // GitHub-Flavored Markdown: tables, strikethrough, autolinks, task lists
		extension.Typographer, // Smart quotes and dashes
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // Heading IDs for anchors, generated by slugIDs
	),
)

// Document is a converted Markdown source.
type Document struct {
	Title string // text of the first level-1 heading
	HTML  string
}

// Parse converts source into HTML and extracts its title.
func Parse(source []byte) (Document, error) {
	ctx := parser.NewContext(parser.WithIDs(newSlugIDs()))
	root := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, root); err != nil {
		return Document{}, fmt.Errorf("render markdown: %w", err)
	}
	return Document{Title: title(root, source), HTML: buf.String()}, nil
}

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	doc, err := Parse([]byte(source))
	return doc.HTML, err
}

// title returns the plain text of the first level-1 heading, or "".
func title(root ast.Node, source []byte) string {
	var out string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		var b bytes.Buffer
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
			}
		}
		out = b.String()
		return ast.WalkStop, nil
	})
	return out
}

// slugIDs generates heading IDs with slug.Generate, suffixing repeats with
// -1, -2 and so on. One instance serves one document.
type slugIDs struct {
	used map[string]bool
}

func newSlugIDs() *slugIDs {
	return &slugIDs{used: make(map[string]bool)}
}

func (s *slugIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := slug.Generate(string(value))
	if base == "" {
		base = "section"
	}
	id := base
	for i := 1; s.used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	s.used[id] = true
	return []byte(id)
}

func (s *slugIDs) Put(value []byte) {
	s.used[string(value)] = true
}
