// Package web provides the embedded site assets: stylesheets, images and
// the client script sources bundled into chunks, plus the Markdown sources
// of the legal pages.
package web

import (
	"embed"
	"io/fs"
)

// StaticFS embeds the web/static/ directory tree, served at /static/.
//
//go:embed all:static
var StaticFS embed.FS

// LegalFS embeds the Markdown sources of the Privacy Policy and Terms of
// Service pages.
//
//go:embed legal/*.md
var LegalFS embed.FS

// Static returns StaticFS rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
