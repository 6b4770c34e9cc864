// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assets bundles the client scripts into the two chunks the pages
// load: "vendor" (toasts and the contact form) and "router" (in-page
// navigation). Production bundles get content-hashed file names; development
// bundles keep stable names and ship a source map next to every chunk.
package assets

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultDir is the URL and output directory the chunks are served from
// unless Options.Dir says otherwise.
const DefaultDir = "assets"

// ManifestFile is written next to the exported site.
const ManifestFile = "manifest.json"

// Chunk is a named group of script sources bundled into one file.
type Chunk struct {
	Name  string
	Files []string // paths inside the source filesystem
}

// Chunks is the bundle layout, in the order pages load them.
var Chunks = []Chunk{
	{Name: "vendor", Files: []string{"js/toast.js", "js/contact.js"}},
	{Name: "router", Files: []string{"js/router.js"}},
}

// Options controls how a bundle is produced.
type Options struct {
	Hash      bool   // content-hash chunk file names
	Sourcemap bool   // emit <chunk>.js.map and link it from the chunk
	Dir       string // directory under the site root, DefaultDir when empty
}

// Manifest maps chunk names to the file names they were written to.
type Manifest struct {
	Chunks map[string]string `json:"chunks"`
	Hashed bool              `json:"hashed"` // file names carry a content hash
	Built  time.Time         `json:"built"`
}

// ReadManifest loads the manifest an export wrote into dir.
func ReadManifest(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Bundle is an in-memory build of all chunks.
type Bundle struct {
	Manifest Manifest
	dir      string
	hashed   bool
	order    []string
	files    map[string][]byte
}

// Build reads every chunk's sources from src and produces a bundle.
func Build(src fs.FS, opts Options) (*Bundle, error) {
	if opts.Dir = strings.Trim(opts.Dir, "/"); opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	b := &Bundle{
		Manifest: Manifest{Chunks: make(map[string]string), Hashed: opts.Hash, Built: time.Now().UTC()},
		dir:      opts.Dir,
		hashed:   opts.Hash,
		files:    make(map[string][]byte),
	}

	for _, chunk := range Chunks {
		var code bytes.Buffer
		sm := newSourceMap()
		for _, file := range chunk.Files {
			data, err := fs.ReadFile(src, file)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", file, err)
			}
			text := strings.TrimRight(string(data), "\n")
			code.WriteString(text)
			code.WriteByte('\n')
			sm.add(file, text)
		}

		name := chunk.Name + ".js"
		if opts.Hash {
			sum := sha256.Sum256(code.Bytes())
			name = chunk.Name + "-" + hex.EncodeToString(sum[:4]) + ".js"
		}

		if opts.Sourcemap {
			mapName := name + ".map"
			mapped, err := sm.encode(name)
			if err != nil {
				return nil, fmt.Errorf("source map %s: %w", chunk.Name, err)
			}
			fmt.Fprintf(&code, "//# sourceMappingURL=%s\n", mapName)
			b.files[mapName] = mapped
		}

		b.files[name] = code.Bytes()
		b.order = append(b.order, name)
		b.Manifest.Chunks[chunk.Name] = name
	}

	slog.Debug("assets bundled", "chunks", len(b.order), "hashed", opts.Hash, "sourcemap", opts.Sourcemap)
	return b, nil
}

// Scripts returns the site-relative URL of every chunk in load order.
func (b *Bundle) Scripts() []string {
	urls := make([]string, len(b.order))
	for i, name := range b.order {
		urls[i] = "/" + b.dir + "/" + name
	}
	return urls
}

// Dir returns the directory the chunks live in, relative to the site root.
func (b *Bundle) Dir() string {
	return b.dir
}

// Names returns every file in the bundle, sorted.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.files))
	for name := range b.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// File returns the contents of one bundled file.
func (b *Bundle) File(name string) ([]byte, bool) {
	data, ok := b.files[name]
	return data, ok
}

// ServeHTTP serves bundled files by the last element of the request path.
// Hashed files are cached forever; stable development names are always
// revalidated.
func (b *Bundle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Base(r.URL.Path)
	data, ok := b.files[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(name, ".map") {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	}
	if b.hashed {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}
	http.ServeContent(w, r, name, b.Manifest.Built, bytes.NewReader(data))
}

// WriteDir writes every bundled file into dir/<bundle dir> and the manifest
// into dir/manifest.json.
func (b *Bundle) WriteDir(dir string) error {
	out := filepath.Join(dir, filepath.FromSlash(b.dir))
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	for name, data := range b.files {
		if err := os.WriteFile(filepath.Join(out, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	manifest, err := json.MarshalIndent(b.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), append(manifest, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
