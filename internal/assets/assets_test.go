package assets

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func sources() fstest.MapFS {
	return fstest.MapFS{
		"js/toast.js":   {Data: []byte("(function () {\n  window.toast = 1;\n})();\n")},
		"js/contact.js": {Data: []byte("(function () {\n  window.contact = 2;\n})();\n")},
		"js/router.js":  {Data: []byte("(function () {\n  window.router = 3;\n})();\n")},
	}
}

func TestBuildDevelopment(t *testing.T) {
	b, err := Build(sources(), Options{Sourcemap: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"router.js", "router.js.map", "vendor.js", "vendor.js.map"}
	if diff := cmp.Diff(want, b.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/assets/vendor.js", "/assets/router.js"}, b.Scripts()); diff != "" {
		t.Errorf("Scripts() mismatch (-want +got):\n%s", diff)
	}

	vendor, _ := b.File("vendor.js")
	if !strings.Contains(string(vendor), "window.toast") || !strings.Contains(string(vendor), "window.contact") {
		t.Error("vendor chunk should contain toast and contact sources")
	}
	if strings.Contains(string(vendor), "window.router") {
		t.Error("vendor chunk should not contain router source")
	}
	if !strings.HasSuffix(string(vendor), "//# sourceMappingURL=vendor.js.map\n") {
		t.Error("development chunk should link its source map")
	}
}

func TestBuildProduction(t *testing.T) {
	b, err := Build(sources(), Options{Hash: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	hashed := regexp.MustCompile(`^(vendor|router)-[0-9a-f]{8}\.js$`)
	for _, name := range b.Names() {
		if !hashed.MatchString(name) {
			t.Errorf("unexpected production file %q", name)
		}
		data, _ := b.File(name)
		if strings.Contains(string(data), "sourceMappingURL") {
			t.Errorf("%s: production chunk must not reference a source map", name)
		}
	}
	if len(b.Names()) != 2 {
		t.Errorf("got %d files, want 2", len(b.Names()))
	}
}

func TestBuildHashFollowsContent(t *testing.T) {
	first, err := Build(sources(), Options{Hash: true})
	if err != nil {
		t.Fatal(err)
	}
	src := sources()
	src["js/router.js"] = &fstest.MapFile{Data: []byte("window.router = 4;\n")}
	second, err := Build(src, Options{Hash: true})
	if err != nil {
		t.Fatal(err)
	}

	if first.Manifest.Chunks["vendor"] != second.Manifest.Chunks["vendor"] {
		t.Error("unchanged vendor chunk should keep its name")
	}
	if first.Manifest.Chunks["router"] == second.Manifest.Chunks["router"] {
		t.Error("changed router chunk should get a new name")
	}
}

func TestBuildMissingSource(t *testing.T) {
	src := sources()
	delete(src, "js/contact.js")
	if _, err := Build(src, Options{}); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestSourceMap(t *testing.T) {
	b, err := Build(sources(), Options{Sourcemap: true})
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := b.File("vendor.js.map")

	var sm struct {
		Version  int      `json:"version"`
		File     string   `json:"file"`
		Sources  []string `json:"sources"`
		Mappings string   `json:"mappings"`
	}
	if err := json.Unmarshal(raw, &sm); err != nil {
		t.Fatalf("decode map: %v", err)
	}
	if sm.Version != 3 || sm.File != "vendor.js" {
		t.Errorf("version=%d file=%q", sm.Version, sm.File)
	}
	if diff := cmp.Diff([]string{"js/toast.js", "js/contact.js"}, sm.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}

	// Three lines per file; the first line of the second file jumps to
	// source 1 and back to line 0.
	want := "AAAA;AACA;AACA;ACFA;AACA;AACA"
	if sm.Mappings != want {
		t.Errorf("mappings = %q, want %q", sm.Mappings, want)
	}
}

func TestVLQ(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "A"},
		{1, "C"},
		{-1, "D"},
		{2, "E"},
		{15, "e"},
		{16, "gB"},
		{-16, "hB"},
		{1000, "w+B"},
	}
	for _, tt := range tests {
		if got := vlq(tt.n); got != tt.want {
			t.Errorf("vlq(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestServeHTTP(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		cacheCtrl string
	}{
		{"development", Options{}, "no-cache"},
		{"production", Options{Hash: true}, "public, max-age=31536000, immutable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Build(sources(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}

			rr := httptest.NewRecorder()
			b.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/site"+b.Scripts()[0], nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rr.Code)
			}
			if got := rr.Header().Get("Cache-Control"); got != tt.cacheCtrl {
				t.Errorf("Cache-Control: got %q, want %q", got, tt.cacheCtrl)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/javascript") {
				t.Errorf("Content-Type: got %q", ct)
			}

			rr = httptest.NewRecorder()
			b.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/missing.js", nil))
			if rr.Code != http.StatusNotFound {
				t.Errorf("missing file: got %d, want 404", rr.Code)
			}
		})
	}
}

func TestWriteDir(t *testing.T) {
	b, err := Build(sources(), Options{Hash: true})
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := b.WriteDir(dir); err != nil {
		t.Fatalf("WriteDir: %v", err)
	}

	for _, name := range b.Names() {
		if _, err := os.Stat(filepath.Join(dir, DefaultDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	m, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if diff := cmp.Diff(b.Manifest.Chunks, m.Chunks); diff != "" {
		t.Errorf("manifest chunks mismatch (-want +got):\n%s", diff)
	}
	if m.Hashed != b.Manifest.Hashed {
		t.Errorf("manifest Hashed: got %v, want %v", m.Hashed, b.Manifest.Hashed)
	}
}

func TestBuildCustomDir(t *testing.T) {
	b, err := Build(sources(), Options{Dir: "/static-assets/"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Dir() != "static-assets" {
		t.Errorf("Dir: got %q, want static-assets", b.Dir())
	}
	for _, u := range b.Scripts() {
		if !strings.HasPrefix(u, "/static-assets/") {
			t.Errorf("script %q outside the configured dir", u)
		}
	}

	dir := t.TempDir()
	if err := b.WriteDir(dir); err != nil {
		t.Fatalf("WriteDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "static-assets", "vendor.js")); err != nil {
		t.Errorf("vendor chunk not written to the configured dir: %v", err)
	}
}
