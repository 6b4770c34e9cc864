package router

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"reactvite/internal/middleware"
)

// NotFoundPage is the exported 404 document the preview server falls back to.
const NotFoundPage = "404.html"

// Preview creates the router for the preview server, which serves an
// exported site from dir under basePath.
func Preview(dir, basePath string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Handle("/*", previewHandler(os.DirFS(dir), basePath))
	return r
}

// previewHandler resolves clean URLs the way static hosts do: "/about"
// serves about/index.html, and unknown paths get 404.html with status 404.
func previewHandler(fsys fs.FS, basePath string) http.HandlerFunc {
	base := strings.TrimSuffix(basePath, "/")

	return func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if base != "" {
			if p == base {
				http.Redirect(w, r, basePath, http.StatusMovedPermanently)
				return
			}
			if !strings.HasPrefix(p, base+"/") {
				serveNotFound(w, r, fsys)
				return
			}
			p = strings.TrimPrefix(p, base)
		}

		name := strings.TrimPrefix(path.Clean(p), "/")
		for _, candidate := range []string{name, path.Join(name, "index.html"), name + ".html"} {
			if candidate == "" || candidate == "." {
				candidate = "index.html"
			}
			info, err := fs.Stat(fsys, candidate)
			if err != nil || info.IsDir() {
				continue
			}
			if strings.HasSuffix(candidate, ".html") {
				w.Header().Set("Cache-Control", "no-cache")
			}
			http.ServeFileFS(w, r, fsys, candidate)
			return
		}
		serveNotFound(w, r, fsys)
	}
}

func serveNotFound(w http.ResponseWriter, r *http.Request, fsys fs.FS) {
	page, err := fs.ReadFile(fsys, NotFoundPage)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write(page)
}
