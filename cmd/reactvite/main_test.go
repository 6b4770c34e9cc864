package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBrowserURL(t *testing.T) {
	tests := []struct {
		host, port, base string
		want             string
	}{
		{"0.0.0.0", "8080", "/", "http://localhost:8080/"},
		{"", "3000", "/app/", "http://localhost:3000/app/"},
		{"127.0.0.1", "8080", "/", "http://127.0.0.1:8080/"},
	}
	for _, tt := range tests {
		if got := browserURL(tt.host, tt.port, tt.base); got != tt.want {
			t.Errorf("browserURL(%q, %q, %q): got %q, want %q", tt.host, tt.port, tt.base, got, tt.want)
		}
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "build", "preview", "deploy", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("APP_VERSION", "1.2.3")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--config", ""})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "1.2.3" {
		t.Errorf("version: got %q, want 1.2.3", got)
	}
}

func TestBuildCommand(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("BASE_PATH", "/docs/")
	dir := filepath.Join(t.TempDir(), "dist")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"build", "--config", "", "--out", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("build: %v", err)
	}

	home, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if !strings.Contains(string(home), `href="/docs/about"`) {
		t.Error("production build should apply the base path")
	}
	if !strings.Contains(out.String(), "built ") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestBuildCommandBadMode(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"build", "--config", "", "--mode", "staging", "--out", t.TempDir()})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestDeployNotConfigured(t *testing.T) {
	for _, k := range []string{"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("OUT_DIR", t.TempDir())

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"deploy", "--config", ""})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("got %v, want not configured error", err)
	}
}

func TestRunServerShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := newServer("127.0.0.1:0", http.NotFoundHandler(), time.Second)

	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, srv, cancel)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServer: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
