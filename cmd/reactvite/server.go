package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// shutdownTimeout bounds how long active requests get to finish.
const shutdownTimeout = 10 * time.Second

// newServer creates an HTTP server with sensible timeouts. WriteTimeout
// must cover the simulated contact submission.
func newServer(addr string, h http.Handler, contactDelay time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30*time.Second + contactDelay,
		IdleTimeout:  120 * time.Second,
	}
}

// runServer serves until ctx is cancelled, then drains connections.
// ready is called once the server is about to accept connections.
func runServer(ctx context.Context, srv *http.Server, ready func()) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if ready != nil {
		ready()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}

// browserURL turns a listen address into a URL a local browser can open.
func browserURL(host, port, basePath string) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + host + ":" + port + basePath
}
