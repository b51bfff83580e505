package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jmylchreest/tabtint/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Handler returns the HTTP routes: the WebSocket endpoint and a health check.
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", b.ServeWS)
	mux.HandleFunc("GET /healthz", b.handleHealth)
	return mux
}

type healthResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Version   string `json:"version"`
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Connected: b.Connected(),
		Version:   version.Version,
	}); err != nil {
		b.logger.Error("failed to encode health response", "error", err)
	}
}

// ListenAndServe serves the bridge on addr until ctx is cancelled.
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return b.Serve(ctx, ln)
}

// Serve serves the bridge on ln until ctx is cancelled, then shuts down
// gracefully.
func (b *Bridge) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           b.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		b.logger.Info("listening for extension", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if c := b.current(); c != nil {
		c.close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
