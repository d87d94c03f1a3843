package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/lotar-dev/lotar/internal/events"
	"github.com/lotar-dev/lotar/internal/storage"
	"github.com/lotar-dev/lotar/internal/task"
)

// Server wires the JSON/HTTP surface on top of an already-resolved
// tasks root and its Task Service.
type Server struct {
	httpServer *http.Server
	tasksRoot  string
	repoRoot   string
	engine     *storage.Engine
	service    *task.Service
	bus        *events.Bus
}

// NewServer builds a Server listening on addr, serving from the
// given tasks root.
func NewServer(addr, tasksRoot, repoRoot string) *Server {
	bus := events.NewBus()
	engine := storage.New(tasksRoot, bus)
	svc := task.New(engine, tasksRoot, repoRoot, bus)

	s := &Server{
		tasksRoot: tasksRoot,
		repoRoot:  repoRoot,
		engine:    engine,
		service:   svc,
		bus:       bus,
	}

	mux := http.NewServeMux()
	s.registerTaskRoutes(mux)
	s.registerConfigRoutes(mux)
	s.registerProjectRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until ctx is cancelled or the server fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
