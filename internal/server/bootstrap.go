package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/akl7777777/whoami-probe/internal/config"
)

const shutdownTimeout = 10 * time.Second

// Bootstrap builds the process-wide *http.Server exactly once.
type Bootstrap struct {
	cfg      *config.Config
	reporter Reporter

	once sync.Once
	srv  *http.Server
	err  error
}

func NewBootstrap(cfg *config.Config, reporter Reporter) *Bootstrap {
	return &Bootstrap{cfg: cfg, reporter: reporter}
}

// Server returns the same instance (or the same error) on every call.
func (b *Bootstrap) Server() (*http.Server, error) {
	b.once.Do(func() {
		b.srv, b.err = b.build()
	})
	return b.srv, b.err
}

func (b *Bootstrap) build() (*http.Server, error) {
	if b.cfg == nil {
		return nil, errors.New("bootstrap: nil config")
	}
	if b.reporter == nil {
		return nil, errors.New("bootstrap: nil reporter")
	}

	return &http.Server{
		Addr:              net.JoinHostPort(b.cfg.Host, b.cfg.Port),
		Handler:           NewServer(b.reporter, b.cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// Run binds the listening port, serves until ctx is done and then shuts
// down gracefully. A bind failure is returned before anything is served.
func (b *Bootstrap) Run(ctx context.Context) error {
	srv, err := b.Server()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	log.Printf("The server is running at http://localhost:%s/", b.cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[main] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
