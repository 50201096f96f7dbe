package engine

import (
	"context"
	"errors"
	"net/http"
	"time"

	"versiond/internal/logging"
	"versiond/internal/pipeline"
	"versiond/internal/server"
	"versiond/internal/transport"
	"versiond/transform"
)

const shutdownGrace = 10 * time.Second

type Engine struct {
	http      *server.Server
	transport *transport.Server
	runner    *pipeline.Runner
	metrics   *http.Server
	cache     *transform.CachingResolver
}

// Run serves HTTP and gRPC until ctx is done or either server fails, then
// shuts everything down.
func (e *Engine) Run(ctx context.Context) error {
	errc := make(chan error, 2)
	go func() { errc <- e.http.ListenAndServe() }()
	go func() { errc <- e.transport.Serve() }()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
	}
	logging.L().Info("engine: shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	errs := []error{err, e.http.Shutdown(sctx), e.metrics.Shutdown(sctx)}
	e.transport.Stop()
	errs = append(errs, e.runner.Close())
	stopCache(e.cache)
	return errors.Join(errs...)
}
