package engine

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"versiond/internal/config"
	"versiond/internal/logging"
	"versiond/internal/pipeline"
	"versiond/internal/resource"
	"versiond/internal/server"
	"versiond/internal/telemetry"
	"versiond/internal/transport"
	"versiond/transform"

	// resource kinds
	_ "versiond/internal/widgets"
)

// Resources loads the manifest at path and builds its resources over
// resolver (the default directory resolver when nil).
func Resources(path string, resolver transform.Resolver, metrics *telemetry.Metrics) (*resource.Set, *pipeline.Runner, error) {
	m, sourceConf, err := config.LoadManifest(path)
	if err != nil {
		return nil, nil, fmt.Errorf("manifest: %w", err)
	}
	opts := resource.Options{Resolver: resolver}
	if metrics != nil {
		opts.Observer = metrics
	}
	set, err := resource.Build(m, opts)
	if err != nil {
		return nil, nil, err
	}
	runner, err := pipeline.Compile(m, sourceConf, set, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: %w", err)
	}
	return set, runner, nil
}

func Bootstrap(ctx context.Context, cfg config.Config) (*Engine, error) {
	logging.Configure(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	metrics := telemetry.NewMetrics()

	// 1. resolver
	var resolver transform.Resolver = transform.NewResolver(nil)
	var cache *transform.CachingResolver
	if cfg.Resolver.Cache {
		cache = transform.NewCachingResolver(resolver, cfg.Resolver.CacheTTL)
		cache.Start()
		resolver = cache
	}
	resolver = metrics.InstrumentResolver(resolver)

	// 2. resources and change pipeline
	set, runner, err := Resources(cfg.Manifest, resolver, metrics)
	if err != nil {
		stopCache(cache)
		return nil, err
	}
	if err := runner.Start(ctx); err != nil {
		stopCache(cache)
		_ = runner.Close()
		return nil, err
	}

	// 3. transport server
	names := lo.Map(set.All(), func(r *resource.Resource, _ int) string { return r.Name() })
	grpcSrv, err := transport.StartServer(cfg.GRPCPort, names)
	if err != nil {
		stopCache(cache)
		_ = runner.Close()
		return nil, fmt.Errorf("transport: %w", err)
	}

	// 4. http host
	httpSrv := server.New(cfg.HTTP.Addr, server.NewHandler(server.Options{
		Resources: set,
		Publisher: runner,
		Metrics:   metrics,
		RateLimit: cfg.HTTP.RateLimit,
	}))

	// 5. metrics
	metricsSrv := telemetry.Expose(cfg.MetricsPort, metrics)

	logging.L().Info("engine: bootstrapped", "resources", names, "http", cfg.HTTP.Addr, "grpc_port", cfg.GRPCPort, "metrics_port", cfg.MetricsPort)
	return &Engine{
		http:      httpSrv,
		transport: grpcSrv,
		runner:    runner,
		metrics:   metricsSrv,
		cache:     cache,
	}, nil
}

func stopCache(c *transform.CachingResolver) {
	if c != nil {
		c.Stop()
	}
}
