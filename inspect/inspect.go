// Package inspect reads WebAssembly binaries, obtains their descriptors from
// an engine and checks them for expected exports.
package inspect

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/snow-ghost/wasminspect/core"
	"github.com/snow-ghost/wasminspect/pkg/cache"
	"github.com/snow-ghost/wasminspect/pkg/logging"
	"github.com/snow-ghost/wasminspect/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Inspector runs inspections against one engine. It is safe for concurrent use.
type Inspector struct {
	Engine  core.Engine
	Cache   *cache.LRUCache            // optional
	Metrics *metrics.PrometheusMetrics // optional
	Logger  *logging.Logger            // optional
	dedup   *cache.Deduplicator
}

// Observer is told about each step of an inspection as soon as it is done,
// so output can be written before a later step fails.
type Observer interface {
	// Begin is called before the file is read.
	Begin(path string)
	// Read is called once the file is read, before the engine sees it.
	Read(path string, size int)
	// Done is called with the finished report.
	Done(report *core.Report)
}

// New creates an inspector. c and m may be nil.
func New(engine core.Engine, c *cache.LRUCache, m *metrics.PrometheusMetrics, logger *logging.Logger) *Inspector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Inspector{
		Engine:  engine,
		Cache:   c,
		Metrics: m,
		Logger:  logger.With("engine", engine.Name()),
		dedup:   cache.NewDeduplicator(),
	}
}

// Inspect reads the file at path and checks it for the expected export names.
func (i *Inspector) Inspect(ctx context.Context, path string, expected []string) (*core.Report, error) {
	return i.inspect(ctx, path, expected, nil)
}

func (i *Inspector) inspect(ctx context.Context, path string, expected []string, obs Observer) (*core.Report, error) {
	start := time.Now()
	if obs != nil {
		obs.Begin(path)
	}

	wasm, err := os.ReadFile(path)
	if err != nil {
		i.recordFailure(start)
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if obs != nil {
		obs.Read(path, len(wasm))
	}

	report, err := i.InspectBytes(ctx, path, wasm, expected)
	if err != nil {
		i.recordFailure(start)
		i.Logger.Debug("inspection failed", "path", path, "error", err)
		return nil, err
	}

	duration := time.Since(start)
	if i.Metrics != nil {
		i.Metrics.RecordInspection(i.Engine.Name(), "ok", duration)
		i.Metrics.RecordBinary(path, report.Size, len(report.Missing()))
	}
	d := report.Descriptor
	i.Logger.Debug("descriptor", "path", path,
		"functions", len(d.ExportsOfKind(core.KindFunc)),
		"import_modules", d.ImportModules())
	i.Logger.LogInspection(path, report.Size, len(d.Exports), len(d.Imports), report.Missing(), duration)

	if obs != nil {
		obs.Done(report)
	}
	return report, nil
}

// InspectBytes checks an in-memory binary. path is only recorded in the report.
func (i *Inspector) InspectBytes(ctx context.Context, path string, wasm []byte, expected []string) (*core.Report, error) {
	digest := cache.Digest(wasm)

	desc, err := i.describe(ctx, digest, wasm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &core.Report{
		Path:       path,
		Size:       len(wasm),
		SHA256:     digest,
		Descriptor: desc,
		Symbols:    core.CheckSymbols(desc, expected),
	}, nil
}

func (i *Inspector) describe(ctx context.Context, digest string, wasm []byte) (*core.Descriptor, error) {
	key := cache.KeyFor(i.Engine.Name(), digest)
	desc, hit, err := i.dedup.ExecuteWithCache(key, i.Cache, func() (*core.Descriptor, error) {
		return i.Engine.Inspect(ctx, wasm)
	})
	if err != nil {
		return nil, err
	}

	if i.Cache != nil {
		i.Logger.LogCacheOperation("get", hit, digest)
		if i.Metrics != nil {
			if hit {
				i.Metrics.RecordCacheHit()
			} else {
				i.Metrics.RecordCacheMiss()
			}
		}
	}
	return desc, nil
}

// InspectAll inspects every path with at most limit inspections in flight.
// Reports keep the order of paths. The first failure cancels the remaining
// inspections and is returned.
func (i *Inspector) InspectAll(ctx context.Context, paths []string, expected []string, limit int) ([]*core.Report, error) {
	reports := make([]*core.Report, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for idx, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := i.Inspect(gctx, path, expected)
			if err != nil {
				return err
			}
			reports[idx] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// InspectEach inspects paths one after another in order, reporting every
// step to obs. It stops at the first failure.
func (i *Inspector) InspectEach(ctx context.Context, paths []string, expected []string, obs Observer) ([]*core.Report, error) {
	reports := make([]*core.Report, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := i.inspect(ctx, path, expected, obs)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// LogStats logs the descriptor cache and deduplication counters.
func (i *Inspector) LogStats() {
	d := i.dedup.Stats()
	args := []interface{}{"requests", d.Requests, "deduplicated", d.Deduplicated, "cache_hits", d.CacheHits}
	if i.Cache != nil {
		s := i.Cache.Stats()
		args = append(args, "cache_size", s.Size, "cache_evictions", s.Evictions, "cache_hit_rate", s.HitRate)
	}
	i.Logger.Debug("inspection stats", args...)
}

func (i *Inspector) recordFailure(start time.Time) {
	if i.Metrics != nil {
		i.Metrics.RecordInspection(i.Engine.Name(), "error", time.Since(start))
	}
}
