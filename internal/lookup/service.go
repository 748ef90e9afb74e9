package lookup

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/akl7777777/whoami-probe/internal/config"
	"github.com/akl7777777/whoami-probe/internal/model"
	"github.com/akl7777777/whoami-probe/internal/probe"
)

// Service assembles the diagnostic report for one request.
type Service struct {
	resolver  *Resolver
	annotator *Annotator
	cache     *probe.CacheProbe    // nil when CACHE_HOST is unset
	database  *probe.DatabaseProbe // nil when DB_HOST is unset
}

// NewService creates a new service instance.
func NewService(cfg *config.Config) (*Service, error) {
	database, err := probe.NewDatabaseProbe(cfg.DB, cfg.ProbeTimeout)
	if err != nil {
		return nil, fmt.Errorf("database probe: %w", err)
	}

	return NewServiceWith(
		NewResolver(cfg.LookupURL, cfg.IPInfoToken, cfg.ProbeTimeout),
		NewAnnotator(cfg.MMDBPath),
		probe.NewCacheProbe(cfg.Cache, cfg.ProbeTimeout),
		database,
	), nil
}

// NewServiceWith wires already built components. cache and database may be nil.
func NewServiceWith(resolver *Resolver, annotator *Annotator, cache *probe.CacheProbe, database *probe.DatabaseProbe) *Service {
	if annotator == nil {
		annotator = &Annotator{}
	}
	return &Service{
		resolver:  resolver,
		annotator: annotator,
		cache:     cache,
		database:  database,
	}
}

// Report runs the external IP lookup and the configured probes
// concurrently. Only a failed lookup is returned as an error; probe
// failures are part of the report.
func (s *Service) Report(ctx context.Context, clientIP string) (*model.Report, error) {
	report := &model.Report{ClientIP: clientIP}

	g, gctx := errgroup.WithContext(ctx)

	var ext *ExternalIP
	g.Go(func() error {
		var err error
		ext, err = s.resolver.Resolve(gctx)
		return err
	})
	if s.cache != nil {
		g.Go(func() error {
			report.Cache = s.cache.Probe(gctx)
			return nil
		})
	}
	if s.database != nil {
		g.Go(func() error {
			report.Database = s.database.Probe(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("[lookup] %v", err)
		return nil, err
	}

	report.ExternalIP = ext.IP
	report.ExternalNetwork = s.annotator.Annotate(ext)
	return report, nil
}

// Close cleans up resources.
func (s *Service) Close() {
	if err := s.cache.Close(); err != nil {
		log.Printf("[cache] close: %v", err)
	}
	s.annotator.Close()
}
