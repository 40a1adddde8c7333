package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/pagecluster/internal/adapters/driven/ai"
	"github.com/custodia-labs/pagecluster/internal/adapters/driven/metrics"
	"github.com/custodia-labs/pagecluster/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagecluster/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/pagecluster/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pagecluster/internal/adapters/driving/cli"
	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
	"github.com/custodia-labs/pagecluster/internal/core/services"
	"github.com/custodia-labs/pagecluster/internal/keywords/yake"
	"github.com/custodia-labs/pagecluster/internal/logger"
	"github.com/custodia-labs/pagecluster/internal/normalisers/html"
	"github.com/custodia-labs/pagecluster/internal/preprocessing"
)

// storage is what every backend provides.
type storage interface {
	PageStore() driven.PageStore
	EventStore() driven.EventStore
	ClusterStore() driven.ClusterStore
	SimilarityIndex() driven.SimilarityIndex
	Close() error
}

// newBootstrap wires services from the stored settings on first use.
func newBootstrap(settings driving.SettingsService) cli.Bootstrap {
	return func(ctx context.Context) (*cli.Services, error) {
		s, err := settings.Get()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		if err := settings.Validate(); err != nil {
			return nil, fmt.Errorf("%w. Run 'pagecluster settings' to fix", err)
		}

		logger.Section("wiring")
		embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &s.Embedding)
		if err != nil {
			return nil, err
		}
		store, err := openStorage(s.Storage, s.Embedding.Dimensions)
		if err != nil {
			embedder.Close()
			return nil, err
		}

		svc, err := buildServices(ctx, s, store, embedder, metrics.New())
		if err != nil {
			store.Close()
			embedder.Close()
			return nil, err
		}
		return svc, nil
	}
}

// openStorage opens the configured backend.
func openStorage(s domain.StorageSettings, dimensions int) (storage, error) {
	switch s.Backend {
	case domain.StorageMemory:
		logger.Warn("memory storage: clusters are lost on exit")
		return memory.NewStore(), nil
	case domain.StorageSQLite:
		store, err := sqlite.NewStore(s.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.StoragePostgres:
		store, err := postgres.NewStore(s.DSN, dimensions)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, s.Backend)
	}
}

// buildServices assembles pipelines and services over opened storage and
// a shared embedder. Close releases both.
func buildServices(ctx context.Context, s *domain.AppSettings, store storage, embedder driven.EmbeddingService,
	m *metrics.Metrics) (*cli.Services, error) {
	extractor, err := yake.NewFromStoplist(s.Keywords.StoplistPath)
	if err != nil {
		return nil, fmt.Errorf("load stoplist: %w", err)
	}

	steps := preprocessing.NewStepRegistry()
	preprocessing.RegisterDefaults(steps, preprocessing.StepDeps{
		Extractor:    extractor,
		KeywordCount: s.Keywords.PipelineKeywords,
	})
	pipelines, err := preprocessing.Build(ctx, s.Pipelines, preprocessing.DefaultDefinitions(),
		steps, embedder, s.Embedding.Dimensions)
	if err != nil {
		return nil, err
	}
	for _, p := range pipelines.List() {
		logger.Debug("pipeline %s enabled", p.Name())
	}

	clusters := store.ClusterStore()
	index := store.SimilarityIndex()
	engine := services.NewAssignmentEngine(index, services.WithThreshold(s.Clustering.Threshold))
	namer := services.NewClusterNamer(clusters, extractor, s.Clustering.NameKeywords)

	ingest := services.NewIngestService(store.PageStore(), store.EventStore(), clusters, index,
		pipelines, engine, namer)
	ingest.SetIgnore(s.Ingest.Ignore)
	ingest.SetWorkers(s.Ingest.Workers)
	ingest.SetNameNormaliser(html.New())

	out := &cli.Services{
		Ingest:   ingest,
		Clusters: services.NewClusterService(clusters, store.EventStore(), pipelines),
		Server:   s.Server,
		Close: func() error {
			return errors.Join(store.Close(), embedder.Close())
		},
	}
	if m != nil {
		ingest.SetMetrics(m)
		out.Metrics = m.Handler()
	}
	return out, nil
}
