package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultWorkers bounds concurrent pages in batch ingestion.
const DefaultWorkers = 4

// IngestService records browse events and clusters their pages through
// every registered pipeline.
type IngestService struct {
	pages     driven.PageStore
	events    driven.EventStore
	clusters  driven.ClusterStore
	index     driven.SimilarityIndex
	pipelines driven.PipelineRegistry
	engine    *AssignmentEngine
	namer     *ClusterNamer

	metrics        driven.IngestMetrics
	nameNormaliser driven.TextStep
	ignore         []string
	workers        int
	now            func() time.Time
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	pages driven.PageStore,
	events driven.EventStore,
	clusters driven.ClusterStore,
	index driven.SimilarityIndex,
	pipelines driven.PipelineRegistry,
	engine *AssignmentEngine,
	namer *ClusterNamer,
) *IngestService {
	return &IngestService{
		pages:     pages,
		events:    events,
		clusters:  clusters,
		index:     index,
		pipelines: pipelines,
		engine:    engine,
		namer:     namer,
		workers:   DefaultWorkers,
		now:       time.Now,
	}
}

// SetMetrics sets the metrics recorder. A nil recorder disables metrics.
func (s *IngestService) SetMetrics(m driven.IngestMetrics) {
	s.metrics = m
}

// SetIgnore sets the URL substrings whose events are dropped.
func (s *IngestService) SetIgnore(patterns []string) {
	s.ignore = patterns
}

// SetWorkers sets the batch concurrency. Values below 1 are ignored.
func (s *IngestService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// SetNameNormaliser sets the step applied to page content before naming a
// new cluster. Without one, names are drawn from the raw content.
func (s *IngestService) SetNameNormaliser(step driven.TextStep) {
	s.nameNormaliser = step
}

// Ignored reports whether events for url are dropped.
func (s *IngestService) Ignored(url string) bool {
	for _, pattern := range s.ignore {
		if pattern != "" && strings.Contains(url, pattern) {
			return true
		}
	}
	return false
}

// LogEvent records an event and clusters its page when the page is new or
// was stored without content.
func (s *IngestService) LogEvent(ctx context.Context, event domain.BrowseEvent) (*driving.IngestResult, error) {
	if strings.TrimSpace(event.URL) == "" {
		return nil, fmt.Errorf("%w: event has no page_url", domain.ErrInvalidInput)
	}

	if s.Ignored(event.URL) {
		logger.Debug("ignored event for %s", event.URL)
		s.recordEvent(true)
		return &driving.IngestResult{URL: event.URL, Ignored: true}, nil
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	existing, err := s.pages.Get(ctx, event.URL)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get page: %w", err)
	}

	if err := s.events.Save(ctx, event); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	s.recordEvent(false)

	result := &driving.IngestResult{URL: event.URL, EventID: event.ID}

	if existing.HasContent() {
		logger.Debug("page %s already has content, not re-clustering", event.URL)
		result.Skipped = true
		if s.metrics != nil {
			s.metrics.PageSkipped()
		}
		return result, nil
	}

	page := domain.Page{URL: event.URL, Content: event.Content, ObservedAt: event.Timestamp}
	if !page.HasContent() {
		if err := s.pages.Save(ctx, page); err != nil {
			return nil, fmt.Errorf("save page: %w", err)
		}
		return result, nil
	}

	processed, err := s.ProcessPage(ctx, page)
	if processed != nil {
		result.Clusters = processed.Clusters
		result.Founded = processed.Founded
	}
	return result, err
}

// ProcessPage stores a page and clusters it through every pipeline.
// Pipelines run independently: the result holds the runs that succeeded
// and the error joins the failures of the rest.
func (s *IngestService) ProcessPage(ctx context.Context, page domain.Page) (*driving.IngestResult, error) {
	if strings.TrimSpace(page.URL) == "" {
		return nil, fmt.Errorf("%w: page has no url", domain.ErrInvalidInput)
	}
	if !page.HasContent() {
		return nil, fmt.Errorf("%w: page %s has no content", domain.ErrInvalidInput, page.URL)
	}
	if page.ObservedAt.IsZero() {
		page.ObservedAt = s.now()
	}

	if err := s.pages.Save(ctx, page); err != nil {
		return nil, fmt.Errorf("save page: %w", err)
	}

	logger.Section("Cluster " + page.URL)

	result := &driving.IngestResult{URL: page.URL, Clusters: make(map[string]string)}
	namer := &lazyNameText{normaliser: s.nameNormaliser, raw: page.Text()}

	var errs []error
	for _, p := range s.pipelines.List() {
		clusterID, founded, err := s.runPipeline(ctx, p, page, namer)
		if err != nil {
			logger.Warn("pipeline %s failed for %s: %v", p.Name(), page.URL, err)
			errs = append(errs, err)
			continue
		}
		result.Clusters[p.Name()] = clusterID
		if founded {
			result.Founded = append(result.Founded, p.Name())
		}
	}

	return result, errors.Join(errs...)
}

// IngestBatch processes pages concurrently. Every page is attempted; the
// results keep input order and the error joins every failure.
func (s *IngestService) IngestBatch(ctx context.Context, pages []domain.Page) ([]driving.IngestResult, error) {
	results := make([]driving.IngestResult, len(pages))

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, page := range pages {
		g.Go(func() error {
			res, err := s.ProcessPage(gctx, page)
			if res != nil {
				results[i] = *res
			} else {
				results[i] = driving.IngestResult{URL: page.URL}
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", page.URL, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("batch ingested %d pages, %d failed", len(pages), len(errs))
	return results, errors.Join(errs...)
}

// runPipeline assigns page to a cluster in the pipeline's run. A page that
// already holds an assignment in the run keeps it.
func (s *IngestService) runPipeline(
	ctx context.Context, p driven.Pipeline, page domain.Page, nameText *lazyNameText,
) (string, bool, error) {
	runID := p.Name()

	existing, err := s.clusters.Assignment(ctx, page.URL, runID)
	if err == nil {
		return existing.ClusterID, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", false, fmt.Errorf("get assignment in %s: %w", runID, err)
	}

	start := time.Now()
	vector, err := p.Run(ctx, page.Text())
	if s.metrics != nil {
		s.metrics.PipelineDuration(runID, time.Since(start))
	}
	if err != nil {
		if s.metrics != nil {
			step := "unknown"
			var perr *domain.PreprocessingError
			if errors.As(err, &perr) {
				step = perr.Step
			}
			s.metrics.PipelineFailed(runID, step)
		}
		return "", false, err
	}

	decision, err := s.engine.Decide(ctx, page.URL, vector, runID)
	if err != nil {
		return "", false, err
	}

	// Cluster and embedding rows precede the assignment and are not rolled
	// back when it fails. Nearest and Count only see assigned embeddings, and
	// an unclaimed cluster row is harmless.
	founded := false
	if !decision.Joined {
		text, err := nameText.get(ctx)
		if err != nil {
			return "", false, fmt.Errorf("name cluster in %s: %w", runID, err)
		}
		cluster, err := s.namer.NameFor(ctx, decision.ClusterID, runID, text)
		if err != nil {
			return "", false, err
		}
		founded = cluster != nil
	}

	if err := s.index.Insert(ctx, domain.Embedding{
		DocumentKey: page.URL,
		RunID:       runID,
		Vector:      vector,
		CreatedAt:   s.now(),
	}); err != nil {
		return "", false, fmt.Errorf("insert embedding in %s: %w", runID, err)
	}

	err = s.clusters.SaveAssignment(ctx, domain.ClusterAssignment{
		DocumentKey: page.URL,
		ClusterID:   decision.ClusterID,
		RunID:       runID,
		CreatedAt:   s.now(),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A concurrent worker assigned the same page first.
		winner, getErr := s.clusters.Assignment(ctx, page.URL, runID)
		if getErr != nil {
			return "", false, fmt.Errorf("get assignment in %s: %w", runID, getErr)
		}
		return winner.ClusterID, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("save assignment in %s: %w", runID, err)
	}

	if s.metrics != nil {
		outcome := "founded"
		if decision.Joined {
			outcome = "joined"
		}
		s.metrics.Assigned(runID, outcome, decision.Similarity)
	}

	return decision.ClusterID, founded, nil
}

func (s *IngestService) recordEvent(ignored bool) {
	if s.metrics != nil {
		s.metrics.EventRecorded(ignored)
	}
}

// lazyNameText normalises page content for naming at most once per page.
type lazyNameText struct {
	normaliser driven.TextStep
	raw        string

	once sync.Once
	text string
	err  error
}

func (l *lazyNameText) get(ctx context.Context) (string, error) {
	l.once.Do(func() {
		if l.normaliser == nil {
			l.text = l.raw
			return
		}
		l.text, l.err = l.normaliser.Process(ctx, l.raw)
	})
	return l.text, l.err
}
