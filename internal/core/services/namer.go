package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

// DefaultNameKeywords is the number of keywords in a cluster name.
const DefaultNameKeywords = 5

// ClusterNamer founds clusters, naming each from its first document.
// Names never change after creation.
type ClusterNamer struct {
	store     driven.ClusterStore
	extractor driven.KeywordExtractor
	keywords  int
}

// NewClusterNamer creates a namer that joins the top keywords keywords.
func NewClusterNamer(store driven.ClusterStore, extractor driven.KeywordExtractor, keywords int) *ClusterNamer {
	if keywords <= 0 {
		keywords = DefaultNameKeywords
	}
	return &ClusterNamer{
		store:     store,
		extractor: extractor,
		keywords:  keywords,
	}
}

// NameFor creates the cluster (clusterID, runID) named from text, unless it
// already exists. It returns the new cluster, or nil when the cluster
// existed or a concurrent caller created it first.
func (n *ClusterNamer) NameFor(ctx context.Context, clusterID, runID, text string) (*domain.Cluster, error) {
	_, err := n.store.Get(ctx, clusterID, runID)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get cluster %s: %w", clusterID, err)
	}

	keywords, err := n.extractor.Extract(text, n.keywords)
	if err != nil && !errors.Is(err, domain.ErrNoKeywords) {
		return nil, fmt.Errorf("name cluster %s: %w", clusterID, err)
	}

	cluster := domain.Cluster{
		ID:    clusterID,
		Name:  strings.Join(keywords, " "),
		RunID: runID,
	}
	created, err := n.store.CreateIfAbsent(ctx, cluster)
	if err != nil {
		return nil, fmt.Errorf("create cluster %s: %w", clusterID, err)
	}
	if !created {
		logger.Debug("cluster %s in %s created concurrently, keeping existing name", clusterID, runID)
		return nil, nil
	}

	logger.Info("founded cluster %s in %s: %q", clusterID, runID, cluster.Name)
	return &cluster, nil
}
