package organizer

import (
	"context"

	"github.com/dgnsrekt/tab_warden/internal/cluster"
	"github.com/dgnsrekt/tab_warden/internal/host"
)

// extractorFetcher adapts the host page extractor to the cluster strategy
// interface.
type extractorFetcher struct {
	extractor *host.Extractor
}

// NewContentFetcher wraps a host extractor for use by the cluster
// strategies. A nil extractor yields a nil fetcher, which the strategies
// treat as "no page content available".
func NewContentFetcher(extractor *host.Extractor) cluster.ContentFetcher {
	if extractor == nil {
		return nil
	}
	return extractorFetcher{extractor: extractor}
}

func (f extractorFetcher) Extract(ctx context.Context, targetID string) (cluster.Snippet, error) {
	content, err := f.extractor.Extract(ctx, targetID)
	if err != nil {
		return cluster.Snippet{}, err
	}
	return cluster.Snippet{Title: content.Title, Text: content.Snippet}, nil
}
