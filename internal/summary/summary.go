// Package summary generates and caches plain-language proposal summaries.
package summary

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"eip_explorer/internal/metrics"
	"eip_explorer/internal/resolve"
	"eip_explorer/internal/store"
	"eip_explorer/proposal"
)

// Config holds the LLM connection settings.
type Config struct {
	Model   string
	BaseURL string
	APIKey  string
}

// Service answers summary requests: cache first, then a live resolve plus
// one LLM call, persisting the result. Summaries never expire.
type Service struct {
	cfg      Config
	store    *store.Store
	resolver *resolve.Resolver
	client   *http.Client
}

func NewService(cfg Config, st *store.Store, r *resolve.Resolver) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		resolver: r,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Summarize returns the summary text for one proposal number, resolved
// against the given family's catalog. The cache check and the write are
// not atomic; a concurrent duplicate row is harmless because lookups
// always take the oldest one.
func (s *Service) Summarize(ctx context.Context, no int, fam proposal.Family) (string, error) {
	rec, err := s.store.FindSummary(ctx, no)
	if err != nil {
		return "", err
	}
	if rec != nil {
		metrics.IncSummaryCacheHits()
		return rec.Summary, nil
	}

	res, err := s.resolver.ResolveNumber(ctx, no, fam)
	if err != nil {
		return "", err
	}
	if res.NotFound {
		return "", fmt.Errorf("no document found for %d", no)
	}

	text, err := callSummaryLLM(ctx, s.client, s.cfg.Model, s.cfg.BaseURL, s.cfg.APIKey, no, res.Body)
	if err != nil {
		return "", err
	}

	if err := s.store.SaveSummary(ctx, store.SummaryRecord{
		EIPNo:     no,
		Summary:   text,
		EIPStatus: res.Metadata.Status,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return "", err
	}
	metrics.IncSummariesGenerated()
	return text, nil
}
