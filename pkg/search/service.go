package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clinsight/trial-search/pkg/trials"
)

// Fetcher is the upstream access the service needs: one GET against the
// studies endpoint. *client.Client satisfies it.
type Fetcher interface {
	GetStudies(ctx context.Context, query url.Values) ([]byte, error)
}

// Config holds the aggregation limits.
type Config struct {
	// MaxResults caps how many trials one search fetches.
	MaxResults int

	// PageSize is the number of studies requested per upstream page.
	PageSize int
}

// DefaultConfig returns the standard limits: 500 results fetched 100
// per page, so a capped search costs at most five upstream requests.
func DefaultConfig() Config {
	return Config{
		MaxResults: 500,
		PageSize:   100,
	}
}

// Service runs searches against the upstream API.
type Service struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger
}

// NewService creates a search service using the given fetcher.
func NewService(fetcher Fetcher, cfg Config) *Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 500
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}

	return &Service{
		fetcher: fetcher,
		config:  cfg,
		logger:  log.With().Str("component", "search-service").Logger(),
	}
}

// Search paginates through the upstream API, flattening every study
// into a Trial, until either the result cap is reached or the upstream
// stops returning a page token. Any page failure aborts the search; no
// partial result is returned.
func (s *Service) Search(ctx context.Context, params trials.SearchParams) (*trials.SearchResult, error) {
	start := time.Now()

	var accumulated []trials.Trial
	var pageToken string
	var totalCount int
	pages := 0

	for len(accumulated) < s.config.MaxResults {
		p, err := s.fetchPage(ctx, params, pageToken)
		if err != nil {
			return nil, err
		}
		pages++
		totalCount = p.TotalCount

		for _, record := range p.Studies {
			accumulated = append(accumulated, record.flatten())
		}

		if p.NextPageToken == "" {
			break
		}
		pageToken = p.NextPageToken
	}

	// The last page may overshoot the cap.
	truncated := len(accumulated) >= s.config.MaxResults
	if truncated {
		accumulated = accumulated[:s.config.MaxResults]
	}

	s.logger.Info().
		Int("fetched", len(accumulated)).
		Int("total_count", totalCount).
		Int("pages", pages).
		Bool("truncated", truncated).
		Dur("duration", time.Since(start)).
		Msg("Search complete")

	return &trials.SearchResult{
		Trials:     accumulated,
		TotalCount: totalCount,
		Truncated:  truncated,
	}, nil
}

// fetchPage requests one page and decodes its wire shape.
func (s *Service) fetchPage(ctx context.Context, params trials.SearchParams, pageToken string) (*page, error) {
	query := BuildQuery(params)
	query.Set("pageSize", strconv.Itoa(s.config.PageSize))
	query.Set("countTotal", "true")
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	body, err := s.fetcher.GetStudies(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	return &p, nil
}
