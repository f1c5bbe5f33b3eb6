// File: internal/infra/adapters/feed/population.go
package feed

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.PopulationSource = (*PopulationScraper)(nil)

// PopulationScraper extracts the population figure from an HTML page with a single-group regex.
type PopulationScraper struct {
	client   *Client
	url      string
	pattern  *regexp.Regexp
	fallback int64
	log      *zerolog.Logger
}

// NewPopulationScraper compiles pattern, which must have exactly one capture group.
// A positive fallback is returned, with a warning, when the page cannot be scraped.
func NewPopulationScraper(client *Client, url, pattern string, fallback int64, logger *zerolog.Logger) (*PopulationScraper, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("population regex: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("population regex: want 1 capture group, got %d", re.NumSubexp())
	}
	l := logger.With().Str("component", "PopulationScraper").Logger()
	return &PopulationScraper{client: client, url: url, pattern: re, fallback: fallback, log: &l}, nil
}

func (p *PopulationScraper) FetchPopulation(ctx context.Context) (int64, error) {
	n, err := p.scrape(ctx)
	if err == nil {
		return n, nil
	}
	if p.fallback > 0 {
		p.log.Warn().Err(err).Int64("fallback", p.fallback).Msg("using configured population")
		return p.fallback, nil
	}
	return 0, err
}

func (p *PopulationScraper) scrape(ctx context.Context) (int64, error) {
	body, err := p.client.get(ctx, "population", p.url)
	if err != nil {
		return 0, err
	}
	m := p.pattern.FindSubmatch(body)
	if m == nil {
		return 0, fmt.Errorf("%w: population: pattern not found", domain.ErrFetchFailed)
	}
	return parsePopulation(string(m[1]))
}

var thousandSeparators = strings.NewReplacer(",", "", ".", "", " ", "", "\u00a0", "", "\u202f", "")

func parsePopulation(s string) (int64, error) {
	n, err := strconv.ParseInt(thousandSeparators.Replace(strings.TrimSpace(s)), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: population: invalid figure %q", domain.ErrFetchFailed, s)
	}
	return n, nil
}
