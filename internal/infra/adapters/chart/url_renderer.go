package chart

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ChartRenderer = (*URLRenderer)(nil)

// URLRenderer resolves charts published by the plotting job to public URLs.
// National charts live at charts/latest-<kind>.png, regional ones at
// charts/regions/<code>-<kind>.png. A timestamp query keeps Telegram from
// serving a stale cached image.
type URLRenderer struct {
	base *url.URL
	loc  *time.Location
	now  func() time.Time
	log  *zerolog.Logger
}

func NewURLRenderer(baseURL string, loc *time.Location, logger *zerolog.Logger) (*URLRenderer, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid charts base url %q", baseURL)
	}
	if loc == nil {
		loc = time.UTC
	}
	compLog := logger.With().Str("component", "ChartRenderer").Logger()
	return &URLRenderer{base: base, loc: loc, now: time.Now, log: &compLog}, nil
}

func (r *URLRenderer) RenderChart(ctx context.Context, series model.ChartSeries, kind model.ChartKind, region string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRender, err)
	}
	if len(series.Points) == 0 {
		return "", fmt.Errorf("%w: %s chart has no points", domain.ErrRender, kind)
	}

	var p string
	switch kind {
	case model.ChartTotal, model.ChartDaily:
		if region == "" {
			p = "charts/latest-" + string(kind) + ".png"
		} else {
			p = "charts/regions/" + strings.ToLower(region) + "-" + string(kind) + ".png"
		}
	case model.ChartMap:
		if region != "" {
			return "", fmt.Errorf("%w: no map chart for region %s", domain.ErrRender, region)
		}
		p = "charts/latest-map.png"
	default:
		return "", fmt.Errorf("%w: unknown chart kind %q", domain.ErrRender, kind)
	}

	u := *r.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + p
	u.RawQuery = url.Values{"a": {r.now().In(r.loc).Format("20060102-1504")}}.Encode()

	r.log.Debug().Str("kind", string(kind)).Str("region", region).Str("ref", u.String()).Msg("chart resolved")
	return u.String(), nil
}
