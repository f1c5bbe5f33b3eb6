//go:build !integration

package chart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
)

func newTestRenderer(t *testing.T) *URLRenderer {
	t.Helper()
	logger := zerolog.Nop()
	r, err := NewURLRenderer("https://charts.example.org/", time.UTC, &logger)
	if err != nil {
		t.Fatalf("NewURLRenderer: %v", err)
	}
	r.now = func() time.Time { return time.Date(2021, 5, 13, 18, 5, 0, 0, time.UTC) }
	return r
}

func TestURLRenderer_RenderChart(t *testing.T) {
	series := model.ChartSeries{Points: []model.ChartPoint{{Date: time.Date(2021, 5, 12, 0, 0, 0, 0, time.UTC), Total: 10}}}

	tests := []struct {
		name    string
		kind    model.ChartKind
		region  string
		want    string
		wantErr bool
	}{
		{"should resolve the national total chart", model.ChartTotal, "", "https://charts.example.org/charts/latest-total.png?a=20210513-1805", false},
		{"should resolve the national map", model.ChartMap, "", "https://charts.example.org/charts/latest-map.png?a=20210513-1805", false},
		{"should resolve a regional daily chart", model.ChartDaily, "LIG", "https://charts.example.org/charts/regions/lig-daily.png?a=20210513-1805", false},
		{"should refuse a regional map", model.ChartMap, "LIG", "", true},
		{"should refuse an unknown kind", model.ChartKind("pie"), "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t)

			got, err := r.RenderChart(context.Background(), series, tt.kind, tt.region)

			if tt.wantErr {
				if !errors.Is(err, domain.ErrRender) {
					t.Fatalf("expected ErrRender, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("should refuse an empty series", func(t *testing.T) {
		r := newTestRenderer(t)
		_, err := r.RenderChart(context.Background(), model.ChartSeries{}, model.ChartTotal, "")
		if !errors.Is(err, domain.ErrRender) {
			t.Errorf("expected ErrRender, got %v", err)
		}
	})
}

func TestNewURLRenderer_InvalidBase(t *testing.T) {
	logger := zerolog.Nop()
	if _, err := NewURLRenderer("not a url", nil, &logger); err == nil {
		t.Error("expected an error for a relative base url")
	}
}
