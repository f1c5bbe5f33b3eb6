package adapter

import (
	"context"

	"vaccine-tracker-bot/internal/domain/model"
)

// ChartRenderer produces a displayable chart and returns a reference to it, never pixel data.
type ChartRenderer interface {
	RenderChart(ctx context.Context, series model.ChartSeries, kind model.ChartKind, region string) (string, error)
}
