package adapter

import (
	"context"

	"vaccine-tracker-bot/internal/domain/model"
)

// DoseFeed retrieves the raw per-day, per-region dose counts from the upstream feed.
// Rows that cannot be parsed or validated are returned in rejected rather than failing the fetch.
type DoseFeed interface {
	FetchDoseSeries(ctx context.Context) (rows []model.DoseRecord, rejected []error, err error)
}

// PopulationSource retrieves the current population estimate.
type PopulationSource interface {
	FetchPopulation(ctx context.Context) (int64, error)
}
