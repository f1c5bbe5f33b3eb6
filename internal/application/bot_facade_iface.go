package application

import (
	"context"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
	"vaccine-tracker-bot/internal/region"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----
// These describe the minimal surface that the facade needs.

type ReportUseCaseIface interface {
	LatestReport(ctx context.Context) (string, error)
	Snapshot(ctx context.Context, regionCode string) (model.Snapshot, error)
	Charts(ctx context.Context, scope region.Region, caption string) ([]adapter.Attachment, error)
}

type RegistryUseCaseIface interface {
	Subscribe(ctx context.Context, recipient model.RecipientID, regionCode string) (model.SubscribeOutcome, error)
	Unsubscribe(ctx context.Context, recipient model.RecipientID) (model.SubscribeOutcome, error)
	Get(recipient model.RecipientID) (model.Subscription, bool)
	Count() int
}
