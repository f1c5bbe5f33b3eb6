package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
	"vaccine-tracker-bot/internal/infra/i18n"
	"vaccine-tracker-bot/internal/infra/metrics"
	"vaccine-tracker-bot/internal/region"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// SendDailyReport delivers the national report to one subscriber, with the charts
	// of the subscriber's region (or the national set).
	SendDailyReport(ctx context.Context, sub model.Subscription) error
}

type notificationUC struct {
	reports ReportUseCase
	regions *region.Resolver
	bot     adapter.Deliverer
	tr      *i18n.Translator
	loc     *time.Location
	now     func() time.Time
	log     *zerolog.Logger
}

func NewNotificationUseCase(reports ReportUseCase, regions *region.Resolver, bot adapter.Deliverer, tr *i18n.Translator, loc *time.Location, logger *zerolog.Logger) *notificationUC {
	if loc == nil {
		loc = time.UTC
	}
	l := logger.With().Str("component", "NotificationUC").Logger()
	return &notificationUC{reports: reports, regions: regions, bot: bot, tr: tr, loc: loc, now: time.Now, log: &l}
}

func (n *notificationUC) SendDailyReport(ctx context.Context, sub model.Subscription) (err error) {
	defer func() { metrics.IncNotification(err) }()

	scope := n.regions.National()
	if sub.Region != "" {
		if r, ok := n.regions.Lookup(sub.Region); ok {
			scope = r
		} else {
			n.log.Warn().Str("region", sub.Region).Msg("unknown region in registry, sending national charts")
		}
	}
	caption := n.tr.T("daily_caption", n.now().In(n.loc).Format(n.tr.T("date_layout")))

	text, attachments, renderErr := n.reports.DailyReport(ctx, scope, caption)
	if text == "" {
		return fmt.Errorf("daily report for %s: %w", sub.Recipient, renderErr)
	}
	if renderErr != nil {
		// the text still goes out; the render failure is reported for this recipient only
		n.log.Warn().Err(renderErr).Str("region", scope.Code).Msg("charts unavailable")
		attachments = nil
	}

	if err := n.bot.Deliver(ctx, sub.Recipient, text, attachments); err != nil {
		if errors.Is(err, domain.ErrDelivery) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrDelivery, sub.Recipient, err)
	}
	return renderErr
}
