package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
	"vaccine-tracker-bot/internal/infra/i18n"
	"vaccine-tracker-bot/internal/region"
)

// BotFacade composes usecases into high-level bot commands.
// Handlers always return a localized reply; the error is for logging only.
type BotFacade struct {
	ReportUC   ReportUseCaseIface
	RegistryUC RegistryUseCaseIface
	Regions    *region.Resolver
	Translator *i18n.Translator
	Trigger    model.DailyTrigger

	now func() time.Time
}

func NewBotFacade(
	reportUC ReportUseCaseIface,
	registryUC RegistryUseCaseIface,
	regions *region.Resolver,
	translator *i18n.Translator,
	trigger model.DailyTrigger,
) *BotFacade {
	return &BotFacade{
		ReportUC:   reportUC,
		RegistryUC: registryUC,
		Regions:    regions,
		Translator: translator,
		Trigger:    trigger,
		now:        time.Now,
	}
}

// TriggerLabel renders the daily trigger as "20:00 (Europe/Rome)".
func (b *BotFacade) TriggerLabel() string {
	label := fmt.Sprintf("%02d:%02d", b.Trigger.Hour, b.Trigger.Minute)
	if b.Trigger.Location != nil {
		label += " (" + b.Trigger.Location.String() + ")"
	}
	return label
}

func (b *BotFacade) HandleStart() string {
	return b.Translator.T("start")
}

func (b *BotFacade) HandleHelp() string {
	return b.Translator.T("help", b.TriggerLabel())
}

// HandleLatest returns the national report.
func (b *BotFacade) HandleLatest(ctx context.Context) (string, error) {
	text, err := b.ReportUC.LatestReport(ctx)
	if err != nil {
		return b.errorText(err), err
	}
	return text, nil
}

// HandlePlot resolves the optional region argument and returns its chart set.
func (b *BotFacade) HandlePlot(ctx context.Context, arg string) (string, []adapter.Attachment, error) {
	scope, err := b.Regions.Resolve(arg)
	if err != nil {
		return b.errorText(err), nil, err
	}

	stamp := b.now().In(b.location()).Format(b.Translator.T("time_layout"))
	caption := b.Translator.T("plot_caption", stamp)
	if !scope.IsNational() {
		caption = b.Translator.T("plot_caption_region", stamp, scope.Name)
	}
	attachments, err := b.ReportUC.Charts(ctx, scope, caption)
	if err != nil {
		return b.errorText(err), nil, err
	}
	return "", attachments, nil
}

// HandleSubscribe adds the recipient to the registry, optionally scoping its charts to a region.
func (b *BotFacade) HandleSubscribe(ctx context.Context, recipient model.RecipientID, arg string) (string, error) {
	scope, err := b.Regions.Resolve(arg)
	if err != nil {
		return b.errorText(err), err
	}
	outcome, err := b.RegistryUC.Subscribe(ctx, recipient, scope.Code)
	if err != nil {
		return b.errorText(err), err
	}

	if outcome == model.OutcomeAlreadySubscribed {
		if existing, ok := b.RegistryUC.Get(recipient); ok && existing.Region != scope.Code {
			return b.Translator.T("already_subscribed_scope", b.scopeName(b.scopeOf(existing))), nil
		}
		return b.Translator.T("already_subscribed"), nil
	}
	if scope.IsNational() {
		return b.Translator.T("subscribed", b.TriggerLabel()), nil
	}
	return b.Translator.T("subscribed_region", b.TriggerLabel(), scope.Name), nil
}

func (b *BotFacade) HandleUnsubscribe(ctx context.Context, recipient model.RecipientID) (string, error) {
	outcome, err := b.RegistryUC.Unsubscribe(ctx, recipient)
	if err != nil {
		return b.errorText(err), err
	}
	if outcome == model.OutcomeNotSubscribed {
		return b.Translator.T("not_subscribed"), nil
	}
	return b.Translator.T("unsubscribed"), nil
}

func (b *BotFacade) HandleStatus(recipient model.RecipientID) string {
	sub, ok := b.RegistryUC.Get(recipient)
	if !ok {
		return b.Translator.T("not_subscribed")
	}
	return b.Translator.T("status_subscribed", b.TriggerLabel(), b.scopeName(b.scopeOf(sub)))
}

func (b *BotFacade) scopeOf(sub model.Subscription) region.Region {
	if r, found := b.Regions.Lookup(sub.Region); found {
		return r
	}
	return b.Regions.National()
}

func (b *BotFacade) scopeName(r region.Region) string {
	if r.IsNational() {
		return b.Translator.T("national")
	}
	return r.Name
}

func (b *BotFacade) location() *time.Location {
	if b.Trigger.Location == nil {
		return time.UTC
	}
	return b.Trigger.Location
}

// errorText maps a failure to the message shown to the user.
func (b *BotFacade) errorText(err error) string {
	var amb *domain.AmbiguousRegionError
	switch {
	case errors.As(err, &amb):
		names := make([]string, 0, len(amb.Candidates))
		for _, code := range amb.Candidates {
			if r, ok := b.Regions.Lookup(code); ok {
				names = append(names, r.Name)
			}
		}
		return b.Translator.T("region_ambiguous", amb.Input, strings.Join(names, ", "))
	case errors.Is(err, domain.ErrUnknownRegion):
		return b.Translator.T("region_unknown")
	case errors.Is(err, domain.ErrFetchFailed), errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrEmptySeries), errors.Is(err, domain.ErrRender):
		return b.Translator.T("data_unavailable")
	default:
		return b.Translator.T("error_generic")
	}
}
