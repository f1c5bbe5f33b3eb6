package telegram

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
)

var _ adapter.Deliverer = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.Deliverer for local/dev runs without a bot token.
// It logs deliveries instead of sending real Telegram messages.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	compLog := logger.With().Str("component", "NoopBot").Logger()
	return &NoopBotAdapter{log: &compLog}
}

// Deliver logs the report and simulates a small delay.
func (b *NoopBotAdapter) Deliver(ctx context.Context, recipient model.RecipientID, text string, attachments []adapter.Attachment) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	refs := make([]string, len(attachments))
	for i, a := range attachments {
		refs[i] = a.Ref
	}
	b.log.Info().
		Str("recipient", string(recipient)).
		Int("text_len", len(text)).
		Strs("charts", refs).
		Msg("noop delivery")
	return nil
}
