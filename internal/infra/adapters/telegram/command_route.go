package telegram

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/infra/logging"
	"vaccine-tracker-bot/internal/infra/metrics"
	red "vaccine-tracker-bot/internal/infra/redis"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":       r.handleStartCommand,
		"help":        r.handleHelpCommand,
		"latest":      r.handleLatestCommand,
		"plot":        r.handlePlotCommand,
		"subscribe":   r.handleSubscribeCommand,
		"unsubscribe": r.handleUnsubscribeCommand,
		"status":      r.handleStatusCommand,
		"goodbot":     r.handleGoodBotCommand,
		"badbot":      r.handleBadBotCommand,

		"subscribers": r.adminOnly(r.handleSubscribersCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if message.From == nil || !r.isAdmin(message.From.ID) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("unknown_command"))
		}
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.Chat == nil || !message.IsCommand() {
		return nil
	}
	command := message.Command()
	chatID := message.Chat.ID
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithChatID(ctx, strconv.FormatInt(chatID, 10))
	metrics.IncTelegramCommand(command)

	if r.rateLimiter != nil && r.cfg.RateLimit > 0 {
		window := r.cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		allowed, err := r.rateLimiter.Allow(ctx, red.ChatCommandKey(chatID), r.cfg.RateLimit, window)
		if err != nil {
			// fail open when redis is unavailable
			logging.With(ctx, r.log).Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.SendMessage(ctx, chatID, r.translator.T("rate_limited"))
		}
	}

	handler, ok := r.commandRoutes()[command]
	if !ok {
		return r.SendMessage(ctx, chatID, r.translator.T("unknown_command"))
	}
	return handler(ctx, message)
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleStart())
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleHelp())
}

func (r *RealTelegramBotAdapter) handleLatestCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleLatest(ctx)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("latest report failed")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handlePlotCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, attachments, err := r.facade.HandlePlot(ctx, message.CommandArguments())
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Str("args", message.CommandArguments()).Msg("plot failed")
		return r.SendMessage(ctx, message.Chat.ID, text)
	}
	return r.SendCharts(ctx, message.Chat.ID, attachments)
}

func (r *RealTelegramBotAdapter) handleSubscribeCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleSubscribe(ctx, recipientOf(message), message.CommandArguments())
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("subscribe failed")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleUnsubscribeCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleUnsubscribe(ctx, recipientOf(message))
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("unsubscribe failed")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleStatusCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleStatus(recipientOf(message)))
}

func (r *RealTelegramBotAdapter) handleGoodBotCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("goodbot"))
}

func (r *RealTelegramBotAdapter) handleBadBotCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("badbot"))
}

func (r *RealTelegramBotAdapter) handleSubscribersCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, strconv.Itoa(r.facade.RegistryUC.Count()))
}

// recipientOf keys subscriptions by chat, so group chats subscribe as a whole.
func recipientOf(message *tgbotapi.Message) model.RecipientID {
	return model.RecipientID(strconv.FormatInt(message.Chat.ID, 10))
}
