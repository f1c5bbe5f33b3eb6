package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"vaccine-tracker-bot/internal/application"
	"vaccine-tracker-bot/internal/config"
	"vaccine-tracker-bot/internal/domain"
	"vaccine-tracker-bot/internal/domain/model"
	"vaccine-tracker-bot/internal/domain/ports/adapter"
	"vaccine-tracker-bot/internal/infra/i18n"
)

// Compile-time check
var _ adapter.Deliverer = (*RealTelegramBotAdapter)(nil)

// botAPI is the part of tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(c tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RateLimiter bounds commands per chat; a nil limiter disables limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot         botAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter RateLimiter
	translator  *i18n.Translator
	log         *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, limiter RateLimiter, translator *i18n.Translator, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newAdapter(bot, cfg, facade, limiter, translator, logger)
}

func newAdapter(bot botAPI, cfg *config.BotConfig, facade *application.BotFacade, limiter RateLimiter, translator *i18n.Translator, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}
	compLog := logger.With().Str("component", "TelegramBot").Logger()

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   limiter,
		translator:    translator,
		log:           &compLog,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if err := r.SetMenuCommands(); err != nil {
		r.log.Warn().Err(err).Msg("failed to set menu commands")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range updateChan {
				if err := r.handleUpdate(ctx, up); err != nil {
					r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
				}
			}
		}(i)
	}

	r.log.Info().Int("workers", r.updateWorkers).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			close(updateChan)
			wg.Wait()
			r.log.Info().Msg("polling stopped")
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				close(updateChan)
				wg.Wait()
				return nil
			}
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SetMenuCommands publishes the command list shown by Telegram clients.
func (r *RealTelegramBotAdapter) SetMenuCommands() error {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "latest", Description: "Latest vaccination figures"},
		tgbotapi.BotCommand{Command: "plot", Description: "Charts for Italy or a region"},
		tgbotapi.BotCommand{Command: "subscribe", Description: "Daily report"},
		tgbotapi.BotCommand{Command: "unsubscribe", Description: "Stop the daily report"},
		tgbotapi.BotCommand{Command: "status", Description: "Your subscription"},
		tgbotapi.BotCommand{Command: "help", Description: "Commands"},
	)
	_, err := r.bot.Request(cmds)
	return err
}

// SendMessage sends an HTML message to a chat.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := r.bot.Send(msg)
	return err
}

// SendCharts sends chart references as a photo, or as an album when there are several.
func (r *RealTelegramBotAdapter) SendCharts(ctx context.Context, chatID int64, attachments []adapter.Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch len(attachments) {
	case 0:
		return nil
	case 1:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(attachments[0].Ref))
		photo.Caption = attachments[0].Caption
		_, err := r.bot.Send(photo)
		return err
	}

	media := make([]interface{}, 0, len(attachments))
	for _, a := range attachments {
		p := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(a.Ref))
		p.Caption = a.Caption
		media = append(media, p)
	}
	_, err := r.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media))
	return err
}

// Deliver sends a report followed by its charts. Any transport failure is reported as domain.ErrDelivery.
func (r *RealTelegramBotAdapter) Deliver(ctx context.Context, recipient model.RecipientID, text string, attachments []adapter.Attachment) error {
	chatID, err := strconv.ParseInt(string(recipient), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid recipient %q", domain.ErrDelivery, recipient)
	}
	if err := r.SendMessage(ctx, chatID, text); err != nil {
		return fmt.Errorf("%w: message: %v", domain.ErrDelivery, err)
	}
	if err := r.SendCharts(ctx, chatID, attachments); err != nil {
		return fmt.Errorf("%w: charts: %v", domain.ErrDelivery, err)
	}
	return nil
}

func (r *RealTelegramBotAdapter) isAdmin(tgID int64) bool {
	_, ok := r.adminIDsMap[tgID]
	return ok
}
