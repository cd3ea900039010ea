package bot

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"blogcast/internal/domain"
	"blogcast/internal/podcast"
	"blogcast/internal/ratelimiter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxBackoffSeconds         = 60
	initialBackoffSeconds     = 3
	backoffGrowthFactor       = 2
	resetOffsetBackoffSeconds = 30
	defaultGenerateTimeout    = 5 * time.Minute

	BotUpdateTimeout = 60
)

type Generator interface {
	Run(ctx context.Context, req podcast.Request) (*podcast.Result, error)
}

type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Config struct {
	Token           string
	AllowedUsers    []int64
	Keys            podcast.Keys
	Mode            domain.Mode
	GenerateTimeout time.Duration
}

// Bot turns blog links sent in chat into podcast files.
type Bot struct {
	api             *tgbotapi.BotAPI
	rateLimiter     *ratelimiter.RateLimiter
	messenger       messenger
	generator       Generator
	allowedUsers    []int64
	keys            podcast.Keys
	mode            domain.Mode
	generateTimeout time.Duration
	log             *slog.Logger
}

func New(cfg Config, generator Generator, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(cfg.Token))
	if err != nil {
		return nil, err
	}

	rateLimiter := ratelimiter.New(api, log)

	b := newBot(cfg, rateLimiter, generator, log)
	b.api = api
	b.rateLimiter = rateLimiter

	return b, nil
}

func newBot(cfg Config, m messenger, generator Generator, log *slog.Logger) *Bot {
	timeout := cfg.GenerateTimeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}

	return &Bot{
		messenger:       m,
		generator:       generator,
		allowedUsers:    cfg.AllowedUsers,
		keys:            cfg.Keys,
		mode:            cfg.Mode,
		generateTimeout: timeout,
		log:             log,
	}
}

// Start polls for updates until ctx is done. Updates are handled one at a
// time.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoffSeconds := initialBackoffSeconds

	for {
		select {
		case <-ctx.Done():
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		default:
		}

		updates := b.api.GetUpdatesChan(updateConfig)
		updatesClosed := false

		for !updatesClosed {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				b.log.InfoContext(ctx, "Bot context is done",
					"error", ctx.Err())
				return

			case update, ok := <-updates:
				if !ok {
					updatesClosed = true
					continue
				}
				updateConfig.Offset = update.UpdateID + 1

				b.handleUpdate(ctx, &update)
			}
		}

		if ctx.Err() != nil {
			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoffSeconds", backoffSeconds)

		time.Sleep(time.Duration(backoffSeconds) * time.Second)

		backoffSeconds = updateBackoffSeconds(backoffSeconds)

		if backoffSeconds >= resetOffsetBackoffSeconds {
			updateConfig.Offset = 0
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	chatID, chatType := chatContext(message.Chat)
	userID := message.From.ID

	if !b.userAllowed(userID) {
		b.log.DebugContext(ctx, "User is not allowed",
			"userID", userID,
			"chatID", chatID,
			"username", message.From.UserName,
			"chatType", chatType)

		return
	}

	if err := b.handleMessage(ctx, message); err != nil {
		b.log.ErrorContext(ctx, "Failed to handle message",
			"error", err,
			"chatID", chatID,
			"userID", userID,
			"chatType", chatType,
			"messageID", message.MessageID)
	}
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func chatContext(chat *tgbotapi.Chat) (int64, string) {
	if chat == nil {
		return 0, ""
	}

	return chat.ID, chat.Type
}

func updateBackoffSeconds(backoffSeconds int) int {
	if backoffSeconds < maxBackoffSeconds {
		backoffSeconds *= backoffGrowthFactor
		if backoffSeconds > maxBackoffSeconds {
			backoffSeconds = maxBackoffSeconds
		}
	}
	return backoffSeconds
}
