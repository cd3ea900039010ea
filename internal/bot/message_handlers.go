package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"blogcast/internal/blog"
	"blogcast/internal/markdown"
	"blogcast/internal/podcast"
	"blogcast/internal/summarizer"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram limits captions to 1024 characters after entity parsing.
const maxCaptionSummaryChars = 900

const welcomeText = `🎙 *Blog to Podcast*

Send me a link to a blog post and I will:

– fetch the post
– summarize it in a couple of paragraphs
– read the summary aloud and send it back as a WAV file

Feed URLs work too: I will pick the newest entry\.`

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.sendText(message.Chat.ID, welcomeText, 0)
	default:
		return b.handlePodcastRequest(ctx, text, message)
	}
}

func (b *Bot) handlePodcastRequest(ctx context.Context, text string, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	url, ok := blog.ExtractURL(text)
	if !ok {
		return b.sendText(chatID, "⚠️ "+markdown.EscapeV2(podcast.UserMessage(podcast.ErrEmptyURL)), message.MessageID)
	}

	var res *podcast.Result

	runErr := b.withSpinner(ctx, chatID, tgbotapi.ChatUploadDocument, func() error {
		runCtx, cancel := context.WithTimeout(ctx, b.generateTimeout)
		defer cancel()

		var err error
		res, err = b.generator.Run(runCtx, podcast.Request{
			URL:         url,
			Mode:        b.mode,
			Keys:        b.keys,
			RequestedBy: "tg:" + strconv.FormatInt(message.From.ID, 10),
		})
		return err
	})

	if runErr != nil {
		if podcast.IsUnexpected(runErr) {
			captureError(message, runErr)
		}

		if err := b.sendText(chatID, "❌ "+markdown.EscapeV2(podcast.UserMessage(runErr)), message.MessageID); err != nil {
			return errors.Join(runErr, fmt.Errorf("send message: %w", err))
		}

		return nil
	}

	return b.sendPodcast(chatID, message.MessageID, url, res)
}

func (b *Bot) sendPodcast(chatID int64, replyTo int, url string, res *podcast.Result) error {
	data, err := os.ReadFile(res.Artifact.Path)
	if err != nil {
		return fmt.Errorf("read podcast: %w", err)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  podcast.DownloadName,
		Bytes: data,
	})
	doc.Caption = podcastCaption(url, res.Summary)
	doc.ParseMode = tgbotapi.ModeMarkdownV2
	doc.ReplyToMessageID = replyTo

	if _, err = b.messenger.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}

	return nil
}

func podcastCaption(url string, summary string) string {
	var caption strings.Builder

	caption.WriteString("🎧 ")
	caption.WriteString(markdown.Link("Podcast generated successfully!", url))

	summary = strings.TrimSpace(summarizer.ClampSummary(summary, maxCaptionSummaryChars))
	if summary != "" {
		caption.WriteString("\n\n")
		caption.WriteString(markdown.EscapeV2(summary))
	}

	return caption.String()
}

func (b *Bot) sendText(chatID int64, text string, replyTo int) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.Warn("Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	message := tgbotapi.NewMessage(chatID, normalizedText)

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2

	message.DisableWebPagePreview = true
	message.ReplyToMessageID = replyTo

	_, err := b.messenger.Send(message)
	return err
}

func captureError(message *tgbotapi.Message, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("surface", "telegram")
		scope.SetUser(sentry.User{ID: strconv.FormatInt(message.From.ID, 10)})
		scope.SetExtra("chatID", message.Chat.ID)
		sentry.CaptureException(err)
	})
}
