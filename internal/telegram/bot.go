// Package telegram runs the /grok command bot over long polling.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/grokscout/grokscout/internal/format"
	"github.com/grokscout/grokscout/internal/search"
)

const helpText = `Grok web search.

Usage:
/grok <query> - search the web and get an answer with sources

Example:
/grok latest Go release`

// Bot wraps the Telegram bot around the search runner.
type Bot struct {
	bot            *bot.Bot
	runner         *search.Runner
	allowedUserIDs map[int64]bool
}

// New creates the bot. With an empty allow list every user is accepted.
func New(token string, allowedIDs []int64, runner *search.Runner) (*Bot, error) {
	allowed := make(map[int64]bool)
	for _, id := range allowedIDs {
		allowed[id] = true
	}

	b := &Bot{
		runner:         runner,
		allowedUserIDs: allowed,
	}

	tgBot, err := bot.New(token, bot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.bot = tgBot

	return b, nil
}

// Start begins long polling
func (b *Bot) Start(ctx context.Context) {
	log.Println("Starting Telegram bot...")
	b.bot.Start(ctx)
}

// handleUpdate processes all incoming updates
func (b *Bot) handleUpdate(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message
	chatID := message.Chat.ID
	userID := message.From.ID

	if len(b.allowedUserIDs) > 0 && !b.allowedUserIDs[userID] {
		log.Printf("[telegram] unauthorized access attempt from user %d", userID)
		return
	}

	text := strings.TrimSpace(message.Text)
	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		b.sendText(ctx, chatID, helpText)
	default:
		if query, ok := parseGrokCommand(text); ok {
			b.handleSearch(ctx, chatID, query)
		}
	}
}

// parseGrokCommand extracts the query from a /grok message. Commands in
// groups arrive as /grok@botname.
func parseGrokCommand(text string) (string, bool) {
	if text != "/grok" && !strings.HasPrefix(text, "/grok ") && !strings.HasPrefix(text, "/grok@") {
		return "", false
	}
	rest := strings.TrimPrefix(text, "/grok")
	if strings.HasPrefix(rest, "@") {
		if sp := strings.Index(rest, " "); sp >= 0 {
			rest = rest[sp:]
		} else {
			rest = ""
		}
	}
	return strings.TrimSpace(rest), true
}

// handleSearch runs one query and replies with the formatted result.
func (b *Bot) handleSearch(ctx context.Context, chatID int64, query string) {
	if query == "" || strings.EqualFold(query, "help") {
		b.sendText(ctx, chatID, helpText)
		return
	}

	b.sendTyping(ctx, chatID)
	log.Printf("[telegram] /grok from chat %d: %q", chatID, query)

	res := b.runner.Run(ctx, query)
	settings := b.runner.Settings()
	text := format.Display(res, format.Options{
		ShowSources: settings.ShowSources,
		MaxSources:  settings.MaxSources,
		PlainText:   true,
	})
	b.sendText(ctx, chatID, text)
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		log.Printf("[telegram] failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	b.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
}
