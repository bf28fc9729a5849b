// Package discord runs the !grok command bot.
package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/grokscout/grokscout/internal/format"
	"github.com/grokscout/grokscout/internal/search"
)

const helpText = "**Grok web search**\n\n" +
	"`!grok <query>` or `/grok <query>` — search the web and get an answer with sources\n\n" +
	"Example: `!grok latest Go release`"

// Bot wraps the Discord session around the search runner.
type Bot struct {
	session *discordgo.Session
	guildID string
	runner  *search.Runner
}

// New creates a new Discord bot. With an empty guildID every guild and DM
// is accepted.
func New(token string, guildID string, runner *search.Runner) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	b := &Bot{
		session: session,
		guildID: guildID,
		runner:  runner,
	}

	session.AddHandler(b.handleMessage)
	session.AddHandler(b.handleReady)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	return b, nil
}

// Start opens connection to Discord
func (b *Bot) Start() error {
	log.Println("Starting Discord bot...")
	return b.session.Open()
}

// Stop closes connection
func (b *Bot) Stop() error {
	log.Println("Stopping Discord bot...")
	return b.session.Close()
}

// handleReady logs when bot is connected
func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Discord bot connected as %s#%s", r.User.Username, r.User.Discriminator)
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore bot's own messages
	if m.Author.ID == s.State.User.ID {
		return
	}
	if b.guildID != "" && m.GuildID != b.guildID {
		return
	}

	query, ok := parseGrokCommand(m.Content)
	if !ok {
		return
	}
	if query == "" || strings.EqualFold(query, "help") {
		b.sendText(m.ChannelID, helpText)
		return
	}

	b.session.ChannelTyping(m.ChannelID)
	log.Printf("[discord] grok command in channel %s: %q", m.ChannelID, query)

	res := b.runner.Run(context.Background(), query)
	settings := b.runner.Settings()
	text := format.Display(res, format.Options{
		ShowSources: settings.ShowSources,
		MaxSources:  settings.MaxSources,
		PlainText:   true,
	})
	b.sendText(m.ChannelID, text)
}

// parseGrokCommand accepts both the ! and / prefixes; Discord delivers
// un-registered slash text as a plain message.
func parseGrokCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"!grok", "/grok"} {
		if text == prefix {
			return "", true
		}
		if strings.HasPrefix(text, prefix+" ") {
			return strings.TrimSpace(strings.TrimPrefix(text, prefix)), true
		}
	}
	return "", false
}

func (b *Bot) sendText(channelID, text string) {
	// Discord caps messages at 2000 characters
	for _, part := range splitMessage(text, 2000) {
		if _, err := b.session.ChannelMessageSend(channelID, part); err != nil {
			log.Printf("[discord] failed to send message to channel %s: %v", channelID, err)
			return
		}
	}
}

// splitMessage chunks text to at most limit characters per part, preferring
// newline boundaries and never cutting inside a multi-byte rune.
func splitMessage(text string, limit int) []string {
	var parts []string
	for {
		runes := []rune(text)
		if len(runes) <= limit {
			break
		}
		cut := len(string(runes[:limit]))
		if nl := strings.LastIndex(text[:cut], "\n"); nl > 0 {
			cut = nl
		}
		parts = append(parts, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
