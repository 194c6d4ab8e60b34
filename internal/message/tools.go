// Package message provides MCP tool handlers for Discord message operations.
package message

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/internal/discord"
	"github.com/jamesprial/discordmock/internal/queue"
	"github.com/jamesprial/discordmock/internal/resolve"
	"github.com/jamesprial/discordmock/internal/tools"
)

// MessageSummary is the response shape returned by discord_get_messages.
type MessageSummary struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Edited         bool      `json:"edited,omitempty"`
	Pinned         bool      `json:"pinned,omitempty"`
	ReplyTo        string    `json:"reply_to,omitempty"`
	Attachments    int       `json:"attachments,omitempty"`
	Reactions      []string  `json:"reactions,omitempty"`
}

func summarize(m *discordgo.Message) MessageSummary {
	s := MessageSummary{
		ID:          m.ID,
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		Edited:      m.EditedTimestamp != nil,
		Pinned:      m.Pinned,
		Attachments: len(m.Attachments),
	}
	if m.Author != nil {
		s.AuthorID = m.Author.ID
		s.AuthorUsername = m.Author.Username
	}
	if m.MessageReference != nil {
		s.ReplyTo = m.MessageReference.MessageID
	}
	for _, r := range m.Reactions {
		if r.Emoji != nil {
			s.Reactions = append(s.Reactions, r.Emoji.APIName())
		}
	}
	return s
}

// MessageTools returns all tool registrations for Discord message operations.
func MessageTools(
	dg discord.DiscordClient,
	q *queue.Queue,
	r resolve.ChannelResolver,
	logger *slog.Logger,
) []tools.Registration {
	logger = tools.DefaultLogger(logger)
	return []tools.Registration{
		toolPollEvents(q, r, logger),
		toolSendMessage(dg, r, logger),
		toolGetMessages(dg, r, logger),
		toolEditMessage(dg, r, logger),
		toolDeleteMessage(dg, r, logger),
		toolBulkDelete(dg, r, logger),
		toolPinMessage(dg, r, logger),
		toolReaction(dg, r, logger, "discord_add_reaction"),
		toolReaction(dg, r, logger, "discord_remove_reaction"),
		toolTyping(dg, r, logger),
	}
}
