package mock

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/cache"
	"github.com/jamesprial/discordmock/record"
)

func messageCreate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[discordgo.Message](data)
	if !ok || d.ID == "" {
		return Result{}, false
	}
	ch, ok := c.Channels.Get(d.ChannelID)
	if !ok {
		return Result{}, false
	}
	t, ok := AsText(ch)
	if !ok {
		return Result{}, false
	}

	m, created := t.Messages.Upsert(d)
	ch.Base().LastMessageID = m.ID
	if created {
		c.emit(&MessageCreate{Message: m})
	}
	return Result{Guild: guildOf(ch), Channel: ch, Message: m, User: m.Author}, true
}

func messageUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodeOnto[discordgo.Message](data, func(r record.Record) any {
		if m, ok := c.cachedMessage(stringField(r, "channel_id"), stringField(r, "id")); ok {
			return m.Data()
		}
		return nil
	})
	if !ok {
		return Result{}, false
	}
	m, ok := c.cachedMessage(d.ChannelID, d.ID)
	if !ok {
		return Result{}, false
	}

	old := m.clone()
	m.patch(d)
	c.emit(&MessageUpdate{Old: old, New: m})
	return Result{Guild: m.Guild(), Channel: m.channel, Message: m}, true
}

func messageDelete(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[MessageDeletePayload](data)
	if !ok {
		return Result{}, false
	}
	ch, ok := c.Channels.Get(d.ChannelID)
	if !ok {
		return Result{}, false
	}
	t, ok := AsText(ch)
	if !ok {
		return Result{}, false
	}
	m, ok := t.Messages.Remove(d.ID)
	if !ok {
		return Result{}, false
	}

	m.deleted = true
	c.emit(&MessageDelete{Message: m})
	return Result{Guild: guildOf(ch), Channel: ch, Message: m}, true
}

func messageDeleteBulk(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[MessageDeleteBulkPayload](data)
	if !ok {
		return Result{}, false
	}
	ch, ok := c.Channels.Get(d.ChannelID)
	if !ok {
		return Result{}, false
	}
	t, ok := AsText(ch)
	if !ok {
		return Result{}, false
	}

	var removed []*Message
	for _, id := range d.IDs {
		if m, ok := t.Messages.Remove(id); ok {
			m.deleted = true
			removed = append(removed, m)
		}
	}
	c.emit(&MessageDeleteBulk{Channel: ch, Messages: removed})
	return Result{Guild: guildOf(ch), Channel: ch, Messages: removed}, true
}

func (c *Client) cachedMessage(channelID, messageID string) (*Message, bool) {
	ch, ok := c.Channels.Get(channelID)
	if !ok {
		return nil, false
	}
	t, ok := AsText(ch)
	if !ok {
		return nil, false
	}
	return t.Messages.Get(messageID)
}

func messageReactionAdd(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[ReactionPayload](data)
	if !ok {
		return Result{}, false
	}
	m, ok := c.cachedMessage(d.ChannelID, d.MessageID)
	if !ok {
		return Result{}, false
	}
	u, ok := c.Users.Get(d.UserID)
	if !ok {
		return Result{}, false
	}

	key := emojiKey(d.Emoji)
	r, ok := m.Reactions.Get(key)
	if !ok {
		r = &Reaction{Emoji: d.Emoji, Users: cache.New[string, *User](), message: m}
		m.Reactions.Set(key, r)
	}
	if r.Users.Has(u.ID) {
		return Result{Message: m, Reaction: r, User: u}, true
	}
	r.Users.Set(u.ID, u)
	r.Count++
	if u.ID == c.User.ID {
		r.Me = true
	}
	c.emit(&MessageReactionAdd{Reaction: r, User: u})
	return Result{Guild: m.Guild(), Channel: m.channel, Message: m, Reaction: r, User: u}, true
}

func messageReactionRemove(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[ReactionPayload](data)
	if !ok {
		return Result{}, false
	}
	m, ok := c.cachedMessage(d.ChannelID, d.MessageID)
	if !ok {
		return Result{}, false
	}
	r, ok := m.Reactions.Get(emojiKey(d.Emoji))
	if !ok {
		return Result{}, false
	}
	u, ok := r.Users.Delete(d.UserID)
	if !ok {
		return Result{}, false
	}

	r.Count--
	if u.ID == c.User.ID {
		r.Me = false
	}
	if r.Count <= 0 {
		m.Reactions.Delete(r.Key())
	}
	c.emit(&MessageReactionRemove{Reaction: r, User: u})
	return Result{Guild: m.Guild(), Channel: m.channel, Message: m, Reaction: r, User: u}, true
}

func messageReactionRemoveAll(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[ReactionRemoveAllPayload](data)
	if !ok {
		return Result{}, false
	}
	m, ok := c.cachedMessage(d.ChannelID, d.MessageID)
	if !ok {
		return Result{}, false
	}

	removed := m.Reactions.Values()
	m.Reactions.Clear()
	c.emit(&MessageReactionRemoveAll{Message: m, Removed: removed})
	return Result{Guild: m.Guild(), Channel: m.channel, Message: m}, true
}

func messageReactionRemoveEmoji(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[ReactionPayload](data)
	if !ok {
		return Result{}, false
	}
	m, ok := c.cachedMessage(d.ChannelID, d.MessageID)
	if !ok {
		return Result{}, false
	}
	r, ok := m.Reactions.Delete(emojiKey(d.Emoji))
	if !ok {
		return Result{}, false
	}

	c.emit(&MessageReactionRemoveEmoji{Reaction: r})
	return Result{Guild: m.Guild(), Channel: m.channel, Message: m, Reaction: r}, true
}

func typingStart(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[TypingPayload](data)
	if !ok {
		return Result{}, false
	}
	ch, ok := c.Channels.Get(d.ChannelID)
	if !ok {
		return Result{}, false
	}
	u, ok := c.Users.Get(d.UserID)
	if !ok {
		return Result{}, false
	}

	c.emit(&TypingStart{Channel: ch, User: u, Timestamp: time.Unix(d.Timestamp, 0).UTC()})
	return Result{Guild: guildOf(ch), Channel: ch, User: u}, true
}
