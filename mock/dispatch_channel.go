package mock

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/record"
)

func channelCreate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[discordgo.Channel](data)
	if !ok || d.ID == "" {
		return Result{}, false
	}

	var g *Guild
	if d.GuildID != "" {
		if g, ok = c.Guild(d.GuildID); !ok {
			return Result{}, false
		}
	}
	for _, u := range d.Recipients {
		c.ensureUser(u)
	}

	ch, created := c.cacheChannel(g, d)
	if ch == nil {
		return Result{}, false
	}
	if created {
		c.emit(&ChannelCreate{Channel: ch})
	}
	return Result{Guild: g, Channel: ch}, true
}

func channelUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodeOnto[discordgo.Channel](data, func(r record.Record) any {
		if ch, ok := c.Channels.Get(stringField(r, "id")); ok {
			return ch.Data()
		}
		return nil
	})
	if !ok {
		return Result{}, false
	}
	existing, ok := c.Channels.Get(d.ID)
	if !ok {
		return Result{}, false
	}
	g := guildOf(existing)
	if g != nil {
		d.GuildID = g.ID
	}

	old := existing.clone()
	if existing.Base().Type == d.Type {
		patchChannel(existing, d)
		c.emit(&ChannelUpdate{Old: old, New: existing})
		return Result{Guild: g, Channel: existing}, true
	}

	// The variant changes: build the new one and move the messages over.
	rebuilt := c.cfg.channelFactory(c, g, d)
	if rebuilt == nil {
		return Result{}, false
	}
	if prev, ok := AsText(existing); ok {
		if next, ok := rebuilt.(interface{ setText(*TextState) }); ok {
			next.setText(prev.rebind(rebuilt))
		}
	}
	c.Channels.Set(d.ID, rebuilt)
	if g != nil {
		g.Channels.Set(d.ID, rebuilt)
	}
	c.emit(&ChannelUpdate{Old: old, New: rebuilt})
	return Result{Guild: g, Channel: rebuilt}, true
}

func (ch *TextChannel) setText(t *TextState)    { ch.TextState = t }
func (ch *NewsChannel) setText(t *TextState)    { ch.TextState = t }
func (ch *DMChannel) setText(t *TextState)      { ch.TextState = t }
func (ch *GroupDMChannel) setText(t *TextState) { ch.TextState = t }

func channelDelete(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[discordgo.Channel](data)
	if !ok {
		return Result{}, false
	}
	ch, ok := c.Channels.Delete(d.ID)
	if !ok {
		return Result{}, false
	}

	g := guildOf(ch)
	if g != nil {
		g.Channels.Delete(d.ID)
		for _, inv := range g.Invites.Values() {
			if inv.ChannelID == d.ID {
				g.Invites.Remove(inv.Code)
				inv.deleted = true
			}
		}
		for _, w := range g.Webhooks.Values() {
			if w.ChannelID == d.ID {
				g.Webhooks.Remove(w.ID)
				w.deleted = true
			}
		}
		for _, vs := range g.VoiceStates.Values() {
			if vs.ChannelID != d.ID {
				continue
			}
			old := vs.clone()
			g.VoiceStates.Delete(vs.UserID)
			vs.ChannelID = ""
			c.emit(&VoiceStateUpdate{Old: old, New: vs})
		}
	}
	markChannelDeleted(ch)
	c.emit(&ChannelDelete{Channel: ch})
	return Result{Guild: g, Channel: ch}, true
}

func channelPinsUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[ChannelPinsPayload](data)
	if !ok {
		return Result{}, false
	}
	ch, ok := c.Channels.Get(d.ChannelID)
	if !ok {
		return Result{}, false
	}

	ch.Base().LastPinTimestamp = d.LastPinTimestamp
	c.emit(&ChannelPinsUpdate{Channel: ch, LastPinTimestamp: d.LastPinTimestamp})
	return Result{Guild: guildOf(ch), Channel: ch}, true
}

func webhooksUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[WebhooksPayload](data)
	if !ok {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}
	ch, ok := g.Channels.Get(d.ChannelID)
	if !ok {
		return Result{}, false
	}

	if d.Webhooks != nil {
		seen := make(map[string]bool, len(d.Webhooks))
		for _, w := range d.Webhooks {
			if w == nil {
				continue
			}
			seen[w.ID] = true
			g.Webhooks.Add(w)
		}
		for _, w := range g.Webhooks.Values() {
			if w.ChannelID == d.ChannelID && !seen[w.ID] {
				g.Webhooks.Remove(w.ID)
				w.deleted = true
			}
		}
	}
	c.emit(&WebhooksUpdate{Channel: ch})
	return Result{Guild: g, Channel: ch, Webhooks: channelWebhooks(g, d.ChannelID)}, true
}

func channelWebhooks(g *Guild, channelID string) []*Webhook {
	return g.Webhooks.Filter(func(w *Webhook) bool { return w.ChannelID == channelID })
}

func inviteCreate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[InvitePayload](data)
	if !ok || d.Code == "" {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}
	if !g.Channels.Has(d.ChannelID) {
		return Result{}, false
	}

	inv := g.Invites.Add(&discordgo.Invite{
		Code:      d.Code,
		Channel:   &discordgo.Channel{ID: d.ChannelID},
		Inviter:   d.Inviter,
		CreatedAt: d.CreatedAt,
		MaxAge:    d.MaxAge,
		MaxUses:   d.MaxUses,
		Temporary: d.Temporary,
		Uses:      d.Uses,
	})
	c.emit(&InviteCreate{Invite: inv})
	return Result{Guild: g, Invite: inv}, true
}

func inviteDelete(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[InviteDeletePayload](data)
	if !ok {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}
	inv, ok := g.Invites.Remove(d.Code)
	if !ok {
		return Result{}, false
	}

	inv.deleted = true
	c.emit(&InviteDelete{Invite: inv})
	return Result{Guild: g, Invite: inv}, true
}
