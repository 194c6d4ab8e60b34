package mock

import (
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/record"
)

func userUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodeOnto[discordgo.User](data, func(r record.Record) any {
		if u, ok := c.Users.Get(stringField(r, "id")); ok {
			return u.Data()
		}
		return nil
	})
	if !ok {
		return Result{}, false
	}
	u, ok := c.Users.Get(d.ID)
	if !ok {
		return Result{}, false
	}

	old := u.clone()
	u.patch(d)
	for _, g := range c.Guilds.Values() {
		if m, ok := g.Members.Get(u.ID); ok {
			m.User = u
		}
	}
	c.emit(&UserUpdate{Old: old, New: u})
	return Result{User: u}, true
}

func presenceUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[PresencePayload](data)
	if !ok || d.User == nil {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}

	u := c.ensureUser(d.User)
	var old *Presence
	if prev, ok := g.Presences.Get(u.ID); ok {
		old = prev.clone()
	}
	p := &Presence{
		Presence: discordgo.Presence{
			User:       &discordgo.User{ID: u.ID},
			Status:     d.Status,
			Activities: slices.Clone(d.Activities),
		},
		guild: g,
	}
	g.Presences.Set(u.ID, p)
	c.emit(&PresenceUpdate{Old: old, New: p})
	return Result{Guild: g, Presence: p, User: u}, true
}

func voiceStateUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[discordgo.VoiceState](data)
	if !ok || d.UserID == "" {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}
	if d.ChannelID != "" && !g.Channels.Has(d.ChannelID) {
		return Result{}, false
	}

	var old *VoiceState
	if prev, ok := g.VoiceStates.Get(d.UserID); ok {
		old = prev.clone()
	}
	vs := &VoiceState{VoiceState: *d, guild: g}
	if d.ChannelID == "" {
		g.VoiceStates.Delete(d.UserID)
	} else {
		g.VoiceStates.Set(d.UserID, vs)
	}
	if m, ok := g.Members.Get(d.UserID); ok {
		m.Mute = d.Mute
		m.Deaf = d.Deaf
	}
	c.emit(&VoiceStateUpdate{Old: old, New: vs})
	return Result{Guild: g, VoiceState: vs}, true
}
