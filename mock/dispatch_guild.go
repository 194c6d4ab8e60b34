package mock

import (
	"reflect"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/record"
)

func guildCreate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[discordgo.Guild](data)
	if !ok || d.ID == "" {
		return Result{}, false
	}

	g, created := c.Guilds.Upsert(d)
	wasUnavailable := g.Unavailable
	if !created {
		g.setData(d)
	}
	g.Unavailable = false
	c.populateGuild(g, d)

	if created || wasUnavailable {
		c.emit(&GuildCreate{Guild: g})
	}
	return Result{Guild: g}, true
}

func (c *Client) populateGuild(g *Guild, d *discordgo.Guild) {
	for _, r := range d.Roles {
		if r != nil {
			g.Roles.Add(r)
		}
	}
	if g.Everyone() == nil {
		everyone := &discordgo.Role{}
		if err := record.Decode(defaults.EveryoneRole(g.ID), everyone); err == nil {
			g.Roles.Add(everyone)
		}
	}
	g.compactRoles()

	for _, ch := range d.Channels {
		if ch == nil {
			continue
		}
		cp := *ch
		cp.GuildID = g.ID
		c.cacheChannel(g, &cp)
	}
	for _, m := range d.Members {
		if m != nil && m.User != nil {
			g.Members.Add(m)
		}
	}
	for _, p := range d.Presences {
		if p != nil && p.User != nil {
			g.Presences.Set(p.User.ID, &Presence{Presence: *p, guild: g})
		}
	}
	for _, vs := range d.VoiceStates {
		if vs != nil && vs.ChannelID != "" {
			cp := *vs
			cp.GuildID = g.ID
			g.VoiceStates.Set(vs.UserID, &VoiceState{VoiceState: cp, guild: g})
		}
	}
	for _, e := range d.Emojis {
		if e != nil {
			g.Emojis.Add(e)
		}
	}
	g.MemberCount = g.Members.Len()
}

// cacheChannel caches the channel for d in the client and, for guild
// channels, in g. An existing channel of the same ID is patched.
func (c *Client) cacheChannel(g *Guild, d *discordgo.Channel) (Channel, bool) {
	if existing, ok := c.Channels.Get(d.ID); ok {
		patchChannel(existing, d)
		return existing, false
	}
	ch := c.cfg.channelFactory(c, g, d)
	if ch == nil {
		c.logger.Debug("channel type not modelled", "channel", d.ID, "type", d.Type)
		return nil, false
	}
	c.Channels.Set(d.ID, ch)
	if g != nil {
		g.Channels.Set(d.ID, ch)
	}
	return ch, true
}

func guildUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodeOnto[discordgo.Guild](data, func(r record.Record) any {
		if g, ok := c.Guild(stringField(r, "id")); ok {
			return g.Data()
		}
		return nil
	})
	if !ok {
		return Result{}, false
	}
	g, ok := c.Guild(d.ID)
	if !ok {
		return Result{}, false
	}

	old := g.clone()
	g.setData(d)
	c.emit(&GuildUpdate{Old: old, New: g})
	return Result{Guild: g}, true
}

func guildDelete(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[GuildDeletePayload](data)
	if !ok {
		return Result{}, false
	}
	g, ok := c.Guild(d.ID)
	if !ok {
		return Result{}, false
	}

	if d.Unavailable {
		g.Unavailable = true
		c.emit(&GuildUnavailable{Guild: g})
		return Result{Guild: g}, true
	}

	c.Guilds.Remove(g.ID)
	for _, id := range g.Channels.Keys() {
		c.Channels.Delete(id)
	}
	g.markDeleted()
	c.emit(&GuildDelete{Guild: g})
	return Result{Guild: g}, true
}

func guildBanAdd(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[BanPayload](data)
	if !ok || d.User == nil {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}

	ban := &Ban{User: c.ensureUser(d.User), Reason: d.Reason, guild: g}
	g.Bans.Set(d.User.ID, ban)
	c.emit(&GuildBanAdd{Guild: g, Ban: ban})
	return Result{Guild: g, Ban: ban, User: ban.User}, true
}

func guildBanRemove(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[BanPayload](data)
	if !ok || d.User == nil {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}

	ban, ok := g.Bans.Delete(d.User.ID)
	if !ok {
		ban = &Ban{User: c.ensureUser(d.User), Reason: d.Reason, guild: g}
	}
	c.emit(&GuildBanRemove{Guild: g, Ban: ban})
	return Result{Guild: g, Ban: ban, User: ban.User}, true
}

func guildEmojisUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[EmojisPayload](data)
	if !ok {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}

	seen := make(map[string]bool, len(d.Emojis))
	var out []*Emoji
	for _, ed := range d.Emojis {
		if ed == nil || ed.ID == "" {
			continue
		}
		seen[ed.ID] = true
		if existing, ok := g.Emojis.Get(ed.ID); ok {
			old := existing.clone()
			existing.patch(ed)
			if !reflect.DeepEqual(old.Emoji, existing.Emoji) {
				c.emit(&EmojiUpdate{Old: old, New: existing})
			}
			out = append(out, existing)
			continue
		}
		e := g.Emojis.Add(ed)
		c.emit(&EmojiCreate{Emoji: e})
		out = append(out, e)
	}
	for _, e := range g.Emojis.Values() {
		if seen[e.ID] {
			continue
		}
		g.Emojis.Remove(e.ID)
		e.deleted = true
		c.emit(&EmojiDelete{Emoji: e})
	}
	return Result{Guild: g, Emojis: out}, true
}

func guildIntegrationsUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[IntegrationsPayload](data)
	if !ok {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}

	if d.Integrations != nil {
		seen := make(map[string]bool, len(d.Integrations))
		for _, in := range d.Integrations {
			if in == nil {
				continue
			}
			seen[in.ID] = true
			g.Integrations.Add(in)
		}
		for _, in := range g.Integrations.Values() {
			if !seen[in.ID] {
				g.Integrations.Remove(in.ID)
				in.deleted = true
			}
		}
	}
	c.emit(&GuildIntegrationsUpdate{Guild: g})
	return Result{Guild: g, Integrations: g.Integrations.Values()}, true
}

func guildMemberAdd(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[discordgo.Member](data)
	if !ok || d.User == nil {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}

	m, created := g.Members.Upsert(d)
	g.MemberCount = g.Members.Len()
	if created {
		c.emit(&GuildMemberAdd{Member: m})
	}
	return Result{Guild: g, Member: m, User: m.User}, true
}

func guildMemberRemove(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[MemberRemovePayload](data)
	if !ok || d.User == nil {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}
	m, ok := g.Members.Remove(d.User.ID)
	if !ok {
		return Result{}, false
	}

	m.deleted = true
	g.Presences.Delete(d.User.ID)
	g.VoiceStates.Delete(d.User.ID)
	g.MemberCount = g.Members.Len()
	c.emit(&GuildMemberRemove{Member: m})
	return Result{Guild: g, Member: m, User: m.User}, true
}

func guildMemberUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodeOnto[discordgo.Member](data, func(r record.Record) any {
		g, ok := c.Guild(stringField(r, "guild_id"))
		if !ok {
			return nil
		}
		if m, ok := g.Members.Get(stringField(asRecord(r["user"]), "id")); ok {
			return m.Data()
		}
		return nil
	})
	if !ok || d.User == nil {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}
	m, ok := g.Members.Get(d.User.ID)
	if !ok {
		return Result{}, false
	}

	old := m.clone()
	m.patch(d)
	c.emit(&GuildMemberUpdate{Old: old, New: m})
	return Result{Guild: g, Member: m, User: m.User}, true
}

func guildMembersChunk(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[MembersChunkPayload](data)
	if !ok {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}

	members := make([]*Member, 0, len(d.Members))
	for _, md := range d.Members {
		if md == nil || md.User == nil {
			continue
		}
		members = append(members, g.Members.Add(md))
	}
	g.MemberCount = g.Members.Len()
	c.emit(&GuildMembersChunk{
		Guild:   g,
		Members: members,
		Index:   d.ChunkIndex,
		Count:   d.ChunkCount,
		Nonce:   d.Nonce,
	})
	return Result{Guild: g, Members: members}, true
}

func guildRoleCreate(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[RolePayload](data)
	if !ok || d.Role == nil {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}

	r, created := g.Roles.Upsert(d.Role)
	if !created {
		return Result{Guild: g, Role: r}, true
	}
	g.placeRole(r, d.Role.Position)
	c.emit(&GuildRoleCreate{Role: r})
	return Result{Guild: g, Role: r}, true
}

func guildRoleUpdate(c *Client, data any) (Result, bool) {
	d, ok := decodeOnto[RolePayload](data, func(r record.Record) any {
		g, ok := c.Guild(stringField(r, "guild_id"))
		if !ok {
			return nil
		}
		if role, ok := g.Roles.Get(stringField(asRecord(r["role"]), "id")); ok {
			return &RolePayload{GuildID: g.ID, Role: role.Data()}
		}
		return nil
	})
	if !ok || d.Role == nil {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}
	r, ok := g.Roles.Get(d.Role.ID)
	if !ok {
		return Result{}, false
	}

	old := r.clone()
	r.patch(d.Role)
	g.placeRole(r, d.Role.Position)
	c.emit(&GuildRoleUpdate{Old: old, New: r})
	return Result{Guild: g, Role: r}, true
}

func guildRoleDelete(c *Client, data any) (Result, bool) {
	d, ok := decodePayload[RoleDeletePayload](data)
	if !ok {
		return Result{}, false
	}
	g, ok := c.Guild(d.GuildID)
	if !ok {
		return Result{}, false
	}
	r, ok := g.Roles.Remove(d.RoleID)
	if !ok {
		return Result{}, false
	}

	r.deleted = true
	for _, m := range g.Members.Values() {
		m.Member.Roles = slices.DeleteFunc(m.Member.Roles, func(id string) bool { return id == d.RoleID })
	}
	for _, ch := range g.Channels.Values() {
		if gc, ok := AsGuildChannel(ch); ok {
			gc.PermissionOverwrites.Delete(d.RoleID)
		}
	}
	g.compactRoles()
	c.emit(&GuildRoleDelete{Role: r})
	return Result{Guild: g, Role: r}, true
}

// placeRole moves r to target and renumbers every other role so positions
// stay a permutation of [0, N) with @everyone at 0. The moved role takes the
// target slot, so it wins ties in the direction it travelled.
func (g *Guild) placeRole(r *Role, target int) {
	ordered := g.ascendingRoles(r)
	if r.IsEveryone() {
		g.renumber(ordered)
		return
	}
	idx := min(max(target, 1), len(ordered)+1) - 1
	ordered = slices.Insert(ordered, idx, r)
	g.renumber(ordered)
}

// compactRoles renumbers roles to close gaps.
func (g *Guild) compactRoles() {
	g.renumber(g.ascendingRoles(nil))
}

// ascendingRoles returns every role except @everyone and skip, from the
// bottom of the hierarchy up.
func (g *Guild) ascendingRoles(skip *Role) []*Role {
	sorted := g.SortedRoles()
	slices.Reverse(sorted)
	return slices.DeleteFunc(sorted, func(x *Role) bool {
		return x.IsEveryone() || (skip != nil && x.ID == skip.ID)
	})
}

func (g *Guild) renumber(ordered []*Role) {
	if everyone := g.Everyone(); everyone != nil {
		everyone.Position = 0
	}
	for i, r := range ordered {
		r.Position = i + 1
	}
}
