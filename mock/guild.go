package mock

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/auditlog"
	"github.com/jamesprial/discordmock/cache"
	"github.com/jamesprial/discordmock/permissions"
)

// Guild is a cached guild. The collection fields of discordgo.Guild are
// shadowed by owned caches.
type Guild struct {
	discordgo.Guild

	Roles        *cache.Store[discordgo.Role, *Role]
	Channels     *cache.Cache[string, Channel]
	Members      *cache.Store[discordgo.Member, *Member]
	Presences    *cache.Cache[string, *Presence]
	VoiceStates  *cache.Cache[string, *VoiceState]
	Emojis       *cache.Store[discordgo.Emoji, *Emoji]
	Bans         *cache.Cache[string, *Ban]
	Invites      *cache.Store[discordgo.Invite, *Invite]
	Integrations *cache.Store[discordgo.Integration, *Integration]
	Webhooks     *cache.Store[discordgo.Webhook, *Webhook]
	AuditLog     *auditlog.Log

	client  *Client
	deleted bool
}

func (c *Client) buildGuild(d *discordgo.Guild) *Guild {
	g := &Guild{client: c}
	g.setData(d)
	g.Roles = cache.NewStore(
		func(d *discordgo.Role) string { return d.ID },
		func(d *discordgo.Role) *Role { return &Role{Role: *d, guild: g} },
		(*Role).patch,
	)
	g.Channels = cache.New[string, Channel]()
	g.Members = cache.NewStore(
		func(d *discordgo.Member) string { return d.User.ID },
		g.buildMember,
		(*Member).patch,
	)
	g.Presences = cache.New[string, *Presence]()
	g.VoiceStates = cache.New[string, *VoiceState]()
	g.Emojis = cache.NewStore(
		func(d *discordgo.Emoji) string { return d.ID },
		func(d *discordgo.Emoji) *Emoji { return &Emoji{Emoji: *d, guild: g} },
		(*Emoji).patch,
	)
	g.Bans = cache.New[string, *Ban]()
	g.Invites = cache.NewStore(
		func(d *discordgo.Invite) string { return d.Code },
		g.buildInvite,
		(*Invite).patch,
	)
	g.Integrations = cache.NewStore(
		func(d *discordgo.Integration) string { return d.ID },
		func(d *discordgo.Integration) *Integration { return &Integration{Integration: *d, guild: g} },
		(*Integration).patch,
	)
	g.Webhooks = cache.NewStore(
		func(d *discordgo.Webhook) string { return d.ID },
		func(d *discordgo.Webhook) *Webhook { return &Webhook{Webhook: *d, guild: g} },
		(*Webhook).patch,
	)
	g.AuditLog = auditlog.New(d.ID, c.ids, c.clock)
	return g
}

// setData copies the scalar fields of d. Collections live in the caches.
func (g *Guild) setData(d *discordgo.Guild) {
	g.Guild = *d
	g.Guild.Roles = nil
	g.Guild.Channels = nil
	g.Guild.Members = nil
	g.Guild.Presences = nil
	g.Guild.VoiceStates = nil
	g.Guild.Emojis = nil
	if g.Members != nil {
		g.MemberCount = g.Members.Len()
	}
}

func (g *Guild) clone() *Guild {
	cp := *g
	return &cp
}

// Client returns the owning client.
func (g *Guild) Client() *Client { return g.client }

// Deleted reports whether the guild was deleted or left.
func (g *Guild) Deleted() bool { return g.deleted }

// Data returns a discordgo snapshot of the guild with its collections filled
// in.
func (g *Guild) Data() *discordgo.Guild {
	d := g.Guild
	d.MemberCount = g.Members.Len()
	for _, r := range g.Roles.Values() {
		d.Roles = append(d.Roles, r.Data())
	}
	for _, ch := range g.Channels.Values() {
		d.Channels = append(d.Channels, ch.Data())
	}
	for _, m := range g.Members.Values() {
		d.Members = append(d.Members, m.Data())
	}
	for _, p := range g.Presences.Values() {
		d.Presences = append(d.Presences, p.Data())
	}
	for _, vs := range g.VoiceStates.Values() {
		d.VoiceStates = append(d.VoiceStates, vs.Data())
	}
	for _, e := range g.Emojis.Values() {
		d.Emojis = append(d.Emojis, e.Data())
	}
	return &d
}

// Everyone returns the @everyone role.
func (g *Guild) Everyone() *Role {
	r, _ := g.Roles.Get(g.ID)
	return r
}

// Role returns the cached role with id.
func (g *Guild) Role(id string) (*Role, bool) { return g.Roles.Get(id) }

// Channel returns the cached guild channel with id.
func (g *Guild) Channel(id string) (Channel, bool) { return g.Channels.Get(id) }

// Member returns the cached member for userID.
func (g *Guild) Member(userID string) (*Member, bool) { return g.Members.Get(userID) }

// Me returns the client user's member.
func (g *Guild) Me() (*Member, bool) { return g.Members.Get(g.client.User.ID) }

// OwnerMember returns the owner's member.
func (g *Guild) OwnerMember() (*Member, bool) { return g.Members.Get(g.OwnerID) }

// TextChannels returns the guild's text-capable channels.
func (g *Guild) TextChannels() []Channel {
	return g.Channels.Filter(func(ch Channel) bool {
		_, ok := ch.(textChannel)
		return ok
	})
}

// SortedRoles returns the roles from the top of the hierarchy down.
func (g *Guild) SortedRoles() []*Role {
	roles := g.Roles.Values()
	ranks := make([]permissions.Rank, len(roles))
	byID := make(map[string]*Role, len(roles))
	for i, r := range roles {
		ranks[i] = r.rank()
		byID[r.ID] = r
	}
	permissions.SortDescending(ranks)
	out := make([]*Role, len(ranks))
	for i, rk := range ranks {
		out[i] = byID[rk.ID]
	}
	return out
}

func (g *Guild) markDeleted() {
	g.deleted = true
	for _, r := range g.Roles.Values() {
		r.deleted = true
	}
	for _, m := range g.Members.Values() {
		m.deleted = true
	}
	for _, e := range g.Emojis.Values() {
		e.deleted = true
	}
	for _, inv := range g.Invites.Values() {
		inv.deleted = true
	}
	for _, w := range g.Webhooks.Values() {
		w.deleted = true
	}
	for _, in := range g.Integrations.Values() {
		in.deleted = true
	}
	for _, ch := range g.Channels.Values() {
		markChannelDeleted(ch)
	}
	g.Roles.Clear()
	g.Channels.Clear()
	g.Members.Clear()
	g.Presences.Clear()
	g.VoiceStates.Clear()
	g.Emojis.Clear()
	g.Bans.Clear()
	g.Invites.Clear()
	g.Integrations.Clear()
	g.Webhooks.Clear()
}
