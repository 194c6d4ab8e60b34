package mock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/auditlog"
	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/internal/snowflakes"
	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

// ErrClosed is returned by operations that need the gateway after Close.
var ErrClosed = errors.New("mock: gateway closed")

// GuildTemplateRole is a role in a CreateGuild request. ID is a placeholder
// that other template entries may reference; the first role configures
// @everyone.
type GuildTemplateRole struct {
	ID          string
	Name        string
	Color       int
	Hoist       bool
	Mentionable bool
	Permissions mo.Option[int64]
}

// GuildTemplateChannel is a channel in a CreateGuild request. ID and
// ParentID are placeholders, as are overwrite IDs that name template roles.
type GuildTemplateChannel struct {
	ID                   string
	ParentID             string
	Name                 string
	Type                 discordgo.ChannelType
	Topic                string
	PermissionOverwrites []*discordgo.PermissionOverwrite
}

// CreateGuildOptions is the body of a guild creation.
type CreateGuildOptions struct {
	Name              string
	Icon              string
	VerificationLevel discordgo.VerificationLevel
	Roles             []GuildTemplateRole
	Channels          []GuildTemplateChannel
}

// CreateGuild creates a guild owned by the client user and waits for its
// GUILD_CREATE to arrive on the gateway. If the echo does not arrive within
// the guild create timeout, the packet is dispatched directly and the cached
// guild returned.
func (c *Client) CreateGuild(ctx context.Context, opts CreateGuildOptions) (*Guild, error) {
	data, err := execValue(ctx, c, func() (*discordgo.Guild, error) {
		if err := checkLength(routeGuilds, apierr.MethodPost, "name", opts.Name, 2, 100); err != nil {
			return nil, err
		}
		if c.Guilds.Len() >= c.cfg.maxGuilds {
			return nil, apierr.BadRequest(apierr.CodeMaxGuilds,
				fmt.Sprintf("Maximum number of guilds reached (%d)", c.cfg.maxGuilds), routeGuilds, apierr.MethodPost)
		}
		return c.synthesizeGuild(opts)
	})
	if err != nil {
		return nil, err
	}

	// The lane echo and the fallback each claim the create; only the
	// winner dispatches it.
	var claimed atomic.Bool
	fallback := func() (*Guild, error) {
		return execValue(context.Background(), c, func() (*Guild, error) {
			if claimed.CompareAndSwap(false, true) {
				c.dispatch(EventGuildCreate, data)
			}
			if g, ok := c.Guild(data.ID); ok {
				return g, nil
			}
			return nil, unknown(apierr.CodeUnknownGuild, routeGuilds, apierr.MethodPost)
		})
	}
	w := Await(c, WaitSpec[*Guild]{
		Op:      "create guild",
		Timeout: c.cfg.guildCreateTimeout,
		Match: func(ev Event) (*Guild, Outcome) {
			if e, ok := ev.(*GuildCreate); ok && e.Guild.ID == data.ID {
				return e.Guild, Resolve
			}
			return nil, Ignore
		},
		Fallback: fallback,
	})
	echo := func() {
		if claimed.CompareAndSwap(false, true) {
			c.gateway.dispatch(Packet{Type: EventGuildCreate, Data: data})
		}
	}
	if !c.gateway.Submit(echo) {
		w.settle(fallback())
	}
	return w.Wait(ctx)
}

func (c *Client) synthesizeGuild(opts CreateGuildOptions) (*discordgo.Guild, error) {
	path, method := routeGuilds, apierr.MethodPost
	now := c.now()
	id := c.ids.Next()

	d := &discordgo.Guild{}
	if err := record.Decode(defaults.Guild(id, c.User.ID, now), d); err != nil {
		return nil, err
	}
	d.Name = opts.Name
	d.Icon = opts.Icon
	d.VerificationLevel = opts.VerificationLevel

	remap := map[string]string{}
	everyone := &discordgo.Role{}
	if err := record.Decode(defaults.EveryoneRole(id), everyone); err != nil {
		return nil, err
	}
	d.Roles = []*discordgo.Role{everyone}
	for i, tr := range opts.Roles {
		if i == 0 {
			if tr.ID != "" {
				remap[tr.ID] = id
			}
			everyone.Permissions = tr.Permissions.OrElse(everyone.Permissions)
			continue
		}
		rid := c.ids.Next()
		if tr.ID != "" {
			remap[tr.ID] = rid
		}
		role := &discordgo.Role{}
		if err := record.Decode(defaults.Role(rid), role); err != nil {
			return nil, err
		}
		if tr.Name != "" {
			role.Name = tr.Name
		}
		role.Color = tr.Color
		role.Hoist = tr.Hoist
		role.Mentionable = tr.Mentionable
		role.Permissions = tr.Permissions.OrElse(permissions.DefaultEveryone)
		role.Position = len(d.Roles)
		d.Roles = append(d.Roles, role)
	}

	templates := opts.Channels
	if len(templates) == 0 {
		templates = []GuildTemplateChannel{
			{Name: "general", Type: discordgo.ChannelTypeGuildText},
			{Name: "General", Type: discordgo.ChannelTypeGuildVoice},
		}
	}
	types := make(map[string]discordgo.ChannelType, len(templates))
	for _, tc := range templates {
		cid := c.ids.Next()
		if tc.ID != "" {
			remap[tc.ID] = cid
			types[tc.ID] = tc.Type
		}
	}
	for i, tc := range templates {
		field := fmt.Sprintf("channels.%d", i)
		if err := checkLength(path, method, field+".name", tc.Name, 1, 100); err != nil {
			return nil, err
		}
		if !isGuildChannelType(tc.Type) {
			return nil, apierr.FieldError(path, method, field+".type", "BASE_TYPE_CHOICES", "Value must be one of the guild channel types.")
		}
		if tc.ParentID != "" {
			if t, ok := types[tc.ParentID]; !ok || t != discordgo.ChannelTypeGuildCategory || tc.Type == discordgo.ChannelTypeGuildCategory {
				return nil, apierr.FieldError(path, method, field+".parent_id", "CHANNEL_PARENT_INVALID_TYPE", "Not a category")
			}
		}

		cid := c.ids.Next()
		if tc.ID != "" {
			cid = remap[tc.ID]
		}
		ch := &discordgo.Channel{}
		if err := record.Decode(defaults.Channel(cid, tc.Type), ch); err != nil {
			return nil, err
		}
		ch.GuildID = id
		ch.Name = channelName(tc.Type, tc.Name)
		ch.Topic = tc.Topic
		ch.ParentID = remap[tc.ParentID]
		ch.Position = i
		for _, ow := range tc.PermissionOverwrites {
			cp := *ow
			if real, ok := remap[ow.ID]; ok {
				cp.ID = real
			}
			ch.PermissionOverwrites = append(ch.PermissionOverwrites, &cp)
		}
		d.Channels = append(d.Channels, ch)
	}

	me := &discordgo.Member{}
	if err := record.Decode(defaults.Member(id, c.User.Data(), now), me); err != nil {
		return nil, err
	}
	d.Members = []*discordgo.Member{me}
	d.MemberCount = 1
	d.Owner = true
	return d, nil
}

func isGuildChannelType(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice,
		discordgo.ChannelTypeGuildCategory, defaults.ChannelTypeStore:
		return true
	}
	return false
}

// channelName applies Discord's naming rules for text channels: lower case,
// spaces become dashes.
func channelName(t discordgo.ChannelType, name string) string {
	if t != discordgo.ChannelTypeGuildText && t != discordgo.ChannelTypeGuildNews {
		return name
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func (g *Guild) check(path string, method apierr.Method) error {
	if g.deleted {
		return unknown(apierr.CodeUnknownGuild, path, method)
	}
	return nil
}

func (g *Guild) scalar() *discordgo.Guild {
	d := g.Guild
	return &d
}

// GuildEdit is a partial guild update. Absent options are left unchanged.
type GuildEdit struct {
	Name              mo.Option[string]
	Icon              mo.Option[string]
	Description       mo.Option[string]
	VerificationLevel mo.Option[discordgo.VerificationLevel]
	AfkChannelID      mo.Option[string]
	AfkTimeout        mo.Option[int]
	SystemChannelID   mo.Option[string]
	OwnerID           mo.Option[string]
	Reason            string
}

// Edit updates the guild's settings. Requires MANAGE_GUILD; transferring
// ownership requires being the owner.
func (g *Guild) Edit(ctx context.Context, e GuildEdit) (*Guild, error) {
	c := g.client
	return execValue(ctx, c, func() (*Guild, error) {
		return c.editGuild(c.User, g, e)
	})
}

func (c *Client) editGuild(actor *User, g *Guild, e GuildEdit) (*Guild, error) {
	path, method := routeGuild(g.ID), apierr.MethodPatch
	if err := g.check(path, method); err != nil {
		return nil, err
	}
	if err := c.require(actor, g, nil, permissions.ManageGuild, path, method); err != nil {
		return nil, err
	}

	partial := record.Record{}
	if name, ok := e.Name.Get(); ok {
		if err := checkLength(path, method, "name", name, 2, 100); err != nil {
			return nil, err
		}
		partial["name"] = name
	}
	if timeout, ok := e.AfkTimeout.Get(); ok {
		if !slices.Contains([]int{60, 300, 900, 1800, 3600}, timeout) {
			return nil, apierr.FieldError(path, method, "afk_timeout", "BASE_TYPE_CHOICES", "Value must be one of (60, 300, 900, 1800, 3600).")
		}
		partial["afk_timeout"] = timeout
	}
	if id, ok := e.AfkChannelID.Get(); ok {
		if id != "" {
			ch, found := g.Channels.Get(id)
			if !found {
				return nil, unknown(apierr.CodeUnknownChannel, path, method)
			}
			if _, voice := ch.(*VoiceChannel); !voice {
				return nil, apierr.FieldError(path, method, "afk_channel_id", "CHANNEL_TYPE_INVALID", "Channel must be a voice channel.")
			}
		}
		partial["afk_channel_id"] = id
	}
	if id, ok := e.SystemChannelID.Get(); ok {
		if id != "" {
			ch, found := g.Channels.Get(id)
			if !found {
				return nil, unknown(apierr.CodeUnknownChannel, path, method)
			}
			if _, text := ch.(*TextChannel); !text {
				return nil, apierr.FieldError(path, method, "system_channel_id", "CHANNEL_TYPE_INVALID", "Channel must be a text channel.")
			}
		}
		partial["system_channel_id"] = id
	}
	if owner, ok := e.OwnerID.Get(); ok {
		if actor.ID != g.OwnerID {
			return nil, apierr.MissingPermissions(path, method)
		}
		if !g.Members.Has(owner) {
			return nil, unknown(apierr.CodeUnknownMember, path, method)
		}
		partial["owner_id"] = owner
	}
	setOpt(partial, "icon", e.Icon)
	setOpt(partial, "description", e.Description)
	setOpt(partial, "verification_level", e.VerificationLevel)

	next, changes, err := applyPatch(g.scalar(), partial)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return g, nil
	}
	c.dispatch(EventGuildUpdate, next)
	g.audit(actor, discordgo.AuditLogActionGuildUpdate, g.ID, e.Reason, changes, nil)
	return g, nil
}

// SetWidget enables or disables the guild widget and sets its invite
// channel. Requires MANAGE_GUILD.
func (g *Guild) SetWidget(ctx context.Context, enabled bool, channelID, reason string) (*Guild, error) {
	c := g.client
	return execValue(ctx, c, func() (*Guild, error) {
		path, method := routeGuildWidget(g.ID), apierr.MethodPatch
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.ManageGuild, path, method); err != nil {
			return nil, err
		}
		if channelID != "" && !g.Channels.Has(channelID) {
			return nil, unknown(apierr.CodeUnknownChannel, path, method)
		}
		next, changes, err := applyPatch(g.scalar(), record.Record{
			"widget_enabled":    enabled,
			"widget_channel_id": channelID,
		})
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			return g, nil
		}
		c.dispatch(EventGuildUpdate, next)
		g.audit(c.User, discordgo.AuditLogActionGuildUpdate, g.ID, reason, changes, nil)
		return g, nil
	})
}

// Delete deletes the guild. Only the owner may.
func (g *Guild) Delete(ctx context.Context) error {
	c := g.client
	return c.exec(ctx, func() error {
		path, method := routeGuild(g.ID), apierr.MethodDelete
		if err := g.check(path, method); err != nil {
			return err
		}
		if c.User.ID != g.OwnerID {
			return apierr.MissingPermissions(path, method)
		}
		c.dispatch(EventGuildDelete, &GuildDeletePayload{ID: g.ID})
		return nil
	})
}

// Leave removes the client user from the guild. The owner cannot leave.
func (g *Guild) Leave(ctx context.Context) error {
	c := g.client
	return c.exec(ctx, func() error {
		path, method := routeUsersMeGuilds+"/"+g.ID, apierr.MethodDelete
		if err := g.check(path, method); err != nil {
			return err
		}
		if c.User.ID == g.OwnerID {
			return apierr.BadRequest(apierr.CodeInvalidGuild, "Invalid Guild", path, method)
		}
		c.dispatch(EventGuildDelete, &GuildDeletePayload{ID: g.ID})
		return nil
	})
}

// FetchAuditLogs queries the guild's audit log. Requires VIEW_AUDIT_LOG.
func (g *Guild) FetchAuditLogs(ctx context.Context, q auditlog.Query) ([]auditlog.Entry, error) {
	c := g.client
	return execValue(ctx, c, func() ([]auditlog.Entry, error) {
		path, method := routeGuildAuditLogs(g.ID), apierr.MethodGet
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.ViewAuditLog, path, method); err != nil {
			return nil, err
		}
		return g.AuditLog.Query(q)
	})
}

// FetchBans lists the guild's bans. Requires BAN_MEMBERS.
func (g *Guild) FetchBans(ctx context.Context) ([]*Ban, error) {
	c := g.client
	return execValue(ctx, c, func() ([]*Ban, error) {
		path, method := routeGuildBans(g.ID), apierr.MethodGet
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.BanMembers, path, method); err != nil {
			return nil, err
		}
		return g.Bans.Values(), nil
	})
}

// FetchBan returns the ban for userID. Requires BAN_MEMBERS.
func (g *Guild) FetchBan(ctx context.Context, userID string) (*Ban, error) {
	c := g.client
	return execValue(ctx, c, func() (*Ban, error) {
		path, method := routeGuildBan(g.ID, userID), apierr.MethodGet
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.BanMembers, path, method); err != nil {
			return nil, err
		}
		ban, ok := g.Bans.Get(userID)
		if !ok {
			return nil, unknown(apierr.CodeUnknownBan, path, method)
		}
		return ban, nil
	})
}

// BanOptions configures a ban.
type BanOptions struct {
	// DeleteMessageDays purges the user's messages from the last N days,
	// 0 to 7.
	DeleteMessageDays int
	Reason            string
}

// Ban bans userID, who need not be a member. Requires BAN_MEMBERS and, for
// members, outranking them.
func (g *Guild) Ban(ctx context.Context, userID string, opts BanOptions) error {
	c := g.client
	return c.exec(ctx, func() error {
		return c.ban(c.User, g, userID, opts)
	})
}

func (c *Client) ban(actor *User, g *Guild, userID string, opts BanOptions) error {
	path, method := routeGuildBan(g.ID, userID), apierr.MethodPut
	if err := g.check(path, method); err != nil {
		return err
	}
	if err := checkRange(path, method, "delete_message_days", opts.DeleteMessageDays, 0, 7); err != nil {
		return err
	}
	if err := c.require(actor, g, nil, permissions.BanMembers, path, method); err != nil {
		return err
	}
	u, err := c.banTarget(userID, path, method)
	if err != nil {
		return err
	}
	member, isMember := g.Members.Get(userID)
	if isMember {
		if userID == g.OwnerID {
			return apierr.MissingPermissions(path, method)
		}
		if err := c.requireAboveMember(actor, g, member, path, method); err != nil {
			return err
		}
	}
	if g.Bans.Has(userID) {
		return nil
	}

	c.dispatch(EventGuildBanAdd, &BanPayload{GuildID: g.ID, User: u.Data(), Reason: opts.Reason})
	if isMember {
		c.dispatch(EventGuildMemberRemove, &MemberRemovePayload{GuildID: g.ID, User: u.Data()})
	}
	g.audit(actor, discordgo.AuditLogActionMemberBanAdd, userID, opts.Reason, nil, map[string]string{
		"delete_member_days": strconv.Itoa(opts.DeleteMessageDays),
	})

	if opts.DeleteMessageDays > 0 {
		since := c.now().Add(-time.Duration(opts.DeleteMessageDays) * 24 * time.Hour)
		guildID := g.ID
		c.gateway.Submit(func() { c.purgeMessages(guildID, userID, since) })
	}
	return nil
}

// banTarget returns the user for a ban. Any snowflake can be banned, so an
// uncached ID gets a placeholder user record.
func (c *Client) banTarget(userID, path string, method apierr.Method) (*User, error) {
	if u, ok := c.Users.Get(userID); ok {
		return u, nil
	}
	if _, err := snowflakes.Time(userID); err != nil {
		return nil, apierr.FieldError(path, method, "user_id", "NUMBER_TYPE_COERCE", "Value is not snowflake.")
	}
	d := &discordgo.User{}
	if err := record.Decode(defaults.User(userID), d); err != nil {
		return nil, err
	}
	return c.Users.Add(d), nil
}

// purgeMessages deletes userID's cached messages sent since the cutoff in
// every text channel of the guild. It runs on the gateway lane after a ban,
// channel by channel with no ordering guarantee relative to other work.
func (c *Client) purgeMessages(guildID, userID string, since time.Time) {
	c.gateway.run(func() {
		g, ok := c.Guild(guildID)
		if !ok {
			return
		}
		for _, ch := range g.TextChannels() {
			t, _ := AsText(ch)
			var ids []string
			for _, m := range t.Messages.Values() {
				if m.Author != nil && m.Author.ID == userID && !m.Timestamp.Before(since) {
					ids = append(ids, m.ID)
				}
			}
			switch len(ids) {
			case 0:
			case 1:
				c.dispatch(EventMessageDelete, &MessageDeletePayload{ID: ids[0], ChannelID: ch.Base().ID, GuildID: g.ID})
			default:
				c.dispatch(EventMessageDeleteBulk, &MessageDeleteBulkPayload{IDs: ids, ChannelID: ch.Base().ID, GuildID: g.ID})
			}
		}
	})
}

// Unban lifts the ban on userID. Requires BAN_MEMBERS.
func (g *Guild) Unban(ctx context.Context, userID, reason string) error {
	c := g.client
	return c.exec(ctx, func() error {
		path, method := routeGuildBan(g.ID, userID), apierr.MethodDelete
		if err := g.check(path, method); err != nil {
			return err
		}
		if err := c.require(c.User, g, nil, permissions.BanMembers, path, method); err != nil {
			return err
		}
		ban, ok := g.Bans.Get(userID)
		if !ok {
			return unknown(apierr.CodeUnknownBan, path, method)
		}
		c.dispatch(EventGuildBanRemove, &BanPayload{GuildID: g.ID, User: ban.User.Data()})
		g.audit(c.User, discordgo.AuditLogActionMemberBanRemove, userID, reason, nil, nil)
		return nil
	})
}

// FetchInvites lists the guild's invites. Requires MANAGE_GUILD.
func (g *Guild) FetchInvites(ctx context.Context) ([]*Invite, error) {
	c := g.client
	return execValue(ctx, c, func() ([]*Invite, error) {
		path, method := routeGuildInvites(g.ID), apierr.MethodGet
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.ManageGuild, path, method); err != nil {
			return nil, err
		}
		return g.Invites.Values(), nil
	})
}

// FetchWebhooks lists the guild's webhooks. Requires MANAGE_WEBHOOKS.
func (g *Guild) FetchWebhooks(ctx context.Context) ([]*Webhook, error) {
	c := g.client
	return execValue(ctx, c, func() ([]*Webhook, error) {
		path, method := routeGuildWebhooks(g.ID), apierr.MethodGet
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.ManageWebhooks, path, method); err != nil {
			return nil, err
		}
		return g.Webhooks.Values(), nil
	})
}

// FetchIntegrations lists the guild's integrations. Requires MANAGE_GUILD.
func (g *Guild) FetchIntegrations(ctx context.Context) ([]*Integration, error) {
	c := g.client
	return execValue(ctx, c, func() ([]*Integration, error) {
		path, method := routeGuildIntegrations(g.ID), apierr.MethodGet
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.ManageGuild, path, method); err != nil {
			return nil, err
		}
		return g.Integrations.Values(), nil
	})
}

// CreateIntegration attaches an integration of kind ("twitch", "youtube" or
// "discord"). Requires MANAGE_GUILD.
func (g *Guild) CreateIntegration(ctx context.Context, kind, reason string) (*Integration, error) {
	c := g.client
	return execValue(ctx, c, func() (*Integration, error) {
		path, method := routeGuildIntegrations(g.ID), apierr.MethodPost
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.ManageGuild, path, method); err != nil {
			return nil, err
		}
		if !slices.Contains([]string{"twitch", "youtube", "discord"}, kind) {
			return nil, apierr.FieldError(path, method, "type", "BASE_TYPE_CHOICES", "Value must be one of ('twitch', 'youtube', 'discord').")
		}

		d := &discordgo.Integration{}
		if err := record.Decode(defaults.Integration(c.ids.Next(), kind, c.User.Data(), c.now()), d); err != nil {
			return nil, err
		}
		list := append(integrationData(g), d)
		c.dispatch(EventGuildIntegrationsUpdate, &IntegrationsPayload{GuildID: g.ID, Integrations: list})
		g.audit(c.User, discordgo.AuditLogActionIntegrationCreate, d.ID, reason, creationChanges(d, "name", "type"), nil)
		in, _ := g.Integrations.Get(d.ID)
		return in, nil
	})
}

func integrationData(g *Guild) []*discordgo.Integration {
	var out []*discordgo.Integration
	for _, in := range g.Integrations.Values() {
		out = append(out, in.Data())
	}
	return out
}

// PruneOptions configures a member prune.
type PruneOptions struct {
	// Days of inactivity, 1 to 30.
	Days int
	// DryRun only counts the members that would be pruned.
	DryRun bool
	Reason string
}

// Prune removes members without roles who joined more than Days ago and
// returns how many were (or would be) removed. Requires KICK_MEMBERS.
func (g *Guild) Prune(ctx context.Context, opts PruneOptions) (int, error) {
	c := g.client
	return execValue(ctx, c, func() (int, error) {
		path, method := routeGuildPrune(g.ID), apierr.MethodPost
		if opts.DryRun {
			method = apierr.MethodGet
		}
		if err := g.check(path, method); err != nil {
			return 0, err
		}
		if err := checkRange(path, method, "days", opts.Days, 1, 30); err != nil {
			return 0, err
		}
		if err := c.require(c.User, g, nil, permissions.KickMembers, path, method); err != nil {
			return 0, err
		}

		cutoff := c.now().Add(-time.Duration(opts.Days) * 24 * time.Hour)
		victims := g.Members.Filter(func(m *Member) bool {
			return len(m.Member.Roles) == 0 && m.User.ID != g.OwnerID && m.User.ID != c.User.ID && m.JoinedAt.Before(cutoff)
		})
		if opts.DryRun || len(victims) == 0 {
			return len(victims), nil
		}
		for _, m := range victims {
			c.dispatch(EventGuildMemberRemove, &MemberRemovePayload{GuildID: g.ID, User: m.User.Data()})
		}
		g.audit(c.User, discordgo.AuditLogActionMemberPrune, "", opts.Reason, nil, map[string]string{
			"delete_member_days": strconv.Itoa(opts.Days),
			"members_removed":    strconv.Itoa(len(victims)),
		})
		return len(victims), nil
	})
}

// RolePosition is one entry of a bulk role reorder.
type RolePosition struct {
	ID       string
	Position int
}

// SetRolePositions moves several roles at once and returns the roles from
// the top of the hierarchy down. Requires MANAGE_ROLES and outranking every
// moved role and its destination.
func (g *Guild) SetRolePositions(ctx context.Context, positions []RolePosition) ([]*Role, error) {
	c := g.client
	return execValue(ctx, c, func() ([]*Role, error) {
		path, method := routeGuildRoles(g.ID), apierr.MethodPatch
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.ManageRoles, path, method); err != nil {
			return nil, err
		}
		for _, p := range positions {
			r, ok := g.Roles.Get(p.ID)
			if !ok {
				return nil, unknown(apierr.CodeUnknownRole, path, method)
			}
			if r.IsEveryone() {
				return nil, apierr.BadRequest(apierr.CodeInvalidRole, "Invalid Role", path, method)
			}
			if err := c.requireAboveRole(c.User, g, r, path, method); err != nil {
				return nil, err
			}
			if err := c.requireBelowActor(c.User, g, p.Position, path, method); err != nil {
				return nil, err
			}
		}

		ordered := slices.Clone(positions)
		slices.SortStableFunc(ordered, func(a, b RolePosition) int { return a.Position - b.Position })
		for _, p := range ordered {
			r, _ := g.Roles.Get(p.ID)
			d := r.Data()
			d.Position = p.Position
			c.dispatch(EventGuildRoleUpdate, &RolePayload{GuildID: g.ID, Role: d})
		}
		return g.SortedRoles(), nil
	})
}

// requireBelowActor rejects moving a role to or above the actor's highest
// role.
func (c *Client) requireBelowActor(actor *User, g *Guild, position int, path string, method apierr.Method) error {
	if actor.ID == g.OwnerID {
		return nil
	}
	m, ok := g.Members.Get(actor.ID)
	if !ok {
		return apierr.MissingAccess(path, method)
	}
	if position >= m.HighestRole().Position {
		return apierr.MissingPermissions(path, method)
	}
	return nil
}

// ChannelPosition is one entry of a bulk channel reorder.
type ChannelPosition struct {
	ID       string
	Position int
	// ParentID moves the channel into a category; an empty string removes
	// it from its category.
	ParentID mo.Option[string]
}

// SetChannelPositions moves several channels at once. Requires
// MANAGE_CHANNELS.
func (g *Guild) SetChannelPositions(ctx context.Context, positions []ChannelPosition) error {
	c := g.client
	return c.exec(ctx, func() error {
		path, method := routeGuildChannels(g.ID), apierr.MethodPatch
		if err := g.check(path, method); err != nil {
			return err
		}
		if err := c.require(c.User, g, nil, permissions.ManageChannels, path, method); err != nil {
			return err
		}
		for _, p := range positions {
			ch, ok := g.Channels.Get(p.ID)
			if !ok {
				return unknown(apierr.CodeUnknownChannel, path, method)
			}
			if parent, ok := p.ParentID.Get(); ok && parent != "" {
				if err := validParent(g, ch.Base().Type, parent, path, method); err != nil {
					return err
				}
			}
		}
		for _, p := range positions {
			ch, _ := g.Channels.Get(p.ID)
			d := ch.Data()
			d.Position = p.Position
			d.ParentID = p.ParentID.OrElse(d.ParentID)
			c.dispatch(EventChannelUpdate, d)
		}
		return nil
	})
}

func validParent(g *Guild, t discordgo.ChannelType, parentID, path string, method apierr.Method) error {
	parent, ok := g.Channels.Get(parentID)
	if _, isCategory := parent.(*CategoryChannel); !ok || !isCategory || t == discordgo.ChannelTypeGuildCategory {
		return apierr.FieldError(path, method, "parent_id", "CHANNEL_PARENT_INVALID_TYPE", "Not a category")
	}
	return nil
}

// MemberQuery selects members for FetchMembers.
type MemberQuery struct {
	// Query matches the start of usernames and nicknames, case-insensitively.
	// Empty matches everyone.
	Query string
	// Limit caps the result; zero means no cap.
	Limit int
	// UserIDs selects specific members and overrides Query.
	UserIDs []string
}

// FetchMembers requests members over the gateway and collects the member
// chunks as they arrive. The member chunk timeout is an idle deadline: each
// chunk pushes it out again.
func (g *Guild) FetchMembers(ctx context.Context, q MemberQuery) ([]*Member, error) {
	c := g.client
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.deleted {
		return nil, unknown(apierr.CodeUnknownGuild, routeGuildMembers(g.ID), apierr.MethodGet)
	}

	nonce := uuid.NewString()
	var collected []*Member
	w := Await(c, WaitSpec[[]*Member]{
		Op:      "fetch members",
		Timeout: c.cfg.memberChunkTimeout,
		Match: func(ev Event) ([]*Member, Outcome) {
			e, ok := ev.(*GuildMembersChunk)
			if !ok || e.Nonce != nonce || e.Guild.ID != g.ID {
				return nil, Ignore
			}
			collected = append(collected, e.Members...)
			if e.Index+1 >= e.Count {
				return collected, Resolve
			}
			return nil, Progress
		},
	})

	c.gateway.Send(OpRequestGuildMembers, map[string]any{
		"guild_id": g.ID,
		"query":    q.Query,
		"limit":    q.Limit,
		"user_ids": q.UserIDs,
		"nonce":    nonce,
	})
	if !c.gateway.Submit(func() { c.deliverMemberChunks(g.ID, q, nonce) }) {
		w.settle(nil, ErrClosed)
	}
	return w.Wait(ctx)
}

// deliverMemberChunks answers a member request with one or more
// GUILD_MEMBERS_CHUNK packets. It runs on the gateway lane.
func (c *Client) deliverMemberChunks(guildID string, q MemberQuery, nonce string) {
	c.mu.Lock()
	var matched []*discordgo.Member
	if g, ok := c.Guild(guildID); ok {
		matched = matchMembers(g, q)
	}
	c.mu.Unlock()

	size := c.cfg.memberChunkSize
	count := max(1, (len(matched)+size-1)/size)
	for i := 0; i < count; i++ {
		chunk := matched[min(i*size, len(matched)):min((i+1)*size, len(matched))]
		c.gateway.dispatch(Packet{Type: EventGuildMembersChunk, Data: &MembersChunkPayload{
			GuildID:    guildID,
			Members:    chunk,
			ChunkIndex: i,
			ChunkCount: count,
			Nonce:      nonce,
		}})
	}
}

func matchMembers(g *Guild, q MemberQuery) []*discordgo.Member {
	var out []*discordgo.Member
	if len(q.UserIDs) > 0 {
		for _, id := range q.UserIDs {
			if m, ok := g.Members.Get(id); ok {
				out = append(out, m.Data())
			}
		}
		return out
	}
	prefix := strings.ToLower(q.Query)
	for _, m := range g.Members.Values() {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		if prefix == "" ||
			strings.HasPrefix(strings.ToLower(m.User.Username), prefix) ||
			strings.HasPrefix(strings.ToLower(m.Nick), prefix) {
			out = append(out, m.Data())
		}
	}
	return out
}

// FetchMember returns the member for userID.
func (g *Guild) FetchMember(ctx context.Context, userID string) (*Member, error) {
	c := g.client
	return execValue(ctx, c, func() (*Member, error) {
		path, method := routeGuildMember(g.ID, userID), apierr.MethodGet
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		m, ok := g.Members.Get(userID)
		if !ok {
			return nil, unknown(apierr.CodeUnknownMember, path, method)
		}
		return m, nil
	})
}
