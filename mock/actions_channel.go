package mock

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

const (
	maxChannels        = 500
	maxChannelWebhooks = 10
	maxInviteAge       = 7 * 24 * 60 * 60
)

var channelAuditKeys = []string{"name", "type", "topic", "nsfw", "parent_id", "bitrate", "user_limit", "rate_limit_per_user"}

// ChannelParams is the body of a guild channel creation.
type ChannelParams struct {
	Name                 string
	Type                 discordgo.ChannelType
	Topic                string
	Bitrate              int
	UserLimit            int
	RateLimitPerUser     int
	NSFW                 bool
	ParentID             string
	Position             mo.Option[int]
	PermissionOverwrites []*discordgo.PermissionOverwrite
	Reason               string
}

// CreateChannel creates a guild channel. Requires MANAGE_CHANNELS, and
// MANAGE_ROLES when overwrites are given.
func (g *Guild) CreateChannel(ctx context.Context, p ChannelParams) (Channel, error) {
	c := g.client
	return execValue(ctx, c, func() (Channel, error) {
		return c.createChannel(c.User, g, p)
	})
}

func (c *Client) createChannel(actor *User, g *Guild, p ChannelParams) (Channel, error) {
	path, method := routeGuildChannels(g.ID), apierr.MethodPost
	if err := g.check(path, method); err != nil {
		return nil, err
	}
	if err := c.require(actor, g, nil, permissions.ManageChannels, path, method); err != nil {
		return nil, err
	}
	if err := checkLength(path, method, "name", p.Name, 1, 100); err != nil {
		return nil, err
	}
	if !isGuildChannelType(p.Type) {
		return nil, apierr.FieldError(path, method, "type", "BASE_TYPE_CHOICES", "Value must be one of the guild channel types.")
	}
	if g.Channels.Len() >= maxChannels {
		return nil, apierr.BadRequest(apierr.CodeMaxChannels, "Maximum number of guild channels reached (500)", path, method)
	}
	if p.ParentID != "" {
		if err := validParent(g, p.Type, p.ParentID, path, method); err != nil {
			return nil, err
		}
	}
	if err := c.checkChannelLimits(path, method, p.Type, p.Topic, p.Bitrate, p.UserLimit, p.RateLimitPerUser); err != nil {
		return nil, err
	}
	if len(p.PermissionOverwrites) > 0 {
		if err := c.require(actor, g, nil, permissions.ManageRoles, path, method); err != nil {
			return nil, err
		}
		for _, ow := range p.PermissionOverwrites {
			if err := c.checkOverwriteTarget(g, ow.ID, ow.Type, path, method); err != nil {
				return nil, err
			}
			if err := c.requireGrantable(actor, g, nil, ow.Allow|ow.Deny, path, method); err != nil {
				return nil, err
			}
		}
	}

	d := &discordgo.Channel{}
	if err := record.Decode(defaults.Channel(c.ids.Next(), p.Type), d); err != nil {
		return nil, err
	}
	d.GuildID = g.ID
	d.Name = channelName(p.Type, p.Name)
	d.Topic = p.Topic
	d.NSFW = p.NSFW
	d.ParentID = p.ParentID
	d.UserLimit = p.UserLimit
	d.RateLimitPerUser = p.RateLimitPerUser
	d.Position = p.Position.OrElse(g.Channels.Len())
	if p.Bitrate > 0 {
		d.Bitrate = p.Bitrate
	}
	for _, ow := range p.PermissionOverwrites {
		cp := *ow
		d.PermissionOverwrites = append(d.PermissionOverwrites, &cp)
	}

	res, ok := c.dispatch(EventChannelCreate, d)
	if !ok {
		return nil, unknown(apierr.CodeUnknownChannel, path, method)
	}
	g.audit(actor, discordgo.AuditLogActionChannelCreate, d.ID, p.Reason, creationChanges(d, channelAuditKeys...), nil)
	return res.Channel, nil
}

func (c *Client) checkChannelLimits(path string, method apierr.Method, t discordgo.ChannelType, topic string, bitrate, userLimit, slowmode int) error {
	if err := checkLength(path, method, "topic", topic, 0, 1024); err != nil {
		return err
	}
	if err := checkRange(path, method, "rate_limit_per_user", slowmode, 0, 21600); err != nil {
		return err
	}
	if err := checkRange(path, method, "user_limit", userLimit, 0, 99); err != nil {
		return err
	}
	if bitrate != 0 && (t == discordgo.ChannelTypeGuildVoice || t == discordgo.ChannelTypeGuildStageVoice) {
		return checkRange(path, method, "bitrate", bitrate, 8000, 96000)
	}
	return nil
}

func (c *Client) checkOverwriteTarget(g *Guild, id string, t discordgo.PermissionOverwriteType, path string, method apierr.Method) error {
	switch t {
	case discordgo.PermissionOverwriteTypeRole:
		if !g.Roles.Has(id) {
			return unknown(apierr.CodeUnknownRole, path, method)
		}
	case discordgo.PermissionOverwriteTypeMember:
		if !g.Members.Has(id) {
			return unknown(apierr.CodeUnknownMember, path, method)
		}
	default:
		return apierr.FieldError(path, method, "type", "BASE_TYPE_CHOICES", "Value must be one of (0, 1).")
	}
	return nil
}

func (gc *GuildChannel) check(path string, method apierr.Method) error {
	if err := gc.guild.check(path, method); err != nil {
		return err
	}
	if gc.deleted {
		return unknown(apierr.CodeUnknownChannel, path, method)
	}
	return nil
}

// ChannelEdit is a partial guild channel update. Type may only switch
// between text and news.
type ChannelEdit struct {
	Name             mo.Option[string]
	Type             mo.Option[discordgo.ChannelType]
	Topic            mo.Option[string]
	NSFW             mo.Option[bool]
	Bitrate          mo.Option[int]
	UserLimit        mo.Option[int]
	RateLimitPerUser mo.Option[int]
	Position         mo.Option[int]
	ParentID         mo.Option[string]
	Reason           string
}

// Edit updates the channel and returns it. A type change returns the
// rebuilt variant. Requires MANAGE_CHANNELS in the channel.
func (gc *GuildChannel) Edit(ctx context.Context, e ChannelEdit) (Channel, error) {
	c := gc.client
	return execValue(ctx, c, func() (Channel, error) {
		return c.editChannel(c.User, gc, e)
	})
}

// SetPosition moves the channel.
func (gc *GuildChannel) SetPosition(ctx context.Context, position int, reason string) (Channel, error) {
	return gc.Edit(ctx, ChannelEdit{Position: mo.Some(position), Reason: reason})
}

func (c *Client) editChannel(actor *User, gc *GuildChannel, e ChannelEdit) (Channel, error) {
	g := gc.guild
	path, method := routeChannel(gc.ID), apierr.MethodPatch
	if err := gc.check(path, method); err != nil {
		return nil, err
	}
	if err := c.require(actor, g, gc.self, permissions.ManageChannels, path, method); err != nil {
		return nil, err
	}

	t := gc.Type
	partial := record.Record{}
	if next, ok := e.Type.Get(); ok && next != t {
		textual := func(t discordgo.ChannelType) bool {
			return t == discordgo.ChannelTypeGuildText || t == discordgo.ChannelTypeGuildNews
		}
		if !textual(t) || !textual(next) {
			return nil, apierr.FieldError(path, method, "type", "CHANNEL_TYPE_INVALID", "Only text and news channels can be converted.")
		}
		t = next
		partial["type"] = int(next)
	}
	if name, ok := e.Name.Get(); ok {
		if err := checkLength(path, method, "name", name, 1, 100); err != nil {
			return nil, err
		}
		partial["name"] = channelName(t, name)
	}
	if parent, ok := e.ParentID.Get(); ok {
		if parent != "" {
			if err := validParent(g, t, parent, path, method); err != nil {
				return nil, err
			}
		}
		partial["parent_id"] = parent
	}
	err := c.checkChannelLimits(path, method, t,
		e.Topic.OrElse(gc.Topic), e.Bitrate.OrElse(0), e.UserLimit.OrElse(0), e.RateLimitPerUser.OrElse(0))
	if err != nil {
		return nil, err
	}
	setOpt(partial, "topic", e.Topic)
	setOpt(partial, "nsfw", e.NSFW)
	setOpt(partial, "bitrate", e.Bitrate)
	setOpt(partial, "user_limit", e.UserLimit)
	setOpt(partial, "rate_limit_per_user", e.RateLimitPerUser)
	setOpt(partial, "position", e.Position)

	next, changes, err := applyPatch(gc.self.Data(), partial)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return gc.self, nil
	}
	res, _ := c.dispatch(EventChannelUpdate, next)
	g.audit(actor, discordgo.AuditLogActionChannelUpdate, gc.ID, e.Reason, changes, nil)
	return res.Channel, nil
}

// Delete deletes the channel. The children of a category are moved out of
// it first.
func (gc *GuildChannel) Delete(ctx context.Context, reason string) error {
	c := gc.client
	return c.exec(ctx, func() error {
		return c.deleteChannel(c.User, gc, reason)
	})
}

func (c *Client) deleteChannel(actor *User, gc *GuildChannel, reason string) error {
	g := gc.guild
	path, method := routeChannel(gc.ID), apierr.MethodDelete
	if err := gc.check(path, method); err != nil {
		return err
	}
	if err := c.require(actor, g, gc.self, permissions.ManageChannels, path, method); err != nil {
		return err
	}

	if cat, ok := gc.self.(*CategoryChannel); ok {
		for _, child := range cat.Children() {
			d := child.Data()
			d.ParentID = ""
			c.dispatch(EventChannelUpdate, d)
		}
	}
	snapshot := gc.self.Data()
	c.dispatch(EventChannelDelete, snapshot)
	g.audit(actor, discordgo.AuditLogActionChannelDelete, gc.ID, reason, deletionChanges(snapshot, channelAuditKeys...), nil)
	return nil
}

func overwriteOptions(id string, t discordgo.PermissionOverwriteType) map[string]string {
	return map[string]string{"id": id, "type": strconv.Itoa(int(t))}
}

// OverwritePermissions creates or replaces the overwrite for a role or
// member. Requires MANAGE_ROLES in the channel and holding the bits set.
func (gc *GuildChannel) OverwritePermissions(ctx context.Context, targetID string, t discordgo.PermissionOverwriteType, allow, deny int64, reason string) error {
	c := gc.client
	return c.exec(ctx, func() error {
		g := gc.guild
		path, method := routeChannelOverwrite(gc.ID, targetID), apierr.MethodPut
		if err := gc.check(path, method); err != nil {
			return err
		}
		if err := c.require(c.User, g, gc.self, permissions.ManageRoles, path, method); err != nil {
			return err
		}
		if err := c.checkOverwriteTarget(g, targetID, t, path, method); err != nil {
			return err
		}
		if err := c.requireGrantable(c.User, g, gc.self, allow|deny, path, method); err != nil {
			return err
		}

		ow := &discordgo.PermissionOverwrite{ID: targetID, Type: t, Allow: allow, Deny: deny}
		prev, had := gc.PermissionOverwrites.Get(targetID)
		if had && prev.Allow == allow && prev.Deny == deny && prev.Type == t {
			return nil
		}
		d := gc.self.Data()
		d.PermissionOverwrites = slices.DeleteFunc(d.PermissionOverwrites, func(x *discordgo.PermissionOverwrite) bool {
			return x.ID == targetID
		})
		d.PermissionOverwrites = append(d.PermissionOverwrites, ow)
		c.dispatch(EventChannelUpdate, d)

		action := discordgo.AuditLogActionChannelOverwriteCreate
		changes := creationChanges(ow, "allow", "deny")
		if had {
			action = discordgo.AuditLogActionChannelOverwriteUpdate
			_, changes, _ = applyPatch(prev, record.MustEncode(ow))
		}
		g.audit(c.User, action, gc.ID, reason, changes, overwriteOptions(targetID, t))
		return nil
	})
}

// DeleteOverwrite removes the overwrite for targetID. Requires MANAGE_ROLES
// in the channel.
func (gc *GuildChannel) DeleteOverwrite(ctx context.Context, targetID, reason string) error {
	c := gc.client
	return c.exec(ctx, func() error {
		g := gc.guild
		path, method := routeChannelOverwrite(gc.ID, targetID), apierr.MethodDelete
		if err := gc.check(path, method); err != nil {
			return err
		}
		if err := c.require(c.User, g, gc.self, permissions.ManageRoles, path, method); err != nil {
			return err
		}
		prev, ok := gc.PermissionOverwrites.Get(targetID)
		if !ok {
			return unknown(apierr.CodeUnknownOverwrite, path, method)
		}

		d := gc.self.Data()
		d.PermissionOverwrites = slices.DeleteFunc(d.PermissionOverwrites, func(x *discordgo.PermissionOverwrite) bool {
			return x.ID == targetID
		})
		c.dispatch(EventChannelUpdate, d)
		g.audit(c.User, discordgo.AuditLogActionChannelOverwriteDelete, gc.ID, reason,
			deletionChanges(prev, "allow", "deny"), overwriteOptions(targetID, prev.Type))
		return nil
	})
}

// InviteParams configures a new invite.
type InviteParams struct {
	// MaxAge in seconds, 0 for never; defaults to 86400.
	MaxAge mo.Option[int]
	// MaxUses, 0 for unlimited.
	MaxUses   int
	Temporary bool
	// Unique forces a new invite even when an identical one exists.
	Unique bool
	Reason string
}

// CreateInvite creates an invite to the channel. Requires
// CREATE_INSTANT_INVITE in the channel.
func (gc *GuildChannel) CreateInvite(ctx context.Context, p InviteParams) (*Invite, error) {
	c := gc.client
	return execValue(ctx, c, func() (*Invite, error) {
		return c.createInvite(c.User, gc, p)
	})
}

func (c *Client) createInvite(actor *User, gc *GuildChannel, p InviteParams) (*Invite, error) {
	g := gc.guild
	path, method := routeChannelInvites(gc.ID), apierr.MethodPost
	if err := gc.check(path, method); err != nil {
		return nil, err
	}
	if err := c.require(actor, g, gc.self, permissions.CreateInstantInvite, path, method); err != nil {
		return nil, err
	}
	maxAge := p.MaxAge.OrElse(86400)
	if err := checkRange(path, method, "max_age", maxAge, 0, maxInviteAge); err != nil {
		return nil, err
	}
	if err := checkRange(path, method, "max_uses", p.MaxUses, 0, 100); err != nil {
		return nil, err
	}
	if !p.Unique {
		existing, ok := g.Invites.Find(func(inv *Invite) bool {
			return inv.ChannelID == gc.ID && inv.Inviter != nil && inv.Inviter.ID == actor.ID &&
				inv.MaxAge == maxAge && inv.MaxUses == p.MaxUses && inv.Temporary == p.Temporary
		})
		if ok {
			return existing, nil
		}
	}

	payload := &InvitePayload{
		ChannelID: gc.ID,
		GuildID:   g.ID,
		Code:      strings.ReplaceAll(uuid.NewString(), "-", "")[:10],
		CreatedAt: c.now(),
		Inviter:   actor.Data(),
		MaxAge:    maxAge,
		MaxUses:   p.MaxUses,
		Temporary: p.Temporary,
	}
	res, _ := c.dispatch(EventInviteCreate, payload)
	g.audit(actor, discordgo.AuditLogActionInviteCreate, "", p.Reason,
		creationChanges(payload, "code", "channel_id", "max_age", "max_uses", "temporary", "uses"), nil)
	return res.Invite, nil
}

// FetchInvites lists the channel's invites. Requires MANAGE_CHANNELS in the
// channel.
func (gc *GuildChannel) FetchInvites(ctx context.Context) ([]*Invite, error) {
	c := gc.client
	return execValue(ctx, c, func() ([]*Invite, error) {
		path, method := routeChannelInvites(gc.ID), apierr.MethodGet
		if err := gc.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, gc.guild, gc.self, permissions.ManageChannels, path, method); err != nil {
			return nil, err
		}
		return gc.guild.Invites.Filter(func(inv *Invite) bool { return inv.ChannelID == gc.ID }), nil
	})
}

// CreateWebhook creates an incoming webhook in a text or news channel.
// Requires MANAGE_WEBHOOKS in the channel.
func (gc *GuildChannel) CreateWebhook(ctx context.Context, name, avatar, reason string) (*Webhook, error) {
	c := gc.client
	return execValue(ctx, c, func() (*Webhook, error) {
		g := gc.guild
		path, method := routeChannelWebhooks(gc.ID), apierr.MethodPost
		if err := gc.check(path, method); err != nil {
			return nil, err
		}
		if _, ok := AsText(gc.self); !ok {
			return nil, apierr.FieldError(path, method, "channel_id", "CHANNEL_TYPE_INVALID", "Webhooks need a text channel.")
		}
		if err := c.require(c.User, g, gc.self, permissions.ManageWebhooks, path, method); err != nil {
			return nil, err
		}
		if err := checkLength(path, method, "name", name, 1, 80); err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(name), "clyde") {
			return nil, apierr.FieldError(path, method, "name", "USERNAME_INVALID_CONTAINS", `Username cannot contain "clyde"`)
		}
		hooks := channelWebhooks(g, gc.ID)
		if len(hooks) >= maxChannelWebhooks {
			return nil, apierr.BadRequest(apierr.CodeMaxWebhooks, "Maximum number of webhooks reached (10)", path, method)
		}

		token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		d := &discordgo.Webhook{}
		if err := record.Decode(defaults.Webhook(c.ids.Next(), g.ID, gc.ID, token, c.User.Data()), d); err != nil {
			return nil, err
		}
		d.Name = name
		d.Avatar = avatar

		list := []*discordgo.Webhook{}
		for _, w := range hooks {
			list = append(list, w.Data())
		}
		c.dispatch(EventWebhooksUpdate, &WebhooksPayload{GuildID: g.ID, ChannelID: gc.ID, Webhooks: append(list, d)})
		g.audit(c.User, discordgo.AuditLogActionWebhookCreate, d.ID, reason, creationChanges(d, "name", "type", "channel_id"), nil)
		w, _ := g.Webhooks.Get(d.ID)
		return w, nil
	})
}

// FetchWebhooks lists the channel's webhooks. Requires MANAGE_WEBHOOKS in
// the channel.
func (gc *GuildChannel) FetchWebhooks(ctx context.Context) ([]*Webhook, error) {
	c := gc.client
	return execValue(ctx, c, func() ([]*Webhook, error) {
		path, method := routeChannelWebhooks(gc.ID), apierr.MethodGet
		if err := gc.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, gc.guild, gc.self, permissions.ManageWebhooks, path, method); err != nil {
			return nil, err
		}
		return channelWebhooks(gc.guild, gc.ID), nil
	})
}

// CreateDM opens, or returns the existing, DM channel with the user.
func (u *User) CreateDM(ctx context.Context) (*DMChannel, error) {
	c := u.client
	return execValue(ctx, c, func() (*DMChannel, error) {
		return c.openDM(u)
	})
}

func (c *Client) openDM(u *User) (*DMChannel, error) {
	if u.ID == c.User.ID {
		return nil, apierr.BadRequest(apierr.CodeCannotMessageUser, "Cannot send messages to this user", routeUsersMeDMs, apierr.MethodPost)
	}
	if dm, ok := u.DMChannel(); ok {
		return dm, nil
	}
	d := &discordgo.Channel{}
	if err := record.Decode(defaults.Channel(c.ids.Next(), discordgo.ChannelTypeDM), d); err != nil {
		return nil, err
	}
	d.Recipients = []*discordgo.User{u.Data()}
	res, _ := c.dispatch(EventChannelCreate, d)
	dm, _ := res.Channel.(*DMChannel)
	return dm, nil
}
