package mock

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

const maxEmojis = 50

var emojiNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ErrInvalidStatus is returned by SetPresence for an unknown status.
var ErrInvalidStatus = errors.New("mock: invalid presence status")

// VoiceRegion describes a voice server region.
type VoiceRegion = defaults.VoiceRegion

// Delete revokes the invite. The inviter may always revoke it; anyone else
// needs MANAGE_CHANNELS in its channel or MANAGE_GUILD.
func (inv *Invite) Delete(ctx context.Context, reason string) error {
	c := inv.guild.client
	return c.exec(ctx, func() error {
		g := inv.guild
		path, method := routeInvite(inv.Code), apierr.MethodDelete
		if inv.deleted || g.deleted {
			return unknown(apierr.CodeUnknownInvite, path, method)
		}
		ch, _ := g.Channels.Get(inv.ChannelID)
		own := inv.Inviter != nil && inv.Inviter.ID == c.User.ID
		if !own && !c.holds(c.User, g, nil, permissions.ManageGuild) {
			if err := c.require(c.User, g, ch, permissions.ManageChannels, path, method); err != nil {
				return err
			}
		}

		snapshot := inv.Data()
		c.dispatch(EventInviteDelete, &InviteDeletePayload{ChannelID: inv.ChannelID, GuildID: g.ID, Code: inv.Code})
		changes := deletionChanges(snapshot, "code", "max_age", "max_uses", "temporary", "uses")
		changes = append(changes, record.Change{Key: "channel_id", Old: inv.ChannelID})
		g.audit(c.User, discordgo.AuditLogActionInviteDelete, "", reason, changes, nil)
		return nil
	})
}

func (w *Webhook) check(path string, method apierr.Method) error {
	if w.deleted || w.guild.deleted {
		return unknown(apierr.CodeUnknownWebhook, path, method)
	}
	return nil
}

// WebhookEdit is a partial webhook update.
type WebhookEdit struct {
	Name      mo.Option[string]
	Avatar    mo.Option[string]
	ChannelID mo.Option[string]
	Reason    string
}

// Edit updates the webhook. Requires MANAGE_WEBHOOKS in its channel, and in
// the destination channel when moving it.
func (w *Webhook) Edit(ctx context.Context, e WebhookEdit) (*Webhook, error) {
	c := w.guild.client
	return execValue(ctx, c, func() (*Webhook, error) {
		g := w.guild
		path, method := routeWebhook(w.ID), apierr.MethodPatch
		if err := w.check(path, method); err != nil {
			return nil, err
		}
		ch, _ := g.Channels.Get(w.ChannelID)
		if err := c.require(c.User, g, ch, permissions.ManageWebhooks, path, method); err != nil {
			return nil, err
		}
		partial := record.Record{}
		if name, ok := e.Name.Get(); ok {
			if err := checkLength(path, method, "name", name, 1, 80); err != nil {
				return nil, err
			}
			partial["name"] = name
		}
		if dest, ok := e.ChannelID.Get(); ok && dest != w.ChannelID {
			to, found := g.Channels.Get(dest)
			if !found {
				return nil, unknown(apierr.CodeUnknownChannel, path, method)
			}
			if _, text := AsText(to); !text {
				return nil, apierr.FieldError(path, method, "channel_id", "CHANNEL_TYPE_INVALID", "Webhooks need a text channel.")
			}
			if err := c.require(c.User, g, to, permissions.ManageWebhooks, path, method); err != nil {
				return nil, err
			}
			partial["channel_id"] = dest
		}
		setOpt(partial, "avatar", e.Avatar)

		next, changes, err := applyPatch(w.Data(), partial)
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			return w, nil
		}
		from := w.ChannelID
		c.replaceWebhooks(g, next.ChannelID, w.ID, next)
		if from != next.ChannelID {
			c.replaceWebhooks(g, from, w.ID, nil)
		}
		g.audit(c.User, discordgo.AuditLogActionWebhookUpdate, w.ID, e.Reason, changes, nil)
		return w, nil
	})
}

// replaceWebhooks dispatches the webhook list of channelID with the hook id
// replaced by next, or dropped when next is nil.
func (c *Client) replaceWebhooks(g *Guild, channelID, id string, next *discordgo.Webhook) {
	list := []*discordgo.Webhook{}
	for _, hook := range channelWebhooks(g, channelID) {
		if hook.ID != id {
			list = append(list, hook.Data())
		}
	}
	if next != nil {
		list = append(list, next)
	}
	c.dispatch(EventWebhooksUpdate, &WebhooksPayload{GuildID: g.ID, ChannelID: channelID, Webhooks: list})
}

// Delete deletes the webhook. Requires MANAGE_WEBHOOKS in its channel.
func (w *Webhook) Delete(ctx context.Context, reason string) error {
	c := w.guild.client
	return c.exec(ctx, func() error {
		g := w.guild
		path, method := routeWebhook(w.ID), apierr.MethodDelete
		if err := w.check(path, method); err != nil {
			return err
		}
		ch, _ := g.Channels.Get(w.ChannelID)
		if err := c.require(c.User, g, ch, permissions.ManageWebhooks, path, method); err != nil {
			return err
		}
		snapshot := w.Data()
		c.replaceWebhooks(g, w.ChannelID, w.ID, nil)
		g.audit(c.User, discordgo.AuditLogActionWebhookDelete, w.ID, reason, deletionChanges(snapshot, "name", "type", "channel_id"), nil)
		return nil
	})
}

// Send executes the webhook. Webhooks authenticate with their token, so no
// permission checks apply.
func (w *Webhook) Send(ctx context.Context, params *discordgo.WebhookParams) (*Message, error) {
	c := w.guild.client
	if params == nil {
		params = &discordgo.WebhookParams{}
	}
	files, err := readFiles(params.Files)
	if err != nil {
		return nil, err
	}
	return execValue(ctx, c, func() (*Message, error) {
		path, method := routeWebhook(w.ID)+"/"+w.Token, apierr.MethodPost
		if err := w.check(path, method); err != nil {
			return nil, err
		}
		ch, ok := w.guild.Channels.Get(w.ChannelID)
		if !ok {
			return nil, unknown(apierr.CodeUnknownChannel, path, method)
		}
		t, ok := AsText(ch)
		if !ok {
			return nil, unknown(apierr.CodeUnknownChannel, path, method)
		}
		if err := checkMessageBody(path, method, params.Content, len(params.Embeds), len(files)); err != nil {
			return nil, err
		}

		author := &discordgo.User{ID: w.ID, Username: w.Name, Avatar: w.Avatar, Bot: true}
		if params.Username != "" {
			author.Username = params.Username
		}
		d, err := c.composeMessage(t, author, draft{
			content:   params.Content,
			embeds:    params.Embeds,
			files:     files,
			tts:       params.TTS,
			webhookID: w.ID,
		}, true)
		if err != nil {
			return nil, err
		}
		res, _ := c.dispatch(EventMessageCreate, d)
		return res.Message, nil
	})
}

func (in *Integration) check(path string, method apierr.Method) error {
	if in.deleted || in.guild.deleted {
		return unknown(apierr.CodeUnknownIntegration, path, method)
	}
	return in.guild.client.require(in.guild.client.User, in.guild, nil, permissions.ManageGuild, path, method)
}

// IntegrationEdit is a partial integration update.
type IntegrationEdit struct {
	ExpireBehavior    mo.Option[discordgo.ExpireBehavior]
	ExpireGracePeriod mo.Option[int]
	EnableEmoticons   mo.Option[bool]
	Reason            string
}

// Edit updates the integration's settings. Requires MANAGE_GUILD.
func (in *Integration) Edit(ctx context.Context, e IntegrationEdit) (*Integration, error) {
	c := in.guild.client
	return execValue(ctx, c, func() (*Integration, error) {
		path, method := routeGuildIntegration(in.guild.ID, in.ID), apierr.MethodPatch
		if err := in.check(path, method); err != nil {
			return nil, err
		}
		if grace, ok := e.ExpireGracePeriod.Get(); ok && !slices.Contains([]int{1, 3, 7, 14, 30}, grace) {
			return nil, apierr.FieldError(path, method, "expire_grace_period", "BASE_TYPE_CHOICES", "Value must be one of (1, 3, 7, 14, 30).")
		}
		partial := record.Record{}
		setOpt(partial, "expire_behavior", e.ExpireBehavior)
		setOpt(partial, "expire_grace_period", e.ExpireGracePeriod)
		setOpt(partial, "enable_emoticons", e.EnableEmoticons)

		next, changes, err := applyPatch(in.Data(), partial)
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			return in, nil
		}
		c.replaceIntegration(in.guild, in.ID, next)
		in.guild.audit(c.User, discordgo.AuditLogActionIntegrationUpdate, in.ID, e.Reason, changes, nil)
		return in, nil
	})
}

// Sync marks the integration as synced now. Requires MANAGE_GUILD.
func (in *Integration) Sync(ctx context.Context) error {
	c := in.guild.client
	return c.exec(ctx, func() error {
		path, method := routeGuildIntegration(in.guild.ID, in.ID)+"/sync", apierr.MethodPost
		if err := in.check(path, method); err != nil {
			return err
		}
		d := in.Data()
		d.SyncedAt = c.now()
		c.replaceIntegration(in.guild, in.ID, d)
		return nil
	})
}

// Delete removes the integration. Requires MANAGE_GUILD.
func (in *Integration) Delete(ctx context.Context, reason string) error {
	c := in.guild.client
	return c.exec(ctx, func() error {
		path, method := routeGuildIntegration(in.guild.ID, in.ID), apierr.MethodDelete
		if err := in.check(path, method); err != nil {
			return err
		}
		snapshot := in.Data()
		c.replaceIntegration(in.guild, in.ID, nil)
		in.guild.audit(c.User, discordgo.AuditLogActionIntegrationDelete, in.ID, reason, deletionChanges(snapshot, "name", "type"), nil)
		return nil
	})
}

func (c *Client) replaceIntegration(g *Guild, id string, next *discordgo.Integration) {
	list := []*discordgo.Integration{}
	for _, d := range integrationData(g) {
		if d.ID == id {
			if next == nil {
				continue
			}
			d = next
		}
		list = append(list, d)
	}
	c.dispatch(EventGuildIntegrationsUpdate, &IntegrationsPayload{GuildID: g.ID, Integrations: list})
}

// EmojiParams is the body of an emoji creation.
type EmojiParams struct {
	Name string
	// Image is a data URI; image/gif makes the emoji animated.
	Image string
	// Roles limits the emoji to members with any of the roles.
	Roles  []string
	Reason string
}

// CreateEmoji uploads a custom emoji. Requires MANAGE_EMOJIS.
func (g *Guild) CreateEmoji(ctx context.Context, p EmojiParams) (*Emoji, error) {
	c := g.client
	return execValue(ctx, c, func() (*Emoji, error) {
		path, method := routeGuildEmojis(g.ID), apierr.MethodPost
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if err := c.require(c.User, g, nil, permissions.ManageEmojis, path, method); err != nil {
			return nil, err
		}
		if err := checkEmojiName(path, method, p.Name); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(p.Image, "data:image/") {
			return nil, apierr.FieldError(path, method, "image", "BINARY_TYPE_INVALID", "Invalid image data")
		}
		animated := strings.HasPrefix(p.Image, "data:image/gif")
		count := len(g.Emojis.Filter(func(e *Emoji) bool { return e.Animated == animated }))
		if count >= maxEmojis {
			return nil, apierr.BadRequest(apierr.CodeMaxEmojis, "Maximum number of emojis reached (50)", path, method)
		}
		for _, id := range p.Roles {
			if !g.Roles.Has(id) {
				return nil, unknown(apierr.CodeUnknownRole, path, method)
			}
		}

		d := &discordgo.Emoji{}
		if err := record.Decode(defaults.Emoji(c.ids.Next(), p.Name, c.User.Data()), d); err != nil {
			return nil, err
		}
		d.Animated = animated
		d.Roles = append(d.Roles, p.Roles...)
		c.replaceEmoji(g, d.ID, d)
		g.audit(c.User, discordgo.AuditLogActionEmojiCreate, d.ID, p.Reason, creationChanges(d, "name"), nil)
		e, _ := g.Emojis.Get(d.ID)
		return e, nil
	})
}

func checkEmojiName(path string, method apierr.Method, name string) error {
	if err := checkLength(path, method, "name", name, 2, 32); err != nil {
		return err
	}
	if !emojiNameRe.MatchString(name) {
		return apierr.FieldError(path, method, "name", "STRING_TYPE_REGEX", "String value did not match validation regex.")
	}
	return nil
}

// replaceEmoji dispatches the guild's emoji list with id replaced by next,
// appended when new, or dropped when next is nil.
func (c *Client) replaceEmoji(g *Guild, id string, next *discordgo.Emoji) {
	list := []*discordgo.Emoji{}
	found := false
	for _, e := range g.Emojis.Values() {
		if e.ID != id {
			list = append(list, e.Data())
			continue
		}
		found = true
		if next != nil {
			list = append(list, next)
		}
	}
	if !found && next != nil {
		list = append(list, next)
	}
	c.dispatch(EventGuildEmojisUpdate, &EmojisPayload{GuildID: g.ID, Emojis: list})
}

func (e *Emoji) check(path string, method apierr.Method) error {
	if e.deleted || e.guild.deleted {
		return unknown(apierr.CodeUnknownEmoji, path, method)
	}
	return e.guild.client.require(e.guild.client.User, e.guild, nil, permissions.ManageEmojis, path, method)
}

// EmojiEdit is a partial emoji update.
type EmojiEdit struct {
	Name   mo.Option[string]
	Roles  mo.Option[[]string]
	Reason string
}

// Edit renames the emoji or changes its roles. Requires MANAGE_EMOJIS.
func (e *Emoji) Edit(ctx context.Context, edit EmojiEdit) (*Emoji, error) {
	c := e.guild.client
	return execValue(ctx, c, func() (*Emoji, error) {
		path, method := routeGuildEmoji(e.guild.ID, e.ID), apierr.MethodPatch
		if err := e.check(path, method); err != nil {
			return nil, err
		}
		partial := record.Record{}
		if name, ok := edit.Name.Get(); ok {
			if err := checkEmojiName(path, method, name); err != nil {
				return nil, err
			}
			partial["name"] = name
		}
		if roles, ok := edit.Roles.Get(); ok {
			for _, id := range roles {
				if !e.guild.Roles.Has(id) {
					return nil, unknown(apierr.CodeUnknownRole, path, method)
				}
			}
			partial["roles"] = roles
		}

		next, changes, err := applyPatch(e.Data(), partial)
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			return e, nil
		}
		c.replaceEmoji(e.guild, e.ID, next)
		e.guild.audit(c.User, discordgo.AuditLogActionEmojiUpdate, e.ID, edit.Reason, changes, nil)
		return e, nil
	})
}

// Delete deletes the emoji. Requires MANAGE_EMOJIS.
func (e *Emoji) Delete(ctx context.Context, reason string) error {
	c := e.guild.client
	return c.exec(ctx, func() error {
		path, method := routeGuildEmoji(e.guild.ID, e.ID), apierr.MethodDelete
		if err := e.check(path, method); err != nil {
			return err
		}
		snapshot := e.Data()
		c.replaceEmoji(e.guild, e.ID, nil)
		e.guild.audit(c.User, discordgo.AuditLogActionEmojiDelete, e.ID, reason, deletionChanges(snapshot, "name"), nil)
		return nil
	})
}

// ProfileEdit is a partial update of the client user.
type ProfileEdit struct {
	Username mo.Option[string]
	Avatar   mo.Option[string]
}

// EditProfile updates the client user.
func (c *Client) EditProfile(ctx context.Context, e ProfileEdit) (*User, error) {
	return execValue(ctx, c, func() (*User, error) {
		path, method := routeUsersMe, apierr.MethodPatch
		partial := record.Record{}
		if name, ok := e.Username.Get(); ok {
			if err := checkLength(path, method, "username", name, 2, 32); err != nil {
				return nil, err
			}
			partial["username"] = name
		}
		setOpt(partial, "avatar", e.Avatar)

		next, changes, err := applyPatch(c.User.Data(), partial)
		if err != nil {
			return nil, err
		}
		if len(changes) > 0 {
			c.dispatch(EventUserUpdate, next)
		}
		return c.User, nil
	})
}

var validStatuses = []discordgo.Status{
	discordgo.StatusOnline,
	discordgo.StatusIdle,
	discordgo.StatusDoNotDisturb,
	discordgo.StatusInvisible,
	discordgo.StatusOffline,
}

// SetPresence sends a presence update over the gateway and applies it in
// every guild the client user is in. Invisible shows as offline.
func (c *Client) SetPresence(ctx context.Context, status discordgo.Status, activities []*discordgo.Activity) error {
	if !slices.Contains(validStatuses, status) {
		return ErrInvalidStatus
	}
	return c.exec(ctx, func() error {
		c.gateway.Send(OpPresenceUpdate, map[string]any{
			"status":     status,
			"activities": activities,
			"afk":        false,
		})
		c.broadcastPresence(c.User, status, activities)
		return nil
	})
}

func (c *Client) broadcastPresence(u *User, status discordgo.Status, activities []*discordgo.Activity) {
	if status == discordgo.StatusInvisible {
		status = discordgo.StatusOffline
	}
	for _, g := range c.Guilds.Values() {
		if g.deleted || !g.Members.Has(u.ID) {
			continue
		}
		c.dispatch(EventPresenceUpdate, &PresencePayload{
			GuildID:    g.ID,
			User:       u.Data(),
			Status:     status,
			Activities: activities,
		})
	}
}

// FetchUser returns the cached user with id.
func (c *Client) FetchUser(ctx context.Context, id string) (*User, error) {
	return execValue(ctx, c, func() (*User, error) {
		if id == "@me" {
			return c.User, nil
		}
		u, ok := c.Users.Get(id)
		if !ok {
			return nil, unknown(apierr.CodeUnknownUser, routeUser(id), apierr.MethodGet)
		}
		return u, nil
	})
}

// FetchVoiceRegions lists the available voice regions.
func (c *Client) FetchVoiceRegions(ctx context.Context) ([]VoiceRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return defaults.VoiceRegions(), nil
}

// FetchInvite resolves an invite code.
func (c *Client) FetchInvite(ctx context.Context, code string) (*Invite, error) {
	return execValue(ctx, c, func() (*Invite, error) {
		for _, g := range c.Guilds.Values() {
			if inv, ok := g.Invites.Get(code); ok && !g.deleted {
				return inv, nil
			}
		}
		return nil, unknown(apierr.CodeUnknownInvite, routeInvite(code), apierr.MethodGet)
	})
}

// FetchWebhook returns a webhook by ID. Requires MANAGE_WEBHOOKS in its
// channel.
func (c *Client) FetchWebhook(ctx context.Context, id string) (*Webhook, error) {
	return execValue(ctx, c, func() (*Webhook, error) {
		path, method := routeWebhook(id), apierr.MethodGet
		for _, g := range c.Guilds.Values() {
			w, ok := g.Webhooks.Get(id)
			if !ok || g.deleted {
				continue
			}
			ch, _ := g.Channels.Get(w.ChannelID)
			if err := c.require(c.User, g, ch, permissions.ManageWebhooks, path, method); err != nil {
				return nil, err
			}
			return w, nil
		}
		return nil, unknown(apierr.CodeUnknownWebhook, path, method)
	})
}
