package mock

import (
	"context"
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

// MemberEdit is a partial member update.
type MemberEdit struct {
	// Nick sets the nickname; an empty string resets it.
	Nick mo.Option[string]
	// Roles replaces the member's role list.
	Roles mo.Option[[]string]
	Mute  mo.Option[bool]
	Deaf  mo.Option[bool]
	// ChannelID moves the member to a voice channel; an empty string
	// disconnects it.
	ChannelID mo.Option[string]
	Reason    string
}

// Edit updates the member. Each field needs its own permission: nicknames
// need MANAGE_NICKNAMES (CHANGE_NICKNAME for yourself), roles MANAGE_ROLES,
// mute and deafen MUTE_MEMBERS and DEAFEN_MEMBERS, and moves MOVE_MEMBERS.
// Voice changes need the member to be connected.
func (m *Member) Edit(ctx context.Context, e MemberEdit) (*Member, error) {
	c := m.guild.client
	return execValue(ctx, c, func() (*Member, error) {
		return c.editMember(c.User, m, e)
	})
}

func (c *Client) editMember(actor *User, m *Member, e MemberEdit) (*Member, error) {
	g := m.guild
	path, method := routeGuildMember(g.ID, m.User.ID), apierr.MethodPatch
	if err := g.check(path, method); err != nil {
		return nil, err
	}
	if m.deleted {
		return nil, unknown(apierr.CodeUnknownMember, path, method)
	}

	partial := record.Record{}
	if nick, ok := e.Nick.Get(); ok {
		if err := c.checkNick(actor, m, nick, path, method); err != nil {
			return nil, err
		}
		partial["nick"] = nick
	}
	var added, removed []*Role
	if roles, ok := e.Roles.Get(); ok {
		var err error
		added, removed, err = c.checkRoleChange(actor, m, roles, path, method)
		if err != nil {
			return nil, err
		}
		kept := slices.DeleteFunc(slices.Clone(m.Member.Roles), func(id string) bool {
			return slices.ContainsFunc(removed, func(r *Role) bool { return r.ID == id })
		})
		for _, r := range added {
			kept = append(kept, r.ID)
		}
		partial["roles"] = kept
	}

	vs, connected := g.VoiceStates.Get(m.User.ID)
	voiceEdit := e.Mute.IsPresent() || e.Deaf.IsPresent() || e.ChannelID.IsPresent()
	if voiceEdit && !connected {
		return nil, apierr.BadRequest(apierr.CodeTargetNotInVoice, "Target user is not connected to voice.", path, method)
	}
	if e.Mute.IsPresent() {
		if err := c.require(actor, g, nil, permissions.MuteMembers, path, method); err != nil {
			return nil, err
		}
	}
	if e.Deaf.IsPresent() {
		if err := c.require(actor, g, nil, permissions.DeafenMembers, path, method); err != nil {
			return nil, err
		}
	}
	if dest, ok := e.ChannelID.Get(); ok {
		if err := c.require(actor, g, nil, permissions.MoveMembers, path, method); err != nil {
			return nil, err
		}
		if dest != "" {
			ch, found := g.Channels.Get(dest)
			if !found {
				return nil, unknown(apierr.CodeUnknownChannel, path, method)
			}
			if _, voice := ch.(*VoiceChannel); !voice {
				return nil, apierr.FieldError(path, method, "channel_id", "CHANNEL_TYPE_INVALID", "Channel must be a voice channel.")
			}
			if err := c.require(actor, g, ch, permissions.Connect, path, method); err != nil {
				return nil, err
			}
		}
	}
	setOpt(partial, "mute", e.Mute)
	setOpt(partial, "deaf", e.Deaf)

	next, changes, err := applyPatch(m.Data(), partial)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		c.dispatch(EventGuildMemberUpdate, next)
	}

	moved := false
	if voiceEdit {
		d := vs.Data()
		d.Mute = e.Mute.OrElse(d.Mute)
		d.Deaf = e.Deaf.OrElse(d.Deaf)
		d.ChannelID = e.ChannelID.OrElse(d.ChannelID)
		moved = d.ChannelID != vs.ChannelID
		if moved || d.Mute != vs.Mute || d.Deaf != vs.Deaf {
			c.dispatch(EventVoiceStateUpdate, d)
		}
	}

	switch {
	case len(added) > 0 || len(removed) > 0:
		g.audit(actor, discordgo.AuditLogActionMemberRoleUpdate, m.User.ID, e.Reason, roleChanges(added, removed), nil)
	case len(changes) > 0:
		g.audit(actor, discordgo.AuditLogActionMemberUpdate, m.User.ID, e.Reason, changes, nil)
	case moved && e.ChannelID.OrEmpty() == "":
		g.audit(actor, discordgo.AuditLogActionMemberDisconnect, "", e.Reason, nil, map[string]string{"count": "1"})
	case moved:
		g.audit(actor, discordgo.AuditLogActionMemberMove, "", e.Reason, nil, map[string]string{
			"channel_id": e.ChannelID.OrEmpty(),
			"count":      "1",
		})
	}
	return m, nil
}

func (c *Client) checkNick(actor *User, m *Member, nick, path string, method apierr.Method) error {
	g := m.guild
	if err := checkLength(path, method, "nick", nick, 0, 32); err != nil {
		return err
	}
	if m.User.ID == actor.ID {
		return c.require(actor, g, nil, permissions.ChangeNickname, path, method)
	}
	if err := c.require(actor, g, nil, permissions.ManageNicknames, path, method); err != nil {
		return err
	}
	return c.requireAboveMember(actor, g, m, path, method)
}

// checkRoleChange validates replacing m's roles with ids and returns the
// roles added and removed.
func (c *Client) checkRoleChange(actor *User, m *Member, ids []string, path string, method apierr.Method) (added, removed []*Role, err error) {
	g := m.guild
	if err := c.require(actor, g, nil, permissions.ManageRoles, path, method); err != nil {
		return nil, nil, err
	}
	for _, id := range ids {
		r, ok := g.Roles.Get(id)
		if !ok {
			return nil, nil, unknown(apierr.CodeUnknownRole, path, method)
		}
		if r.IsEveryone() {
			return nil, nil, apierr.BadRequest(apierr.CodeInvalidRole, "Invalid Role", path, method)
		}
		if !slices.Contains(m.Member.Roles, id) && !slices.ContainsFunc(added, func(x *Role) bool { return x.ID == id }) {
			added = append(added, r)
		}
	}
	for _, id := range m.Member.Roles {
		if slices.Contains(ids, id) {
			continue
		}
		if r, ok := g.Roles.Get(id); ok {
			removed = append(removed, r)
		}
	}
	for _, r := range slices.Concat(added, removed) {
		if r.Managed {
			return nil, nil, apierr.BadRequest(apierr.CodeInvalidRole, "Invalid Role", path, method)
		}
		if err := c.requireAboveRole(actor, g, r, path, method); err != nil {
			return nil, nil, err
		}
	}
	return added, removed, nil
}

func roleChanges(added, removed []*Role) []record.Change {
	list := func(roles []*Role) []map[string]string {
		out := make([]map[string]string, 0, len(roles))
		for _, r := range roles {
			out = append(out, map[string]string{"id": r.ID, "name": r.Name})
		}
		return out
	}
	var changes []record.Change
	if len(added) > 0 {
		changes = append(changes, record.Change{Key: "$add", New: list(added)})
	}
	if len(removed) > 0 {
		changes = append(changes, record.Change{Key: "$remove", New: list(removed)})
	}
	return changes
}

// SetNickname sets the member's nickname; an empty nick resets it.
func (m *Member) SetNickname(ctx context.Context, nick, reason string) (*Member, error) {
	return m.Edit(ctx, MemberEdit{Nick: mo.Some(nick), Reason: reason})
}

// AddRole gives the member a role.
func (m *Member) AddRole(ctx context.Context, roleID, reason string) (*Member, error) {
	return m.changeRoles(ctx, reason, func(roles []string) []string {
		if slices.Contains(roles, roleID) {
			return roles
		}
		return append(roles, roleID)
	})
}

// RemoveRole takes a role from the member.
func (m *Member) RemoveRole(ctx context.Context, roleID, reason string) (*Member, error) {
	return m.changeRoles(ctx, reason, func(roles []string) []string {
		return slices.DeleteFunc(roles, func(id string) bool { return id == roleID })
	})
}

func (m *Member) changeRoles(ctx context.Context, reason string, fn func([]string) []string) (*Member, error) {
	c := m.guild.client
	return execValue(ctx, c, func() (*Member, error) {
		roles := fn(slices.Clone(m.Member.Roles))
		return c.editMember(c.User, m, MemberEdit{Roles: mo.Some(roles), Reason: reason})
	})
}

// SetMute server-mutes or unmutes the member in voice.
func (m *Member) SetMute(ctx context.Context, mute bool, reason string) (*Member, error) {
	return m.Edit(ctx, MemberEdit{Mute: mo.Some(mute), Reason: reason})
}

// SetDeaf server-deafens or undeafens the member in voice.
func (m *Member) SetDeaf(ctx context.Context, deaf bool, reason string) (*Member, error) {
	return m.Edit(ctx, MemberEdit{Deaf: mo.Some(deaf), Reason: reason})
}

// SetChannel moves the member to another voice channel, or disconnects it
// when channelID is empty.
func (m *Member) SetChannel(ctx context.Context, channelID, reason string) (*Member, error) {
	return m.Edit(ctx, MemberEdit{ChannelID: mo.Some(channelID), Reason: reason})
}

// Kick removes the member from the guild. Requires KICK_MEMBERS and
// outranking the member.
func (m *Member) Kick(ctx context.Context, reason string) error {
	c := m.guild.client
	return c.exec(ctx, func() error {
		return c.kick(c.User, m, reason)
	})
}

func (c *Client) kick(actor *User, m *Member, reason string) error {
	g := m.guild
	path, method := routeGuildMember(g.ID, m.User.ID), apierr.MethodDelete
	if err := g.check(path, method); err != nil {
		return err
	}
	if m.deleted {
		return unknown(apierr.CodeUnknownMember, path, method)
	}
	if err := c.require(actor, g, nil, permissions.KickMembers, path, method); err != nil {
		return err
	}
	if m.User.ID == g.OwnerID {
		return apierr.MissingPermissions(path, method)
	}
	if err := c.requireAboveMember(actor, g, m, path, method); err != nil {
		return err
	}

	c.dispatch(EventGuildMemberRemove, &MemberRemovePayload{GuildID: g.ID, User: m.User.Data()})
	g.audit(actor, discordgo.AuditLogActionMemberKick, m.User.ID, reason, nil, nil)
	return nil
}

// Ban bans the member. See Guild.Ban.
func (m *Member) Ban(ctx context.Context, opts BanOptions) error {
	c := m.guild.client
	return c.exec(ctx, func() error {
		if m.deleted {
			return unknown(apierr.CodeUnknownMember, routeGuildBan(m.guild.ID, m.User.ID), apierr.MethodPut)
		}
		return c.ban(c.User, m.guild, m.User.ID, opts)
	})
}
