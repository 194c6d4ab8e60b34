package mock

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Emoji is a guild custom emoji.
type Emoji struct {
	discordgo.Emoji

	guild   *Guild
	deleted bool
}

func (e *Emoji) patch(d *discordgo.Emoji) {
	e.Emoji = *d
	e.Emoji.Roles = slices.Clone(d.Roles)
}

func (e *Emoji) clone() *Emoji {
	cp := *e
	cp.Emoji.Roles = slices.Clone(e.Emoji.Roles)
	return &cp
}

// Guild returns the owning guild.
func (e *Emoji) Guild() *Guild { return e.guild }

// Deleted reports whether the emoji was deleted.
func (e *Emoji) Deleted() bool { return e.deleted }

// Data returns a snapshot of the emoji.
func (e *Emoji) Data() *discordgo.Emoji {
	d := e.Emoji
	d.Roles = slices.Clone(e.Emoji.Roles)
	return &d
}

// Invite is a guild channel invite.
type Invite struct {
	discordgo.Invite

	// ChannelID is the channel the invite points at.
	ChannelID string
	Inviter   *User

	guild   *Guild
	deleted bool
}

func (g *Guild) buildInvite(d *discordgo.Invite) *Invite {
	inv := &Invite{guild: g}
	inv.patch(d)
	return inv
}

func (inv *Invite) patch(d *discordgo.Invite) {
	inv.Invite = *d
	if d.Channel != nil {
		inv.ChannelID = d.Channel.ID
	}
	if d.Inviter != nil {
		inv.Inviter = inv.guild.client.ensureUser(d.Inviter)
	}
	inv.Invite.Guild = nil
	inv.Invite.Channel = nil
	inv.Invite.Inviter = nil
}

// Deleted reports whether the invite was revoked.
func (inv *Invite) Deleted() bool { return inv.deleted }

// Data returns a snapshot of the invite with its guild and channel stubs.
func (inv *Invite) Data() *discordgo.Invite {
	d := inv.Invite
	d.Guild = &discordgo.Guild{ID: inv.guild.ID, Name: inv.guild.Name}
	d.Channel = &discordgo.Channel{ID: inv.ChannelID}
	if ch, ok := inv.guild.Channels.Get(inv.ChannelID); ok {
		d.Channel.Name = ch.Base().Name
		d.Channel.Type = ch.Base().Type
	}
	d.Inviter = dataOf(inv.Inviter)
	return &d
}

// URL returns the invite link.
func (inv *Invite) URL() string { return "https://discord.gg/" + inv.Code }

// Webhook is a channel webhook.
type Webhook struct {
	discordgo.Webhook

	guild   *Guild
	deleted bool
}

func (w *Webhook) patch(d *discordgo.Webhook) { w.Webhook = *d }

func (w *Webhook) clone() *Webhook {
	cp := *w
	return &cp
}

// Deleted reports whether the webhook was deleted.
func (w *Webhook) Deleted() bool { return w.deleted }

// Data returns a snapshot of the webhook.
func (w *Webhook) Data() *discordgo.Webhook {
	d := w.Webhook
	return &d
}

// Integration is a guild integration.
type Integration struct {
	discordgo.Integration

	guild   *Guild
	deleted bool
}

func (in *Integration) patch(d *discordgo.Integration) { in.Integration = *d }

// Deleted reports whether the integration was removed.
func (in *Integration) Deleted() bool { return in.deleted }

// Data returns a snapshot of the integration.
func (in *Integration) Data() *discordgo.Integration {
	d := in.Integration
	return &d
}

// Presence is a member's status and activities in one guild.
type Presence struct {
	discordgo.Presence

	guild *Guild
}

func (p *Presence) clone() *Presence {
	cp := *p
	cp.Activities = slices.Clone(p.Activities)
	return &cp
}

// Guild returns the guild the presence belongs to.
func (p *Presence) Guild() *Guild { return p.guild }

// Data returns a snapshot of the presence.
func (p *Presence) Data() *discordgo.Presence {
	d := p.Presence
	d.Activities = slices.Clone(p.Activities)
	return &d
}

// VoiceState is a member's voice connection.
type VoiceState struct {
	discordgo.VoiceState

	guild *Guild
}

func (vs *VoiceState) clone() *VoiceState {
	cp := *vs
	return &cp
}

// Channel returns the voice channel, if connected.
func (vs *VoiceState) Channel() (Channel, bool) {
	if vs.ChannelID == "" {
		return nil, false
	}
	return vs.guild.Channels.Get(vs.ChannelID)
}

// Data returns a snapshot of the voice state.
func (vs *VoiceState) Data() *discordgo.VoiceState {
	d := vs.VoiceState
	return &d
}

// Ban is a guild ban.
type Ban struct {
	User   *User
	Reason string

	guild *Guild
}

// Data returns the discordgo shape of the ban.
func (b *Ban) Data() *discordgo.GuildBan {
	return &discordgo.GuildBan{User: dataOf(b.User), Reason: b.Reason}
}
