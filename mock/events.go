package mock

import "time"

// Event is an outward client event delivered to handlers.
type Event interface {
	// EventType is the gateway packet type that produced the event.
	EventType() EventType
}

// ChannelCreate is emitted when a channel is cached for the first time.
type ChannelCreate struct{ Channel Channel }

// ChannelUpdate carries the channel before and after the change. Old is a
// detached snapshot.
type ChannelUpdate struct{ Old, New Channel }

// ChannelDelete is emitted after the channel has been removed from every
// cache and marked deleted.
type ChannelDelete struct{ Channel Channel }

// ChannelPinsUpdate is emitted when a channel's pins change.
type ChannelPinsUpdate struct {
	Channel          Channel
	LastPinTimestamp *time.Time
}

// GuildCreate is emitted when a guild becomes available to the client.
type GuildCreate struct{ Guild *Guild }

// GuildUpdate carries the guild before and after the change.
type GuildUpdate struct{ Old, New *Guild }

// GuildDelete is emitted when the client leaves a guild or the guild is
// deleted.
type GuildDelete struct{ Guild *Guild }

// GuildUnavailable is emitted when a guild goes offline. The guild stays
// cached.
type GuildUnavailable struct{ Guild *Guild }

// GuildBanAdd is emitted when a user is banned.
type GuildBanAdd struct {
	Guild *Guild
	Ban   *Ban
}

// GuildBanRemove is emitted when a ban is lifted.
type GuildBanRemove struct {
	Guild *Guild
	Ban   *Ban
}

// EmojiCreate is derived from a guild emoji list update.
type EmojiCreate struct{ Emoji *Emoji }

// EmojiUpdate carries the emoji before and after the change.
type EmojiUpdate struct{ Old, New *Emoji }

// EmojiDelete is emitted for every emoji dropped from a guild's list.
type EmojiDelete struct{ Emoji *Emoji }

// GuildIntegrationsUpdate is emitted when a guild's integrations change.
type GuildIntegrationsUpdate struct{ Guild *Guild }

// GuildMemberAdd is emitted when a user joins a guild.
type GuildMemberAdd struct{ Member *Member }

// GuildMemberRemove is emitted when a member leaves, is kicked or is banned.
type GuildMemberRemove struct{ Member *Member }

// GuildMemberUpdate carries the member before and after the change.
type GuildMemberUpdate struct{ Old, New *Member }

// GuildMembersChunk is one chunk of a member request.
type GuildMembersChunk struct {
	Guild   *Guild
	Members []*Member
	Index   int
	Count   int
	Nonce   string
}

// GuildRoleCreate is emitted when a role is created.
type GuildRoleCreate struct{ Role *Role }

// GuildRoleUpdate carries the role before and after the change.
type GuildRoleUpdate struct{ Old, New *Role }

// GuildRoleDelete is emitted after the role and its references are removed.
type GuildRoleDelete struct{ Role *Role }

// InviteCreate is emitted when an invite is created.
type InviteCreate struct{ Invite *Invite }

// InviteDelete is emitted when an invite is revoked.
type InviteDelete struct{ Invite *Invite }

// MessageCreate is emitted for every new message.
type MessageCreate struct{ Message *Message }

// MessageUpdate carries the message before and after the change.
type MessageUpdate struct{ Old, New *Message }

// MessageDelete is emitted when a cached message is deleted.
type MessageDelete struct{ Message *Message }

// MessageDeleteBulk lists the cached messages removed by a bulk delete.
type MessageDeleteBulk struct {
	Channel  Channel
	Messages []*Message
}

// MessageReactionAdd is emitted when a user reacts.
type MessageReactionAdd struct {
	Reaction *Reaction
	User     *User
}

// MessageReactionRemove is emitted when a user's reaction is removed.
type MessageReactionRemove struct {
	Reaction *Reaction
	User     *User
}

// MessageReactionRemoveAll is emitted when every reaction is cleared.
type MessageReactionRemoveAll struct {
	Message *Message
	Removed []*Reaction
}

// MessageReactionRemoveEmoji is emitted when every reaction for one emoji is
// cleared.
type MessageReactionRemoveEmoji struct{ Reaction *Reaction }

// PresenceUpdate carries a member's presence before and after. Old is nil
// when no presence was cached.
type PresenceUpdate struct{ Old, New *Presence }

// TypingStart is emitted when a user starts typing.
type TypingStart struct {
	Channel   Channel
	User      *User
	Timestamp time.Time
}

// UserUpdate carries a user before and after the change.
type UserUpdate struct{ Old, New *User }

// VoiceStateUpdate carries a voice state before and after. Old is nil when
// the user was not connected; New has an empty ChannelID on disconnect.
type VoiceStateUpdate struct{ Old, New *VoiceState }

// WebhooksUpdate is emitted when a channel's webhooks change.
type WebhooksUpdate struct{ Channel Channel }

func (*ChannelCreate) EventType() EventType              { return EventChannelCreate }
func (*ChannelUpdate) EventType() EventType              { return EventChannelUpdate }
func (*ChannelDelete) EventType() EventType              { return EventChannelDelete }
func (*ChannelPinsUpdate) EventType() EventType          { return EventChannelPinsUpdate }
func (*GuildCreate) EventType() EventType                { return EventGuildCreate }
func (*GuildUpdate) EventType() EventType                { return EventGuildUpdate }
func (*GuildDelete) EventType() EventType                { return EventGuildDelete }
func (*GuildUnavailable) EventType() EventType           { return EventGuildDelete }
func (*GuildBanAdd) EventType() EventType                { return EventGuildBanAdd }
func (*GuildBanRemove) EventType() EventType             { return EventGuildBanRemove }
func (*EmojiCreate) EventType() EventType                { return EventGuildEmojisUpdate }
func (*EmojiUpdate) EventType() EventType                { return EventGuildEmojisUpdate }
func (*EmojiDelete) EventType() EventType                { return EventGuildEmojisUpdate }
func (*GuildIntegrationsUpdate) EventType() EventType    { return EventGuildIntegrationsUpdate }
func (*GuildMemberAdd) EventType() EventType             { return EventGuildMemberAdd }
func (*GuildMemberRemove) EventType() EventType          { return EventGuildMemberRemove }
func (*GuildMemberUpdate) EventType() EventType          { return EventGuildMemberUpdate }
func (*GuildMembersChunk) EventType() EventType          { return EventGuildMembersChunk }
func (*GuildRoleCreate) EventType() EventType            { return EventGuildRoleCreate }
func (*GuildRoleUpdate) EventType() EventType            { return EventGuildRoleUpdate }
func (*GuildRoleDelete) EventType() EventType            { return EventGuildRoleDelete }
func (*InviteCreate) EventType() EventType               { return EventInviteCreate }
func (*InviteDelete) EventType() EventType               { return EventInviteDelete }
func (*MessageCreate) EventType() EventType              { return EventMessageCreate }
func (*MessageUpdate) EventType() EventType              { return EventMessageUpdate }
func (*MessageDelete) EventType() EventType              { return EventMessageDelete }
func (*MessageDeleteBulk) EventType() EventType          { return EventMessageDeleteBulk }
func (*MessageReactionAdd) EventType() EventType         { return EventMessageReactionAdd }
func (*MessageReactionRemove) EventType() EventType      { return EventMessageReactionRemove }
func (*MessageReactionRemoveAll) EventType() EventType   { return EventMessageReactionRemoveAll }
func (*MessageReactionRemoveEmoji) EventType() EventType { return EventMessageReactionRemoveEmoji }
func (*PresenceUpdate) EventType() EventType             { return EventPresenceUpdate }
func (*TypingStart) EventType() EventType                { return EventTypingStart }
func (*UserUpdate) EventType() EventType                 { return EventUserUpdate }
func (*VoiceStateUpdate) EventType() EventType           { return EventVoiceStateUpdate }
func (*WebhooksUpdate) EventType() EventType             { return EventWebhooksUpdate }
