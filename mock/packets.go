package mock

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/record"
)

// EventType is a gateway dispatch event name.
type EventType string

// Gateway dispatch events understood by the Dispatcher.
const (
	EventChannelCreate              EventType = "CHANNEL_CREATE"
	EventChannelUpdate              EventType = "CHANNEL_UPDATE"
	EventChannelDelete              EventType = "CHANNEL_DELETE"
	EventChannelPinsUpdate          EventType = "CHANNEL_PINS_UPDATE"
	EventGuildCreate                EventType = "GUILD_CREATE"
	EventGuildUpdate                EventType = "GUILD_UPDATE"
	EventGuildDelete                EventType = "GUILD_DELETE"
	EventGuildBanAdd                EventType = "GUILD_BAN_ADD"
	EventGuildBanRemove             EventType = "GUILD_BAN_REMOVE"
	EventGuildEmojisUpdate          EventType = "GUILD_EMOJIS_UPDATE"
	EventGuildIntegrationsUpdate    EventType = "GUILD_INTEGRATIONS_UPDATE"
	EventGuildMemberAdd             EventType = "GUILD_MEMBER_ADD"
	EventGuildMemberRemove          EventType = "GUILD_MEMBER_REMOVE"
	EventGuildMemberUpdate          EventType = "GUILD_MEMBER_UPDATE"
	EventGuildMembersChunk          EventType = "GUILD_MEMBERS_CHUNK"
	EventGuildRoleCreate            EventType = "GUILD_ROLE_CREATE"
	EventGuildRoleUpdate            EventType = "GUILD_ROLE_UPDATE"
	EventGuildRoleDelete            EventType = "GUILD_ROLE_DELETE"
	EventInviteCreate               EventType = "INVITE_CREATE"
	EventInviteDelete               EventType = "INVITE_DELETE"
	EventMessageCreate              EventType = "MESSAGE_CREATE"
	EventMessageUpdate              EventType = "MESSAGE_UPDATE"
	EventMessageDelete              EventType = "MESSAGE_DELETE"
	EventMessageDeleteBulk          EventType = "MESSAGE_DELETE_BULK"
	EventMessageReactionAdd         EventType = "MESSAGE_REACTION_ADD"
	EventMessageReactionRemove      EventType = "MESSAGE_REACTION_REMOVE"
	EventMessageReactionRemoveAll   EventType = "MESSAGE_REACTION_REMOVE_ALL"
	EventMessageReactionRemoveEmoji EventType = "MESSAGE_REACTION_REMOVE_EMOJI"
	EventPresenceUpdate             EventType = "PRESENCE_UPDATE"
	EventTypingStart                EventType = "TYPING_START"
	EventUserUpdate                 EventType = "USER_UPDATE"
	EventVoiceStateUpdate           EventType = "VOICE_STATE_UPDATE"
	EventWebhooksUpdate             EventType = "WEBHOOKS_UPDATE"
)

// Packet is one gateway dispatch.
//
// Data is the payload for Type: either the typed payload (a discordgo shape
// or one of the *Payload types below, by pointer or value) or a
// record.Record / map[string]any in wire form, which is decoded into the
// typed payload. For the update events of channels, guilds, members, roles,
// messages and users, a record payload is merged onto the cached entity
// first, so partial updates leave omitted fields untouched.
//
// Payload per type:
//
//	CHANNEL_CREATE, CHANNEL_UPDATE, CHANNEL_DELETE  discordgo.Channel
//	CHANNEL_PINS_UPDATE                             ChannelPinsPayload
//	GUILD_CREATE, GUILD_UPDATE                      discordgo.Guild
//	GUILD_DELETE                                    GuildDeletePayload
//	GUILD_BAN_ADD, GUILD_BAN_REMOVE                 BanPayload
//	GUILD_EMOJIS_UPDATE                             EmojisPayload
//	GUILD_INTEGRATIONS_UPDATE                       IntegrationsPayload
//	GUILD_MEMBER_ADD, GUILD_MEMBER_UPDATE           discordgo.Member
//	GUILD_MEMBER_REMOVE                             MemberRemovePayload
//	GUILD_MEMBERS_CHUNK                             MembersChunkPayload
//	GUILD_ROLE_CREATE, GUILD_ROLE_UPDATE            RolePayload
//	GUILD_ROLE_DELETE                               RoleDeletePayload
//	INVITE_CREATE                                   InvitePayload
//	INVITE_DELETE                                   InviteDeletePayload
//	MESSAGE_CREATE, MESSAGE_UPDATE                  discordgo.Message
//	MESSAGE_DELETE                                  MessageDeletePayload
//	MESSAGE_DELETE_BULK                             MessageDeleteBulkPayload
//	MESSAGE_REACTION_ADD, MESSAGE_REACTION_REMOVE   ReactionPayload
//	MESSAGE_REACTION_REMOVE_ALL                     ReactionRemoveAllPayload
//	MESSAGE_REACTION_REMOVE_EMOJI                   ReactionPayload
//	PRESENCE_UPDATE                                 PresencePayload
//	TYPING_START                                    TypingPayload
//	USER_UPDATE                                     discordgo.User
//	VOICE_STATE_UPDATE                              discordgo.VoiceState
//	WEBHOOKS_UPDATE                                 WebhooksPayload
type Packet struct {
	Type EventType
	Data any
}

// ChannelPinsPayload is the CHANNEL_PINS_UPDATE payload.
type ChannelPinsPayload struct {
	GuildID          string     `json:"guild_id,omitempty"`
	ChannelID        string     `json:"channel_id"`
	LastPinTimestamp *time.Time `json:"last_pin_timestamp,omitempty"`
}

// GuildDeletePayload is the GUILD_DELETE payload. Unavailable marks an
// outage rather than a removal.
type GuildDeletePayload struct {
	ID          string `json:"id"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// BanPayload is the GUILD_BAN_ADD and GUILD_BAN_REMOVE payload.
type BanPayload struct {
	GuildID string          `json:"guild_id"`
	User    *discordgo.User `json:"user"`
	Reason  string          `json:"reason,omitempty"`
}

// EmojisPayload is the GUILD_EMOJIS_UPDATE payload: the full emoji list.
type EmojisPayload struct {
	GuildID string             `json:"guild_id"`
	Emojis  []*discordgo.Emoji `json:"emojis"`
}

// IntegrationsPayload is the GUILD_INTEGRATIONS_UPDATE payload. When
// Integrations is non-nil it replaces the guild's integration list.
type IntegrationsPayload struct {
	GuildID      string                   `json:"guild_id"`
	Integrations []*discordgo.Integration `json:"integrations,omitempty"`
}

// MemberRemovePayload is the GUILD_MEMBER_REMOVE payload.
type MemberRemovePayload struct {
	GuildID string          `json:"guild_id"`
	User    *discordgo.User `json:"user"`
}

// MembersChunkPayload is the GUILD_MEMBERS_CHUNK payload.
type MembersChunkPayload struct {
	GuildID    string              `json:"guild_id"`
	Members    []*discordgo.Member `json:"members"`
	ChunkIndex int                 `json:"chunk_index"`
	ChunkCount int                 `json:"chunk_count"`
	Nonce      string              `json:"nonce,omitempty"`
}

// RolePayload is the GUILD_ROLE_CREATE and GUILD_ROLE_UPDATE payload.
type RolePayload struct {
	GuildID string          `json:"guild_id"`
	Role    *discordgo.Role `json:"role"`
}

// RoleDeletePayload is the GUILD_ROLE_DELETE payload.
type RoleDeletePayload struct {
	GuildID string `json:"guild_id"`
	RoleID  string `json:"role_id"`
}

// InvitePayload is the INVITE_CREATE payload.
type InvitePayload struct {
	ChannelID string          `json:"channel_id"`
	GuildID   string          `json:"guild_id,omitempty"`
	Code      string          `json:"code"`
	CreatedAt time.Time       `json:"created_at"`
	Inviter   *discordgo.User `json:"inviter,omitempty"`
	MaxAge    int             `json:"max_age"`
	MaxUses   int             `json:"max_uses"`
	Temporary bool            `json:"temporary"`
	Uses      int             `json:"uses"`
}

// InviteDeletePayload is the INVITE_DELETE payload.
type InviteDeletePayload struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
	Code      string `json:"code"`
}

// MessageDeletePayload is the MESSAGE_DELETE payload.
type MessageDeletePayload struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
}

// MessageDeleteBulkPayload is the MESSAGE_DELETE_BULK payload.
type MessageDeleteBulkPayload struct {
	IDs       []string `json:"ids"`
	ChannelID string   `json:"channel_id"`
	GuildID   string   `json:"guild_id,omitempty"`
}

// ReactionPayload is the payload of single-emoji reaction events.
type ReactionPayload struct {
	UserID    string          `json:"user_id,omitempty"`
	ChannelID string          `json:"channel_id"`
	MessageID string          `json:"message_id"`
	GuildID   string          `json:"guild_id,omitempty"`
	Emoji     discordgo.Emoji `json:"emoji"`
}

// ReactionRemoveAllPayload is the MESSAGE_REACTION_REMOVE_ALL payload.
type ReactionRemoveAllPayload struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	GuildID   string `json:"guild_id,omitempty"`
}

// PresencePayload is the PRESENCE_UPDATE payload.
type PresencePayload struct {
	GuildID    string                `json:"guild_id"`
	User       *discordgo.User       `json:"user"`
	Status     discordgo.Status      `json:"status"`
	Activities []*discordgo.Activity `json:"activities"`
}

// TypingPayload is the TYPING_START payload. Timestamp is in Unix seconds.
type TypingPayload struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

// WebhooksPayload is the WEBHOOKS_UPDATE payload. When Webhooks is non-nil
// it replaces the channel's webhook list.
type WebhooksPayload struct {
	GuildID   string               `json:"guild_id"`
	ChannelID string               `json:"channel_id"`
	Webhooks  []*discordgo.Webhook `json:"webhooks,omitempty"`
}

// decodePayload converts packet data into *T. It accepts *T, T, and wire
// records.
func decodePayload[T any](data any) (*T, bool) {
	switch v := data.(type) {
	case *T:
		return v, v != nil
	case T:
		return &v, true
	case record.Record:
		return decodeRecord[T](v)
	case map[string]any:
		return decodeRecord[T](record.Record(v))
	}
	return nil, false
}

func decodeRecord[T any](r record.Record) (*T, bool) {
	out := new(T)
	if err := record.Decode(r, out); err != nil {
		return nil, false
	}
	return out, true
}

// decodeOnto is decodePayload for update packets. A wire record is first
// merged onto the current state of the entity it targets; base extracts that
// state from the record, or returns nil when the target is not cached.
func decodeOnto[T any](data any, base func(record.Record) any) (*T, bool) {
	var raw record.Record
	switch v := data.(type) {
	case record.Record:
		raw = v
	case map[string]any:
		raw = record.Record(v)
	default:
		return decodePayload[T](data)
	}

	current := base(raw)
	if current == nil {
		return decodeRecord[T](raw)
	}
	encoded, err := record.Encode(current)
	if err != nil {
		return nil, false
	}
	normalized, err := record.Encode(raw)
	if err != nil {
		return nil, false
	}
	return decodeRecord[T](record.Merge(encoded, normalized))
}

func stringField(r record.Record, key string) string {
	s, _ := r[key].(string)
	return s
}

func asRecord(v any) record.Record {
	switch m := v.(type) {
	case record.Record:
		return m
	case map[string]any:
		return m
	}
	return nil
}
