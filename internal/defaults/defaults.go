// Package defaults builds the baseline record for each data shape. Callers
// merge partial records on top of these so every constructed entity starts
// from a complete, type-consistent record.
package defaults

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

// ChannelTypeStore is the retired store channel type. It is kept so store
// channels still construct as their own variant.
const ChannelTypeStore discordgo.ChannelType = 6

// User is the baseline user record.
func User(id string) record.Record {
	return record.MustEncode(&discordgo.User{
		ID:            id,
		Username:      "user",
		Discriminator: "0001",
	})
}

// Guild is the baseline guild record. It carries no collections; the
// @everyone role is added by the caller.
func Guild(id, ownerID string, joined time.Time) record.Record {
	return record.MustEncode(&discordgo.Guild{
		ID:                id,
		Name:              "guild",
		OwnerID:           ownerID,
		AfkTimeout:        300,
		VerificationLevel: discordgo.VerificationLevelNone,
		JoinedAt:          joined,
		MemberCount:       0,
		Features:          []discordgo.GuildFeature{},
	})
}

// EveryoneRole is the @everyone role of guildID. It shares the guild's ID
// and always sits at position 0.
func EveryoneRole(guildID string) record.Record {
	return record.MustEncode(&discordgo.Role{
		ID:          guildID,
		Name:        "@everyone",
		Position:    0,
		Permissions: permissions.DefaultEveryone,
	})
}

// Role is the baseline for a created role.
func Role(id string) record.Record {
	return record.MustEncode(&discordgo.Role{
		ID:       id,
		Name:     "new role",
		Position: 1,
	})
}

// Channel is the baseline channel record for type t.
func Channel(id string, t discordgo.ChannelType) record.Record {
	ch := &discordgo.Channel{
		ID:                   id,
		Type:                 t,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{},
	}
	switch t {
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		ch.Name = "voice-channel"
		ch.Bitrate = 64000
	case discordgo.ChannelTypeGuildCategory:
		ch.Name = "category"
	case discordgo.ChannelTypeDM, discordgo.ChannelTypeGroupDM:
		ch.Recipients = []*discordgo.User{}
	default:
		ch.Name = "text-channel"
	}
	return record.MustEncode(ch)
}

// Member is the baseline member record for user in guildID.
func Member(guildID string, user *discordgo.User, joined time.Time) record.Record {
	return record.MustEncode(&discordgo.Member{
		GuildID:  guildID,
		JoinedAt: joined,
		User:     user,
		Roles:    []string{},
	})
}

// Message is the baseline message record.
func Message(id, channelID string, author *discordgo.User, at time.Time) record.Record {
	return record.MustEncode(&discordgo.Message{
		ID:           id,
		ChannelID:    channelID,
		Author:       author,
		Timestamp:    at,
		Type:         discordgo.MessageTypeDefault,
		Mentions:     []*discordgo.User{},
		MentionRoles: []string{},
		Attachments:  []*discordgo.MessageAttachment{},
		Embeds:       []*discordgo.MessageEmbed{},
	})
}

// Emoji is the baseline custom emoji record.
func Emoji(id, name string, creator *discordgo.User) record.Record {
	return record.MustEncode(&discordgo.Emoji{
		ID:            id,
		Name:          name,
		Roles:         []string{},
		User:          creator,
		RequireColons: true,
		Available:     true,
	})
}

// Invite is the baseline invite record.
func Invite(code string, inviter *discordgo.User, at time.Time) record.Record {
	return record.MustEncode(&discordgo.Invite{
		Code:      code,
		Inviter:   inviter,
		CreatedAt: at,
		MaxAge:    86400,
	})
}

// Webhook is the baseline incoming webhook record.
func Webhook(id, guildID, channelID, token string, creator *discordgo.User) record.Record {
	return record.MustEncode(&discordgo.Webhook{
		ID:        id,
		Type:      discordgo.WebhookTypeIncoming,
		GuildID:   guildID,
		ChannelID: channelID,
		Name:      "Captain Hook",
		Token:     token,
		User:      creator,
	})
}

// Integration is the baseline integration record.
func Integration(id, kind string, user *discordgo.User, at time.Time) record.Record {
	return record.MustEncode(&discordgo.Integration{
		ID:       id,
		Name:     "integration",
		Type:     kind,
		Enabled:  true,
		User:     user,
		SyncedAt: at,
	})
}

// VoiceRegion describes a voice server region.
type VoiceRegion struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Optimal    bool   `json:"optimal"`
	Deprecated bool   `json:"deprecated"`
	Custom     bool   `json:"custom"`
}

// VoiceRegions is the fixed region list served by the mock.
func VoiceRegions() []VoiceRegion {
	return []VoiceRegion{
		{ID: "us-central", Name: "US Central", Optimal: true},
		{ID: "us-east", Name: "US East"},
		{ID: "us-west", Name: "US West"},
		{ID: "europe", Name: "Europe"},
		{ID: "singapore", Name: "Singapore"},
		{ID: "sydney", Name: "Sydney"},
	}
}
