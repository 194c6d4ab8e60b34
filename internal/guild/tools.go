// Package guild provides MCP tool handlers for Discord guild operations:
// guild and channel info, roles, member moderation, the audit log and users.
package guild

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/internal/config"
	"github.com/jamesprial/discordmock/internal/discord"
	"github.com/jamesprial/discordmock/internal/tools"
	"github.com/jamesprial/discordmock/permissions"
)

// GuildSummary is the response shape returned by discord_get_guild.
type GuildSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MemberCount     int    `json:"member_count"`
	OwnerID         string `json:"owner_id"`
	Description     string `json:"description,omitempty"`
	SystemChannelID string `json:"system_channel_id,omitempty"`
	Roles           int    `json:"roles"`
	Channels        int    `json:"channels"`
}

// ChannelSummary is the response shape for a single channel entry.
type ChannelSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Topic    string `json:"topic,omitempty"`
	Category string `json:"category,omitempty"`
	Position int    `json:"position"`
}

// RoleSummary is the response shape for a single role entry.
type RoleSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Color       int      `json:"color,omitempty"`
	Position    int      `json:"position"`
	Permissions []string `json:"permissions"`
	Hoist       bool     `json:"hoist,omitempty"`
	Mentionable bool     `json:"mentionable,omitempty"`
}

// MemberSummary is the response shape returned by discord_get_member.
type MemberSummary struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Nick     string    `json:"nick,omitempty"`
	Bot      bool      `json:"bot,omitempty"`
	Roles    []string  `json:"roles"`
	JoinedAt time.Time `json:"joined_at"`
}

// UserSummary is the response shape returned by discord_get_user.
type UserSummary struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Bot           bool   `json:"bot"`
	AvatarURL     string `json:"avatar_url"`
}

// AuditEntrySummary is one entry returned by discord_get_audit_log.
type AuditEntrySummary struct {
	ID       string `json:"id"`
	Action   int    `json:"action_type"`
	UserID   string `json:"user_id"`
	TargetID string `json:"target_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Changes  int    `json:"changes,omitempty"`
}

func summarizeChannel(ch *discordgo.Channel) ChannelSummary {
	return ChannelSummary{
		ID:       ch.ID,
		Name:     ch.Name,
		Type:     config.ChannelTypeName(ch.Type),
		Topic:    ch.Topic,
		Category: ch.ParentID,
		Position: ch.Position,
	}
}

func summarizeRole(r *discordgo.Role) RoleSummary {
	return RoleSummary{
		ID:          r.ID,
		Name:        r.Name,
		Color:       r.Color,
		Position:    r.Position,
		Permissions: permissions.Names(r.Permissions),
		Hoist:       r.Hoist,
		Mentionable: r.Mentionable,
	}
}

func summarizeMember(m *discordgo.Member) MemberSummary {
	s := MemberSummary{Nick: m.Nick, Roles: m.Roles, JoinedAt: m.JoinedAt}
	if s.Roles == nil {
		s.Roles = []string{}
	}
	if m.User != nil {
		s.UserID = m.User.ID
		s.Username = m.User.Username
		s.Bot = m.User.Bot
	}
	return s
}

// GuildTools returns all tool registrations for Discord guild operations.
// Tools that take an optional guild_id fall back to defaultGuildID.
func GuildTools(
	dg discord.DiscordClient,
	defaultGuildID string,
	logger *slog.Logger,
) []tools.Registration {
	logger = tools.DefaultLogger(logger)
	return []tools.Registration{
		toolGetGuild(dg, defaultGuildID, logger),
		toolGetChannels(dg, defaultGuildID, logger),
		toolCreateChannel(dg, defaultGuildID, logger),
		toolGetRoles(dg, defaultGuildID, logger),
		toolCreateRole(dg, defaultGuildID, logger),
		toolDeleteRole(dg, defaultGuildID, logger),
		toolGetMember(dg, defaultGuildID, logger),
		toolMemberRole(dg, defaultGuildID, logger, "discord_add_member_role"),
		toolMemberRole(dg, defaultGuildID, logger, "discord_remove_member_role"),
		toolKickMember(dg, defaultGuildID, logger),
		toolBanMember(dg, defaultGuildID, logger),
		toolGetAuditLog(dg, defaultGuildID, logger),
		toolGetUser(dg, logger),
		toolSendDM(dg, logger),
	}
}

func guildParam(guildID, defaultGuildID string) string {
	if guildID == "" {
		return defaultGuildID
	}
	return guildID
}
