package guild

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/discord"
	"github.com/jamesprial/discordmock/internal/tools"
)

func toolGetMember(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_get_member"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Retrieve a guild member with their roles."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Discord user ID"),
		),
		mcp.WithString("guild_id",
			mcp.Description("Guild (server) ID (optional, uses default guild if omitted)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		guildID := guildParam(req.GetString("guild_id", ""), defaultGuildID)
		userID := req.GetString("user_id", "")
		params := map[string]any{"guild_id": guildID, "user_id": userID}

		m, err := dg.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return tools.JSONResult(summarizeMember(m)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

// toolMemberRole builds discord_add_member_role and discord_remove_member_role.
func toolMemberRole(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger, toolName string) tools.Registration {
	add := toolName == "discord_add_member_role"
	desc, verb := "Revoke a role from a guild member. Requires MANAGE_ROLES above the role.", "removed from"
	op := dg.GuildMemberRoleRemove
	if add {
		desc, verb = "Grant a role to a guild member. Requires MANAGE_ROLES above the role.", "added to"
		op = dg.GuildMemberRoleAdd
	}

	tool := mcp.NewTool(toolName,
		mcp.WithDescription(desc),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Discord user ID"),
		),
		mcp.WithString("role_id",
			mcp.Required(),
			mcp.Description("Role ID"),
		),
		mcp.WithString("guild_id",
			mcp.Description("Guild (server) ID (optional, uses default guild if omitted)"),
		),
		mcp.WithString("reason",
			mcp.Description("Audit log reason (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		guildID := guildParam(req.GetString("guild_id", ""), defaultGuildID)
		userID := req.GetString("user_id", "")
		roleID := req.GetString("role_id", "")
		reason := req.GetString("reason", "")
		params := map[string]any{"guild_id": guildID, "user_id": userID, "role_id": roleID, "reason": reason}

		err := op(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("Role %s %s member %s", roleID, verb, userID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolKickMember(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_kick_member"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Remove a member from the guild. Requires KICK_MEMBERS and a higher role."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Discord user ID"),
		),
		mcp.WithString("guild_id",
			mcp.Description("Guild (server) ID (optional, uses default guild if omitted)"),
		),
		mcp.WithString("reason",
			mcp.Description("Audit log reason (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		guildID := guildParam(req.GetString("guild_id", ""), defaultGuildID)
		userID := req.GetString("user_id", "")
		reason := req.GetString("reason", "")
		params := map[string]any{"guild_id": guildID, "user_id": userID, "reason": reason}

		if err := dg.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("Member %s kicked", userID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolBanMember(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_ban_member"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Ban a user from the guild. Requires BAN_MEMBERS and a higher role."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Discord user ID"),
		),
		mcp.WithNumber("delete_message_days",
			mcp.Description("Delete the user's messages from the last N days, 0 to 7 (default: 0)"),
		),
		mcp.WithString("guild_id",
			mcp.Description("Guild (server) ID (optional, uses default guild if omitted)"),
		),
		mcp.WithString("reason",
			mcp.Description("Audit log reason (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		guildID := guildParam(req.GetString("guild_id", ""), defaultGuildID)
		userID := req.GetString("user_id", "")
		days := req.GetInt("delete_message_days", 0)
		reason := req.GetString("reason", "")
		params := map[string]any{"guild_id": guildID, "user_id": userID, "delete_message_days": days, "reason": reason}

		if err := dg.GuildBanCreateWithReason(guildID, userID, reason, days, discordgo.WithContext(ctx)); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("User %s banned", userID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
