package guild

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/discord"
	"github.com/jamesprial/discordmock/internal/tools"
	"github.com/jamesprial/discordmock/permissions"
)

func toolGetRoles(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_get_roles"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("List roles in a Discord guild, highest first."),
		mcp.WithString("guild_id",
			mcp.Description("Guild (server) ID (optional, uses default guild if omitted)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		guildID := guildParam(req.GetString("guild_id", ""), defaultGuildID)
		params := map[string]any{"guild_id": guildID}

		raw, err := dg.GuildRoles(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		summaries := make([]RoleSummary, 0, len(raw))
		for _, r := range raw {
			summaries = append(summaries, summarizeRole(r))
		}

		tools.LogCall(logger, toolName, params, fmt.Sprintf("ok: %d roles", len(summaries)), start)
		return tools.JSONResult(summaries), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolCreateRole(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_create_role"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Create a role in a Discord guild. Requires MANAGE_ROLES."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Role name"),
		),
		mcp.WithString("permissions",
			mcp.Description("Comma-separated permission flags, e.g. SEND_MESSAGES,KICK_MEMBERS (optional, defaults to @everyone's)"),
		),
		mcp.WithNumber("color",
			mcp.Description("RGB color as an integer (optional)"),
		),
		mcp.WithBoolean("hoist",
			mcp.Description("Display members separately (optional)"),
		),
		mcp.WithBoolean("mentionable",
			mcp.Description("Allow anyone to mention the role (optional)"),
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
		name := req.GetString("name", "")
		flags := req.GetString("permissions", "")
		reason := req.GetString("reason", "")
		params := map[string]any{"guild_id": guildID, "name": name, "permissions": flags, "reason": reason}

		color := req.GetInt("color", 0)
		hoist := req.GetBool("hoist", false)
		mentionable := req.GetBool("mentionable", false)
		data := &discordgo.RoleParams{
			Name:        name,
			Color:       &color,
			Hoist:       &hoist,
			Mentionable: &mentionable,
		}
		if flags != "" {
			perm, err := permissions.Parse(strings.Split(flags, ","))
			if err != nil {
				tools.LogCall(logger, toolName, params, "error: "+err.Error(), start)
				return tools.ErrorResult(err.Error()), nil
			}
			data.Permissions = &perm
		}

		role, err := dg.GuildRoleCreate(guildID, data,
			discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok: "+role.ID, start)
		return tools.JSONResult(summarizeRole(role)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolDeleteRole(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_delete_role"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Delete a role. Members lose it and the deletion is audited."),
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
		roleID := req.GetString("role_id", "")
		reason := req.GetString("reason", "")
		params := map[string]any{"guild_id": guildID, "role_id": roleID, "reason": reason}

		err := dg.GuildRoleDelete(guildID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("Role %s deleted", roleID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
