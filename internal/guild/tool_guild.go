package guild

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/config"
	"github.com/jamesprial/discordmock/internal/discord"
	"github.com/jamesprial/discordmock/internal/tools"
)

func toolGetGuild(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_get_guild"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Retrieve information about a Discord guild (server)."),
		mcp.WithString("guild_id",
			mcp.Description("Guild (server) ID (optional, uses default guild if omitted)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		guildID := guildParam(req.GetString("guild_id", ""), defaultGuildID)
		params := map[string]any{"guild_id": guildID}

		logger.Debug("fetching guild info", "guildID", guildID)

		g, err := dg.Guild(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		summary := GuildSummary{
			ID:              g.ID,
			Name:            g.Name,
			MemberCount:     g.MemberCount,
			OwnerID:         g.OwnerID,
			Description:     g.Description,
			SystemChannelID: g.SystemChannelID,
			Roles:           len(g.Roles),
			Channels:        len(g.Channels),
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return tools.JSONResult(summary), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolGetChannels(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_get_channels"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("List channels in a Discord guild."),
		mcp.WithString("guild_id",
			mcp.Description("Guild (server) ID (optional, uses default guild if omitted)"),
		),
		mcp.WithString("type",
			mcp.Description("Only list channels of this type: text, voice, category or news (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		guildID := guildParam(req.GetString("guild_id", ""), defaultGuildID)
		typeName := req.GetString("type", "")
		params := map[string]any{"guild_id": guildID, "type": typeName}

		var want discordgo.ChannelType
		if typeName != "" {
			t, ok := config.ChannelType(typeName)
			if !ok {
				tools.LogCall(logger, toolName, params, "error: bad type", start)
				return tools.ErrorResult(fmt.Sprintf("unknown channel type %q", typeName)), nil
			}
			want = t
		}

		raw, err := dg.GuildChannels(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		summaries := make([]ChannelSummary, 0, len(raw))
		for _, ch := range raw {
			if typeName != "" && ch.Type != want {
				continue
			}
			summaries = append(summaries, summarizeChannel(ch))
		}

		tools.LogCall(logger, toolName, params, fmt.Sprintf("ok: %d channels", len(summaries)), start)
		return tools.JSONResult(summaries), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolCreateChannel(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_create_channel"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Create a channel in a Discord guild. Requires MANAGE_CHANNELS."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Channel name"),
		),
		mcp.WithString("type",
			mcp.Description("Channel type: text, voice, category or news (default: text)"),
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
		typeName := req.GetString("type", "")
		reason := req.GetString("reason", "")
		params := map[string]any{"guild_id": guildID, "name": name, "type": typeName, "reason": reason}

		ctype, ok := config.ChannelType(typeName)
		if !ok {
			tools.LogCall(logger, toolName, params, "error: bad type", start)
			return tools.ErrorResult(fmt.Sprintf("unknown channel type %q", typeName)), nil
		}

		ch, err := dg.GuildChannelCreate(guildID, name, ctype,
			discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok: "+ch.ID, start)
		return tools.JSONResult(summarizeChannel(ch)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
