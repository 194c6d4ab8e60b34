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

func toolGetAuditLog(dg discord.DiscordClient, defaultGuildID string, logger *slog.Logger) tools.Registration {
	const toolName = "discord_get_audit_log"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Query the guild audit log, newest first. Requires VIEW_AUDIT_LOG."),
		mcp.WithString("user_id",
			mcp.Description("Only entries performed by this user (optional)"),
		),
		mcp.WithNumber("action_type",
			mcp.Description("Only entries of this audit log action type, e.g. 72 for message delete (optional)"),
		),
		mcp.WithString("before",
			mcp.Description("Only entries older than this entry ID (optional)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of entries to return (default: 50, max: 100)"),
		),
		mcp.WithString("guild_id",
			mcp.Description("Guild (server) ID (optional, uses default guild if omitted)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		guildID := guildParam(req.GetString("guild_id", ""), defaultGuildID)
		userID := req.GetString("user_id", "")
		action := req.GetInt("action_type", 0)
		before := req.GetString("before", "")
		limit := req.GetInt("limit", 0)
		params := map[string]any{
			"guild_id":    guildID,
			"user_id":     userID,
			"action_type": action,
			"before":      before,
			"limit":       limit,
		}

		log, err := dg.GuildAuditLog(guildID, userID, before, action, limit, discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		entries := make([]AuditEntrySummary, 0, len(log.AuditLogEntries))
		for _, e := range log.AuditLogEntries {
			s := AuditEntrySummary{
				ID:       e.ID,
				UserID:   e.UserID,
				TargetID: e.TargetID,
				Reason:   e.Reason,
				Changes:  len(e.Changes),
			}
			if e.ActionType != nil {
				s.Action = int(*e.ActionType)
			}
			entries = append(entries, s)
		}

		tools.LogCall(logger, toolName, params, fmt.Sprintf("ok: %d entries", len(entries)), start)
		return tools.JSONResult(entries), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
