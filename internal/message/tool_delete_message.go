package message

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
	"github.com/jamesprial/discordmock/internal/resolve"
	"github.com/jamesprial/discordmock/internal/tools"
)

func toolDeleteMessage(dg discord.DiscordClient, r resolve.ChannelResolver, logger *slog.Logger) tools.Registration {
	const toolName = "discord_delete_message"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Delete a message. Deleting another user's message needs Manage Messages and is audited."),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to delete"),
		),
		mcp.WithString("reason",
			mcp.Description("Audit log reason (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		channel := req.GetString("channel", "")
		messageID := req.GetString("message_id", "")
		reason := req.GetString("reason", "")
		params := map[string]any{
			"channel":    channel,
			"message_id": messageID,
			"reason":     reason,
		}

		channelID, _, errResult := tools.ResolveChannel(r, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}

		err := dg.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("Message %s deleted", messageID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolBulkDelete(dg discord.DiscordClient, r resolve.ChannelResolver, logger *slog.Logger) tools.Registration {
	const toolName = "discord_bulk_delete_messages"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Delete 2 to 100 messages at once. Messages older than 14 days are rejected."),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
		mcp.WithString("message_ids",
			mcp.Required(),
			mcp.Description("Comma-separated message IDs"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		channel := req.GetString("channel", "")
		raw := req.GetString("message_ids", "")
		params := map[string]any{
			"channel":     channel,
			"message_ids": raw,
		}

		channelID, _, errResult := tools.ResolveChannel(r, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}

		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}

		if err := dg.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, fmt.Sprintf("ok: %d ids", len(ids)), start)
		return mcp.NewToolResultText(fmt.Sprintf("Bulk delete of %d messages accepted", len(ids))), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
