package message

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/discord"
	"github.com/jamesprial/discordmock/internal/resolve"
	"github.com/jamesprial/discordmock/internal/tools"
)

func toolGetMessages(dg discord.DiscordClient, r resolve.ChannelResolver, logger *slog.Logger) tools.Registration {
	const toolName = "discord_get_messages"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Retrieve recent messages from a Discord channel, newest first."),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of messages to retrieve (default: 50, max: 100)"),
		),
		mcp.WithString("before",
			mcp.Description("Retrieve messages before this message ID (optional)"),
		),
		mcp.WithString("after",
			mcp.Description("Retrieve messages after this message ID (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		channel := req.GetString("channel", "")
		before := req.GetString("before", "")
		after := req.GetString("after", "")

		limit := req.GetInt("limit", 50)
		if limit <= 0 {
			limit = 50
		}
		limit = min(limit, 100)

		params := map[string]any{
			"channel": channel,
			"limit":   limit,
			"before":  before,
			"after":   after,
		}

		channelID, _, errResult := tools.ResolveChannel(r, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}

		raw, err := dg.ChannelMessages(channelID, limit, before, after, "", discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		summaries := make([]MessageSummary, 0, len(raw))
		for _, m := range raw {
			summaries = append(summaries, summarize(m))
		}

		tools.LogCall(logger, toolName, params, fmt.Sprintf("ok: %d messages", len(summaries)), start)
		return tools.JSONResult(summaries), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
