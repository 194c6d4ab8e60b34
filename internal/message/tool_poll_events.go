package message

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/queue"
	"github.com/jamesprial/discordmock/internal/resolve"
	"github.com/jamesprial/discordmock/internal/tools"
)

func toolPollEvents(q *queue.Queue, r resolve.ChannelResolver, logger *slog.Logger) tools.Registration {
	const toolName = "discord_poll_events"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Long-poll the sandbox event queue (messages, reactions, member joins and leaves)."),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Seconds to wait for events (default: server setting, max: 300)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of events to return (default: 50)"),
		),
		mcp.WithString("channel",
			mcp.Description("Channel name or ID to filter events (optional)"),
		),
		mcp.WithString("types",
			mcp.Description("Comma-separated event types, e.g. MESSAGE_CREATE,GUILD_MEMBER_ADD (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		fallback := int(q.PollTimeout() / time.Second)
		timeoutSec := req.GetInt("timeout_seconds", fallback)
		if timeoutSec <= 0 {
			timeoutSec = fallback
		}
		timeoutSec = min(timeoutSec, 300)

		limit := req.GetInt("limit", 50)
		if limit <= 0 {
			limit = 50
		}

		channel := req.GetString("channel", "")
		types := req.GetString("types", "")
		params := map[string]any{
			"timeout_seconds": timeoutSec,
			"limit":           limit,
			"channel":         channel,
			"types":           types,
		}

		var filter queue.Filter
		if channel != "" {
			id, err := resolve.ResolveChannelParam(r, channel)
			if err != nil {
				return tools.ErrorCallResult(logger, toolName, params, err, start), nil
			}
			filter.Channel = id
		}
		for _, t := range strings.Split(types, ",") {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				filter.Types = append(filter.Types, t)
			}
		}

		events := q.Poll(ctx, time.Duration(timeoutSec)*time.Second, limit, filter)
		if len(events) == 0 {
			tools.LogCall(logger, toolName, params, "no events", start)
			return mcp.NewToolResultText("No new events"), nil
		}

		tools.LogCall(logger, toolName, params, fmt.Sprintf("ok: %d events", len(events)), start)
		return tools.JSONResult(events), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
