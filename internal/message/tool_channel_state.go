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

func toolPinMessage(dg discord.DiscordClient, r resolve.ChannelResolver, logger *slog.Logger) tools.Registration {
	const toolName = "discord_pin_message"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Pin or unpin a message."),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message"),
		),
		mcp.WithBoolean("unpin",
			mcp.Description("Unpin instead of pin (default: false)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		channel := req.GetString("channel", "")
		messageID := req.GetString("message_id", "")
		unpin := req.GetBool("unpin", false)
		params := map[string]any{
			"channel":    channel,
			"message_id": messageID,
			"unpin":      unpin,
		}

		channelID, _, errResult := tools.ResolveChannel(r, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}

		op, verb := dg.ChannelMessagePin, "pinned"
		if unpin {
			op, verb = dg.ChannelMessageUnpin, "unpinned"
		}
		if err := op(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("Message %s %s", messageID, verb)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolTyping(dg discord.DiscordClient, r resolve.ChannelResolver, logger *slog.Logger) tools.Registration {
	const toolName = "discord_typing"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Show the bot as typing in a channel."),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		channel := req.GetString("channel", "")
		params := map[string]any{"channel": channel}

		channelID, name, errResult := tools.ResolveChannel(r, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}

		if err := dg.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("Typing in #%s", name)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
