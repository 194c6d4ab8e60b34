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

func toolGetUser(dg discord.DiscordClient, logger *slog.Logger) tools.Registration {
	const toolName = "discord_get_user"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Retrieve information about a Discord user by their ID."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Discord user ID, or @me for the bot"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		userID := req.GetString("user_id", "")
		params := map[string]any{"user_id": userID}

		u, err := dg.User(userID, discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		summary := UserSummary{
			ID:            u.ID,
			Username:      u.Username,
			Discriminator: u.Discriminator,
			Bot:           u.Bot,
			AvatarURL:     u.AvatarURL(""),
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return tools.JSONResult(summary), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolSendDM(dg discord.DiscordClient, logger *slog.Logger) tools.Registration {
	const toolName = "discord_send_dm"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Send a direct message to a user as the bot."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Discord user ID"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Message content to send"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		userID := req.GetString("user_id", "")
		content := req.GetString("content", "")
		params := map[string]any{"user_id": userID, "content": content}

		dm, err := dg.UserChannelCreate(userID, discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}
		msg, err := dg.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{Content: content}, discordgo.WithContext(ctx))
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok: "+msg.ID, start)
		return mcp.NewToolResultText(fmt.Sprintf("DM sent to %s (channel: %s, ID: %s)", userID, dm.ID, msg.ID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
