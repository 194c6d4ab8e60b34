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

// toolReaction builds discord_add_reaction or discord_remove_reaction; the
// two share their parameters.
func toolReaction(dg discord.DiscordClient, r resolve.ChannelResolver, logger *slog.Logger, toolName string) tools.Registration {
	add := toolName == "discord_add_reaction"
	desc := "Add a reaction to a message as the bot."
	if !add {
		desc = "Remove a reaction from a message. Removing another user's reaction needs Manage Messages."
	}

	opts := []mcp.ToolOption{
		mcp.WithDescription(desc),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message"),
		),
		mcp.WithString("emoji",
			mcp.Required(),
			mcp.Description("Unicode emoji or name:id for a custom emoji"),
		),
	}
	if !add {
		opts = append(opts, mcp.WithString("user_id",
			mcp.Description("Whose reaction to remove (default: the bot's own)"),
		))
	}
	tool := mcp.NewTool(toolName, opts...)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		channel := req.GetString("channel", "")
		messageID := req.GetString("message_id", "")
		emoji := req.GetString("emoji", "")
		userID := req.GetString("user_id", "@me")
		params := map[string]any{
			"channel":    channel,
			"message_id": messageID,
			"emoji":      emoji,
		}

		channelID, _, errResult := tools.ResolveChannel(r, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}

		var err error
		if add {
			err = dg.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
		} else {
			params["user_id"] = userID
			err = dg.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx))
		}
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		verb := "added to"
		if !add {
			verb = "removed from"
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reaction %s %s message %s", emoji, verb, messageID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
