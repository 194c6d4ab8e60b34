package message

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/discord"
	"github.com/jamesprial/discordmock/internal/resolve"
	"github.com/jamesprial/discordmock/internal/tools"
)

// composer is a tool that writes content into a channel as the bot and
// answers with the resulting message.
type composer struct {
	name    string
	desc    string
	options []mcp.ToolOption
	// args copies the tool specific arguments into the logged params.
	args  []string
	write func(ctx context.Context, channelID string, req mcp.CallToolRequest) (*discordgo.Message, error)
}

func toolSendMessage(dg discord.DiscordClient, r resolve.ChannelResolver, logger *slog.Logger) tools.Registration {
	return toolCompose(r, logger, composer{
		name: "discord_send_message",
		desc: "Send a message to a Discord channel as the bot. Returns the sent message.",
		options: []mcp.ToolOption{
			mcp.WithString("reply_to",
				mcp.Description("Message ID to reply to (optional)"),
			),
			mcp.WithBoolean("tts",
				mcp.Description("Send as a text-to-speech message (optional)"),
			),
		},
		args: []string{"reply_to"},
		write: func(ctx context.Context, channelID string, req mcp.CallToolRequest) (*discordgo.Message, error) {
			data := &discordgo.MessageSend{
				Content: req.GetString("content", ""),
				TTS:     req.GetBool("tts", false),
			}
			if replyTo := req.GetString("reply_to", ""); replyTo != "" {
				data.Reference = &discordgo.MessageReference{MessageID: replyTo, ChannelID: channelID}
			}
			return dg.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
		},
	})
}

func toolEditMessage(dg discord.DiscordClient, r resolve.ChannelResolver, logger *slog.Logger) tools.Registration {
	return toolCompose(r, logger, composer{
		name: "discord_edit_message",
		desc: "Replace the content of one of the bot's own messages. Returns the edited message.",
		options: []mcp.ToolOption{
			mcp.WithString("message_id",
				mcp.Required(),
				mcp.Description("ID of the message to edit"),
			),
		},
		args: []string{"message_id"},
		write: func(ctx context.Context, channelID string, req mcp.CallToolRequest) (*discordgo.Message, error) {
			return dg.ChannelMessageEdit(channelID, req.GetString("message_id", ""), req.GetString("content", ""), discordgo.WithContext(ctx))
		},
	})
}

func toolCompose(r resolve.ChannelResolver, logger *slog.Logger, c composer) tools.Registration {
	opts := []mcp.ToolOption{
		mcp.WithDescription(c.desc),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Message content, up to 2000 characters"),
		),
	}
	tool := mcp.NewTool(c.name, append(opts, c.options...)...)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		channel := req.GetString("channel", "")
		params := map[string]any{
			"channel": channel,
			"content": req.GetString("content", ""),
		}
		for _, arg := range c.args {
			params[arg] = req.GetString(arg, "")
		}

		channelID, _, errResult := tools.ResolveChannel(r, logger, c.name, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}

		msg, err := c.write(ctx, channelID, req)
		if err != nil {
			return tools.ErrorCallResult(logger, c.name, params, err, start), nil
		}

		tools.LogCall(logger, c.name, params, "ok: "+msg.ID, start)
		return tools.JSONResult(summarize(msg)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
