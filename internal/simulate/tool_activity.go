package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/sandbox"
	"github.com/jamesprial/discordmock/internal/tools"
)

func toolUserMessage(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_user_message"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Post a message as a sandbox member. The bot receives it as a MESSAGE_CREATE event."),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Member username or user ID"),
		),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Message content"),
		),
		mcp.WithString("reply_to",
			mcp.Description("Message ID to reply to (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ref := req.GetString("user", "")
		channel := req.GetString("channel", "")
		content := req.GetString("content", "")
		replyTo := req.GetString("reply_to", "")
		params := map[string]any{"user": ref, "channel": channel, "content": content, "reply_to": replyTo}

		m, err := s.Member(ref)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}
		channelID, _, errResult := tools.ResolveChannel(s.Resolver, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}
		t, err := s.Text(channelID)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		data := &discordgo.MessageSend{Content: content}
		if replyTo != "" {
			data.Reference = &discordgo.MessageReference{MessageID: replyTo, ChannelID: channelID}
		}
		msg, err := s.Client.Simulate().SendMessage(ctx, t, m.User.ID, data)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok: "+msg.ID, start)
		return mcp.NewToolResultText(fmt.Sprintf("%s sent message %s", m.User.Username, msg.ID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolUserReact(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_user_react"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Add or remove a sandbox member's reaction on a message."),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Member username or user ID"),
		),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("Message ID"),
		),
		mcp.WithString("emoji",
			mcp.Required(),
			mcp.Description("Unicode emoji or name:id for a custom emoji"),
		),
		mcp.WithBoolean("remove",
			mcp.Description("Remove the reaction instead of adding it (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ref := req.GetString("user", "")
		channel := req.GetString("channel", "")
		messageID := req.GetString("message_id", "")
		emoji := req.GetString("emoji", "")
		remove := req.GetBool("remove", false)
		params := map[string]any{"user": ref, "channel": channel, "message_id": messageID, "emoji": emoji, "remove": remove}

		m, err := s.Member(ref)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}
		channelID, _, errResult := tools.ResolveChannel(s.Resolver, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}
		msg, err := s.Message(ctx, channelID, messageID)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		op, verb := s.Client.Simulate().React, "reacted"
		if remove {
			op, verb = s.Client.Simulate().Unreact, "removed reaction"
		}
		if err := op(ctx, msg, m.User.ID, emoji); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("%s %s %s on message %s", m.User.Username, verb, emoji, messageID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolUserTyping(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_user_typing"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Show a sandbox member typing in a channel."),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Member username or user ID"),
		),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel name or ID"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ref := req.GetString("user", "")
		channel := req.GetString("channel", "")
		params := map[string]any{"user": ref, "channel": channel}

		m, err := s.Member(ref)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}
		channelID, channelName, errResult := tools.ResolveChannel(s.Resolver, logger, toolName, channel, params, start)
		if errResult != nil {
			return errResult, nil
		}
		t, err := s.Text(channelID)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		if err := s.Client.Simulate().StartTyping(ctx, t, m.User.ID); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("%s is typing in #%s", m.User.Username, channelName)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolUserPresence(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_user_presence"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Set a sandbox member's presence status and activity."),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Member username or user ID"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("online, idle, dnd, invisible or offline"),
		),
		mcp.WithString("activity",
			mcp.Description("Name of the game being played (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ref := req.GetString("user", "")
		status := strings.ToLower(req.GetString("status", ""))
		activity := req.GetString("activity", "")
		params := map[string]any{"user": ref, "status": status, "activity": activity}

		m, err := s.Member(ref)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		var activities []*discordgo.Activity
		if activity != "" {
			activities = append(activities, &discordgo.Activity{Name: activity, Type: discordgo.ActivityTypeGame})
		}
		if err := s.Client.Simulate().SetPresence(ctx, m.User.ID, discordgo.Status(status), activities); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("%s is now %s", m.User.Username, status)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
