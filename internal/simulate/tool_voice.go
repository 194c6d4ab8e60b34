package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/sandbox"
	"github.com/jamesprial/discordmock/internal/tools"
)

func toolVoiceJoin(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_voice_join"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Connect a sandbox member to a voice channel, moving them if already connected."),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Member username or user ID"),
		),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Voice channel name or ID"),
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
		v, err := s.Voice(channelID)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		if _, err := s.Client.Simulate().JoinVoice(ctx, v, m.User.ID); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("%s joined voice channel %s", m.User.Username, channelName)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolVoiceLeave(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_voice_leave"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Disconnect a sandbox member from voice."),
		mcp.WithString("user",
			mcp.Required(),
			mcp.Description("Member username or user ID"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ref := req.GetString("user", "")
		params := map[string]any{"user": ref}

		m, err := s.Member(ref)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}
		if err := s.Client.Simulate().LeaveVoice(ctx, s.Guild, m.User.ID); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("%s left voice", m.User.Username)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
