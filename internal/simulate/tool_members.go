package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/internal/sandbox"
	"github.com/jamesprial/discordmock/internal/tools"
)

func toolListMembers(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_list_members"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("List the sandbox guild's members with their IDs, presence and voice channel."),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		s.Client.Settle()

		members := s.Guild.Members.Values()
		out := make([]MemberSummary, 0, len(members))
		for _, m := range members {
			out = append(out, summarizeMember(s.Guild, m))
		}

		tools.LogCall(logger, toolName, nil, fmt.Sprintf("ok: %d members", len(out)), start)
		return tools.JSONResult(out), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolUserJoin(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_user_join"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Have a new or departed user join the sandbox guild."),
		mcp.WithString("username",
			mcp.Required(),
			mcp.Description("Username of a new user, or the ID of a user who left"),
		),
		mcp.WithBoolean("bot",
			mcp.Description("Create the user as a bot account (optional)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		username := req.GetString("username", "")
		bot := req.GetBool("bot", false)
		params := map[string]any{"username": username, "bot": bot}

		u := &discordgo.User{ID: s.Client.NewID(), Username: username, Bot: bot}
		if known, ok := s.Client.Users.Get(username); ok {
			u = known.Data()
		}

		m, err := s.Client.Simulate().Join(ctx, s.Guild, u)
		if err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok: "+m.User.ID, start)
		return tools.JSONResult(summarizeMember(s.Guild, m)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolUserLeave(s *sandbox.Sandbox, logger *slog.Logger) tools.Registration {
	const toolName = "sandbox_user_leave"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Have a member leave the sandbox guild."),
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
		if m.User.ID == s.Client.User.ID {
			tools.LogCall(logger, toolName, params, "error: bot", start)
			return tools.ErrorResult("the bot cannot leave its own sandbox"), nil
		}

		if err := s.Client.Simulate().Leave(ctx, s.Guild, m.User.ID); err != nil {
			return tools.ErrorCallResult(logger, toolName, params, err, start), nil
		}

		tools.LogCall(logger, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("%s left the guild (ID: %s)", m.User.Username, m.User.ID)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
