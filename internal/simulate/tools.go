// Package simulate provides MCP tools that drive sandbox users other than the
// bot: joining and leaving, chatting, reacting, typing, presence and voice.
// Their effects reach the bot through the same events a live gateway would
// deliver, so they show up in discord_poll_events.
package simulate

import (
	"log/slog"

	"github.com/jamesprial/discordmock/internal/sandbox"
	"github.com/jamesprial/discordmock/internal/tools"
	"github.com/jamesprial/discordmock/mock"
)

// MemberSummary is the response shape for a simulated member.
type MemberSummary struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot,omitempty"`
	Status   string `json:"status,omitempty"`
	Voice    string `json:"voice_channel_id,omitempty"`
}

// SimulateTools returns all tool registrations that act as sandbox users.
func SimulateTools(s *sandbox.Sandbox, logger *slog.Logger) []tools.Registration {
	logger = tools.DefaultLogger(logger)
	return []tools.Registration{
		toolListMembers(s, logger),
		toolUserJoin(s, logger),
		toolUserLeave(s, logger),
		toolUserMessage(s, logger),
		toolUserReact(s, logger),
		toolUserTyping(s, logger),
		toolUserPresence(s, logger),
		toolVoiceJoin(s, logger),
		toolVoiceLeave(s, logger),
	}
}

func summarizeMember(g *mock.Guild, m *mock.Member) MemberSummary {
	s := MemberSummary{UserID: m.User.ID, Username: m.User.Username, Bot: m.User.Bot}
	if p, ok := g.Presences.Get(m.User.ID); ok {
		s.Status = string(p.Status)
	}
	if vs, ok := g.VoiceStates.Get(m.User.ID); ok {
		s.Voice = vs.ChannelID
	}
	return s
}
