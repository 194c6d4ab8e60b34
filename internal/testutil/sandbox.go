package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jamesprial/discordmock/internal/config"
	"github.com/jamesprial/discordmock/internal/sandbox"
)

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSandbox seeds the default sandbox guild (channels general, random and
// voice; users alice and bob), after applying mutate to the config.
func NewSandbox(t *testing.T, mutate func(*config.Config)) *sandbox.Sandbox {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := sandbox.New(context.Background(), cfg, QuietLogger())
	if err != nil {
		t.Fatalf("sandbox.New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// ChannelID resolves a seeded channel name or fails the test.
func ChannelID(t *testing.T, s *sandbox.Sandbox, name string) string {
	t.Helper()
	id, err := s.Resolver.ChannelID(name)
	if err != nil {
		t.Fatalf("resolve %s: %v", name, err)
	}
	return id
}

// UserID returns the ID of a seeded member or fails the test.
func UserID(t *testing.T, s *sandbox.Sandbox, username string) string {
	t.Helper()
	m, err := s.Member(username)
	if err != nil {
		t.Fatalf("member %s: %v", username, err)
	}
	return m.User.ID
}
