package testutil

import (
	"fmt"
	"strings"

	"github.com/jamesprial/discordmock/internal/resolve"
)

var _ resolve.ChannelResolver = (*MockChannelResolver)(nil)

// MockChannelResolver is a fixed, map-backed resolve.ChannelResolver. Use it
// where a test needs name lookups without seeding a sandbox.
type MockChannelResolver struct {
	IDToName map[string]string
	NameToID map[string]string
}

// NewMockChannelResolver returns a resolver that knows "general" (1001) and
// "random" (1002).
func NewMockChannelResolver() *MockChannelResolver {
	return &MockChannelResolver{
		IDToName: map[string]string{"1001": "general", "1002": "random"},
		NameToID: map[string]string{"general": "1001", "random": "1002"},
	}
}

// ChannelName returns the name for id, or id itself when unknown.
func (m *MockChannelResolver) ChannelName(id string) string {
	if name, ok := m.IDToName[id]; ok {
		return name
	}
	return id
}

// ChannelID returns the ID for name, ignoring a leading "#".
func (m *MockChannelResolver) ChannelID(name string) (string, error) {
	name = strings.TrimPrefix(name, "#")
	if id, ok := m.NameToID[name]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w %q", resolve.ErrUnknownChannel, name)
}
