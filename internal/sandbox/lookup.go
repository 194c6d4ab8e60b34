package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jamesprial/discordmock/mock"
)

// ErrNotFound is wrapped by the lookup helpers when a reference does not
// name anything in the sandbox guild.
var ErrNotFound = errors.New("sandbox: not found")

// Member finds a guild member by user ID or username. A leading "@" is
// ignored and usernames match case-insensitively.
func (s *Sandbox) Member(ref string) (*mock.Member, error) {
	ref = strings.TrimPrefix(ref, "@")
	if m, ok := s.Guild.Member(ref); ok {
		return m, nil
	}
	for _, m := range s.Guild.Members.Values() {
		if m.User != nil && strings.EqualFold(m.User.Username, ref) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: member %q", ErrNotFound, ref)
}

// Text returns the message state of a text, news or DM channel.
func (s *Sandbox) Text(channelID string) (*mock.TextState, error) {
	ch, ok := s.Client.Channel(channelID)
	if !ok {
		return nil, fmt.Errorf("%w: channel %q", ErrNotFound, channelID)
	}
	t, ok := mock.AsText(ch)
	if !ok {
		return nil, fmt.Errorf("sandbox: channel %q does not hold messages", channelID)
	}
	return t, nil
}

// Voice returns a voice channel of the sandbox guild.
func (s *Sandbox) Voice(channelID string) (*mock.VoiceChannel, error) {
	ch, ok := s.Guild.Channel(channelID)
	if !ok {
		return nil, fmt.Errorf("%w: channel %q", ErrNotFound, channelID)
	}
	v, ok := ch.(*mock.VoiceChannel)
	if !ok {
		return nil, fmt.Errorf("sandbox: channel %q is not a voice channel", channelID)
	}
	return v, nil
}

// Message fetches a message from a channel's cache.
func (s *Sandbox) Message(ctx context.Context, channelID, messageID string) (*mock.Message, error) {
	t, err := s.Text(channelID)
	if err != nil {
		return nil, err
	}
	return t.FetchMessage(ctx, messageID)
}
