package sandbox

import (
	"github.com/jamesprial/discordmock/internal/queue"
	"github.com/jamesprial/discordmock/mock"
)

// route keeps the resolver current and queues the event types the sandbox
// was configured for. Events caused by the bot itself and events of other
// guilds are not queued.
func (s *Sandbox) route(c *mock.Client, ev mock.Event) {
	s.track(ev)

	typ := string(ev.EventType())
	if !s.events[typ] {
		return
	}
	e := entry(ev)
	e.Type = typ
	if e.GuildID != "" && e.GuildID != s.Guild.ID {
		return
	}
	if e.UserID != "" && e.UserID == c.User.ID {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = c.Clock().Now()
	}
	s.Queue.Enqueue(e)
	s.logger.Debug("event queued", "type", typ, "channel", e.ChannelName, "user", e.Username)
}

func (s *Sandbox) track(ev mock.Event) {
	switch e := ev.(type) {
	case *mock.ChannelCreate:
		s.Resolver.Put(e.Channel.Data())
	case *mock.ChannelUpdate:
		s.Resolver.Put(e.New.Data())
	case *mock.ChannelDelete:
		s.Resolver.Remove(e.Channel.Base().ID)
	}
}

func entry(ev mock.Event) queue.Event {
	switch e := ev.(type) {
	case *mock.MessageCreate:
		return fromMessage(e.Message)
	case *mock.MessageUpdate:
		return fromMessage(e.New)
	case *mock.MessageDelete:
		return fromMessage(e.Message)
	case *mock.MessageReactionAdd:
		out := fromMessage(e.Reaction.Message())
		withUser(&out, e.User)
		out.Content = e.Reaction.Emoji.APIName()
		return out
	case *mock.MessageReactionRemove:
		out := fromMessage(e.Reaction.Message())
		withUser(&out, e.User)
		out.Content = e.Reaction.Emoji.APIName()
		return out
	case *mock.GuildMemberAdd:
		return fromMember(e.Member)
	case *mock.GuildMemberRemove:
		return fromMember(e.Member)
	case *mock.GuildMemberUpdate:
		return fromMember(e.New)
	case *mock.TypingStart:
		out := fromChannel(e.Channel)
		withUser(&out, e.User)
		out.Timestamp = e.Timestamp
		return out
	case *mock.VoiceStateUpdate:
		return queue.Event{GuildID: e.New.GuildID, ChannelID: e.New.ChannelID, UserID: e.New.UserID}
	case *mock.PresenceUpdate:
		out := queue.Event{Content: string(e.New.Status)}
		if e.New.User != nil {
			out.UserID = e.New.User.ID
			out.Username = e.New.User.Username
		}
		return out
	case *mock.ChannelCreate:
		return fromChannel(e.Channel)
	case *mock.ChannelUpdate:
		return fromChannel(e.New)
	case *mock.ChannelDelete:
		return fromChannel(e.Channel)
	case *mock.GuildRoleCreate:
		return queue.Event{Content: e.Role.Name}
	case *mock.GuildRoleUpdate:
		return queue.Event{Content: e.New.Name}
	case *mock.GuildRoleDelete:
		return queue.Event{Content: e.Role.Name}
	}
	return queue.Event{}
}

func fromChannel(ch mock.Channel) queue.Event {
	if ch == nil {
		return queue.Event{}
	}
	b := ch.Base()
	return queue.Event{GuildID: b.GuildID, ChannelID: b.ID, ChannelName: b.Name}
}

func fromMessage(m *mock.Message) queue.Event {
	if m == nil {
		return queue.Event{}
	}
	out := fromChannel(m.Channel())
	out.MessageID = m.ID
	out.Content = m.Content
	out.Timestamp = m.Timestamp
	withUser(&out, m.Author)
	return out
}

func fromMember(m *mock.Member) queue.Event {
	out := queue.Event{GuildID: m.GuildID}
	withUser(&out, m.User)
	return out
}

func withUser(e *queue.Event, u *mock.User) {
	if u == nil {
		return
	}
	e.UserID = u.ID
	e.Username = u.Username
}
