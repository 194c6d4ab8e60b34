package mock

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/cache"
)

// Message is a cached message.
type Message struct {
	discordgo.Message

	Author *User
	// Reactions is keyed by emoji ID, or by name for unicode emoji.
	Reactions *cache.Cache[string, *Reaction]

	channel Channel
	deleted bool
}

func (t *TextState) buildMessage(d *discordgo.Message) *Message {
	m := &Message{
		Reactions: cache.New[string, *Reaction](),
		channel:   t.channel,
	}
	m.patch(d)
	for _, r := range d.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		m.Reactions.Set(emojiKey(*r.Emoji), &Reaction{
			Emoji:   *r.Emoji,
			Count:   r.Count,
			Me:      r.Me,
			Users:   cache.New[string, *User](),
			message: m,
		})
	}
	return m
}

func (m *Message) patch(d *discordgo.Message) {
	c := m.channel.Base().client
	m.Message = *d
	m.Message.Reactions = nil
	if d.Author != nil {
		if d.WebhookID != "" {
			m.Author = &User{User: *d.Author, client: c}
		} else {
			m.Author = c.ensureUser(d.Author)
		}
	}
	m.Message.Author = nil
}

func (m *Message) clone() *Message {
	cp := *m
	return &cp
}

// Channel returns the channel the message was sent in.
func (m *Message) Channel() Channel { return m.channel }

// Guild returns the message's guild, or nil in DMs.
func (m *Message) Guild() *Guild { return guildOf(m.channel) }

// Deleted reports whether the message was deleted.
func (m *Message) Deleted() bool { return m.deleted }

// Data returns a discordgo snapshot of the message with its reactions.
func (m *Message) Data() *discordgo.Message {
	d := m.Message
	d.Author = dataOf(m.Author)
	for _, r := range m.Reactions.Values() {
		d.Reactions = append(d.Reactions, r.Data())
	}
	return &d
}

// Reaction is the set of users who reacted to a message with one emoji.
type Reaction struct {
	Emoji discordgo.Emoji
	Count int
	Me    bool
	Users *cache.Cache[string, *User]

	message *Message
}

// Key returns the reaction's cache key.
func (r *Reaction) Key() string { return emojiKey(r.Emoji) }

// Message returns the message the reaction belongs to.
func (r *Reaction) Message() *Message { return r.message }

// Data returns a discordgo snapshot of the reaction.
func (r *Reaction) Data() *discordgo.MessageReactions {
	e := r.Emoji
	return &discordgo.MessageReactions{Count: r.Count, Me: r.Me, Emoji: &e}
}

func (r *Reaction) clone() *Reaction {
	cp := *r
	cp.Users = r.Users.Clone()
	return &cp
}

func emojiKey(e discordgo.Emoji) string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}

// ParseEmoji parses an emoji in any of the forms accepted by the reaction
// endpoints: a unicode emoji, "name:id", "a:name:id" or a "<:name:id>"
// mention.
func ParseEmoji(s string) discordgo.Emoji {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	parts := strings.Split(s, ":")
	switch {
	case len(parts) == 3 && parts[0] == "a":
		return discordgo.Emoji{Name: parts[1], ID: parts[2], Animated: true}
	case len(parts) == 3 && parts[0] == "":
		return discordgo.Emoji{Name: parts[1], ID: parts[2]}
	case len(parts) == 2:
		return discordgo.Emoji{Name: parts[0], ID: parts[1]}
	}
	return discordgo.Emoji{Name: s}
}

func emojiRoute(e discordgo.Emoji) string {
	if e.ID != "" {
		return e.Name + ":" + e.ID
	}
	return e.Name
}
