package mock

import (
	"context"
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

// Simulator drives activity by users other than the client user. Each call
// dispatches the packets the gateway would deliver for it and checks the
// acting user's permissions where Discord would.
type Simulator struct {
	client *Client
}

// User caches a new user with the given username and returns it. The user
// is not a member of any guild.
func (s *Simulator) User(ctx context.Context, username string) (*User, error) {
	c := s.client
	return execValue(ctx, c, func() (*User, error) {
		return c.newUser(username)
	})
}

func (c *Client) newUser(username string) (*User, error) {
	base := defaults.User(c.ids.Next())
	base["username"] = username
	d := &discordgo.User{}
	if err := record.Decode(base, d); err != nil {
		return nil, err
	}
	return c.Users.Add(d), nil
}

func (c *Client) actor(id, path string, method apierr.Method) (*User, error) {
	u, ok := c.Users.Get(id)
	if !ok {
		return nil, unknown(apierr.CodeUnknownUser, path, method)
	}
	return u, nil
}

// Join adds u to g. A user with an empty ID is created first. Joining a
// guild the user is banned from fails with 40007. When the guild has a
// system channel a join message is posted there.
func (s *Simulator) Join(ctx context.Context, g *Guild, u *discordgo.User) (*Member, error) {
	c := s.client
	return execValue(ctx, c, func() (*Member, error) {
		user, err := c.simulatedUser(u)
		if err != nil {
			return nil, err
		}
		path, method := routeGuildMember(g.ID, user.ID), apierr.MethodPut
		if err := g.check(path, method); err != nil {
			return nil, err
		}
		if g.Bans.Has(user.ID) {
			return nil, apierr.Forbidden(apierr.CodeUserBanned, "The user is banned from this guild.", path, method)
		}
		if m, ok := g.Members.Get(user.ID); ok {
			return m, nil
		}

		d := &discordgo.Member{}
		if err := record.Decode(defaults.Member(g.ID, user.Data(), c.now()), d); err != nil {
			return nil, err
		}
		res, ok := c.dispatch(EventGuildMemberAdd, d)
		if !ok {
			return nil, unknown(apierr.CodeUnknownGuild, path, method)
		}
		c.postJoinMessage(g, user)
		return res.Member, nil
	})
}

func (c *Client) simulatedUser(u *discordgo.User) (*User, error) {
	if u == nil || u.ID == "" {
		name := "user"
		if u != nil && u.Username != "" {
			name = u.Username
		}
		return c.newUser(name)
	}
	return c.ensureUser(u), nil
}

func (c *Client) postJoinMessage(g *Guild, u *User) {
	if g.SystemChannelID == "" {
		return
	}
	ch, ok := g.Channels.Get(g.SystemChannelID)
	if !ok {
		return
	}
	d := &discordgo.Message{}
	if err := record.Decode(defaults.Message(c.ids.Next(), ch.Base().ID, u.Data(), c.now()), d); err != nil {
		c.logger.Warn("join message not posted", "guild", g.ID, "error", err)
		return
	}
	d.GuildID = g.ID
	d.Type = discordgo.MessageTypeGuildMemberJoin
	c.dispatch(EventMessageCreate, d)
}

// Leave removes userID from g. The owner cannot leave.
func (s *Simulator) Leave(ctx context.Context, g *Guild, userID string) error {
	c := s.client
	return c.exec(ctx, func() error {
		path, method := routeUsersMeGuilds+"/"+g.ID, apierr.MethodDelete
		if err := g.check(path, method); err != nil {
			return err
		}
		m, ok := g.Members.Get(userID)
		if !ok {
			return unknown(apierr.CodeUnknownMember, path, method)
		}
		if userID == g.OwnerID {
			return apierr.BadRequest(apierr.CodeInvalidGuild, "Invalid Guild", path, method)
		}
		c.dispatch(EventGuildMemberRemove, &MemberRemovePayload{GuildID: g.ID, User: m.User.Data()})
		return nil
	})
}

// SendMessage posts ms in t as userID.
func (s *Simulator) SendMessage(ctx context.Context, t *TextState, userID string, ms *discordgo.MessageSend) (*Message, error) {
	c := s.client
	if ms == nil {
		ms = &discordgo.MessageSend{}
	}
	files, err := readFiles(ms.Files)
	if err != nil {
		return nil, err
	}
	return execValue(ctx, c, func() (*Message, error) {
		actor, err := c.actor(userID, routeChannelMessages(t.channel.Base().ID), apierr.MethodPost)
		if err != nil {
			return nil, err
		}
		return c.sendMessage(actor, t, ms, files)
	})
}

// React adds userID's reaction to m.
func (s *Simulator) React(ctx context.Context, m *Message, userID, emoji string) error {
	c := s.client
	return c.exec(ctx, func() error {
		e := ParseEmoji(emoji)
		actor, err := c.actor(userID, routeReactionUser(m.ChannelID, m.ID, emojiRoute(e), "@me"), apierr.MethodPut)
		if err != nil {
			return err
		}
		return c.react(actor, m, e)
	})
}

// Unreact removes userID's reaction from m.
func (s *Simulator) Unreact(ctx context.Context, m *Message, userID, emoji string) error {
	c := s.client
	return c.exec(ctx, func() error {
		e := ParseEmoji(emoji)
		actor, err := c.actor(userID, routeReactionUser(m.ChannelID, m.ID, emojiRoute(e), "@me"), apierr.MethodDelete)
		if err != nil {
			return err
		}
		return c.unreact(actor, m, e, actor.ID)
	})
}

// JoinVoice connects userID to ch. Requires CONNECT, and MOVE_MEMBERS when
// the channel is full.
func (s *Simulator) JoinVoice(ctx context.Context, ch *VoiceChannel, userID string) (*VoiceState, error) {
	c := s.client
	return execValue(ctx, c, func() (*VoiceState, error) {
		actor, err := c.actor(userID, routeChannel(ch.ID), apierr.MethodGet)
		if err != nil {
			return nil, err
		}
		return c.joinVoice(actor, ch)
	})
}

// LeaveVoice disconnects userID from voice in g. It is a no-op when the user
// is not connected.
func (s *Simulator) LeaveVoice(ctx context.Context, g *Guild, userID string) error {
	c := s.client
	return c.exec(ctx, func() error {
		c.leaveVoice(g, userID)
		return nil
	})
}

// Join connects the client user to the channel.
func (ch *VoiceChannel) Join(ctx context.Context) (*VoiceState, error) {
	c := ch.client
	return execValue(ctx, c, func() (*VoiceState, error) {
		vs, err := c.joinVoice(c.User, ch)
		if err != nil {
			return nil, err
		}
		c.gateway.Send(OpVoiceStateUpdate, map[string]any{
			"guild_id":   ch.guild.ID,
			"channel_id": ch.ID,
			"self_mute":  false,
			"self_deaf":  false,
		})
		return vs, nil
	})
}

// LeaveVoice disconnects the client user from voice in the guild.
func (g *Guild) LeaveVoice(ctx context.Context) error {
	c := g.client
	return c.exec(ctx, func() error {
		if c.leaveVoice(g, c.User.ID) {
			c.gateway.Send(OpVoiceStateUpdate, map[string]any{
				"guild_id":   g.ID,
				"channel_id": nil,
			})
		}
		return nil
	})
}

func (c *Client) joinVoice(actor *User, ch *VoiceChannel) (*VoiceState, error) {
	g := ch.guild
	path, method := routeChannel(ch.ID), apierr.MethodGet
	if err := ch.check(path, method); err != nil {
		return nil, err
	}
	if err := c.require(actor, g, ch, permissions.Connect, path, method); err != nil {
		return nil, err
	}
	connected := ch.Members()
	already := slices.ContainsFunc(connected, func(m *Member) bool { return m.User.ID == actor.ID })
	if !already && ch.UserLimit > 0 && len(connected) >= ch.UserLimit {
		if err := c.require(actor, g, ch, permissions.MoveMembers, path, method); err != nil {
			return nil, err
		}
	}

	m, _ := g.Members.Get(actor.ID)
	d := &discordgo.VoiceState{
		GuildID:   g.ID,
		ChannelID: ch.ID,
		UserID:    actor.ID,
		SessionID: uuid.NewString(),
		Mute:      m.Mute,
		Deaf:      m.Deaf,
	}
	if prev, ok := g.VoiceStates.Get(actor.ID); ok {
		d.SessionID = prev.SessionID
	}
	res, ok := c.dispatch(EventVoiceStateUpdate, d)
	if !ok {
		return nil, unknown(apierr.CodeUnknownChannel, path, method)
	}
	return res.VoiceState, nil
}

func (c *Client) leaveVoice(g *Guild, userID string) bool {
	prev, ok := g.VoiceStates.Get(userID)
	if !ok || g.deleted {
		return false
	}
	d := prev.Data()
	d.ChannelID = ""
	c.dispatch(EventVoiceStateUpdate, d)
	return true
}

// SetPresence sets userID's presence in every guild they are a member of.
func (s *Simulator) SetPresence(ctx context.Context, userID string, status discordgo.Status, activities []*discordgo.Activity) error {
	if !slices.Contains(validStatuses, status) {
		return ErrInvalidStatus
	}
	c := s.client
	return c.exec(ctx, func() error {
		u, err := c.actor(userID, routeUser(userID), apierr.MethodGet)
		if err != nil {
			return err
		}
		c.broadcastPresence(u, status, activities)
		return nil
	})
}

// StartTyping shows userID typing in t.
func (s *Simulator) StartTyping(ctx context.Context, t *TextState, userID string) error {
	c := s.client
	return c.exec(ctx, func() error {
		actor, err := c.actor(userID, routeChannelTyping(t.channel.Base().ID), apierr.MethodPost)
		if err != nil {
			return err
		}
		return c.startTyping(actor, t)
	})
}
