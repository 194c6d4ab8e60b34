package mock

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/cache"
	"github.com/jamesprial/discordmock/internal/defaults"
)

// Channel is any cached channel. The concrete variants are *TextChannel,
// *NewsChannel, *VoiceChannel, *CategoryChannel, *StoreChannel, *DMChannel
// and *GroupDMChannel.
type Channel interface {
	// Base returns the fields shared by every channel.
	Base() *BaseChannel
	// Data returns a discordgo snapshot of the channel.
	Data() *discordgo.Channel
	// Deleted reports whether the channel was deleted.
	Deleted() bool

	clone() Channel
}

// textChannel is implemented by channels that hold messages.
type textChannel interface {
	Channel
	Text() *TextState
}

// guildChannel is implemented by channels that belong to a guild.
type guildChannel interface {
	Channel
	GuildBase() *GuildChannel
}

// AsText returns the message state of ch when it is text-capable.
func AsText(ch Channel) (*TextState, bool) {
	if t, ok := ch.(textChannel); ok {
		return t.Text(), true
	}
	return nil, false
}

// AsGuildChannel returns the guild part of ch when it belongs to a guild.
func AsGuildChannel(ch Channel) (*GuildChannel, bool) {
	if g, ok := ch.(guildChannel); ok {
		return g.GuildBase(), true
	}
	return nil, false
}

// ChannelFactory builds the concrete channel for data. g is nil for DM
// channels. It returns nil for types the client does not model.
type ChannelFactory func(c *Client, g *Guild, data *discordgo.Channel) Channel

// NewChannel is the default ChannelFactory. It covers every channel type the
// client models and returns nil for any other type, or for a guild type
// without a guild.
func NewChannel(c *Client, g *Guild, data *discordgo.Channel) Channel {
	switch data.Type {
	case discordgo.ChannelTypeGuildText:
		if g == nil {
			return nil
		}
		ch := &TextChannel{}
		ch.GuildChannel = newGuildChannel(c, g, data, ch)
		ch.TextState = newTextState(c, ch)
		return ch
	case discordgo.ChannelTypeGuildNews:
		if g == nil {
			return nil
		}
		ch := &NewsChannel{}
		ch.GuildChannel = newGuildChannel(c, g, data, ch)
		ch.TextState = newTextState(c, ch)
		return ch
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		if g == nil {
			return nil
		}
		ch := &VoiceChannel{}
		ch.GuildChannel = newGuildChannel(c, g, data, ch)
		return ch
	case discordgo.ChannelTypeGuildCategory:
		if g == nil {
			return nil
		}
		ch := &CategoryChannel{}
		ch.GuildChannel = newGuildChannel(c, g, data, ch)
		return ch
	case defaults.ChannelTypeStore:
		if g == nil {
			return nil
		}
		ch := &StoreChannel{}
		ch.GuildChannel = newGuildChannel(c, g, data, ch)
		return ch
	case discordgo.ChannelTypeDM:
		ch := &DMChannel{}
		ch.BaseChannel = newBaseChannel(c, data, ch)
		ch.TextState = newTextState(c, ch)
		return ch
	case discordgo.ChannelTypeGroupDM:
		ch := &GroupDMChannel{}
		ch.BaseChannel = newBaseChannel(c, data, ch)
		ch.TextState = newTextState(c, ch)
		return ch
	}
	return nil
}

// BaseChannel holds the fields every channel has.
type BaseChannel struct {
	discordgo.Channel

	client  *Client
	self    Channel
	deleted bool
}

func newBaseChannel(c *Client, d *discordgo.Channel, self Channel) BaseChannel {
	b := BaseChannel{client: c, self: self}
	b.setData(d)
	return b
}

func (b *BaseChannel) setData(d *discordgo.Channel) {
	b.Channel = *d
	b.Channel.PermissionOverwrites = nil
	b.Channel.Messages = nil
	if d.Recipients != nil {
		b.Channel.Recipients = append([]*discordgo.User(nil), d.Recipients...)
	}
}

func (b BaseChannel) cloneFor(self Channel) BaseChannel {
	b.self = self
	b.Channel.Recipients = append([]*discordgo.User(nil), b.Channel.Recipients...)
	return b
}

// Base implements Channel.
func (b *BaseChannel) Base() *BaseChannel { return b }

// Deleted implements Channel.
func (b *BaseChannel) Deleted() bool { return b.deleted }

// Client returns the owning client.
func (b *BaseChannel) Client() *Client { return b.client }

// Mention returns the channel mention string.
func (b *BaseChannel) Mention() string { return "<#" + b.ID + ">" }

func (b *BaseChannel) data() *discordgo.Channel {
	d := b.Channel
	d.Recipients = append([]*discordgo.User(nil), b.Channel.Recipients...)
	return &d
}

// GuildChannel holds the fields of channels that belong to a guild.
type GuildChannel struct {
	BaseChannel

	// PermissionOverwrites is keyed by role or member ID.
	PermissionOverwrites *cache.Cache[string, *discordgo.PermissionOverwrite]

	guild *Guild
}

func newGuildChannel(c *Client, g *Guild, d *discordgo.Channel, self Channel) GuildChannel {
	gc := GuildChannel{
		BaseChannel:          newBaseChannel(c, d, self),
		PermissionOverwrites: cache.New[string, *discordgo.PermissionOverwrite](),
		guild:                g,
	}
	gc.GuildID = g.ID
	gc.setOverwrites(d.PermissionOverwrites)
	return gc
}

func (gc *GuildChannel) setOverwrites(list []*discordgo.PermissionOverwrite) {
	gc.PermissionOverwrites.Clear()
	for _, ow := range list {
		cp := *ow
		gc.PermissionOverwrites.Set(ow.ID, &cp)
	}
}

func (gc GuildChannel) cloneFor(self Channel) GuildChannel {
	gc.BaseChannel = gc.BaseChannel.cloneFor(self)
	overwrites := cache.New[string, *discordgo.PermissionOverwrite]()
	gc.PermissionOverwrites.Each(func(id string, ow *discordgo.PermissionOverwrite) bool {
		cp := *ow
		overwrites.Set(id, &cp)
		return true
	})
	gc.PermissionOverwrites = overwrites
	return gc
}

// GuildBase returns the guild part of the channel.
func (gc *GuildChannel) GuildBase() *GuildChannel { return gc }

// Guild returns the owning guild.
func (gc *GuildChannel) Guild() *Guild { return gc.guild }

// Data implements Channel.
func (gc *GuildChannel) Data() *discordgo.Channel {
	d := gc.data()
	d.PermissionOverwrites = []*discordgo.PermissionOverwrite{}
	for _, ow := range gc.PermissionOverwrites.Values() {
		cp := *ow
		d.PermissionOverwrites = append(d.PermissionOverwrites, &cp)
	}
	return d
}

// Parent returns the channel's category.
func (gc *GuildChannel) Parent() (*CategoryChannel, bool) {
	if gc.ParentID == "" {
		return nil, false
	}
	ch, ok := gc.guild.Channels.Get(gc.ParentID)
	if !ok {
		return nil, false
	}
	cat, ok := ch.(*CategoryChannel)
	return cat, ok
}

// TextState is the message cache and message operations of a text-capable
// channel.
type TextState struct {
	// Messages is bounded by the client's message cache size.
	Messages *cache.Store[discordgo.Message, *Message]

	channel Channel
}

func newTextState(c *Client, ch Channel) *TextState {
	t := &TextState{channel: ch}
	t.Messages = cache.NewStore(
		func(d *discordgo.Message) string { return d.ID },
		t.buildMessage,
		(*Message).patch,
		cache.WithLimit(c.cfg.messageCacheSize),
		cache.WithEvictHook(func(key any) {
			c.logger.Debug("message evicted from cache", "channel", ch.Base().ID, "message", key)
		}),
	)
	return t
}

// Text returns the channel's message state.
func (t *TextState) Text() *TextState { return t }

// rebind moves the state to ch, carrying the message cache over.
func (t *TextState) rebind(ch Channel) *TextState {
	moved := &TextState{Messages: t.Messages, channel: ch}
	for _, m := range moved.Messages.Values() {
		m.channel = ch
	}
	return moved
}

// TextChannel is a guild text channel.
type TextChannel struct {
	GuildChannel
	*TextState
}

func (ch *TextChannel) clone() Channel {
	cp := &TextChannel{}
	cp.GuildChannel = ch.GuildChannel.cloneFor(cp)
	cp.TextState = &TextState{Messages: ch.Messages, channel: cp}
	return cp
}

// NewsChannel is a guild announcement channel.
type NewsChannel struct {
	GuildChannel
	*TextState
}

func (ch *NewsChannel) clone() Channel {
	cp := &NewsChannel{}
	cp.GuildChannel = ch.GuildChannel.cloneFor(cp)
	cp.TextState = &TextState{Messages: ch.Messages, channel: cp}
	return cp
}

// VoiceChannel is a guild voice or stage channel.
type VoiceChannel struct {
	GuildChannel
}

func (ch *VoiceChannel) clone() Channel {
	cp := &VoiceChannel{}
	cp.GuildChannel = ch.GuildChannel.cloneFor(cp)
	return cp
}

// Members returns the members connected to the channel.
func (ch *VoiceChannel) Members() []*Member {
	var out []*Member
	for _, vs := range ch.guild.VoiceStates.Values() {
		if vs.ChannelID != ch.ID {
			continue
		}
		if m, ok := ch.guild.Members.Get(vs.UserID); ok {
			out = append(out, m)
		}
	}
	return out
}

// CategoryChannel groups guild channels.
type CategoryChannel struct {
	GuildChannel
}

func (ch *CategoryChannel) clone() Channel {
	cp := &CategoryChannel{}
	cp.GuildChannel = ch.GuildChannel.cloneFor(cp)
	return cp
}

// Children returns the channels whose parent is the category.
func (ch *CategoryChannel) Children() []Channel {
	return ch.guild.Channels.Filter(func(c Channel) bool { return c.Base().ParentID == ch.ID })
}

// StoreChannel is a retired store channel.
type StoreChannel struct {
	GuildChannel
}

func (ch *StoreChannel) clone() Channel {
	cp := &StoreChannel{}
	cp.GuildChannel = ch.GuildChannel.cloneFor(cp)
	return cp
}

// DMChannel is a direct message channel with one recipient.
type DMChannel struct {
	BaseChannel
	*TextState
}

func (ch *DMChannel) clone() Channel {
	cp := &DMChannel{}
	cp.BaseChannel = ch.BaseChannel.cloneFor(cp)
	cp.TextState = &TextState{Messages: ch.Messages, channel: cp}
	return cp
}

// Data implements Channel.
func (ch *DMChannel) Data() *discordgo.Channel { return ch.data() }

// Recipient returns the other user of the DM.
func (ch *DMChannel) Recipient() (*User, bool) {
	return ch.client.Users.Get(ch.recipientID())
}

func (ch *DMChannel) recipientID() string {
	if len(ch.Recipients) == 0 {
		return ""
	}
	return ch.Recipients[0].ID
}

// GroupDMChannel is a group direct message channel.
type GroupDMChannel struct {
	BaseChannel
	*TextState
}

func (ch *GroupDMChannel) clone() Channel {
	cp := &GroupDMChannel{}
	cp.BaseChannel = ch.BaseChannel.cloneFor(cp)
	cp.TextState = &TextState{Messages: ch.Messages, channel: cp}
	return cp
}

// Data implements Channel.
func (ch *GroupDMChannel) Data() *discordgo.Channel { return ch.data() }

// guildOf returns the guild of ch, or nil for DM channels.
func guildOf(ch Channel) *Guild {
	if gc, ok := AsGuildChannel(ch); ok {
		return gc.guild
	}
	return nil
}

// patchChannel applies d to ch in place. The type must not change.
func patchChannel(ch Channel, d *discordgo.Channel) {
	if gc, ok := AsGuildChannel(ch); ok {
		gc.setData(d)
		gc.GuildID = gc.guild.ID
		gc.setOverwrites(d.PermissionOverwrites)
		return
	}
	ch.Base().setData(d)
}

func markChannelDeleted(ch Channel) {
	ch.Base().deleted = true
	if t, ok := AsText(ch); ok {
		for _, m := range t.Messages.Values() {
			m.deleted = true
		}
	}
}
