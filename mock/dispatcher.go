package mock

import (
	"sort"
)

// Result is what a dispatched packet resolved to. Only the fields relevant
// to the packet type are set.
type Result struct {
	Guild        *Guild
	Channel      Channel
	Member       *Member
	Members      []*Member
	Role         *Role
	Message      *Message
	Messages     []*Message
	Reaction     *Reaction
	User         *User
	Invite       *Invite
	Emojis       []*Emoji
	Presence     *Presence
	VoiceState   *VoiceState
	Ban          *Ban
	Webhooks     []*Webhook
	Integrations []*Integration
}

// handler applies one packet payload. It runs with the state lock held and
// reports false when the packet is dropped.
type handler func(c *Client, data any) (Result, bool)

// Dispatcher routes gateway packets to the mutation for their type.
type Dispatcher struct {
	client *Client
	table  map[EventType]handler
}

func newDispatcher(c *Client) *Dispatcher {
	return &Dispatcher{
		client: c,
		table: map[EventType]handler{
			EventChannelCreate:              channelCreate,
			EventChannelUpdate:              channelUpdate,
			EventChannelDelete:              channelDelete,
			EventChannelPinsUpdate:          channelPinsUpdate,
			EventGuildCreate:                guildCreate,
			EventGuildUpdate:                guildUpdate,
			EventGuildDelete:                guildDelete,
			EventGuildBanAdd:                guildBanAdd,
			EventGuildBanRemove:             guildBanRemove,
			EventGuildEmojisUpdate:          guildEmojisUpdate,
			EventGuildIntegrationsUpdate:    guildIntegrationsUpdate,
			EventGuildMemberAdd:             guildMemberAdd,
			EventGuildMemberRemove:          guildMemberRemove,
			EventGuildMemberUpdate:          guildMemberUpdate,
			EventGuildMembersChunk:          guildMembersChunk,
			EventGuildRoleCreate:            guildRoleCreate,
			EventGuildRoleUpdate:            guildRoleUpdate,
			EventGuildRoleDelete:            guildRoleDelete,
			EventInviteCreate:               inviteCreate,
			EventInviteDelete:               inviteDelete,
			EventMessageCreate:              messageCreate,
			EventMessageUpdate:              messageUpdate,
			EventMessageDelete:              messageDelete,
			EventMessageDeleteBulk:          messageDeleteBulk,
			EventMessageReactionAdd:         messageReactionAdd,
			EventMessageReactionRemove:      messageReactionRemove,
			EventMessageReactionRemoveAll:   messageReactionRemoveAll,
			EventMessageReactionRemoveEmoji: messageReactionRemoveEmoji,
			EventPresenceUpdate:             presenceUpdate,
			EventTypingStart:                typingStart,
			EventUserUpdate:                 userUpdate,
			EventVoiceStateUpdate:           voiceStateUpdate,
			EventWebhooksUpdate:             webhooksUpdate,
		},
	}
}

// Handles reports whether t has a mutation routine.
func (d *Dispatcher) Handles(t EventType) bool {
	_, ok := d.table[t]
	return ok
}

// Types lists the handled packet types in name order.
func (d *Dispatcher) Types() []EventType {
	out := make([]EventType, 0, len(d.table))
	for t := range d.table {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch applies p under the client's state lock and then delivers the
// resulting events. It reports false when the packet was dropped.
func (d *Dispatcher) Dispatch(p Packet) (Result, bool) {
	c := d.client
	var (
		res Result
		ok  bool
	)
	events, _ := c.locked(func() error {
		res, ok = d.apply(p)
		return nil
	})
	c.emitter.deliver(c, events)
	return res, ok
}

// apply runs the mutation for p. The caller holds the state lock.
func (d *Dispatcher) apply(p Packet) (Result, bool) {
	h, ok := d.table[p.Type]
	if !ok {
		d.client.logger.Debug("packet dropped", "type", p.Type, "reason", "unhandled type")
		return Result{}, false
	}
	res, ok := h(d.client, p.Data)
	if !ok {
		d.client.logger.Debug("packet dropped", "type", p.Type, "reason", "unresolved target or malformed payload")
	}
	return res, ok
}

// dispatch is apply for code that already holds the state lock.
func (c *Client) dispatch(t EventType, data any) (Result, bool) {
	return c.dispatcher.apply(Packet{Type: t, Data: data})
}
