// Package resolve keeps a channel name <-> ID index for the sandbox guild.
package resolve

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrUnknownChannel is returned by ChannelID for names not in the index.
var ErrUnknownChannel = errors.New("resolve: unknown channel")

// Resolver indexes the named, non-category channels of one guild. Refresh
// rebuilds it from the REST surface; Put and Remove keep it current as
// channel events arrive. It is safe for concurrent use.
type Resolver struct {
	source  ChannelLister
	guildID string

	mu     sync.RWMutex
	byID   map[string]string
	byName map[string]string
}

// New returns an empty Resolver for guildID.
func New(source ChannelLister, guildID string) *Resolver {
	return &Resolver{
		source:  source,
		guildID: guildID,
		byID:    make(map[string]string),
		byName:  make(map[string]string),
	}
}

// GuildID returns the guild this Resolver indexes.
func (r *Resolver) GuildID() string {
	return r.guildID
}

// ChannelName returns the name for id, or id itself when it is unknown.
func (r *Resolver) ChannelName(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.byID[id]; ok {
		return name
	}
	return id
}

// ChannelID looks up a channel by name. A leading "#" is ignored.
func (r *Resolver) ChannelID(name string) (string, error) {
	name = strings.TrimPrefix(name, "#")

	r.mu.RLock()
	id, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownChannel, name)
	}
	return id, nil
}

// Refresh replaces the index with the guild's current channel list.
func (r *Resolver) Refresh() error {
	channels, err := r.source.GuildChannels(r.guildID)
	if err != nil {
		return fmt.Errorf("resolve: failed to fetch guild channels: %w", err)
	}

	byID := make(map[string]string, len(channels))
	byName := make(map[string]string, len(channels))
	for _, ch := range channels {
		if !indexed(ch) {
			continue
		}
		byID[ch.ID] = ch.Name
		if _, taken := byName[ch.Name]; !taken {
			byName[ch.Name] = ch.ID
		}
	}

	r.mu.Lock()
	r.byID, r.byName = byID, byName
	r.mu.Unlock()
	return nil
}

// Put indexes ch, replacing any previous name it had. Channels of other
// guilds and categories are ignored.
func (r *Resolver) Put(ch *discordgo.Channel) {
	if ch == nil || ch.GuildID != r.guildID || !indexed(ch) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drop(ch.ID)
	r.byID[ch.ID] = ch.Name
	if _, taken := r.byName[ch.Name]; !taken {
		r.byName[ch.Name] = ch.ID
	}
}

// Remove forgets the channel with id.
func (r *Resolver) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drop(id)
}

// drop removes id from both maps. When another channel shares the dropped
// name it takes the name over. The caller holds r.mu.
func (r *Resolver) drop(id string) {
	name, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	if r.byName[name] != id {
		return
	}
	delete(r.byName, name)
	for otherID, otherName := range r.byID {
		if otherName == name {
			r.byName[name] = otherID
			return
		}
	}
}

func indexed(ch *discordgo.Channel) bool {
	return ch.Name != "" && ch.Type != discordgo.ChannelTypeGuildCategory
}

// ResolveChannelParam accepts either a channel ID or a channel name. All-digit
// strings are taken as IDs; anything else goes through r.
func ResolveChannelParam(r ChannelResolver, channel string) (string, error) {
	channel = strings.TrimPrefix(channel, "#")
	if channel == "" {
		return "", fmt.Errorf("%w: empty channel", ErrUnknownChannel)
	}
	if strings.Trim(channel, "0123456789") == "" {
		return channel, nil
	}
	return r.ChannelID(channel)
}
