package resolve

import "github.com/bwmarrin/discordgo"

// ChannelResolver provides channel name/ID resolution. Tool handlers and
// helpers accept this interface rather than the concrete *Resolver type.
type ChannelResolver interface {
	ChannelName(id string) string
	ChannelID(name string) (string, error)
}

// ChannelLister is the slice of the REST surface a Resolver refreshes from.
type ChannelLister interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
}

var _ ChannelResolver = (*Resolver)(nil)
