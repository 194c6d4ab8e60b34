package mock

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/clock"
)

// Defaults applied by New.
const (
	DefaultMessageCacheSize   = 200
	DefaultGuildCreateTimeout = 10 * time.Second
	DefaultMemberChunkTimeout = 10 * time.Second
	DefaultMemberChunkSize    = 1000
	DefaultMaxGuilds          = 10
)

// Option configures a Client.
type Option func(*settings)

type settings struct {
	logger             *slog.Logger
	clock              clock.Clock
	messageCacheSize   int
	guildCreateTimeout time.Duration
	memberChunkTimeout time.Duration
	memberChunkSize    int
	maxGuilds          int
	channelFactory     ChannelFactory
	user               *discordgo.User
}

func defaultSettings() settings {
	return settings{
		logger:             slog.Default(),
		clock:              clock.Real{},
		messageCacheSize:   DefaultMessageCacheSize,
		guildCreateTimeout: DefaultGuildCreateTimeout,
		memberChunkTimeout: DefaultMemberChunkTimeout,
		memberChunkSize:    DefaultMemberChunkSize,
		maxGuilds:          DefaultMaxGuilds,
		channelFactory:     NewChannel,
	}
}

// WithLogger sets the client's logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for timestamps and generated IDs.
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMessageCacheSize bounds every text channel's message cache. Zero or
// less disables the bound.
func WithMessageCacheSize(n int) Option {
	return func(s *settings) {
		s.messageCacheSize = n
	}
}

// WithGuildCreateTimeout bounds how long CreateGuild waits for the guild
// create echo before falling back to dispatching it directly.
func WithGuildCreateTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.guildCreateTimeout = d
		}
	}
}

// WithMemberChunkTimeout is the idle deadline of a member fetch. It is
// refreshed each time a chunk arrives.
func WithMemberChunkTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.memberChunkTimeout = d
		}
	}
}

// WithMemberChunkSize sets how many members each chunk carries.
func WithMemberChunkSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.memberChunkSize = n
		}
	}
}

// WithMaxGuilds caps how many guilds the client user may be in when creating
// a new one.
func WithMaxGuilds(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxGuilds = n
		}
	}
}

// WithChannelFactory replaces the constructor used for every channel.
// Custom factories usually wrap NewChannel.
func WithChannelFactory(f ChannelFactory) Option {
	return func(s *settings) {
		if f != nil {
			s.channelFactory = f
		}
	}
}

// WithUser sets the identity of the client user. Missing fields are filled
// from the defaults.
func WithUser(u *discordgo.User) Option {
	return func(s *settings) {
		s.user = u
	}
}
