// Package config provides configuration loading and defaults for the
// discordmock sandbox server.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds network and authentication settings.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// ChannelSeed describes one channel created in the sandbox guild.
type ChannelSeed struct {
	Name string `yaml:"name"`
	// Type is "text", "voice", "category" or "news". Empty means text.
	Type  string `yaml:"type"`
	Topic string `yaml:"topic"`
	// Parent names a category seeded earlier in the list.
	Parent string `yaml:"parent"`
}

// RoleSeed describes one role created in the sandbox guild.
type RoleSeed struct {
	Name        string `yaml:"name"`
	Color       int    `yaml:"color"`
	Hoist       bool   `yaml:"hoist"`
	Permissions int64  `yaml:"permissions"`
}

// UserSeed describes a simulated user that joins the sandbox guild.
type UserSeed struct {
	Username string   `yaml:"username"`
	Bot      bool     `yaml:"bot"`
	Roles    []string `yaml:"roles"`
}

// SandboxConfig describes the mock client and the guild it is seeded with.
type SandboxConfig struct {
	BotName          string        `yaml:"bot_name"`
	GuildName        string        `yaml:"guild_name"`
	MessageCacheSize int           `yaml:"message_cache_size"`
	Channels         []ChannelSeed `yaml:"channels"`
	Roles            []RoleSeed    `yaml:"roles"`
	Users            []UserSeed    `yaml:"users"`
	// SystemChannel names the channel that receives join messages.
	SystemChannel string `yaml:"system_channel"`
}

// QueueConfig controls the event queue behaviour.
type QueueConfig struct {
	MaxSize int `yaml:"max_size"`
	// PollTimeoutSec is the default long-poll timeout when a request omits it.
	PollTimeoutSec int `yaml:"poll_timeout_sec"`
	// Events lists the event types that are queued. Empty means messages,
	// reactions and member changes.
	Events []string `yaml:"events"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
	// File, when set, receives a JSON copy of every record.
	File string `yaml:"file"`
}

// Config is the top-level configuration structure for the sandbox server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	Queue   QueueConfig   `yaml:"queue"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoadConfig reads a YAML configuration file over DefaultConfig, so keys the
// file omits keep their defaults. On error a nil config is returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns a new Config populated with default values. Each call
// returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Sandbox: SandboxConfig{
			BotName:          "discordmock",
			GuildName:        "sandbox",
			MessageCacheSize: 200,
			Channels: []ChannelSeed{
				{Name: "general", Topic: "General chat"},
				{Name: "random"},
				{Name: "voice", Type: "voice"},
			},
			Users: []UserSeed{
				{Username: "alice"},
				{Username: "bob"},
			},
			SystemChannel: "general",
		},
		Queue: QueueConfig{
			MaxSize:        1000,
			PollTimeoutSec: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var channelTypes = map[string]discordgo.ChannelType{
	"":         discordgo.ChannelTypeGuildText,
	"text":     discordgo.ChannelTypeGuildText,
	"voice":    discordgo.ChannelTypeGuildVoice,
	"category": discordgo.ChannelTypeGuildCategory,
	"news":     discordgo.ChannelTypeGuildNews,
}

// ChannelType maps a seed type name to its Discord channel type. The empty
// name is a text channel.
func ChannelType(name string) (discordgo.ChannelType, bool) {
	t, ok := channelTypes[name]
	return t, ok
}

// ChannelTypeName is the inverse of ChannelType. Types without a seed name
// render as their number.
func ChannelTypeName(t discordgo.ChannelType) string {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return "text"
	case discordgo.ChannelTypeGuildVoice:
		return "voice"
	case discordgo.ChannelTypeGuildCategory:
		return "category"
	case discordgo.ChannelTypeGuildNews:
		return "news"
	}
	return strconv.Itoa(int(t))
}

// Validate reports the first inconsistency in the sandbox seed.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sandbox.Channels))
	for i, ch := range c.Sandbox.Channels {
		if ch.Name == "" {
			return fmt.Errorf("config: sandbox.channels[%d]: name is required", i)
		}
		if _, ok := channelTypes[ch.Type]; !ok {
			return fmt.Errorf("config: sandbox.channels[%d]: unknown type %q", i, ch.Type)
		}
		if ch.Parent != "" && !seen[ch.Parent] {
			return fmt.Errorf("config: sandbox.channels[%d]: parent %q must be listed before it", i, ch.Parent)
		}
		seen[ch.Name] = true
	}
	roles := make(map[string]bool, len(c.Sandbox.Roles))
	for i, r := range c.Sandbox.Roles {
		if r.Name == "" {
			return fmt.Errorf("config: sandbox.roles[%d]: name is required", i)
		}
		roles[r.Name] = true
	}
	for i, u := range c.Sandbox.Users {
		if u.Username == "" {
			return fmt.Errorf("config: sandbox.users[%d]: username is required", i)
		}
		for _, name := range u.Roles {
			if !roles[name] {
				return fmt.Errorf("config: sandbox.users[%d]: unknown role %q", i, name)
			}
		}
	}
	if c.Sandbox.SystemChannel != "" && !seen[c.Sandbox.SystemChannel] {
		return fmt.Errorf("config: sandbox.system_channel %q is not a seeded channel", c.Sandbox.SystemChannel)
	}
	return nil
}

// ApplyEnvOverrides updates cfg in place with values from environment
// variables. Only non-empty values override existing config values.
//
// Recognized variables:
//   - DISCORDMOCK_AUTH_TOKEN  -> cfg.Server.AuthToken
//   - DISCORDMOCK_PORT        -> cfg.Server.Port
//   - DISCORDMOCK_GUILD_NAME  -> cfg.Sandbox.GuildName
//   - DISCORDMOCK_BOT_NAME    -> cfg.Sandbox.BotName
//   - DISCORDMOCK_LOG_LEVEL   -> cfg.Logging.Level
//   - DISCORDMOCK_LOG_FORMAT  -> cfg.Logging.Format
func ApplyEnvOverrides(cfg *Config) {
	if token := os.Getenv("DISCORDMOCK_AUTH_TOKEN"); token != "" {
		cfg.Server.AuthToken = token
	}
	if port, err := strconv.Atoi(os.Getenv("DISCORDMOCK_PORT")); err == nil && port > 0 {
		cfg.Server.Port = port
	}
	if name := os.Getenv("DISCORDMOCK_GUILD_NAME"); name != "" {
		cfg.Sandbox.GuildName = name
	}
	if name := os.Getenv("DISCORDMOCK_BOT_NAME"); name != "" {
		cfg.Sandbox.BotName = name
	}
	if level := os.Getenv("DISCORDMOCK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("DISCORDMOCK_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
}
