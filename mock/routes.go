package mock

import "fmt"

// Simulated request paths reported on API errors.

const (
	routeGuilds        = "/guilds"
	routeUsersMe       = "/users/@me"
	routeVoiceRegions  = "/voice/regions"
	routeUsersMeGuilds = "/users/@me/guilds"
	routeUsersMeDMs    = "/users/@me/channels"
)

func routeGuild(id string) string          { return "/guilds/" + id }
func routeGuildChannels(id string) string  { return "/guilds/" + id + "/channels" }
func routeGuildRoles(id string) string     { return "/guilds/" + id + "/roles" }
func routeGuildMembers(id string) string   { return "/guilds/" + id + "/members" }
func routeGuildBans(id string) string      { return "/guilds/" + id + "/bans" }
func routeGuildInvites(id string) string   { return "/guilds/" + id + "/invites" }
func routeGuildWebhooks(id string) string  { return "/guilds/" + id + "/webhooks" }
func routeGuildEmojis(id string) string    { return "/guilds/" + id + "/emojis" }
func routeGuildPrune(id string) string     { return "/guilds/" + id + "/prune" }
func routeGuildWidget(id string) string    { return "/guilds/" + id + "/widget" }
func routeGuildAuditLogs(id string) string { return "/guilds/" + id + "/audit-logs" }
func routeUser(id string) string           { return "/users/" + id }
func routeInvite(code string) string       { return "/invites/" + code }
func routeWebhook(id string) string        { return "/webhooks/" + id }
func routeChannel(id string) string        { return "/channels/" + id }

func routeGuildIntegrations(id string) string {
	return "/guilds/" + id + "/integrations"
}

func routeGuildIntegration(guildID, id string) string {
	return routeGuildIntegrations(guildID) + "/" + id
}

func routeGuildRole(guildID, roleID string) string {
	return fmt.Sprintf("/guilds/%s/roles/%s", guildID, roleID)
}

func routeGuildMember(guildID, userID string) string {
	return fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
}

func routeGuildMemberRole(guildID, userID, roleID string) string {
	return fmt.Sprintf("/guilds/%s/members/%s/roles/%s", guildID, userID, roleID)
}

func routeGuildBan(guildID, userID string) string {
	return fmt.Sprintf("/guilds/%s/bans/%s", guildID, userID)
}

func routeGuildEmoji(guildID, emojiID string) string {
	return fmt.Sprintf("/guilds/%s/emojis/%s", guildID, emojiID)
}

func routeChannelMessages(channelID string) string {
	return "/channels/" + channelID + "/messages"
}

func routeChannelMessage(channelID, messageID string) string {
	return routeChannelMessages(channelID) + "/" + messageID
}

func routeBulkDelete(channelID string) string {
	return routeChannelMessages(channelID) + "/bulk-delete"
}

func routeChannelPins(channelID string) string {
	return "/channels/" + channelID + "/pins"
}

func routeChannelPin(channelID, messageID string) string {
	return routeChannelPins(channelID) + "/" + messageID
}

func routeReactions(channelID, messageID string) string {
	return routeChannelMessage(channelID, messageID) + "/reactions"
}

func routeReaction(channelID, messageID, emoji string) string {
	return routeReactions(channelID, messageID) + "/" + emoji
}

func routeReactionUser(channelID, messageID, emoji, userID string) string {
	return routeReaction(channelID, messageID, emoji) + "/" + userID
}

func routeChannelOverwrite(channelID, targetID string) string {
	return fmt.Sprintf("/channels/%s/permissions/%s", channelID, targetID)
}

func routeChannelInvites(channelID string) string {
	return "/channels/" + channelID + "/invites"
}

func routeChannelWebhooks(channelID string) string {
	return "/channels/" + channelID + "/webhooks"
}

func routeChannelTyping(channelID string) string {
	return "/channels/" + channelID + "/typing"
}
