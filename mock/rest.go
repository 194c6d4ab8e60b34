package mock

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/auditlog"
)

// REST exposes the client through discordgo.Session method signatures so
// code written against a session can run against the mock. Every call acts
// as the client user. A discordgo.WithContext option bounds the call and a
// discordgo.WithAuditLogReason option becomes the audit reason.
type REST struct {
	client *Client
}

// requestOptions applies options to a throwaway request and reads back the
// context and audit reason they set.
func requestOptions(options []discordgo.RequestOption) (context.Context, string) {
	req, err := http.NewRequest(http.MethodGet, "http://discordmock.invalid", nil)
	if err != nil {
		return context.Background(), ""
	}
	cfg := &discordgo.RequestConfig{Request: req}
	for _, opt := range options {
		opt(cfg)
	}
	reason := cfg.Request.Header.Get("X-Audit-Log-Reason")
	if unescaped, err := url.PathUnescape(reason); err == nil {
		reason = unescaped
	}
	return cfg.Request.Context(), reason
}

func (r *REST) text(channelID string, method apierr.Method) (*TextState, error) {
	path := routeChannel(channelID)
	ch, ok := r.client.Channels.Get(channelID)
	if !ok {
		return nil, unknown(apierr.CodeUnknownChannel, path, method)
	}
	t, ok := AsText(ch)
	if !ok {
		return nil, apierr.BadRequest(apierr.CodeInvalidFormBody, "Cannot send messages in a non-text channel", path, method)
	}
	return t, nil
}

func (r *REST) message(channelID, messageID string, method apierr.Method) (*Message, error) {
	t, err := r.text(channelID, method)
	if err != nil {
		return nil, err
	}
	m, ok := t.Messages.Get(messageID)
	if !ok {
		return nil, unknown(apierr.CodeUnknownMessage, routeChannelMessage(channelID, messageID), method)
	}
	return m, nil
}

func (r *REST) guild(guildID string, method apierr.Method) (*Guild, error) {
	g, ok := r.client.Guild(guildID)
	if !ok {
		return nil, unknown(apierr.CodeUnknownGuild, routeGuild(guildID), method)
	}
	return g, nil
}

func (r *REST) member(guildID, userID string, method apierr.Method) (*Member, error) {
	g, err := r.guild(guildID, method)
	if err != nil {
		return nil, err
	}
	m, ok := g.Members.Get(userID)
	if !ok {
		return nil, unknown(apierr.CodeUnknownMember, routeGuildMember(guildID, userID), method)
	}
	return m, nil
}

// ChannelMessageSend sends a plain text message.
func (r *REST) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return r.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: content}, options...)
}

// ChannelMessageSendComplex sends a message.
func (r *REST) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	ctx, _ := requestOptions(options)
	t, err := r.text(channelID, apierr.MethodPost)
	if err != nil {
		return nil, err
	}
	m, err := t.Send(ctx, data)
	if err != nil {
		return nil, err
	}
	return m.Data(), nil
}

// ChannelMessages returns up to limit messages, newest first. A limit of
// zero uses the default page size.
func (r *REST) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	ctx, _ := requestOptions(options)
	t, err := r.text(channelID, apierr.MethodGet)
	if err != nil {
		return nil, err
	}
	q := MessageQuery{Before: beforeID, After: afterID, Around: aroundID}
	if limit > 0 {
		q.Limit = mo.Some(limit)
	}
	msgs, err := t.FetchMessages(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]*discordgo.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Data()
	}
	return out, nil
}

// ChannelMessage returns one message.
func (r *REST) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	ctx, _ := requestOptions(options)
	t, err := r.text(channelID, apierr.MethodGet)
	if err != nil {
		return nil, err
	}
	m, err := t.FetchMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return m.Data(), nil
}

// ChannelMessageEdit replaces a message's content.
func (r *REST) ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	ctx, _ := requestOptions(options)
	m, err := r.message(channelID, messageID, apierr.MethodPatch)
	if err != nil {
		return nil, err
	}
	m, err = m.Edit(ctx, MessageEdit{Content: mo.Some(content)})
	if err != nil {
		return nil, err
	}
	return m.Data(), nil
}

// ChannelMessageDelete deletes a message.
func (r *REST) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	ctx, reason := requestOptions(options)
	m, err := r.message(channelID, messageID, apierr.MethodDelete)
	if err != nil {
		return err
	}
	return m.Delete(ctx, reason)
}

// ChannelMessagesBulkDelete deletes messages in one request.
func (r *REST) ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error {
	ctx, reason := requestOptions(options)
	t, err := r.text(channelID, apierr.MethodPost)
	if err != nil {
		return err
	}
	return t.BulkDelete(ctx, messages, reason)
}

// ChannelMessagePin pins a message.
func (r *REST) ChannelMessagePin(channelID, messageID string, options ...discordgo.RequestOption) error {
	ctx, reason := requestOptions(options)
	m, err := r.message(channelID, messageID, apierr.MethodPut)
	if err != nil {
		return err
	}
	return m.Pin(ctx, reason)
}

// ChannelMessageUnpin unpins a message.
func (r *REST) ChannelMessageUnpin(channelID, messageID string, options ...discordgo.RequestOption) error {
	ctx, reason := requestOptions(options)
	m, err := r.message(channelID, messageID, apierr.MethodDelete)
	if err != nil {
		return err
	}
	return m.Unpin(ctx, reason)
}

// ChannelTyping shows the client user typing.
func (r *REST) ChannelTyping(channelID string, options ...discordgo.RequestOption) error {
	ctx, _ := requestOptions(options)
	t, err := r.text(channelID, apierr.MethodPost)
	if err != nil {
		return err
	}
	return t.StartTyping(ctx)
}

// Channel returns a channel.
func (r *REST) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ctx, _ := requestOptions(options)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch, ok := r.client.Channels.Get(channelID)
	if !ok {
		return nil, unknown(apierr.CodeUnknownChannel, routeChannel(channelID), apierr.MethodGet)
	}
	return ch.Data(), nil
}

// MessageReactionAdd reacts as the client user.
func (r *REST) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	ctx, _ := requestOptions(options)
	m, err := r.message(channelID, messageID, apierr.MethodPut)
	if err != nil {
		return err
	}
	return m.React(ctx, emojiID)
}

// MessageReactionRemove removes userID's reaction. "@me" is the client user.
func (r *REST) MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error {
	ctx, _ := requestOptions(options)
	m, err := r.message(channelID, messageID, apierr.MethodDelete)
	if err != nil {
		return err
	}
	if userID == "@me" {
		userID = r.client.User.ID
	}
	c := r.client
	return c.exec(ctx, func() error {
		return c.unreact(c.User, m, ParseEmoji(emojiID), userID)
	})
}

// Guild returns a guild with its roles, channels and emojis.
func (r *REST) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	ctx, _ := requestOptions(options)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := r.guild(guildID, apierr.MethodGet)
	if err != nil {
		return nil, err
	}
	return g.Data(), nil
}

// GuildChannels lists a guild's channels.
func (r *REST) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	ctx, _ := requestOptions(options)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := r.guild(guildID, apierr.MethodGet)
	if err != nil {
		return nil, err
	}
	var out []*discordgo.Channel
	for _, ch := range g.Channels.Values() {
		out = append(out, ch.Data())
	}
	return out, nil
}

// GuildChannelCreate creates a channel.
func (r *REST) GuildChannelCreate(guildID, name string, ctype discordgo.ChannelType, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ctx, reason := requestOptions(options)
	g, err := r.guild(guildID, apierr.MethodPost)
	if err != nil {
		return nil, err
	}
	ch, err := g.CreateChannel(ctx, ChannelParams{Name: name, Type: ctype, Reason: reason})
	if err != nil {
		return nil, err
	}
	return ch.Data(), nil
}

// GuildRoles lists a guild's roles from the top of the hierarchy down.
func (r *REST) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	ctx, _ := requestOptions(options)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := r.guild(guildID, apierr.MethodGet)
	if err != nil {
		return nil, err
	}
	var out []*discordgo.Role
	for _, role := range g.SortedRoles() {
		out = append(out, role.Data())
	}
	return out, nil
}

// GuildRoleCreate creates a role.
func (r *REST) GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error) {
	ctx, reason := requestOptions(options)
	g, err := r.guild(guildID, apierr.MethodPost)
	if err != nil {
		return nil, err
	}
	p := RoleCreate{Name: data.Name, Reason: reason}
	if data.Color != nil {
		p.Color = *data.Color
	}
	if data.Hoist != nil {
		p.Hoist = *data.Hoist
	}
	if data.Mentionable != nil {
		p.Mentionable = *data.Mentionable
	}
	if data.Permissions != nil {
		p.Permissions = mo.Some(*data.Permissions)
	}
	role, err := g.CreateRole(ctx, p)
	if err != nil {
		return nil, err
	}
	return role.Data(), nil
}

// GuildRoleDelete deletes a role.
func (r *REST) GuildRoleDelete(guildID, roleID string, options ...discordgo.RequestOption) error {
	ctx, reason := requestOptions(options)
	g, err := r.guild(guildID, apierr.MethodDelete)
	if err != nil {
		return err
	}
	role, ok := g.Roles.Get(roleID)
	if !ok {
		return unknown(apierr.CodeUnknownRole, routeGuildRole(guildID, roleID), apierr.MethodDelete)
	}
	return role.Delete(ctx, reason)
}

// GuildMember returns a member.
func (r *REST) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	ctx, _ := requestOptions(options)
	g, err := r.guild(guildID, apierr.MethodGet)
	if err != nil {
		return nil, err
	}
	m, err := g.FetchMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.Data(), nil
}

// GuildMemberRoleAdd grants a role.
func (r *REST) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	ctx, reason := requestOptions(options)
	m, err := r.member(guildID, userID, apierr.MethodPut)
	if err != nil {
		return err
	}
	_, err = m.AddRole(ctx, roleID, reason)
	return err
}

// GuildMemberRoleRemove revokes a role.
func (r *REST) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	ctx, reason := requestOptions(options)
	m, err := r.member(guildID, userID, apierr.MethodDelete)
	if err != nil {
		return err
	}
	_, err = m.RemoveRole(ctx, roleID, reason)
	return err
}

// GuildMemberDeleteWithReason kicks a member.
func (r *REST) GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error {
	ctx, _ := requestOptions(options)
	m, err := r.member(guildID, userID, apierr.MethodDelete)
	if err != nil {
		return err
	}
	return m.Kick(ctx, reason)
}

// GuildBanCreateWithReason bans a user and deletes their messages from the
// last days days.
func (r *REST) GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error {
	ctx, _ := requestOptions(options)
	g, err := r.guild(guildID, apierr.MethodPut)
	if err != nil {
		return err
	}
	return g.Ban(ctx, userID, BanOptions{DeleteMessageDays: days, Reason: reason})
}

// GuildAuditLog queries the audit log. Zero values leave a filter unset.
func (r *REST) GuildAuditLog(guildID, userID, beforeID string, actionType, limit int, options ...discordgo.RequestOption) (*discordgo.GuildAuditLog, error) {
	ctx, _ := requestOptions(options)
	g, err := r.guild(guildID, apierr.MethodGet)
	if err != nil {
		return nil, err
	}
	q := auditlog.Query{Before: beforeID, UserID: userID}
	if actionType != 0 {
		q.ActionType = mo.Some(discordgo.AuditLogAction(actionType))
	}
	if limit != 0 {
		q.Limit = mo.Some(limit)
	}
	entries, err := g.FetchAuditLogs(ctx, q)
	if err != nil {
		return nil, err
	}

	out := &discordgo.GuildAuditLog{}
	seen := map[string]bool{}
	for _, e := range entries {
		d := e.Data()
		out.AuditLogEntries = append(out.AuditLogEntries, d)
		if seen[d.UserID] {
			continue
		}
		seen[d.UserID] = true
		if u, ok := r.client.Users.Get(d.UserID); ok {
			out.Users = append(out.Users, u.Data())
		}
	}
	return out, nil
}

// User returns a user. "@me" is the client user.
func (r *REST) User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error) {
	ctx, _ := requestOptions(options)
	u, err := r.client.FetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Data(), nil
}

// UserChannelCreate opens a DM with recipientID.
func (r *REST) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ctx, _ := requestOptions(options)
	u, err := r.client.FetchUser(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	dm, err := u.CreateDM(ctx)
	if err != nil {
		return nil, err
	}
	return dm.Data(), nil
}
