package mock

import (
	"context"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/internal/snowflakes"
	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

const (
	maxContentLength   = 2000
	maxEmbeds          = 10
	maxPins            = 50
	maxReactions       = 20
	bulkDeleteMaxAge   = 14 * 24 * time.Hour
	defaultFetchLimit  = 50
	maxFetchLimit      = 100
	minBulkDeleteCount = 2
	maxBulkDeleteCount = 100
)

var (
	userMentionRe = regexp.MustCompile(`<@!?(\d+)>`)
	roleMentionRe = regexp.MustCompile(`<@&(\d+)>`)
)

// attachment is a file read ahead of the state lock.
type attachment struct {
	name        string
	contentType string
	size        int
}

func readFiles(files []*discordgo.File) ([]attachment, error) {
	out := make([]attachment, 0, len(files))
	for _, f := range files {
		a := attachment{name: f.Name, contentType: f.ContentType}
		if f.Reader != nil {
			data, err := io.ReadAll(f.Reader)
			if err != nil {
				return nil, err
			}
			a.size = len(data)
		}
		out = append(out, a)
	}
	return out, nil
}

func checkMessageBody(path string, method apierr.Method, content string, embeds, files int) error {
	if strings.TrimSpace(content) == "" && embeds == 0 && files == 0 {
		return apierr.BadRequest(apierr.CodeEmptyMessage, "Cannot send an empty message", path, method)
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return apierr.FieldError(path, method, "content", "BASE_TYPE_MAX_LENGTH", "Must be 2000 or fewer in length.")
	}
	if embeds > maxEmbeds {
		return apierr.FieldError(path, method, "embeds", "BASE_TYPE_MAX_LENGTH", "Must be 10 or fewer in length.")
	}
	return nil
}

// checkText verifies the channel still exists and, in guilds, that actor
// holds perm in it. DM channels skip permission checks.
func (c *Client) checkText(actor *User, t *TextState, perm int64, path string, method apierr.Method) (*Guild, error) {
	ch := t.channel
	g := guildOf(ch)
	if g != nil {
		if err := g.check(path, method); err != nil {
			return nil, err
		}
	}
	if ch.Deleted() {
		return nil, unknown(apierr.CodeUnknownChannel, path, method)
	}
	return g, c.require(actor, g, ch, perm, path, method)
}

// draft is the content of a message about to be created.
type draft struct {
	content   string
	embeds    []*discordgo.MessageEmbed
	files     []attachment
	tts       bool
	reference *discordgo.MessageReference
	webhookID string
}

// composeMessage builds the record of a new message by author in t.
func (c *Client) composeMessage(t *TextState, author *discordgo.User, dr draft, canMentionEveryone bool) (*discordgo.Message, error) {
	ch := t.channel
	d := &discordgo.Message{}
	if err := record.Decode(defaults.Message(c.ids.Next(), ch.Base().ID, author, c.now()), d); err != nil {
		return nil, err
	}
	g := guildOf(ch)
	if g != nil {
		d.GuildID = g.ID
	}
	d.Content = dr.content
	d.TTS = dr.tts
	d.WebhookID = dr.webhookID
	d.Embeds = append(d.Embeds, dr.embeds...)
	for _, f := range dr.files {
		id := c.ids.Next()
		d.Attachments = append(d.Attachments, &discordgo.MessageAttachment{
			ID:          id,
			Filename:    f.name,
			ContentType: f.contentType,
			Size:        f.size,
			URL:         "https://cdn.discordapp.com/attachments/" + ch.Base().ID + "/" + id + "/" + f.name,
		})
	}
	c.fillMentions(g, d, canMentionEveryone)
	if ref := dr.reference; ref != nil {
		d.Type = discordgo.MessageTypeReply
		d.MessageReference = &discordgo.MessageReference{
			MessageID: ref.MessageID,
			ChannelID: ch.Base().ID,
			GuildID:   d.GuildID,
		}
		if target, ok := t.Messages.Get(ref.MessageID); ok {
			d.ReferencedMessage = target.Data()
		}
	}
	return d, nil
}

// fillMentions resolves the user and role mentions in d's content.
func (c *Client) fillMentions(g *Guild, d *discordgo.Message, canMentionEveryone bool) {
	d.Mentions = []*discordgo.User{}
	d.MentionRoles = []string{}
	for _, match := range userMentionRe.FindAllStringSubmatch(d.Content, -1) {
		u, ok := c.Users.Get(match[1])
		if !ok || slices.ContainsFunc(d.Mentions, func(x *discordgo.User) bool { return x.ID == u.ID }) {
			continue
		}
		d.Mentions = append(d.Mentions, u.Data())
	}
	if g != nil {
		for _, match := range roleMentionRe.FindAllStringSubmatch(d.Content, -1) {
			if g.Roles.Has(match[1]) && !slices.Contains(d.MentionRoles, match[1]) {
				d.MentionRoles = append(d.MentionRoles, match[1])
			}
		}
	}
	d.MentionEveryone = canMentionEveryone &&
		(strings.Contains(d.Content, "@everyone") || strings.Contains(d.Content, "@here"))
}

// Send posts a message to the channel as the client user. In guild
// channels it requires SEND_MESSAGES, plus ATTACH_FILES for files.
func (t *TextState) Send(ctx context.Context, ms *discordgo.MessageSend) (*Message, error) {
	c := t.channel.Base().client
	if ms == nil {
		ms = &discordgo.MessageSend{}
	}
	files, err := readFiles(ms.Files)
	if err != nil {
		return nil, err
	}
	return execValue(ctx, c, func() (*Message, error) {
		return c.sendMessage(c.User, t, ms, files)
	})
}

// SendText is Send with plain content.
func (t *TextState) SendText(ctx context.Context, content string) (*Message, error) {
	return t.Send(ctx, &discordgo.MessageSend{Content: content})
}

func (c *Client) sendMessage(actor *User, t *TextState, ms *discordgo.MessageSend, files []attachment) (*Message, error) {
	ch := t.channel
	path, method := routeChannelMessages(ch.Base().ID), apierr.MethodPost
	g, err := c.checkText(actor, t, permissions.SendMessages, path, method)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		if err := c.require(actor, g, ch, permissions.AttachFiles, path, method); err != nil {
			return nil, err
		}
	}
	if err := checkMessageBody(path, method, ms.Content, len(ms.Embeds), len(files)); err != nil {
		return nil, err
	}
	if ms.Reference != nil && !t.Messages.Has(ms.Reference.MessageID) {
		return nil, apierr.FieldError(path, method, "message_reference", "REPLIES_UNKNOWN_MESSAGE", "Unknown message")
	}

	dr := draft{
		content:   ms.Content,
		embeds:    ms.Embeds,
		files:     files,
		tts:       ms.TTS && c.holds(actor, g, ch, permissions.SendTTSMessages),
		reference: ms.Reference,
	}
	d, err := c.composeMessage(t, actor.Data(), dr, c.holds(actor, g, ch, permissions.MentionEveryone))
	if err != nil {
		return nil, err
	}
	res, ok := c.dispatch(EventMessageCreate, d)
	if !ok {
		return nil, unknown(apierr.CodeUnknownChannel, path, method)
	}
	return res.Message, nil
}

// holds reports whether actor has perm in ch without raising an error.
// Outside guilds everything is held.
func (c *Client) holds(actor *User, g *Guild, ch Channel, perm int64) bool {
	if g == nil {
		return true
	}
	m, ok := g.Members.Get(actor.ID)
	return ok && permissions.Has(g.permissionsOf(m, ch), perm)
}

// MessageQuery pages through a channel's cached history. At most one of
// Before, After and Around may be set.
type MessageQuery struct {
	// Limit defaults to 50 and must be within [1, 100].
	Limit  mo.Option[int]
	Before string
	After  string
	Around string
}

// FetchMessages returns cached messages, newest first. In guilds it
// requires READ_MESSAGE_HISTORY.
func (t *TextState) FetchMessages(ctx context.Context, q MessageQuery) ([]*Message, error) {
	c := t.channel.Base().client
	return execValue(ctx, c, func() ([]*Message, error) {
		return c.fetchMessages(c.User, t, q)
	})
}

func (c *Client) fetchMessages(actor *User, t *TextState, q MessageQuery) ([]*Message, error) {
	path, method := routeChannelMessages(t.channel.Base().ID), apierr.MethodGet
	if _, err := c.checkText(actor, t, permissions.ReadMessageHistory, path, method); err != nil {
		return nil, err
	}
	limit := q.Limit.OrElse(defaultFetchLimit)
	if err := checkRange(path, method, "limit", limit, 1, maxFetchLimit); err != nil {
		return nil, err
	}
	set := 0
	for _, s := range []string{q.Before, q.After, q.Around} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, apierr.FieldError(path, method, "around", "BASE_TYPE_INVALID", "Only one of before, after and around may be set.")
	}

	asc := t.Messages.Values()
	slices.SortFunc(asc, func(a, b *Message) int { return snowflakes.Compare(a.ID, b.ID) })

	var window []*Message
	switch {
	case q.Before != "":
		older := slices.DeleteFunc(asc, func(m *Message) bool { return snowflakes.Compare(m.ID, q.Before) >= 0 })
		window = older[max(0, len(older)-limit):]
	case q.After != "":
		newer := slices.DeleteFunc(asc, func(m *Message) bool { return snowflakes.Compare(m.ID, q.After) <= 0 })
		window = newer[:min(limit, len(newer))]
	case q.Around != "":
		idx, _ := slices.BinarySearchFunc(asc, q.Around, func(m *Message, id string) int { return snowflakes.Compare(m.ID, id) })
		start := max(0, idx-limit/2)
		window = asc[start:min(len(asc), start+limit)]
	default:
		window = asc[max(0, len(asc)-limit):]
	}
	out := slices.Clone(window)
	slices.Reverse(out)
	return out, nil
}

// FetchMessage returns one cached message.
func (t *TextState) FetchMessage(ctx context.Context, id string) (*Message, error) {
	c := t.channel.Base().client
	return execValue(ctx, c, func() (*Message, error) {
		path, method := routeChannelMessage(t.channel.Base().ID, id), apierr.MethodGet
		if _, err := c.checkText(c.User, t, permissions.ReadMessageHistory, path, method); err != nil {
			return nil, err
		}
		m, ok := t.Messages.Get(id)
		if !ok {
			return nil, unknown(apierr.CodeUnknownMessage, path, method)
		}
		return m, nil
	})
}

// FetchPinned returns the pinned messages, newest first.
func (t *TextState) FetchPinned(ctx context.Context) ([]*Message, error) {
	c := t.channel.Base().client
	return execValue(ctx, c, func() ([]*Message, error) {
		path, method := routeChannelPins(t.channel.Base().ID), apierr.MethodGet
		if _, err := c.checkText(c.User, t, permissions.ReadMessageHistory, path, method); err != nil {
			return nil, err
		}
		pinned := t.Messages.Filter(func(m *Message) bool { return m.Pinned })
		slices.SortFunc(pinned, func(a, b *Message) int { return snowflakes.Compare(b.ID, a.ID) })
		return pinned, nil
	})
}

// StartTyping shows the client user typing in the channel.
func (t *TextState) StartTyping(ctx context.Context) error {
	c := t.channel.Base().client
	return c.exec(ctx, func() error {
		return c.startTyping(c.User, t)
	})
}

func (c *Client) startTyping(actor *User, t *TextState) error {
	ch := t.channel
	path, method := routeChannelTyping(ch.Base().ID), apierr.MethodPost
	g, err := c.checkText(actor, t, permissions.SendMessages, path, method)
	if err != nil {
		return err
	}
	p := &TypingPayload{ChannelID: ch.Base().ID, UserID: actor.ID, Timestamp: c.now().Unix()}
	if g != nil {
		p.GuildID = g.ID
	}
	c.dispatch(EventTypingStart, p)
	return nil
}

// BulkDelete deletes 2 to 100 messages at once. Requires MANAGE_MESSAGES.
// When any message is older than two weeks nothing is deleted. IDs that are
// not cached are ignored.
func (t *TextState) BulkDelete(ctx context.Context, ids []string, reason string) error {
	c := t.channel.Base().client
	return c.exec(ctx, func() error {
		return c.bulkDelete(c.User, t, ids, reason)
	})
}

func (c *Client) bulkDelete(actor *User, t *TextState, ids []string, reason string) error {
	ch := t.channel
	path, method := routeBulkDelete(ch.Base().ID), apierr.MethodPost
	g := guildOf(ch)
	if g == nil {
		return apierr.BadRequest(apierr.CodeCannotExecuteOnDM, "Cannot execute action on a DM channel", path, method)
	}
	if _, err := c.checkText(actor, t, permissions.ManageMessages, path, method); err != nil {
		return err
	}
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(ids) < minBulkDeleteCount || len(ids) > maxBulkDeleteCount {
		return apierr.BadRequest(apierr.CodeInvalidBulkDeleteCount,
			"You must provide at least 2 and fewer than 100 messages to delete.", path, method)
	}
	cutoff := c.now().Add(-bulkDeleteMaxAge)
	for _, id := range ids {
		created, err := snowflakes.Time(id)
		if err != nil {
			return apierr.FieldError(path, method, "messages", "NUMBER_TYPE_COERCE", "Value is not snowflake.")
		}
		if created.Before(cutoff) {
			return apierr.BadRequest(apierr.CodeBulkDeleteTooOld,
				"You can only bulk delete messages that are under 14 days old.", path, method)
		}
	}

	cached := slices.DeleteFunc(ids, func(id string) bool { return !t.Messages.Has(id) })
	if len(cached) == 0 {
		return nil
	}
	c.dispatch(EventMessageDeleteBulk, &MessageDeleteBulkPayload{IDs: cached, ChannelID: ch.Base().ID, GuildID: g.ID})
	g.audit(actor, discordgo.AuditLogActionMessageBulkDelete, ch.Base().ID, reason, nil, map[string]string{
		"count": strconv.Itoa(len(cached)),
	})
	return nil
}

func (m *Message) check(path string, method apierr.Method) error {
	if g := m.Guild(); g != nil {
		if err := g.check(path, method); err != nil {
			return err
		}
	}
	if m.channel.Deleted() {
		return unknown(apierr.CodeUnknownChannel, path, method)
	}
	if m.deleted {
		return unknown(apierr.CodeUnknownMessage, path, method)
	}
	return nil
}

func (m *Message) authorID() string {
	if m.Author == nil {
		return ""
	}
	return m.Author.ID
}

// MessageEdit is a partial message update.
type MessageEdit struct {
	Content mo.Option[string]
	Embeds  mo.Option[[]*discordgo.MessageEmbed]
}

// Edit changes the message's content or embeds. Only the author may edit.
func (m *Message) Edit(ctx context.Context, e MessageEdit) (*Message, error) {
	c := m.channel.Base().client
	return execValue(ctx, c, func() (*Message, error) {
		return c.editMessage(c.User, m, e)
	})
}

func (c *Client) editMessage(actor *User, m *Message, e MessageEdit) (*Message, error) {
	path, method := routeChannelMessage(m.ChannelID, m.ID), apierr.MethodPatch
	if err := m.check(path, method); err != nil {
		return nil, err
	}
	if m.authorID() != actor.ID {
		return nil, apierr.Forbidden(apierr.CodeCannotEditOthers, "Cannot edit a message authored by another user", path, method)
	}
	content := e.Content.OrElse(m.Content)
	embeds := e.Embeds.OrElse(m.Embeds)
	if err := checkMessageBody(path, method, content, len(embeds), len(m.Attachments)); err != nil {
		return nil, err
	}

	partial := record.Record{"content": content}
	if list, ok := e.Embeds.Get(); ok {
		partial["embeds"] = list
	}
	next, changes, err := applyPatch(m.Data(), partial)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return m, nil
	}
	g := m.Guild()
	now := c.now()
	next.EditedTimestamp = &now
	c.fillMentions(g, next, c.holds(actor, g, m.channel, permissions.MentionEveryone))
	c.dispatch(EventMessageUpdate, next)
	return m, nil
}

// Delete deletes the message. Deleting someone else's message requires
// MANAGE_MESSAGES and is audited.
func (m *Message) Delete(ctx context.Context, reason string) error {
	c := m.channel.Base().client
	return c.exec(ctx, func() error {
		return c.deleteMessage(c.User, m, reason)
	})
}

func (c *Client) deleteMessage(actor *User, m *Message, reason string) error {
	path, method := routeChannelMessage(m.ChannelID, m.ID), apierr.MethodDelete
	if err := m.check(path, method); err != nil {
		return err
	}
	g := m.Guild()
	own := m.authorID() == actor.ID
	if !own {
		if g == nil {
			return apierr.Forbidden(apierr.CodeCannotExecuteOnDM, "Cannot execute action on a DM channel", path, method)
		}
		if err := c.require(actor, g, m.channel, permissions.ManageMessages, path, method); err != nil {
			return err
		}
	}

	p := &MessageDeletePayload{ID: m.ID, ChannelID: m.ChannelID}
	if g != nil {
		p.GuildID = g.ID
	}
	c.dispatch(EventMessageDelete, p)
	if !own {
		g.audit(actor, discordgo.AuditLogActionMessageDelete, m.authorID(), reason, nil, map[string]string{
			"channel_id": m.ChannelID,
			"count":      "1",
		})
	}
	return nil
}

// Reply sends content in the message's channel as a reply to it.
func (m *Message) Reply(ctx context.Context, content string) (*Message, error) {
	t, ok := AsText(m.channel)
	if !ok {
		return nil, unknown(apierr.CodeUnknownChannel, routeChannelMessages(m.ChannelID), apierr.MethodPost)
	}
	return t.Send(ctx, &discordgo.MessageSend{
		Content:   content,
		Reference: &discordgo.MessageReference{MessageID: m.ID, ChannelID: m.ChannelID},
	})
}

// Pin pins the message. Requires MANAGE_MESSAGES; a channel holds at most
// 50 pins.
func (m *Message) Pin(ctx context.Context, reason string) error {
	return m.setPinned(ctx, true, reason)
}

// Unpin unpins the message. Requires MANAGE_MESSAGES.
func (m *Message) Unpin(ctx context.Context, reason string) error {
	return m.setPinned(ctx, false, reason)
}

func (m *Message) setPinned(ctx context.Context, pinned bool, reason string) error {
	c := m.channel.Base().client
	return c.exec(ctx, func() error {
		method, action := apierr.MethodPut, discordgo.AuditLogActionMessagePin
		if !pinned {
			method, action = apierr.MethodDelete, discordgo.AuditLogActionMessageUnpin
		}
		path := routeChannelPin(m.ChannelID, m.ID)
		if err := m.check(path, method); err != nil {
			return err
		}
		g := m.Guild()
		if err := c.require(c.User, g, m.channel, permissions.ManageMessages, path, method); err != nil {
			return err
		}
		if m.Pinned == pinned {
			return nil
		}
		t, _ := AsText(m.channel)
		if pinned && len(t.Messages.Filter(func(x *Message) bool { return x.Pinned })) >= maxPins {
			return apierr.BadRequest(apierr.CodeMaxPins, "Maximum number of pins reached (50)", path, method)
		}

		d := m.Data()
		d.Pinned = pinned
		c.dispatch(EventMessageUpdate, d)
		pins := &ChannelPinsPayload{ChannelID: m.ChannelID, LastPinTimestamp: m.channel.Base().LastPinTimestamp}
		if pinned {
			now := c.now()
			pins.LastPinTimestamp = &now
		}
		if g != nil {
			pins.GuildID = g.ID
			g.audit(c.User, action, m.authorID(), reason, nil, map[string]string{
				"channel_id": m.ChannelID,
				"message_id": m.ID,
			})
		}
		c.dispatch(EventChannelPinsUpdate, pins)
		return nil
	})
}

// React adds the client user's reaction. emoji is a unicode emoji or a
// custom emoji in "name:id" form. In guilds it requires
// READ_MESSAGE_HISTORY, plus ADD_REACTIONS for an emoji nobody has used yet.
func (m *Message) React(ctx context.Context, emoji string) error {
	c := m.channel.Base().client
	return c.exec(ctx, func() error {
		return c.react(c.User, m, ParseEmoji(emoji))
	})
}

func (c *Client) react(actor *User, m *Message, e discordgo.Emoji) error {
	path, method := routeReactionUser(m.ChannelID, m.ID, emojiRoute(e), "@me"), apierr.MethodPut
	if err := m.check(path, method); err != nil {
		return err
	}
	g := m.Guild()
	if err := c.require(actor, g, m.channel, permissions.ReadMessageHistory, path, method); err != nil {
		return err
	}
	if e.ID != "" {
		custom, ok := c.findEmoji(e.ID)
		if !ok {
			return unknown(apierr.CodeUnknownEmoji, path, method)
		}
		e = discordgo.Emoji{ID: custom.ID, Name: custom.Name, Animated: custom.Animated}
	}
	if !m.Reactions.Has(emojiKey(e)) {
		if err := c.require(actor, g, m.channel, permissions.AddReactions, path, method); err != nil {
			return err
		}
		if m.Reactions.Len() >= maxReactions {
			return apierr.BadRequest(apierr.CodeMaxReactions, "Maximum number of reactions reached (20)", path, method)
		}
	}

	p := &ReactionPayload{UserID: actor.ID, ChannelID: m.ChannelID, MessageID: m.ID, Emoji: e}
	if g != nil {
		p.GuildID = g.ID
	}
	c.dispatch(EventMessageReactionAdd, p)
	return nil
}

func (c *Client) findEmoji(id string) (*Emoji, bool) {
	for _, g := range c.Guilds.Values() {
		if e, ok := g.Emojis.Get(id); ok && !g.deleted {
			return e, true
		}
	}
	return nil, false
}

// RemoveUser removes userID's reaction. Removing another user's reaction
// requires MANAGE_MESSAGES.
func (r *Reaction) RemoveUser(ctx context.Context, userID string) error {
	c := r.message.channel.Base().client
	return c.exec(ctx, func() error {
		return c.unreact(c.User, r.message, r.Emoji, userID)
	})
}

// Remove removes the client user's reaction.
func (r *Reaction) Remove(ctx context.Context) error {
	return r.RemoveUser(ctx, r.message.channel.Base().client.User.ID)
}

func (c *Client) unreact(actor *User, m *Message, e discordgo.Emoji, userID string) error {
	target := userID
	if userID == actor.ID {
		target = "@me"
	}
	path, method := routeReactionUser(m.ChannelID, m.ID, emojiRoute(e), target), apierr.MethodDelete
	if err := m.check(path, method); err != nil {
		return err
	}
	g := m.Guild()
	if userID != actor.ID {
		if g == nil {
			return apierr.Forbidden(apierr.CodeCannotExecuteOnDM, "Cannot execute action on a DM channel", path, method)
		}
		if err := c.require(actor, g, m.channel, permissions.ManageMessages, path, method); err != nil {
			return err
		}
	}
	r, ok := m.Reactions.Get(emojiKey(e))
	if !ok || !r.Users.Has(userID) {
		return nil
	}

	p := &ReactionPayload{UserID: userID, ChannelID: m.ChannelID, MessageID: m.ID, Emoji: r.Emoji}
	if g != nil {
		p.GuildID = g.ID
	}
	c.dispatch(EventMessageReactionRemove, p)
	return nil
}

// RemoveEmoji removes every user's reaction with this emoji. Requires
// MANAGE_MESSAGES.
func (r *Reaction) RemoveEmoji(ctx context.Context) error {
	m := r.message
	c := m.channel.Base().client
	return c.exec(ctx, func() error {
		path, method := routeReaction(m.ChannelID, m.ID, emojiRoute(r.Emoji)), apierr.MethodDelete
		g, err := c.moderateReactions(m, path, method)
		if err != nil {
			return err
		}
		if !m.Reactions.Has(r.Key()) {
			return nil
		}
		c.dispatch(EventMessageReactionRemoveEmoji, &ReactionPayload{
			ChannelID: m.ChannelID,
			MessageID: m.ID,
			GuildID:   g.ID,
			Emoji:     r.Emoji,
		})
		return nil
	})
}

// RemoveAllReactions clears every reaction. Requires MANAGE_MESSAGES.
func (m *Message) RemoveAllReactions(ctx context.Context) error {
	c := m.channel.Base().client
	return c.exec(ctx, func() error {
		g, err := c.moderateReactions(m, routeReactions(m.ChannelID, m.ID), apierr.MethodDelete)
		if err != nil {
			return err
		}
		if m.Reactions.Len() == 0 {
			return nil
		}
		c.dispatch(EventMessageReactionRemoveAll, &ReactionRemoveAllPayload{
			ChannelID: m.ChannelID,
			MessageID: m.ID,
			GuildID:   g.ID,
		})
		return nil
	})
}

func (c *Client) moderateReactions(m *Message, path string, method apierr.Method) (*Guild, error) {
	if err := m.check(path, method); err != nil {
		return nil, err
	}
	g := m.Guild()
	if g == nil {
		return nil, apierr.Forbidden(apierr.CodeCannotExecuteOnDM, "Cannot execute action on a DM channel", path, method)
	}
	if err := c.require(c.User, g, m.channel, permissions.ManageMessages, path, method); err != nil {
		return nil, err
	}
	return g, nil
}
