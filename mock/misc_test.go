package mock

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/discordmock/apierr"
)

const pngImage = "data:image/png;base64,iVBORw0KGgo="

// ---------------------------------------------------------------------------
// Invites
// ---------------------------------------------------------------------------

func Test_Invite_ReusedUnlessUnique(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.text.CreateInvite(ctx, InviteParams{})
	require.NoError(t, err)
	b, err := f.text.CreateInvite(ctx, InviteParams{})
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := f.text.CreateInvite(ctx, InviteParams{Unique: true})
	require.NoError(t, err)
	assert.NotEqual(t, a.Code, c.Code)
	assert.Equal(t, 86400, a.MaxAge)
	assert.Equal(t, "https://discord.gg/"+a.Code, a.URL())

	fetched, err := f.c.FetchInvite(ctx, a.Code)
	require.NoError(t, err)
	assert.Same(t, a, fetched)
}

func Test_Invite_Delete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.text.CreateInvite(ctx, InviteParams{})
	require.NoError(t, err)
	require.NoError(t, inv.Delete(ctx, "leaked"))
	assert.True(t, inv.Deleted())

	e := lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionInviteDelete, e.ActionType)
	assert.Equal(t, "leaked", e.Reason)

	err = inv.Delete(ctx, "")
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownInvite))
	_, err = f.c.FetchInvite(ctx, inv.Code)
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownInvite))
}

func Test_Invite_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name   string
		params InviteParams
	}{
		{name: "max age too large", params: InviteParams{MaxAge: mo.Some(604801)}},
		{name: "negative max age", params: InviteParams{MaxAge: mo.Some(-1)}},
		{name: "max uses too large", params: InviteParams{MaxUses: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.text.CreateInvite(context.Background(), tt.params)
			assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody), "got %v", err)
		})
	}
	assert.Equal(t, 0, f.g.Invites.Len())
}

// ---------------------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------------------

func Test_Webhook_Lifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.text.CreateWebhook(ctx, "hook", "", "")
	require.NoError(t, err)
	assert.Equal(t, f.text.ID, w.ChannelID)

	listed, err := f.text.FetchWebhooks(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Same(t, w, listed[0])

	edited, err := w.Edit(ctx, WebhookEdit{Name: mo.Some("renamed"), Reason: "tidy"})
	require.NoError(t, err)
	assert.Same(t, w, edited)
	assert.Equal(t, "renamed", w.Name)
	assert.Equal(t, discordgo.AuditLogActionWebhookUpdate, lastAudit(t, f.g).ActionType)

	_, err = w.Edit(ctx, WebhookEdit{ChannelID: mo.Some(f.voice.ID)})
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody))

	require.NoError(t, w.Delete(ctx, ""))
	assert.True(t, w.Deleted())
	_, err = w.Edit(ctx, WebhookEdit{Name: mo.Some("again")})
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownWebhook))
	_, err = f.c.FetchWebhook(ctx, w.ID)
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownWebhook))
}

func Test_Webhook_Send(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.text.CreateWebhook(ctx, "hook", "", "")
	require.NoError(t, err)

	m, err := w.Send(ctx, &discordgo.WebhookParams{Content: "@everyone deploy done", Username: "ci"})
	require.NoError(t, err)
	assert.Equal(t, w.ID, m.WebhookID)
	assert.Equal(t, "ci", m.Author.Username)
	assert.True(t, m.Author.Bot)
	assert.True(t, m.MentionEveryone)
	assert.True(t, f.text.Messages.Has(m.ID))

	_, err = w.Send(ctx, &discordgo.WebhookParams{})
	assert.True(t, apierr.HasCode(err, apierr.CodeEmptyMessage))
	_, err = w.Send(ctx, nil)
	assert.True(t, apierr.HasCode(err, apierr.CodeEmptyMessage))
}

// ---------------------------------------------------------------------------
// Integrations
// ---------------------------------------------------------------------------

func Test_Integration_Lifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.g.CreateIntegration(ctx, "myspace", "")
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody))

	in, err := f.g.CreateIntegration(ctx, "twitch", "")
	require.NoError(t, err)
	assert.Equal(t, "twitch", in.Type)

	_, err = in.Edit(ctx, IntegrationEdit{ExpireGracePeriod: mo.Some(2)})
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody))

	edited, err := in.Edit(ctx, IntegrationEdit{ExpireGracePeriod: mo.Some(7)})
	require.NoError(t, err)
	assert.Same(t, in, edited)
	assert.Equal(t, 7, in.ExpireGracePeriod)

	f.clock.Advance(time.Hour)
	require.NoError(t, in.Sync(ctx))
	assert.True(t, in.SyncedAt.Equal(f.clock.Now()))

	require.NoError(t, in.Delete(ctx, ""))
	assert.True(t, in.Deleted())
	assert.Equal(t, discordgo.AuditLogActionIntegrationDelete, lastAudit(t, f.g).ActionType)

	err = in.Sync(ctx)
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownIntegration))
}

// ---------------------------------------------------------------------------
// Emoji
// ---------------------------------------------------------------------------

func Test_Emoji_Lifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.g.CreateEmoji(ctx, EmojiParams{Name: "party_parrot", Image: "data:image/gif;base64,R0lGOD"})
	require.NoError(t, err)
	assert.True(t, e.Animated)
	assert.Same(t, f.g, e.Guild())
	assert.Equal(t, discordgo.AuditLogActionEmojiCreate, lastAudit(t, f.g).ActionType)

	role, err := f.g.CreateRole(ctx, RoleCreate{Name: "vip"})
	require.NoError(t, err)
	edited, err := e.Edit(ctx, EmojiEdit{Name: mo.Some("parrot"), Roles: mo.Some([]string{role.ID})})
	require.NoError(t, err)
	assert.Same(t, e, edited)
	assert.Equal(t, "parrot", e.Name)
	assert.Equal(t, []string{role.ID}, e.Roles)

	m, err := f.text.SendText(ctx, "look")
	require.NoError(t, err)
	require.NoError(t, m.React(ctx, "a:parrot:"+e.ID))
	assert.True(t, m.Reactions.Has(e.ID))

	require.NoError(t, e.Delete(ctx, ""))
	assert.True(t, e.Deleted())
	assert.False(t, f.g.Emojis.Has(e.ID))

	_, err = e.Edit(ctx, EmojiEdit{Name: mo.Some("ghost")})
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownEmoji))
}

func Test_Emoji_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name   string
		params EmojiParams
		code   int
	}{
		{name: "short name", params: EmojiParams{Name: "x", Image: pngImage}, code: apierr.CodeInvalidFormBody},
		{name: "bad characters", params: EmojiParams{Name: "no spaces", Image: pngImage}, code: apierr.CodeInvalidFormBody},
		{name: "not a data uri", params: EmojiParams{Name: "ok", Image: "https://x/y.png"}, code: apierr.CodeInvalidFormBody},
		{name: "unknown role", params: EmojiParams{Name: "ok", Image: pngImage, Roles: []string{"404"}}, code: apierr.CodeUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.g.CreateEmoji(context.Background(), tt.params)
			assert.True(t, apierr.HasCode(err, tt.code), "got %v", err)
		})
	}
	assert.Equal(t, 0, f.g.Emojis.Len())
}

func Test_Emoji_LimitPerKind(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < maxEmojis; i++ {
		_, err := f.g.CreateEmoji(ctx, EmojiParams{Name: fmt.Sprintf("static_%d", i), Image: pngImage})
		require.NoError(t, err)
	}
	_, err := f.g.CreateEmoji(ctx, EmojiParams{Name: "one_more", Image: pngImage})
	assert.True(t, apierr.HasCode(err, apierr.CodeMaxEmojis))

	_, err = f.g.CreateEmoji(ctx, EmojiParams{Name: "animated", Image: "data:image/gif;base64,R0lGOD"})
	require.NoError(t, err)
}

// ---------------------------------------------------------------------------
// Client user
// ---------------------------------------------------------------------------

func Test_EditProfile(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)
	ctx := context.Background()

	var updates []*UserUpdate
	On(c, func(_ *Client, ev *UserUpdate) { updates = append(updates, ev) })

	u, err := c.EditProfile(ctx, ProfileEdit{Username: mo.Some("renamed")})
	require.NoError(t, err)
	assert.Same(t, c.User, u)
	assert.Equal(t, "renamed", c.User.Username)
	require.Len(t, updates, 1)

	_, err = c.EditProfile(ctx, ProfileEdit{Username: mo.Some("renamed")})
	require.NoError(t, err)
	assert.Len(t, updates, 1)

	_, err = c.EditProfile(ctx, ProfileEdit{Username: mo.Some("x")})
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody))
}

func Test_SetPresence(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	acts := []*discordgo.Activity{{Name: "tests", Type: discordgo.ActivityTypeGame}}
	require.NoError(t, f.c.SetPresence(ctx, discordgo.StatusInvisible, acts))

	p, ok := f.g.Presences.Get(f.c.User.ID)
	require.True(t, ok)
	assert.Equal(t, discordgo.StatusOffline, p.Status)
	require.Len(t, p.Activities, 1)

	sent := f.c.Gateway().Sent()
	require.NotEmpty(t, sent)
	assert.Equal(t, OpPresenceUpdate, sent[len(sent)-1].Op)

	err := f.c.SetPresence(ctx, discordgo.Status("busy"), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func Test_FetchUser(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)
	ctx := context.Background()

	me, err := c.FetchUser(ctx, "@me")
	require.NoError(t, err)
	assert.Same(t, c.User, me)

	_, err = c.FetchUser(ctx, "404")
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownUser))
}

func Test_FetchVoiceRegions(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)

	regions, err := c.FetchVoiceRegions(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, regions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.FetchVoiceRegions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
