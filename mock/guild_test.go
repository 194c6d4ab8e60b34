package mock

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/auditlog"
	"github.com/jamesprial/discordmock/permissions"
)

func lastAudit(t *testing.T, g *Guild) auditlog.Entry {
	t.Helper()
	entries, err := g.FetchAuditLogs(context.Background(), auditlog.Query{Limit: mo.Some(1)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

// ---------------------------------------------------------------------------
// Roles
// ---------------------------------------------------------------------------

func Test_CreateRole_BottomOfHierarchy(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.g.CreateRole(ctx, RoleCreate{Name: "a"})
	require.NoError(t, err)
	b, err := f.g.CreateRole(ctx, RoleCreate{Name: "b"})
	require.NoError(t, err)

	assert.Equal(t, 2, a.Position)
	assert.Equal(t, 1, b.Position)
	assert.Equal(t, permissions.DefaultEveryone, a.Permissions)

	sorted := f.g.SortedRoles()
	require.Len(t, sorted, 3)
	assert.Same(t, a, sorted[0])
	assert.Same(t, b, sorted[1])
	assert.True(t, sorted[2].IsEveryone())

	e := lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionRoleCreate, e.ActionType)
	assert.Equal(t, b.ID, e.TargetID)
	assert.Equal(t, f.c.User.ID, e.UserID)
}

func Test_SetRolePositions_Reorders(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.g.CreateRole(ctx, RoleCreate{Name: "a"})
	require.NoError(t, err)
	b, err := f.g.CreateRole(ctx, RoleCreate{Name: "b"})
	require.NoError(t, err)

	sorted, err := f.g.SetRolePositions(ctx, []RolePosition{{ID: b.ID, Position: 2}})
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Same(t, b, sorted[0])
	assert.Same(t, a, sorted[1])
	assert.Equal(t, 1, a.Position)

	_, err = f.g.SetRolePositions(ctx, []RolePosition{{ID: f.g.ID, Position: 1}})
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidRole))
}

func Test_DeleteRole_CascadesAndAudits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	m := f.join(t, "alice")

	role, err := f.g.CreateRole(ctx, RoleCreate{Name: "doomed"})
	require.NoError(t, err)
	_, err = m.AddRole(ctx, role.ID, "")
	require.NoError(t, err)
	require.True(t, m.HasRole(role.ID))
	require.NoError(t, f.text.OverwritePermissions(ctx, role.ID, discordgo.PermissionOverwriteTypeRole, 0, permissions.SendMessages, ""))
	require.True(t, f.text.PermissionOverwrites.Has(role.ID))

	require.NoError(t, role.Delete(ctx, "cleanup"))

	assert.True(t, role.Deleted())
	assert.False(t, f.g.Roles.Has(role.ID))
	assert.False(t, m.HasRole(role.ID))
	assert.False(t, f.text.PermissionOverwrites.Has(role.ID))

	e := lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionRoleDelete, e.ActionType)
	assert.Equal(t, role.ID, e.TargetID)
	assert.Equal(t, "cleanup", e.Reason)

	err = role.Delete(ctx, "")
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownRole))
}

func Test_DeleteRole_Everyone_Rejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.g.Everyone().Delete(context.Background(), "")
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidRole))
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	assert.NotNil(t, f.g.Everyone())
}

// ---------------------------------------------------------------------------
// Permissions and hierarchy
// ---------------------------------------------------------------------------

// grant gives the client user a role with perm at position 1 of g.
func grant(t *testing.T, g *Guild, perm int64) *Role {
	t.Helper()
	c := g.Client()
	res, ok := c.Dispatch(Packet{Type: EventGuildRoleCreate, Data: &RolePayload{
		GuildID: g.ID,
		Role:    &discordgo.Role{ID: c.NewID(), Name: "granted", Permissions: perm, Position: 1},
	}})
	require.True(t, ok)
	me, ok := g.Me()
	require.True(t, ok)
	_, ok = c.Dispatch(Packet{Type: EventGuildMemberUpdate, Data: &discordgo.Member{
		GuildID: g.ID,
		User:    c.User.Data(),
		Roles:   append(me.Member.Roles, res.Role.ID),
	}})
	require.True(t, ok)
	return res.Role
}

func Test_Permissions_Denied_LeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)
	g, owner := foreignGuild(t, c)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "create role",
			call: func() error {
				_, err := g.CreateRole(ctx, RoleCreate{Name: "nope"})
				return err
			},
		},
		{
			name: "create channel",
			call: func() error {
				_, err := g.CreateChannel(ctx, ChannelParams{Name: "nope", Type: discordgo.ChannelTypeGuildText})
				return err
			},
		},
		{
			name: "edit guild",
			call: func() error {
				_, err := g.Edit(ctx, GuildEdit{Name: mo.Some("renamed")})
				return err
			},
		},
		{
			name: "ban",
			call: func() error {
				return g.Ban(ctx, owner.ID, BanOptions{})
			},
		},
		{
			name: "audit log",
			call: func() error {
				_, err := g.FetchAuditLogs(ctx, auditlog.Query{})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))
			assert.True(t, apierr.HasCode(err, apierr.CodeMissingPermissions))
		})
	}

	assert.Equal(t, 1, g.Roles.Len())
	assert.Equal(t, 1, g.Channels.Len())
	assert.Equal(t, "foreign", g.Name)
	assert.Equal(t, 0, g.Bans.Len())
	assert.Equal(t, 0, g.AuditLog.Len())
}

func Test_Permissions_Hierarchy(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)
	g, owner := foreignGuild(t, c)
	ctx := context.Background()

	mine := grant(t, g, permissions.ManageRoles|permissions.KickMembers)
	high, ok := c.Dispatch(Packet{Type: EventGuildRoleCreate, Data: &RolePayload{
		GuildID: g.ID,
		Role:    &discordgo.Role{ID: c.NewID(), Name: "high", Position: 2},
	}})
	require.True(t, ok)
	require.Greater(t, high.Role.Position, mine.Position)

	_, err := high.Role.Edit(ctx, RoleEdit{Name: mo.Some("lowered")})
	assert.True(t, apierr.HasCode(err, apierr.CodeMissingPermissions))
	assert.Equal(t, "high", high.Role.Name)

	_, err = g.CreateRole(ctx, RoleCreate{Name: "top", Position: mo.Some(high.Role.Position)})
	assert.True(t, apierr.HasCode(err, apierr.CodeMissingPermissions))

	_, err = g.CreateRole(ctx, RoleCreate{Name: "admin", Permissions: mo.Some(permissions.Administrator)})
	assert.True(t, apierr.HasCode(err, apierr.CodeMissingPermissions))

	below, err := g.CreateRole(ctx, RoleCreate{Name: "below"})
	require.NoError(t, err)
	assert.Less(t, below.Position, mine.Position)

	ownerMember, ok := g.OwnerMember()
	require.True(t, ok)
	err = ownerMember.Kick(ctx, "")
	assert.True(t, apierr.HasCode(err, apierr.CodeMissingPermissions))
	assert.True(t, g.Members.Has(owner.ID))
}

func Test_Permissions_NotAMember_IsMissingAccess(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)
	g, _ := foreignGuild(t, c)

	_, ok := c.Dispatch(Packet{Type: EventGuildMemberRemove, Data: &MemberRemovePayload{GuildID: g.ID, User: c.User.Data()}})
	require.True(t, ok)

	_, err := g.CreateRole(context.Background(), RoleCreate{})
	assert.True(t, apierr.HasCode(err, apierr.CodeMissingAccess))
}

// ---------------------------------------------------------------------------
// Guild settings
// ---------------------------------------------------------------------------

func Test_GuildEdit_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.g.Edit(ctx, GuildEdit{AfkTimeout: mo.Some(61)})
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody))

	_, err = f.g.Edit(ctx, GuildEdit{AfkChannelID: mo.Some(f.text.ID)})
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody))

	g, err := f.g.Edit(ctx, GuildEdit{Name: mo.Some("renamed"), AfkChannelID: mo.Some(f.voice.ID), AfkTimeout: mo.Some(60)})
	require.NoError(t, err)
	assert.Equal(t, "renamed", g.Name)
	assert.Equal(t, f.voice.ID, g.AfkChannelID)

	e := lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionGuildUpdate, e.ActionType)
}

func Test_GuildLeave_OwnerRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.g.Leave(context.Background())
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidGuild))
	_, ok := f.c.Guild(f.g.ID)
	assert.True(t, ok)
}

func Test_GuildDelete_MarksEverythingDeleted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.text.SendText(ctx, "bye")
	require.NoError(t, err)
	require.NoError(t, f.g.Delete(ctx))

	assert.True(t, f.g.Deleted())
	assert.True(t, f.text.Deleted())
	_, ok := f.c.Guild(f.g.ID)
	assert.False(t, ok)

	_, err = msg.Edit(ctx, MessageEdit{Content: mo.Some("again")})
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	_, err = f.g.CreateRole(ctx, RoleCreate{})
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownGuild))
}

// ---------------------------------------------------------------------------
// Bans, kicks and prune
// ---------------------------------------------------------------------------

func Test_Ban_RemovesMemberAndPurgesMessages(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	spammer := f.join(t, "spammer")
	bystander := f.join(t, "bystander")
	sim := f.c.Simulate()

	for _, content := range []string{"buy", "now"} {
		_, err := sim.SendMessage(ctx, f.text.TextState, spammer.User.ID, &discordgo.MessageSend{Content: content})
		require.NoError(t, err)
	}
	kept, err := sim.SendMessage(ctx, f.text.TextState, bystander.User.ID, &discordgo.MessageSend{Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, f.g.Ban(ctx, spammer.User.ID, BanOptions{DeleteMessageDays: 1, Reason: "spam"}))
	f.c.Settle()

	assert.True(t, spammer.Deleted())
	assert.True(t, f.g.Bans.Has(spammer.User.ID))
	assert.Equal(t, 1, f.text.Messages.Len())
	assert.True(t, f.text.Messages.Has(kept.ID))

	ban, err := f.g.FetchBan(ctx, spammer.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "spam", ban.Reason)

	e := lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionMemberBanAdd, e.ActionType)
	assert.Equal(t, "1", e.Options["delete_member_days"])

	_, err = sim.Join(ctx, f.g, spammer.User.Data())
	assert.True(t, apierr.HasCode(err, apierr.CodeUserBanned))

	require.NoError(t, f.g.Unban(ctx, spammer.User.ID, ""))
	_, err = sim.Join(ctx, f.g, spammer.User.Data())
	require.NoError(t, err)
}

func Test_Ban_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	m := f.join(t, "target")

	err := f.g.Ban(ctx, m.User.ID, BanOptions{DeleteMessageDays: 8})
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody))

	err = f.g.Ban(ctx, "not-a-snowflake", BanOptions{})
	assert.True(t, apierr.HasCode(err, apierr.CodeInvalidFormBody))

	err = f.g.Ban(ctx, f.c.User.ID, BanOptions{})
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))

	_, err = f.g.FetchBan(ctx, m.User.ID)
	assert.True(t, apierr.HasCode(err, apierr.CodeUnknownBan))
}

func Test_Ban_UncachedUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	id := f.c.NewID()

	require.NoError(t, f.g.Ban(ctx, id, BanOptions{Reason: "raid"}))

	ban, err := f.g.FetchBan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, ban.User.ID)
	assert.Equal(t, "raid", ban.Reason)
	assert.True(t, f.c.Users.Has(id))
	assert.Equal(t, 1, f.g.Members.Len())
}

func Test_Kick_AuditsAndRemoves(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	m := f.join(t, "kicked")

	require.NoError(t, m.Kick(context.Background(), "rude"))
	assert.False(t, f.g.Members.Has(m.User.ID))

	e := lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionMemberKick, e.ActionType)
	assert.Equal(t, m.User.ID, e.TargetID)
	assert.Equal(t, "rude", e.Reason)
}

func Test_Prune_DryRunAndReal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.join(t, "idle1")
	f.join(t, "idle2")
	busy := f.join(t, "busy")
	role, err := f.g.CreateRole(ctx, RoleCreate{Name: "keep"})
	require.NoError(t, err)
	_, err = busy.AddRole(ctx, role.ID, "")
	require.NoError(t, err)

	f.clock.Advance(8 * 24 * time.Hour)

	n, err := f.g.Prune(ctx, PruneOptions{Days: 7, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 4, f.g.Members.Len())

	n, err = f.g.Prune(ctx, PruneOptions{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.g.Members.Len())

	e := lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionMemberPrune, e.ActionType)
	assert.Equal(t, "2", e.Options["members_removed"])

	before := f.g.AuditLog.Len()
	n, err = f.g.Prune(ctx, PruneOptions{Days: 7})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, before, f.g.AuditLog.Len())
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

func Test_MemberEdit_RolesAudit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	m := f.join(t, "alice")
	role, err := f.g.CreateRole(ctx, RoleCreate{Name: "helper"})
	require.NoError(t, err)

	_, err = m.Edit(ctx, MemberEdit{Nick: mo.Some("ally"), Roles: mo.Some([]string{role.ID})})
	require.NoError(t, err)
	assert.Equal(t, "ally", m.DisplayName())
	assert.True(t, m.HasRole(role.ID))

	e := lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionMemberRoleUpdate, e.ActionType)
	require.Len(t, e.Changes, 1)
	assert.Equal(t, "$add", e.Changes[0].Key)

	_, err = m.SetNickname(ctx, "alicia", "")
	require.NoError(t, err)
	e = lastAudit(t, f.g)
	assert.Equal(t, discordgo.AuditLogActionMemberUpdate, e.ActionType)
}

func Test_MemberEdit_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	m := f.join(t, "bob")

	tests := []struct {
		name string
		edit MemberEdit
		code int
	}{
		{name: "nick too long", edit: MemberEdit{Nick: mo.Some("0123456789012345678901234567890123")}, code: apierr.CodeInvalidFormBody},
		{name: "unknown role", edit: MemberEdit{Roles: mo.Some([]string{"404"})}, code: apierr.CodeUnknownRole},
		{name: "everyone role", edit: MemberEdit{Roles: mo.Some([]string{f.g.ID})}, code: apierr.CodeInvalidRole},
		{name: "mute outside voice", edit: MemberEdit{Mute: mo.Some(true)}, code: apierr.CodeTargetNotInVoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Edit(ctx, tt.edit)
			assert.True(t, apierr.HasCode(err, tt.code), "got %v", err)
		})
	}
	assert.Empty(t, m.Nick)
	assert.Empty(t, m.Member.Roles)
}

func Test_MemberVoice_MoveAndMute(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	m := f.join(t, "speaker")

	other, err := f.g.CreateChannel(ctx, ChannelParams{Name: "Stage", Type: discordgo.ChannelTypeGuildVoice})
	require.NoError(t, err)

	vs, err := f.c.Simulate().JoinVoice(ctx, f.voice, m.User.ID)
	require.NoError(t, err)
	assert.Equal(t, f.voice.ID, vs.ChannelID)
	assert.Len(t, f.voice.Members(), 1)

	_, err = m.Edit(ctx, MemberEdit{Mute: mo.Some(true), ChannelID: mo.Some(other.Base().ID)})
	require.NoError(t, err)
	current, ok := m.VoiceState()
	require.True(t, ok)
	assert.Equal(t, other.Base().ID, current.ChannelID)
	assert.True(t, current.Mute)
	assert.True(t, m.Mute)

	require.NoError(t, f.c.Simulate().LeaveVoice(ctx, f.g, m.User.ID))
	_, ok = m.VoiceState()
	assert.False(t, ok)
}
