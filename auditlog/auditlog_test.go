package auditlog

import (
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/clock"
	"github.com/jamesprial/discordmock/internal/snowflakes"
)

func newTestLog() (*Log, *clock.Fake) {
	fc := clock.NewFake(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	return New("1", snowflakes.New(fc), fc), fc
}

func Test_Append_AssignsIDAndTime(t *testing.T) {
	t.Parallel()

	l, fc := newTestLog()
	fc.Advance(time.Hour)

	e := l.Append(Entry{ActionType: discordgo.AuditLogActionRoleCreate, UserID: "u1", TargetID: "r1"})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, fc.Now(), e.CreatedAt)
	assert.Equal(t, 1, l.Len())
}

func Test_Query_NewestFirstAndBefore(t *testing.T) {
	t.Parallel()

	l, _ := newTestLog()
	e1 := l.Append(Entry{ActionType: discordgo.AuditLogActionChannelCreate, UserID: "u1"})
	e2 := l.Append(Entry{ActionType: discordgo.AuditLogActionChannelDelete, UserID: "u1"})

	all, err := l.Query(Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, e2.ID, all[0].ID)
	assert.Equal(t, e1.ID, all[1].ID)

	before, err := l.Query(Query{Before: e2.ID})
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, e1.ID, before[0].ID)
}

func Test_Query_Filters(t *testing.T) {
	t.Parallel()

	l, _ := newTestLog()
	l.Append(Entry{ActionType: discordgo.AuditLogActionRoleCreate, UserID: "alice"})
	l.Append(Entry{ActionType: discordgo.AuditLogActionRoleDelete, UserID: "bob"})
	l.Append(Entry{ActionType: discordgo.AuditLogActionRoleDelete, UserID: "alice"})
	l.Append(Entry{ActionType: discordgo.AuditLogActionMemberKick, UserID: "alice"})

	byUser, err := l.Query(Query{UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, byUser, 3)

	byAction, err := l.Query(Query{UserID: "alice", ActionType: mo.Some(discordgo.AuditLogActionRoleDelete)})
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, "alice", byAction[0].UserID)

	limited, err := l.Query(Query{Limit: mo.Some(2)})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, discordgo.AuditLogActionMemberKick, limited[0].ActionType)
}

func Test_Query_LimitValidation(t *testing.T) {
	t.Parallel()

	l, _ := newTestLog()
	l.Append(Entry{ActionType: discordgo.AuditLogActionGuildUpdate})

	tests := []struct {
		name     string
		limit    int
		wantErr  bool
		wantCode string
	}{
		{name: "zero", limit: 0, wantErr: true, wantCode: "NUMBER_TYPE_MIN"},
		{name: "negative", limit: -5, wantErr: true, wantCode: "NUMBER_TYPE_MIN"},
		{name: "lower bound", limit: 1},
		{name: "upper bound", limit: 100},
		{name: "over", limit: 101, wantErr: true, wantCode: "NUMBER_TYPE_MAX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := l.Query(Query{Limit: mo.Some(tt.limit)})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			apiErr, ok := apierr.As(err)
			require.True(t, ok, "want *apierr.Error, got %v", err)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, apierr.CodeInvalidFormBody, apiErr.Code)
			assert.Equal(t, apierr.MethodGet, apiErr.Method)
			assert.Equal(t, "/guilds/1/audit-logs", apiErr.Path)
			require.Contains(t, apiErr.Errors, "limit")
			assert.Equal(t, tt.wantCode, apiErr.Errors["limit"].Errors[0].Code)
		})
	}
}

func Test_Entries_AreImmutable(t *testing.T) {
	t.Parallel()

	l, _ := newTestLog()
	e := l.Append(Entry{
		ActionType: discordgo.AuditLogActionRoleUpdate,
		Changes:    []Change{{Key: "name", Old: "a", New: "b"}},
		Options:    map[string]string{"role_name": "b"},
	})
	e.Changes[0].New = "mutated"
	e.Options["role_name"] = "mutated"

	got, err := l.Query(Query{})
	require.NoError(t, err)
	assert.Equal(t, "b", got[0].Changes[0].New)
	assert.Equal(t, "b", got[0].Options["role_name"])
}

func Test_Entry_Data(t *testing.T) {
	t.Parallel()

	e := Entry{
		ID:         "9",
		ActionType: discordgo.AuditLogActionChannelUpdate,
		UserID:     "u",
		TargetID:   "c",
		Reason:     "tidy",
		Changes:    []Change{{Key: "name", Old: "a", New: "b"}},
		Options:    map[string]string{"count": "3"},
	}
	d := e.Data()
	require.NotNil(t, d.ActionType)
	assert.Equal(t, discordgo.AuditLogActionChannelUpdate, *d.ActionType)
	require.Len(t, d.Changes, 1)
	assert.Equal(t, discordgo.AuditLogChangeKey("name"), *d.Changes[0].Key)
	require.NotNil(t, d.Options)
	assert.Equal(t, "3", d.Options.Count)
}
