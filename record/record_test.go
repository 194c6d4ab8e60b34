package record

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Merge
// ---------------------------------------------------------------------------

func Test_Merge_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		defaults Record
		partial  Record
		want     Record
	}{
		{
			name:     "nested objects merge field by field",
			defaults: Record{"a": 1, "b": map[string]any{"c": 2, "d": 3}},
			partial:  Record{"b": map[string]any{"c": 5}},
			want:     Record{"a": 1, "b": map[string]any{"c": 5, "d": 3}},
		},
		{
			name:     "arrays are replaced wholesale",
			defaults: Record{"a": []any{1, 2}},
			partial:  Record{"a": []any{9}},
			want:     Record{"a": []any{9}},
		},
		{
			name:     "explicit nil overrides the default",
			defaults: Record{"topic": "general chat", "nsfw": false},
			partial:  Record{"topic": nil},
			want:     Record{"topic": nil, "nsfw": false},
		},
		{
			name:     "omitted keys fall back",
			defaults: Record{"name": "channel", "position": 0},
			partial:  Record{},
			want:     Record{"name": "channel", "position": 0},
		},
		{
			name:     "object replaces scalar default",
			defaults: Record{"x": 1},
			partial:  Record{"x": Record{"y": 2}},
			want:     Record{"x": map[string]any{"y": 2}},
		},
		{
			name:     "empty array clears list",
			defaults: Record{"roles": []any{"1", "2"}},
			partial:  Record{"roles": []any{}},
			want:     Record{"roles": []any{}},
		},
		{
			name:     "nil defaults",
			defaults: nil,
			partial:  Record{"id": "1"},
			want:     Record{"id": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Merge(tt.defaults, tt.partial))
		})
	}
}

func Test_Merge_DoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	nested := map[string]any{"c": 2}
	list := []any{1, 2}
	defaults := Record{"b": nested, "l": list}

	out := Merge(defaults, Record{})
	out["b"].(map[string]any)["c"] = 99
	out["l"].([]any)[0] = 99

	assert.Equal(t, 2, nested["c"])
	assert.Equal(t, 1, list[0])
}

// ---------------------------------------------------------------------------
// Encode / Decode
// ---------------------------------------------------------------------------

func Test_Decode_DiscordShapes(t *testing.T) {
	t.Parallel()

	joined := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)
	base := MustEncode(&discordgo.Member{
		GuildID:  "g1",
		JoinedAt: joined,
		Nick:     "nick",
		Roles:    []string{"r1", "r2"},
		User:     &discordgo.User{ID: "u1", Username: "alice"},
	})

	merged := Merge(base, Record{"nick": "renamed", "roles": []any{"r3"}})

	var m discordgo.Member
	require.NoError(t, Decode(merged, &m))
	assert.Equal(t, "renamed", m.Nick)
	assert.Equal(t, []string{"r3"}, m.Roles)
	assert.True(t, m.JoinedAt.Equal(joined))
	require.NotNil(t, m.User)
	assert.Equal(t, "alice", m.User.Username)
}

func Test_Decode_StringEncodedPermissions(t *testing.T) {
	t.Parallel()

	r := MustEncode(&discordgo.Role{ID: "1", Name: "mod", Permissions: discordgo.PermissionManageRoles})
	assert.IsType(t, "", r["permissions"], "permissions travel as a string on the wire")

	var role discordgo.Role
	require.NoError(t, Decode(r, &role))
	assert.Equal(t, int64(discordgo.PermissionManageRoles), role.Permissions)
}

func Test_Apply_PatchesOntoCurrent(t *testing.T) {
	t.Parallel()

	current := &discordgo.Channel{ID: "c1", Name: "old", Topic: "keep", Position: 3}
	var next discordgo.Channel
	merged, err := Apply(current, Record{"name": "new"}, &next)
	require.NoError(t, err)

	assert.Equal(t, "new", next.Name)
	assert.Equal(t, "keep", next.Topic)
	assert.Equal(t, 3, next.Position)
	assert.Equal(t, "new", merged["name"])
}

// ---------------------------------------------------------------------------
// Diff
// ---------------------------------------------------------------------------

func Test_Diff_ChangedKeysSorted(t *testing.T) {
	t.Parallel()

	before := Record{"name": "a", "color": 1.0, "hoist": false}
	after := Record{"name": "b", "color": 1.0, "hoist": true, "icon": "x"}

	got := Diff(before, after)
	require.Len(t, got, 3)
	assert.Equal(t, Change{Key: "hoist", Old: false, New: true}, got[0])
	assert.Equal(t, Change{Key: "icon", Old: nil, New: "x"}, got[1])
	assert.Equal(t, Change{Key: "name", Old: "a", New: "b"}, got[2])
}

func Test_Clone_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Clone(nil))
}
