package defaults

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

func Test_EveryoneRole(t *testing.T) {
	t.Parallel()

	var role discordgo.Role
	require.NoError(t, record.Decode(EveryoneRole("42"), &role))
	assert.Equal(t, "42", role.ID)
	assert.Equal(t, "@everyone", role.Name)
	assert.Equal(t, 0, role.Position)
	assert.Equal(t, permissions.DefaultEveryone, role.Permissions)
}

func Test_Channel_PerType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		typ      discordgo.ChannelType
		wantName string
		wantRate int
	}{
		{name: "text", typ: discordgo.ChannelTypeGuildText, wantName: "text-channel"},
		{name: "voice", typ: discordgo.ChannelTypeGuildVoice, wantName: "voice-channel", wantRate: 64000},
		{name: "category", typ: discordgo.ChannelTypeGuildCategory, wantName: "category"},
		{name: "store", typ: ChannelTypeStore, wantName: "text-channel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var ch discordgo.Channel
			require.NoError(t, record.Decode(Channel("1", tt.typ), &ch))
			assert.Equal(t, tt.typ, ch.Type)
			assert.Equal(t, tt.wantName, ch.Name)
			assert.Equal(t, tt.wantRate, ch.Bitrate)
		})
	}
}

func Test_Message_MergesPartial(t *testing.T) {
	t.Parallel()

	at := time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC)
	author := &discordgo.User{ID: "u", Username: "bob"}
	merged := record.Merge(Message("m", "c", author, at), record.Record{"content": "hi"})

	var msg discordgo.Message
	require.NoError(t, record.Decode(merged, &msg))
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "c", msg.ChannelID)
	assert.True(t, msg.Timestamp.Equal(at))
	require.NotNil(t, msg.Author)
	assert.Equal(t, "bob", msg.Author.Username)
}

func Test_VoiceRegions_OneOptimal(t *testing.T) {
	t.Parallel()

	optimal := 0
	for _, r := range VoiceRegions() {
		if r.Optimal {
			optimal++
		}
	}
	assert.Equal(t, 1, optimal)
}
