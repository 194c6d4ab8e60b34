package resolve

import (
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type listerFunc func(guildID string) ([]*discordgo.Channel, error)

func (f listerFunc) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f(guildID)
}

func seedChannels() []*discordgo.Channel {
	return []*discordgo.Channel{
		{ID: "100", GuildID: "g1", Name: "Text Channels", Type: discordgo.ChannelTypeGuildCategory},
		{ID: "111", GuildID: "g1", Name: "general", Type: discordgo.ChannelTypeGuildText},
		{ID: "222", GuildID: "g1", Name: "random", Type: discordgo.ChannelTypeGuildText},
		{ID: "333", GuildID: "g1", Name: "lounge", Type: discordgo.ChannelTypeGuildVoice},
		{ID: "444", GuildID: "g1", Name: "news", Type: discordgo.ChannelTypeGuildNews},
	}
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r := New(listerFunc(func(guildID string) ([]*discordgo.Channel, error) {
		if guildID != "g1" {
			t.Errorf("GuildChannels(%q), want g1", guildID)
		}
		return seedChannels(), nil
	}), "g1")
	if err := r.Refresh(); err != nil {
		t.Fatalf("Refresh() unexpected error: %v", err)
	}
	return r
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func Test_Refresh_IndexesNamedChannels(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	tests := []struct {
		name   string
		lookup string
		wantID string
		wantOK bool
	}{
		{name: "text", lookup: "general", wantID: "111", wantOK: true},
		{name: "hash prefix", lookup: "#random", wantID: "222", wantOK: true},
		{name: "voice", lookup: "lounge", wantID: "333", wantOK: true},
		{name: "news", lookup: "news", wantID: "444", wantOK: true},
		{name: "category skipped", lookup: "Text Channels"},
		{name: "unknown", lookup: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, err := r.ChannelID(tt.lookup)
			if !tt.wantOK {
				if !errors.Is(err, ErrUnknownChannel) {
					t.Errorf("ChannelID(%q) error = %v, want ErrUnknownChannel", tt.lookup, err)
				}
				return
			}
			if err != nil || id != tt.wantID {
				t.Errorf("ChannelID(%q) = %q, %v; want %q", tt.lookup, id, err, tt.wantID)
			}
		})
	}
}

func Test_Refresh_SourceError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	r := New(listerFunc(func(string) ([]*discordgo.Channel, error) { return nil, boom }), "g1")
	if err := r.Refresh(); !errors.Is(err, boom) {
		t.Errorf("Refresh() error = %v, want wrapped boom", err)
	}
}

func Test_ChannelName_UnknownReturnsID(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)
	if got := r.ChannelName("111"); got != "general" {
		t.Errorf("ChannelName(111) = %q, want general", got)
	}
	if got := r.ChannelName("999"); got != "999" {
		t.Errorf("ChannelName(999) = %q, want the ID back", got)
	}
}

// ---------------------------------------------------------------------------
// Put / Remove
// ---------------------------------------------------------------------------

func Test_Put_RenameMovesName(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	r.Put(&discordgo.Channel{ID: "111", GuildID: "g1", Name: "lobby", Type: discordgo.ChannelTypeGuildText})

	if _, err := r.ChannelID("general"); err == nil {
		t.Error("old name still resolves after rename")
	}
	if id, _ := r.ChannelID("lobby"); id != "111" {
		t.Errorf("ChannelID(lobby) = %q, want 111", id)
	}
}

func Test_Put_IgnoresOtherGuildsAndCategories(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	r.Put(&discordgo.Channel{ID: "555", GuildID: "g2", Name: "elsewhere"})
	r.Put(&discordgo.Channel{ID: "666", GuildID: "g1", Name: "Voice", Type: discordgo.ChannelTypeGuildCategory})
	r.Put(nil)

	for _, name := range []string{"elsewhere", "Voice"} {
		if _, err := r.ChannelID(name); err == nil {
			t.Errorf("ChannelID(%q) resolved, want it ignored", name)
		}
	}
}

func Test_Remove_DuplicateNameFallsBack(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)
	r.Put(&discordgo.Channel{ID: "777", GuildID: "g1", Name: "general", Type: discordgo.ChannelTypeGuildText})

	if id, _ := r.ChannelID("general"); id != "111" {
		t.Fatalf("ChannelID(general) = %q, want the first channel 111", id)
	}
	r.Remove("111")
	if id, _ := r.ChannelID("general"); id != "777" {
		t.Errorf("ChannelID(general) after remove = %q, want 777", id)
	}
	r.Remove("777")
	if _, err := r.ChannelID("general"); err == nil {
		t.Error("ChannelID(general) resolved after both channels were removed")
	}
	r.Remove("does-not-exist")
}

func Test_Resolver_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); _, _ = r.ChannelID("general") }()
		go func() { defer wg.Done(); _ = r.ChannelName("222") }()
		go func() {
			defer wg.Done()
			r.Put(&discordgo.Channel{ID: "888", GuildID: "g1", Name: "churn"})
			r.Remove("888")
		}()
	}
	wg.Wait()
}

// ---------------------------------------------------------------------------
// ResolveChannelParam
// ---------------------------------------------------------------------------

func Test_ResolveChannelParam_Cases(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{name: "all digits is an ID", input: "123456789012345678", wantID: "123456789012345678"},
		{name: "name", input: "general", wantID: "111"},
		{name: "hash name", input: "#random", wantID: "222"},
		{name: "empty", input: "", wantErr: true},
		{name: "bare hash", input: "#", wantErr: true},
		{name: "unknown name", input: "dev-chat", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, err := ResolveChannelParam(r, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveChannelParam(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if id != tt.wantID {
				t.Errorf("ResolveChannelParam(%q) = %q, want %q", tt.input, id, tt.wantID)
			}
		})
	}
}
