package mock

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Member is a cached guild member. User is the shared client-wide user.
type Member struct {
	discordgo.Member
	User *User

	guild   *Guild
	deleted bool
}

func (g *Guild) buildMember(d *discordgo.Member) *Member {
	m := &Member{guild: g}
	m.patch(d)
	return m
}

func (m *Member) patch(d *discordgo.Member) {
	m.Member = *d
	m.Member.GuildID = m.guild.ID
	m.Member.Roles = slices.Clone(d.Roles)
	if m.Member.Roles == nil {
		m.Member.Roles = []string{}
	}
	if d.User != nil {
		m.User = m.guild.client.ensureUser(d.User)
	}
	m.Member.User = nil
}

func (m *Member) clone() *Member {
	cp := *m
	cp.Member.Roles = slices.Clone(m.Member.Roles)
	return &cp
}

// Guild returns the owning guild.
func (m *Member) Guild() *Guild { return m.guild }

// Deleted reports whether the member left or was removed.
func (m *Member) Deleted() bool { return m.deleted }

// Data returns a snapshot of the member.
func (m *Member) Data() *discordgo.Member {
	d := m.Member
	d.Roles = slices.Clone(m.Member.Roles)
	d.User = dataOf(m.User)
	return &d
}

// DisplayName is the nickname, or the username when no nickname is set.
func (m *Member) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.User.Username
}

// HasRole reports whether the member holds roleID. Every member holds
// @everyone.
func (m *Member) HasRole(roleID string) bool {
	return roleID == m.guild.ID || slices.Contains(m.Member.Roles, roleID)
}

// RoleList returns the member's roles including @everyone, from the top of
// the hierarchy down.
func (m *Member) RoleList() []*Role {
	return slices.DeleteFunc(m.guild.SortedRoles(), func(r *Role) bool { return !m.HasRole(r.ID) })
}

// HighestRole returns the member's top role, @everyone when it has none.
func (m *Member) HighestRole() *Role {
	roles := m.RoleList()
	if len(roles) == 0 {
		return m.guild.Everyone()
	}
	return roles[0]
}

// EffectivePermissions returns the member's permissions in ch, or at guild
// level when ch is nil.
func (m *Member) EffectivePermissions(ch Channel) int64 {
	return m.guild.permissionsOf(m, ch)
}

// VoiceState returns the member's voice state when connected.
func (m *Member) VoiceState() (*VoiceState, bool) {
	return m.guild.VoiceStates.Get(m.User.ID)
}

// Presence returns the member's cached presence.
func (m *Member) Presence() (*Presence, bool) {
	return m.guild.Presences.Get(m.User.ID)
}
