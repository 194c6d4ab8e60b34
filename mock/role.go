package mock

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/permissions"
)

// Role is a cached guild role.
type Role struct {
	discordgo.Role

	guild   *Guild
	deleted bool
}

func (r *Role) patch(d *discordgo.Role) { r.Role = *d }

func (r *Role) clone() *Role {
	cp := *r
	return &cp
}

// Guild returns the owning guild.
func (r *Role) Guild() *Guild { return r.guild }

// Deleted reports whether the role was deleted.
func (r *Role) Deleted() bool { return r.deleted }

// Data returns a snapshot of the role.
func (r *Role) Data() *discordgo.Role {
	d := r.Role
	return &d
}

// IsEveryone reports whether r is the guild's @everyone role.
func (r *Role) IsEveryone() bool { return r.ID == r.guild.ID }

// Members returns the cached members holding the role.
func (r *Role) Members() []*Member {
	if r.IsEveryone() {
		return r.guild.Members.Values()
	}
	return r.guild.Members.Filter(func(m *Member) bool { return m.HasRole(r.ID) })
}

func (r *Role) rank() permissions.Rank {
	return permissions.Rank{ID: r.ID, Position: r.Position}
}
