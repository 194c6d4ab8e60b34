package mock

import (
	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/permissions"
)

// permissionsOf computes m's permissions in ch, or at guild level when ch is
// nil or not a guild channel.
func (g *Guild) permissionsOf(m *Member, ch Channel) int64 {
	in := permissions.Input{
		GuildID: g.ID,
		OwnerID: g.OwnerID,
		UserID:  m.User.ID,
		Roles:   make(map[string]int64, len(m.Member.Roles)),
	}
	if everyone := g.Everyone(); everyone != nil {
		in.Everyone = everyone.Permissions
	}
	for _, id := range m.Member.Roles {
		if r, ok := g.Roles.Get(id); ok {
			in.Roles[id] = r.Permissions
		}
	}
	if ch != nil {
		if gc, ok := AsGuildChannel(ch); ok {
			in.Overwrites = gc.PermissionOverwrites.Values()
		}
	}
	return permissions.Compute(in)
}

// require checks that actor holds perm in g, and in ch when ch is not nil.
// Without a guild every action is allowed. A non-member, or a member who
// cannot see ch, gets Missing Access.
func (c *Client) require(actor *User, g *Guild, ch Channel, perm int64, path string, method apierr.Method) error {
	if g == nil {
		return nil
	}
	m, ok := g.Members.Get(actor.ID)
	if !ok {
		return apierr.MissingAccess(path, method)
	}
	set := g.permissionsOf(m, ch)
	if ch != nil && !permissions.Has(set, permissions.ViewChannel) {
		return apierr.MissingAccess(path, method)
	}
	if !permissions.Has(set, perm) {
		c.logger.Debug("permission denied",
			"user", actor.ID,
			"guild", g.ID,
			"missing", permissions.Names(permissions.Missing(set, perm)),
			"path", path,
		)
		return apierr.MissingPermissions(path, method)
	}
	return nil
}

// requireGrantable rejects granting bits the actor does not hold itself.
func (c *Client) requireGrantable(actor *User, g *Guild, ch Channel, perm int64, path string, method apierr.Method) error {
	if perm == 0 || actor.ID == g.OwnerID {
		return nil
	}
	m, ok := g.Members.Get(actor.ID)
	if !ok {
		return apierr.MissingAccess(path, method)
	}
	if permissions.Missing(g.permissionsOf(m, ch), perm) != 0 {
		return apierr.MissingPermissions(path, method)
	}
	return nil
}

// requireAboveRole checks that actor's highest role strictly outranks role.
// The owner is never blocked.
func (c *Client) requireAboveRole(actor *User, g *Guild, role *Role, path string, method apierr.Method) error {
	if actor.ID == g.OwnerID {
		return nil
	}
	m, ok := g.Members.Get(actor.ID)
	if !ok {
		return apierr.MissingAccess(path, method)
	}
	if !permissions.Outranks(m.HighestRole().rank(), role.rank()) {
		return apierr.MissingPermissions(path, method)
	}
	return nil
}

// requireAboveMember checks that actor outranks target's highest role.
// Nobody outranks the owner.
func (c *Client) requireAboveMember(actor *User, g *Guild, target *Member, path string, method apierr.Method) error {
	if target.User.ID == g.OwnerID && actor.ID != g.OwnerID {
		return apierr.MissingPermissions(path, method)
	}
	return c.requireAboveRole(actor, g, target.HighestRole(), path, method)
}
