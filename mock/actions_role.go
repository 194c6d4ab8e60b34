package mock

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/permissions"
	"github.com/jamesprial/discordmock/record"
)

const maxRoles = 250

var roleAuditKeys = []string{"name", "permissions", "color", "hoist", "mentionable"}

// RoleCreate is the body of a role creation.
type RoleCreate struct {
	Name        string
	Color       int
	Hoist       bool
	Mentionable bool
	// Permissions defaults to the @everyone permissions.
	Permissions mo.Option[int64]
	// Position defaults to 1, the bottom of the hierarchy.
	Position mo.Option[int]
	Reason   string
}

// CreateRole creates a role. Requires MANAGE_ROLES and holding every
// permission granted.
func (g *Guild) CreateRole(ctx context.Context, p RoleCreate) (*Role, error) {
	c := g.client
	return execValue(ctx, c, func() (*Role, error) {
		return c.createRole(c.User, g, p)
	})
}

func (c *Client) createRole(actor *User, g *Guild, p RoleCreate) (*Role, error) {
	path, method := routeGuildRoles(g.ID), apierr.MethodPost
	if err := g.check(path, method); err != nil {
		return nil, err
	}
	if err := c.require(actor, g, nil, permissions.ManageRoles, path, method); err != nil {
		return nil, err
	}
	if g.Roles.Len() >= maxRoles {
		return nil, apierr.BadRequest(apierr.CodeMaxRoles, "Maximum number of guild roles reached (250)", path, method)
	}
	name := p.Name
	if name == "" {
		name = "new role"
	}
	if err := checkLength(path, method, "name", name, 1, 100); err != nil {
		return nil, err
	}
	var base int64
	if everyone := g.Everyone(); everyone != nil {
		base = everyone.Permissions
	}
	perms := p.Permissions.OrElse(base)
	if err := c.requireGrantable(actor, g, nil, perms, path, method); err != nil {
		return nil, err
	}
	position := p.Position.OrElse(1)
	if p.Position.IsPresent() {
		if err := c.requireBelowActor(actor, g, position, path, method); err != nil {
			return nil, err
		}
	}

	d := &discordgo.Role{}
	if err := record.Decode(defaults.Role(c.ids.Next()), d); err != nil {
		return nil, err
	}
	d.Name = name
	d.Color = p.Color
	d.Hoist = p.Hoist
	d.Mentionable = p.Mentionable
	d.Permissions = perms
	d.Position = position

	res, _ := c.dispatch(EventGuildRoleCreate, &RolePayload{GuildID: g.ID, Role: d})
	g.audit(actor, discordgo.AuditLogActionRoleCreate, d.ID, p.Reason, creationChanges(res.Role.Data(), roleAuditKeys...), nil)
	return res.Role, nil
}

// RoleEdit is a partial role update.
type RoleEdit struct {
	Name        mo.Option[string]
	Color       mo.Option[int]
	Hoist       mo.Option[bool]
	Mentionable mo.Option[bool]
	Permissions mo.Option[int64]
	Position    mo.Option[int]
	Reason      string
}

// Edit updates the role. Requires MANAGE_ROLES and outranking the role.
func (r *Role) Edit(ctx context.Context, e RoleEdit) (*Role, error) {
	c := r.guild.client
	return execValue(ctx, c, func() (*Role, error) {
		return c.editRole(c.User, r, e)
	})
}

// SetPosition moves the role in the hierarchy.
func (r *Role) SetPosition(ctx context.Context, position int, reason string) (*Role, error) {
	return r.Edit(ctx, RoleEdit{Position: mo.Some(position), Reason: reason})
}

func (c *Client) editRole(actor *User, r *Role, e RoleEdit) (*Role, error) {
	g := r.guild
	path, method := routeGuildRole(g.ID, r.ID), apierr.MethodPatch
	if err := g.check(path, method); err != nil {
		return nil, err
	}
	if r.deleted {
		return nil, unknown(apierr.CodeUnknownRole, path, method)
	}
	if err := c.require(actor, g, nil, permissions.ManageRoles, path, method); err != nil {
		return nil, err
	}
	if err := c.requireAboveRole(actor, g, r, path, method); err != nil {
		return nil, err
	}

	partial := record.Record{}
	if name, ok := e.Name.Get(); ok {
		if err := checkLength(path, method, "name", name, 1, 100); err != nil {
			return nil, err
		}
		partial["name"] = name
	}
	if perms, ok := e.Permissions.Get(); ok {
		if err := c.requireGrantable(actor, g, nil, perms&^r.Permissions, path, method); err != nil {
			return nil, err
		}
		partial["permissions"] = strconv.FormatInt(perms, 10)
	}
	if position, ok := e.Position.Get(); ok {
		if r.IsEveryone() {
			return nil, apierr.BadRequest(apierr.CodeInvalidRole, "Invalid Role", path, method)
		}
		if err := c.requireBelowActor(actor, g, position, path, method); err != nil {
			return nil, err
		}
		partial["position"] = position
	}
	setOpt(partial, "color", e.Color)
	setOpt(partial, "hoist", e.Hoist)
	setOpt(partial, "mentionable", e.Mentionable)

	next, changes, err := applyPatch(r.Data(), partial)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return r, nil
	}
	c.dispatch(EventGuildRoleUpdate, &RolePayload{GuildID: g.ID, Role: next})
	g.audit(actor, discordgo.AuditLogActionRoleUpdate, r.ID, e.Reason, changes, nil)
	return r, nil
}

// Delete deletes the role, stripping it from every member and channel.
// @everyone and managed roles cannot be deleted.
func (r *Role) Delete(ctx context.Context, reason string) error {
	c := r.guild.client
	return c.exec(ctx, func() error {
		return c.deleteRole(c.User, r, reason)
	})
}

func (c *Client) deleteRole(actor *User, r *Role, reason string) error {
	g := r.guild
	path, method := routeGuildRole(g.ID, r.ID), apierr.MethodDelete
	if err := g.check(path, method); err != nil {
		return err
	}
	if r.deleted {
		return unknown(apierr.CodeUnknownRole, path, method)
	}
	if r.IsEveryone() || r.Managed {
		return apierr.BadRequest(apierr.CodeInvalidRole, "Invalid Role", path, method)
	}
	if err := c.require(actor, g, nil, permissions.ManageRoles, path, method); err != nil {
		return err
	}
	if err := c.requireAboveRole(actor, g, r, path, method); err != nil {
		return err
	}

	snapshot := r.Data()
	c.dispatch(EventGuildRoleDelete, &RoleDeletePayload{GuildID: g.ID, RoleID: r.ID})
	g.audit(actor, discordgo.AuditLogActionRoleDelete, r.ID, reason, deletionChanges(snapshot, roleAuditKeys...), nil)
	return nil
}
