package mock

import (
	"github.com/bwmarrin/discordgo"
)

// User is a cached Discord user. The same instance is shared by every member
// wrapping the user.
type User struct {
	discordgo.User

	client *Client
}

func (c *Client) buildUser(d *discordgo.User) *User {
	return &User{User: *d, client: c}
}

func (u *User) patch(d *discordgo.User) { u.User = *d }

func (u *User) clone() *User {
	cp := *u
	return &cp
}

// Data returns a snapshot of the user.
func (u *User) Data() *discordgo.User {
	d := u.User
	return &d
}

// DMChannel returns the cached DM channel with the user, if any.
func (u *User) DMChannel() (*DMChannel, bool) {
	dm, ok := u.client.Channels.Find(func(ch Channel) bool {
		d, ok := ch.(*DMChannel)
		return ok && d.recipientID() == u.ID
	})
	if !ok {
		return nil, false
	}
	return dm.(*DMChannel), true
}

// dataOf returns the discordgo snapshot of u, tolerating nil.
func dataOf(u *User) *discordgo.User {
	if u == nil {
		return nil
	}
	return u.Data()
}
