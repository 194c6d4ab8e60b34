// Package mock is an in-memory Discord client double.
//
// A Client owns referential caches of guilds, channels, users and everything
// beneath them. Every state change flows through the Dispatcher as a gateway
// Packet, exactly as a real client would receive it, so caches, outward
// events and guild audit logs stay consistent with each other. Operations on
// entities (creating channels, sending messages, deleting roles, ...) run the
// same validation the Discord API does, raise *apierr.Error values on
// failure, and only then synthesize and dispatch the packets the server would
// have broadcast.
//
// The Client serializes all mutations behind one lock. Events produced while
// the lock is held are delivered to handlers after it is released, so
// handlers may call back into the client.
//
// Entities embed their discordgo data shape. Collection fields of those
// shapes (a guild's roles, a channel's overwrites, a message's reactions) are
// lifted into owned caches that shadow the embedded slices; Data returns a
// discordgo snapshot with the collections filled back in.
package mock
