// Package auditlog is the append-only, per-guild record of administrative
// actions.
package auditlog

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/clock"
	"github.com/jamesprial/discordmock/internal/snowflakes"
)

// Query limits.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Change is a single field change recorded on an entry.
type Change struct {
	Key string
	Old any
	New any
}

// Entry is one audit-log record. Entries returned by a Log are copies; the
// log's own entries never change after Append.
type Entry struct {
	ID         string
	ActionType discordgo.AuditLogAction
	UserID     string
	TargetID   string
	Reason     string
	Changes    []Change
	Options    map[string]string
	CreatedAt  time.Time
}

func (e Entry) clone() Entry {
	e.Changes = append([]Change(nil), e.Changes...)
	if e.Options != nil {
		opts := make(map[string]string, len(e.Options))
		for k, v := range e.Options {
			opts[k] = v
		}
		e.Options = opts
	}
	return e
}

// Data converts the entry to its discordgo shape.
func (e Entry) Data() *discordgo.AuditLogEntry {
	action := e.ActionType
	out := &discordgo.AuditLogEntry{
		ID:         e.ID,
		ActionType: &action,
		UserID:     e.UserID,
		TargetID:   e.TargetID,
		Reason:     e.Reason,
	}
	for _, c := range e.Changes {
		key := discordgo.AuditLogChangeKey(c.Key)
		out.Changes = append(out.Changes, &discordgo.AuditLogChange{Key: &key, OldValue: c.Old, NewValue: c.New})
	}
	if len(e.Options) > 0 {
		out.Options = &discordgo.AuditLogOptions{
			MembersRemoved: e.Options["members_removed"],
			ChannelID:      e.Options["channel_id"],
			MessageID:      e.Options["message_id"],
			Count:          e.Options["count"],
			ID:             e.Options["id"],
			RoleName:       e.Options["role_name"],
		}
	}
	return out
}

// Query selects entries. Filters apply in a fixed order: Before, then UserID,
// then ActionType; the survivors are sorted newest first and truncated to
// Limit.
type Query struct {
	// Before keeps entries whose ID is strictly less than it.
	Before string
	// UserID keeps entries performed by that user.
	UserID string
	// ActionType keeps entries of one action type.
	ActionType mo.Option[discordgo.AuditLogAction]
	// Limit defaults to DefaultLimit and must be within [1, MaxLimit].
	Limit mo.Option[int]
}

// IDSource hands out monotonically increasing snowflakes.
type IDSource interface {
	Next() string
}

// Log is a guild's audit log. It is safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	guildID string
	ids     IDSource
	clock   clock.Clock
	entries []Entry
}

// New returns an empty log for guildID.
func New(guildID string, ids IDSource, c clock.Clock) *Log {
	if c == nil {
		c = clock.Real{}
	}
	return &Log{guildID: guildID, ids: ids, clock: c}
}

// Append stamps e with a new ID and the current time, stores it, and returns
// a copy of the stored entry.
func (l *Log) Append(e Entry) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e = e.clone()
	e.ID = l.ids.Next()
	e.CreatedAt = l.clock.Now()
	l.entries = append(l.entries, e)
	return e.clone()
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Route is the simulated request path for queries against this log.
func (l *Log) Route() string {
	return fmt.Sprintf("/guilds/%s/audit-logs", l.guildID)
}

// Query returns the entries selected by q, newest first. An out-of-range
// limit is rejected with a 400 field error before anything is read.
func (l *Log) Query(q Query) ([]Entry, error) {
	limit := q.Limit.OrElse(DefaultLimit)
	switch {
	case limit < 1:
		return nil, apierr.FieldError(l.Route(), apierr.MethodGet, "limit", "NUMBER_TYPE_MIN", "int value should be greater than or equal to 1.")
	case limit > MaxLimit:
		return nil, apierr.FieldError(l.Route(), apierr.MethodGet, "limit", "NUMBER_TYPE_MAX", "int value should be less than or equal to 100.")
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if q.Before != "" && snowflakes.Compare(e.ID, q.Before) >= 0 {
			continue
		}
		if q.UserID != "" && e.UserID != q.UserID {
			continue
		}
		if action, ok := q.ActionType.Get(); ok && e.ActionType != action {
			continue
		}
		out = append(out, e.clone())
	}

	sort.SliceStable(out, func(i, j int) bool { return snowflakes.Compare(out[i].ID, out[j].ID) > 0 })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
