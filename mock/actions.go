package mock

import (
	"fmt"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/auditlog"
	"github.com/jamesprial/discordmock/record"
)

// setOpt copies a present option into r under key.
func setOpt[T any](r record.Record, key string, o mo.Option[T]) {
	if v, ok := o.Get(); ok {
		r[key] = v
	}
}

// applyPatch merges partial onto current and returns the patched copy and
// the changed fields. current is not modified.
func applyPatch[T any](current *T, partial record.Record) (*T, []record.Change, error) {
	normalized, err := record.Encode(partial)
	if err != nil {
		return nil, nil, err
	}
	before, err := record.Encode(current)
	if err != nil {
		return nil, nil, err
	}
	out := new(T)
	if err := record.Decode(record.Merge(before, normalized), out); err != nil {
		return nil, nil, err
	}
	after, err := record.Encode(out)
	if err != nil {
		return nil, nil, err
	}
	return out, record.Diff(before, after), nil
}

// creationChanges lists every field of a new entity as a change from nil.
func creationChanges(v any, keys ...string) []record.Change {
	r, err := record.Encode(v)
	if err != nil {
		return nil
	}
	out := make([]record.Change, 0, len(keys))
	for _, k := range keys {
		if val, ok := r[k]; ok {
			out = append(out, record.Change{Key: k, New: val})
		}
	}
	return out
}

// deletionChanges is creationChanges in reverse.
func deletionChanges(v any, keys ...string) []record.Change {
	out := creationChanges(v, keys...)
	for i := range out {
		out[i].Old, out[i].New = out[i].New, nil
	}
	return out
}

// audit appends one entry to g's audit log.
func (g *Guild) audit(actor *User, action discordgo.AuditLogAction, targetID, reason string, changes []record.Change, opts map[string]string) auditlog.Entry {
	e := auditlog.Entry{
		ActionType: action,
		UserID:     actor.ID,
		TargetID:   targetID,
		Reason:     reason,
		Options:    opts,
	}
	for _, ch := range changes {
		e.Changes = append(e.Changes, auditlog.Change{Key: ch.Key, Old: ch.Old, New: ch.New})
	}
	return g.AuditLog.Append(e)
}

// checkLength validates a string field's length in runes.
func checkLength(path string, method apierr.Method, field, value string, lo, hi int) error {
	n := utf8.RuneCountInString(value)
	if n < lo || n > hi {
		return apierr.FieldError(path, method, field, "BASE_TYPE_BAD_LENGTH",
			fmt.Sprintf("Must be between %d and %d in length.", lo, hi))
	}
	return nil
}

// checkRange validates an integer field.
func checkRange(path string, method apierr.Method, field string, value, lo, hi int) error {
	switch {
	case value < lo:
		return apierr.FieldError(path, method, field, "NUMBER_TYPE_MIN",
			fmt.Sprintf("int value should be greater than or equal to %d.", lo))
	case value > hi:
		return apierr.FieldError(path, method, field, "NUMBER_TYPE_MAX",
			fmt.Sprintf("int value should be less than or equal to %d.", hi))
	}
	return nil
}

func unknown(code int, path string, method apierr.Method) error {
	return apierr.Unknown(code, path, method)
}
