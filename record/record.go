// Package record normalizes the partial data records that flow through the
// mock: merging them onto defaults, converting between records and discordgo
// data shapes, and diffing two records for audit-log change lists.
//
// A Record is a JSON-shaped map keyed by Discord wire field names. Nested
// objects are map[string]any and arrays are []any, exactly as encoding/json
// produces them.
package record

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Record is a partial or complete data record in wire form.
type Record map[string]any

// Change is one top-level field that differs between two records.
type Change struct {
	Key string
	Old any
	New any
}

// Merge overlays partial onto defaults and returns a new record.
//
// Every key present in partial wins, including keys explicitly set to nil.
// Keys absent from partial keep the default. When both sides hold an object,
// the objects are merged field by field. Arrays are never merged: a partial
// array replaces the default wholesale. Neither input is modified and the
// result shares no maps or slices with them.
func Merge(defaults, partial Record) Record {
	return Record(merge(defaults, partial))
}

func merge(defaults, partial map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(partial))
	for k, v := range defaults {
		out[k] = cloneValue(v)
	}
	for k, pv := range partial {
		if pm, ok := asMap(pv); ok {
			if dm, ok := asMap(out[k]); ok {
				out[k] = merge(dm, pm)
				continue
			}
		}
		out[k] = cloneValue(pv)
	}
	return out
}

// Clone returns a deep copy of r.
func Clone(r Record) Record {
	if r == nil {
		return nil
	}
	return Record(cloneValue(map[string]any(r)).(map[string]any))
}

func cloneValue(v any) any {
	if m, ok := asMap(v); ok {
		out := make(map[string]any, len(m))
		for k, inner := range m {
			out[k] = cloneValue(inner)
		}
		return out
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		for i, inner := range s {
			out[i] = cloneValue(inner)
		}
		return out
	}
	return v
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Record:
		return map[string]any(m), m != nil
	case map[string]any:
		return m, m != nil
	}
	return nil, false
}

// Encode converts a data shape (any JSON-serializable value, typically a
// discordgo struct) into a Record.
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("record: encode %T: %w", v, err)
	}
	var out Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("record: encode %T: %w", v, err)
	}
	return out, nil
}

// MustEncode is Encode for values known to be serializable. It panics on
// error.
func MustEncode(v any) Record {
	r, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return r
}

// Decode fills out, a pointer to a data shape, from r. Field names follow the
// json struct tags; string-encoded integers and RFC 3339 timestamps are
// converted.
func Decode(r Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return fmt.Errorf("record: decoder for %T: %w", out, err)
	}
	if err := dec.Decode(map[string]any(r)); err != nil {
		return fmt.Errorf("record: decode into %T: %w", out, err)
	}
	return nil
}

// Apply merges partial onto the encoded form of current and decodes the
// result into out. It is the patch path used by edit operations.
func Apply(current any, partial Record, out any) (Record, error) {
	base, err := Encode(current)
	if err != nil {
		return nil, err
	}
	merged := Merge(base, partial)
	if err := Decode(merged, out); err != nil {
		return nil, err
	}
	return merged, nil
}

// Diff lists the top-level keys whose values differ between before and after,
// sorted by key.
func Diff(before, after Record) []Change {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	var out []Change
	for k := range keys {
		o, n := before[k], after[k]
		if reflect.DeepEqual(o, n) {
			continue
		}
		out = append(out, Change{Key: k, Old: o, New: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
