// Flexible wire types for the drifted field shapes in the live collections.
//
// DECODING POLICY:
// Unmarshal never fails on a shape mismatch for these types — a malformed
// field decodes to its zero value and the record stays usable. Raising an
// error here would make a single bad record break a whole list fetch.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Ref is the document store's join shape: {"_id": "..."}.
type Ref struct {
	ID string `json:"_id"`
}

// RefList is a reference field that arrives as an array of Ref objects, an
// array of id strings, or a single bare id string, depending on which write
// path produced the record. It always marshals back as the canonical array
// of Ref objects.
type RefList []Ref

// First returns the first referenced id, or "" for an empty list.
func (r RefList) First() string {
	if len(r) == 0 {
		return ""
	}
	return r[0].ID
}

// Contains reports whether id appears in the list.
func (r RefList) Contains(id string) bool {
	for _, ref := range r {
		if ref.ID == id {
			return true
		}
	}
	return false
}

// Refs builds a RefList from plain ids. Convenience for write paths.
func Refs(ids ...string) RefList {
	out := make(RefList, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, Ref{ID: id})
		}
	}
	return out
}

func (r *RefList) UnmarshalJSON(data []byte) error {
	data = trimmed(data)
	if len(data) == 0 || string(data) == "null" {
		*r = nil
		return nil
	}

	// Bare string: a single id.
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil || id == "" {
			*r = nil
			return nil
		}
		*r = RefList{{ID: id}}
		return nil
	}

	// Array: elements are either {"_id": ...} objects or id strings.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*r = nil
		return nil
	}
	out := make(RefList, 0, len(raw))
	for _, el := range raw {
		el = trimmed(el)
		if len(el) == 0 {
			continue
		}
		if el[0] == '"' {
			var id string
			if err := json.Unmarshal(el, &id); err == nil && id != "" {
				out = append(out, Ref{ID: id})
			}
			continue
		}
		var ref Ref
		if err := json.Unmarshal(el, &ref); err == nil && ref.ID != "" {
			out = append(out, ref)
		}
	}
	*r = out
	return nil
}

// IDList is an ordered list of record ids that arrives either as a JSON
// array (of strings or Ref objects) or as a delimited string like
// "a, b,c" — the two shapes the two logging write paths produced. The
// string form is split on commas with whitespace trimmed.
type IDList []string

// Contains reports whether id appears in the list.
func (l IDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

func (l *IDList) UnmarshalJSON(data []byte) error {
	data = trimmed(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*l = nil
			return nil
		}
		*l = SplitIDs(s)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make(IDList, 0, len(raw))
	for _, el := range raw {
		el = trimmed(el)
		if len(el) == 0 {
			continue
		}
		if el[0] == '"' {
			var id string
			if err := json.Unmarshal(el, &id); err == nil {
				if id = strings.TrimSpace(id); id != "" {
					out = append(out, id)
				}
			}
			continue
		}
		var ref Ref
		if err := json.Unmarshal(el, &ref); err == nil && ref.ID != "" {
			out = append(out, ref.ID)
		}
	}
	*l = out
	return nil
}

// SplitIDs normalizes a comma-delimited id string into an ordered list,
// trimming whitespace and dropping empty segments.
func SplitIDs(s string) IDList {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make(IDList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Timestamp is a lenient wrapper around time.Time. Records written by the
// app carry full RFC 3339 timestamps, but older records carry date-only
// values or nothing at all. A value that does not parse decodes as the zero
// time rather than failing the record.
type Timestamp struct {
	time.Time
}

// Now returns the current moment as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now()}
}

// timeLayouts are tried in order. RFC3339Nano covers the app's own writes
// (JS toISOString); the rest cover hand-entered records seen in the store.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = trimmed(data)
	if len(data) == 0 || string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func trimmed(data []byte) []byte {
	return []byte(strings.TrimSpace(string(data)))
}
