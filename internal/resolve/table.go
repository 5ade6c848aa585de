package resolve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"champhelper/internal/extracthtml"
)

// AliasEntry is one canonical champion with every name it is known by.
type AliasEntry struct {
	Slug    string   `json:"slug"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// AliasTable is an ordered, immutable set of AliasEntry values keyed by
// canonical name. Lookups walk entries in table order, so ties resolve the
// same way every time.
type AliasTable struct {
	entries []AliasEntry
	norm    [][]string // normalized aliases, parallel to entries
	byName  map[string]int
}

// NewAliasTable builds a table from a map keyed by canonical name. Go maps
// have no order, so entries are sorted by canonical name.
func NewAliasTable(m map[string]AliasEntry) *AliasTable {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]AliasEntry, 0, len(names))
	for _, name := range names {
		e := m[name]
		if e.Name == "" {
			e.Name = name
		}
		entries = append(entries, e)
	}
	return TableOf(entries)
}

// TableOf builds a table keeping the given order. Each entry's alias list is
// completed with its canonical name, deduplicated and sorted. A later entry
// with an already-seen canonical name replaces the earlier one in place.
func TableOf(entries []AliasEntry) *AliasTable {
	t := &AliasTable{byName: make(map[string]int, len(entries))}
	for _, e := range entries {
		e.Aliases = canonicalAliases(e.Name, e.Aliases)
		n := make([]string, len(e.Aliases))
		for i, a := range e.Aliases {
			n[i] = Normalize(a)
		}

		if i, ok := t.byName[e.Name]; ok {
			t.entries[i], t.norm[i] = e, n
			continue
		}
		t.byName[e.Name] = len(t.entries)
		t.entries = append(t.entries, e)
		t.norm = append(t.norm, n)
	}
	return t
}

func canonicalAliases(name string, aliases []string) []string {
	seen := make(map[string]struct{}, len(aliases)+1)
	out := make([]string, 0, len(aliases)+1)
	for _, a := range append([]string{name}, aliases...) {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of entries.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries in table order.
func (t *AliasTable) Entries() []AliasEntry {
	if t == nil {
		return nil
	}
	out := make([]AliasEntry, len(t.entries))
	for i, e := range t.entries {
		e.Aliases = append([]string(nil), e.Aliases...)
		out[i] = e
	}
	return out
}

// Lookup returns the entry for an exact canonical name.
func (t *AliasTable) Lookup(name string) (AliasEntry, bool) {
	if t == nil {
		return AliasEntry{}, false
	}
	i, ok := t.byName[name]
	if !ok {
		return AliasEntry{}, false
	}
	return t.entries[i], true
}

// MarshalJSON writes {"<canonical>": {"slug","name","aliases"}, ...} in
// table order.
func (t *AliasTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the MarshalJSON shape, keeping document order.
func (t *AliasTable) UnmarshalJSON(data []byte) error {
	var entries []AliasEntry
	err := walkObject(data, func(key string, raw json.RawMessage) error {
		var e AliasEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("entry %q: %w", key, err)
		}
		if e.Name == "" {
			e.Name = key
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return fmt.Errorf("alias table: %w", err)
	}
	*t = *TableOf(entries)
	return nil
}

// KeyTable maps normalized keys to identifiers, in insertion order.
type KeyTable struct {
	keys  []string
	ids   []string
	index map[string]int
}

// NewKeyTable returns an empty key table.
func NewKeyTable() *KeyTable {
	return &KeyTable{index: map[string]int{}}
}

// Add maps Normalize(key) to id. Empty keys are ignored; re-adding a key
// keeps its position and replaces the id.
func (t *KeyTable) Add(key, id string) {
	k := Normalize(key)
	if k == "" {
		return
	}
	if i, ok := t.index[k]; ok {
		t.ids[i] = id
		return
	}
	t.index[k] = len(t.keys)
	t.keys = append(t.keys, k)
	t.ids = append(t.ids, id)
}

// Len reports the number of keys.
func (t *KeyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// MarshalJSON writes {"<key>": "<id>", ...} in table order.
func (t *KeyTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(t.ids[i])
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the MarshalJSON shape, keeping document order.
func (t *KeyTable) UnmarshalJSON(data []byte) error {
	out := NewKeyTable()
	err := walkObject(data, func(key string, raw json.RawMessage) error {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out.Add(key, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("key table: %w", err)
	}
	*t = *out
	return nil
}

// walkObject visits object members in document order.
var walkObject = extracthtml.WalkObject
