package extracthtml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// emptyObject is returned for matching entries that carry no "data" field.
var emptyObject = json.RawMessage(`{}`)

// FindDataBySuffix returns the "data" field of the first entry whose key ends
// with suffix. When no key ends with it, the first key containing it is used.
// An entry without "data" yields an empty object.
func FindDataBySuffix(container SSR, suffix string) (json.RawMessage, error) {
	if suffix == "" {
		return nil, fmt.Errorf("%w: %q", ErrSubdataNotFound, suffix)
	}

	idx := -1
	for i, e := range container {
		if strings.HasSuffix(e.Key, suffix) {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, e := range container {
			if strings.Contains(e.Key, suffix) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSubdataNotFound, suffix)
	}

	match := container[idx]
	var entry struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(match.Raw, &entry); err != nil {
		return nil, fmt.Errorf("decode entry %q: %w", match.Key, err)
	}
	if len(entry.Data) == 0 || string(entry.Data) == "null" {
		return emptyObject, nil
	}
	return entry.Data, nil
}

// Data is FindDataBySuffix on s.
func (s SSR) Data(suffix string) (json.RawMessage, error) {
	return FindDataBySuffix(s, suffix)
}

// Keys returns the keys containing substr, in document order. An empty
// substr matches all.
func (s SSR) Keys(substr string) []string {
	var out []string
	for _, e := range s {
		if strings.Contains(e.Key, substr) {
			out = append(out, e.Key)
		}
	}
	return out
}

// Get returns the raw value stored under key.
func (s SSR) Get(key string) (json.RawMessage, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Raw, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes an object, keeping member order.
func (s *SSR) UnmarshalJSON(data []byte) error {
	out := SSR{}
	err := WalkObject(data, func(key string, raw json.RawMessage) error {
		out = append(out, SSREntry{Key: key, Raw: raw})
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalJSON encodes s as an object in entry order.
func (s SSR) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		raw := e.Raw
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WalkObject calls fn for every member of the JSON object in data, in
// document order.
func WalkObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
