package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"champhelper/internal/resolve"
)

// NormalizeVersion converts a version value read back from a backend to its
// canonical string form, so "15.9.1", " 15.9.1\n" and []byte("15.9.1")
// compare equal.
//
// Backends must not assume a particular driver type for the column; this
// helper keeps version comparisons consistent across backends.
func NormalizeVersion(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// EncodeTable is the payload every backend stores.
func EncodeTable(t *resolve.AliasTable) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("storage: nil alias table")
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode alias table: %w", err)
	}
	return b, nil
}

// DecodeTable is the inverse of EncodeTable.
func DecodeTable(payload []byte) (*resolve.AliasTable, error) {
	var t resolve.AliasTable
	if err := json.Unmarshal(payload, &t); err != nil {
		return nil, fmt.Errorf("decode alias table: %w", err)
	}
	return &t, nil
}

// Match returns the decoded table when the stored version equals want, and
// ErrCacheMiss otherwise. A payload that no longer decodes (truncated file,
// older schema) is also a miss, so the caller rebuilds it.
func Match(stored any, want string, payload []byte) (*resolve.AliasTable, error) {
	if NormalizeVersion(stored) != NormalizeVersion(want) {
		return nil, ErrCacheMiss
	}
	t, err := DecodeTable(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheMiss, err)
	}
	return t, nil
}
