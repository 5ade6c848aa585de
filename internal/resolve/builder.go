package resolve

import (
	"encoding/json"
	"fmt"
	"strings"
)

// champion is the subset of a Data Dragon champion.json entry we use.
type champion struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// seoNames is one entry of the SEO champion-names block, keyed by champion key.
type seoNames struct {
	Name     string `json:"name"`
	AltName  string `json:"altName"`
	AltName2 string `json:"altName2"`
}

// BuildAliasTable builds an alias table from the "data" object of
// champion.json and the "data" object of the SEO names block. Entries keep
// champion.json order. Champions without a name are skipped. seo may be
// empty or null.
func BuildAliasTable(champions, seo json.RawMessage) (*AliasTable, error) {
	alt := map[string]seoNames{}
	if len(seo) > 0 && string(seo) != "null" {
		if err := json.Unmarshal(seo, &alt); err != nil {
			return nil, fmt.Errorf("decode seo names: %w", err)
		}
	}

	var entries []AliasEntry
	err := walkObject(champions, func(key string, raw json.RawMessage) error {
		var c champion
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("champion %q: %w", key, err)
		}
		if c.Name == "" {
			return nil
		}
		aliases := []string{c.Name}
		if s, ok := alt[c.Key]; ok {
			aliases = append(aliases, s.Name, s.AltName, s.AltName2)
		}
		entries = append(entries, AliasEntry{
			Slug:    strings.ToLower(c.ID),
			Name:    c.Name,
			Aliases: aliases,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build alias table: %w", err)
	}
	return TableOf(entries), nil
}

// BuildKeyTable builds a key table from the "data" object of champion.json:
// both the display name and the identifier map to the identifier, which is
// the name Data Dragon uses for per-champion files.
func BuildKeyTable(champions json.RawMessage) (*KeyTable, error) {
	t := NewKeyTable()
	err := walkObject(champions, func(key string, raw json.RawMessage) error {
		var c champion
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("champion %q: %w", key, err)
		}
		if c.ID == "" {
			c.ID = key
		}
		t.Add(c.Name, c.ID)
		t.Add(c.ID, c.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build key table: %w", err)
	}
	return t, nil
}
