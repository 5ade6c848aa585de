package abilities

import (
	"encoding/json"
	"fmt"
)

var merakiOrder = []string{"P", "Q", "W", "E", "R"}

type merakiSpell struct {
	Name         string       `json:"name"`
	Cooldown     *modifierSet `json:"cooldown"`
	RechargeRate Recharge     `json:"rechargeRate"`
}

type merakiChampion struct {
	Abilities map[string][]merakiSpell `json:"abilities"`
}

// ParseMeraki decodes a Meraki champion document. A document without an
// abilities object yields no rows and no error.
func ParseMeraki(data []byte) ([]Ability, error) {
	var c merakiChampion
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode meraki champion: %w", err)
	}

	var out []Ability
	for _, key := range merakiOrder {
		for _, s := range c.Abilities[key] {
			name := s.Name
			if name == "" {
				name = "Unknown"
			}
			out = append(out, Ability{
				Source:    SourceMeraki,
				Key:       key,
				Name:      name,
				Cooldowns: nonNil(s.Cooldown.first()),
				Recharge:  nonNil(s.RechargeRate.Values),
			})
		}
	}
	return out, nil
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
