package abilities

import (
	"encoding/json"
	"fmt"
	"strconv"
)

var spellKeys = []string{"Q", "W", "E", "R"}

// DDragonChampion is the part of a Data Dragon champion detail document
// used here.
type DDragonChampion struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Name    string `json:"name"`
	Passive struct {
		Name string `json:"name"`
	} `json:"passive"`
	Spells []struct {
		Name string `json:"name"`
	} `json:"spells"`
}

// NumericKey returns the champion's numeric id, used by Community Dragon.
func (c DDragonChampion) NumericKey() (int, error) {
	n, err := strconv.Atoi(c.Key)
	if err != nil {
		return 0, fmt.Errorf("champion %q key %q: %w", c.ID, c.Key, err)
	}
	return n, nil
}

// ParseDDragonChampion decodes a Data Dragon champion/<slug>.json document
// and returns the entry for slug. When the document holds exactly one
// champion under a different key, that entry is returned.
func ParseDDragonChampion(data []byte, slug string) (DDragonChampion, error) {
	var doc struct {
		Data map[string]DDragonChampion `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return DDragonChampion{}, fmt.Errorf("decode ddragon champion: %w", err)
	}
	if c, ok := doc.Data[slug]; ok {
		return c, nil
	}
	if len(doc.Data) == 1 {
		for _, c := range doc.Data {
			return c, nil
		}
	}
	return DDragonChampion{}, fmt.Errorf("ddragon champion %q not in document", slug)
}

type cdragonSpell struct {
	Name                 string    `json:"name"`
	CooldownCoefficients []float64 `json:"cooldownCoefficients"`
	Ammo                 *struct {
		AmmoRechargeTime []float64 `json:"ammoRechargeTime"`
	} `json:"ammo"`
}

// ParseCDragon combines a Community Dragon champion document with Data
// Dragon names. The passive comes first with no cooldowns; spells follow
// in Q, W, E, R order.
func ParseCDragon(dd DDragonChampion, data []byte) ([]Ability, error) {
	var doc struct {
		Spells []cdragonSpell `json:"spells"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cdragon champion: %w", err)
	}

	out := []Ability{{
		Source:    SourceCDragon,
		Key:       "P",
		Name:      dd.Passive.Name,
		Cooldowns: []float64{},
		Recharge:  []float64{},
	}}

	for i, s := range doc.Spells {
		if i >= len(spellKeys) {
			break
		}
		name := s.Name
		if i < len(dd.Spells) {
			name = dd.Spells[i].Name
		}
		if name == "" {
			name = "Unknown"
		}
		var recharge []float64
		if s.Ammo != nil {
			recharge = s.Ammo.AmmoRechargeTime
		}
		out = append(out, Ability{
			Source:    SourceCDragon,
			Key:       spellKeys[i],
			Name:      name,
			Cooldowns: nonNil(s.CooldownCoefficients),
			Recharge:  nonNil(recharge),
		})
	}
	return out, nil
}
