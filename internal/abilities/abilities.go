// Package abilities decodes champion ability cooldowns from two vendors:
// Meraki Analytics (curated, sometimes late for new champions) and the raw
// client files published by Community Dragon, with ability names taken from
// Data Dragon.
package abilities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Source names reported in Result.Source and Ability.Source.
const (
	SourceMeraki  = "meraki"
	SourceCDragon = "cdragon"
)

// Ability is one row of cooldown data.
type Ability struct {
	Source    string    `json:"source"`
	Key       string    `json:"key"` // P, Q, W, E or R
	Name      string    `json:"name"`
	Cooldowns []float64 `json:"cooldowns"`
	Recharge  []float64 `json:"recharge"`
}

// Recharge is an ammo recharge rate. Meraki publishes it as a list of
// values, as an object carrying modifiers, or as a bare number; all three
// decode to Values. Anything else decodes to no values.
type Recharge struct {
	Values []float64
}

func (r *Recharge) UnmarshalJSON(data []byte) error {
	r.Values = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '[':
		var vs []float64
		if err := json.Unmarshal(data, &vs); err != nil {
			return fmt.Errorf("recharge list: %w", err)
		}
		r.Values = vs
	case '{':
		var obj modifierSet
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("recharge modifiers: %w", err)
		}
		r.Values = obj.first()
	case 'n', '"', 't', 'f':
		// null, strings and booleans carry no rate.
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("recharge number: %w", err)
		}
		r.Values = []float64{v}
	}
	return nil
}

type modifier struct {
	Values *[]float64 `json:"values"`
}

type modifierSet struct {
	Modifiers []modifier `json:"modifiers"`
}

// first returns the values of the first modifier that has a values field.
func (m *modifierSet) first() []float64 {
	if m == nil {
		return nil
	}
	for _, mod := range m.Modifiers {
		if mod.Values != nil {
			return *mod.Values
		}
	}
	return nil
}

// HasPositive reports whether any value is above zero. Zero-only lists mean
// "no cooldown" in both vendors' data.
func HasPositive(values []float64) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}
