package abilities

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecharge_Variants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{"list", `[30, 25, 20]`, []float64{30, 25, 20}},
		{"modifiers", `{"modifiers":[{"units":["s"]},{"values":[18,16]}]}`, []float64{18, 16}},
		{"modifiers_without_values", `{"modifiers":[{"units":["s"]}]}`, nil},
		{"number", `12.5`, []float64{12.5}},
		{"negative_number", `-1`, []float64{-1}},
		{"null", `null`, nil},
		{"string", `"n/a"`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var r Recharge
			require.NoError(t, json.Unmarshal([]byte(tc.in), &r))
			assert.Equal(t, tc.want, r.Values)
		})
	}

	var r Recharge
	assert.Error(t, json.Unmarshal([]byte(`["x"]`), &r))
}

const merakiAhri = `{
  "name": "Ahri",
  "abilities": {
    "R": [{"name": "Spirit Rush", "cooldown": {"modifiers": [{"values": [130, 105, 80]}]}, "rechargeRate": [10]}],
    "P": [{"name": "Essence Theft", "cooldown": null}],
    "Q": [{"name": "Orb of Deception", "cooldown": {"modifiers": [{"values": [7, 7, 7, 7, 7]}]}}],
    "W": [{"name": "Fox-Fire", "cooldown": {"modifiers": [{"values": [9, 8, 7, 6, 5]}]}, "rechargeRate": 3}],
    "E": [{"name": "", "cooldown": {"modifiers": [{"values": [14, 14, 14, 14, 14]}]}, "rechargeRate": {"modifiers": [{"values": [20]}]}}]
  }
}`

func TestParseMeraki(t *testing.T) {
	t.Parallel()

	rows, err := ParseMeraki([]byte(merakiAhri))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.Key)
		assert.Equal(t, SourceMeraki, r.Source)
	}
	assert.Equal(t, []string{"P", "Q", "W", "E", "R"}, keys)

	assert.Equal(t, "Essence Theft", rows[0].Name)
	assert.Empty(t, rows[0].Cooldowns)
	assert.NotNil(t, rows[0].Cooldowns)

	assert.Equal(t, []float64{9, 8, 7, 6, 5}, rows[2].Cooldowns)
	assert.Equal(t, []float64{3}, rows[2].Recharge)
	assert.Equal(t, "Unknown", rows[3].Name)
	assert.Equal(t, []float64{20}, rows[3].Recharge)
	assert.Equal(t, []float64{10}, rows[4].Recharge)
}

func TestParseMeraki_NoAbilities(t *testing.T) {
	t.Parallel()

	rows, err := ParseMeraki([]byte(`{"name":"Newchamp"}`))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = ParseMeraki([]byte(`<html>`))
	assert.Error(t, err)
}

const ddragonAhri = `{"data":{"Ahri":{"id":"Ahri","key":"103","name":"Ahri",
  "passive":{"name":"Essence Theft"},
  "spells":[{"name":"Orb of Deception"},{"name":"Fox-Fire"},{"name":"Charm"},{"name":"Spirit Rush"}]}}}`

const cdragonAhri = `{"id":103,"spells":[
  {"name":"AhriQ","cooldownCoefficients":[7,7,7,7,7,0]},
  {"name":"AhriW","cooldownCoefficients":[9,8,7,6,5,0]},
  {"name":"AhriE","cooldownCoefficients":[14,14,14,14,14,0]},
  {"name":"AhriR","cooldownCoefficients":[130,105,80],"ammo":{"ammoRechargeTime":[10,10,10]}},
  {"name":"Extra","cooldownCoefficients":[1]}
]}`

func TestParseCDragon(t *testing.T) {
	t.Parallel()

	dd, err := ParseDDragonChampion([]byte(ddragonAhri), "Ahri")
	require.NoError(t, err)
	id, err := dd.NumericKey()
	require.NoError(t, err)
	assert.Equal(t, 103, id)

	rows, err := ParseCDragon(dd, []byte(cdragonAhri))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, Ability{Source: SourceCDragon, Key: "P", Name: "Essence Theft", Cooldowns: []float64{}, Recharge: []float64{}}, rows[0])
	assert.Equal(t, "Orb of Deception", rows[1].Name)
	assert.Equal(t, "R", rows[4].Key)
	assert.Equal(t, []float64{10, 10, 10}, rows[4].Recharge)
	assert.Empty(t, rows[1].Recharge)
}

func TestParseCDragon_NameFallback(t *testing.T) {
	t.Parallel()

	dd := DDragonChampion{ID: "X"}
	rows, err := ParseCDragon(dd, []byte(`{"spells":[{"name":"RawQ"},{}]}`))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "RawQ", rows[1].Name)
	assert.Equal(t, "Unknown", rows[2].Name)
}

func TestParseDDragonChampion(t *testing.T) {
	t.Parallel()

	c, err := ParseDDragonChampion([]byte(`{"data":{"MonkeyKing":{"id":"MonkeyKing","key":"62"}}}`), "monkeyking")
	require.NoError(t, err, "single entry is used even when the key differs")
	assert.Equal(t, "62", c.Key)

	_, err = ParseDDragonChampion([]byte(`{"data":{}}`), "Ahri")
	assert.Error(t, err)

	_, err = DDragonChampion{ID: "X", Key: "abc"}.NumericKey()
	assert.Error(t, err)
}

func TestHasPositive(t *testing.T) {
	t.Parallel()

	assert.False(t, HasPositive(nil))
	assert.False(t, HasPositive([]float64{0, 0}))
	assert.True(t, HasPositive([]float64{0, 3}))
}

type stubFetcher map[string]string

func (s stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	body, ok := s[url]
	if !ok {
		return "", errors.New("http status 404: " + url)
	}
	return body, nil
}

func testClient(f stubFetcher) *Client {
	return &Client{
		Fetcher:    f,
		MerakiURL:  "https://meraki.test/champions",
		DDragonURL: "https://ddragon.test/cdn/",
		CDragonURL: "https://cdragon.test/champions",
	}
}

func TestLookup_PrefersMeraki(t *testing.T) {
	t.Parallel()

	c := testClient(stubFetcher{
		"https://meraki.test/champions/Ahri.json": merakiAhri,
	})
	c.OnFallback = func(err error) { t.Fatalf("unexpected fallback: %v", err) }

	res, err := c.Lookup(context.Background(), "Ahri", "15.9.1")
	require.NoError(t, err)
	assert.Equal(t, SourceMeraki, res.Source)
	assert.Equal(t, "Ahri", res.Champion)
	assert.Len(t, res.Abilities, 5)
}

func TestLookup_FallsBackToRawFiles(t *testing.T) {
	t.Parallel()

	for name, meraki := range map[string]stubFetcher{
		"meraki_missing": {},
		"meraki_empty":   {"https://meraki.test/champions/Ahri.json": `{"abilities":{}}`},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := stubFetcher{
				"https://ddragon.test/cdn/15.9.1/data/en_US/champion/Ahri.json": ddragonAhri,
				"https://cdragon.test/champions/103.json":                       cdragonAhri,
			}
			for k, v := range meraki {
				f[k] = v
			}
			c := testClient(f)
			var reasons []error
			c.OnFallback = func(err error) { reasons = append(reasons, err) }

			res, err := c.Lookup(context.Background(), "Ahri", "15.9.1")
			require.NoError(t, err)
			assert.Equal(t, SourceCDragon, res.Source)
			assert.Len(t, res.Abilities, 5)
			assert.Len(t, reasons, 1)
		})
	}
}

func TestLookup_NoData(t *testing.T) {
	t.Parallel()

	_, err := testClient(stubFetcher{}).Lookup(context.Background(), "Ahri", "15.9.1")
	require.ErrorIs(t, err, ErrNoAbilityData)
	assert.Contains(t, err.Error(), "fetch ddragon Ahri")
}
