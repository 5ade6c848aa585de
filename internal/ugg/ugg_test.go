package ugg

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"champhelper/internal/extracthtml"
)

const counterPage = `<html><head><script>window.__SSR_DATA__ = {
  "https://static.bigbrain.gg/assets/lol/riot_static/15.9.1/data/en_US/champion.json": {
    "data": {
      "Ahri": {"id": "Ahri", "key": "103", "name": "Ahri"},
      "Zed": {"id": "Zed", "key": "238", "name": "Zed"},
      "Bad": {"id": "Bad", "key": "x", "name": "Bad"}
    }
  },
  "https://stats2.u.gg/lol/1.5/matchups/15_9/ranked_solo_5x5/103/1.5.0.json": {
    "data": {
      "world_emerald_plus_top": {"counters": []},
      "world_emerald_plus_mid": {"counters": [
        {"champion_id": 238, "win_rate": 47.456, "gold_adv_15": -120.5, "pick_rate": 3.333, "matches": 1500},
        {"champion_id": 999, "win_rate": 52, "gold_adv_15": 0, "pick_rate": 0.1, "matches": 12},
        {"champion_id": 103, "win_rate": 50, "pick_rate": 9, "matches": 3}
      ]}
    }
  }
};</script></head></html>`

func pageSSR(t *testing.T) extracthtml.SSR {
	t.Helper()
	ssr, err := extracthtml.DecodeSSR(counterPage, extracthtml.SSRMarker)
	require.NoError(t, err)
	return ssr
}

func TestMatchups(t *testing.T) {
	t.Parallel()

	got, err := Matchups(pageSSR(t), "MID")
	require.NoError(t, err)

	want := []Counter{
		{ChampionID: 238, Champion: "Zed", WinRate: 52.54, GoldDiff15: 120.5, PickRate: 3.33, Matches: 1500},
		{ChampionID: 999, Champion: "#999", WinRate: 48, GoldDiff15: 0, PickRate: 0.1, Matches: 12},
	}
	assert.Equal(t, want, got)
}

func TestMatchups_FirstBlockOnPage(t *testing.T) {
	t.Parallel()

	doc := `{
  "https://static.bigbrain.gg/assets/lol/riot_static/15.9.1/data/en_US/champion.json": {"data": {"Zed": {"key": "238", "name": "Zed"}}},
  "https://stats2.u.gg/lol/1.5/matchups/15_9/ranked_solo_5x5/103/1.5.0.json": {"data": {"world_emerald_plus_mid": {"counters": [
    {"champion_id": 238, "win_rate": 40, "gold_adv_15": 10, "pick_rate": 1, "matches": 100}
  ]}}},
  "https://stats2.u.gg/lol/1.5/matchups/15_9/ranked_solo_5x5/103/1.4.0.json": {"data": {"world_emerald_plus_mid": {"counters": [
    {"champion_id": 238, "win_rate": 60, "gold_adv_15": 10, "pick_rate": 1, "matches": 5}
  ]}}}
}`
	var ssr extracthtml.SSR
	require.NoError(t, json.Unmarshal([]byte(doc), &ssr))

	got, err := Matchups(ssr, "mid")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 60.0, got[0].WinRate)
	assert.Equal(t, 100, got[0].Matches)
}

func TestMatchups_EmptyRole(t *testing.T) {
	t.Parallel()

	got, err := Matchups(pageSSR(t), "top")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchups_MissingRole(t *testing.T) {
	t.Parallel()

	_, err := Matchups(pageSSR(t), "jungle")
	require.ErrorIs(t, err, ErrMatchupsNotFound)
	assert.Contains(t, err.Error(), "world_emerald_plus_jungle")
}

func TestMatchups_NoChampionBlock(t *testing.T) {
	t.Parallel()

	ssr := extracthtml.SSR{{Key: "https://stats2.u.gg/lol/1.5/matchups/x.json", Raw: json.RawMessage(`{"data":{}}`)}}
	_, err := Matchups(ssr, "mid")
	assert.True(t, errors.Is(err, extracthtml.ErrSubdataNotFound), "err=%v", err)
}

func TestChampionNames_SkipsNonNumericKeys(t *testing.T) {
	t.Parallel()

	names, err := ChampionNames(pageSSR(t))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{103: "Ahri", 238: "Zed"}, names)
}

func TestCounterURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug, role, version string
		want                string
	}{
		{"Ahri", "mid", "15.9.1", "https://u.gg/lol/champions/ahri/counter?role=mid&patch=15_9"},
		{"ahri", "", "15.10.1", "https://u.gg/lol/champions/ahri/counter?patch=15_10"},
		{"ahri", "Top", "", "https://u.gg/lol/champions/ahri/counter?role=top"},
		{"ahri", "", "", "https://u.gg/lol/champions/ahri/counter"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CounterURL("", tc.slug, tc.role, tc.version))
	}
	assert.Equal(t, "http://mirror.test/ahri?role=mid", CounterURL("http://mirror.test/%s", "ahri", "mid", ""))
}

type stubFetcher map[string]string

func (s stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	body, ok := s[url]
	if !ok {
		return "", errors.New("http status 404")
	}
	return body, nil
}

func TestClient_Matchups(t *testing.T) {
	t.Parallel()

	c := &Client{Fetcher: stubFetcher{
		"https://u.gg/lol/champions/ahri/counter?role=mid&patch=15_9": counterPage,
		"https://u.gg/lol/champions/zed/counter?role=mid&patch=15_9":  "<html>nothing</html>",
	}}

	got, err := c.Matchups(context.Background(), "Ahri", "mid", "15.9.1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = c.Matchups(context.Background(), "Zed", "mid", "15.9.1")
	assert.ErrorIs(t, err, extracthtml.ErrMarkerNotFound)

	_, err = c.Matchups(context.Background(), "Lux", "mid", "15.9.1")
	assert.ErrorContains(t, err, "fetch counter page")
}

func TestAliasTable(t *testing.T) {
	t.Parallel()

	ssr := pageSSR(t)
	ssr = append(ssr, extracthtml.SSREntry{
		Key: "https://static.bigbrain.gg/assets/lol/seo-champion-names.json",
		Raw: json.RawMessage(`{"data":{"238":{"name":"Zed","altName":"Zedd"}}}`),
	})

	tbl, err := AliasTable(ssr)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	e, err := tbl.Resolve("zedd")
	require.NoError(t, err)
	assert.Equal(t, "zed", e.Slug)
}

func TestAliasTable_WithoutSEOBlock(t *testing.T) {
	t.Parallel()

	tbl, err := AliasTable(pageSSR(t))
	require.NoError(t, err)
	e, err := tbl.Resolve("ahri")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ahri"}, e.Aliases)
}

func TestAliasTable_MalformedSEOBlock(t *testing.T) {
	t.Parallel()

	ssr := append(pageSSR(t), extracthtml.SSREntry{
		Key: "https://static.bigbrain.gg/assets/lol/seo-champion-names.json",
		Raw: json.RawMessage(`"not an entry"`),
	})
	_, err := AliasTable(ssr)
	require.Error(t, err)
	assert.False(t, errors.Is(err, extracthtml.ErrSubdataNotFound), "err=%v", err)
	assert.Contains(t, err.Error(), "seo-champion-names.json")
}

func TestClient_AliasTable(t *testing.T) {
	t.Parallel()

	c := &Client{Fetcher: stubFetcher{
		"https://u.gg/lol/champions/aatrox/counter?role=top&patch=15_9": counterPage,
	}}
	tbl, err := c.AliasTable(context.Background(), "15.9.1")
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
}
