// Package ugg reads lane matchup statistics out of u.gg counter pages.
//
// A counter page embeds its data as an SSR object (see extracthtml.SSR).
// The champion.json block maps numeric champion ids to names and the
// matchups block holds per rank/region/role counter lists.
package ugg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"champhelper/internal/extracthtml"
	"champhelper/internal/patch"
)

// DefaultCounterPage is the counter page pattern; %s is the champion slug.
const DefaultCounterPage = "https://u.gg/lol/champions/%s/counter"

// ErrMatchupsNotFound means no matchups block carried the requested role.
var ErrMatchupsNotFound = errors.New("lane matchup block not found")

// Counter is one opposing champion, seen from the opponent's side: a high
// WinRate means the opponent wins the lane often.
type Counter struct {
	ChampionID int     `json:"champion_id"`
	Champion   string  `json:"champion"`
	WinRate    float64 `json:"win_rate"`
	GoldDiff15 float64 `json:"gold_diff_15"`
	PickRate   float64 `json:"pick_rate"`
	Matches    int     `json:"matches"`
}

// RankRoleKey names the matchup bucket used for role.
func RankRoleKey(role string) string {
	return "world_emerald_plus_" + strings.ToLower(role)
}

// CounterURL builds the counter page URL. pattern contains one %s for the
// slug. Empty role or version leave the parameter out; version is a Data
// Dragon version such as "15.9.1".
func CounterURL(pattern, slug, role, version string) string {
	if pattern == "" {
		pattern = DefaultCounterPage
	}
	u := fmt.Sprintf(pattern, strings.ToLower(slug))

	var params []string
	if role != "" {
		params = append(params, "role="+url.QueryEscape(strings.ToLower(role)))
	}
	if version != "" {
		params = append(params, "patch="+url.QueryEscape(patch.URLTag(version)))
	}
	if len(params) > 0 {
		u += "?" + strings.Join(params, "&")
	}
	return u
}

type rawCounter struct {
	ChampionID int      `json:"champion_id"`
	WinRate    float64  `json:"win_rate"`
	GoldAdv15  *float64 `json:"gold_adv_15"`
	PickRate   float64  `json:"pick_rate"`
	Matches    float64  `json:"matches"`
}

// ChampionNames maps numeric champion ids to display names using the
// champion.json block of ssr.
func ChampionNames(ssr extracthtml.SSR) (map[int]string, error) {
	data, err := ssr.Data("en_US/champion.json")
	if err != nil {
		return nil, err
	}
	var champs map[string]struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &champs); err != nil {
		return nil, fmt.Errorf("decode champion.json: %w", err)
	}

	names := make(map[int]string, len(champs))
	for _, c := range champs {
		id, err := strconv.Atoi(c.Key)
		if err != nil {
			continue
		}
		names[id] = c.Name
	}
	return names, nil
}

func counters(ssr extracthtml.SSR, role string) ([]rawCounter, error) {
	want := RankRoleKey(role)
	for _, e := range ssr {
		if !strings.Contains(e.Key, "matchups") {
			continue
		}
		var entry struct {
			Data map[string]struct {
				Counters []rawCounter `json:"counters"`
			} `json:"data"`
		}
		if err := json.Unmarshal(e.Raw, &entry); err != nil {
			return nil, fmt.Errorf("decode matchups %q: %w", e.Key, err)
		}
		if v, ok := entry.Data[want]; ok {
			return v.Counters, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMatchupsNotFound, want)
}

// Matchups returns the lane counters for role in page order. Counters
// without gold_adv_15 are dropped; rates are flipped to the opponent's
// side and rounded to two decimals. Unknown ids are named "#<id>".
func Matchups(ssr extracthtml.SSR, role string) ([]Counter, error) {
	names, err := ChampionNames(ssr)
	if err != nil {
		return nil, err
	}
	raw, err := counters(ssr, role)
	if err != nil {
		return nil, err
	}

	out := make([]Counter, 0, len(raw))
	for _, c := range raw {
		if c.GoldAdv15 == nil {
			continue
		}
		name, ok := names[c.ChampionID]
		if !ok {
			name = "#" + strconv.Itoa(c.ChampionID)
		}
		out = append(out, Counter{
			ChampionID: c.ChampionID,
			Champion:   name,
			WinRate:    round2(100 - c.WinRate),
			GoldDiff15: round2(-*c.GoldAdv15),
			PickRate:   round2(c.PickRate),
			Matches:    int(c.Matches),
		})
	}
	return out, nil
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // no -0 in output
	}
	return r
}

// Client fetches counter pages.
type Client struct {
	Fetcher     extracthtml.Fetcher
	CounterPage string
}

// Page fetches the counter page and decodes its SSR object.
func (c *Client) Page(ctx context.Context, slug, role, version string) (extracthtml.SSR, error) {
	u := CounterURL(c.CounterPage, slug, role, version)
	doc, err := c.Fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch counter page: %w", err)
	}
	ssr, err := extracthtml.DecodeSSR(doc, extracthtml.SSRMarker)
	if err != nil {
		return nil, fmt.Errorf("counter page %s: %w", u, err)
	}
	return ssr, nil
}

// Matchups fetches the counter page for slug and returns its counters.
func (c *Client) Matchups(ctx context.Context, slug, role, version string) ([]Counter, error) {
	ssr, err := c.Page(ctx, slug, role, version)
	if err != nil {
		return nil, err
	}
	return Matchups(ssr, role)
}
