package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const champions = `
  "https://static.bigbrain.gg/assets/lol/riot_static/15.9.1/data/en_US/champion.json": {"data": {
    "Aatrox": {"id": "Aatrox", "key": "266", "name": "Aatrox"},
    "Ahri": {"id": "Ahri", "key": "103", "name": "Ahri"},
    "Zed": {"id": "Zed", "key": "238", "name": "Zed"},
    "Yasuo": {"id": "Yasuo", "key": "157", "name": "Yasuo"}
  }},
  "https://static.bigbrain.gg/assets/lol/seo-champion-names.json": {"data": {}}`

const aatroxPage = `<script>window.__SSR_DATA__ = {` + champions + `}</script>`

const ahriPage = `<script>window.__SSR_DATA__ = {` + champions + `,
  "https://stats2.u.gg/lol/1.5/matchups/15_9/ranked_solo_5x5/103/1.5.0.json": {"data": {
    "world_emerald_plus_mid": {"counters": [
      {"champion_id": 238, "win_rate": 48.5, "gold_adv_15": -80, "pick_rate": 4, "matches": 900},
      {"champion_id": 157, "win_rate": 53, "gold_adv_15": 150, "pick_rate": 6, "matches": 100}
    ]}
  }}
}</script>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path + "?" + r.URL.RawQuery {
		case "/lol/champions/aatrox/counter?role=top&patch=15_9":
			_, _ = w.Write([]byte(aatroxPage))
		case "/lol/champions/ahri/counter?role=mid&patch=15_9",
			"/lol/champions/ahri/counter?role=top&patch=15_9":
			_, _ = w.Write([]byte(ahriPage))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runMatchups(t *testing.T, srv *httptest.Server, args ...string) (int, output, string) {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "champ.toml")
	cfg := fmt.Sprintf("[store]\nkind = \"sqlite\"\ndsn = %q\n\n[sources]\ncounter_page = \"%s/lol/champions/%%s/counter\"\n",
		filepath.Join(dir, "aliases.db"), srv.URL)
	if err := os.WriteFile(p, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	base := []string{"-config", p, "-env", filepath.Join(dir, "none.env"), "-patch", "15.9.1"}
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append(base, args...), &stdout, &stderr, srv.Client())

	var out output
	if code == 0 {
		if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
			t.Fatalf("bad json %v: %s", err, stdout.String())
		}
	}
	return code, out, stderr.String()
}

func TestRun_PageOrder(t *testing.T) {
	t.Parallel()

	code, out, stderr := runMatchups(t, newServer(t), "-role", "MID", "ahrii")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, stderr)
	}
	if out.Champion != "Ahri" || out.Slug != "ahri" || out.Role != "mid" || out.Patch != "15.9.1" {
		t.Fatalf("out=%+v", out)
	}
	if len(out.Counters) != 2 || out.Counters[0].Champion != "Zed" || out.Counters[0].WinRate != 51.5 {
		t.Fatalf("counters=%+v", out.Counters)
	}
}

func TestRun_SortAndFilter(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	code, out, stderr := runMatchups(t, srv, "-role", "mid", "-sort", "gd", "ahri")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, stderr)
	}
	if out.Counters[0].Champion != "Zed" || out.Counters[0].GoldDiff15 != 80 {
		t.Fatalf("sorted=%+v", out.Counters)
	}

	code, out, stderr = runMatchups(t, srv, "-role", "mid", "-sort", "wr", "-min-matches", "500", "ahri")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, stderr)
	}
	if len(out.Counters) != 1 || out.Counters[0].Champion != "Zed" {
		t.Fatalf("filtered=%+v", out.Counters)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	tests := []struct {
		name     string
		args     []string
		wantCode int
		want     string
	}{
		{"missing_role", []string{"ahri"}, 2, "usage: matchups"},
		{"missing_name", []string{"-role", "mid"}, 2, "usage: matchups"},
		{"bad_role", []string{"-role", "bot", "ahri"}, 2, "unknown -role"},
		{"bad_sort", []string{"-role", "mid", "-sort", "kda", "ahri"}, 2, "unknown -sort"},
		{"unknown_champion", []string{"-role", "mid", "qqqqqqqqqq"}, 1, "not recognized"},
		{"role_not_on_page", []string{"-role", "top", "ahri"}, 1, "lane matchup block not found"},
	}
	for _, tc := range tests {
		code, _, stderr := runMatchups(t, srv, tc.args...)
		if code != tc.wantCode || !strings.Contains(stderr, tc.want) {
			t.Fatalf("%s: code=%d stderr=%q", tc.name, code, stderr)
		}
	}
}
