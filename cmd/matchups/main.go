// Command matchups prints lane counter statistics for a champion from u.gg.
//
// Usage:
//
//	matchups -role mid ahri
//	matchups -role top -sort gd -min-matches 200 "k sante"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"champhelper/internal/app"
	"champhelper/internal/ugg"

	// register all alias-table stores; config picks one.
	_ "champhelper/internal/storage/all"
)

var roles = map[string]bool{"top": true, "jungle": true, "mid": true, "adc": true, "supp": true}

type output struct {
	Champion string        `json:"champion"`
	Slug     string        `json:"slug"`
	Role     string        `json:"role"`
	Patch    string        `json:"patch"`
	Counters []ugg.Counter `json:"counters"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, http.DefaultClient))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, httpClient *http.Client) int {
	fs := flag.NewFlagSet("matchups", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common app.Flags
	common.Register(fs)
	role := fs.String("role", "", "Lane: top, jungle, mid, adc or supp (required)")
	sortBy := fs.String("sort", "", "Order counters by wr, gd or matches (descending); empty keeps page order")
	minMatches := fs.Int("min-matches", 0, "Drop counters with fewer matches")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	*role = strings.ToLower(strings.TrimSpace(*role))
	if query == "" || *role == "" {
		fmt.Fprintln(stderr, "usage: matchups -role <lane> [flags] <champion name>")
		return 2
	}
	if !roles[*role] {
		fmt.Fprintf(stderr, "unknown -role %q (want top, jungle, mid, adc or supp)\n", *role)
		return 2
	}
	less, ok := orderings[*sortBy]
	if !ok {
		fmt.Fprintf(stderr, "unknown -sort %q (want wr, gd or matches)\n", *sortBy)
		return 2
	}

	a, cleanup, code := app.Start(ctx, common, stderr, httpClient)
	defer cleanup()
	if code != 0 {
		return code
	}

	version, err := a.Patch(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "patch: %v\n", err)
		return 1
	}

	store, err := a.OpenStore(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer store.Close()

	tbl, err := a.Catalog(store).Table(ctx, version)
	if err != nil {
		if tbl == nil {
			fmt.Fprintf(stderr, "alias table: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "warning: %v\n", err)
	}
	e, _, err := a.Resolver().Entity(query, tbl)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	counters, err := a.Ugg().Matchups(ctx, e.Slug, *role, version)
	if err != nil {
		fmt.Fprintf(stderr, "matchups: %v\n", err)
		return 1
	}

	kept := counters[:0]
	for _, c := range counters {
		if c.Matches >= *minMatches {
			kept = append(kept, c)
		}
	}
	if less != nil {
		sort.SliceStable(kept, func(i, j int) bool { return less(kept[i], kept[j]) })
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	out := output{Champion: e.Name, Slug: e.Slug, Role: *role, Patch: version, Counters: kept}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}

// orderings sort descending; nil keeps page order.
var orderings = map[string]func(a, b ugg.Counter) bool{
	"":        nil,
	"wr":      func(a, b ugg.Counter) bool { return a.WinRate > b.WinRate },
	"gd":      func(a, b ugg.Counter) bool { return a.GoldDiff15 > b.GoldDiff15 },
	"matches": func(a, b ugg.Counter) bool { return a.Matches > b.Matches },
}
