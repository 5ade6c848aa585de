// Command resolve maps a free-text champion name (nickname, typo, odd
// spacing) to the canonical entry and prints it as JSON.
//
// Usage:
//
//	resolve "mundo"
//	resolve -keys "belvet"      # Data Dragon identifier instead of the alias table
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"champhelper/internal/app"
	"champhelper/internal/resolve"

	// register all alias-table stores; config picks one.
	_ "champhelper/internal/storage/all"
)

type entryResult struct {
	Query   string   `json:"query"`
	Tier    string   `json:"tier"`
	Patch   string   `json:"patch"`
	Slug    string   `json:"slug"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

type keyResult struct {
	Query string `json:"query"`
	Tier  string `json:"tier"`
	Patch string `json:"patch"`
	ID    string `json:"id"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, http.DefaultClient))
}

// run returns 0 on success, 1 when the name is not recognized or a source
// fails, and 2 on usage or configuration errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, httpClient *http.Client) int {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common app.Flags
	common.Register(fs)
	keys := fs.Bool("keys", false, "Resolve against the Data Dragon key table and print the identifier")
	minSim := fs.Float64("min-similarity", resolve.DefaultMinSimilarity, "Alias table: minimum similarity for an edit-distance match")
	maxDist := fs.Int("max-distance", resolve.DefaultMaxDistance, "Key table: maximum edit distance (> 0)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(stderr, "usage: resolve [flags] <champion name>")
		return 2
	}
	if *minSim <= 0 || *minSim > 1 {
		fmt.Fprintln(stderr, "-min-similarity must be in (0, 1]")
		return 2
	}
	if *maxDist <= 0 {
		fmt.Fprintln(stderr, "-max-distance must be > 0")
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

	r := a.Resolver()
	r.MinSimilarity = *minSim
	r.MaxDistance = *maxDist

	var out any
	if *keys {
		kt, err := a.KeyTable(ctx, version)
		if err != nil {
			fmt.Fprintf(stderr, "key table: %v\n", err)
			return 1
		}
		id, tier, err := r.Key(query, kt)
		if err != nil {
			return reportMiss(stderr, err)
		}
		out = keyResult{Query: query, Tier: string(tier), Patch: version, ID: id}
	} else {
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
			// The table was built but could not be cached; still usable.
			fmt.Fprintf(stderr, "warning: %v\n", err)
		}
		e, tier, err := r.Entity(query, tbl)
		if err != nil {
			return reportMiss(stderr, err)
		}
		out = entryResult{Query: query, Tier: string(tier), Patch: version, Slug: e.Slug, Name: e.Name, Aliases: e.Aliases}
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}

func reportMiss(stderr io.Writer, err error) int {
	if errors.Is(err, resolve.ErrEntityNotRecognized) {
		fmt.Fprintf(stderr, "%v (try a longer or different spelling)\n", err)
	} else {
		fmt.Fprintf(stderr, "resolve: %v\n", err)
	}
	return 1
}
