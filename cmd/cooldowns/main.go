// Command cooldowns looks up ability cooldowns for one or more champions.
// Names are resolved against the Data Dragon key table; data comes from
// Meraki, falling back to the raw client files.
//
// Usage:
//
//	cooldowns ahri "lee sin" wukong
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"champhelper/internal/abilities"
	"champhelper/internal/app"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, http.DefaultClient))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, httpClient *http.Client) int {
	fs := flag.NewFlagSet("cooldowns", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common app.Flags
	common.Register(fs)
	workers := fs.Int("n", 4, "Champions fetched concurrently")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	var queries []string
	for _, q := range fs.Args() {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		fmt.Fprintln(stderr, "usage: cooldowns [flags] <champion> [champion...]")
		return 2
	}
	if *workers <= 0 {
		fmt.Fprintln(stderr, "-n must be > 0")
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
	kt, err := a.KeyTable(ctx, version)
	if err != nil {
		fmt.Fprintf(stderr, "key table: %v\n", err)
		return 1
	}

	r := a.Resolver()
	slugs := make([]string, len(queries))
	for i, q := range queries {
		id, _, err := r.Key(q, kt)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		slugs[i] = id
	}

	client := a.Abilities()
	results := make([]abilities.Result, len(slugs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for i, slug := range slugs {
		g.Go(func() error {
			res, err := client.Lookup(gctx, slug, version)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "abilities: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}
