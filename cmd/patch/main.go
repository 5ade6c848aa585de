// Command patch prints the effective game patch and the version records it
// was chosen from.
//
// Usage:
//
//	patch
//	patch -grace 5 -count 4
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"champhelper/internal/app"
	"champhelper/internal/patch"
)

type output struct {
	Effective string                `json:"effective"`
	Pinned    bool                  `json:"pinned,omitempty"`
	GraceDays int                   `json:"grace_days"`
	Records   []patch.VersionRecord `json:"records"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, http.DefaultClient, time.Now))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, httpClient *http.Client, now func() time.Time) int {
	fs := flag.NewFlagSet("patch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common app.Flags
	common.Register(fs)
	grace := fs.Int("grace", -1, "Days a new patch is skipped; 0 keeps the built-in default (default from config)")
	count := fs.Int("count", 0, "Number of versions to list (default from config)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}

	a, cleanup, code := app.Start(ctx, common, stderr, httpClient)
	defer cleanup()
	if code != 0 {
		return code
	}

	graceDays := a.Config.Patch.GraceDays
	if *grace >= 0 {
		graceDays = *grace
	}
	n := a.Config.Patch.Count
	if *count > 0 {
		n = *count
	}

	records, err := a.PatchSource().Records(ctx, n)
	if err != nil {
		fmt.Fprintf(stderr, "versions: %v\n", err)
		return 1
	}

	out := output{GraceDays: graceDays, Records: records}
	if pin := a.Config.Patch.Pin; pin != "" {
		out.Effective, out.Pinned = pin, true
	} else {
		out.Effective, err = patch.SelectEffective(records, now(), graceDays)
		if err != nil {
			fmt.Fprintf(stderr, "select: %v\n", err)
			return 1
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}
