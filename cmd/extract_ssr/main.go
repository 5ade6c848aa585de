// Command extract-ssr reads a page (stdin or URL), extracts the JSON object
// assigned after a marker and prints it.
//
// Usage (stdin):
//
//	cat counter.html | extract-ssr
//
// Usage (fetch URL, print one SSR sub-block):
//
//	extract-ssr -url "https://u.gg/lol/champions/ahri/counter" -suffix en_US/champion.json
//
// Debug (list SSR keys):
//
//	cat counter.html | extract-ssr -keys matchups
//
// Debug (print scripts containing the marker):
//
//	cat counter.html | extract-ssr -scripts
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
	"champhelper/internal/extracthtml"
	"champhelper/internal/metrics"
)

func main() {
	os.Exit(run(
		context.Background(),
		os.Args[1:],
		os.Stdin,
		os.Stdout,
		os.Stderr,
		http.DefaultClient,
	))
}

// run returns a Unix-style exit code:
//   - 0 for success
//   - 2 for usage/config errors
//   - 1 for operational/runtime errors
func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	httpClient *http.Client,
) int {
	fs := flag.NewFlagSet("extract-ssr", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common app.Flags
	common.Register(fs)
	urlFlag := fs.String("url", "", "Optional: fetch the page from URL instead of stdin")
	marker := fs.String("marker", extracthtml.SSRMarker, "Text that precedes the JSON object")
	suffix := fs.String("suffix", "", "Print only the data block whose key ends with this suffix")
	keys := fs.String("keys", "", "Debug: list SSR keys containing this text (\"*\" lists all)")
	scripts := fs.Bool("scripts", false, "Debug: print inline scripts containing the marker (not JSON)")
	inScripts := fs.Bool("in-scripts", false, "Search inline script bodies only, skipping markup")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *marker == "" {
		fmt.Fprintln(stderr, "-marker must not be empty")
		return 2
	}

	a, cleanup, code := app.Start(ctx, common, stderr, httpClient)
	defer cleanup()
	if code != 0 {
		return code
	}

	var html string
	var err error
	if *urlFlag != "" {
		html, err = a.Fetcher.Fetch(ctx, *urlFlag)
	} else {
		html, err = extracthtml.NewLoader(httpClient, 0, "").Load(ctx, extracthtml.Input{Stdin: stdin})
	}
	if err != nil {
		fmt.Fprintf(stderr, "load html: %v\n", err)
		return 1
	}

	if *scripts {
		if err := extracthtml.DebugPrintScripts(stdout, html, *marker); err != nil {
			fmt.Fprintf(stderr, "debug scripts: %v\n", err)
			return 1
		}
		return 0
	}

	extract := extracthtml.ExtractBalancedJSON
	if *inScripts {
		extract = extracthtml.ExtractFromScripts
	}
	start := time.Now()
	obj, err := extract(html, *marker)
	metrics.RecordExtract(*marker, extracthtml.ErrorKind(err), time.Since(start))
	if err != nil {
		fmt.Fprintf(stderr, "extract: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if *keys != "" || *suffix != "" {
		var ssr extracthtml.SSR
		if err := obj.Decode(&ssr); err != nil {
			fmt.Fprintf(stderr, "decode ssr: %v\n", err)
			return 1
		}

		if *keys != "" {
			substr := *keys
			if substr == "*" {
				substr = ""
			}
			for _, k := range ssr.Keys(substr) {
				fmt.Fprintln(stdout, k)
			}
			return 0
		}

		data, err := ssr.Data(*suffix)
		if err != nil {
			fmt.Fprintf(stderr, "subdata: %v\n", err)
			return 1
		}
		if err := enc.Encode(data); err != nil {
			fmt.Fprintf(stderr, "encode json: %v\n", err)
			return 1
		}
		return 0
	}

	if err := enc.Encode(obj.Raw); err != nil {
		fmt.Fprintf(stderr, "encode json: %v\n", err)
		return 1
	}
	return 0
}
