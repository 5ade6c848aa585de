package extracthtml

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ScriptBodies returns the text of every inline <script> element in document
// order. Script content is raw text, so entities are left untouched.
func ScriptBodies(htmlDoc string) []string {
	tok := html.NewTokenizer(strings.NewReader(htmlDoc))

	var out []string
	inScript := false
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return out

		case html.StartTagToken:
			name, _ := tok.TagName()
			inScript = string(name) == "script"

		case html.EndTagToken, html.SelfClosingTagToken:
			inScript = false

		case html.TextToken:
			if inScript {
				out = append(out, string(tok.Text()))
			}
		}
	}
}

// ExtractFromScripts runs ExtractBalancedJSON on each inline script that
// contains marker and returns the first success.
//
// Use it when the marker may also appear in markup (e.g. a preload hint)
// ahead of the script that actually assigns it. Start/End are shifted to
// document offsets when the script text can be located verbatim.
func ExtractFromScripts(htmlDoc, marker string) (*Extracted, error) {
	if marker == "" {
		return nil, ErrEmptyMarker
	}

	var lastErr error
	for _, body := range ScriptBodies(htmlDoc) {
		if !strings.Contains(body, marker) {
			continue
		}
		obj, err := ExtractBalancedJSON(body, marker)
		if err != nil {
			lastErr = err
			continue
		}
		if off := strings.Index(htmlDoc, body); off >= 0 {
			obj.Start += off
			obj.End += off
		}
		return obj, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %q in any <script>", ErrMarkerNotFound, marker)
}

// ErrorKind returns a short label for err, used as a metrics tag.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyMarker):
		return "empty_marker"
	case errors.Is(err, ErrMarkerNotFound):
		return "marker_not_found"
	case errors.Is(err, ErrNoOpeningBrace):
		return "no_opening_brace"
	case errors.Is(err, ErrUnbalancedBraces):
		return "unbalanced_braces"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	case errors.Is(err, ErrSubdataNotFound):
		return "subdata_not_found"
	default:
		return "error"
	}
}
