package extracthtml

import (
	"encoding/json"
	"errors"
)

// SSRMarker precedes the server-side-render object on u.gg pages.
const SSRMarker = "window.__SSR_DATA__"

// Extraction failures. Callers match them with errors.Is; the returned errors
// wrap these with the marker or parser detail.
var (
	ErrEmptyMarker      = errors.New("empty marker")
	ErrMarkerNotFound   = errors.New("marker not found")
	ErrNoOpeningBrace   = errors.New("no opening brace after marker")
	ErrUnbalancedBraces = errors.New("unbalanced braces")
	ErrMalformedJSON    = errors.New("malformed json")
	ErrSubdataNotFound  = errors.New("subdata not found")
)

// Extracted is one JSON object lifted out of a document.
type Extracted struct {
	// Value is the decoded object. Numbers are json.Number.
	Value any

	// Raw is exactly document[Start:End].
	Raw json.RawMessage

	// Start indexes the opening '{'; End is one past the matching '}'.
	Start int
	End   int
}

// Decode unmarshals the raw object into v.
func (e *Extracted) Decode(v any) error {
	return json.Unmarshal(e.Raw, v)
}

// SSR is a server-side-render payload: source URL -> {"data": ...}, kept in
// document order. Several URLs often match the same suffix; the first one on
// the page wins.
type SSR []SSREntry

// SSREntry is one member of an SSR object.
type SSREntry struct {
	Key string
	Raw json.RawMessage
}
