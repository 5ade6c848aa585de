package extracthtml

import (
	"encoding/json"
	"fmt"
	"strings"
)

// scanState is where the brace scanner is relative to JSON string literals.
type scanState int

const (
	stateSearching scanState = iota // outside strings; braces count
	stateInString
	stateEscaped // previous byte was an unescaped backslash inside a string
	stateDone
)

func (s scanState) String() string {
	switch s {
	case stateSearching:
		return "searching"
	case stateInString:
		return "in_string"
	case stateEscaped:
		return "escaped"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// step advances the scanner by one byte and returns the new state and depth.
//
// Only ASCII bytes drive transitions, so scanning UTF-8 byte by byte is safe:
// '"', '\\', '{' and '}' never occur inside a multi-byte sequence.
func step(s scanState, c byte, depth int) (scanState, int) {
	switch s {
	case stateSearching:
		switch c {
		case '"':
			return stateInString, depth
		case '{':
			return stateSearching, depth + 1
		case '}':
			depth--
			if depth == 0 {
				return stateDone, 0
			}
			return stateSearching, depth
		}
	case stateInString:
		switch c {
		case '\\':
			return stateEscaped, depth
		case '"':
			return stateSearching, depth
		}
	case stateEscaped:
		// Whatever follows a backslash is consumed, including a second
		// backslash, so "\\" leaves the string open and "\"" does not close it.
		return stateInString, depth
	}
	return s, depth
}

// scanObject returns the index one past the '}' balancing the '{' at doc[start].
// ok is false when the document ends first.
func scanObject(doc string, start int) (end int, ok bool) {
	state, depth := stateSearching, 0
	for i := start; i < len(doc); i++ {
		state, depth = step(state, doc[i], depth)
		if state == stateDone {
			return i + 1, true
		}
	}
	return 0, false
}

// ExtractBalancedJSON finds the first occurrence of marker in doc and returns
// the first balanced JSON object that follows it.
//
// Braces inside string literals do not count. Only the first marker occurrence
// is considered; retrying with another marker is up to the caller.
//
// Errors wrap ErrEmptyMarker, ErrMarkerNotFound, ErrNoOpeningBrace,
// ErrUnbalancedBraces or ErrMalformedJSON.
func ExtractBalancedJSON(doc, marker string) (*Extracted, error) {
	if marker == "" {
		return nil, ErrEmptyMarker
	}

	at := strings.Index(doc, marker)
	if at < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMarkerNotFound, marker)
	}

	rel := strings.IndexByte(doc[at:], '{')
	if rel < 0 {
		return nil, fmt.Errorf("%w %q", ErrNoOpeningBrace, marker)
	}
	start := at + rel

	end, ok := scanObject(doc, start)
	if !ok {
		return nil, fmt.Errorf("%w: object after %q never closes", ErrUnbalancedBraces, marker)
	}

	raw := doc[start:end]
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	return &Extracted{
		Value: v,
		Raw:   json.RawMessage(raw),
		Start: start,
		End:   end,
	}, nil
}

// DecodeSSR extracts the object after marker and decodes it as an SSR map.
func DecodeSSR(doc, marker string) (SSR, error) {
	obj, err := ExtractBalancedJSON(doc, marker)
	if err != nil {
		return nil, err
	}
	var ssr SSR
	if err := obj.Decode(&ssr); err != nil {
		return nil, fmt.Errorf("%w: ssr container: %v", ErrMalformedJSON, err)
	}
	return ssr, nil
}
