package patch

import (
	"strconv"
	"strings"
)

// StandardVersions filters a Data Dragon versions list (newest first) down to
// the first count patches, one per major.minor. "lolpatch_*" entries and
// anything not starting with two numeric components are skipped. count <= 0
// keeps every patch.
func StandardVersions(all []string, count int) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range all {
		if strings.HasPrefix(v, "lolpatch_") {
			continue
		}
		mm, ok := MajorMinor(v)
		if !ok {
			continue
		}
		if _, dup := seen[mm]; dup {
			continue
		}
		seen[mm] = struct{}{}
		out = append(out, v)
		if count > 0 && len(out) >= count {
			break
		}
	}
	return out
}

// MajorMinor returns the "major.minor" prefix of v.
func MajorMinor(v string) (string, bool) {
	parts := strings.Split(v, ".")
	if len(parts) < 2 || !isDigits(parts[0]) || !isDigits(parts[1]) {
		return "", false
	}
	return parts[0] + "." + parts[1], true
}

// ClientVersion converts a Data Dragon version to the player-facing one:
// major + 10, minor unchanged ("15.10.1" -> "25.10"). Versions it does not
// understand come back unchanged.
func ClientVersion(ddragon string) string {
	parts := strings.Split(ddragon, ".")
	if len(parts) < 2 || !isDigits(parts[0]) {
		return ddragon
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return ddragon
	}
	return strconv.Itoa(major+10) + "." + parts[1]
}

// URLTag formats a version for u.gg query strings: "15.9.1" -> "15_9".
func URLTag(v string) string {
	if mm, ok := MajorMinor(v); ok {
		v = mm
	}
	return strings.ReplaceAll(v, ".", "_")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
