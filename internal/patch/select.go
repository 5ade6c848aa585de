// Package patch picks the game patch the rest of the tool should use.
//
// The newest patch is avoided for a few days after release, because
// third-party statistics sites need time to collect data for it.
package patch

import (
	"errors"
	"time"
)

// DefaultGraceDays is how long a new patch is skipped in favour of the
// previous one.
const DefaultGraceDays = 3

// ErrNoVersionsAvailable is returned when there is nothing to choose from.
var ErrNoVersionsAvailable = errors.New("no versions available")

// VersionRecord describes one released patch.
type VersionRecord struct {
	// Identifier is the Data Dragon version, e.g. "15.10.1".
	Identifier string `json:"ddragon_version"`
	// ClientVersion is the player-facing version, e.g. "25.10".
	ClientVersion string    `json:"client_version"`
	ReleaseDate   time.Time `json:"release_date"`
	IsEstimated   bool      `json:"is_estimated"`
}

// SelectEffective returns records[0].Identifier unless that release is less
// than graceDays calendar days old and an older record exists, in which case
// it returns records[1].Identifier. records must be ordered newest first.
// graceDays <= 0 selects DefaultGraceDays.
func SelectEffective(records []VersionRecord, now time.Time, graceDays int) (string, error) {
	if len(records) == 0 {
		return "", ErrNoVersionsAvailable
	}
	if graceDays <= 0 {
		graceDays = DefaultGraceDays
	}

	newest := records[0]
	if len(records) > 1 && daysBetween(newest.ReleaseDate, now) < graceDays {
		return records[1].Identifier, nil
	}
	return newest.Identifier, nil
}

// daysBetween counts calendar days from the date of a to the date of b.
func daysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
