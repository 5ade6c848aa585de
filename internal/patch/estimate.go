package patch

import "time"

// patchInterval is the usual gap between two patches.
const patchInterval = 14 * 24 * time.Hour

// EstimateRecords pairs each version (newest first) with a release date.
// Known dates come from actual, keyed by client "major.minor" or Data Dragon
// "major.minor". Unknown dates are estimated: the newest patch on the most
// recent Wednesday on or before now, every older one two weeks earlier than
// the one before it.
func EstimateRecords(versions []string, actual map[string]time.Time, now time.Time) []VersionRecord {
	y, m, d := now.Date()
	estimate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	estimate = estimate.AddDate(0, 0, -int((now.Weekday()-time.Wednesday+7)%7))

	out := make([]VersionRecord, 0, len(versions))
	for _, v := range versions {
		rec := VersionRecord{
			Identifier:    v,
			ClientVersion: ClientVersion(v),
			ReleaseDate:   estimate,
			IsEstimated:   true,
		}
		if when, ok := lookupDate(actual, v); ok {
			rec.ReleaseDate = when
			rec.IsEstimated = false
		}
		out = append(out, rec)
		estimate = estimate.Add(-patchInterval)
	}
	return out
}

func lookupDate(actual map[string]time.Time, v string) (time.Time, bool) {
	if len(actual) == 0 {
		return time.Time{}, false
	}
	if d, ok := actual[ClientVersion(v)]; ok {
		return d, true
	}
	if mm, ok := MajorMinor(v); ok {
		if d, ok := actual[mm]; ok {
			return d, true
		}
	}
	return time.Time{}, false
}
