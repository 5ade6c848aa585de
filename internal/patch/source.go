package patch

import (
	"context"
	"fmt"
	"time"

	"champhelper/internal/extracthtml"
)

const (
	// DefaultVersionsURL lists every Data Dragon version, newest first.
	DefaultVersionsURL = "https://ddragon.leagueoflegends.com/api/versions.json"

	// DefaultScheduleURL is the published patch schedule.
	DefaultScheduleURL = "https://support-leagueoflegends.riotgames.com/hc/en-us/articles/360018987893-Patch-Schedule-League-of-Legends"
)

// Source fetches version records over HTTP.
type Source struct {
	Fetcher     extracthtml.Fetcher
	VersionsURL string
	// ScheduleURL may be empty to always estimate release dates.
	ScheduleURL string

	// OnScheduleError, if set, receives schedule fetch or parse failures.
	// They are not fatal: release dates are estimated instead.
	OnScheduleError func(error)

	now func() time.Time
}

// NewSource returns a Source using the default URLs.
func NewSource(f extracthtml.Fetcher) *Source {
	return &Source{
		Fetcher:     f,
		VersionsURL: DefaultVersionsURL,
		ScheduleURL: DefaultScheduleURL,
	}
}

func (s *Source) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Latest returns up to count standard versions, newest first.
func (s *Source) Latest(ctx context.Context, count int) ([]string, error) {
	var all []string
	if err := extracthtml.FetchJSON(ctx, s.Fetcher, s.VersionsURL, &all); err != nil {
		return nil, fmt.Errorf("fetch versions: %w", err)
	}
	return StandardVersions(all, count), nil
}

// Records returns up to count version records with release dates.
func (s *Source) Records(ctx context.Context, count int) ([]VersionRecord, error) {
	versions, err := s.Latest(ctx, count)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, ErrNoVersionsAvailable
	}

	now := s.clock()
	var actual map[string]time.Time
	if s.ScheduleURL != "" {
		actual, err = s.schedule(ctx, now.Year())
		if err != nil && s.OnScheduleError != nil {
			s.OnScheduleError(err)
		}
	}
	return EstimateRecords(versions, actual, now), nil
}

func (s *Source) schedule(ctx context.Context, year int) (map[string]time.Time, error) {
	html, err := s.Fetcher.Fetch(ctx, s.ScheduleURL)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	return ParseSchedule(html, year)
}

// Effective returns the effective patch identifier and the records it was
// chosen from.
func (s *Source) Effective(ctx context.Context, graceDays int) (string, []VersionRecord, error) {
	records, err := s.Records(ctx, 2)
	if err != nil {
		return "", nil, err
	}
	id, err := SelectEffective(records, s.clock(), graceDays)
	if err != nil {
		return "", nil, err
	}
	return id, records, nil
}
