package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Severity classifies a validation Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var storeKinds = map[string]bool{"file": true, "sqlite": true, "postgres": true, "mssql": true}

// Validate checks cfg and returns every problem found: errors first, each
// group sorted by path.
func Validate(cfg Config) []Issue {
	var errs, warns []Issue
	bad := func(path, format string, args ...any) {
		errs = append(errs, Issue{SeverityError, path, fmt.Sprintf(format, args...)})
	}
	warn := func(path, format string, args ...any) {
		warns = append(warns, Issue{SeverityWarning, path, fmt.Sprintf(format, args...)})
	}

	if cfg.HTTP.Timeout.Duration <= 0 {
		bad("http.timeout", "must be positive, got %s", cfg.HTTP.Timeout.Duration)
	}

	if cfg.Cache.HTML && strings.TrimSpace(cfg.Cache.Dir) == "" {
		bad("cache.dir", "required when cache.html is enabled")
	}
	if cfg.Cache.MaxAge.Duration < 0 {
		bad("cache.max_age", "must not be negative")
	}

	if !storeKinds[cfg.Store.Kind] {
		bad("store.kind", "unknown kind %q (want file, sqlite, postgres or mssql)", cfg.Store.Kind)
	}
	if cfg.Store.Kind != "file" && strings.TrimSpace(cfg.Store.DSN) == "" {
		bad("store.dsn", "required for store.kind=%s", cfg.Store.Kind)
	}

	if cfg.Patch.GraceDays < 0 {
		bad("patch.grace_days", "must not be negative")
	}
	if cfg.Patch.Count < 1 {
		bad("patch.count", "must be at least 1")
	} else if cfg.Patch.Count < 2 {
		warn("patch.count", "with a single version the grace period can never fall back")
	}

	for path, raw := range map[string]string{
		"sources.versions": cfg.Sources.Versions,
		"sources.ddragon":  cfg.Sources.DDragon,
		"sources.meraki":   cfg.Sources.Meraki,
		"sources.cdragon":  cfg.Sources.CDragon,
	} {
		if msg := checkURL(raw); msg != "" {
			bad(path, "%s", msg)
		}
	}
	if cfg.Sources.Schedule == "" {
		warn("sources.schedule", "empty; release dates will always be estimated")
	} else if msg := checkURL(cfg.Sources.Schedule); msg != "" {
		bad("sources.schedule", "%s", msg)
	}
	if !strings.Contains(cfg.Sources.CounterPage, "%s") {
		bad("sources.counter_page", "must contain %%s for the champion slug")
	}

	switch cfg.Metrics.Backend {
	case "", "none":
	case "datadog":
		if cfg.Metrics.FlushEvery.Duration <= 0 {
			bad("metrics.flush_every", "must be positive for the datadog backend")
		}
	default:
		bad("metrics.backend", "unknown backend %q (want none or datadog)", cfg.Metrics.Backend)
	}

	sortByPath(errs)
	sortByPath(warns)
	return append(errs, warns...)
}

func checkURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "required"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err.Error()
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("unsupported scheme %q", u.Scheme)
	}
	return ""
}

func sortByPath(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
}
