// Package app wires configuration into the collaborators the commands use:
// the document fetcher and its cache, the patch source, the alias-table
// store and catalog, and the vendor clients.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"champhelper/internal/abilities"
	"champhelper/internal/config"
	"champhelper/internal/extracthtml"
	"champhelper/internal/metrics"
	"champhelper/internal/patch"
	"champhelper/internal/resolve"
	"champhelper/internal/storage"
	"champhelper/internal/ugg"
)

// App holds the collaborators built from one Config.
type App struct {
	Config  config.Config
	Fetcher extracthtml.Fetcher

	// Logf receives operational notes. Nil discards them.
	Logf func(format string, v ...any)
}

// New builds an App. A nil client uses http.DefaultClient. When HTML caching
// is on, fetched bodies are kept under <cache.dir>/html for cache.max_age.
func New(cfg config.Config, client *http.Client) *App {
	loader := extracthtml.NewLoader(client, cfg.HTTP.Timeout.Duration, cfg.HTTP.UserAgent)
	loader.Job = cfg.Metrics.Job

	var f extracthtml.Fetcher = loader
	if cfg.Cache.HTML {
		f = &extracthtml.CachedFetcher{
			Next:  loader,
			Cache: extracthtml.NewDiskCache(filepath.Join(cfg.Cache.Dir, "html"), cfg.Cache.MaxAge.Duration),
		}
	}
	return &App{Config: cfg, Fetcher: f}
}

func (a *App) logf(format string, v ...any) {
	if a.Logf != nil {
		a.Logf(format, v...)
	}
}

// PatchSource returns a version source using the configured URLs.
func (a *App) PatchSource() *patch.Source {
	s := patch.NewSource(a.Fetcher)
	if u := a.Config.Sources.Versions; u != "" {
		s.VersionsURL = u
	}
	s.ScheduleURL = a.Config.Sources.Schedule
	s.OnScheduleError = func(err error) {
		a.logf("patch schedule unavailable, estimating release dates: %v", err)
	}
	return s
}

// Patch returns the pinned patch if one is configured, otherwise the
// effective patch.
func (a *App) Patch(ctx context.Context) (string, error) {
	if pin := a.Config.Patch.Pin; pin != "" {
		return pin, nil
	}
	id, _, err := a.PatchSource().Effective(ctx, a.Config.Patch.GraceDays)
	if err != nil {
		return "", fmt.Errorf("effective patch: %w", err)
	}
	a.logf("effective patch %s", id)
	return id, nil
}

// OpenStore opens the configured alias-table store. The caller closes it.
func (a *App) OpenStore(ctx context.Context) (storage.TableStore, error) {
	sc := a.Config.Store
	return storage.New(ctx, storage.Config{Kind: sc.Kind, DSN: sc.DSN, Name: sc.Name})
}

// Ugg returns a u.gg client using the configured counter page.
func (a *App) Ugg() *ugg.Client {
	return &ugg.Client{Fetcher: a.Fetcher, CounterPage: a.Config.Sources.CounterPage}
}

// Catalog returns an alias-table catalog over store that rebuilds from u.gg
// on miss. store may be nil to always rebuild.
func (a *App) Catalog(store storage.TableStore) *resolve.Catalog {
	kind := a.Config.Store.Kind
	c := &resolve.Catalog{
		Build: a.Ugg().AliasTable,
		OnLoad: func(result string) {
			metrics.RecordStore(kind, result)
			a.logf("alias table store=%s result=%s", kind, result)
		},
	}
	if store != nil {
		c.Store = store
	}
	return c
}

// Resolver returns a resolver that reports its tiers to metrics.
func (a *App) Resolver() resolve.Resolver {
	return resolve.Resolver{OnResolve: metrics.RecordResolve}
}

func (a *App) ddragonURL() string {
	if u := a.Config.Sources.DDragon; u != "" {
		return u
	}
	return abilities.DefaultDDragonURL
}

// KeyTable builds the Data Dragon key table for version.
func (a *App) KeyTable(ctx context.Context, version string) (*resolve.KeyTable, error) {
	u := a.ddragonURL() + "/" + version + "/data/en_US/champion.json"
	var doc struct {
		Data json.RawMessage `json:"data"`
	}
	if err := extracthtml.FetchJSON(ctx, a.Fetcher, u, &doc); err != nil {
		return nil, fmt.Errorf("fetch champion list: %w", err)
	}
	return resolve.BuildKeyTable(doc.Data)
}

// Abilities returns an ability client using the configured vendor URLs.
func (a *App) Abilities() *abilities.Client {
	c := abilities.NewClient(a.Fetcher)
	c.DDragonURL = a.ddragonURL()
	if u := a.Config.Sources.Meraki; u != "" {
		c.MerakiURL = u
	}
	if u := a.Config.Sources.CDragon; u != "" {
		c.CDragonURL = u
	}
	c.OnFallback = func(err error) {
		a.logf("meraki unavailable, using raw client data: %v", err)
	}
	return c
}
