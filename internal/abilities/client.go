package abilities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"champhelper/internal/extracthtml"
)

const (
	DefaultMerakiURL  = "https://cdn.merakianalytics.com/riot/lol/resources/latest/en-US/champions"
	DefaultDDragonURL = "https://ddragon.leagueoflegends.com/cdn"
	DefaultCDragonURL = "https://raw.communitydragon.org/latest/plugins/rcp-be-lol-game-data/global/default/v1/champions"
)

// ErrNoAbilityData means neither vendor returned usable rows.
var ErrNoAbilityData = errors.New("no ability data")

// Result is the outcome of Lookup.
type Result struct {
	Champion  string    `json:"champion"`
	Source    string    `json:"source"`
	Abilities []Ability `json:"abilities"`
}

// Client fetches ability data. Base URLs have no trailing slash.
type Client struct {
	Fetcher    extracthtml.Fetcher
	MerakiURL  string
	DDragonURL string
	CDragonURL string

	// OnFallback, if set, is called with the reason Meraki was skipped.
	OnFallback func(error)
}

// NewClient returns a Client using the default vendor URLs.
func NewClient(f extracthtml.Fetcher) *Client {
	return &Client{
		Fetcher:    f,
		MerakiURL:  DefaultMerakiURL,
		DDragonURL: DefaultDDragonURL,
		CDragonURL: DefaultCDragonURL,
	}
}

func join(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + path
}

// Meraki returns the Meraki rows for slug (a Data Dragon champion id).
func (c *Client) Meraki(ctx context.Context, slug string) ([]Ability, error) {
	body, err := c.Fetcher.Fetch(ctx, join(c.MerakiURL, slug+".json"))
	if err != nil {
		return nil, fmt.Errorf("fetch meraki %s: %w", slug, err)
	}
	return ParseMeraki([]byte(body))
}

// Raw returns rows built from Data Dragon (names, numeric key) and
// Community Dragon (cooldowns) for slug at the given Data Dragon version.
func (c *Client) Raw(ctx context.Context, slug, version string) ([]Ability, error) {
	body, err := c.Fetcher.Fetch(ctx, join(c.DDragonURL, version+"/data/en_US/champion/"+slug+".json"))
	if err != nil {
		return nil, fmt.Errorf("fetch ddragon %s: %w", slug, err)
	}
	dd, err := ParseDDragonChampion([]byte(body), slug)
	if err != nil {
		return nil, err
	}
	id, err := dd.NumericKey()
	if err != nil {
		return nil, err
	}

	body, err = c.Fetcher.Fetch(ctx, join(c.CDragonURL, fmt.Sprintf("%d.json", id)))
	if err != nil {
		return nil, fmt.Errorf("fetch cdragon %d: %w", id, err)
	}
	return ParseCDragon(dd, []byte(body))
}

// Lookup tries Meraki first and falls back to the raw client files when
// Meraki fails or has no rows for the champion.
func (c *Client) Lookup(ctx context.Context, slug, version string) (Result, error) {
	rows, err := c.Meraki(ctx, slug)
	if err == nil && len(rows) > 0 {
		return Result{Champion: slug, Source: SourceMeraki, Abilities: rows}, nil
	}
	if err == nil {
		err = fmt.Errorf("meraki has no abilities for %s", slug)
	}
	if c.OnFallback != nil {
		c.OnFallback(err)
	}

	rows, rawErr := c.Raw(ctx, slug, version)
	if rawErr != nil {
		return Result{}, fmt.Errorf("%w for %s: %w", ErrNoAbilityData, slug, rawErr)
	}
	if len(rows) == 0 {
		return Result{}, fmt.Errorf("%w for %s", ErrNoAbilityData, slug)
	}
	return Result{Champion: slug, Source: SourceCDragon, Abilities: rows}, nil
}
