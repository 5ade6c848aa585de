package resolve

import (
	"context"
	"errors"
	"fmt"
)

// ErrCacheMiss is returned by a Store that holds no table for a version.
var ErrCacheMiss = errors.New("alias table cache miss")

// Store persists alias tables keyed by version. A stored table for a
// different version counts as a miss.
type Store interface {
	Load(ctx context.Context, version string) (*AliasTable, error)
	Save(ctx context.Context, version string, t *AliasTable) error
}

// Builder produces a fresh alias table for version.
type Builder func(ctx context.Context, version string) (*AliasTable, error)

// Catalog serves alias tables from a Store and rebuilds on miss.
type Catalog struct {
	Store Store
	Build Builder

	// OnLoad, if set, is called with "hit", "miss", "save" or "error".
	OnLoad func(result string)
}

func (c *Catalog) report(result string) {
	if c.OnLoad != nil {
		c.OnLoad(result)
	}
}

// Table returns the alias table for version. On a store miss it builds one
// and saves it; a failed save is returned together with the built table.
func (c *Catalog) Table(ctx context.Context, version string) (*AliasTable, error) {
	if c.Store != nil {
		t, err := c.Store.Load(ctx, version)
		switch {
		case err == nil:
			c.report("hit")
			return t, nil
		case errors.Is(err, ErrCacheMiss):
			c.report("miss")
		default:
			c.report("error")
			return nil, fmt.Errorf("load alias table %s: %w", version, err)
		}
	}

	if c.Build == nil {
		return nil, fmt.Errorf("alias table %s: %w", version, ErrCacheMiss)
	}
	t, err := c.Build(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("build alias table %s: %w", version, err)
	}

	if c.Store != nil {
		if err := c.Store.Save(ctx, version, t); err != nil {
			c.report("error")
			return t, fmt.Errorf("save alias table %s: %w", version, err)
		}
		c.report("save")
	}
	return t, nil
}
