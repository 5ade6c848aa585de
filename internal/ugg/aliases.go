package ugg

import (
	"context"
	"errors"
	"fmt"

	"champhelper/internal/extracthtml"
	"champhelper/internal/resolve"
)

// Any counter page carries the full champion list; this one is used to
// build alias tables.
const (
	aliasPageSlug = "aatrox"
	aliasPageRole = "top"
)

// AliasTable builds an alias table from the champion.json and SEO name
// blocks of ssr.
func AliasTable(ssr extracthtml.SSR) (*resolve.AliasTable, error) {
	champs, err := ssr.Data("en_US/champion.json")
	if err != nil {
		return nil, err
	}
	// The SEO block is optional; a present but broken one is an error.
	seo, err := ssr.Data("seo-champion-names.json")
	switch {
	case errors.Is(err, extracthtml.ErrSubdataNotFound):
		seo = nil
	case err != nil:
		return nil, err
	}
	return resolve.BuildAliasTable(champs, seo)
}

// AliasTable fetches a counter page at version and builds the alias table
// from it. It has the shape of resolve.Builder.
func (c *Client) AliasTable(ctx context.Context, version string) (*resolve.AliasTable, error) {
	ssr, err := c.Page(ctx, aliasPageSlug, aliasPageRole, version)
	if err != nil {
		return nil, err
	}
	t, err := AliasTable(ssr)
	if err != nil {
		return nil, fmt.Errorf("alias table from counter page: %w", err)
	}
	return t, nil
}
