package printify

import (
	"context"
	"fmt"
	"net/http"
)

// GetShops lists the shops on the account. An empty account is ErrNoShops.
func (c *Client) GetShops(ctx context.Context) ([]Shop, error) {
	var shops []Shop
	if err := c.do(ctx, http.MethodGet, "/shops.json", nil, &shops); err != nil {
		return nil, err
	}
	if len(shops) == 0 {
		return nil, ErrNoShops
	}
	return shops, nil
}

// GetBlueprints fetches the full blueprint catalog
func (c *Client) GetBlueprints(ctx context.Context) ([]Blueprint, error) {
	var blueprints []Blueprint
	if err := c.do(ctx, http.MethodGet, "/catalog/blueprints.json", nil, &blueprints); err != nil {
		return nil, err
	}
	if blueprints == nil {
		blueprints = []Blueprint{}
	}
	return blueprints, nil
}

// GetBlueprint fetches a single blueprint by ID
func (c *Client) GetBlueprint(ctx context.Context, blueprintID int) (*Blueprint, error) {
	var bp Blueprint
	path := fmt.Sprintf("/catalog/blueprints/%d.json", blueprintID)
	if err := c.do(ctx, http.MethodGet, path, nil, &bp); err != nil {
		return nil, err
	}
	return &bp, nil
}

// GetPrintProviders lists the providers that fulfil a blueprint
func (c *Client) GetPrintProviders(ctx context.Context, blueprintID int) ([]PrintProvider, error) {
	var providers []PrintProvider
	path := fmt.Sprintf("/catalog/blueprints/%d/print_providers.json", blueprintID)
	if err := c.do(ctx, http.MethodGet, path, nil, &providers); err != nil {
		return nil, err
	}
	if providers == nil {
		providers = []PrintProvider{}
	}
	return providers, nil
}

func (c *Client) GetPrintProvider(ctx context.Context, providerID int) (*PrintProvider, error) {
	var pp PrintProvider
	path := fmt.Sprintf("/catalog/print_providers/%d.json", providerID)
	if err := c.do(ctx, http.MethodGet, path, nil, &pp); err != nil {
		return nil, err
	}
	return &pp, nil
}

// GetVariants lists the variants of a blueprint at a provider. The endpoint
// answers with either a bare list or {"variants": [...]}.
func (c *Client) GetVariants(ctx context.Context, blueprintID, providerID int) ([]CatalogVariant, error) {
	var variants VariantList
	path := fmt.Sprintf("/catalog/blueprints/%d/print_providers/%d/variants.json", blueprintID, providerID)
	if err := c.do(ctx, http.MethodGet, path, nil, &variants); err != nil {
		return nil, err
	}
	if variants == nil {
		variants = VariantList{}
	}
	return variants, nil
}
