package printify

import (
	"context"
	"net/http"

	"printkit/internal/models"
)

// CreateProduct submits a new product to the bound shop
func (c *Client) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*Product, error) {
	path, err := c.shopPath("/products.json")
	if err != nil {
		return nil, err
	}

	var product Product
	if err := c.do(ctx, http.MethodPost, path, req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts returns the first page of the shop's products
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	path, err := c.shopPath("/products.json")
	if err != nil {
		return nil, err
	}

	var page productPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	if page == nil {
		return []Product{}, nil
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	path, err := c.shopPath("/products/%s.json", productID)
	if err != nil {
		return nil, err
	}

	var product Product
	if err := c.do(ctx, http.MethodGet, path, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, req models.CreateProductRequest) (*Product, error) {
	path, err := c.shopPath("/products/%s.json", productID)
	if err != nil {
		return nil, err
	}

	var product Product
	if err := c.do(ctx, http.MethodPut, path, req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	path, err := c.shopPath("/products/%s.json", productID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// PublishProduct pushes a product to the shop's sales channel. An empty
// salesChannelID lets the remote service pick the shop default.
func (c *Client) PublishProduct(ctx context.Context, productID, salesChannelID string) error {
	path, err := c.shopPath("/products/%s/publish.json", productID)
	if err != nil {
		return err
	}

	req := publishRequest{
		SalesChannelID: salesChannelID,
		Title:          true,
		Description:    true,
		Images:         true,
		Variants:       true,
		Tags:           true,
	}
	return c.do(ctx, http.MethodPost, path, req, nil)
}
