package livekenceng

import (
	"context"
)

type replaceProductsRequest struct {
	credentials
	ShopeeAccountID int    `json:"shopee_account_id"`
	SessionID       string `json:"session_id"`
	ProductSetID    int    `json:"product_set_id"`
}

type clearProductsRequest struct {
	credentials
	ShopeeAccountID int    `json:"shopee_account_id"`
	SessionID       string `json:"session_id"`
}

// ReplaceProducts replaces the published product list of a live session with
// the contents of the given product set.
func (c *Client) ReplaceProducts(ctx context.Context, accountID int, sessionID string, productSetID int) error {
	req := replaceProductsRequest{
		credentials:     c.credentials(),
		ShopeeAccountID: accountID,
		SessionID:       sessionID,
		ProductSetID:    productSetID,
	}

	var resp envelope
	return c.do(ctx, "POST", "/api/shopee-live/replace-products", req, &resp)
}

// ClearProducts removes every published product from a live session.
func (c *Client) ClearProducts(ctx context.Context, accountID int, sessionID string) error {
	req := clearProductsRequest{
		credentials:     c.credentials(),
		ShopeeAccountID: accountID,
		SessionID:       sessionID,
	}

	var resp envelope
	return c.do(ctx, "POST", "/api/shopee-live/clear-products", req, &resp)
}
