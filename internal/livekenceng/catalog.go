package livekenceng

import (
	"context"
	"net/url"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
)

type accountsResponse struct {
	envelope
	Data []domain.ShopeeAccount `json:"data"`
}

type nichesResponse struct {
	envelope
	Niches []domain.Niche `json:"niches"`
}

type productSetsResponse struct {
	envelope
	ProductSets []domain.ProductSet `json:"product_sets"`
}

// ShopeeAccounts lists the member's registered seller accounts.
func (c *Client) ShopeeAccounts(ctx context.Context) ([]domain.ShopeeAccount, error) {
	query := url.Values{}
	query.Set("email", c.email)
	query.Set("password", c.password)

	var resp accountsResponse
	if err := c.do(ctx, "GET", "/api/members/shopee-accounts?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Niches lists the member's niches with their product sets.
func (c *Client) Niches(ctx context.Context) ([]domain.Niche, error) {
	var resp nichesResponse
	if err := c.do(ctx, "GET", "/api/members/niches", c.credentials(), &resp); err != nil {
		return nil, err
	}
	for i := range resp.Niches {
		fillItemIDs(resp.Niches[i].ProductSets)
	}
	return resp.Niches, nil
}

// ProductSets lists the member's product sets, items included.
func (c *Client) ProductSets(ctx context.Context) ([]domain.ProductSet, error) {
	var resp productSetsResponse
	if err := c.do(ctx, "GET", "/api/members/product-sets", c.credentials(), &resp); err != nil {
		return nil, err
	}
	fillItemIDs(resp.ProductSets)
	return resp.ProductSets, nil
}

// fillItemIDs backfills shop/item IDs from the product URL for items where the
// API left them blank. An unparseable URL leaves the item untouched.
func fillItemIDs(sets []domain.ProductSet) {
	for i := range sets {
		for j := range sets[i].Items {
			item := &sets[i].Items[j]
			if item.ShopID != 0 || item.URL == "" {
				continue
			}
			if shopID, itemID, err := ParseItemURL(item.URL); err == nil {
				item.ShopID = shopID
				item.ItemID = itemID
			}
		}
	}
}
