package domain

// ShopeeAccount is a registered seller account able to host live sessions.
type ShopeeAccount struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Niche groups product sets by topic (e.g. fashion, electronics).
type Niche struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	ProductSets []ProductSet `json:"product_sets,omitempty"`
}

// ProductSet is an ordered collection of product listings applied to a live
// session as a unit. Item order is the order products appear in the session,
// not the order sets rotate in.
type ProductSet struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	NicheID     int           `json:"niche_id,omitempty"`
	Items       []ProductItem `json:"items,omitempty"`
}

// ProductItem is a single product listing inside a set. ShopID and ItemID are
// decoded from the Shopee URL when the URL carries them; zero means unknown.
type ProductItem struct {
	ID     int    `json:"id"`
	URL    string `json:"url"`
	ShopID int64  `json:"shop_id,omitempty"`
	ItemID int64  `json:"item_id,omitempty"`
}
