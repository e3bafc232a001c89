package livekenceng

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Shopee product URLs come in two shapes:
//
//	https://shopee.co.id/Some-Product-Name-i.12345.67890
//	https://shopee.co.id/product/12345/67890
var slugPattern = regexp.MustCompile(`-i\.(\d+)\.(\d+)$`)

// ParseItemURL extracts the (shopID, itemID) pair from a Shopee product URL.
// Query strings and fragments are ignored.
func ParseItemURL(rawURL string) (shopID, itemID int64, err error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid product URL: %w", err)
	}

	path := strings.TrimSuffix(parsed.Path, "/")

	if m := slugPattern.FindStringSubmatch(path); m != nil {
		return parseIDPair(m[1], m[2])
	}

	if idx := strings.Index(path, "/product/"); idx >= 0 {
		parts := strings.Split(path[idx+len("/product/"):], "/")
		if len(parts) == 2 {
			return parseIDPair(parts[0], parts[1])
		}
	}

	return 0, 0, fmt.Errorf("no shop/item IDs in product URL %q", rawURL)
}

func parseIDPair(shop, item string) (int64, int64, error) {
	shopID, err := strconv.ParseInt(shop, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shop ID %q: %w", shop, err)
	}
	itemID, err := strconv.ParseInt(item, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid item ID %q: %w", item, err)
	}
	return shopID, itemID, nil
}
