package livekenceng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantShop int64
		wantItem int64
	}{
		{"slug form", "https://shopee.co.id/Sepatu-Lari-Pria-i.12345.67890", 12345, 67890},
		{"path form", "https://shopee.co.id/product/12345/67890", 12345, 67890},
		{"trailing slash", "https://shopee.co.id/product/12345/67890/", 12345, 67890},
		{"query string ignored", "https://shopee.co.id/Tas-Wanita-i.555.777?sp_atk=abc&xptdk=def", 555, 777},
		{"surrounding whitespace", "  https://shopee.co.id/product/1/2  ", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shopID, itemID, err := ParseItemURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantShop, shopID)
			assert.Equal(t, tt.wantItem, itemID)
		})
	}
}

func TestParseItemURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"no ids", "https://shopee.co.id/some-page"},
		{"partial product path", "https://shopee.co.id/product/12345"},
		{"non numeric slug", "https://shopee.co.id/Produk-i.abc.def"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseItemURL(tt.url)
			assert.Error(t, err)
		})
	}
}
