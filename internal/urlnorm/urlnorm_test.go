package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreName(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"mercadolibre article page", "https://articulo.mercadolibre.com.mx/MLM-123-producto", "mercadolibre"},
		{"ML shorthand", "ML", "mercadolibre"},
		{"amazon mx", "https://www.amazon.com.mx/dp/B0ABC123", "amazon"},
		{"shein spanish subdomain", "https://es.shein.com/product.html", "shein"},
		{"walmart grocery subdomain", "https://super.walmart.com.mx/ip/123", "walmart"},
		{"uppercase host", "https://WWW.Temu.COM/mx", "temu"},
		{"no host", "not a url", ""},
		{"single label host", "https://localhost/x", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StoreName(tt.url))
		})
	}
}

func TestDomainStore(t *testing.T) {
	assert.Equal(t, "www.mercadolibre.com.mx", DomainStore("mercadolibre"))
	assert.Equal(t, "www.mercadolibre.com.mx", DomainStore("https://articulo.mercadolibre.com.mx/MLM-1"))
	assert.Equal(t, "www.amazon.com.mx", DomainStore("https://www.amazon.com.mx/dp/B0ABC"))
	assert.Equal(t, "", DomainStore("no host here"))
}

func TestCanonicalProviderURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"base-only retailer drops path and query",
			"https://www.temu.com/mx/producto-123.html?top=1&refer=x",
			"https://www.temu.com",
		},
		{
			"mercadolibre article host rewritten to www",
			"https://articulo.mercadolibre.com.mx/MLM-123-producto?searchVariation=1",
			"https://www.mercadolibre.com.mx",
		},
		{
			"amazon product page trims ref segment",
			"https://www.amazon.com.mx/Producto/dp/B0ABC123/ref=sr_1_1?keywords=figura",
			"https://www.amazon.com.mx/Producto/dp/B0ABC123",
		},
		{
			"amazon non-product page keeps path",
			"https://www.amazon.com.mx/gp/css/order-history?ref=nav",
			"https://www.amazon.com.mx/gp/css/order-history",
		},
		{
			"keep-path marketplace strips query",
			"https://www.ebay.com/itm/1234567890?hash=abc",
			"https://www.ebay.com/itm/1234567890",
		},
		{
			"default rule keeps path drops query",
			"https://example.com/a/b?q=1",
			"https://example.com/a/b",
		},
		{
			"unparseable url falls back to query strip",
			"://bad url?q=1",
			"://bad url",
		},
		{
			"empty input",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalProviderURL(tt.url))
		})
	}
}
