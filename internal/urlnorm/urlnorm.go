// Package urlnorm derives stable store identifiers and canonical
// provider URLs from raw product links, and probes URL reachability.
package urlnorm

import (
	"net/url"
	"strings"
)

// Host labels dropped when deriving a store name.
var skipPrefixes = map[string]bool{
	"www":      true,
	"es":       true,
	"articulo": true,
	"super":    true,
}

// StoreName derives the normalized store name from a URL, or "" when no
// usable host exists. "ML" is shorthand used by the purchase exports.
func StoreName(rawURL string) string {
	if rawURL == "ML" {
		return "mercadolibre"
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	parts := strings.Split(strings.ToLower(u.Hostname()), ".")
	filtered := make([]string, 0, len(parts))
	for _, p := range parts {
		if !skipPrefixes[p] {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) < 2 {
		return ""
	}
	return strings.ToLower(filtered[0])
}

// DomainStore returns the bare domain stored as store_url.
func DomainStore(rawURL string) string {
	if rawURL == "mercadolibre" || rawURL == "ML" {
		return "www.mercadolibre.com.mx"
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, "articulo.mercadolibre") {
		host = strings.Replace(host, "articulo.mercadolibre", "www.mercadolibre", 1)
	}
	return host
}

// rule is one entry of the ordered canonicalization table. The first
// rule whose match returns true decides the canonical form.
type rule struct {
	match     func(host string) bool
	canonical func(scheme, host, path string) string
}

func hostContains(substrs ...string) func(string) bool {
	return func(host string) bool {
		for _, s := range substrs {
			if strings.Contains(host, s) {
				return true
			}
		}
		return false
	}
}

func baseOnly(scheme, host, _ string) string {
	return scheme + "://" + host
}

func keepPath(scheme, host, path string) string {
	return scheme + "://" + host + path
}

// Ordered per-retailer rules. New retailers are added here, not in
// control flow.
var canonicalRules = []rule{
	// Warehouse and marketplace retailers identified by home page alone.
	{
		match: hostContains(
			"temu.com", "shein.com", "walmart.com.mx", "soriana.com",
			"costco.com.mx", "liverpool.com.mx", "sears.com.mx",
			"coppel.com", "elektra.com.mx", "samsclub.com.mx",
		),
		canonical: baseOnly,
	},
	// Mercadolibre article pages canonicalize to the www host.
	{
		match: hostContains("mercadolibre.com.mx"),
		canonical: func(scheme, host, _ string) string {
			return scheme + "://" + strings.Replace(host, "articulo.", "www.", 1)
		},
	},
	// Amazon product pages carry the id in /dp/ or /gp/product/; the
	// trailing /ref... segment is navigation noise.
	{
		match: hostContains("amazon."),
		canonical: func(scheme, host, path string) string {
			if strings.Contains(path, "/dp/") || strings.Contains(path, "/gp/product/") {
				if idx := strings.Index(path, "/ref"); idx >= 0 {
					path = path[:idx]
				}
			}
			return scheme + "://" + host + path
		},
	},
	// Marketplaces where the path carries the product id.
	{
		match: hostContains(
			"ebay.", "mercado", "aliexpress", "bestbuy",
			"target", "homedepot", "lowes", "officedepot",
		),
		canonical: keepPath,
	},
}

// CanonicalProviderURL normalizes a product URL into the provider
// natural key: query stripped, per-retailer noise removed. It never
// fails; an unparseable URL falls back to the raw URL with any query
// string cut off.
func CanonicalProviderURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		if idx := strings.Index(trimmed, "?"); idx >= 0 {
			return trimmed[:idx]
		}
		return trimmed
	}
	scheme := u.Scheme
	host := strings.ToLower(u.Host)
	path := u.Path
	for _, r := range canonicalRules {
		if r.match(host) {
			return r.canonical(scheme, host, path)
		}
	}
	// Default: keep path, drop query.
	return keepPath(scheme, host, path)
}
