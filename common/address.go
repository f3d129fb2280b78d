// Package common holds small, dependency-free value helpers shared across
// xscanner: chain/address normalization and the typed error taxonomy.
package common

import "strings"

// NormalizeChain lowercases a chain symbol or name the way every address
// cache key and lookup must, per spec.md invariant 4.
func NormalizeChain(chain string) string {
	return strings.ToLower(strings.TrimSpace(chain))
}

// NormalizeAddress lowercases an address the way every address cache key
// and lookup must.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// CacheKey builds the canonical "lowercase(chain):lowercase(address)" key
// used by the address cache (spec.md invariant 4). No other casing is ever
// stored or queried.
func CacheKey(chain, address string) string {
	return NormalizeChain(chain) + ":" + NormalizeAddress(address)
}

// CanonicalSymbol uppercases a chain symbol for use in the deposit store
// and outbound events (spec.md glossary: "Chain symbol").
func CanonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
