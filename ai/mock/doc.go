// Package mock provides deterministic test doubles for the ai package.
//
// MockEmbedder produces hash-derived vectors so the same text always embeds
// to the same vector, which keeps similarity-ordering assertions stable
// without any external service.
package mock
