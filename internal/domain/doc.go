// Package domain defines the core domain types and interfaces.
//
// Snippets, their language and expiry options, and the contracts the
// application layer depends on (repository, highlighter). No implementation
// code, only types and contracts, so adapters depend on domain and never the
// other way round.
package domain
