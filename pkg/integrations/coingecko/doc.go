// Package coingecko is the data gateway for the CoinGecko v3 market data API.
//
// # Operations
//
// [Client] exposes three read-only operations, each of which consults the
// cache before going to the network:
//
//   - [Client.ListTopAssets]: /coins/markets ordered by market cap
//   - [Client.GetAssetDetail]: /coins/{id} with market data
//   - [Client.SearchAssets]: /search free-text lookup
//
// Cache keys include every request parameter, so a listing in "usd" and one
// in "eur" are separate entries:
//
//	topAssets:usd:50
//	assetDetail:bitcoin:usd
//	search:btc
//
// # Errors
//
// Every failure is an [errors.Error] with one of these codes:
//
//   - NETWORK_UNAVAILABLE after all retries got no response
//   - RATE_LIMITED after all retries got HTTP 429
//   - NOT_FOUND for an unknown asset id
//   - INVALID_ARGUMENT for an empty asset id (no request is made)
//   - UPSTREAM_ERROR for any other status or a malformed payload
//
// Context cancellation is returned as is.
//
// [errors.Error]: github.com/matzehuels/tokenfolio/pkg/errors.Error
package coingecko
