// Package cli implements the tokenfolio command-line interface.
//
// Commands read market data through the CoinGecko gateway in
// pkg/integrations/coingecko and keep preferences in pkg/history:
//   - top: list assets by market cap, optionally filtered locally
//   - show: print one asset and remember it as recently viewed
//   - search: query the remote catalogue
//   - recent: list, remove or clear recently viewed assets
//   - currency: get, set or list the display currency
//   - browse: interactive list of top assets
//   - cache: inspect or clear the on-disk response cache
//
// Settings come from the TOML file in pkg/config, TOKENFOLIO_* environment
// variables and the persistent flags, in increasing precedence.
package cli
