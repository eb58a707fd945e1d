// Package market holds presentation helpers shared by the CLI and the
// history service: the supported display currencies, price formatting and
// the local name/symbol filter.
package market
