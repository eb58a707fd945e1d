// Package history persists the user's display currency and recently viewed
// assets, and keeps the viewed snapshots fresh.
//
// A [Service] holds the state in memory and writes every change through to
// a [Store]: a JSON file ([FileStore]), a Redis key ([RedisStore]) or a
// MongoDB document ([MongoStore]).
//
// # Stale-while-revalidate
//
// Each [Entry] remembers the currency its snapshot is priced in. Changing
// the currency with [Service.SetCurrency] starts a background refetch of
// every entry that no longer matches; [Service.RecentFresh] hands back the
// stored list right away and delivers the refreshed one on a channel. A
// failed refetch keeps the old snapshot.
package history
