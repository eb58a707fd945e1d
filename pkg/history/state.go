package history

import (
	"slices"
	"time"

	"github.com/matzehuels/tokenfolio/pkg/integrations/coingecko"
)

// MaxRecent caps the recently viewed list.
const MaxRecent = 10

// Entry is a recently viewed asset: a summary snapshot plus the currency it
// is priced in and when it was taken.
type Entry struct {
	coingecko.AssetSummary `bson:",inline"`

	Currency  string    `json:"currency" bson:"currency"`
	FetchedAt time.Time `json:"fetched_at" bson:"fetched_at"`
}

// State is everything persisted between sessions.
type State struct {
	Currency       string    `json:"currency" bson:"currency"`
	RecentlyViewed []Entry   `json:"recently_viewed" bson:"recently_viewed"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// clone returns a deep enough copy for callers to mutate freely.
func (s State) clone() State {
	s.RecentlyViewed = slices.Clone(s.RecentlyViewed)
	return s
}

// push inserts e at the front, dropping any older entry with the same id and
// anything beyond MaxRecent.
func push(list []Entry, e Entry) []Entry {
	out := make([]Entry, 0, min(len(list)+1, MaxRecent))
	out = append(out, e)
	for _, old := range list {
		if len(out) == MaxRecent {
			break
		}
		if old.ID != e.ID {
			out = append(out, old)
		}
	}
	return out
}

// remove drops the entry with the given id, reporting whether it was present.
func remove(list []Entry, id string) ([]Entry, bool) {
	i := slices.IndexFunc(list, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return list, false
	}
	return slices.Delete(slices.Clone(list), i, i+1), true
}
