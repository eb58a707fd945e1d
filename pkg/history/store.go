package history

import (
	"context"
	"errors"
)

// ErrCorruptState is returned by Load when the stored state cannot be
// decoded. The accompanying State is empty and safe to use.
var ErrCorruptState = errors.New("corrupt state")

// Store persists the user's [State]. Load on an empty store returns a zero
// State and no error.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
	Close() error
}
