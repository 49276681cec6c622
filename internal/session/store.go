// Package session keeps one form state per browser session.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-calculator/internal/form"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

var (
	// ErrInvalidID is returned for a session id that is not a UUID.
	ErrInvalidID = errors.New("invalid session id")
	// ErrConflict is returned when an update keeps losing to concurrent writers.
	ErrConflict = errors.New("session changed concurrently")
)

// Store persists form snapshots keyed by session id.
type Store interface {
	// Load returns the stored state; ok is false when the session is unknown or expired.
	Load(ctx context.Context, id string) (state form.State, ok bool, err error)
	Save(ctx context.Context, id string, state form.State) error
	// Update replaces the state with fn applied to it, the zero State when the
	// session is unknown. Updates of one id never interleave.
	Update(ctx context.Context, id string, fn func(form.State) form.State) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Options configures NewStore.
type Options struct {
	Backend   string
	TTL       time.Duration
	RedisAddr string
	RedisDB   int
	KeyPrefix string
}

// NewStore builds the store named by opts.Backend.
func NewStore(opts Options) (Store, error) {
	switch opts.Backend {
	case "", constants.SessionStoreMemory:
		return NewMemoryStore(opts.TTL), nil
	case constants.SessionStoreRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis session store requires an address")
		}
		return NewRedisStore(opts.RedisAddr, opts.RedisDB, opts.KeyPrefix, opts.TTL), nil
	}
	return nil, fmt.Errorf("unsupported session store %q", opts.Backend)
}
