package persistence

import "context"

// SessionRepository stores session aggregates keyed by session id. Save writes
// the whole aggregate; Get returns it whole. Callers serialize concurrent
// writes to the same session id.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	SaveSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	SessionExists(ctx context.Context, id string) (bool, error)
}

// StatsReader exposes the cross-session aggregate counts.
type StatsReader interface {
	Stats(ctx context.Context) (Stats, error)
}
