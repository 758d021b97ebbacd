package ports

import (
	"context"

	"github.com/nostrmarket/agora/core"
)

// SessionStore is the process-wide persisted credential scope. Single
// logical writer (the auth service and logout); many readers. Readers must
// load fresh on every use so a Clear issued elsewhere is observed.
type SessionStore interface {
	// Save persists the session, replacing any existing one.
	Save(ctx context.Context, session *core.Session) error

	// Load returns the persisted session, or (nil, nil) when empty.
	Load(ctx context.Context) (*core.Session, error)

	// Clear removes the persisted session.
	Clear(ctx context.Context) error
}
