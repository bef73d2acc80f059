package dashboard

import "context"

// Controller is the state of one signed-in dashboard. Every action returns
// the state after the action. A returned error has already been turned into a
// notification; code.UnLogin additionally means the session was terminated
// and the caller should send the user back to login.
type Controller interface {
	// Mount loads the collection and the share targets.
	Mount(ctx context.Context) (*Snapshot, error)
	SetQuery(ctx context.Context, query string) (*Snapshot, error)
	Search(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context) (*Snapshot, error)
	Delete(ctx context.Context, id int64) (*Snapshot, error)
	ShareIntent(ctx context.Context, id int64) (*Snapshot, error)
	SelectUser(ctx context.Context, userID int64) (*Snapshot, error)
	ShareConfirm(ctx context.Context) (*Snapshot, error)
	ShareCancel(ctx context.Context) (*Snapshot, error)
	Dismiss(ctx context.Context) (*Snapshot, error)
	// Logout ends the session locally and closes the controller.
	Logout(ctx context.Context) error
	// Close discards the results of calls still in flight.
	Close(ctx context.Context)
	Snapshot() *Snapshot
	Terminated() bool
}
