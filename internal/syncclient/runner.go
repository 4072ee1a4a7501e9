package syncclient

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/profpocket/pocket-api/internal/store"
)

// ErrNotLoggedIn is returned when a server URL is configured but no
// token is stored.
var ErrNotLoggedIn = errors.New("not logged in: run login first")

// Result summarises one sync run.
type Result struct {
	Skipped bool
	Pushed  int
	Pulled  int
}

// Runner drives a full sync cycle against the configured server.
type Runner struct {
	store  *store.Store
	logger *zap.Logger

	// newClient is swappable for tests.
	newClient func(baseURL, token string) *Client
}

// NewRunner builds a sync runner over the local store.
func NewRunner(s *store.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{store: s, logger: logger, newClient: New}
}

// Run pushes the pending queue, then pulls and applies remote changes,
// then advances the watermark to the server clock. Without a configured
// server URL the run is a silent no-op. A push failure aborts the run
// before pull; a partial acceptance keeps the unaccepted entries queued
// for the next run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	serverURL, err := r.store.GetKV(store.KeyServerURL)
	if err != nil {
		return nil, err
	}
	if serverURL == "" {
		return &Result{Skipped: true}, nil
	}

	token, err := r.store.GetKV(store.KeyToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	client := r.newClient(serverURL, token)
	result := &Result{}

	queue, err := r.store.Queue()
	if err != nil {
		return nil, err
	}
	if len(queue) > 0 {
		accepted, err := client.Push(ctx, queue)
		if err != nil {
			return nil, err
		}
		if err := r.store.RemoveFromQueue(accepted); err != nil {
			return nil, err
		}
		result.Pushed = len(accepted)
		r.logger.Debug("pushed changes",
			zap.Int("queued", len(queue)),
			zap.Int("accepted", len(accepted)))
	}

	since, err := r.store.LastSyncAt()
	if err != nil {
		return nil, err
	}
	pulled, err := client.Pull(ctx, since)
	if err != nil {
		return nil, err
	}
	for _, change := range pulled.Changes {
		if err := r.store.ApplyRemote(change); err != nil {
			return nil, err
		}
	}
	if err := r.store.SetLastSyncAt(pulled.ServerNow); err != nil {
		return nil, err
	}
	result.Pulled = len(pulled.Changes)

	r.logger.Debug("pulled changes",
		zap.Int("count", result.Pulled),
		zap.Int64("serverNow", pulled.ServerNow))
	return result, nil
}
