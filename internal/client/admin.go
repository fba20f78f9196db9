package client

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RowStatus is the admin view's per-message delete state
type RowStatus string

const (
	StatusIdle     RowStatus = ""
	StatusDeleting RowStatus = "deleting"
	StatusFailed   RowStatus = "error"
)

// ErrorWindow is how long a failed delete stays flagged
const ErrorWindow = 3 * time.Second

type rowState struct {
	status RowStatus
	seq    uint64
}

// AdminView lists messages and deletes them one row at a time.
type AdminView struct {
	*Poller

	api         *API
	log         *slog.Logger
	errorWindow time.Duration

	mu   sync.Mutex
	seq  uint64
	rows map[string]rowState
}

// NewAdminView wraps a poller with delete actions
func NewAdminView(api *API, log *slog.Logger, poller *Poller) *AdminView {
	return &AdminView{
		Poller:      poller,
		api:         api,
		log:         log,
		errorWindow: ErrorWindow,
		rows:        make(map[string]rowState),
	}
}

// Status returns the delete state of the message with id
func (a *AdminView) Status(id string) RowStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows[id].status
}

// Delete removes a message and re-fetches the list. On failure the row is
// flagged for the error window and then cleared, whether or not it was retried.
func (a *AdminView) Delete(ctx context.Context, id string) error {
	a.set(id, StatusDeleting)

	if err := a.api.Delete(ctx, id); err != nil {
		a.log.Warn("Error deleting message", "id", id, "error", err)
		seq := a.set(id, StatusFailed)
		time.AfterFunc(a.errorWindow, func() { a.clearIf(id, seq) })
		return err
	}

	_ = a.Refresh(ctx)
	a.clear(id)
	return nil
}

func (a *AdminView) set(id string, status RowStatus) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	a.rows[id] = rowState{status: status, seq: a.seq}
	return a.seq
}

func (a *AdminView) clear(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.rows, id)
}

// clearIf drops the row state unless a newer action replaced it
func (a *AdminView) clearIf(id string, seq uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rows[id].seq == seq {
		delete(a.rows, id)
	}
}
