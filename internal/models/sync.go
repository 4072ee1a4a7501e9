package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChangeOp is the mutation kind carried by a sync change.
type ChangeOp string

const (
	OpUpsert ChangeOp = "upsert"
	OpDelete ChangeOp = "delete"
)

// Valid reports whether the op is recognised.
func (o ChangeOp) Valid() bool {
	return o == OpUpsert || o == OpDelete
}

// SyncChange is the client-side queue entry for one local mutation.
// ID is the composite queue key; re-queuing the same entity within the
// same millisecond overwrites the entry instead of duplicating it.
type SyncChange struct {
	ID        string          `json:"id"`
	Entity    EntityKind      `json:"entity"`
	EntityID  string          `json:"entityId"`
	Op        ChangeOp        `json:"op"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt int64           `json:"updatedAt"`
}

// QueueKey derives the composite pending-queue key for a change.
func QueueKey(entity EntityKind, entityID string, updatedAt int64) string {
	return fmt.Sprintf("%s|%s|%d", entity, entityID, updatedAt)
}

// PushChange is one element of a push request.
type PushChange struct {
	ClientID  string          `json:"clientId,omitempty"`
	Entity    EntityKind      `json:"entity" binding:"required"`
	EntityID  string          `json:"entityId" binding:"required"`
	Op        ChangeOp        `json:"op" binding:"required"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt int64           `json:"updatedAt" binding:"required"`
}

// AcceptedID returns the identifier echoed back to the client for this
// change: the client queue key when provided, the composite otherwise.
func (c PushChange) AcceptedID() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return QueueKey(c.Entity, c.EntityID, c.UpdatedAt)
}

// PushRequest carries the client's entire pending queue, oldest first.
type PushRequest struct {
	Changes []PushChange `json:"changes" binding:"required"`
}

// PushResponse lists the queue keys the server accepted.
type PushResponse struct {
	AcceptedIDs []string `json:"acceptedIds"`
}

// PulledChange is one ledger row returned by pull.
type PulledChange struct {
	Entity    EntityKind      `json:"entity"`
	EntityID  string          `json:"entityId"`
	Op        ChangeOp        `json:"op"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt int64           `json:"updatedAt"`
}

// PullResponse returns every ledger row newer than the requested
// watermark plus the server clock the client must advance to.
type PullResponse struct {
	Changes   []PulledChange `json:"changes"`
	ServerNow int64          `json:"serverNow"`
}

// ChangeRow is the persisted ledger row. Rows are append-only and never
// mutated once written.
type ChangeRow struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"-"`
	Entity    string          `db:"entity" json:"entity"`
	EntityID  string          `db:"entity_id" json:"entityId"`
	Op        string          `db:"op" json:"op"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	UpdatedAt int64           `db:"updated_at" json:"updatedAt"`
	CreatedAt time.Time       `db:"created_at" json:"-"`
}
