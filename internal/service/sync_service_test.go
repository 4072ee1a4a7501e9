package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profpocket/pocket-api/internal/models"
)

type fakeLedger struct {
	rows      []models.ChangeRow
	appendErr error
	listErr   error
	lastSince int64
}

func (f *fakeLedger) Append(_ context.Context, rows []models.ChangeRow) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeLedger) ListSince(_ context.Context, _ string, since int64) ([]models.ChangeRow, error) {
	f.lastSince = since
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.ChangeRow
	for _, row := range f.rows {
		if row.UpdatedAt > since {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListAll(_ context.Context, _ string) ([]models.ChangeRow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func syncServiceForTest(ledger *fakeLedger) *SyncService {
	svc := NewSyncService(ledger, nil, nil, nil)
	return svc.WithClock(func() time.Time {
		return time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	})
}

func TestSyncServicePushAcceptsValidChanges(t *testing.T) {
	ledger := &fakeLedger{}
	svc := syncServiceForTest(ledger)

	resp, err := svc.Push(context.Background(), "usr-1", models.PushRequest{Changes: []models.PushChange{
		{ClientID: "school|sch-1|100", Entity: models.EntitySchool, EntityID: "sch-1", Op: models.OpUpsert, Payload: json.RawMessage(`{"id":"sch-1"}`), UpdatedAt: 100},
		{Entity: models.EntityStudent, EntityID: "st-1", Op: models.OpDelete, UpdatedAt: 200},
	}})

	require.NoError(t, err)
	// clientId is echoed when present, the composite key otherwise.
	assert.Equal(t, []string{"school|sch-1|100", "student|st-1|200"}, resp.AcceptedIDs)
	require.Len(t, ledger.rows, 2)
	assert.Equal(t, "usr-1", ledger.rows[0].UserID)
	assert.NotEmpty(t, ledger.rows[0].ID)
	assert.NotEqual(t, ledger.rows[0].ID, ledger.rows[1].ID)
}

func TestSyncServicePushSkipsMalformedChanges(t *testing.T) {
	ledger := &fakeLedger{}
	svc := syncServiceForTest(ledger)

	resp, err := svc.Push(context.Background(), "usr-1", models.PushRequest{Changes: []models.PushChange{
		{Entity: "grade", EntityID: "g-1", Op: models.OpUpsert, UpdatedAt: 100},
		{Entity: models.EntitySchool, EntityID: "", Op: models.OpUpsert, UpdatedAt: 100},
		{Entity: models.EntitySchool, EntityID: "sch-1", Op: "merge", UpdatedAt: 100},
		{Entity: models.EntitySchool, EntityID: "sch-1", Op: models.OpUpsert, UpdatedAt: 100},
	}})

	require.NoError(t, err)
	assert.Equal(t, []string{"school|sch-1|100"}, resp.AcceptedIDs)
	assert.Len(t, ledger.rows, 1)
}

func TestSyncServicePushLedgerFailure(t *testing.T) {
	ledger := &fakeLedger{appendErr: assert.AnError}
	svc := syncServiceForTest(ledger)

	_, err := svc.Push(context.Background(), "usr-1", models.PushRequest{Changes: []models.PushChange{
		{Entity: models.EntitySchool, EntityID: "sch-1", Op: models.OpUpsert, UpdatedAt: 100},
	}})

	require.Error(t, err)
}

func TestSyncServicePullFiltersAndReportsServerNow(t *testing.T) {
	ledger := &fakeLedger{rows: []models.ChangeRow{
		{ID: "a", Entity: "school", EntityID: "sch-1", Op: "upsert", Payload: json.RawMessage(`{"id":"sch-1"}`), UpdatedAt: 100},
		{ID: "b", Entity: "school", EntityID: "sch-1", Op: "delete", UpdatedAt: 300},
	}}
	svc := syncServiceForTest(ledger)

	resp, err := svc.Pull(context.Background(), "usr-1", 100)

	require.NoError(t, err)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, models.OpDelete, resp.Changes[0].Op)
	assert.Equal(t, int64(100), ledger.lastSince)
	assert.Equal(t, time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC).UnixMilli(), resp.ServerNow)
}

func TestSyncServicePullReturnsEntireBacklog(t *testing.T) {
	// A fresh device pulls from zero against a mature ledger: every row
	// must come back in one response, because the client advances its
	// watermark to ServerNow afterwards and would never re-request the
	// remainder.
	ledger := &fakeLedger{}
	for i := 0; i < 2500; i++ {
		ledger.rows = append(ledger.rows, models.ChangeRow{
			ID:        "chg-" + string(rune('a'+i%26)),
			Entity:    "lessonLog",
			EntityID:  "log-" + string(rune('a'+i%26)),
			Op:        "upsert",
			UpdatedAt: int64(i + 1),
		})
	}
	svc := syncServiceForTest(ledger)

	resp, err := svc.Pull(context.Background(), "usr-1", 0)

	require.NoError(t, err)
	require.Len(t, resp.Changes, 2500)
	assert.Equal(t, int64(1), resp.Changes[0].UpdatedAt)
	assert.Equal(t, int64(2500), resp.Changes[2499].UpdatedAt)

	// A second pull from ServerNow sees nothing new and loses nothing.
	resp2, err := svc.Pull(context.Background(), "usr-1", resp.ServerNow)
	require.NoError(t, err)
	assert.Empty(t, resp2.Changes)
}

func TestSyncServicePullEmptyLedger(t *testing.T) {
	svc := syncServiceForTest(&fakeLedger{})

	resp, err := svc.Pull(context.Background(), "usr-1", 0)

	require.NoError(t, err)
	assert.Empty(t, resp.Changes)
	assert.Positive(t, resp.ServerNow)
}
