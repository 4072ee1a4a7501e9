package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profpocket/pocket-api/internal/models"
	"github.com/profpocket/pocket-api/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunSkippedWithoutServerURL(t *testing.T) {
	s := testStore(t)
	runner := NewRunner(s, nil)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Zero(t, result.Pushed)
	assert.Zero(t, result.Pulled)
}

func TestRunRequiresToken(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.SetKV(store.KeyServerURL, "http://localhost:9999"))

	_, err := NewRunner(s, nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestRunPartialAcceptanceKeepsRejectedQueued(t *testing.T) {
	s := testStore(t)
	s.WithClock(func() time.Time { return time.UnixMilli(1000) })
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-1", Name: "A"}))
	s.WithClock(func() time.Time { return time.UnixMilli(2000) })
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-2", Name: "B"}))
	s.WithClock(func() time.Time { return time.UnixMilli(3000) })
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-3", Name: "C"}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sync/push":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			var req models.PushRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Changes, 3)
			// Accept all but the last change.
			accepted := []string{req.Changes[0].AcceptedID(), req.Changes[1].AcceptedID()}
			json.NewEncoder(w).Encode(models.PushResponse{AcceptedIDs: accepted}) //nolint:errcheck
		case "/sync/pull":
			json.NewEncoder(w).Encode(models.PullResponse{ServerNow: 9000}) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	require.NoError(t, s.SetKV(store.KeyServerURL, server.URL))
	require.NoError(t, s.SetKV(store.KeyToken, "tok-1"))

	result, err := NewRunner(s, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pushed)

	queue, err := s.Queue()
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "sch-3", queue[0].EntityID)
}

func TestRunAppliesPulledChangesAndAdvancesWatermark(t *testing.T) {
	s := testStore(t)

	remote, _ := json.Marshal(models.School{ID: "sch-9", Name: "Remote", UpdatedAt: 4000})
	var sinceSeen []int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sync/push":
			json.NewEncoder(w).Encode(models.PushResponse{}) //nolint:errcheck
		case "/sync/pull":
			since, err := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
			require.NoError(t, err)
			sinceSeen = append(sinceSeen, since)
			resp := models.PullResponse{ServerNow: 5000}
			if since < 4000 {
				resp.Changes = []models.PulledChange{{
					Entity: models.EntitySchool, EntityID: "sch-9", Op: models.OpUpsert,
					Payload: remote, UpdatedAt: 4000,
				}}
			}
			json.NewEncoder(w).Encode(resp) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	require.NoError(t, s.SetKV(store.KeyServerURL, server.URL))
	require.NoError(t, s.SetKV(store.KeyToken, "tok-1"))
	runner := NewRunner(s, nil)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pulled)

	school, err := s.School("sch-9")
	require.NoError(t, err)
	require.NotNil(t, school)
	assert.Equal(t, "Remote", school.Name)

	watermark, err := s.LastSyncAt()
	require.NoError(t, err)
	assert.EqualValues(t, 5000, watermark)

	// The second run pulls from the advanced watermark and gets nothing.
	result, err = runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Pulled)
	assert.Equal(t, []int64{0, 5000}, sinceSeen)
}

func TestRunAbortsOnServerError(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-1", Name: "A"}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL","message":"boom"}}`)) //nolint:errcheck
	}))
	defer server.Close()

	require.NoError(t, s.SetKV(store.KeyServerURL, server.URL))
	require.NoError(t, s.SetKV(store.KeyToken, "tok-1"))

	_, err := NewRunner(s, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// The queue keeps its entry for the next run.
	queue, err := s.Queue()
	require.NoError(t, err)
	assert.Len(t, queue, 1)
}
