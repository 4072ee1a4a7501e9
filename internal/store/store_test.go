package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profpocket/pocket-api/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestSchoolRoundTrip(t *testing.T) {
	s := openTestStore(t).WithClock(fixedClock(1000))

	school := &models.School{Name: "Escola Viva"}
	require.NoError(t, s.SaveSchool(school))
	require.NotEmpty(t, school.ID)
	assert.EqualValues(t, 1000, school.CreatedAt)
	assert.EqualValues(t, 1000, school.UpdatedAt)

	got, err := s.School(school.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Escola Viva", got.Name)

	all, err := s.Schools()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	s := openTestStore(t)

	assert.Error(t, s.SaveSchool(&models.School{}))
	assert.Error(t, s.SaveClass(&models.ClassGroup{Name: "A"}))
	assert.Error(t, s.SaveStudent(&models.Student{SchoolID: "sch-1"}))
	assert.Error(t, s.SaveLessonLog(&models.LessonLog{SchoolID: "sch-1", ClassID: "cls-1", Type: "mood"}))
	assert.Error(t, s.SaveLessonLog(&models.LessonLog{
		SchoolID: "sch-1", ClassID: "cls-1", Type: models.NoteEvolution, EvolutionScore: 11,
	}))

	// Nothing invalid reached the queue.
	queue, err := s.Queue()
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestQueueCollapsesSameMillisecond(t *testing.T) {
	s := openTestStore(t).WithClock(fixedClock(5000))

	school := &models.School{Name: "First"}
	require.NoError(t, s.SaveSchool(school))
	school.Name = "Second"
	require.NoError(t, s.SaveSchool(school))

	queue, err := s.Queue()
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, models.QueueKey(models.EntitySchool, school.ID, 5000), queue[0].ID)

	var payload models.School
	require.NoError(t, json.Unmarshal(queue[0].Payload, &payload))
	assert.Equal(t, "Second", payload.Name)
}

func TestQueueOrderAndDistinctTimestamps(t *testing.T) {
	s := openTestStore(t)

	s.WithClock(fixedClock(1000))
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-1", Name: "One"}))
	s.WithClock(fixedClock(2000))
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-1", Name: "Two", CreatedAt: 1000}))

	queue, err := s.Queue()
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.EqualValues(t, 1000, queue[0].UpdatedAt)
	assert.EqualValues(t, 2000, queue[1].UpdatedAt)
}

func TestDeleteQueuesDeletion(t *testing.T) {
	s := openTestStore(t).WithClock(fixedClock(1000))

	school := &models.School{Name: "Gone"}
	require.NoError(t, s.SaveSchool(school))

	s.WithClock(fixedClock(2000))
	require.NoError(t, s.DeleteSchool(school.ID))

	got, err := s.School(school.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	queue, err := s.Queue()
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, models.OpDelete, queue[1].Op)
	assert.Equal(t, json.RawMessage("null"), queue[1].Payload)

	// Deleting a row that never existed leaves the queue untouched.
	require.NoError(t, s.DeleteSchool("no-such-id"))
	queue, err = s.Queue()
	require.NoError(t, err)
	assert.Len(t, queue, 2)
}

func TestRemoveFromQueueKeepsUnacceptedEntries(t *testing.T) {
	s := openTestStore(t)

	s.WithClock(fixedClock(1000))
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-1", Name: "A"}))
	s.WithClock(fixedClock(2000))
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-2", Name: "B"}))
	s.WithClock(fixedClock(3000))
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-3", Name: "C"}))

	queue, err := s.Queue()
	require.NoError(t, err)
	require.Len(t, queue, 3)

	require.NoError(t, s.RemoveFromQueue([]string{queue[0].ID, queue[1].ID}))

	remaining, err := s.Queue()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, queue[2].ID, remaining[0].ID)
}

func TestStudentsByClass(t *testing.T) {
	s := openTestStore(t).WithClock(fixedClock(1000))

	require.NoError(t, s.SaveStudent(&models.Student{SchoolID: "sch-1", ClassID: "cls-1", Name: "Zila"}))
	require.NoError(t, s.SaveStudent(&models.Student{SchoolID: "sch-1", ClassID: "cls-1", Name: "Ana"}))
	require.NoError(t, s.SaveStudent(&models.Student{SchoolID: "sch-1", ClassID: "cls-2", Name: "Bea"}))

	students, err := s.StudentsByClass("cls-1")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ana", students[0].Name)
	assert.Equal(t, "Zila", students[1].Name)
}

func TestLastSyncWatermark(t *testing.T) {
	s := openTestStore(t)

	ms, err := s.LastSyncAt()
	require.NoError(t, err)
	assert.Zero(t, ms)

	require.NoError(t, s.SetLastSyncAt(123456))
	ms, err = s.LastSyncAt()
	require.NoError(t, err)
	assert.EqualValues(t, 123456, ms)
}

func TestApplyRemoteLastWriteWins(t *testing.T) {
	s := openTestStore(t).WithClock(fixedClock(5000))

	local := &models.School{ID: "sch-1", Name: "Local"}
	require.NoError(t, s.SaveSchool(local))

	older, _ := json.Marshal(models.School{ID: "sch-1", Name: "Stale", UpdatedAt: 1000})
	require.NoError(t, s.ApplyRemote(models.PulledChange{
		Entity: models.EntitySchool, EntityID: "sch-1", Op: models.OpUpsert, Payload: older, UpdatedAt: 1000,
	}))
	got, err := s.School("sch-1")
	require.NoError(t, err)
	assert.Equal(t, "Local", got.Name)

	newer, _ := json.Marshal(models.School{ID: "sch-1", Name: "Fresh", UpdatedAt: 9000})
	require.NoError(t, s.ApplyRemote(models.PulledChange{
		Entity: models.EntitySchool, EntityID: "sch-1", Op: models.OpUpsert, Payload: newer, UpdatedAt: 9000,
	}))
	got, err = s.School("sch-1")
	require.NoError(t, err)
	assert.Equal(t, "Fresh", got.Name)

	// Remote apply never feeds the queue.
	queue, err := s.Queue()
	require.NoError(t, err)
	assert.Len(t, queue, 1)
}

func TestApplyRemoteDelete(t *testing.T) {
	s := openTestStore(t).WithClock(fixedClock(1000))

	require.NoError(t, s.SaveStudent(&models.Student{ID: "stu-1", SchoolID: "sch-1", Name: "Ana"}))
	require.NoError(t, s.ApplyRemote(models.PulledChange{
		Entity: models.EntityStudent, EntityID: "stu-1", Op: models.OpDelete, UpdatedAt: 2000,
	}))

	got, err := s.Student("stu-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
