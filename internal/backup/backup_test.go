package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profpocket/pocket-api/internal/models"
	"github.com/profpocket/pocket-api/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.WithClock(func() time.Time { return time.UnixMilli(1000) })

	require.NoError(t, s.SaveProfessor(&models.ProfessorProfile{Name: "Marina"}))
	require.NoError(t, s.SaveSchool(&models.School{ID: "sch-1", Name: "Escola Viva"}))
	require.NoError(t, s.SaveClass(&models.ClassGroup{ID: "cls-1", SchoolID: "sch-1", Name: "Guitar A"}))
	require.NoError(t, s.SaveStudent(&models.Student{ID: "stu-1", SchoolID: "sch-1", ClassID: "cls-1", Name: "Ana"}))
	require.NoError(t, s.SaveLessonLog(&models.LessonLog{
		ID: "log-1", SchoolID: "sch-1", ClassID: "cls-1", StudentID: "stu-1",
		Type: models.NoteEvolution, EvolutionScore: 7, Date: 500,
	}))
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	src := seededStore(t)
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, ExportToFile(src, path))

	dst, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer dst.Close()
	require.NoError(t, ImportFromFile(dst, path))

	professor, err := dst.Professor()
	require.NoError(t, err)
	require.NotNil(t, professor)
	assert.Equal(t, "Marina", professor.Name)

	schools, err := dst.Schools()
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, "sch-1", schools[0].ID)

	logs, err := dst.LogsByStudent("stu-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.InDelta(t, 7, logs[0].EvolutionScore, 0.001)

	// Restored rows are queued for the next sync.
	queue, err := dst.Queue()
	require.NoError(t, err)
	assert.Len(t, queue, 5)
}

func TestImportRejectsInvalidFileWithoutWriting(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	err = Import(s, &models.BackupFile{
		Schools: []models.School{{ID: "sch-1", Name: "OK"}},
		Classes: []models.ClassGroup{{ID: "cls-1", Name: "No school"}},
	})
	require.Error(t, err)

	// The valid school listed before the broken class was not written.
	schools, err := s.Schools()
	require.NoError(t, err)
	assert.Empty(t, schools)
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schools": [`), 0o644))

	assert.Error(t, ImportFromFile(s, path))
}

func TestImportRejectsOutOfRangeScoreWithoutWriting(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	// The school alone would save fine; the log would fail its score
	// check. Validation must reject the whole file up front so the
	// school is neither written nor queued for sync.
	err = Import(s, &models.BackupFile{
		Schools: []models.School{{ID: "sch-1", Name: "Escola Viva"}},
		LessonLogs: []models.LessonLog{{
			ID: "log-1", SchoolID: "sch-1", ClassID: "cls-1",
			Type: models.NoteEvolution, EvolutionScore: 11,
		}},
	})
	require.Error(t, err)

	schools, err := s.Schools()
	require.NoError(t, err)
	assert.Empty(t, schools)

	queue, err := s.Queue()
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestImportRejectsUnknownNoteType(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	err = Import(s, &models.BackupFile{
		LessonLogs: []models.LessonLog{{ID: "log-1", SchoolID: "sch-1", ClassID: "cls-1", Type: "mood"}},
	})
	assert.Error(t, err)
}
