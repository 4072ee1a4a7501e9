package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profpocket/pocket-api/internal/models"
)

func TestRenderCSVRequiresHeaders(t *testing.T) {
	_, err := RenderCSV(Dataset{})
	assert.Error(t, err)
}

func TestRosterCSV(t *testing.T) {
	data := RosterDataset([]models.Student{
		{ID: "stu-1", Name: "Ana", SchoolID: "sch-1", ClassID: "cls-1", Contact: "ana@x"},
		{ID: "stu-2", Name: "Bia", SchoolID: "sch-1", ClassID: "cls-1"},
	})
	raw, err := RenderCSV(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,schoolId,classId,contact", lines[0])
	assert.Contains(t, lines[1], "Ana")
}

func TestLogCSVFormatsScore(t *testing.T) {
	data := LogDataset([]models.LessonLog{
		{ID: "log-1", Date: 1700000000000, Type: models.NoteEvolution, StudentID: "stu-1", EvolutionScore: 7.25},
	})
	raw, err := RenderCSV(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "7.2")
}

func TestRenderClassReportPDF(t *testing.T) {
	report := &models.ClassReport{
		ClassID:     "cls-1",
		ClassName:   "Guitar A",
		GeneratedAt: 1700000000000,
		Health:      72,
		Trend:       models.TrendUp,
		TopNeeds:    []models.StudentNeed{{StudentID: "stu-1", StudentName: "Ana", Count: 3}},
		Suggestions: []string{"Keep going: the note balance looks healthy."},
	}

	raw, err := RenderClassReportPDF(report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))

	_, err = RenderClassReportPDF(nil)
	assert.Error(t, err)
}
