// Package export renders local data into shareable CSV and PDF files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/profpocket/pocket-api/internal/models"
)

// Dataset is tabular export content.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// RenderCSV encodes the dataset as CSV bytes.
func RenderCSV(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RosterDataset lays out a student roster for CSV export.
func RosterDataset(students []models.Student) Dataset {
	data := Dataset{Headers: []string{"id", "name", "schoolId", "classId", "contact"}}
	for _, student := range students {
		data.Rows = append(data.Rows, []string{
			student.ID, student.Name, student.SchoolID, student.ClassID, student.Contact,
		})
	}
	return data
}

// LogDataset lays out lesson logs for CSV export.
func LogDataset(logs []models.LessonLog) Dataset {
	data := Dataset{Headers: []string{"id", "date", "type", "studentId", "evolutionScore", "plan"}}
	for _, logEntry := range logs {
		data.Rows = append(data.Rows, []string{
			logEntry.ID,
			strconv.FormatInt(logEntry.Date, 10),
			string(logEntry.Type),
			logEntry.StudentID,
			strconv.FormatFloat(logEntry.EvolutionScore, 'f', 1, 64),
			logEntry.Plan,
		})
	}
	return data
}
