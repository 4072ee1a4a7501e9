// Package backup exports the local store to a portable JSON file and
// restores it. Import validates the whole file before touching the
// database: a malformed backup leaves the store exactly as it was.
package backup

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/profpocket/pocket-api/internal/models"
	"github.com/profpocket/pocket-api/internal/store"
	appErrors "github.com/profpocket/pocket-api/pkg/errors"
)

// Export snapshots the entire local store into one BackupFile.
func Export(s *store.Store) (*models.BackupFile, error) {
	professor, err := s.Professor()
	if err != nil {
		return nil, fmt.Errorf("export professor: %w", err)
	}
	schools, err := s.Schools()
	if err != nil {
		return nil, fmt.Errorf("export schools: %w", err)
	}
	classes, err := s.AllClasses()
	if err != nil {
		return nil, fmt.Errorf("export classes: %w", err)
	}
	students, err := s.AllStudents()
	if err != nil {
		return nil, fmt.Errorf("export students: %w", err)
	}
	logs, err := s.AllLessonLogs()
	if err != nil {
		return nil, fmt.Errorf("export lesson logs: %w", err)
	}

	return &models.BackupFile{
		Professor:  professor,
		Schools:    schools,
		Classes:    classes,
		Students:   students,
		LessonLogs: logs,
	}, nil
}

// ExportToFile writes the snapshot as indented JSON.
func ExportToFile(s *store.Store, path string) error {
	file, err := Export(s)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Import restores a snapshot into the store. Every record is validated
// first; an invalid file is rejected without any write. Restored rows
// are re-queued for sync like any local mutation.
func Import(s *store.Store, file *models.BackupFile) error {
	if err := validate(file); err != nil {
		return err
	}

	if file.Professor != nil {
		if err := s.SaveProfessor(file.Professor); err != nil {
			return err
		}
	}
	for i := range file.Schools {
		if err := s.SaveSchool(&file.Schools[i]); err != nil {
			return err
		}
	}
	for i := range file.Classes {
		if err := s.SaveClass(&file.Classes[i]); err != nil {
			return err
		}
	}
	for i := range file.Students {
		if err := s.SaveStudent(&file.Students[i]); err != nil {
			return err
		}
	}
	for i := range file.LessonLogs {
		if err := s.SaveLessonLog(&file.LessonLogs[i]); err != nil {
			return err
		}
	}
	return nil
}

// ImportFromFile reads, validates and restores a snapshot file.
func ImportFromFile(s *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file models.BackupFile
	if err := json.Unmarshal(data, &file); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("not a valid backup file: %v", err))
	}
	return Import(s, &file)
}

// validate walks the whole file so import can fail before any write.
func validate(file *models.BackupFile) error {
	if file == nil {
		return appErrors.Clone(appErrors.ErrValidation, "empty backup file")
	}
	if file.Professor != nil && file.Professor.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "backup professor has no name")
	}
	for i, school := range file.Schools {
		if school.ID == "" || school.Name == "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("backup school %d is missing id or name", i))
		}
	}
	for i, class := range file.Classes {
		if class.ID == "" || class.Name == "" || class.SchoolID == "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("backup class %d is missing id, name or schoolId", i))
		}
	}
	for i, student := range file.Students {
		if student.ID == "" || student.Name == "" || student.SchoolID == "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("backup student %d is missing id, name or schoolId", i))
		}
	}
	for i, logEntry := range file.LessonLogs {
		if logEntry.ID == "" || logEntry.SchoolID == "" || logEntry.ClassID == "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("backup log %d is missing id, schoolId or classId", i))
		}
		if !logEntry.Type.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("backup log %d has unknown type %q", i, logEntry.Type))
		}
		// Mirror every SaveLessonLog rule: validation must catch here
		// anything that would make a save fail mid-restore.
		if logEntry.Type == models.NoteEvolution && (logEntry.EvolutionScore < 0 || logEntry.EvolutionScore > 10) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("backup log %d has evolutionScore %.1f outside 0-10", i, logEntry.EvolutionScore))
		}
	}
	return nil
}
