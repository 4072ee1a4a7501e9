package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/profpocket/pocket-api/internal/models"
)

// ApplyRemote applies one pulled change to the local database without
// touching the sync queue. Last write wins: a remote change older than
// the local row is dropped.
func (s *Store) ApplyRemote(change models.PulledChange) error {
	table, err := tableFor(change.Entity)
	if err != nil {
		return err
	}

	localUpdatedAt, exists, err := s.rowUpdatedAt(table, change.EntityID)
	if err != nil {
		return err
	}
	if exists && localUpdatedAt > change.UpdatedAt {
		return nil
	}

	switch change.Op {
	case models.OpDelete:
		_, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), change.EntityID)
		return err
	case models.OpUpsert:
		return s.applyRemoteUpsert(table, change)
	default:
		return fmt.Errorf("unknown change op %q", change.Op)
	}
}

func (s *Store) applyRemoteUpsert(table string, change models.PulledChange) error {
	extra := map[string]string{}
	switch change.Entity {
	case models.EntityClass:
		var class models.ClassGroup
		if err := json.Unmarshal(change.Payload, &class); err != nil {
			return fmt.Errorf("decode %s payload: %w", change.Entity, err)
		}
		extra["school_id"] = class.SchoolID
	case models.EntityStudent:
		var student models.Student
		if err := json.Unmarshal(change.Payload, &student); err != nil {
			return fmt.Errorf("decode %s payload: %w", change.Entity, err)
		}
		extra["school_id"] = student.SchoolID
		extra["class_id"] = student.ClassID
	case models.EntityLessonLog:
		var logEntry models.LessonLog
		if err := json.Unmarshal(change.Payload, &logEntry); err != nil {
			return fmt.Errorf("decode %s payload: %w", change.Entity, err)
		}
		extra["school_id"] = logEntry.SchoolID
		extra["class_id"] = logEntry.ClassID
		extra["student_id"] = logEntry.StudentID
	default:
		if !json.Valid(change.Payload) {
			return fmt.Errorf("decode %s payload: invalid json", change.Entity)
		}
	}

	columns := "id, updated_at, data"
	placeholders := "?, ?, ?"
	args := []interface{}{change.EntityID, change.UpdatedAt, string(change.Payload)}
	for column, value := range extra {
		columns += ", " + column
		placeholders += ", ?"
		args = append(args, value)
	}

	_, err := s.db.Exec(fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`,
		table, columns, placeholders), args...)
	return err
}

func (s *Store) rowUpdatedAt(table, id string) (int64, bool, error) {
	var updatedAt int64
	err := s.db.Get(&updatedAt, fmt.Sprintf(`SELECT updated_at FROM %s WHERE id = ?`, table), id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return updatedAt, true, nil
}

func tableFor(entity models.EntityKind) (string, error) {
	switch entity {
	case models.EntityProfessor:
		return "professor", nil
	case models.EntitySchool:
		return "schools", nil
	case models.EntityClass:
		return "classes", nil
	case models.EntityStudent:
		return "students", nil
	case models.EntityLessonLog:
		return "lesson_logs", nil
	default:
		return "", fmt.Errorf("unknown entity %q", entity)
	}
}
