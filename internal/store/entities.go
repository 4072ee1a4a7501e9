package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/profpocket/pocket-api/internal/models"
	appErrors "github.com/profpocket/pocket-api/pkg/errors"
)

// professorRowID keys the singleton profile row.
const professorRowID = "professor"

// SaveProfessor stores the device owner profile and queues it for sync.
func (s *Store) SaveProfessor(p *models.ProfessorProfile) error {
	if p.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "professor name is required")
	}
	p.ID = professorRowID
	s.stamp(&p.CreatedAt, &p.UpdatedAt)
	return s.upsert("professor", models.EntityProfessor, p.ID, p.UpdatedAt, p, nil)
}

// Professor returns the stored profile, or nil when none exists yet.
func (s *Store) Professor() (*models.ProfessorProfile, error) {
	var p models.ProfessorProfile
	ok, err := s.getByID("professor", professorRowID, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SaveSchool stores a school and queues it for sync. A missing ID is
// generated.
func (s *Store) SaveSchool(school *models.School) error {
	if school.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "school name is required")
	}
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	s.stamp(&school.CreatedAt, &school.UpdatedAt)
	return s.upsert("schools", models.EntitySchool, school.ID, school.UpdatedAt, school, nil)
}

// School returns one school, or nil when it does not exist.
func (s *Store) School(id string) (*models.School, error) {
	var school models.School
	ok, err := s.getByID("schools", id, &school)
	if err != nil || !ok {
		return nil, err
	}
	return &school, nil
}

// Schools lists every school, newest update first.
func (s *Store) Schools() ([]models.School, error) {
	return listInto[models.School](s, `SELECT data FROM schools ORDER BY updated_at DESC`)
}

// DeleteSchool removes a school and queues the deletion.
func (s *Store) DeleteSchool(id string) error {
	return s.deleteByID("schools", models.EntitySchool, id)
}

// SaveClass stores a class and queues it for sync.
func (s *Store) SaveClass(class *models.ClassGroup) error {
	if class.SchoolID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "class schoolId is required")
	}
	if class.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "class name is required")
	}
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	s.stamp(&class.CreatedAt, &class.UpdatedAt)
	return s.upsert("classes", models.EntityClass, class.ID, class.UpdatedAt, class, map[string]string{
		"school_id": class.SchoolID,
	})
}

// Class returns one class, or nil when it does not exist.
func (s *Store) Class(id string) (*models.ClassGroup, error) {
	var class models.ClassGroup
	ok, err := s.getByID("classes", id, &class)
	if err != nil || !ok {
		return nil, err
	}
	return &class, nil
}

// Classes lists the classes of one school, newest update first.
func (s *Store) Classes(schoolID string) ([]models.ClassGroup, error) {
	return listInto[models.ClassGroup](s,
		`SELECT data FROM classes WHERE school_id = ? ORDER BY updated_at DESC`, schoolID)
}

// AllClasses lists every class on the device.
func (s *Store) AllClasses() ([]models.ClassGroup, error) {
	return listInto[models.ClassGroup](s, `SELECT data FROM classes ORDER BY updated_at DESC`)
}

// DeleteClass removes a class and queues the deletion.
func (s *Store) DeleteClass(id string) error {
	return s.deleteByID("classes", models.EntityClass, id)
}

// SaveStudent stores a student and queues it for sync.
func (s *Store) SaveStudent(student *models.Student) error {
	if student.SchoolID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student schoolId is required")
	}
	if student.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student name is required")
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	s.stamp(&student.CreatedAt, &student.UpdatedAt)
	return s.upsert("students", models.EntityStudent, student.ID, student.UpdatedAt, student, map[string]string{
		"school_id": student.SchoolID,
		"class_id":  student.ClassID,
	})
}

// Student returns one student, or nil when it does not exist.
func (s *Store) Student(id string) (*models.Student, error) {
	var student models.Student
	ok, err := s.getByID("students", id, &student)
	if err != nil || !ok {
		return nil, err
	}
	return &student, nil
}

// StudentsByClass lists the students of one class, by name.
func (s *Store) StudentsByClass(classID string) ([]models.Student, error) {
	return listInto[models.Student](s,
		`SELECT data FROM students WHERE class_id = ? ORDER BY json_extract(data, '$.name') ASC`, classID)
}

// StudentsBySchool lists the students of one school, by name.
func (s *Store) StudentsBySchool(schoolID string) ([]models.Student, error) {
	return listInto[models.Student](s,
		`SELECT data FROM students WHERE school_id = ? ORDER BY json_extract(data, '$.name') ASC`, schoolID)
}

// AllStudents lists every student on the device.
func (s *Store) AllStudents() ([]models.Student, error) {
	return listInto[models.Student](s, `SELECT data FROM students ORDER BY json_extract(data, '$.name') ASC`)
}

// DeleteStudent removes a student and queues the deletion.
func (s *Store) DeleteStudent(id string) error {
	return s.deleteByID("students", models.EntityStudent, id)
}

// SaveLessonLog stores a lesson log and queues it for sync.
func (s *Store) SaveLessonLog(logEntry *models.LessonLog) error {
	if logEntry.SchoolID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "log schoolId is required")
	}
	if logEntry.ClassID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "log classId is required")
	}
	if !logEntry.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown note type %q", logEntry.Type))
	}
	if logEntry.Type == models.NoteEvolution && (logEntry.EvolutionScore < 0 || logEntry.EvolutionScore > 10) {
		return appErrors.Clone(appErrors.ErrValidation, "evolutionScore must be between 0 and 10")
	}
	if logEntry.ID == "" {
		logEntry.ID = uuid.NewString()
	}
	if logEntry.Date == 0 {
		logEntry.Date = s.now().UnixMilli()
	}
	s.stamp(&logEntry.CreatedAt, &logEntry.UpdatedAt)
	return s.upsert("lesson_logs", models.EntityLessonLog, logEntry.ID, logEntry.UpdatedAt, logEntry, map[string]string{
		"school_id":  logEntry.SchoolID,
		"class_id":   logEntry.ClassID,
		"student_id": logEntry.StudentID,
	})
}

// LogsByClass lists a class's logs, newest Date first.
func (s *Store) LogsByClass(classID string) ([]models.LessonLog, error) {
	return listInto[models.LessonLog](s,
		`SELECT data FROM lesson_logs WHERE class_id = ? ORDER BY json_extract(data, '$.date') DESC`, classID)
}

// LogsByStudent lists a student's logs, newest Date first.
func (s *Store) LogsByStudent(studentID string) ([]models.LessonLog, error) {
	return listInto[models.LessonLog](s,
		`SELECT data FROM lesson_logs WHERE student_id = ? ORDER BY json_extract(data, '$.date') DESC`, studentID)
}

// AllLessonLogs lists every log on the device, newest Date first.
func (s *Store) AllLessonLogs() ([]models.LessonLog, error) {
	return listInto[models.LessonLog](s, `SELECT data FROM lesson_logs ORDER BY json_extract(data, '$.date') DESC`)
}

// DeleteLessonLog removes a log and queues the deletion.
func (s *Store) DeleteLessonLog(id string) error {
	return s.deleteByID("lesson_logs", models.EntityLessonLog, id)
}

// stamp sets UpdatedAt to now and CreatedAt on first write.
func (s *Store) stamp(createdAt, updatedAt *int64) {
	now := s.now().UnixMilli()
	if *createdAt == 0 {
		*createdAt = now
	}
	*updatedAt = now
}

// upsert writes the entity row and its queue entry in one transaction.
// extra holds indexed foreign-key columns beyond id/updated_at/data.
func (s *Store) upsert(table string, entity models.EntityKind, id string, updatedAt int64, value interface{}, extra map[string]string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	columns := []string{"id", "updated_at", "data"}
	args := []interface{}{id, updatedAt, string(data)}
	for column, arg := range extra {
		columns = append(columns, column)
		args = append(args, arg)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`,
		table, strings.Join(columns, ", "), placeholders)

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(query, args...); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := enqueue(tx, entity, id, models.OpUpsert, data, updatedAt); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	return tx.Commit()
}

// deleteByID removes the entity row and queues the deletion in one
// transaction. Deleting a row that does not exist is a no-op.
func (s *Store) deleteByID(table string, entity models.EntityKind, id string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}

	res, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if affected == 0 {
		tx.Rollback() //nolint:errcheck
		return nil
	}

	// Deletes carry no snapshot: the entity id travels in the envelope
	// and the payload is the JSON null literal.
	if err := enqueue(tx, entity, id, models.OpDelete, []byte("null"), s.now().UnixMilli()); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	return tx.Commit()
}

func (s *Store) getByID(table, id string, dest interface{}) (bool, error) {
	var data string
	err := s.db.Get(&data, fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, table), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(data), dest)
}

func listInto[T any](s *Store, query string, args ...interface{}) ([]T, error) {
	var blobs []string
	if err := s.db.Select(&blobs, query, args...); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(blobs))
	for _, blob := range blobs {
		var value T
		if err := json.Unmarshal([]byte(blob), &value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}
