package models

// BackupFile is the portable JSON snapshot of a device's local store.
// Import applies it as a wholesale upsert-by-id, never a merge.
type BackupFile struct {
	Professor  *ProfessorProfile `json:"professor,omitempty"`
	Schools    []School          `json:"schools"`
	Classes    []ClassGroup      `json:"classes"`
	Students   []Student         `json:"students"`
	LessonLogs []LessonLog       `json:"lessonLogs"`
}
