package models

// EntityKind names the record families carried by the sync protocol.
type EntityKind string

const (
	EntityProfessor EntityKind = "professor"
	EntitySchool    EntityKind = "school"
	EntityClass     EntityKind = "class"
	EntityStudent   EntityKind = "student"
	EntityLessonLog EntityKind = "lessonLog"
)

// Valid reports whether the kind is one of the known entity families.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityProfessor, EntitySchool, EntityClass, EntityStudent, EntityLessonLog:
		return true
	}
	return false
}

// NoteType categorises a lesson log entry.
type NoteType string

const (
	NoteEvolution  NoteType = "evolution"
	NoteNeed       NoteType = "need"
	NoteRepertoire NoteType = "repertoire"
	NotePlan       NoteType = "plan"
)

// Valid reports whether the note type belongs to the closed set.
func (t NoteType) Valid() bool {
	switch t {
	case NoteEvolution, NoteNeed, NoteRepertoire, NotePlan:
		return true
	}
	return false
}

// ProfessorProfile is the singleton owner profile on a device.
type ProfessorProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	MainInstitution string `json:"mainInstitution,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	UpdatedAt       int64  `json:"updatedAt"`
}

// School groups classes under one institution.
type School struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ClassGroup is a teaching group inside a school.
type ClassGroup struct {
	ID        string `json:"id"`
	SchoolID  string `json:"schoolId"`
	Name      string `json:"name"`
	Schedule  string `json:"schedule,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Student belongs to a school and optionally a class.
type Student struct {
	ID        string `json:"id"`
	SchoolID  string `json:"schoolId"`
	ClassID   string `json:"classId,omitempty"`
	Name      string `json:"name"`
	Contact   string `json:"contact,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// LessonLog is a timestamped observation about a class or a single student.
// An empty StudentID marks a class-wide note. Date drives every
// time-windowed aggregation; CreatedAt/UpdatedAt drive sync ordering.
type LessonLog struct {
	ID             string   `json:"id"`
	SchoolID       string   `json:"schoolId"`
	ClassID        string   `json:"classId"`
	StudentID      string   `json:"studentId,omitempty"`
	Type           NoteType `json:"type"`
	Date           int64    `json:"date"`
	EvolutionScore float64  `json:"evolutionScore"`
	Needs          []string `json:"needs,omitempty"`
	Repertoire     []string `json:"repertoire,omitempty"`
	Plan           string   `json:"plan,omitempty"`
	CreatedAt      int64    `json:"createdAt"`
	UpdatedAt      int64    `json:"updatedAt"`
}
