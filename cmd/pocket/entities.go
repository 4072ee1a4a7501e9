package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/profpocket/pocket-api/internal/models"
)

func initCmd(dataDir *string) *cobra.Command {
	var name, email, phone, institution string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the professor profile on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			profile := &models.ProfessorProfile{
				Name:            name,
				Email:           email,
				Phone:           phone,
				MainInstitution: institution,
			}
			if existing, err := s.Professor(); err != nil {
				return err
			} else if existing != nil {
				profile.CreatedAt = existing.CreatedAt
			}
			if err := s.SaveProfessor(profile); err != nil {
				return err
			}
			fmt.Printf("Profile saved for %s\n", profile.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Professor name")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	cmd.Flags().StringVar(&phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&institution, "institution", "", "Main institution")
	cmd.MarkFlagRequired("name") //nolint:errcheck
	return cmd
}

func schoolCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "school",
		Short: "Manage schools",
	}

	var name, address, notes string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a school",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			school := &models.School{Name: name, Address: address, Notes: notes}
			if err := s.SaveSchool(school); err != nil {
				return err
			}
			fmt.Printf("School %s added (%s)\n", school.Name, school.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "School name")
	add.Flags().StringVar(&address, "address", "", "Address")
	add.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	add.MarkFlagRequired("name") //nolint:errcheck

	list := &cobra.Command{
		Use:   "list",
		Short: "List schools",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			schools, err := s.Schools()
			if err != nil {
				return err
			}
			return printJSON(schools)
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a school",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteSchool(args[0])
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}

func classCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Manage classes",
	}

	var schoolID, name, schedule, notes string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a class to a school",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			class := &models.ClassGroup{SchoolID: schoolID, Name: name, Schedule: schedule, Notes: notes}
			if err := s.SaveClass(class); err != nil {
				return err
			}
			fmt.Printf("Class %s added (%s)\n", class.Name, class.ID)
			return nil
		},
	}
	add.Flags().StringVar(&schoolID, "school", "", "School ID")
	add.Flags().StringVar(&name, "name", "", "Class name")
	add.Flags().StringVar(&schedule, "schedule", "", "Weekly schedule")
	add.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	add.MarkFlagRequired("school") //nolint:errcheck
	add.MarkFlagRequired("name")   //nolint:errcheck

	var listSchoolID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the classes of a school",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			classes, err := s.Classes(listSchoolID)
			if err != nil {
				return err
			}
			return printJSON(classes)
		},
	}
	list.Flags().StringVar(&listSchoolID, "school", "", "School ID")
	list.MarkFlagRequired("school") //nolint:errcheck

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteClass(args[0])
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}

func studentCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage students",
	}

	var schoolID, classID, name, contact, notes string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			student := &models.Student{SchoolID: schoolID, ClassID: classID, Name: name, Contact: contact, Notes: notes}
			if err := s.SaveStudent(student); err != nil {
				return err
			}
			fmt.Printf("Student %s added (%s)\n", student.Name, student.ID)
			return nil
		},
	}
	add.Flags().StringVar(&schoolID, "school", "", "School ID")
	add.Flags().StringVar(&classID, "class", "", "Class ID (optional)")
	add.Flags().StringVar(&name, "name", "", "Student name")
	add.Flags().StringVar(&contact, "contact", "", "Contact")
	add.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	add.MarkFlagRequired("school") //nolint:errcheck
	add.MarkFlagRequired("name")   //nolint:errcheck

	var listSchoolID, listClassID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List students by class or school",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			var (
				students []models.Student
				listErr  error
			)
			switch {
			case listClassID != "":
				students, listErr = s.StudentsByClass(listClassID)
			case listSchoolID != "":
				students, listErr = s.StudentsBySchool(listSchoolID)
			default:
				return fmt.Errorf("one of --class or --school is required")
			}
			if listErr != nil {
				return listErr
			}
			return printJSON(students)
		},
	}
	list.Flags().StringVar(&listSchoolID, "school", "", "School ID")
	list.Flags().StringVar(&listClassID, "class", "", "Class ID")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteStudent(args[0])
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}

func logCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record and browse lesson notes",
	}

	var (
		schoolID, classID, studentID string
		noteType, plan               string
		score                        float64
		needs, repertoire            []string
		date                         int64
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a lesson note",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			entry := &models.LessonLog{
				SchoolID:       schoolID,
				ClassID:        classID,
				StudentID:      studentID,
				Type:           models.NoteType(noteType),
				Date:           date,
				EvolutionScore: score,
				Needs:          needs,
				Repertoire:     repertoire,
				Plan:           plan,
			}
			if err := s.SaveLessonLog(entry); err != nil {
				return err
			}
			fmt.Printf("Note recorded (%s)\n", entry.ID)
			return nil
		},
	}
	add.Flags().StringVar(&schoolID, "school", "", "School ID")
	add.Flags().StringVar(&classID, "class", "", "Class ID")
	add.Flags().StringVar(&studentID, "student", "", "Student ID (empty for a class-wide note)")
	add.Flags().StringVar(&noteType, "type", "evolution", "Note type: evolution, need, repertoire or plan")
	add.Flags().Float64Var(&score, "score", 0, "Evolution score 0-10")
	add.Flags().StringSliceVar(&needs, "need", nil, "Observed need (repeatable)")
	add.Flags().StringSliceVar(&repertoire, "rep", nil, "Repertoire piece (repeatable)")
	add.Flags().StringVar(&plan, "plan", "", "Plan for the next lesson")
	add.Flags().Int64Var(&date, "date", 0, "Note date in epoch milliseconds (default now)")
	add.MarkFlagRequired("school") //nolint:errcheck
	add.MarkFlagRequired("class")  //nolint:errcheck

	var listClassID, listStudentID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List notes by class or student",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			var (
				logs    []models.LessonLog
				listErr error
			)
			switch {
			case listStudentID != "":
				logs, listErr = s.LogsByStudent(listStudentID)
			case listClassID != "":
				logs, listErr = s.LogsByClass(listClassID)
			default:
				return fmt.Errorf("one of --class or --student is required")
			}
			if listErr != nil {
				return listErr
			}
			return printJSON(logs)
		},
	}
	list.Flags().StringVar(&listClassID, "class", "", "Class ID")
	list.Flags().StringVar(&listStudentID, "student", "", "Student ID")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteLessonLog(args[0])
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}
