package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/profpocket/pocket-api/internal/insight"
	"github.com/profpocket/pocket-api/pkg/export"
)

func insightsCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Derived insights from the local notes",
	}

	student := &cobra.Command{
		Use:   "student <id>",
		Short: "Trend, projection, risk and suggestion for one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			logs, err := s.LogsByStudent(args[0])
			if err != nil {
				return err
			}
			result := insight.New(nil).Student(args[0], logs)
			return printJSON(result)
		},
	}

	cmd.AddCommand(student)
	return cmd
}

func reportCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregated reports",
	}

	var pdfPath string
	class := &cobra.Command{
		Use:   "class <id>",
		Short: "Health, trend, top needs and suggestions for one class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			class, err := s.Class(args[0])
			if err != nil {
				return err
			}
			if class == nil {
				return fmt.Errorf("class %s not found", args[0])
			}
			logs, err := s.LogsByClass(class.ID)
			if err != nil {
				return err
			}
			students, err := s.StudentsByClass(class.ID)
			if err != nil {
				return err
			}

			report := insight.New(nil).ClassReport(class.ID, class.Name, logs, students)

			if pdfPath != "" {
				raw, err := export.RenderClassReportPDF(&report)
				if err != nil {
					return err
				}
				if err := os.WriteFile(pdfPath, raw, 0o644); err != nil {
					return err
				}
				fmt.Printf("Report written to %s\n", pdfPath)
				return nil
			}
			return printJSON(report)
		},
	}
	class.Flags().StringVar(&pdfPath, "pdf", "", "Write the report as a PDF to this path")

	cmd.AddCommand(class)
	return cmd
}

func exportCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export local data as CSV",
	}

	var classID, outPath string
	roster := &cobra.Command{
		Use:   "roster",
		Short: "Export a class roster as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			students, err := s.StudentsByClass(classID)
			if err != nil {
				return err
			}
			raw, err := export.RenderCSV(export.RosterDataset(students))
			if err != nil {
				return err
			}
			return writeOrPrint(outPath, raw)
		},
	}
	roster.Flags().StringVar(&classID, "class", "", "Class ID")
	roster.Flags().StringVar(&outPath, "out", "", "Output file (default stdout)")
	roster.MarkFlagRequired("class") //nolint:errcheck

	var logClassID, logOutPath string
	logs := &cobra.Command{
		Use:   "logs",
		Short: "Export a class's lesson notes as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.LogsByClass(logClassID)
			if err != nil {
				return err
			}
			raw, err := export.RenderCSV(export.LogDataset(entries))
			if err != nil {
				return err
			}
			return writeOrPrint(logOutPath, raw)
		},
	}
	logs.Flags().StringVar(&logClassID, "class", "", "Class ID")
	logs.Flags().StringVar(&logOutPath, "out", "", "Output file (default stdout)")
	logs.MarkFlagRequired("class") //nolint:errcheck

	cmd.AddCommand(roster, logs)
	return cmd
}

func writeOrPrint(path string, raw []byte) error {
	if path == "" {
		fmt.Print(string(raw))
		return nil
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return err
	}
	fmt.Printf("Written to %s\n", path)
	return nil
}
