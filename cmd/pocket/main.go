// Package main is the pocket binary: the offline-first note-taking CLI
// for music teachers. All data lives in a local sqlite database and is
// reconciled with the sync server on demand.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/profpocket/pocket-api/internal/store"
)

const (
	version = "0.1.0"
	appName = "pocket"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Offline-first lesson notes for music teachers",
		Long: `Pocket keeps schools, classes, students and lesson notes in a local
database, derives per-student and per-class insights from them, and
syncs with a server when one is configured. Everything works offline;
sync is optional.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Directory holding the local database")

	cmd.AddCommand(
		initCmd(&dataDir),
		schoolCmd(&dataDir),
		classCmd(&dataDir),
		studentCmd(&dataDir),
		logCmd(&dataDir),
		insightsCmd(&dataDir),
		reportCmd(&dataDir),
		syncCmd(&dataDir),
		registerCmd(&dataDir),
		loginCmd(&dataDir),
		configCmd(&dataDir),
		backupCmd(&dataDir),
		exportCmd(&dataDir),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, version)
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pocket"
	}
	return filepath.Join(home, ".pocket")
}

// openStore opens the local database for one command invocation.
func openStore(dataDir string) (*store.Store, error) {
	return store.Open(dataDir)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
