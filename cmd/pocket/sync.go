package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/profpocket/pocket-api/internal/backup"
	"github.com/profpocket/pocket-api/internal/models"
	"github.com/profpocket/pocket-api/internal/store"
	"github.com/profpocket/pocket-api/internal/syncclient"
)

func syncCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending changes and pull remote ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := syncclient.NewRunner(s, nil).Run(cmd.Context())
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Println("No server configured; nothing to do. Set one with: pocket config set-server <url>")
				return nil
			}
			fmt.Printf("Synced: %d pushed, %d pulled\n", result.Pushed, result.Pulled)
			return nil
		},
	}
}

func registerCmd(dataDir *string) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the configured server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			serverURL, err := requireServerURL(s)
			if err != nil {
				return err
			}
			token, err := syncclient.New(serverURL, "").Register(cmd.Context(), models.RegisterRequest{
				Email: email, Password: password, Name: name,
			})
			if err != nil {
				return err
			}
			if err := s.SetKV(store.KeyToken, token); err != nil {
				return err
			}
			fmt.Println("Account created and logged in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.MarkFlagRequired("email")    //nolint:errcheck
	cmd.MarkFlagRequired("password") //nolint:errcheck
	cmd.MarkFlagRequired("name")     //nolint:errcheck
	return cmd
}

func loginCmd(dataDir *string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the configured server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			serverURL, err := requireServerURL(s)
			if err != nil {
				return err
			}
			token, err := syncclient.New(serverURL, "").Login(cmd.Context(), models.LoginRequest{
				Email: email, Password: password,
			})
			if err != nil {
				return err
			}
			if err := s.SetKV(store.KeyToken, token); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.MarkFlagRequired("email")    //nolint:errcheck
	cmd.MarkFlagRequired("password") //nolint:errcheck
	return cmd
}

func configCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Device configuration",
	}

	setServer := &cobra.Command{
		Use:   "set-server <url>",
		Short: "Set the sync server base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.SetKV(store.KeyServerURL, args[0]); err != nil {
				return err
			}
			fmt.Printf("Server set to %s\n", args[0])
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()

			serverURL, err := s.GetKV(store.KeyServerURL)
			if err != nil {
				return err
			}
			token, err := s.GetKV(store.KeyToken)
			if err != nil {
				return err
			}
			lastSync, err := s.LastSyncAt()
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"serverUrl":  serverURL,
				"loggedIn":   token != "",
				"lastSyncAt": lastSync,
			})
		},
	}

	cmd.AddCommand(setServer, get)
	return cmd
}

func backupCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and restore the local database",
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a JSON snapshot of all local data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := backup.ExportToFile(s, args[0]); err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", args[0])
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a JSON snapshot (validated before any write)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(*dataDir)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := backup.ImportFromFile(s, args[0]); err != nil {
				return err
			}
			fmt.Printf("Backup restored from %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(exportCmd, importCmd)
	return cmd
}

func requireServerURL(s *store.Store) (string, error) {
	serverURL, err := s.GetKV(store.KeyServerURL)
	if err != nil {
		return "", err
	}
	if serverURL == "" {
		return "", fmt.Errorf("no server configured: run pocket config set-server <url> first")
	}
	return serverURL, nil
}
