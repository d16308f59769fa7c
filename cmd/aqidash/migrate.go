// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package main

import (
	"log/slog"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aqidash/aqidash/internal/auth/sqlite"
	"github.com/aqidash/aqidash/internal/config"
	"github.com/aqidash/aqidash/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the credential store schema",
		Long:  `Apply, roll back or inspect the credential store migrations.`,
	}
	config.RegisterStoreFlags(cmd.PersistentFlags())

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				pending, err := m.PendingMigrations()
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					cmd.Println("No pending migrations")
					return nil
				}
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Printf("Applied %d migration(s)\n", len(pending))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations (drops the users table)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("Rolled back all migrations")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				out := "Version: " + strconv.FormatUint(uint64(v), 10)
				if dirty {
					out += " (dirty)"
				}
				cmd.Println(out)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return oops.Code("INVALID_VERSION").With("version", args[0]).Wrap(err)
			}
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				cmd.Printf("Forced version %d\n", v)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import-legacy FILE",
		Short: "Copy accounts from a legacy users.db into the credential store",
		Long: `Reads the username, email and password columns of a users.db written
by the first release and creates the accounts in the configured store.
Existing usernames and emails are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importLegacy(cmd, args[0])
		},
	})

	return cmd
}

func importLegacy(cmd *cobra.Command, path string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := slog.Default()

	src, err := store.OpenSQLiteReadOnly(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	target := cfg.Store
	target.AutoMigrate = true
	users, release, err := openUserRepository(ctx, target, logger)
	if err != nil {
		return err
	}
	defer release()

	result, err := sqlite.ImportLegacy(ctx, src, users, logger)
	if err != nil {
		return err
	}
	cmd.Printf("Imported %d account(s), skipped %d\n", result.Imported, result.Skipped)
	return nil
}

func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) (err error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := ensureSQLiteDir(cfg.Store); err != nil {
		return err
	}

	m, err := store.NewMigrator(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(m)
}
