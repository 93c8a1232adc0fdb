package main

import (
	"context"
	"fmt"
	"os"
	"route-reconciliation-service/internal/adapters/exporters"
	"route-reconciliation-service/internal/adapters/repositories"
	"route-reconciliation-service/internal/config"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/platform/db"
	"route-reconciliation-service/internal/platform/obs"
	"route-reconciliation-service/internal/ports"
	"route-reconciliation-service/internal/services"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var cfg config.Config

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbtool",
		Short: "Maintain route reconciliation storage",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !config.LoadDotEnv() {
				fmt.Fprintln(cmd.ErrOrStderr(), "No .env file found (using environment variables)")
			}

			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded

			logger, err := obs.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			obs.SetLogger(logger)
			return nil
		},
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd(), newInitSqliteCmd(), newSeedCmd(), newExportCmd())
	return root
}

func databaseURL() (string, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return cfg.DatabaseURL, nil
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect Postgres schema migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				url, err := databaseURL()
				if err != nil {
					return err
				}
				if err := repositories.MigrateUp(url); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				url, err := databaseURL()
				if err != nil {
					return err
				}
				if err := repositories.MigrateDown(url); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations reverted.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				url, err := databaseURL()
				if err != nil {
					return err
				}
				v, dirty, err := repositories.MigrateVersion(url)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %v\n", v, dirty)
				return nil
			},
		},
	)

	return migrateCmd
}

func newInitSqliteCmd() *cobra.Command {
	var dbPath string

	c := &cobra.Command{
		Use:   "init-sqlite",
		Short: "Create the SQLite schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = cfg.DBPath
			}

			conn, err := db.OpenSqlite(dbPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Initializing database schema...")
			if err := repositories.InitSchema(conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema ready.")
			return nil
		},
	}

	c.Flags().StringVar(&dbPath, "db-path", "", "SQLite file (defaults to DB_PATH)")
	return c
}

func withStore(ctx context.Context, fn func(ports.RouteSetStore) error) error {
	store, closeStore, err := repositories.OpenStore(ctx, repositories.StoreOptions{
		Backend:       cfg.StoreBackend,
		DBPath:        cfg.DBPath,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		AutoMigrate:   cfg.AutoMigrate,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	return fn(store)
}

// scopeOrToday returns scope, or today's scope for the configured operation.
func scopeOrToday(scope string) string {
	if strings.TrimSpace(scope) != "" {
		return scope
	}
	return domain.ScopeKey(cfg.Operation, time.Now())
}

const defaultSeedFile = "data/seeds/manifests.json"

// seedFile resolves the --file flag, then the configured seed path.
func seedFile(flag string) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	if strings.TrimSpace(cfg.SeedPath) != "" {
		return cfg.SeedPath
	}
	return defaultSeedFile
}

func newSeedCmd() *cobra.Command {
	var scope, file string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Import route manifests from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file = seedFile(file)
			scope = scopeOrToday(scope)

			return withStore(cmd.Context(), func(store ports.RouteSetStore) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Seeding scope %s from %s...\n", scope, file)
				n, err := repositories.SeedFromJSON(cmd.Context(), store, scope, file)
				if err != nil {
					return fmt.Errorf("seeding failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeding complete: %d routes.\n", n)
				return nil
			})
		},
	}

	c.Flags().StringVar(&scope, "scope", "", "scope key (defaults to today's scope)")
	c.Flags().StringVar(&file, "file", "", "manifest JSON file (defaults to SEED_PATH)")
	return c
}

func newExportCmd() *cobra.Command {
	var scope, routeID, out string

	c := &cobra.Command{
		Use:   "export",
		Short: "Write a route CSV, or the scope's XLSX workbook when no route is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope = scopeOrToday(scope)

			return withStore(cmd.Context(), func(store ports.RouteSetStore) error {
				set, err := store.LoadRouteSet(cmd.Context(), scope)
				if err != nil {
					return err
				}

				var write func(*os.File) error
				if routeID != "" {
					r, ok := set.Get(routeID)
					if !ok {
						return fmt.Errorf("export: route %q not found in scope %q", routeID, scope)
					}
					rows := services.ExportRoute(r)
					write = func(f *os.File) error { return exporters.WriteRouteCSV(f, rows) }
					if out == "" {
						out = exporters.RouteCSVFilename(routeID)
					}
				} else {
					cols := services.ConfirmedColumns(set)
					write = func(f *os.File) error { return exporters.WriteRoutesXLSX(f, cols) }
					if out == "" {
						out = exporters.ScopeXLSXFilename(scope)
					}
				}

				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("export: create %q: %w", out, err)
				}
				defer f.Close()

				if err := write(f); err != nil {
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("export: close %q: %w", out, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s.\n", out)
				return nil
			})
		},
	}

	c.Flags().StringVar(&scope, "scope", "", "scope key (defaults to today's scope)")
	c.Flags().StringVar(&routeID, "route", "", "route id for a CSV export")
	c.Flags().StringVar(&out, "out", "", "output file")
	return c
}
