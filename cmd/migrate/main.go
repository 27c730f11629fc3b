// migrate aplica o revierte el esquema embebido en PostgreSQL.
//
// Uso: go run ./cmd/migrate [up|down|version|force]
// La conexión sale de DATABASE_URL o DB_* (ver pkg/config); --dsn la reemplaza.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/mes-dispatch/internal/infrastructure/postgres"
	"github.com/jhoicas/mes-dispatch/pkg/config"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	dsnFlag  string
	migrator *postgres.Migrator
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Migraciones del esquema MES",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})
			dsn := dsnFlag
			if dsn == "" {
				dsn = cfg.DB.ConnectionString()
			}
			migrator, err = postgres.NewMigrator(dsn, log)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if migrator == nil {
				return nil
			}
			return migrator.Close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "Connection string (por defecto DATABASE_URL/DB_*)")

	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newDownCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newForceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator.Up()
		},
	}
}

func newDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revierte migraciones (--steps 0 revierte todas)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator.Down(steps)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Cantidad de migraciones a revertir")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión actual del esquema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := migrator.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
			return nil
		},
	}
}

func newForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force VERSION",
		Short: "Fija la versión sin ejecutar SQL (sale de un estado dirty)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("versión inválida %q: %w", args[0], err)
			}
			return migrator.Force(version)
		},
	}
}
