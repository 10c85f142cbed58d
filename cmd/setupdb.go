package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"factoryflow/quote-service/internal/config"
	"factoryflow/quote-service/internal/db"
	"factoryflow/quote-service/internal/jobstore"
)

var setupDBPrint bool

var setupDBCmd = &cobra.Command{
	Use:   "setup-db",
	Short: "Create the jobs table and its access policies",
	Long: `Creates the jobs table if it does not exist, adds any missing pricing
columns, and grants JOBS_POLICY_ROLE (default "anon") insert and select
through row-level security policies. Set JOBS_POLICY_ROLE="" to skip the
policies. With --print the statements are printed instead of executed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if setupDBPrint {
			for _, stmt := range jobstore.Schema(cfg.JobsTable, cfg.PolicyRole) {
				fmt.Printf("%s;\n\n", stmt)
			}
			return nil
		}
		if cfg.DemoOnly() {
			return errors.New("DATABASE_URL is required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*cfg.RemoteTimeout)
		defer cancel()

		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.PingPostgres(ctx, pool, cfg.RemoteTimeout); err != nil {
			return err
		}

		if err := jobstore.Setup(ctx, pool, cfg.JobsTable, cfg.PolicyRole); err != nil {
			badColor.Printf("Setup failed: %v\n", err)
			return err
		}
		goodColor.Printf("Table %s is ready ✓\n", cfg.JobsTable)
		return nil
	},
}

func init() {
	setupDBCmd.Flags().BoolVar(&setupDBPrint, "print", false, "print the SQL instead of running it")
}
