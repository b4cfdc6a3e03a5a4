package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/stemblast/internal/bank"
	"github.com/p-n-ai/stemblast/internal/platform/database"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy file banks into PostgreSQL",
		Long:  "Seed replaces every bank in the database that has a file of the same key. Banks without a file are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("database-url")
			if url == "" {
				return fmt.Errorf("--database-url or LEARN_DATABASE_URL is required")
			}

			files, err := fileStore(cmd)
			if err != nil {
				return err
			}
			keys, err := files.Keys()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.New(ctx, url, 2, 1)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db.Pool); err != nil {
				return err
			}
			pg, err := bank.NewPostgresStore(db.Pool)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range keys {
				rows, err := files.Load(ctx, key)
				if err != nil {
					return err
				}
				if err := pg.Put(ctx, key, rows); err != nil {
					return err
				}
				fmt.Fprintf(out, "seeded %s (%d rows)\n", key, len(rows))
			}
			return nil
		},
	}
	cmd.Flags().String("database-url", os.Getenv("LEARN_DATABASE_URL"), "PostgreSQL connection URL")
	return cmd
}
