package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/foodineye/config"
	"github.com/shashiranjanraj/foodineye/database/indexes"
	"github.com/shashiranjanraj/foodineye/database/seeders"
	"github.com/shashiranjanraj/foodineye/internal/bootstrap"
	"github.com/shashiranjanraj/foodineye/pkg/database"
)

// foodineye index:ensure
var indexEnsureCmd = &cobra.Command{
	Use:   "index:ensure",
	Short: "Create every registered MongoDB index",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		m, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
		if err != nil {
			return err
		}
		defer m.Close(context.Background())

		created, err := indexes.EnsureAll(ctx, m.DB)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(created))
		for coll := range created {
			names = append(names, coll)
		}
		sort.Strings(names)
		out := cmd.OutOrStdout()
		for _, coll := range names {
			for _, idx := range created[coll] {
				fmt.Fprintf(out, "  • %s.%s\n", coll, idx)
			}
		}
		fmt.Fprintf(out, "Indexes ensured on %s\n", config.MongoDatabase())
		return nil
	},
}

// foodineye seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all demo-data seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := bootstrap.New(ctx)
		if err != nil {
			return err
		}
		defer c.Close(context.Background())

		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(ctx, c, cmd.OutOrStdout())
	},
}
