package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the enrichment record cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Purge(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("cache purged", zap.Int("removed", removed))
		cmd.Printf("removed %d expired entries\n", removed)
		return nil
	},
}

var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the cache schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		cmd.Println("cache schema up to date")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)
	rootCmd.AddCommand(cacheCmd)
}
