package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"streamcheck/internal/blobcache"
	"streamcheck/internal/logging"
)

// cacheNamespaces lists the directories the backend clients write.
var cacheNamespaces = []string{"puuid", "matchLists", "twitchUsers", "vods"}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Response cache utilities",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.Dir)
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached response",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg, ctx.verbose())
			if err != nil {
				return err
			}
			store, err := blobcache.New(cfg.Cache.Dir, logger)
			if err != nil {
				return err
			}
			if err := store.Clear(cacheNamespaces...); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", store.Dir())
			return nil
		},
	})

	return cacheCmd
}
