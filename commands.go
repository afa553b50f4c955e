package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"sjsage522/encarworker/helpers"
	"sjsage522/encarworker/services/store"
)

// runCmd creates the "run" subcommand, also the default action
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scrape every search link forever and notify new ads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(false)
		},
	}
}

// onceCmd creates the "once" subcommand
func onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single pass over the search links and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(true)
		},
	}
}

// linksCmd creates the "links" subcommand
func linksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "links",
		Short: "Print the search links that pass the host filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(false)
			if err != nil {
				return err
			}
			defer log.Close()

			links, err := helpers.LoadLinks(cfg.LinksFile, cfg.AllowedHosts)
			if err != nil {
				return err
			}
			for _, link := range links {
				fmt.Fprintln(cmd.OutOrStdout(), link)
			}
			return nil
		},
	}
}

// initDBCmd creates the "init-db" subcommand
func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the known listings database if absent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(false)
			if err != nil {
				return err
			}
			defer log.Close()

			if err := store.NewSQLiteStore(cfg.DBPath).Init(context.Background()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database ready: %s\n", cfg.DBPath)
			return nil
		},
	}
}

// statsCmd creates the "stats" subcommand
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many listings are known per search link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(false)
			if err != nil {
				return err
			}
			defer log.Close()

			stats, err := store.NewSQLiteStore(cfg.DBPath).Stats(context.Background())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total := 0
			for _, link := range slices.Sorted(maps.Keys(stats)) {
				fmt.Fprintf(out, "%6d  %s\n", stats[link], link)
				total += stats[link]
			}
			fmt.Fprintf(out, "%6d  total\n", total)
			return nil
		},
	}
}
