package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootDir    string
	verbose    bool
	skipWireup bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sitemigrate",
		Short: "Migrate an exported site into CMS-managed Markdown",
		Long: `sitemigrate reads the search index and static pages of an exported
site, writes one front-matter Markdown file per publication, person and
news item, generates the CMS configuration and rewires the static pages
to show the migrated content.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <root>/sitemigrate.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root holding site/ and data/")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run every stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), true, func(a *app) error {
				report, err := a.runner.Run(cmd.Context(), skipWireup)
				if report != nil {
					printReport(report)
				}
				return err
			})
		},
	}
	runCmd.Flags().BoolVar(&skipWireup, "skip-wireup", false, "Leave the static pages untouched")
	rootCmd.AddCommand(runCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "extract",
		Short: "Extract records into JSON and Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), true, func(a *app) error {
				report, err := a.runner.Extract(cmd.Context())
				printReport(report)
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "markdown",
		Short: "Regenerate Markdown from the JSON records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), false, func(a *app) error {
				report, err := a.runner.Markdown()
				printReport(report)
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Fill list_summary and missing years in the Markdown files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), false, func(a *app) error {
				report, err := a.runner.Summaries()
				printReport(report)
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "cms-config",
		Short: "Generate the CMS configuration from the Markdown files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), false, func(a *app) error {
				report, err := a.runner.CMSConfig()
				printReport(report)
				return err
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "wireup",
		Short: "Rewrite the static pages from the Markdown files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), false, func(a *app) error {
				report, err := a.runner.Wireup()
				printReport(report)
				return err
			})
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
