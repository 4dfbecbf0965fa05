package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	applog "github.com/nao1215/docepub/internal/log"
)

// NewRootCmd creates the root command for docepub.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docepub",
		Short: "Turn a documentation site into a single e-book",
		Long: `docepub reads the navigation menu of a documentation site, fetches every
page it links to, and joins the page articles in menu order into one book.

Images are downloaded next to the book and headings are shifted to match
the menu depth. The book is rendered with pandoc, so pandoc must be on PATH
for every format except html.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting logger selected by the global flags.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	if asJSON, err := cmd.Flags().GetBool("log-json"); err == nil && asJSON {
		return applog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return applog.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}
