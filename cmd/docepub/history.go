package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/docepub/internal/config"
	"github.com/nao1215/docepub/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [base-url]",
		Short: "List recorded builds",
		Long: `History lists the builds recorded in the history database, most recent first.

With a base URL only the builds of that documentation root are listed.

Examples:
  # Show the last 20 builds
  docepub history

  # Show every build of one site
  docepub history https://docs.spring.io/spring-boot/reference/ --limit 0`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of builds to list (0 for all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No builds recorded yet.")
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	var records []database.Record
	if len(args) > 0 {
		records, err = db.ListBuildsFor(cmd.Context(), args[0])
		if err == nil && limit > 0 && len(records) > limit {
			records = records[:limit]
		}
	} else {
		records, err = db.ListBuilds(cmd.Context(), limit)
	}
	if err != nil {
		return err
	}

	return writeHistory(cmd.OutOrStdout(), records)
}

// writeHistory prints records as a Markdown table.
func writeHistory(w io.Writer, records []database.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No builds recorded yet.")
		return err
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			fmt.Sprint(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Title,
			r.BaseURL,
			fmt.Sprint(r.Pages),
			r.Duration.Round(time.Second).String(),
			r.Status,
			r.OutputFile,
		})
	}

	md := markdown.NewMarkdown(w)
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Title", "Source", "Pages", "Duration", "Status", "Output"},
		Rows:   rows,
	})
	return md.Build()
}
