package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ucsname/internal/cli"
	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent classifications",
		Long: `Show files classified by earlier runs, newest first.

Examples:
  ucsname history              # Last 20 classifications
  ucsname history -n 0         # Everything
  ucsname history --stats      # Category totals
  ucsname history --clear      # Delete the history`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "Entries to show (0 = all)")
	cmd.Flags().Bool("stats", false, "Show how often each category was assigned")
	cmd.Flags().Bool("clear", false, "Delete every history entry")
	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	stats, _ := cmd.Flags().GetBool("stats")
	clearAll, _ := cmd.Flags().GetBool("clear")
	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	switch {
	case clearAll:
		if !force {
			ok, confirmErr := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out,
				"Delete the whole classification history?", false)
			if confirmErr != nil {
				return confirmErr
			}
			if !ok {
				_, err = fmt.Fprintln(out, cli.FormatInfo("History kept"))
				return err
			}
		}
		n, clearErr := store.ClearHistory(ctx)
		if clearErr != nil {
			return clearErr
		}
		common.LogInfo("Cleared classification history", common.Fields{"entries": n, "database": store.Path()})
		_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d entries", n)))
		return err

	case stats:
		counts, countErr := store.CategoryCounts(ctx)
		if countErr != nil {
			return countErr
		}
		return writeCategoryCounts(out, counts)

	default:
		entries, listErr := store.ListHistory(ctx, limit)
		if listErr != nil {
			return listErr
		}
		return writeHistory(out, entries)
	}
}

func writeHistory(w io.Writer, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, cli.InfoStyle.Render("No classifications recorded yet. Run 'ucsname classify' first."))
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		when := e.ClassifiedAt.Local().Format("2006-01-02 15:04")
		rows = append(rows, append([]string{when}, cli.ResultRow(e.Filename, e.Result)...))
	}
	_, err := fmt.Fprint(w, cli.RenderTable([]string{"When", "File", "CatID", "Category", "Strategy", "Score"}, rows))
	return err
}

func writeCategoryCounts(w io.Writer, counts []model.CategoryCount) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, cli.InfoStyle.Render("No classifications recorded yet."))
		return err
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{
			c.CategoryID,
			strconv.Itoa(c.Count),
			fmt.Sprintf("%.1f%%", float64(c.Count)/float64(total)*100),
		})
	}
	_, err := fmt.Fprint(w, cli.RenderTable([]string{"CatID", "Files", "Share"}, rows))
	return err
}
