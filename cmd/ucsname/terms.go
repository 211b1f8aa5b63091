package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ucsname/internal/cli"
	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/terms"
)

func termsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Inspect the UCS term table",
	}
	cmd.AddCommand(termsStatsCmd())
	cmd.AddCommand(termsLookupCmd())
	return cmd
}

func termsStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the loaded term dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			top, _ := cmd.Flags().GetInt("top")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			table, err := loadTermTable(cfg)
			if err != nil {
				return err
			}
			return writeTermStats(cmd.OutOrStdout(), computeTermStats(table), top)
		},
	}
	cmd.Flags().Int("top", 10, "Categories to list by term count")
	return cmd
}

// termStats summarizes a term table.
type termStats struct {
	PerCategory  []model.CategoryCount
	Terms        int
	Categories   int
	WithSynonyms int
	Synonyms     int
	MultiWord    int
	Localized    int
}

func computeTermStats(table *terms.Table) termStats {
	records := table.Records()
	counts := make(map[string]int)
	var s termStats
	s.Terms = len(records)
	for _, r := range records {
		counts[r.CategoryID]++
		if len(r.Synonyms) > 0 {
			s.WithSynonyms++
			s.Synonyms += len(r.Synonyms)
		}
		if len(strings.Fields(r.Source)) > 1 {
			s.MultiWord++
		}
		if r.Target != "" {
			s.Localized++
		}
	}

	s.Categories = len(counts)
	s.PerCategory = make([]model.CategoryCount, 0, len(counts))
	for id, n := range counts {
		s.PerCategory = append(s.PerCategory, model.CategoryCount{CategoryID: id, Count: n})
	}
	sort.Slice(s.PerCategory, func(i, j int) bool {
		if s.PerCategory[i].Count != s.PerCategory[j].Count {
			return s.PerCategory[i].Count > s.PerCategory[j].Count
		}
		return s.PerCategory[i].CategoryID < s.PerCategory[j].CategoryID
	})
	return s
}

func writeTermStats(w io.Writer, s termStats, top int) error {
	summary := fmt.Sprintf("Terms: %d\n", s.Terms) +
		fmt.Sprintf("Categories: %d\n", s.Categories) +
		fmt.Sprintf("Multi-word terms: %d\n", s.MultiWord) +
		fmt.Sprintf("Terms with synonyms: %d (%d synonyms)\n", s.WithSynonyms, s.Synonyms) +
		fmt.Sprintf("Terms with a localized name: %d", s.Localized)
	if _, err := fmt.Fprintln(w, cli.RenderBox(cli.ChartIcon+" Term Table", summary)); err != nil {
		return err
	}

	if top <= 0 || len(s.PerCategory) == 0 {
		return nil
	}
	rows := make([][]string, 0, top)
	for _, c := range s.PerCategory[:min(top, len(s.PerCategory))] {
		rows = append(rows, []string{c.CategoryID, strconv.Itoa(c.Count)})
	}
	_, err := fmt.Fprint(w, cli.RenderTable([]string{"CatID", "Terms"}, rows))
	return err
}

func termsLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <text>",
		Short: "Show the matcher candidates for a piece of text",
		Long: `Run the term matcher on text and list every candidate it produces with
its match type and score, best first. The line marked with an arrow is what
the current multiMatchStrategy would pick.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			return a.writeLookup(cmd.OutOrStdout(), strings.Join(args, " "), limit)
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum candidates to show")
	return cmd
}

func (a *app) writeLookup(w io.Writer, text string, limit int) error {
	cands := a.matcher.Candidates(text)
	if len(cands) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("No candidates for %q", text)))
		return err
	}
	cands.Sort()

	var picked string
	if best := a.matcher.FindMatch(text); best != nil {
		picked = best.Key()
	}

	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	rows := make([][]string, 0, len(cands))
	for _, c := range cands {
		mark := ""
		if c.Term.Key() == picked {
			mark = cli.StyleSuccess("→")
			picked = ""
		}
		rows = append(rows, []string{
			mark,
			c.Term.Source,
			c.Term.CategoryID,
			c.MatchType,
			strconv.FormatFloat(c.Score, 'f', 1, 64),
		})
	}

	if _, err := fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("Candidates for %q", text))); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, cli.RenderTable([]string{"", "Term", "CatID", "Match", "Score"}, rows)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, cli.SubtleStyle.Render(fmt.Sprintf("matcher chain: %s", strings.Join(enabledKeys(a.registry, model.StageMatcher), " → "))))
	return err
}
