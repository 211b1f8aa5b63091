package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ucsname/internal/cli"
	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect special-pattern rules",
	}
	cmd.AddCommand(rulesTestCmd())
	cmd.AddCommand(rulesListCmd())
	return cmd
}

func loadConfiguredRules() (*rules.Table, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Data.RulesFile == "" {
		return nil, common.NewUserError("No rule dataset configured (set data.rules_file or --rules)", common.ErrMissingConfig)
	}
	return loadRuleTable(cfg)
}

func rulesTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <text>",
		Short: "Show which rules match a piece of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadConfiguredRules()
			if err != nil {
				return err
			}
			return writeRuleHits(cmd.OutOrStdout(), strings.Join(args, " "), table.Evaluate(strings.Join(args, " ")))
		},
	}
}

func writeRuleHits(w io.Writer, text string, hits []model.RuleRecord) error {
	if len(hits) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("No rule matches %q", text)))
		return err
	}
	if _, err := fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("%d rule(s) match %q", len(hits), text))); err != nil {
		return err
	}
	return writeRules(w, hits)
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded rules, highest priority first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := loadConfiguredRules()
			if err != nil {
				return err
			}
			return writeRules(cmd.OutOrStdout(), table.Rules())
		},
	}
}

func writeRules(w io.Writer, list []model.RuleRecord) error {
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		results := make([]string, 0, len(r.Results))
		for _, t := range r.Results {
			results = append(results, t.CategoryID+" ("+t.Source+")")
		}
		rows = append(rows, []string{
			r.ID,
			string(r.MatchType),
			r.Pattern,
			strconv.Itoa(r.Priority),
			strings.Join(results, ", "),
		})
	}
	_, err := fmt.Fprint(w, cli.RenderTable([]string{"ID", "Match", "Pattern", "Priority", "Results"}, rows))
	return err
}
