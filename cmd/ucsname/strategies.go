package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ucsname/internal/cli"
	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/storage"
	"github.com/Veraticus/ucsname/internal/strategy"
)

func strategiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "strategies",
		Aliases: []string{"strategy"},
		Short:   "Inspect and tune matching strategies",
		Long: `Manage the strategy registry that drives classification.

Strategies run in priority order (lower first). Classifier strategies form
the fallback chain; matcher strategies produce candidates for them. Changes
are saved to the database and apply to every later run.`,
	}

	cmd.AddCommand(strategiesListCmd())
	cmd.AddCommand(strategiesToggleCmd("enable", true))
	cmd.AddCommand(strategiesToggleCmd("disable", false))
	cmd.AddCommand(strategiesPriorityCmd())
	cmd.AddCommand(strategiesThresholdCmd())
	cmd.AddCommand(strategiesParamCmd())
	cmd.AddCommand(strategiesModeCmd())
	cmd.AddCommand(strategiesResetCmd())
	cmd.AddCommand(strategiesExportCmd())
	cmd.AddCommand(strategiesImportCmd())

	return cmd
}

// withRegistry loads the persisted registry, applies fn and saves the
// result when fn succeeds.
func withRegistry(ctx context.Context, save bool, fn func(*strategy.Registry) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	return applyToRegistry(ctx, store, save, fn)
}

func applyToRegistry(ctx context.Context, store *storage.SQLiteStorage, save bool, fn func(*strategy.Registry) error) error {
	registry, err := loadRegistry(ctx, store, nil)
	if err != nil {
		return err
	}
	if err := fn(registry); err != nil {
		return err
	}
	if !save {
		return nil
	}
	if err := registry.Save(ctx, store); err != nil {
		return fmt.Errorf("failed to save strategies: %w", err)
	}
	return nil
}

func unknownStrategy(key string) error {
	return common.NewUserError(fmt.Sprintf("Unknown strategy %q (see: ucsname strategies list)", key), common.ErrUnknownStrategy)
}

func strategiesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List strategies in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRegistry(cmd.Context(), false, func(r *strategy.Registry) error {
				return writeStrategies(cmd.OutOrStdout(), r)
			})
		},
	}
}

func writeStrategies(w io.Writer, r *strategy.Registry) error {
	entries := r.All()
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Stage != entries[j].Stage {
			return entries[i].Stage < entries[j].Stage
		}
		return entries[i].Priority < entries[j].Priority
	})

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		enabled := cli.StyleSuccess(cli.SuccessIcon)
		if !e.Enabled {
			enabled = cli.StyleError(cli.ErrorIcon)
		}
		rows = append(rows, []string{
			e.Key,
			string(e.Stage),
			enabled,
			strconv.Itoa(e.Priority),
			strconv.FormatFloat(e.Threshold, 'f', -1, 64),
			formatParams(e.Params),
		})
	}

	if _, err := fmt.Fprintln(w, cli.FormatTitle("Strategies")); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, cli.RenderTable(
		[]string{"Key", "Stage", "On", "Priority", "Threshold", "Params"}, rows)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nmultiMatchStrategy: %s\nmultiWordMode: %s\n",
		cli.BoldStyle.Render(string(r.MultiMatchStrategy())),
		cli.BoldStyle.Render(string(r.MultiWordMode())))
	return err
}

func formatParams(params map[string]float64) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+strconv.FormatFloat(params[name], 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

func strategiesToggleCmd(verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <key>...",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " strategies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), true, func(r *strategy.Registry) error {
				for _, key := range args {
					if !r.SetEnabled(key, enabled) {
						return unknownStrategy(key)
					}
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%sd: %s", verb, strings.Join(args, ", "))))
				return err
			})
		},
	}
}

func strategiesPriorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority <key> <n>",
		Short: "Set a strategy's priority (lower runs first)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return common.NewUserError("Priority must be an integer", err)
			}
			return withRegistry(cmd.Context(), true, func(r *strategy.Registry) error {
				if !r.SetPriority(args[0], n) {
					return unknownStrategy(args[0])
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s priority set to %d", args[0], n)))
				return err
			})
		},
	}
}

func strategiesThresholdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "threshold <key> <score>",
		Short: "Set the minimum score a strategy must reach",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil || v < 0 {
				return common.NewUserError("Threshold must be a non-negative number", err)
			}
			return withRegistry(cmd.Context(), true, func(r *strategy.Registry) error {
				if !r.SetThreshold(args[0], v) {
					return unknownStrategy(args[0])
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s threshold set to %g", args[0], v)))
				return err
			})
		},
	}
}

func strategiesParamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "param <key> <name> <value>",
		Short: "Set a scoring parameter of a strategy",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return common.NewUserError("Parameter value must be a number", err)
			}
			return withRegistry(cmd.Context(), true, func(r *strategy.Registry) error {
				if !r.SetParam(args[0], args[1], v) {
					return unknownStrategy(args[0])
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s.%s set to %g", args[0], args[1], v)))
				return err
			})
		},
	}
}

func strategiesModeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Set how multiple matches and multi-word terms are resolved",
		Long: `Set the registry-wide matching knobs.

  --multi-match  firstMatch | allMatches | highestPriority
  --multi-word   exact | partial | fuzzy | semantic`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			multiMatch, _ := cmd.Flags().GetString("multi-match")
			multiWord, _ := cmd.Flags().GetString("multi-word")
			if multiMatch == "" && multiWord == "" {
				return common.NewUserError("Nothing to change: pass --multi-match or --multi-word", nil)
			}
			return withRegistry(cmd.Context(), true, func(r *strategy.Registry) error {
				if multiMatch != "" && !r.SetMultiMatchStrategy(strategy.MultiMatchStrategy(multiMatch)) {
					return common.NewUserError(fmt.Sprintf("Unknown multi-match strategy %q", multiMatch), common.ErrInvalidConfig)
				}
				if multiWord != "" && !r.SetMultiWordMode(strategy.MultiWordMode(multiWord)) {
					return common.NewUserError(fmt.Sprintf("Unknown multi-word mode %q", multiWord), common.ErrInvalidConfig)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("multiMatchStrategy=%s multiWordMode=%s",
					r.MultiMatchStrategy(), r.MultiWordMode())))
				return err
			})
		},
	}
	cmd.Flags().String("multi-match", "", "How several matching terms are resolved")
	cmd.Flags().String("multi-word", "", "How multi-word terms are matched")
	return cmd
}

func strategiesResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				ok, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(),
					"Reset every strategy to its default?", false)
				if err != nil {
					return err
				}
				if !ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Reset canceled"))
					return err
				}
			}
			return withRegistry(cmd.Context(), true, func(r *strategy.Registry) error {
				r.ResetToDefaults()
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Strategies reset to defaults"))
				return err
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	return cmd
}

func strategiesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the strategy settings as TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), false, func(r *strategy.Registry) error {
				if len(args) == 0 {
					return r.ExportTOML(cmd.OutOrStdout())
				}
				f, err := os.Create(args[0]) //nolint:gosec // Output path chosen by the user
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", args[0], err)
				}
				defer func() {
					if closeErr := f.Close(); closeErr != nil {
						slog.Error("Failed to close export file", "error", closeErr)
					}
				}()
				if err := r.ExportTOML(f); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported strategies to "+args[0]))
				return err
			})
		},
	}
}

func strategiesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the strategy settings from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0]) //nolint:gosec // Input path chosen by the user
			if err != nil {
				return common.NewUserError("Cannot open "+args[0], err)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil {
					slog.Error("Failed to close import file", "error", closeErr)
				}
			}()
			return withRegistry(cmd.Context(), true, func(r *strategy.Registry) error {
				if err := r.ImportTOML(f); err != nil {
					return common.NewUserError("Invalid strategy file "+args[0], err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Imported strategies from "+args[0]))
				return err
			})
		},
	}
}

// enabledKeys lists the enabled strategies of a stage in run order.
func enabledKeys(r *strategy.Registry, stage model.StrategyStage) []string {
	steps := r.EnabledInStage(stage)
	keys := make([]string, len(steps))
	for i, s := range steps {
		keys[i] = s.Key
	}
	return keys
}
