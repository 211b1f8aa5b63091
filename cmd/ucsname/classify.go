package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/ucsname/internal/classifier"
	"github.com/Veraticus/ucsname/internal/cli"
	"github.com/Veraticus/ucsname/internal/common"
	"github.com/Veraticus/ucsname/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [files or directories...]",
		Short: "Assign UCS categories to sound files",
		Long: `Classify sound effect files by name.

Each argument is a filename or a directory; directories are walked and every
audio file inside is classified. Files do not need to exist: only the name
is used. With --stdin, names are read one per line from standard input.

Examples:
  ucsname classify "Metal Door Slam 03.wav"
  ucsname classify ~/Sounds/library --workers 8
  ucsname classify 键盘打字.wav --translate
  ucsname classify glitchy_robot.wav --all --json
  find . -name '*.wav' | ucsname classify --stdin`,
		RunE: runClassify,
	}

	// Flags
	cmd.Flags().Bool("stdin", false, "Read filenames from standard input")
	cmd.Flags().Bool("translate", false, "Translate filenames before matching")
	cmd.Flags().Bool("ai", false, "Ask the AI classifier first")
	cmd.Flags().String("strategy", "", "Run only this classifier strategy")
	cmd.Flags().Bool("all", false, "Show the result of every strategy, not just the winner")
	cmd.Flags().Bool("json", false, "Print results as JSON")
	cmd.Flags().IntP("workers", "w", 4, "Files classified in parallel")
	cmd.Flags().Bool("record", true, "Record results in the history")

	// Bind to viper
	_ = viper.BindPFlag("classify.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("classify.record", cmd.Flags().Lookup("record"))
	_ = viper.BindPFlag("ai.enabled", cmd.Flags().Lookup("ai"))

	return cmd
}

// classifyOptions is the per-run behavior of classifyFiles.
type classifyOptions struct {
	reporter *cli.Reporter
	strategy string
	workers  int
	all      bool
	record   bool
}

// fileOutcome is the classification of one file.
type fileOutcome struct {
	Err            error                         `json:"-"`
	Result         *model.ClassificationResult   `json:"result"`
	File           string                        `json:"file"`
	TranslatedText string                        `json:"translatedText,omitempty"`
	Error          string                        `json:"error,omitempty"`
	Results        []*model.ClassificationResult `json:"results,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	useStdin, _ := cmd.Flags().GetBool("stdin")
	useTranslate, _ := cmd.Flags().GetBool("translate")
	pinned, _ := cmd.Flags().GetString("strategy")
	all, _ := cmd.Flags().GetBool("all")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if useStdin {
		lines, readErr := cli.NewNonBlockingReader(cmd.InOrStdin()).ReadLines(ctx)
		if readErr != nil {
			return fmt.Errorf("failed to read filenames: %w", readErr)
		}
		args = append(args, lines...)
	}
	files, err := collectFilenames(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError("No files to classify", nil)
	}

	a, err := newApp(ctx, cfg, appOptions{translate: useTranslate, ai: cfg.AI.Enabled})
	if err != nil {
		return err
	}
	defer a.close()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx = handler.HandleInterrupts(ctx, cfg.Classify.Record)

	showProgress := !asJSON && len(files) > 1
	reporter := cli.NewReporter(cmd.ErrOrStderr(), len(files), showProgress)

	outcomes, err := a.classifyFiles(ctx, files, classifyOptions{
		strategy: pinned,
		all:      all,
		record:   cfg.Classify.Record,
		workers:  cfg.Classify.Workers,
		reporter: reporter,
	})
	if err != nil && !handler.WasInterrupted() {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, outcomes)
	}
	if err := writeOutcomes(out, outcomes, all); err != nil {
		return err
	}
	if showProgress {
		reporter.ShowCompletion()
	}
	return nil
}

// classifyFiles classifies files on a bounded worker pool. Outcomes keep
// the order of files; entries left unfilled by an interrupt are dropped.
func (a *app) classifyFiles(ctx context.Context, files []string, opts classifyOptions) ([]fileOutcome, error) {
	outcomes := make([]*fileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := a.classifyOne(gctx, file, opts)
			outcomes[i] = &o
			if opts.reporter != nil {
				opts.reporter.Record(o.Result, o.Err)
			}
			return nil
		})
	}
	err := g.Wait()

	done := make([]fileOutcome, 0, len(files))
	for _, o := range outcomes {
		if o != nil {
			done = append(done, *o)
		}
	}
	return done, err
}

func (a *app) classifyOne(ctx context.Context, file string, opts classifyOptions) fileOutcome {
	name := filepath.Base(file)
	o := fileOutcome{File: file}
	copts := classifier.Options{MatchStrategy: opts.strategy}

	if a.translator != nil {
		text := classifier.CleanFilename(name)
		translated, err := a.translator.Translate(ctx, text, a.cfg.Classify.SourceLang, a.cfg.Classify.TargetLang)
		if err != nil {
			common.LogWarn("Translation failed, classifying original name only", common.Fields{
				"file":     name,
				"provider": a.translator.Name(),
				"error":    err.Error(),
			})
		} else {
			copts.TranslatedText = translated
			o.TranslatedText = translated
		}
	}

	var aiResult *model.AIResult
	if a.ai != nil {
		res, err := a.ai.Classify(ctx, name)
		if err != nil {
			common.LogWarn("AI classification failed", common.Fields{"file": name, "error": err.Error()})
		} else {
			aiResult = res
		}
	}

	if opts.all {
		o.Results = a.classifier.ClassifyAll(name, aiResult, copts)
		if len(o.Results) > 0 {
			o.Result = o.Results[0]
		}
	} else {
		o.Result = a.classifier.Classify(name, aiResult, copts)
	}

	if opts.record && a.store != nil {
		entry := &model.HistoryEntry{
			Filename:       name,
			TranslatedText: o.TranslatedText,
			Result:         o.Result,
			ClassifiedAt:   time.Now(),
		}
		if err := a.store.RecordClassification(ctx, entry); err != nil {
			o.Err = err
			o.Error = err.Error()
		}
	}
	return o
}

// collectFilenames expands directories into the audio files they contain.
// Other arguments are taken as names, whether or not they exist.
func collectFilenames(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if classifier.IsAudioFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return files, nil
}

func writeJSON(w io.Writer, outcomes []fileOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(outcomes); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

func writeOutcomes(w io.Writer, outcomes []fileOutcome, all bool) error {
	if len(outcomes) == 1 && !all {
		o := outcomes[0]
		_, err := fmt.Fprintln(w, cli.FormatResult(o.File, o.Result))
		return err
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		if !all || len(o.Results) == 0 {
			rows = append(rows, cli.ResultRow(o.File, o.Result))
			continue
		}
		for i, res := range o.Results {
			file := o.File
			if i > 0 {
				file = ""
			}
			rows = append(rows, cli.ResultRow(file, res))
		}
	}

	table := cli.RenderTable([]string{"File", "CatID", "Category", "Strategy", "Score"}, rows)
	if _, err := fmt.Fprint(w, table); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil && !errors.Is(o.Err, context.Canceled) {
			slog.Warn("Failed to record classification", "file", o.File, "error", o.Err)
		}
	}
	return nil
}
