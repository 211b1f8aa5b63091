package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/ucsname/internal/model"
)

// BatchStats summarizes a batch classification run.
type BatchStats struct {
	ByStrategy map[string]int
	Duration   time.Duration
	Total      int
	Classified int
	Unmatched  int
	Failed     int
}

// Reporter tracks progress and statistics while files are classified. It is
// safe for use from several workers.
type Reporter struct {
	startTime   time.Time
	writer      io.Writer
	progressBar *progressbar.ProgressBar
	stats       BatchStats
	mu          sync.Mutex
}

// NewReporter creates a reporter for total files. The progress bar is drawn
// only when showProgress is set.
func NewReporter(writer io.Writer, total int, showProgress bool) *Reporter {
	if writer == nil {
		writer = os.Stderr
	}
	r := &Reporter{
		startTime: time.Now(),
		writer:    writer,
		stats: BatchStats{
			Total:      total,
			ByStrategy: make(map[string]int),
		},
	}
	if showProgress && total > 0 {
		r.initProgressBar()
	}
	return r
}

func (r *Reporter) initProgressBar() {
	r.progressBar = progressbar.NewOptions(r.stats.Total,
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying files...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(r.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Record counts the outcome of one file.
func (r *Reporter) Record(result *model.ClassificationResult, err error) {
	r.mu.Lock()
	switch {
	case err != nil:
		r.stats.Failed++
	case result == nil:
		r.stats.Unmatched++
	default:
		r.stats.Classified++
		r.stats.ByStrategy[result.Strategy]++
	}
	r.mu.Unlock()

	if r.progressBar != nil {
		if err := r.progressBar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

// Stats returns a copy of the statistics so far.
func (r *Reporter) Stats() BatchStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := r.stats
	stats.ByStrategy = make(map[string]int, len(r.stats.ByStrategy))
	for k, v := range r.stats.ByStrategy {
		stats.ByStrategy[k] = v
	}
	stats.Duration = time.Since(r.startTime)
	return stats
}

// ShowCompletion finishes the progress bar and prints the summary box.
func (r *Reporter) ShowCompletion() {
	if r.progressBar != nil {
		if err := r.progressBar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
	}

	if _, err := fmt.Fprintln(r.writer, RenderBox("Classification Complete", r.summary(r.Stats()))); err != nil {
		slog.Warn("Failed to write completion box", "error", err)
	}
}

func (r *Reporter) summary(stats BatchStats) string {
	var b strings.Builder
	b.WriteString(ChartIcon + " Statistics:\n")
	fmt.Fprintf(&b, "  • Total files: %d\n", stats.Total)
	fmt.Fprintf(&b, "  • Classified: %d (%.1f%%)\n", stats.Classified, percent(stats.Classified, stats.Total))
	fmt.Fprintf(&b, "  • Unmatched: %d\n", stats.Unmatched)
	if stats.Failed > 0 {
		fmt.Fprintf(&b, "  • Failed: %d\n", stats.Failed)
	}
	fmt.Fprintf(&b, "  • Time taken: %s\n", stats.Duration.Round(time.Millisecond))

	if len(stats.ByStrategy) > 0 {
		names := make([]string, 0, len(stats.ByStrategy))
		for name := range stats.ByStrategy {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\nBy strategy:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  • %s: %d\n", name, stats.ByStrategy[name])
		}
	}
	return b.String()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
