package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrInputTerminated is returned when input ends before an answer is given.
var ErrInputTerminated = errors.New("input terminated")

// Confirm asks a yes/no question and repeats it until the answer is valid.
// An empty answer selects the default.
func Confirm(ctx context.Context, reader *NonBlockingReader, writer io.Writer, question string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	for {
		if _, err := fmt.Fprintf(writer, "%s[%s] ", FormatPrompt(question), hint); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := reader.ReadLine(ctx)
		if err != nil && input == "" {
			if errors.Is(err, io.EOF) {
				return false, ErrInputTerminated
			}
			return false, err
		}

		switch strings.ToLower(input) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(writer, FormatError("Please answer y or n.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}
