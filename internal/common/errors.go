// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Dataset errors.
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyDataset  = errors.New("empty dataset")
	ErrInvalidRule   = errors.New("invalid rule")
	ErrNotLoaded     = errors.New("table not loaded")

	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Registry errors.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// Provider errors.
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrEmptyResponse       = errors.New("empty response")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FormatError reports a malformed or incomplete term or rule dataset.
type FormatError struct {
	Err     error
	Dataset string
	Detail  string
}

func (e *FormatError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v: %s", e.Dataset, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Dataset, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// NewFormatError creates a dataset format error.
func NewFormatError(dataset string, err error, detail string) error {
	return &FormatError{Dataset: dataset, Err: err, Detail: detail}
}

// PatternError reports a single malformed regex rule or keyword pattern.
// It is logged and recovered where it occurs.
type PatternError struct {
	Err     error
	Pattern string
	Source  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q in %s: %v", e.Pattern, e.Source, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsFormatError reports whether err wraps a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
