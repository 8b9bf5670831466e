package exposition

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a line failed validation.
// It implements error so a *ParseError can be matched with errors.Is.
type ErrorKind string

// Line-level classifications
const (
	EmptyLine                   ErrorKind = "EmptyLine"
	MissingSpaceAfterMetricName ErrorKind = "MissingSpaceAfterMetricName"
	InvalidValueFormat          ErrorKind = "InvalidValueFormat"
	InvalidNumericValue         ErrorKind = "InvalidNumericValue"
	InvalidTimestamp            ErrorKind = "InvalidTimestamp"
	InvalidMetricNameFormat     ErrorKind = "InvalidMetricNameFormat"
	UnclosedLabelBrackets       ErrorKind = "UnclosedLabelBrackets"
	InvalidLabelFormat          ErrorKind = "InvalidLabelFormat"
	InvalidLabelName            ErrorKind = "InvalidLabelName"
)

func (k ErrorKind) Error() string {
	return string(k)
}

// ParseError describes a line that did not match the exposition grammar.
type ParseError struct {
	Kind   ErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap exposes the kind for errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

// KindOf returns the classification carried by err, or "" when err is nil
// or was not produced by this package.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return ""
}

func newParseError(kind ErrorKind, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
