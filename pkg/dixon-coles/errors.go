package dixoncoles

import (
	"fmt"
	"strings"
)

// InputError reports malformed or inconsistent input
type InputError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *InputError) Error() string {
	msg := fmt.Sprintf("input error in %s: %s", e.Field, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func inputErrorf(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InputErrors collects several input errors found in one pass
type InputErrors struct {
	Errors []*InputError `json:"errors"`
}

func (e *InputErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no input errors"
	}

	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// SchemaMismatchError means new data does not resolve to the fitted column vocabulary.
// Encoding categorical columns with the levels used at fit time is the usual remedy.
type SchemaMismatchError struct {
	Expected []string `json:"expected"`
	Got      []string `json:"got"`
}

func (e *SchemaMismatchError) Error() string {
	missing, extra := diffColumns(e.Expected, e.Got)
	msg := fmt.Sprintf("schema mismatch: fitted model has %d columns, new data resolves to %d", len(e.Expected), len(e.Got))
	if len(missing) > 0 {
		msg += fmt.Sprintf("; missing %v", missing)
	}
	if len(extra) > 0 {
		msg += fmt.Sprintf("; unexpected %v", extra)
	}
	if len(missing) == 0 && len(extra) == 0 {
		msg += "; column order differs"
	}
	return msg
}

func diffColumns(expected, got []string) (missing, extra []string) {
	seen := make(map[string]bool, len(got))
	for _, name := range got {
		seen[name] = true
	}
	want := make(map[string]bool, len(expected))
	for _, name := range expected {
		want[name] = true
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	for _, name := range got {
		if !want[name] {
			extra = append(extra, name)
		}
	}
	return missing, extra
}

// ConvergenceError flags a fit whose minimizer stopped short of its tolerance.
// It is attached to the returned model, never returned as the error value.
type ConvergenceError struct {
	Status     string `json:"status"`
	Iterations int    `json:"iterations"`
	Message    string `json:"message"`
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("optimizer did not converge after %d iterations (status %s)", e.Iterations, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}
