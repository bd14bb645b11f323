package ruletree

import (
	"errors"
	"fmt"
)

// ErrEmptyRule is returned for a rule without labels.
var ErrEmptyRule = errors.New("rule has no labels")

// ErrMisplacedWildcard is returned when "*" appears anywhere but the leftmost label, or in an exception rule.
var ErrMisplacedWildcard = errors.New("wildcard label must be the leftmost label of a non-exception rule")

// ErrShortException is returned for an exception rule with a single label.
var ErrShortException = errors.New("exception rule must have at least two labels")

// ErrNoRules is returned when rule data contains no usable rules.
var ErrNoRules = errors.New("rule data contains no rules")

// SyntaxError is returned when a line of rule data cannot be parsed.
// Includes the 1-based line number and the offending text.
type SyntaxError struct {
	// Line is the 1-based line number, or 0 if the rule did not come from a file.
	Line int
	// Text is the rule text as it appeared in the source.
	Text string
	// Err is the underlying cause.
	Err error
}

func (err *SyntaxError) Error() string {
	if err.Line == 0 {
		return fmt.Sprintf(`invalid rule "%s": %v`, err.Text, err.Err)
	}
	return fmt.Sprintf(`invalid rule "%s" on line %d: %v`, err.Text, err.Line, err.Err)
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

// NewSyntaxError creates a new SyntaxError instance.
func NewSyntaxError(line int, text string, cause error) *SyntaxError {
	return &SyntaxError{
		Line: line,
		Text: text,
		Err:  cause,
	}
}
