package ruletree

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	markerBeginPrivate = "===BEGIN PRIVATE DOMAINS==="
	markerEndPrivate   = "===END PRIVATE DOMAINS==="
	headerVersion      = "VERSION:"
	headerCommit       = "COMMIT:"

	maxReportedFailures = 10
)

// ParseOptions are options for parsing rule data.
type ParseOptions struct {
	// If true, rules from the PRIVATE DOMAINS section are kept.
	// Privately registered suffixes like github.io are then public suffixes too.
	IncludePrivate bool

	// By default, Parse uses slog.Default.
	// If Logger is specified, it will use it instead.
	Logger *slog.Logger
}

// List is parsed rule data.
type List struct {
	Rules []Rule

	// Version and Commit come from the "// VERSION:" and "// COMMIT:" header comments, if present.
	Version string
	Commit  string
}

// Parse reads rule data in public suffix list format from r.
// Comments and blank lines are ignored, and a UTF-8 byte order mark is skipped.
// Any malformed rule makes the whole list invalid; up to 10 line errors are joined into the returned error.
// Does not close the reader.
func Parse(r io.Reader, opts ParseOptions) (*List, error) {
	ctx := context.Background()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	list := &List{}
	failures := make([]error, 0, maxReportedFailures)
	private := false
	skipped := 0

	scanner := bufio.NewScanner(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	lineNo := 0
	for scanner.Scan() && len(failures) < maxReportedFailures {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}
		if comment, ok := strings.CutPrefix(line, "//"); ok {
			comment = strings.TrimSpace(comment)
			switch {
			case strings.HasPrefix(comment, markerBeginPrivate):
				private = true
			case strings.HasPrefix(comment, markerEndPrivate):
				private = false
			case strings.HasPrefix(comment, headerVersion) && list.Version == "":
				list.Version = strings.TrimSpace(strings.TrimPrefix(comment, headerVersion))
			case strings.HasPrefix(comment, headerCommit) && list.Commit == "":
				list.Commit = strings.TrimSpace(strings.TrimPrefix(comment, headerCommit))
			}
			continue
		}

		if private && !opts.IncludePrivate {
			skipped++
			continue
		}

		rule, err := ParseRule(line)
		if err != nil {
			var syntaxErr *SyntaxError
			if errors.As(err, &syntaxErr) {
				syntaxErr.Line = lineNo
			}
			logger.Log(ctx, slog.LevelError, "failed to parse rule",
				"service", "ruletree.Parse",
				"line", lineNo,
				"rule", line,
				"error", err,
			)
			failures = append(failures, err)
			continue
		}
		rule.Private = private
		list.Rules = append(list.Rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rule data: %w", err)
	}

	if len(failures) > 0 {
		return nil, fmt.Errorf(`rule data is malformed, encountered %d bad rules (parsing stops after %d): %w`,
			len(failures),
			maxReportedFailures,
			errors.Join(failures...),
		)
	}
	if len(list.Rules) == 0 {
		return nil, ErrNoRules
	}

	logger.Log(ctx, slog.LevelDebug, "parsed rule data",
		"service", "ruletree.Parse",
		"rules", len(list.Rules),
		"skipped_private", skipped,
		"version", list.Version,
	)

	return list, nil
}

// Build builds a Tree from the parsed rules, carrying over the list version.
func (l *List) Build() (*Tree, error) {
	t, err := Build(l.Rules)
	if err != nil {
		return nil, err
	}
	t.version = l.Version
	return t, nil
}
