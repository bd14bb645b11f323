// Package ruletree parses public suffix rules and matches host labels against them.
//
// Rules use the publicsuffix.org list syntax:
//
//	co.uk            normal rule
//	*.kawasaki.jp    wildcard rule, "*" matches exactly one label
//	!city.kawasaki.jp  exception rule, the match is one label shorter
//
// A Tree is built once from a set of rules and is read-only afterwards,
// so it can be shared by any number of goroutines without locking.
package ruletree

import (
	"strings"

	"github.com/termermc/go-etld/normalize"
)

// WildcardLabel is the label token that matches any single label.
const WildcardLabel = "*"

// Kind is a rule kind. Kinds are bit flags so that a tree node can carry several.
type Kind uint8

const (
	Normal Kind = 1 << iota
	Wildcard
	Exception
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Wildcard:
		return "wildcard"
	case Exception:
		return "exception"
	default:
		return "invalid"
	}
}

// Rule is a single public suffix rule.
type Rule struct {
	// Labels in the order they are written, e.g. ["co", "uk"].
	// Labels are lowercase ASCII; a wildcard rule starts with WildcardLabel.
	// An exception rule does not include the "!" marker.
	Labels []string
	Kind   Kind
	// Private is true for rules from the PRIVATE DOMAINS section.
	Private bool
}

// String renders the rule in list syntax.
func (r Rule) String() string {
	s := strings.Join(r.Labels, ".")
	if r.Kind == Exception {
		return "!" + s
	}
	return s
}

var labelNormalizer = normalize.NewDomainNormalizer()

// ParseRule parses a single rule.
// Only the first whitespace-delimited token of line is considered, as in the list format.
// Unicode labels are converted to punycode so they compare equal to normalized hosts.
func ParseRule(line string) (Rule, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Rule{}, NewSyntaxError(0, line, ErrEmptyRule)
	}
	text := fields[0]

	r := Rule{Kind: Normal}
	if strings.HasPrefix(text, "!") {
		r.Kind = Exception
		text = text[1:]
	}
	if text == "" {
		return Rule{}, NewSyntaxError(0, line, ErrEmptyRule)
	}

	labels := strings.Split(text, ".")
	for i, lbl := range labels {
		if lbl == WildcardLabel {
			if i != 0 || r.Kind == Exception {
				return Rule{}, NewSyntaxError(0, line, ErrMisplacedWildcard)
			}
			r.Kind = Wildcard
			continue
		}
		ascii, err := labelNormalizer.ToASCIILabel(lbl)
		if err != nil {
			return Rule{}, NewSyntaxError(0, line, err)
		}
		labels[i] = ascii
	}
	if r.Kind == Exception && len(labels) < 2 {
		return Rule{}, NewSyntaxError(0, line, ErrShortException)
	}

	r.Labels = labels
	return r, nil
}

// MustParseRule is like ParseRule but panics on error.
// It is intended for rules written in source code.
func MustParseRule(line string) Rule {
	r, err := ParseRule(line)
	if err != nil {
		panic(err)
	}
	return r
}
