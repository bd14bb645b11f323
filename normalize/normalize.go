package normalize

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

const (
	maxLabelLength = 63
	maxHostLength  = 253
)

// ErrEmptyHost is returned when a non-empty input has nothing left after trimming whitespace and invisible characters.
var ErrEmptyHost = errors.New("host is empty after trimming")

// ErrEmptyLabel is returned when a host contains an empty label anywhere except a single trailing dot.
var ErrEmptyLabel = errors.New("host contains empty label")

// ErrIPAddress is returned when a host is an IPv4 or IPv6 literal.
var ErrIPAddress = errors.New("host is an IP address")

// ErrInvalidLabel is returned when a label contains characters that can never appear in a host name.
var ErrInvalidLabel = errors.New("host contains invalid characters")

// ErrTooLong is returned when a label or the whole host exceeds DNS length limits.
var ErrTooLong = errors.New("host or label too long")

// Host is a normalized host name.
// Labels are lowercase ASCII, with non-ASCII labels converted to punycode.
// The root label is never part of Labels; TrailingDot records whether the input ended with it.
type Host struct {
	Labels      []string
	TrailingDot bool
}

// String joins the labels and reattaches the trailing dot.
func (h Host) String() string {
	s := strings.Join(h.Labels, ".")
	if h.TrailingDot {
		s += "."
	}
	return s
}

// Suffix returns the last n labels joined with dots, keeping the trailing dot of the host.
// n is clamped to the number of labels.
func (h Host) Suffix(n int) string {
	if n > len(h.Labels) {
		n = len(h.Labels)
	}
	return Host{
		Labels:      h.Labels[len(h.Labels)-n:],
		TrailingDot: h.TrailingDot,
	}.String()
}

// DomainNormalizer normalizes host names to their canonical form.
// A DomainNormalizer is safe for concurrent use.
// See DomainNormalizer.NormalizeHost for details.
type DomainNormalizer struct {
	profile     *idna.Profile
	dotReplacer *strings.Replacer
}

// NewDomainNormalizer constructs a normalizer with a configured UTS #46 lookup profile.
// The profile is deliberately lenient about STD3 rules: hosts seen on the wire contain underscores.
func NewDomainNormalizer() *DomainNormalizer {
	p := idna.New(
		idna.MapForLookup(),
		idna.BidiRule(),
		idna.Transitional(false),
		idna.StrictDomainName(false),
	)

	// Prebuild replacer for Unicode dot-like characters.
	dots := strings.NewReplacer(
		"。", ".",
		"．", ".",
		"｡", ".",
	)

	return &DomainNormalizer{
		profile:     p,
		dotReplacer: dots,
	}
}

// NormalizeHost normalizes a raw host name:
//   - An empty input yields a Host without labels and no error
//   - Trims surrounding whitespace
//   - Maps Unicode dot-like chars to '.'
//   - Strips default-ignorable zero-width/bidi control chars
//   - Rejects IPv4 and IPv6 literals with ErrIPAddress, before and after IDN mapping
//   - Records and drops a single trailing dot
//   - Rejects any other empty label with ErrEmptyLabel
//   - Lowercases ASCII labels and converts non-ASCII ones to punycode
//   - Validates label (1..63) and total (<=253) lengths
func (n *DomainNormalizer) NormalizeHost(input string) (Host, error) {
	if input == "" {
		return Host{}, nil
	}

	s := strings.TrimSpace(input)
	s = n.dotReplacer.Replace(s)
	s = stripInvisibleChars(s)
	if s == "" {
		return Host{}, ErrEmptyHost
	}

	// IP literals never reach label validation.
	if ClassifyIP(s) != NotIP {
		return Host{}, ErrIPAddress
	}

	trailingDot := false
	if strings.HasSuffix(s, ".") {
		trailingDot = true
		s = s[:len(s)-1]
	}
	if s == "" {
		return Host{}, ErrEmptyLabel
	}
	labels := strings.Split(s, ".")
	for _, lbl := range labels {
		if lbl == "" {
			return Host{}, ErrEmptyLabel
		}
	}

	if isASCII(s) {
		for i, lbl := range labels {
			lbl = strings.ToLower(lbl)
			if err := checkLabel(lbl); err != nil {
				return Host{}, err
			}
			labels[i] = lbl
		}
	} else {
		// UTS #46 to ASCII (punycode) using the prepared profile
		ascii, err := n.profile.ToASCII(s)
		if err != nil {
			return Host{}, fmt.Errorf("%w: idna toASCII: %w", ErrInvalidLabel, err)
		}
		// Mapping folds fullwidth digits and colons to ASCII, so "１２７.０.０.１" is an IP only now.
		if ClassifyIP(ascii) != NotIP {
			return Host{}, ErrIPAddress
		}
		labels = strings.Split(strings.ToLower(ascii), ".")
		for _, lbl := range labels {
			// Mapping can remove every rune of a label, e.g. a lone soft hyphen.
			if lbl == "" {
				return Host{}, ErrEmptyLabel
			}
			if err := checkLabel(lbl); err != nil {
				return Host{}, err
			}
		}
	}

	h := Host{Labels: labels, TrailingDot: trailingDot}
	if l := len(strings.Join(labels, ".")); l > maxHostLength {
		return Host{}, fmt.Errorf("%w: host length %d exceeds %d characters", ErrTooLong, l, maxHostLength)
	}
	return h, nil
}

// ToASCIILabel converts a single label to its lowercase ASCII form.
// The wildcard label "*" is returned unchanged.
func (n *DomainNormalizer) ToASCIILabel(label string) (string, error) {
	if label == "" {
		return "", ErrEmptyLabel
	}
	if label == "*" {
		return label, nil
	}
	if isASCII(label) {
		label = strings.ToLower(label)
	} else {
		ascii, err := n.profile.ToASCII(label)
		if err != nil {
			return "", fmt.Errorf("%w: idna toASCII: %w", ErrInvalidLabel, err)
		}
		label = strings.ToLower(ascii)
	}
	if strings.Contains(label, ".") {
		return "", fmt.Errorf("%w: label %q maps to more than one label", ErrInvalidLabel, label)
	}
	if err := checkLabel(label); err != nil {
		return "", err
	}
	return label, nil
}

// ToASCII normalizes a host and returns its string form, trailing dot included.
func (n *DomainNormalizer) ToASCII(input string) (string, error) {
	h, err := n.NormalizeHost(input)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

func checkLabel(lbl string) error {
	if l := len(lbl); l > maxLabelLength {
		return fmt.Errorf("%w: label %q length %d out of range 1..%d", ErrTooLong, lbl, l, maxLabelLength)
	}
	for i := 0; i < len(lbl); i++ {
		if isForbiddenHostByte(lbl[i]) {
			return fmt.Errorf("%w: label %q contains %q", ErrInvalidLabel, lbl, lbl[i])
		}
	}
	return nil
}

// isForbiddenHostByte reports whether c can never be part of a host.
// Underscores and other non-LDH printable characters are tolerated.
func isForbiddenHostByte(c byte) bool {
	if c <= 0x20 || c == 0x7F {
		return true
	}
	switch c {
	case '/', '\\', '?', '#', '@', '%', ':', '<', '>', '[', ']', '^', '|':
		return true
	}
	return false
}

// stripInvisibleChars removes zero-width and bidi control characters that can be used for obfuscation in domains.
// ASCII controls are left in place for checkLabel to reject.
func stripInvisibleChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		// Zero-width and joiners
		case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
			continue
		// Basic bidi controls
		case '\u202A', '\u202B', '\u202C', '\u202D', '\u202E':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
