// Package etld resolves the public suffix and the base (registrable) domain of host names.
//
// A public suffix is a name under which anyone can register a domain, such as
// "com" or "co.uk". The base domain is the public suffix plus one more label,
// e.g. "example.co.uk" for "www.example.co.uk". Suffixes are decided by
// rules in publicsuffix.org list format, matched with the longest-match,
// wildcard and exception semantics of that list.
//
// Every failure is a *HostError of exactly one Kind, checked in this order:
// KindHostIsIPAddress, KindIllegalValue, KindInsufficientDomainLevels.
package etld

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/termermc/go-etld/normalize"
	"github.com/termermc/go-etld/ruletree"
)

var hostNormalizer = normalize.NewDomainNormalizer()

// Service resolves public suffixes and base domains.
//
// The rule tree is built once in NewService and never modified afterwards,
// so it is safe to use a single Service across multiple goroutines.
// Resolution never blocks, never performs I/O and takes no locks.
//
// Create an instance with NewService; do not create an empty Service struct and attempt to use it.
type Service struct {
	tree       *ruletree.Tree
	normalizer *normalize.DomainNormalizer
}

// Options are options for creating a Service instance.
type Options struct {
	// By default, Service uses slog.Default.
	// If Logger is specified, it will use it instead.
	// The logger is only used while the Service is created.
	Logger *slog.Logger

	// Source of the rule data.
	// If nil, the rule data compiled into this module is used.
	Source *Source

	// If true, rules from the PRIVATE DOMAINS section of the list are ignored.
	// By default they are used, so e.g. "github.io" is a public suffix.
	ExcludePrivate bool
}

// Result is the full breakdown of a host.
type Result struct {
	// Host is the normalized host, trailing dot included if the input had one.
	Host string
	// PublicSuffix of the host.
	PublicSuffix string
	// BaseDomain is empty if the host is itself a public suffix.
	BaseDomain string
	// Subdomain is the part of Host left of BaseDomain, without a dot; empty if there is none.
	Subdomain string
	// Listed is false if no rule matched and the public suffix is the last label by default.
	Listed bool
	// Private is true if the deciding rule comes from the PRIVATE DOMAINS section.
	Private bool
}

// NewService creates a new Service instance, reading and parsing the rule data.
// Any malformed rule is fatal: no Service is returned and the error describes the offending lines.
// If error is nil, the returned Service instance will never be nil.
func NewService(options Options) (*Service, error) {
	ctx := context.Background()

	var logger *slog.Logger
	if options.Logger == nil {
		logger = slog.Default()
	} else {
		logger = options.Logger
	}

	logger.Log(ctx, slog.LevelInfo, "initializing etld.Service",
		"service", "etld.Service",
	)

	reader, err := openSource(logger, options.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule source during initialization: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	list, err := ruletree.Parse(reader, ruletree.ParseOptions{
		IncludePrivate: !options.ExcludePrivate,
		Logger:         logger,
	})
	if err != nil {
		logger.Log(ctx, slog.LevelError, "failed to parse rule data",
			"service", "etld.Service",
			"error", err,
		)
		return nil, fmt.Errorf("failed to parse rule data during initialization: %w", err)
	}

	tree, err := list.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build rule tree during initialization: %w", err)
	}
	if tree.Duplicates() > 0 {
		logger.Log(ctx, slog.LevelDebug, "ignored duplicate rules",
			"service", "etld.Service",
			"duplicates", tree.Duplicates(),
		)
	}

	logger.Log(ctx, slog.LevelInfo, "finished initializing etld.Service",
		"service", "etld.Service",
		"rules", tree.Len(),
		"version", tree.Version(),
		"private_rules", !options.ExcludePrivate,
	)

	return &Service{
		tree:       tree,
		normalizer: hostNormalizer,
	}, nil
}

// Version returns the version of the rule data, or an empty string if the data has no version header.
func (s *Service) Version() string {
	return s.tree.Version()
}

// Rules returns the number of distinct rules loaded.
func (s *Service) Rules() int {
	return s.tree.Len()
}

// resolve normalizes host and matches it against the rule tree.
// The returned host always has at least one label.
func (s *Service) resolve(host string) (normalize.Host, ruletree.Match, error) {
	h, err := s.normalizer.NormalizeHost(host)
	if err != nil {
		return normalize.Host{}, ruletree.Match{}, normalizeError(host, err)
	}
	if len(h.Labels) == 0 {
		return normalize.Host{}, ruletree.Match{}, NewHostError(KindInsufficientDomainLevels, host, nil)
	}
	return h, s.tree.Lookup(h.Labels), nil
}

func normalizeError(host string, err error) *HostError {
	if errors.Is(err, normalize.ErrIPAddress) {
		return NewHostError(KindHostIsIPAddress, host, err)
	}
	return NewHostError(KindIllegalValue, host, err)
}

// PublicSuffixFromHost returns the public suffix of host.
// A host that is itself a public suffix, listed or not, is its own suffix:
// "co.uk" yields "co.uk" and "localhost" yields "localhost".
// A trailing dot on host is kept on the result.
// Fails with KindInsufficientDomainLevels only for an empty host.
func (s *Service) PublicSuffixFromHost(host string) (string, error) {
	h, m, err := s.resolve(host)
	if err != nil {
		return "", err
	}
	return h.Suffix(m.Depth), nil
}

// BaseDomainFromHost returns the public suffix of host plus 1+extraLevels labels.
// With extraLevels 0 this is the registrable domain, e.g. "example.co.uk" for "a.b.example.co.uk".
// Fails with KindInsufficientDomainLevels if host has fewer labels than that,
// in particular when host is itself a public suffix.
// A negative extraLevels fails with KindIllegalValue.
func (s *Service) BaseDomainFromHost(host string, extraLevels int) (string, error) {
	h, m, err := s.resolve(host)
	if err != nil {
		return "", err
	}
	if extraLevels < 0 {
		return "", NewHostError(KindIllegalValue, host, ErrNegativeLevels)
	}
	need := m.Depth + 1 + extraLevels
	if len(h.Labels) < need {
		return "", NewHostError(KindInsufficientDomainLevels, host, nil)
	}
	return h.Suffix(need), nil
}

// NextSubDomain returns host without its leftmost label, as long as the result is still at or below the base domain.
// "a.b.example.com" yields "b.example.com", "b.example.com" yields "example.com";
// "example.com" and "com" fail with KindInsufficientDomainLevels.
func (s *Service) NextSubDomain(host string) (string, error) {
	h, m, err := s.resolve(host)
	if err != nil {
		return "", err
	}
	if len(h.Labels) <= m.Depth+1 {
		return "", NewHostError(KindInsufficientDomainLevels, host, nil)
	}
	return h.Suffix(len(h.Labels) - 1), nil
}

// HasKnownPublicSuffixFromHost reports whether the public suffix of host is decided by a listed rule
// rather than the implicit rule that makes any single unknown label a suffix.
func (s *Service) HasKnownPublicSuffixFromHost(host string) (bool, error) {
	_, m, err := s.resolve(host)
	if err != nil {
		return false, err
	}
	return m.Listed, nil
}

// MatchHost returns the full breakdown of host.
// Unlike BaseDomainFromHost it does not fail for a bare public suffix; BaseDomain is left empty instead.
func (s *Service) MatchHost(host string) (Result, error) {
	h, m, err := s.resolve(host)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Host:         h.String(),
		PublicSuffix: h.Suffix(m.Depth),
		Listed:       m.Listed,
		Private:      m.Private,
	}
	if len(h.Labels) > m.Depth {
		res.BaseDomain = h.Suffix(m.Depth + 1)
		res.Subdomain = strings.Join(h.Labels[:len(h.Labels)-m.Depth-1], ".")
	}
	return res, nil
}

// PublicSuffix is PublicSuffixFromHost for the host of a URI.
func (s *Service) PublicSuffix(uri URI) (string, error) {
	host, err := asciiHost(uri)
	if err != nil {
		return "", err
	}
	return s.PublicSuffixFromHost(host)
}

// BaseDomain is BaseDomainFromHost for the host of a URI.
func (s *Service) BaseDomain(uri URI, extraLevels int) (string, error) {
	host, err := asciiHost(uri)
	if err != nil {
		return "", err
	}
	return s.BaseDomainFromHost(host, extraLevels)
}
