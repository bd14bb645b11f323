// Package batch resolves many hosts concurrently and aggregates the results per public suffix.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	etld "github.com/termermc/go-etld"
)

// Resolver is the part of *etld.Service a batch needs.
type Resolver interface {
	PublicSuffixFromHost(host string) (string, error)
	BaseDomainFromHost(host string, extraLevels int) (string, error)
}

// Options are options for a batch run.
type Options struct {
	// Workers bounds the number of hosts resolved at once.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// ExtraLevels is passed to BaseDomainFromHost.
	ExtraLevels int

	// By default, Run uses slog.Default.
	Logger *slog.Logger
}

// Entry is the outcome for one input host.
type Entry struct {
	Host string
	// PublicSuffix is set whenever the host has one, even if Err is set because the base domain failed.
	PublicSuffix string
	BaseDomain   string
	Err          error
}

// Stats counts the outcomes of a batch run.
// It is safe to read while the run is in progress.
type Stats struct {
	total    *xsync.Counter
	suffixes *xsync.Map[string, *xsync.Counter]
	kinds    *xsync.Map[etld.Kind, *xsync.Counter]
}

func newStats() *Stats {
	return &Stats{
		total:    xsync.NewCounter(),
		suffixes: xsync.NewMap[string, *xsync.Counter](),
		kinds:    xsync.NewMap[etld.Kind, *xsync.Counter](),
	}
}

func counterFor[K comparable](m *xsync.Map[K, *xsync.Counter], key K) *xsync.Counter {
	if c, ok := m.Load(key); ok {
		return c
	}
	c, _ := m.LoadOrStore(key, xsync.NewCounter())
	return c
}

func (s *Stats) record(e Entry) {
	s.total.Inc()
	if e.PublicSuffix != "" {
		counterFor(s.suffixes, e.PublicSuffix).Inc()
	}
	if e.Err != nil {
		kind, _ := etld.KindOf(e.Err)
		counterFor(s.kinds, kind).Inc()
	}
}

// Total returns the number of hosts resolved so far.
func (s *Stats) Total() int64 {
	return s.total.Value()
}

// Suffix returns the number of hosts that resolved to suffix.
func (s *Stats) Suffix(suffix string) int64 {
	if c, ok := s.suffixes.Load(suffix); ok {
		return c.Value()
	}
	return 0
}

// Errors returns the number of hosts that failed with kind.
// Failures that are not *etld.HostError are counted under kind 0.
func (s *Stats) Errors(kind etld.Kind) int64 {
	if c, ok := s.kinds.Load(kind); ok {
		return c.Value()
	}
	return 0
}

// SuffixCount is a public suffix and how many hosts resolved to it.
type SuffixCount struct {
	Suffix string
	Count  int64
}

// TopSuffixes returns up to n suffixes by descending count, ties broken by name.
// n <= 0 returns all of them.
func (s *Stats) TopSuffixes(n int) []SuffixCount {
	out := make([]SuffixCount, 0, s.suffixes.Size())
	s.suffixes.Range(func(suffix string, c *xsync.Counter) bool {
		out = append(out, SuffixCount{Suffix: suffix, Count: c.Value()})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Suffix < out[j].Suffix
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Run resolves hosts with a bounded pool of workers.
// Entries are returned in input order.
// Resolution failures are reported per entry; the returned error is non-nil only if ctx is done before all hosts are resolved.
func Run(ctx context.Context, r Resolver, hosts []string, opts Options) ([]Entry, *Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	entries := make([]Entry, len(hosts))
	stats := newStats()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, host := range hosts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = resolve(r, host, opts.ExtraLevels)
			stats.record(entries[i])
			return nil
		})
	}

	err := g.Wait()
	if err == nil && stats.Total() < int64(len(hosts)) {
		err = context.Cause(ctx)
	}
	if err != nil {
		logger.Log(ctx, slog.LevelWarn, "batch interrupted",
			"service", "batch.Run",
			"resolved", stats.Total(),
			"hosts", len(hosts),
			"error", err,
		)
		return entries, stats, err
	}

	logger.Log(ctx, slog.LevelDebug, "batch finished",
		"service", "batch.Run",
		"hosts", len(hosts),
		"suffixes", stats.suffixes.Size(),
		"workers", workers,
	)
	return entries, stats, nil
}

func resolve(r Resolver, host string, extraLevels int) Entry {
	e := Entry{Host: host}

	suffix, err := r.PublicSuffixFromHost(host)
	if err != nil {
		e.Err = err
		return e
	}
	e.PublicSuffix = suffix

	base, err := r.BaseDomainFromHost(host, extraLevels)
	if err != nil {
		e.Err = err
		return e
	}
	e.BaseDomain = base
	return e
}
