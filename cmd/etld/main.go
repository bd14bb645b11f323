// Command etld prints the public suffix and base domain of host names.
//
// Hosts are taken from the arguments, or read from stdin one per line when there are none.
// Each host is printed as "host<TAB>suffix<TAB>base", with the error kind in place of the
// base domain when it cannot be determined.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	etld "github.com/termermc/go-etld"
	"github.com/termermc/go-etld/internal/batch"
	"github.com/termermc/go-etld/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	fs := flag.NewFlagSet("etld", flag.ExitOnError)
	fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "rule file in public suffix list format (default: embedded list)")
	fs.BoolVar(&cfg.IncludePrivate, "private", cfg.IncludePrivate, "use rules from the PRIVATE DOMAINS section")
	fs.IntVar(&cfg.ExtraLevels, "levels", cfg.ExtraLevels, "extra labels to keep left of the base domain")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "hosts resolved concurrently")
	summary := fs.Int("summary", 0, "print the N most common public suffixes after the results (-1 for all)")
	_ = fs.Parse(os.Args[1:])

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := run(ctx, cfg, fs.Args(), os.Stdin, os.Stdout, *summary, logger); err != nil {
		log.Fatalf("etld: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, stdin io.Reader, stdout io.Writer, summary int, logger *slog.Logger) error {
	opts := etld.Options{
		Logger:         logger,
		ExcludePrivate: !cfg.IncludePrivate,
	}
	if cfg.RulesPath != "" {
		opts.Source = etld.FileSource(cfg.RulesPath)
	}

	s, err := etld.NewService(opts)
	if err != nil {
		return err
	}

	hosts := args
	if len(hosts) == 0 {
		hosts, err = readHosts(stdin)
		if err != nil {
			return err
		}
	}

	entries, stats, err := batch.Run(ctx, s, hosts, batch.Options{
		Workers:     cfg.Workers,
		ExtraLevels: cfg.ExtraLevels,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(stdout)
	for _, e := range entries {
		writeEntry(w, e)
	}

	if summary != 0 {
		fmt.Fprintf(w, "\n# %d hosts, rules %s\n", stats.Total(), s.CookieJarList())
		for _, sc := range stats.TopSuffixes(summary) {
			fmt.Fprintf(w, "# %s\t%d\n", sc.Suffix, sc.Count)
		}
		for _, kind := range []etld.Kind{etld.KindHostIsIPAddress, etld.KindIllegalValue, etld.KindInsufficientDomainLevels} {
			if n := stats.Errors(kind); n > 0 {
				fmt.Fprintf(w, "# error: %s\t%d\n", kind, n)
			}
		}
	}
	return w.Flush()
}

func writeEntry(w io.Writer, e batch.Entry) {
	if e.Err == nil {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Host, e.PublicSuffix, e.BaseDomain)
		return
	}

	kind, _ := etld.KindOf(e.Err)
	suffix := e.PublicSuffix
	if suffix == "" {
		suffix = "-"
	}
	fmt.Fprintf(w, "%s\t%s\terror: %s\n", e.Host, suffix, kind)
}

// readHosts reads one host per line, skipping blank lines and "#" comments.
func readHosts(r io.Reader) ([]string, error) {
	var hosts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hosts = append(hosts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hosts: %w", err)
	}
	return hosts, nil
}
