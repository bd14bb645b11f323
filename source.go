package etld

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/termermc/go-etld/ruletree"
)

// Source stores where rule data in public suffix list format is read from.
// The data is read once, when a Service is created.
type Source struct {
	// Get is a function to get the rule data.
	// Either Get or Path must be provided; Get takes precedence over Path.
	// The returned reader is closed by the Service once parsed.
	Get func() (io.ReadCloser, error)

	// Path is a local file containing the rule data, e.g. a copy of
	// https://publicsuffix.org/list/public_suffix_list.dat.
	Path string
}

// EmbeddedSource returns a Source that reads the rule data compiled into this module.
// It is used when Options.Source is nil.
func EmbeddedSource() *Source {
	return &Source{
		Get: func() (io.ReadCloser, error) {
			return noOpReadCloser{ruletree.DefaultReader()}, nil
		},
	}
}

// FileSource returns a Source that reads rule data from the file at path.
func FileSource(path string) *Source {
	return &Source{Path: path}
}

type noOpReadCloser struct {
	io.Reader
}

func (n noOpReadCloser) Close() error {
	return nil
}

// openSource opens a rule source.
// The caller must close the returned reader.
// If the source has neither Get nor Path, ErrSourceNoData is returned.
func openSource(logger *slog.Logger, src *Source) (io.ReadCloser, error) {
	ctx := context.Background()

	if src == nil {
		src = EmbeddedSource()
	}

	switch {
	case src.Get != nil:
		logger.Log(ctx, slog.LevelDebug, "reading rule data with source Get function",
			"service", "etld.Service",
		)

		reader, err := src.Get()
		if err != nil {
			return nil, fmt.Errorf(`failed to get rule data (source Get function): %w`, err)
		}
		return reader, nil

	case src.Path != "":
		logger.Log(ctx, slog.LevelDebug, "reading rule data from file",
			"service", "etld.Service",
			"source_path", src.Path,
		)

		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf(`failed to open rule data (source path "%s"): %w`, src.Path, err)
		}
		return f, nil

	default:
		return nil, ErrSourceNoData
	}
}
