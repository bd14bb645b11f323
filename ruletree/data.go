package ruletree

import (
	"bytes"
	_ "embed"
	"io"
)

// defaultData is an excerpt of the publicsuffix.org list covering the
// common generic and country-code suffixes plus a handful of private ones.
//
//go:embed public_suffix_list.dat
var defaultData []byte

// DefaultReader returns a reader over the embedded rule data.
func DefaultReader() io.Reader {
	return bytes.NewReader(defaultData)
}
