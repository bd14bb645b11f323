package etld

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/termermc/go-etld/normalize"
)

// URI is the part of a parsed URI the Service needs: its host in canonical form.
//
// ASCIIHost must return the host lowercased, with non-ASCII labels IDN-encoded
// and without brackets or port, i.e. what this package's normalizer produces.
// PublicSuffix and BaseDomain normalize the host again, which is a no-op on such input.
type URI interface {
	ASCIIHost() (string, error)
}

type urlHost struct {
	u *url.URL
}

// FromURL adapts a *url.URL to URI.
func FromURL(u *url.URL) URI {
	return urlHost{u: u}
}

// ParseURI parses rawURI with net/url and adapts the result to URI.
func ParseURI(rawURI string) (URI, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, err
	}
	return FromURL(u), nil
}

func (h urlHost) ASCIIHost() (string, error) {
	if h.u == nil {
		return "", ErrNilURI
	}
	raw := h.u.Hostname()
	host, err := hostNormalizer.ToASCII(raw)
	if err != nil {
		return "", normalizeError(raw, err)
	}
	return host, nil
}

func (h urlHost) String() string {
	if h.u == nil {
		return "<nil>"
	}
	return h.u.String()
}

// asciiHost extracts the host of uri, turning collaborator failures into a *HostError.
func asciiHost(uri URI) (string, error) {
	if uri == nil {
		return "", NewHostError(KindIllegalValue, "", ErrNilURI)
	}
	host, err := uri.ASCIIHost()
	if err != nil {
		var hostErr *HostError
		if errors.As(err, &hostErr) {
			return "", hostErr
		}
		if errors.Is(err, normalize.ErrIPAddress) {
			return "", NewHostError(KindHostIsIPAddress, describeURI(uri), err)
		}
		return "", NewHostError(KindIllegalValue, describeURI(uri), err)
	}
	return host, nil
}

// describeURI names a URI whose host could not be read, for HostError.Host.
func describeURI(uri URI) string {
	if s, ok := uri.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", uri)
}
