package normalize

import (
	"net/netip"
	"strings"
)

// IPKind is the result of classifying a host string as an IP literal.
type IPKind int

const (
	NotIP IPKind = iota
	IPv4
	IPv6
)

func (k IPKind) String() string {
	switch k {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return "not-ip"
	}
}

// ClassifyIP reports whether s is an IPv4 or IPv6 literal.
// A single trailing dot is tolerated on both families.
//
// IPv4 follows the classic inet_aton grammar rather than strict dotted-quad:
// one to four parts, each decimal, octal (leading 0) or hex (0x),
// with the last part filling the remaining bytes. So "3232235878",
// "0x7f.1" and "127.1" are all IPv4 addresses.
//
// IPv6 accepts anything netip.ParseAddr does, including the embedded
// IPv4 form "::ffff:1.2.3.4" and zones, optionally wrapped in brackets.
func ClassifyIP(s string) IPKind {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return NotIP
	}
	if strings.IndexByte(s, ':') >= 0 {
		if len(s) > 2 && s[0] == '[' && s[len(s)-1] == ']' {
			s = s[1 : len(s)-1]
		}
		if addr, err := netip.ParseAddr(s); err == nil && addr.Is6() {
			return IPv6
		}
		return NotIP
	}
	if _, ok := parseIPv4(s); ok {
		return IPv4
	}
	return NotIP
}

// parseIPv4 parses s with inet_aton semantics.
func parseIPv4(s string) ([4]byte, bool) {
	var out [4]byte
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return out, false
	}

	vals := make([]uint64, len(parts))
	for i, p := range parts {
		v, ok := parseIPv4Part(p)
		if !ok {
			return out, false
		}
		vals[i] = v
	}

	// All leading parts are single bytes; the last one fills the rest.
	for _, v := range vals[:len(vals)-1] {
		if v > 0xFF {
			return out, false
		}
	}
	last := vals[len(vals)-1]
	if last >= 1<<(8*(5-len(vals))) {
		return out, false
	}

	var n uint32
	for i, v := range vals[:len(vals)-1] {
		n |= uint32(v) << (8 * (3 - i))
	}
	n |= uint32(last)

	out[0] = byte(n >> 24)
	out[1] = byte(n >> 16)
	out[2] = byte(n >> 8)
	out[3] = byte(n)
	return out, true
}

func parseIPv4Part(p string) (uint64, bool) {
	if p == "" {
		return 0, false
	}

	base := uint64(10)
	switch {
	case len(p) > 1 && (p[:2] == "0x" || p[:2] == "0X"):
		base = 16
		p = p[2:]
		// "0x" alone is zero in inet_aton.
		if p == "" {
			return 0, true
		}
	case len(p) > 1 && p[0] == '0':
		base = 8
		p = p[1:]
	}

	var v uint64
	for i := 0; i < len(p); i++ {
		d, ok := digitValue(p[i])
		if !ok || d >= base {
			return 0, false
		}
		v = v*base + d
		if v > 0xFFFFFFFF {
			return 0, false
		}
	}
	return v, true
}

func digitValue(c byte) (uint64, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0'), true
	case c >= 'a' && c <= 'f':
		return uint64(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}
