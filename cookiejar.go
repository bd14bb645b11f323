package etld

import "net/http/cookiejar"

type jarList struct {
	s *Service
}

// CookieJarList adapts the Service to cookiejar.PublicSuffixList,
// for use as cookiejar.Options.PublicSuffixList.
func (s *Service) CookieJarList() cookiejar.PublicSuffixList {
	return jarList{s: s}
}

// PublicSuffix returns the public suffix of domain, or an empty string if it cannot be resolved.
// The jar applies no public suffix restriction for an empty result.
func (l jarList) PublicSuffix(domain string) string {
	ps, err := l.s.PublicSuffixFromHost(domain)
	if err != nil {
		return ""
	}
	return ps
}

func (l jarList) String() string {
	if v := l.s.Version(); v != "" {
		return "publicsuffix.org list " + v
	}
	return "publicsuffix.org list (unversioned)"
}
