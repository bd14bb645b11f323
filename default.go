package etld

import (
	"fmt"
	"sync"
)

var defaultService = sync.OnceValue(func() *Service {
	s, err := NewService(Options{})
	if err != nil {
		// The embedded data is checked by tests; a failure here means a broken build.
		panic(fmt.Sprintf("etld: failed to build default service from embedded rule data: %v", err))
	}
	return s
})

// Default returns the process-wide Service built from the embedded rule data, private domains included.
// It is created on first use.
func Default() *Service {
	return defaultService()
}

// PublicSuffixFromHost calls PublicSuffixFromHost on the Default service.
func PublicSuffixFromHost(host string) (string, error) {
	return Default().PublicSuffixFromHost(host)
}

// BaseDomainFromHost calls BaseDomainFromHost on the Default service.
func BaseDomainFromHost(host string, extraLevels int) (string, error) {
	return Default().BaseDomainFromHost(host, extraLevels)
}
