package etld

import (
	"errors"
	"fmt"
)

// Kind classifies why a host could not be resolved.
// The set of kinds is closed; every *HostError carries exactly one.
type Kind int

const (
	// KindHostIsIPAddress means the host is an IPv4 or IPv6 literal.
	KindHostIsIPAddress Kind = iota + 1
	// KindIllegalValue means the host is not syntactically a host name.
	KindIllegalValue
	// KindInsufficientDomainLevels means the host has too few labels above its public suffix for the operation.
	KindInsufficientDomainLevels
)

func (k Kind) String() string {
	switch k {
	case KindHostIsIPAddress:
		return "host is IP address"
	case KindIllegalValue:
		return "illegal value"
	case KindInsufficientDomainLevels:
		return "insufficient domain levels"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrHostIsIPAddress matches any *HostError of kind KindHostIsIPAddress.
var ErrHostIsIPAddress = errors.New("host is an IP address")

// ErrIllegalValue matches any *HostError of kind KindIllegalValue.
var ErrIllegalValue = errors.New("illegal host value")

// ErrInsufficientDomainLevels matches any *HostError of kind KindInsufficientDomainLevels.
var ErrInsufficientDomainLevels = errors.New("insufficient domain levels")

// ErrNegativeLevels is the cause of a KindIllegalValue error when extraLevels is negative.
var ErrNegativeLevels = errors.New("extra levels must not be negative")

// ErrSourceNoData is returned when a rule source has neither a Get method nor a Path.
var ErrSourceNoData = errors.New("rule source has no data: Path is empty and Get method is nil")

// ErrNilURI is the cause of a KindIllegalValue error when a nil URI or URL is passed.
var ErrNilURI = errors.New("uri is nil")

func (k Kind) sentinel() error {
	switch k {
	case KindHostIsIPAddress:
		return ErrHostIsIPAddress
	case KindIllegalValue:
		return ErrIllegalValue
	case KindInsufficientDomainLevels:
		return ErrInsufficientDomainLevels
	default:
		return nil
	}
}

// HostError is returned by every resolution operation that fails.
// Includes the failure kind, the host as given by the caller and, when known, the underlying cause.
//
// errors.Is(err, ErrIllegalValue) and friends match on Kind;
// errors.Is also sees through to the cause, e.g. normalize.ErrEmptyLabel.
type HostError struct {
	// Kind of the failure.
	Kind Kind
	// Host as supplied by the caller.
	Host string
	// Err is the underlying cause, may be nil.
	Err error
}

func (err *HostError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf(`host "%s": %s`, err.Host, err.Kind)
	}
	return fmt.Sprintf(`host "%s": %s: %v`, err.Host, err.Kind, err.Err)
}

func (err *HostError) Unwrap() error {
	return err.Err
}

func (err *HostError) Is(target error) bool {
	s := err.Kind.sentinel()
	return s != nil && target == s
}

// NewHostError creates a new HostError instance.
func NewHostError(kind Kind, host string, cause error) *HostError {
	return &HostError{
		Kind: kind,
		Host: host,
		Err:  cause,
	}
}

// KindOf returns the kind of the *HostError in err's chain.
// The boolean is false if err does not contain a *HostError.
func KindOf(err error) (Kind, bool) {
	var hostErr *HostError
	if errors.As(err, &hostErr) {
		return hostErr.Kind, true
	}
	return 0, false
}
