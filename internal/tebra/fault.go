package tebra

import (
	"errors"
	"fmt"
)

// FaultKind classifies a failed gateway call.
type FaultKind int

const (
	// FaultAPI means the service answered with an error response.
	FaultAPI FaultKind = iota + 1
	// FaultAuth means the credentials were rejected.
	FaultAuth
	// FaultTransport covers timeouts, connection errors, SOAP faults and
	// undecodable responses.
	FaultTransport
)

func (k FaultKind) String() string {
	switch k {
	case FaultAPI:
		return "api error"
	case FaultAuth:
		return "auth error"
	case FaultTransport:
		return "transport fault"
	default:
		return fmt.Sprintf("fault(%d)", int(k))
	}
}

// Fault is the error returned by every Gateway method when a call does not
// produce a payload.
type Fault struct {
	Kind    FaultKind
	Op      string
	Message string
	Err     error
}

func (f *Fault) Error() string {
	msg := f.Message
	if msg == "" && f.Err != nil {
		msg = f.Err.Error()
	}
	return fmt.Sprintf("%s: %s: %s", f.Op, f.Kind, msg)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// AsFault reports whether err is (or wraps) a *Fault.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err is a *Fault of kind k.
func IsKind(err error, k FaultKind) bool {
	f, ok := AsFault(err)
	return ok && f.Kind == k
}
