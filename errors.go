package csniff

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure the way the session controller and its
// callers need to branch on, independent of the wrapped error chain
// pkg/errors builds for diagnostics.
type Kind int

const (
	// KindUnknown is never attached to an error by this package; it is
	// the zero value CauseKind returns for errors that didn't originate
	// here.
	KindUnknown Kind = iota
	KindDeviceNotFound
	KindIoError
	KindTimeout
	KindBadAddress
	KindBadPairSpec
	KindEncodeOverflow
	KindMalformedFrame
	KindDumpIoError
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindDeviceNotFound:
		return "DeviceNotFound"
	case KindIoError:
		return "IoError"
	case KindTimeout:
		return "Timeout"
	case KindBadAddress:
		return "BadAddress"
	case KindBadPairSpec:
		return "BadPairSpec"
	case KindEncodeOverflow:
		return "EncodeOverflow"
	case KindMalformedFrame:
		return "MalformedFrame"
	case KindDumpIoError:
		return "DumpIoError"
	case KindUnsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// NewError builds an error of the given kind with a formatted message,
// wrapped with errors.WithStack so it keeps a stack trace.
func NewError(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&kindError{kind: kind, msg: fmt.Sprintf(format, args...)})
}

// WrapError attaches a kind to an existing error, keeping its message
// for logging while letting callers branch on CauseKind. Only the
// message is kept: the original error's cause chain (and any Kind it
// carried) is not reachable from the result.
func WrapError(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(&kindError{kind: kind, msg: err.Error()}, msg)
}

// CauseKind unwraps err looking for the Kind it was tagged with,
// returning KindUnknown if none is found.
func CauseKind(err error) Kind {
	for err != nil {
		if ke, ok := err.(*kindError); ok {
			return ke.kind
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return KindUnknown
		}
		err = cause.Cause()
	}
	return KindUnknown
}
