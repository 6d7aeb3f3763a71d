package spore

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature    = errors.New("spore: signature invalid")
	ErrNoPrivateKey        = errors.New("spore: no private key")
	ErrUnknownScheme       = errors.New("spore: unknown scheme")
	ErrMalformedSporeprint = errors.New("spore: malformed sporeprint")
)

// Op names the capability operation that failed.
type Op string

const (
	OpSign    Op = "sign"
	OpVerify  Op = "verify"
	OpResolve Op = "resolve"
)

// Error is returned by every Spore operation.
//
// Err is one of the sentinel errors above or a lower-level cause; use
// errors.Is against the sentinels rather than matching Error() strings.
type Error struct {
	Op     Op
	Scheme string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Scheme == "" {
		return fmt.Sprintf("spore %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("spore %s (%s): %v", e.Op, e.Scheme, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError wraps err for op. A nil err yields nil.
func NewError(op Op, scheme string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Scheme: scheme, Err: err}
}

// IsInvalidSignature reports whether err is a rejected signature.
func IsInvalidSignature(err error) bool { return errors.Is(err, ErrInvalidSignature) }
