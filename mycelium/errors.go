package mycelium

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
type Kind string

const (
	// KindTiming: the clock is unavailable or reads before the UNIX epoch.
	KindTiming Kind = "Timing"
	// KindSignatureMissing: Verify found no OriginSignature. Sign first.
	KindSignatureMissing Kind = "SignatureMissing"
	// KindSignatureInvalid: the spore rejected the signature. Treat the node as untrusted.
	KindSignatureInvalid Kind = "SignatureInvalid"
	// KindCapability: a spore failed to sign, verify or resolve.
	KindCapability Kind = "Capability"
	// KindOriginMissing: the node carries no OriginSpore to resolve.
	KindOriginMissing Kind = "OriginMissing"
	// KindInvalid: a nil argument, or a node added to itself.
	KindInvalid Kind = "Invalid"
	// KindInternal: the digest could not be computed. Not caused by the input.
	KindInternal Kind = "Internal"
)

// Error is the package's structured error type.
//
// RuleID is a stable identifier (e.g. MYC-SIG-001) naming the failed check.
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
