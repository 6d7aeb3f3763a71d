package model

import (
	"errors"
	"fmt"

	"xdao.co/mycelium/storage"
)

type ErrorCode string

const (
	ErrInvalidDocument ErrorCode = "INVALID_DOCUMENT"
	ErrInvalidCID      ErrorCode = "INVALID_CID"
	ErrMissingCAS      ErrorCode = "MISSING_CAS"
	ErrNotFound        ErrorCode = "NOT_FOUND"
	ErrCIDMismatch     ErrorCode = "CID_MISMATCH"
	ErrInternal        ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// Code returns the ErrorCode carried by err, or "" when err is not a CodedError.
func Code(err error) ErrorCode {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// MapError converts storage failures into coded errors. Coded errors pass
// through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, storage.ErrNotFound) {
		return NewError(ErrNotFound, err.Error())
	}
	if errors.Is(err, storage.ErrCIDMismatch) {
		return NewError(ErrCIDMismatch, err.Error())
	}
	if errors.Is(err, storage.ErrInvalidCID) {
		return NewError(ErrInvalidCID, err.Error())
	}
	return NewError(ErrInternal, err.Error())
}
