package state

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes synchronization errors.
type ErrorCode string

const (
	// ErrCodeDuplicateID indicates InsertFront (or an optimistic create) was
	// given an identifier that is already stored.
	ErrCodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// ErrCodeIDMismatch indicates Upsert produced an entity whose identifier
	// differs from the one it was stored under.
	ErrCodeIDMismatch ErrorCode = "ID_MISMATCH"

	// ErrCodeInvalidTransition indicates a Tracker was asked to begin an
	// operation that is already pending.
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// ErrCodeInProgress indicates a mutation was attempted while another one
	// with the same operation key is still outstanding.
	ErrCodeInProgress ErrorCode = "OPERATION_IN_PROGRESS"

	// ErrCodeRemote indicates the remote call of a mutation failed. The local
	// state has already been rolled back when this error is returned.
	ErrCodeRemote ErrorCode = "REMOTE_FAILED"
)

// Error is returned by Collection, Tracker and Synchronizer.
//
// DUPLICATE_ID, ID_MISMATCH and INVALID_TRANSITION are programmer errors and should not be
// swallowed. REMOTE_FAILED is the expected failure mode; Err holds whatever
// the remote call returned.
type Error struct {
	Code     ErrorCode
	OpKey    string
	EntityID string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var msg string
	switch e.Code {
	case ErrCodeDuplicateID:
		msg = "entity already exists"
	case ErrCodeIDMismatch:
		msg = "patched entity has a different id"
	case ErrCodeInvalidTransition:
		msg = "operation already pending"
	case ErrCodeInProgress:
		msg = "operation in progress"
	case ErrCodeRemote:
		msg = "remote operation failed"
	default:
		msg = "sync error"
	}
	if e.OpKey != "" && e.EntityID != "" {
		msg = fmt.Sprintf("%s: %s (op=%s, id=%s)", e.Code, msg, e.OpKey, e.EntityID)
	} else if e.OpKey != "" {
		msg = fmt.Sprintf("%s: %s (op=%s)", e.Code, msg, e.OpKey)
	} else if e.EntityID != "" {
		msg = fmt.Sprintf("%s: %s (id=%s)", e.Code, msg, e.EntityID)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the remote error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

func errorCode(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsDuplicateID reports whether err is a duplicate identifier error.
func IsDuplicateID(err error) bool {
	return errorCode(err) == ErrCodeDuplicateID
}

// IsIDMismatch reports whether err is an Upsert identifier mismatch.
func IsIDMismatch(err error) bool {
	return errorCode(err) == ErrCodeIDMismatch
}

// IsInvalidTransition reports whether err is a tracker misuse error.
func IsInvalidTransition(err error) bool {
	return errorCode(err) == ErrCodeInvalidTransition
}

// IsInProgress reports whether err was caused by a concurrent mutation with
// the same operation key.
func IsInProgress(err error) bool {
	return errorCode(err) == ErrCodeInProgress
}

// IsRemote reports whether err is a rolled-back remote failure.
func IsRemote(err error) bool {
	return errorCode(err) == ErrCodeRemote
}
