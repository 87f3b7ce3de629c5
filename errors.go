// errors.go: operational error taxonomy and fatal programming errors
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringchan

import (
	stderrors "errors"

	goerrors "github.com/agilira/go-errors"
)

// Error codes for the operational failures a Channel operation can report.
// These mirror the original's ChanErr result codes one-for-one; they are
// operational, not fatal, and never panic.
const (
	CodeFull     goerrors.ErrorCode = "RINGCHAN_FULL"
	CodeEmpty    goerrors.ErrorCode = "RINGCHAN_EMPTY"
	CodeTimedOut goerrors.ErrorCode = "RINGCHAN_TIMED_OUT"
	CodeDrained  goerrors.ErrorCode = "RINGCHAN_DRAINED"
	CodeClosed   goerrors.ErrorCode = "RINGCHAN_CLOSED"

	// Fatal codes. Operations that hit these panic instead of returning
	// an *OpError; they indicate a programming error, not a runtime
	// condition a caller is expected to recover from.
	CodeInvalidMode    goerrors.ErrorCode = "RINGCHAN_INVALID_MODE"
	CodeRecursiveLock  goerrors.ErrorCode = "RINGCHAN_RECURSIVE_LOCK"
	CodeForeignUnlock  goerrors.ErrorCode = "RINGCHAN_FOREIGN_UNLOCK"
	CodeBadBufferCount goerrors.ErrorCode = "RINGCHAN_BAD_BUFFER_COUNT"
)

// OpError wraps an operational failure from a Channel operation (push into
// a full channel, pop from an empty one, a timed wait that ran out, or a
// handle observing the drain state).
type OpError struct {
	Op  string
	err *goerrors.Error
}

func newOpError(op string, code goerrors.ErrorCode, message string) *OpError {
	return &OpError{Op: op, err: goerrors.New(code, message)}
}

func (e *OpError) Error() string {
	return e.Op + ": " + e.err.Error()
}

func (e *OpError) Unwrap() error { return e.err }

// Code returns the go-errors error code carried by e.
func (e *OpError) Code() goerrors.ErrorCode { return e.err.Code }

func opErrorIs(err error, code goerrors.ErrorCode) bool {
	var oe *OpError
	if !stderrors.As(err, &oe) {
		return false
	}
	return oe.Code() == code
}

// IsFull reports whether err is an OpError indicating the channel was full.
func IsFull(err error) bool { return opErrorIs(err, CodeFull) }

// IsEmpty reports whether err is an OpError indicating the channel was empty.
func IsEmpty(err error) bool { return opErrorIs(err, CodeEmpty) }

// IsTimedOut reports whether err is an OpError indicating a timed wait expired.
func IsTimedOut(err error) bool { return opErrorIs(err, CodeTimedOut) }

// IsDrained reports whether err is an OpError indicating the channel has no
// more writers and no more buffered items.
func IsDrained(err error) bool { return opErrorIs(err, CodeDrained) }

// IsClosed reports whether err is an OpError carrying CodeClosed. Operations
// do not check whether their Handle is closed, so no Channel operation
// returns this code.
func IsClosed(err error) bool { return opErrorIs(err, CodeClosed) }

// fatal panics with a coded go-errors value carrying msg, for programming
// errors that must never be silently tolerated (recursive lock, unlock by
// a non-owner, invalid mode).
func fatal(code goerrors.ErrorCode, msg string) {
	panic(goerrors.New(code, msg))
}
