// Package apperr defines the error taxonomy shared by the process, window,
// version and app packages.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an Error.
type Code int

const (
	CodeUnknown Code = iota
	CodeFileNotFound
	CodeLaunchTimeout
	CodeLaunchFailed
	CodeWindowWaitTimeout
	CodePathMismatch
	CodeVersionUnavailable
	CodeParse
	CodeNoWindowBound
	CodeNoProcessBound
	CodeTerminationFailed
	CodePlatform
)

// String returns a string representation of the error code
func (c Code) String() string {
	switch c {
	case CodeFileNotFound:
		return "FILE_NOT_FOUND"
	case CodeLaunchTimeout:
		return "LAUNCH_TIMEOUT"
	case CodeLaunchFailed:
		return "LAUNCH_FAILED"
	case CodeWindowWaitTimeout:
		return "WINDOW_WAIT_TIMEOUT"
	case CodePathMismatch:
		return "PATH_MISMATCH"
	case CodeVersionUnavailable:
		return "VERSION_UNAVAILABLE"
	case CodeParse:
		return "PARSE_ERROR"
	case CodeNoWindowBound:
		return "NO_WINDOW_BOUND"
	case CodeNoProcessBound:
		return "NO_PROCESS_BOUND"
	case CodeTerminationFailed:
		return "TERMINATION_FAILED"
	case CodePlatform:
		return "PLATFORM"
	default:
		return "UNKNOWN"
	}
}

// Error is the error type returned by every public operation of this module.
type Error struct {
	Op   string // operation name, e.g. "launch"
	Code Code
	Path string // executable path, if relevant
	PID  int    // process id, if relevant
	Msg  string
	Err  error // underlying error
}

func (e *Error) Error() string {
	if e == nil {
		return "appctl error"
	}

	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(strings.ToLower(strings.ReplaceAll(e.Code.String(), "_", " ")))
	}

	var parts []string
	parts = append(parts, "code="+e.Code.String())
	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}
	if e.PID != 0 {
		parts = append(parts, fmt.Sprintf("pid=%d", e.PID))
	}
	b.WriteString(" [")
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("]")

	if e.Msg != "" && e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error by code, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is.
var (
	ErrFileNotFound       = &Error{Code: CodeFileNotFound}
	ErrLaunchTimeout      = &Error{Code: CodeLaunchTimeout}
	ErrLaunchFailed       = &Error{Code: CodeLaunchFailed}
	ErrWindowWaitTimeout  = &Error{Code: CodeWindowWaitTimeout}
	ErrPathMismatch       = &Error{Code: CodePathMismatch}
	ErrVersionUnavailable = &Error{Code: CodeVersionUnavailable}
	ErrParse              = &Error{Code: CodeParse}
	ErrNoWindowBound      = &Error{Code: CodeNoWindowBound}
	ErrNoProcessBound     = &Error{Code: CodeNoProcessBound}
	ErrTerminationFailed  = &Error{Code: CodeTerminationFailed}
	ErrPlatform           = &Error{Code: CodePlatform}
)

// New creates an Error with a message.
func New(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(op string, code Code, format string, args ...interface{}) *Error {
	return &Error{Op: op, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code. A nil err yields nil.
func Wrap(op string, code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Code: code, Err: err}
}

// WithPath sets the executable path and returns the receiver.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithPID sets the process id and returns the receiver.
func (e *Error) WithPID(pid int) *Error {
	e.PID = pid
	return e
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

func is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsFileNotFound checks if the error is a "file not found" error
func IsFileNotFound(err error) bool { return is(err, CodeFileNotFound) }

// IsLaunchTimeout checks if the error is a launch timeout
func IsLaunchTimeout(err error) bool { return is(err, CodeLaunchTimeout) }

// IsWindowWaitTimeout checks if the error is a window wait timeout
func IsWindowWaitTimeout(err error) bool { return is(err, CodeWindowWaitTimeout) }

// IsPathMismatch checks if the error is a path mismatch on attach
func IsPathMismatch(err error) bool { return is(err, CodePathMismatch) }

// IsVersionUnavailable checks if the error reports missing version metadata
func IsVersionUnavailable(err error) bool { return is(err, CodeVersionUnavailable) }

// IsParse checks if the error is a version parse error
func IsParse(err error) bool { return is(err, CodeParse) }

// IsNoWindowBound checks if the error reports a missing window binding
func IsNoWindowBound(err error) bool { return is(err, CodeNoWindowBound) }

// IsNoProcessBound checks if the error reports a missing process binding
func IsNoProcessBound(err error) bool { return is(err, CodeNoProcessBound) }

// IsTimeout reports whether err is either acquisition timeout.
func IsTimeout(err error) bool {
	return is(err, CodeLaunchTimeout) || is(err, CodeWindowWaitTimeout)
}
