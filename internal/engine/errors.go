package engine

import "errors"

// Kind classifies why a range copy was rejected or failed. A Kind is itself an
// error, so callers can test with errors.Is(err, engine.ReadPastEnd).
type Kind int

const (
	SourceNotFound Kind = iota + 1
	SourceOffsetOutOfRange
	ReadPastEnd
	DestOffsetOutOfRange
	DestMustPreexistForNonzeroOffset
	DestNotRegularFile
	InvalidCount
	IoError
	ChecksumMismatch
)

var kindNames = [...]string{
	SourceNotFound:                   "SourceNotFound",
	SourceOffsetOutOfRange:           "SourceOffsetOutOfRange",
	ReadPastEnd:                      "ReadPastEnd",
	DestOffsetOutOfRange:             "DestOffsetOutOfRange",
	DestMustPreexistForNonzeroOffset: "DestMustPreexistForNonzeroOffset",
	DestNotRegularFile:               "DestNotRegularFile",
	InvalidCount:                     "InvalidCount",
	IoError:                          "IoError",
	ChecksumMismatch:                 "ChecksumMismatch",
}

var kindMessages = [...]string{
	SourceNotFound:                   "source not found",
	SourceOffsetOutOfRange:           "source offset out of range",
	ReadPastEnd:                      "read past end of source",
	DestOffsetOutOfRange:             "destination offset out of range",
	DestMustPreexistForNonzeroOffset: "destination must exist for a nonzero offset",
	DestNotRegularFile:               "destination is not a regular file",
	InvalidCount:                     "invalid count",
	IoError:                          "i/o error",
	ChecksumMismatch:                 "checksum mismatch",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

func (k Kind) Error() string {
	if k > 0 && int(k) < len(kindMessages) {
		return kindMessages[k]
	}
	return "unknown error"
}

// Validation reports whether k is raised before any byte is transferred.
func (k Kind) Validation() bool {
	return k >= SourceNotFound && k <= InvalidCount
}

// Error describes a failed validation or copy.
type Error struct {
	Err    error // underlying cause, may be nil
	Path   string
	Detail string
	Kind   Kind
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare Kind target.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind carried by err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ErrPlanNotExecutable is returned by Execute for a plan that is not in the
// Validated state (already executed, failed or closed).
var ErrPlanNotExecutable = errors.New("plan is not executable")
