package fuzle

import (
	"errors"
	"fmt"
)

// Kind classifies why a duration could not be computed
type Kind int

const (
	// KindIO is a failure to open or read the input
	KindIO Kind = iota + 1
	// KindOutOfBounds is a read past the end of the buffer
	KindOutOfBounds
	// KindNotContainerFormat is a missing FUZE magic in prefixed mode
	KindNotContainerFormat
	// KindSignatureNotFound is a missing "RIFF" signature
	KindSignatureNotFound
	// KindUnsupportedFormat is a RIFF form type other than XWMA, or an unknown locator mode
	KindUnsupportedFormat
	// KindPacketTableMissing is a missing "dpds" chunk after the format chunk
	KindPacketTableMissing
	// KindInvalidPacketTable is a packet table that is empty or not made of whole entries
	KindInvalidPacketTable
	// KindDivisionByZero is a zero frame size or sample rate
	KindDivisionByZero
)

// One sentinel per kind, for use with errors.Is.
var (
	ErrIO                 = errors.New("io error")
	ErrOutOfBounds        = errors.New("read out of bounds")
	ErrNotContainerFormat = errors.New("not a FUZ file")
	ErrSignatureNotFound  = errors.New("RIFF signature not found")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrPacketTableMissing = errors.New("dpds packet table missing")
	ErrInvalidPacketTable = errors.New("invalid dpds packet table")
	ErrDivisionByZero     = errors.New("division by zero")
)

var kindSentinels = map[Kind]error{
	KindIO:                 ErrIO,
	KindOutOfBounds:        ErrOutOfBounds,
	KindNotContainerFormat: ErrNotContainerFormat,
	KindSignatureNotFound:  ErrSignatureNotFound,
	KindUnsupportedFormat:  ErrUnsupportedFormat,
	KindPacketTableMissing: ErrPacketTableMissing,
	KindInvalidPacketTable: ErrInvalidPacketTable,
	KindDivisionByZero:     ErrDivisionByZero,
}

func (k Kind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every failing parse. Offset is the buffer position the
// failure was detected at, or -1 when it does not apply.
type Error struct {
	Kind    Kind
	Offset  int
	Details string
	Err     error // underlying cause, IO errors only
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind carried by err, or 0 if err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Offset:  offset,
		Details: fmt.Sprintf(format, args...),
	}
}
