package hapapi

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ErrorKind classifies why a worksheet call could not complete.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindMissingParameter
	KindInvalidHost
	KindPayloadParse
	KindTransport
	KindBusiness
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingParameter:
		return "missing_parameter"
	case KindInvalidHost:
		return "invalid_host"
	case KindPayloadParse:
		return "payload_parse"
	case KindTransport:
		return "transport"
	case KindBusiness:
		return "business"
	default:
		return "unexpected"
	}
}

// Operations attached to an Error so callers can tell the request body apart
// from the response body when both fail to parse.
const (
	OpParseRecordData = "parse record data"
	OpDecodeResponse  = "decode response"
	OpRequest         = "request"
	OpValidate        = "validate"
)

// Error is a classified failure returned by this package.
//
// For KindBusiness, Code and Msg carry the remote error_code and error_msg.
type Error struct {
	Kind ErrorKind
	Op   string
	Code int
	Msg  string
	err  error
}

func (e *Error) Error() string {
	switch {
	case e.err != nil && e.Msg != "":
		return e.Msg + ": " + e.err.Error()
	case e.err != nil:
		return e.err.Error()
	case e.Kind == KindMissingParameter:
		return "missing parameter " + e.Msg
	case e.Kind == KindBusiness && e.Msg == "":
		return fmt.Sprintf("error_code=%d", e.Code)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.err }

// Format prints the wrapped stack with %+v, the same way pkg/errors values do.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			if e.err != nil {
				fmt.Fprintf(s, "%+v\n", e.err)
			}
			fmt.Fprintf(s, "%s (%s)", e.Kind, e.Op)
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, err: err}
}

// MissingParameter reports an empty required parameter by its display label,
// e.g. "Worksheet ID".
func MissingParameter(label string) error {
	return &Error{Kind: KindMissingParameter, Op: OpValidate, Msg: label}
}

// KindOf returns the classification of err. Unclassified errors are
// KindUnexpected.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// AsError extracts the classified error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
