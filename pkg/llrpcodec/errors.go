// Package llrpcodec implements the generic binary Codec (Spec 4.3) and
// Validator (Spec 4.4): encoding and decoding any message or parameter
// tree driven entirely by a *llrpspec.Registry, with strict validation
// of types, ranges, enumerations, cardinalities, and ordering.
package llrpcodec

import (
	"errors"
	"fmt"
	"strings"
)

// CodecErrorKind taxonomizes decode-time failures (Spec 7).
type CodecErrorKind int

const (
	CodecErrTruncated CodecErrorKind = iota
	CodecErrUnknownType
	CodecErrUnexpectedParameter
	CodecErrFramingError
	CodecErrUnsupportedVersion
)

func (k CodecErrorKind) String() string {
	switch k {
	case CodecErrTruncated:
		return "Truncated"
	case CodecErrUnknownType:
		return "UnknownType"
	case CodecErrUnexpectedParameter:
		return "UnexpectedParameter"
	case CodecErrFramingError:
		return "FramingError"
	case CodecErrUnsupportedVersion:
		return "UnsupportedVersion"
	default:
		return "Unknown"
	}
}

// CodecError is raised by decode, carrying the path (message ->
// parameter -> field) at which the failure occurred (Spec 7).
type CodecError struct {
	Kind   CodecErrorKind
	Path   []string
	Detail string
	Err    error
}

func (e *CodecError) Error() string {
	path := strings.Join(e.Path, ".")
	if e.Detail != "" {
		return fmt.Sprintf("llrpcodec: %s at %s: %s", e.Kind, path, e.Detail)
	}
	return fmt.Sprintf("llrpcodec: %s at %s", e.Kind, path)
}

func (e *CodecError) Unwrap() error { return e.Err }

func codecErr(kind CodecErrorKind, path []string, detail string, cause error) *CodecError {
	return &CodecError{Kind: kind, Path: append([]string(nil), path...), Detail: detail, Err: cause}
}

// ValidationErrorKind taxonomizes Validator and pre-encode failures
// (Spec 7).
type ValidationErrorKind int

const (
	ValidationErrUnknownField ValidationErrorKind = iota
	ValidationErrMissingField
	ValidationErrTypeMismatch
	ValidationErrOutOfRange
	ValidationErrUnknownEnumMember
	ValidationErrCardinalityViolation
	ValidationErrChoiceViolation
)

func (k ValidationErrorKind) String() string {
	switch k {
	case ValidationErrUnknownField:
		return "UnknownField"
	case ValidationErrMissingField:
		return "MissingField"
	case ValidationErrTypeMismatch:
		return "TypeMismatch"
	case ValidationErrOutOfRange:
		return "OutOfRange"
	case ValidationErrUnknownEnumMember:
		return "UnknownEnumMember"
	case ValidationErrCardinalityViolation:
		return "CardinalityViolation"
	case ValidationErrChoiceViolation:
		return "ChoiceViolation"
	default:
		return "Unknown"
	}
}

// ValidationError is raised by ValidateMessage, by the encoders (which
// validate before writing), and by pkg/llrpxml for attributes it cannot
// parse, naming the field or parameter at fault (Spec 7, 8). The
// llrptlv constructors and DecodeMessage do not run the Validator.
type ValidationError struct {
	Kind   ValidationErrorKind
	Path   []string
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	path := strings.Join(e.Path, ".")
	name := e.Field
	if name == "" {
		return fmt.Sprintf("llrpcodec: %s at %s: %s", e.Kind, path, e.Detail)
	}
	return fmt.Sprintf("llrpcodec: %s(%q) at %s: %s", e.Kind, name, path, e.Detail)
}

func validationErr(kind ValidationErrorKind, path []string, field, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Path: append([]string(nil), path...), Field: field, Detail: detail}
}

// ErrSpecNotFound is returned when a Message/Parameter is constructed
// against a nil or unresolved spec reference.
var ErrSpecNotFound = errors.New("llrpcodec: spec not found")
