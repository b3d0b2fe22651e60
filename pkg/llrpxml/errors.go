// Package llrpxml implements the symmetric XML serialization of the
// runtime message tree (Spec 4.5): an element per message/parameter,
// attributes per field, enumerated fields carried as symbolic names,
// and sub-parameters as child elements in spec order on emit. It
// reuses pkg/llrpcodec's error taxonomy so a malformed document and a
// malformed binary frame report the same CodecError/ValidationError
// kinds (Spec 7).
package llrpxml

import "github.com/openllrp/llrp/pkg/llrpcodec"

func unknownType(path []string, detail string) error {
	return &llrpcodec.CodecError{Kind: llrpcodec.CodecErrUnknownType, Path: append([]string(nil), path...), Detail: detail}
}

func unexpectedParameter(path []string, name string) error {
	return &llrpcodec.CodecError{Kind: llrpcodec.CodecErrUnexpectedParameter, Path: append([]string(nil), path...), Detail: name}
}

func framingError(path []string, detail string) error {
	return &llrpcodec.CodecError{Kind: llrpcodec.CodecErrFramingError, Path: append([]string(nil), path...), Detail: detail}
}

func typeMismatch(path []string, field, detail string) error {
	return &llrpcodec.ValidationError{Kind: llrpcodec.ValidationErrTypeMismatch, Path: append([]string(nil), path...), Field: field, Detail: detail}
}

func missingField(path []string, field string) error {
	return &llrpcodec.ValidationError{Kind: llrpcodec.ValidationErrMissingField, Path: append([]string(nil), path...), Field: field, Detail: "attribute not present"}
}

func unknownEnumMember(path []string, field, detail string) error {
	return &llrpcodec.ValidationError{Kind: llrpcodec.ValidationErrUnknownEnumMember, Path: append([]string(nil), path...), Field: field, Detail: detail}
}
