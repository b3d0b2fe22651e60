package llrpcodec

import (
	"unicode/utf8"

	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
)

// ValidateMessage runs the Validator (Spec 4.4) over a Message's own
// fields and its whole sub-parameter tree. It is called by EncodeMessage
// before any bytes are written; callers that decode a tree and want the
// "decode output passes Validator" property (Spec 8 #4) call it
// explicitly too, since decode itself does not.
func ValidateMessage(reg *llrpspec.Registry, msg *llrptlv.Message) error {
	if msg.Spec == nil {
		return ErrSpecNotFound
	}
	path := []string{msg.Spec.Name}
	if err := validateFields(reg, msg.Spec.Fields, msg.Values, path); err != nil {
		return err
	}
	return validateSubParams(reg, msg.Spec.SubParams, msg.Items, path)
}

// validateParameter runs the Validator over one parameter node and its
// sub-items. An Opaque node (unrecognized Custom payload) is exempt: it
// carries no spec to validate against and is preserved verbatim (Spec
// 4.3).
func validateParameter(reg *llrpspec.Registry, p *llrptlv.Parameter, path []string) error {
	if p.Opaque != nil {
		return nil
	}
	if p.Spec == nil {
		return ErrSpecNotFound
	}
	expandSingleFieldConvenience(p)
	if err := validateFields(reg, p.Spec.Fields, p.Values, path); err != nil {
		return err
	}
	return validateSubParams(reg, p.Spec.SubParams, p.Items, path)
}

// expandSingleFieldConvenience implements the "single-field convenience"
// passing rule (Spec 4.4): if a ParameterSpec has exactly one field and
// no sub-parameters, a value supplied positionally under the empty key
// is expanded in place to the named field.
func expandSingleFieldConvenience(p *llrptlv.Parameter) {
	if len(p.Spec.Fields) != 1 || len(p.Spec.SubParams) != 0 {
		return
	}
	v, ok := p.Values[""]
	if !ok {
		return
	}
	delete(p.Values, "")
	p.Values[p.Spec.Fields[0].Name] = v
}

// validateFields checks field completeness (Spec 4.4): every required
// field present, no unknown fields, and for every present field its
// type/range/enum membership.
func validateFields(reg *llrpspec.Registry, fields []llrpspec.FieldSpec, values map[string]llrptlv.Value, path []string) error {
	declared := make(map[string]bool, len(fields))
	for i := range fields {
		fs := &fields[i]
		if fs.Type == llrpspec.FieldTypeReserved {
			continue
		}
		declared[fs.Name] = true
		val, ok := values[fs.Name]
		if !ok {
			if fs.HasDefault {
				continue
			}
			return validationErr(ValidationErrMissingField, path, fs.Name, "required field not supplied")
		}
		if err := validateFieldValue(reg, fs, val, path); err != nil {
			return err
		}
	}
	for name := range values {
		if !declared[name] {
			return validationErr(ValidationErrUnknownField, path, name, "field not declared by spec")
		}
	}
	return nil
}

func validateFieldValue(reg *llrpspec.Registry, fs *llrpspec.FieldSpec, val llrptlv.Value, path []string) error {
	if fs.Array != llrpspec.ArrayNone {
		arr, ok := val.AsUintArray()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected uint array")
		}
		if fs.Array == llrpspec.ArrayFixed && len(arr) != fs.ArrayLen {
			return validationErr(ValidationErrOutOfRange, path, fs.Name, "wrong array length")
		}
		width := fs.Type.FixedBitWidth()
		for _, e := range arr {
			if width > 0 && width < 64 && e >= uint64(1)<<uint(width) {
				return validationErr(ValidationErrOutOfRange, path, fs.Name, "array element exceeds field width")
			}
		}
		return nil
	}

	switch fs.Type {
	case llrpspec.FieldTypeBool:
		if _, ok := val.AsBool(); !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected bool")
		}
		return nil

	case llrpspec.FieldTypeU1, llrpspec.FieldTypeU2, llrpspec.FieldTypeU8, llrpspec.FieldTypeU16,
		llrpspec.FieldTypeU32, llrpspec.FieldTypeU64:
		u, ok := val.AsUint()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected unsigned integer")
		}
		width := fs.Type.FixedBitWidth()
		if width < 64 && u >= uint64(1)<<uint(width) {
			return validationErr(ValidationErrOutOfRange, path, fs.Name, "value exceeds field width")
		}
		return validateEnumMember(reg, fs, u, path)

	case llrpspec.FieldTypeS8, llrpspec.FieldTypeS16, llrpspec.FieldTypeS32, llrpspec.FieldTypeS64:
		s, ok := val.AsSint()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected signed integer")
		}
		width := fs.Type.FixedBitWidth()
		lo := -(int64(1) << uint(width-1))
		hi := int64(1) << uint(width-1)
		if width < 64 && (s < lo || s >= hi) {
			return validationErr(ValidationErrOutOfRange, path, fs.Name, "value exceeds field width")
		}
		return nil

	case llrpspec.FieldTypeU96:
		b, ok := val.AsBytes()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected 12-byte EPC")
		}
		if len(b) != 12 {
			return validationErr(ValidationErrOutOfRange, path, fs.Name, "u96 requires exactly 12 bytes")
		}
		return nil

	case llrpspec.FieldTypeUTF8:
		s, ok := val.AsString()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected utf8 string")
		}
		if !utf8.ValidString(s) {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "not valid utf8")
		}
		return nil

	case llrpspec.FieldTypeBits:
		if _, ok := val.AsBytes(); !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected bit array bytes")
		}
		return nil

	case llrpspec.FieldTypeUNV:
		u, ok := val.AsUint()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected unsigned integer")
		}
		if fs.BitWidth > 0 && fs.BitWidth < 64 && u >= uint64(1)<<uint(fs.BitWidth) {
			return validationErr(ValidationErrOutOfRange, path, fs.Name, "value exceeds field width")
		}
		return validateEnumMember(reg, fs, u, path)

	case llrpspec.FieldTypeBytesToEnd:
		if _, ok := val.AsBytes(); !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected byte string")
		}
		return nil
	}
	return validationErr(ValidationErrTypeMismatch, path, fs.Name, "unsupported field type")
}

// validateEnumMember checks membership for an enumerated field. Values
// outside the defined members decode successfully but fail here unless
// the spec marks the enum open (Spec 4.3, 4.4).
func validateEnumMember(reg *llrpspec.Registry, fs *llrpspec.FieldSpec, u uint64, path []string) error {
	if fs.EnumRef == "" || fs.OpenEnum {
		return nil
	}
	enum, ok := reg.Enums[fs.EnumRef]
	if !ok {
		return nil // resolved at Registry build time; absence here can't happen
	}
	if _, ok := enum.ValueToName[u]; !ok {
		return validationErr(ValidationErrUnknownEnumMember, path, fs.Name, "value is not a defined enum member")
	}
	return nil
}

// validateSubParams enforces cardinality and choice-group rules (Spec
// 3.1 SubParamRule, 4.4) and recurses into each child. Any
// Custom-extension instance (whether matched by a registered
// CustomExtension spec or preserved as an Opaque payload) is counted against the "Custom"
// wildcard slot rather than its own type name, matching the decoder's
// permission check in decodeSubParams.
func validateSubParams(reg *llrpspec.Registry, rules []llrpspec.SubParamRule, items []*llrptlv.Parameter, path []string) error {
	allowed := make(map[string]bool, len(rules))
	groupOf := make(map[string]string, len(rules))
	for _, r := range rules {
		allowed[r.ParameterName] = true
		if r.ChoiceGroup != "" {
			groupOf[r.ParameterName] = r.ChoiceGroup
		}
	}

	counts := map[string]int{}
	choiceCounts := map[string]int{}
	for _, item := range items {
		bucket := item.Name()
		if item.Custom != nil || item.Opaque != nil {
			bucket = llrpspec.CustomSlotName
		}
		if !allowed[bucket] {
			return validationErr(ValidationErrCardinalityViolation, path, bucket, "parameter not permitted here")
		}
		counts[bucket]++
		if g, ok := groupOf[bucket]; ok {
			choiceCounts[g]++
		}
		itemPath := append(append([]string(nil), path...), item.Name())
		if err := validateParameter(reg, item, itemPath); err != nil {
			return err
		}
	}

	seenGroup := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.ChoiceGroup != "" {
			if seenGroup[r.ChoiceGroup] {
				continue
			}
			seenGroup[r.ChoiceGroup] = true
			if choiceCounts[r.ChoiceGroup] != 1 {
				return validationErr(ValidationErrChoiceViolation, path, r.ChoiceGroup, "exactly one branch must be populated")
			}
			continue
		}
		c := counts[r.ParameterName]
		switch r.Cardinality {
		case llrpspec.CardinalityOne:
			if c != 1 {
				return validationErr(ValidationErrCardinalityViolation, path, r.ParameterName, "expected exactly one")
			}
		case llrpspec.CardinalityZeroOrOne:
			if c > 1 {
				return validationErr(ValidationErrCardinalityViolation, path, r.ParameterName, "expected at most one")
			}
		case llrpspec.CardinalityOneOrMore:
			if c < 1 {
				return validationErr(ValidationErrCardinalityViolation, path, r.ParameterName, "expected at least one")
			}
		case llrpspec.CardinalityZeroOrMore:
			// any count is valid
		}
	}
	return nil
}
