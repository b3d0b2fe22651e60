package llrpxml

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
)

// encodeAttr renders one field's value as an XML attribute string.
// Enumerated fields render their symbolic member name, never the
// integer (Spec 4.5).
func encodeAttr(reg *llrpspec.Registry, fs *llrpspec.FieldSpec, val llrptlv.Value, path []string) (string, error) {
	if fs.Array != llrpspec.ArrayNone {
		arr, ok := val.AsUintArray()
		if !ok {
			return "", typeMismatch(path, fs.Name, "expected uint array")
		}
		parts := make([]string, len(arr))
		for i, e := range arr {
			parts[i] = strconv.FormatUint(e, 10)
		}
		return strings.Join(parts, " "), nil
	}

	switch fs.Type {
	case llrpspec.FieldTypeBool:
		b, ok := val.AsBool()
		if !ok {
			return "", typeMismatch(path, fs.Name, "expected bool")
		}
		return strconv.FormatBool(b), nil

	case llrpspec.FieldTypeU1, llrpspec.FieldTypeU2, llrpspec.FieldTypeU8, llrpspec.FieldTypeU16,
		llrpspec.FieldTypeU32, llrpspec.FieldTypeU64, llrpspec.FieldTypeUNV:
		u, ok := val.AsUint()
		if !ok {
			return "", typeMismatch(path, fs.Name, "expected unsigned integer")
		}
		if fs.EnumRef != "" {
			if enum, ok := reg.Enums[fs.EnumRef]; ok {
				if name, ok := enum.ValueToName[u]; ok {
					return name, nil
				}
				if !fs.OpenEnum {
					return "", unknownEnumMember(path, fs.Name, "value is not a defined enum member")
				}
			}
		}
		return strconv.FormatUint(u, 10), nil

	case llrpspec.FieldTypeS8, llrpspec.FieldTypeS16, llrpspec.FieldTypeS32, llrpspec.FieldTypeS64:
		s, ok := val.AsSint()
		if !ok {
			return "", typeMismatch(path, fs.Name, "expected signed integer")
		}
		return strconv.FormatInt(s, 10), nil

	case llrpspec.FieldTypeU96, llrpspec.FieldTypeBits, llrpspec.FieldTypeBytesToEnd:
		b, ok := val.AsBytes()
		if !ok {
			return "", typeMismatch(path, fs.Name, "expected byte string")
		}
		return hex.EncodeToString(b), nil

	case llrpspec.FieldTypeUTF8:
		s, ok := val.AsString()
		if !ok {
			return "", typeMismatch(path, fs.Name, "expected utf8 string")
		}
		return s, nil
	}
	return "", typeMismatch(path, fs.Name, "unsupported field type")
}

// decodeAttr parses an XML attribute string back into a Value for the
// given field. Enumerated fields accept only a symbolic member name
// (never a bare integer), mirroring encodeAttr's output.
func decodeAttr(reg *llrpspec.Registry, fs *llrpspec.FieldSpec, s string, path []string) (llrptlv.Value, error) {
	if fs.Array != llrpspec.ArrayNone {
		if s == "" {
			return llrptlv.UintArray(nil), nil
		}
		fields := strings.Fields(s)
		arr := make([]uint64, 0, len(fields))
		for _, f := range fields {
			u, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return llrptlv.Value{}, typeMismatch(path, fs.Name, "malformed array element")
			}
			arr = append(arr, u)
		}
		return llrptlv.UintArray(arr), nil
	}

	switch fs.Type {
	case llrpspec.FieldTypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return llrptlv.Value{}, typeMismatch(path, fs.Name, "malformed bool")
		}
		return llrptlv.Bool(b), nil

	case llrpspec.FieldTypeU1, llrpspec.FieldTypeU2, llrpspec.FieldTypeU8, llrpspec.FieldTypeU16,
		llrpspec.FieldTypeU32, llrpspec.FieldTypeU64, llrpspec.FieldTypeUNV:
		if fs.EnumRef != "" {
			if enum, ok := reg.Enums[fs.EnumRef]; ok {
				if u, ok := enum.NameToValue[s]; ok {
					return llrptlv.Uint(u), nil
				}
				if u, err := strconv.ParseUint(s, 10, 64); err == nil && fs.OpenEnum {
					return llrptlv.Uint(u), nil
				}
				return llrptlv.Value{}, unknownEnumMember(path, fs.Name, "not a defined enum member: "+s)
			}
		}
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return llrptlv.Value{}, typeMismatch(path, fs.Name, "malformed unsigned integer")
		}
		return llrptlv.Uint(u), nil

	case llrpspec.FieldTypeS8, llrpspec.FieldTypeS16, llrpspec.FieldTypeS32, llrpspec.FieldTypeS64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return llrptlv.Value{}, typeMismatch(path, fs.Name, "malformed signed integer")
		}
		return llrptlv.Sint(v), nil

	case llrpspec.FieldTypeU96, llrpspec.FieldTypeBits, llrpspec.FieldTypeBytesToEnd:
		b, err := hex.DecodeString(s)
		if err != nil {
			return llrptlv.Value{}, typeMismatch(path, fs.Name, "malformed hex byte string")
		}
		return llrptlv.Bytes(b), nil

	case llrpspec.FieldTypeUTF8:
		return llrptlv.String(s), nil
	}
	return llrptlv.Value{}, typeMismatch(path, fs.Name, "unsupported field type")
}
