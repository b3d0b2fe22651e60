// Package llrpspec holds the in-memory description of the LLRP 1.0.1
// wire protocol: message types, parameter types, field definitions,
// enumerations, and vendor custom extensions (Spec 3.1). It is loaded
// once from a pre-compiled artifact produced offline from the LLRP XML
// definition files; this package never parses XML itself.
package llrpspec

// FieldType enumerates the primitive wire types a FieldSpec can declare.
type FieldType int

const (
	FieldTypeBool FieldType = iota // distinct from u1: a true boolean flag, never an integer
	FieldTypeU1
	FieldTypeU2
	FieldTypeU8
	FieldTypeS8
	FieldTypeU16
	FieldTypeS16
	FieldTypeU32
	FieldTypeS32
	FieldTypeU64
	FieldTypeS64
	FieldTypeU96   // EPC, fixed 96 bits
	FieldTypeUTF8  // length-prefixed UTF-8 text
	FieldTypeBits  // explicit-length bit array
	FieldTypeUNV   // variable-bit-width unsigned integer (BitWidth gives the width)
	FieldTypeBytesToEnd
	FieldTypeReserved
)

func (t FieldType) String() string {
	switch t {
	case FieldTypeBool:
		return "bool"
	case FieldTypeU1:
		return "u1"
	case FieldTypeU2:
		return "u2"
	case FieldTypeU8:
		return "u8"
	case FieldTypeS8:
		return "s8"
	case FieldTypeU16:
		return "u16"
	case FieldTypeS16:
		return "s16"
	case FieldTypeU32:
		return "u32"
	case FieldTypeS32:
		return "s32"
	case FieldTypeU64:
		return "u64"
	case FieldTypeS64:
		return "s64"
	case FieldTypeU96:
		return "u96"
	case FieldTypeUTF8:
		return "utf8"
	case FieldTypeBits:
		return "bit_array"
	case FieldTypeUNV:
		return "uNv"
	case FieldTypeBytesToEnd:
		return "bytes_to_end"
	case FieldTypeReserved:
		return "reserved"
	default:
		return "unknown"
	}
}

// FixedBitWidth returns the fixed bit width for scalar field types, or 0 for
// variable-width types (utf8, bit_array, uNv, bytes_to_end) whose width
// is carried elsewhere (length prefix or FieldSpec.BitWidth).
func (t FieldType) FixedBitWidth() int {
	switch t {
	case FieldTypeBool, FieldTypeU1:
		return 1
	case FieldTypeU2:
		return 2
	case FieldTypeU8, FieldTypeS8:
		return 8
	case FieldTypeU16, FieldTypeS16:
		return 16
	case FieldTypeU32, FieldTypeS32:
		return 32
	case FieldTypeU64, FieldTypeS64:
		return 64
	case FieldTypeU96:
		return 96
	default:
		return 0
	}
}

// IsSigned reports whether the type is a signed integer.
func (t FieldType) IsSigned() bool {
	switch t {
	case FieldTypeS8, FieldTypeS16, FieldTypeS32, FieldTypeS64:
		return true
	default:
		return false
	}
}

// ArrayKind describes how a field's value is repeated.
type ArrayKind int

const (
	ArrayNone ArrayKind = iota
	ArrayFixed
	ArrayLengthPrefixedU16
)

// FieldSpec describes one field within a ParameterSpec or MessageSpec
// (Spec 3.1).
type FieldSpec struct {
	Name       string
	Type       FieldType
	BitWidth   int    // sub-byte fields and reserved padding; also uNv width
	Array      ArrayKind
	ArrayLen   int    // valid when Array == ArrayFixed
	EnumRef    string // name of an EnumSpec, "" if not enumerated
	OpenEnum   bool   // enum accepts values outside its defined members
	HasDefault bool
	Default    uint64
}

// EnumSpec is a bijective mapping between symbolic member names and
// integer values, plus the underlying wire type.
type EnumSpec struct {
	Name          string
	UnderlyingType FieldType
	NameToValue   map[string]uint64
	ValueToName   map[uint64]string
}

// NewEnumSpec builds an EnumSpec from an ordered list of (name, value)
// pairs, populating both lookup directions.
func NewEnumSpec(name string, underlying FieldType, members [][2]any) *EnumSpec {
	e := &EnumSpec{
		Name:           name,
		UnderlyingType: underlying,
		NameToValue:    make(map[string]uint64, len(members)),
		ValueToName:    make(map[uint64]string, len(members)),
	}
	for _, m := range members {
		n := m[0].(string)
		v := toUint64(m[1])
		e.NameToValue[n] = v
		e.ValueToName[v] = n
	}
	return e
}

func toUint64(v any) uint64 {
	switch x := v.(type) {
	case int:
		return uint64(x)
	case uint64:
		return x
	case uint32:
		return uint64(x)
	default:
		return 0
	}
}

// Encoding selects TV vs TLV parameter wire form (Spec 4.3).
type Encoding int

const (
	EncodingTV Encoding = iota
	EncodingTLV
)

// Cardinality constrains how many times a sub-parameter may appear
// under its parent (Spec 3.1 SubParamRule).
type Cardinality int

const (
	CardinalityOne Cardinality = iota
	CardinalityZeroOrOne
	CardinalityOneOrMore
	CardinalityZeroOrMore
)

// CustomSlotName is the reserved SubParamRule.ParameterName that
// permits any registered CustomExtension parameter to appear, rather
// than one specific ParameterSpec (Spec 3.1, 4.3).
const CustomSlotName = "Custom"

// SubParamRule names a permitted child parameter and how many may
// appear. ChoiceGroup, when non-empty, groups mutually exclusive
// alternatives: exactly one member across the whole group must be
// present.
type SubParamRule struct {
	ParameterName string
	Cardinality   Cardinality
	ChoiceGroup   string
}

// ParameterSpec describes one LLRP parameter type (Spec 3.1).
type ParameterSpec struct {
	Name         string
	TypeNumber   int // 1..127 for TV, >=128 for TLV
	Encoding     Encoding
	Fields       []FieldSpec
	SubParams    []SubParamRule
	IsCustom     bool // true for the synthetic CUSTOM(1023) wrapper
}

// MessageSpec describes one LLRP message type (Spec 3.1).
type MessageSpec struct {
	Name         string
	TypeNumber   int // 0..1023
	Fields       []FieldSpec
	SubParams    []SubParamRule
	ResponseFor  string // name of the request MessageSpec this replies to, "" if none
}

// CustomExtension is a ParameterSpec or MessageSpec registered under
// CUSTOM, discriminated by (VendorID, Subtype) rather than a type
// number (Spec 3.1, 4.3).
type CustomExtension struct {
	VendorID  uint32
	Subtype   uint32
	Parameter *ParameterSpec // nil if this extension is a custom message
	Message   *MessageSpec   // nil if this extension is a custom parameter
}
