package llrpcodec

import (
	"github.com/openllrp/llrp/pkg/bitstream"
	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
)

// writeField packs one field value, in the order given by FieldSpec
// (Spec 4.2, 4.3). Reserved fields write zero bits and are never looked
// up in values. Byte-level types (bytes, utf8, u96, length-prefixed
// arrays) align the writer to the next octet boundary first; fixed
// arrays are written at the current bit position. Sub-byte fields only
// pack adjacent to each other within a run of scalar bit fields (Spec
// 4.2).
func writeField(w *bitstream.Writer, fs *llrpspec.FieldSpec, values map[string]llrptlv.Value, path []string) error {
	if fs.Type == llrpspec.FieldTypeReserved {
		return w.WriteUint(fs.BitWidth, 0)
	}

	val, ok := values[fs.Name]
	if !ok {
		if fs.HasDefault {
			val = llrptlv.Uint(fs.Default)
		} else {
			return validationErr(ValidationErrMissingField, path, fs.Name, "field missing at encode")
		}
	}

	switch fs.Array {
	case llrpspec.ArrayLengthPrefixedU16:
		arr, ok := val.AsUintArray()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected uint array")
		}
		w.AlignToOctet()
		if err := w.WriteUint(16, uint64(len(arr))); err != nil {
			return err
		}
		width := fs.Type.FixedBitWidth()
		for _, e := range arr {
			if err := w.WriteUint(width, e); err != nil {
				return err
			}
		}
		return nil
	case llrpspec.ArrayFixed:
		arr, ok := val.AsUintArray()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected uint array")
		}
		if len(arr) != fs.ArrayLen {
			return validationErr(ValidationErrOutOfRange, path, fs.Name, "wrong array length")
		}
		width := fs.Type.FixedBitWidth()
		for _, e := range arr {
			if err := w.WriteUint(width, e); err != nil {
				return err
			}
		}
		return nil
	}

	switch fs.Type {
	case llrpspec.FieldTypeBool:
		b, ok := val.AsBool()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected bool")
		}
		return w.WriteBool(b)

	case llrpspec.FieldTypeU1, llrpspec.FieldTypeU2, llrpspec.FieldTypeU8, llrpspec.FieldTypeU16,
		llrpspec.FieldTypeU32, llrpspec.FieldTypeU64:
		u, ok := val.AsUint()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected unsigned integer")
		}
		return w.WriteUint(fs.Type.FixedBitWidth(), u)

	case llrpspec.FieldTypeS8, llrpspec.FieldTypeS16, llrpspec.FieldTypeS32, llrpspec.FieldTypeS64:
		s, ok := val.AsSint()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected signed integer")
		}
		return w.WriteSint(fs.Type.FixedBitWidth(), s)

	case llrpspec.FieldTypeU96:
		b, ok := val.AsBytes()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected 12-byte EPC")
		}
		if len(b) != 12 {
			return validationErr(ValidationErrOutOfRange, path, fs.Name, "u96 requires exactly 12 bytes")
		}
		w.AlignToOctet()
		return w.WriteBytes(b)

	case llrpspec.FieldTypeUTF8:
		s, ok := val.AsString()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected utf8 string")
		}
		w.AlignToOctet()
		if err := w.WriteUint(16, uint64(len(s))); err != nil {
			return err
		}
		return w.WriteUTF8(s)

	case llrpspec.FieldTypeBits:
		b, ok := val.AsBytes()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected bit array bytes")
		}
		w.AlignToOctet()
		if err := w.WriteUint(16, uint64(len(b)*8)); err != nil {
			return err
		}
		return w.WriteBytes(b)

	case llrpspec.FieldTypeUNV:
		u, ok := val.AsUint()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected unsigned integer")
		}
		return w.WriteUint(fs.BitWidth, u)

	case llrpspec.FieldTypeBytesToEnd:
		b, ok := val.AsBytes()
		if !ok {
			return validationErr(ValidationErrTypeMismatch, path, fs.Name, "expected byte string")
		}
		w.AlignToOctet()
		return w.WriteBytes(b)
	}
	return validationErr(ValidationErrTypeMismatch, path, fs.Name, "unsupported field type")
}

// readField unpacks one field, in the same order encode used.
// regionEndBits is the absolute bit offset at which the enclosing TLV region ends;
// only FieldTypeBytesToEnd consults it.
func readField(r *bitstream.Reader, fs *llrpspec.FieldSpec, path []string, regionEndBits int) (llrptlv.Value, error) {
	if fs.Type == llrpspec.FieldTypeReserved {
		if _, err := r.ReadUint(fs.BitWidth); err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, "reserved field", err)
		}
		return llrptlv.Value{}, nil
	}

	switch fs.Array {
	case llrpspec.ArrayLengthPrefixedU16:
		r.AlignToOctet()
		n, err := r.ReadUint(16)
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name+" array length", err)
		}
		width := fs.Type.FixedBitWidth()
		arr := make([]uint64, 0, n)
		for i := uint64(0); i < n; i++ {
			e, err := r.ReadUint(width)
			if err != nil {
				return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name+" array element", err)
			}
			arr = append(arr, e)
		}
		return llrptlv.UintArray(arr), nil
	case llrpspec.ArrayFixed:
		width := fs.Type.FixedBitWidth()
		arr := make([]uint64, 0, fs.ArrayLen)
		for i := 0; i < fs.ArrayLen; i++ {
			e, err := r.ReadUint(width)
			if err != nil {
				return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name+" array element", err)
			}
			arr = append(arr, e)
		}
		return llrptlv.UintArray(arr), nil
	}

	switch fs.Type {
	case llrpspec.FieldTypeBool:
		b, err := r.ReadBool()
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name, err)
		}
		return llrptlv.Bool(b), nil

	case llrpspec.FieldTypeU1, llrpspec.FieldTypeU2, llrpspec.FieldTypeU8, llrpspec.FieldTypeU16,
		llrpspec.FieldTypeU32, llrpspec.FieldTypeU64:
		u, err := r.ReadUint(fs.Type.FixedBitWidth())
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name, err)
		}
		return llrptlv.Uint(u), nil

	case llrpspec.FieldTypeS8, llrpspec.FieldTypeS16, llrpspec.FieldTypeS32, llrpspec.FieldTypeS64:
		s, err := r.ReadSint(fs.Type.FixedBitWidth())
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name, err)
		}
		return llrptlv.Sint(s), nil

	case llrpspec.FieldTypeU96:
		r.AlignToOctet()
		b, err := r.ReadBytes(12)
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name, err)
		}
		return llrptlv.Bytes(b), nil

	case llrpspec.FieldTypeUTF8:
		r.AlignToOctet()
		n, err := r.ReadUint(16)
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name+" length", err)
		}
		s, err := r.ReadUTF8(int(n))
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name, err)
		}
		return llrptlv.String(s), nil

	case llrpspec.FieldTypeBits:
		r.AlignToOctet()
		bits, err := r.ReadUint(16)
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name+" length", err)
		}
		b, err := r.ReadBytes(int((bits + 7) / 8))
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name, err)
		}
		return llrptlv.Bytes(b), nil

	case llrpspec.FieldTypeUNV:
		u, err := r.ReadUint(fs.BitWidth)
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name, err)
		}
		return llrptlv.Uint(u), nil

	case llrpspec.FieldTypeBytesToEnd:
		r.AlignToOctet()
		remainingBytes := (regionEndBits - r.BitPos()) / 8
		if remainingBytes < 0 {
			remainingBytes = 0
		}
		b, err := r.ReadBytes(remainingBytes)
		if err != nil {
			return llrptlv.Value{}, codecErr(CodecErrTruncated, path, fs.Name, err)
		}
		return llrptlv.Bytes(b), nil
	}
	return llrptlv.Value{}, codecErr(CodecErrUnknownType, path, "unsupported field type", nil)
}
