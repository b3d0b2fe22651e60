package llrpcodec

import (
	"github.com/openllrp/llrp/pkg/bitstream"
	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
	"github.com/openllrp/llrp/internal/llrpwire"
)

// customTypeNumber is the reserved TLV type number (1023) that
// discriminates every custom parameter and message by (vendor, subtype)
// instead of by type number (Spec 3.1, 4.3, 6).
const customTypeNumber = 1023

// EncodeMessage packs msg into a complete LLRP frame: 10-byte header
// followed by fields in spec order followed by sub-parameters in spec
// order (Spec 4.3). It validates msg first (Spec 4.4 runs "after decode
// and before encode").
func EncodeMessage(reg *llrpspec.Registry, msg *llrptlv.Message) ([]byte, error) {
	if msg.Spec == nil {
		return nil, ErrSpecNotFound
	}
	path := []string{msg.Spec.Name}
	if err := ValidateMessage(reg, msg); err != nil {
		return nil, err
	}

	w := bitstream.NewWriter()
	for i := range msg.Spec.Fields {
		if err := writeField(w, &msg.Spec.Fields[i], msg.Values, path); err != nil {
			return nil, err
		}
	}
	w.AlignToOctet()

	ordered := orderSubParams(reg, msg.Spec.SubParams, msg.Items)
	for _, p := range ordered {
		pb, err := EncodeParameter(reg, p, path)
		if err != nil {
			return nil, err
		}
		if err := w.WriteBytes(pb); err != nil {
			return nil, err
		}
	}

	body := w.Bytes()
	h := llrpwire.Header{
		Version:   llrpwire.Version,
		Type:      uint16(msg.Spec.TypeNumber),
		MessageID: msg.MessageID,
	}
	frame := h.Encode()
	frame = append(frame, body...)
	llrpwire.PatchLength(frame)
	return frame, nil
}

// DecodeMessage unframes and decodes a single LLRP message (Spec 4.3).
// data must contain exactly one complete frame (header.Length octets);
// callers reading off a stream should use internal/llrpwire.StreamReader
// first.
func DecodeMessage(reg *llrpspec.Registry, data []byte) (*llrptlv.Message, error) {
	h, err := llrpwire.DecodeHeader(data)
	if err != nil {
		return nil, codecErr(CodecErrTruncated, nil, "header", err)
	}
	if h.Version != llrpwire.Version {
		return nil, codecErr(CodecErrUnsupportedVersion, nil, "", llrpwire.ErrUnsupportedVersion)
	}
	if int(h.Length) != len(data) {
		return nil, codecErr(CodecErrFramingError, nil, "declared length does not match buffer", nil)
	}

	spec, ok := reg.MessageByType(int(h.Type))
	if !ok {
		return nil, codecErr(CodecErrUnknownType, nil, "message type "+typeStr(int(h.Type)), nil)
	}
	path := []string{spec.Name}

	r := bitstream.NewReader(data[llrpwire.HeaderSize:])
	values := map[string]llrptlv.Value{}
	for i := range spec.Fields {
		v, err := readField(r, &spec.Fields[i], path, r.TotalBits())
		if err != nil {
			return nil, err
		}
		if spec.Fields[i].Type != llrpspec.FieldTypeReserved {
			values[spec.Fields[i].Name] = v
		}
	}
	r.AlignToOctet()

	items, err := decodeSubParams(reg, r, spec.SubParams, path, r.TotalBits())
	if err != nil {
		return nil, err
	}

	msg := llrptlv.NewMessage(spec, h.MessageID, values, items...)
	return msg, nil
}

// EncodeParameter packs a single parameter node: the TV or TLV header
// (Spec 4.3) followed by its fields and sub-parameters. An Opaque node
// is re-emitted verbatim (Spec 4.3, 8).
func EncodeParameter(reg *llrpspec.Registry, p *llrptlv.Parameter, parentPath []string) ([]byte, error) {
	if p.Opaque != nil {
		return append([]byte(nil), p.Opaque.RawBytes...), nil
	}
	if p.Spec == nil {
		return nil, ErrSpecNotFound
	}
	path := append(append([]string(nil), parentPath...), p.Spec.Name)

	if err := validateParameter(reg, p, path); err != nil {
		return nil, err
	}

	bodyW := bitstream.NewWriter()
	if p.Custom != nil {
		bodyW.WriteUint(32, uint64(p.Custom.VendorID)) //nolint:errcheck
		bodyW.WriteUint(32, uint64(p.Custom.Subtype))  //nolint:errcheck
	}
	for i := range p.Spec.Fields {
		if err := writeField(bodyW, &p.Spec.Fields[i], p.Values, path); err != nil {
			return nil, err
		}
	}
	bodyW.AlignToOctet()

	ordered := orderSubParams(reg, p.Spec.SubParams, p.Items)
	for _, child := range ordered {
		cb, err := EncodeParameter(reg, child, path)
		if err != nil {
			return nil, err
		}
		if err := bodyW.WriteBytes(cb); err != nil {
			return nil, err
		}
	}
	body := bodyW.Bytes()

	if p.Spec.Encoding == llrpspec.EncodingTV {
		out := make([]byte, 0, 1+len(body))
		out = append(out, byte(0x80|p.Spec.TypeNumber))
		out = append(out, body...)
		return out, nil
	}

	typeNum := p.Spec.TypeNumber
	if p.Custom != nil {
		typeNum = customTypeNumber
	}
	hw := bitstream.NewWriter()
	hw.WriteUint(6, 0)                   //nolint:errcheck // reserved
	hw.WriteUint(10, uint64(typeNum))    //nolint:errcheck
	hw.WriteUint(16, uint64(4+len(body))) //nolint:errcheck
	out := append(hw.Bytes(), body...)
	return out, nil
}

// decodeOneParameter reads one TV or TLV parameter starting at the
// reader's current (octet-aligned) position (Spec 4.3).
func decodeOneParameter(reg *llrpspec.Registry, r *bitstream.Reader, path []string) (*llrptlv.Parameter, error) {
	startBit := r.BitPos()
	first, err := r.ReadUint(1)
	if err != nil {
		return nil, codecErr(CodecErrTruncated, path, "parameter tag", err)
	}

	if first == 1 {
		typ, err := r.ReadUint(7)
		if err != nil {
			return nil, codecErr(CodecErrTruncated, path, "TV type", err)
		}
		spec, ok := reg.ParameterByType(int(typ))
		if !ok {
			return nil, codecErr(CodecErrUnknownType, path, "TV type "+typeStr(int(typ)), nil)
		}
		childPath := append(append([]string(nil), path...), spec.Name)
		values := map[string]llrptlv.Value{}
		for i := range spec.Fields {
			v, err := readField(r, &spec.Fields[i], childPath, r.TotalBits())
			if err != nil {
				return nil, err
			}
			if spec.Fields[i].Type != llrpspec.FieldTypeReserved {
				values[spec.Fields[i].Name] = v
			}
		}
		return llrptlv.NewParameter(spec, values), nil
	}

	// TLV: 5 more reserved bits, then Type(10), then Length(16).
	if _, err := r.ReadUint(5); err != nil {
		return nil, codecErr(CodecErrTruncated, path, "TLV reserved bits", err)
	}
	typ, err := r.ReadUint(10)
	if err != nil {
		return nil, codecErr(CodecErrTruncated, path, "TLV type", err)
	}
	length, err := r.ReadUint(16)
	if err != nil {
		return nil, codecErr(CodecErrTruncated, path, "TLV length", err)
	}
	if length < 4 {
		return nil, codecErr(CodecErrFramingError, path, "TLV length shorter than its own header", nil)
	}
	endBit := startBit + int(length)*8
	if endBit > r.TotalBits() {
		return nil, codecErr(CodecErrTruncated, path, "TLV length overruns enclosing message", nil)
	}

	if int(typ) == customTypeNumber {
		vendorID, err := r.ReadUint(32)
		if err != nil {
			return nil, codecErr(CodecErrTruncated, path, "custom vendor_id", err)
		}
		subtype, err := r.ReadUint(32)
		if err != nil {
			return nil, codecErr(CodecErrTruncated, path, "custom subtype", err)
		}
		ext, ok := reg.CustomExtensionFor(uint32(vendorID), uint32(subtype))
		if !ok || ext.Parameter == nil {
			// Preserve verbatim so the enclosing message round-trips
			// (Spec 4.3, 8).
			r.Seek(endBit)
			raw := r.BytesAt(startBit, endBit)
			return &llrptlv.Parameter{Opaque: &llrptlv.Opaque{
				VendorID: uint32(vendorID), Subtype: uint32(subtype), RawBytes: raw,
			}}, nil
		}
		childPath := append(append([]string(nil), path...), ext.Parameter.Name)
		values := map[string]llrptlv.Value{}
		for i := range ext.Parameter.Fields {
			v, err := readField(r, &ext.Parameter.Fields[i], childPath, endBit)
			if err != nil {
				return nil, err
			}
			if ext.Parameter.Fields[i].Type != llrpspec.FieldTypeReserved {
				values[ext.Parameter.Fields[i].Name] = v
			}
		}
		r.AlignToOctet()
		items, err := decodeSubParams(reg, r, ext.Parameter.SubParams, childPath, endBit)
		if err != nil {
			return nil, err
		}
		p := llrptlv.NewParameter(ext.Parameter, values, items...)
		p.Custom = &llrptlv.CustomRef{VendorID: uint32(vendorID), Subtype: uint32(subtype)}
		return p, nil
	}

	spec, ok := reg.ParameterByType(int(typ))
	if !ok {
		// Ambiguous per Spec 4.3/9: strict rejection outside Custom
		// slots upholds "impossible to pass malformed messages".
		return nil, codecErr(CodecErrUnknownType, path, "TLV type "+typeStr(int(typ)), nil)
	}
	childPath := append(append([]string(nil), path...), spec.Name)
	values := map[string]llrptlv.Value{}
	for i := range spec.Fields {
		v, err := readField(r, &spec.Fields[i], childPath, endBit)
		if err != nil {
			return nil, err
		}
		if spec.Fields[i].Type != llrpspec.FieldTypeReserved {
			values[spec.Fields[i].Name] = v
		}
	}
	r.AlignToOctet()
	items, err := decodeSubParams(reg, r, spec.SubParams, childPath, endBit)
	if err != nil {
		return nil, err
	}
	return llrptlv.NewParameter(spec, values, items...), nil
}

// decodeSubParams decodes sub-parameters until fewer than 8 bits remain
// in [r.BitPos(), endBit) (Spec 4.3: "trailing bits ... fewer than one
// octet are treated as padding"), checking each against rules (Spec
// 4.3: "if the parameter is not permitted here the decoder fails
// UNEXPECTED_PARAMETER").
func decodeSubParams(reg *llrpspec.Registry, r *bitstream.Reader, rules []llrpspec.SubParamRule, path []string, endBit int) ([]*llrptlv.Parameter, error) {
	allowed := make(map[string]bool, len(rules))
	for _, rule := range rules {
		allowed[rule.ParameterName] = true
	}

	var items []*llrptlv.Parameter
	for endBit-r.BitPos() >= 8 {
		p, err := decodeOneParameter(reg, r, path)
		if err != nil {
			return nil, err
		}
		name := p.Name()
		if !allowed[name] && !(p.Custom != nil && allowed[llrpspec.CustomSlotName]) {
			return nil, codecErr(CodecErrUnexpectedParameter, path, name, nil)
		}
		items = append(items, p)
	}
	return items, nil
}

// OrderSubParameters reorders items into spec order before emission,
// the same policy EncodeMessage/EncodeParameter apply to binary output
// (Spec 4.4 "Order"). XmlCodec reuses it so XML sub-parameter elements
// are emitted in the same order as the binary form (Spec 4.5).
func OrderSubParameters(reg *llrpspec.Registry, rules []llrpspec.SubParamRule, items []*llrptlv.Parameter) []*llrptlv.Parameter {
	return orderSubParams(reg, rules, items)
}

// orderSubParams reorders items into spec order before emission (Spec
// 4.4: "sub-parameters are re-ordered to spec order before emission").
// Items whose name matches no rule (should not happen post-validation)
// are appended at the end, preserving their relative order.
func orderSubParams(reg *llrpspec.Registry, rules []llrpspec.SubParamRule, items []*llrptlv.Parameter) []*llrptlv.Parameter {
	order := make(map[string]int, len(rules))
	for i, rule := range rules {
		if _, exists := order[rule.ParameterName]; !exists {
			order[rule.ParameterName] = i
		}
	}
	rank := func(p *llrptlv.Parameter) int {
		if r, ok := order[p.Name()]; ok {
			return r
		}
		if p.Custom != nil {
			if r, ok := order[llrpspec.CustomSlotName]; ok {
				return r
			}
		}
		return len(rules)
	}

	out := append([]*llrptlv.Parameter(nil), items...)
	// Stable sort by rank, preserving relative order within a rank
	// (needed for repeated sub-parameters and same-choice-group
	// siblings, and because decode may see input out of spec order).
	stableSortParams(out, rank)
	return out
}

func stableSortParams(items []*llrptlv.Parameter, rank func(*llrptlv.Parameter) int) {
	// Simple stable insertion sort: the lists involved are short
	// (a handful of sub-parameters per message/parameter).
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && rank(items[j-1]) > rank(items[j]) {
			items[j-1], items[j] = items[j], items[j-1]
			j--
		}
	}
}

func typeStr(n int) string {
	const digits = "0123456789"
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = digits[n%10]
		n /= 10
	}
	return string(buf[i:])
}
