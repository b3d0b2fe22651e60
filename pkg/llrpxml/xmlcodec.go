package llrpxml

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"strconv"

	"github.com/openllrp/llrp/pkg/llrpcodec"
	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
)

// customElementName is the element used for an unrecognized Custom
// payload preserved opaquely (mirrors llrptlv.Opaque, Spec 4.3, 4.5).
const customElementName = "Custom"

// Encode renders msg as an XML document whose root element name is the
// message's spec name and whose attributes are its field values (Spec
// 4.5). It validates msg first, the same precondition EncodeMessage
// applies to the binary form (Spec 4.4 "runs after decode and before
// encode").
func Encode(reg *llrpspec.Registry, msg *llrptlv.Message) ([]byte, error) {
	if msg.Spec == nil {
		return nil, llrpcodec.ErrSpecNotFound
	}
	if err := llrpcodec.ValidateMessage(reg, msg); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	path := []string{msg.Spec.Name}
	start := xml.StartElement{Name: xml.Name{Local: msg.Spec.Name}}
	start.Attr = append(start.Attr, xml.Attr{
		Name: xml.Name{Local: "MessageID"}, Value: strconv.FormatUint(uint64(msg.MessageID), 10),
	})
	attrs, err := fieldAttrs(reg, msg.Spec.Fields, msg.Values, path)
	if err != nil {
		return nil, err
	}
	start.Attr = append(start.Attr, attrs...)

	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	ordered := llrpcodec.OrderSubParameters(reg, msg.Spec.SubParams, msg.Items)
	for _, p := range ordered {
		if err := encodeParameter(enc, reg, p, path); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(xml.EndElement{Name: start.Name}); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fieldAttrs(reg *llrpspec.Registry, fields []llrpspec.FieldSpec, values map[string]llrptlv.Value, path []string) ([]xml.Attr, error) {
	var attrs []xml.Attr
	for i := range fields {
		fs := &fields[i]
		if fs.Type == llrpspec.FieldTypeReserved {
			continue
		}
		v, ok := values[fs.Name]
		if !ok {
			continue // defaulted field, omitted on emit (Spec 4.4)
		}
		s, err := encodeAttr(reg, fs, v, path)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: fs.Name}, Value: s})
	}
	return attrs, nil
}

func encodeParameter(enc *xml.Encoder, reg *llrpspec.Registry, p *llrptlv.Parameter, parentPath []string) error {
	if p.Opaque != nil {
		start := xml.StartElement{Name: xml.Name{Local: customElementName}, Attr: []xml.Attr{
			{Name: xml.Name{Local: "VendorID"}, Value: strconv.FormatUint(uint64(p.Opaque.VendorID), 10)},
			{Name: xml.Name{Local: "Subtype"}, Value: strconv.FormatUint(uint64(p.Opaque.Subtype), 10)},
			{Name: xml.Name{Local: "Data"}, Value: hex.EncodeToString(p.Opaque.RawBytes)},
		}}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		return enc.EncodeToken(xml.EndElement{Name: start.Name})
	}
	if p.Spec == nil {
		return llrpcodec.ErrSpecNotFound
	}
	path := append(append([]string(nil), parentPath...), p.Spec.Name)

	start := xml.StartElement{Name: xml.Name{Local: p.Spec.Name}}
	if p.Custom != nil {
		start.Attr = append(start.Attr,
			xml.Attr{Name: xml.Name{Local: "VendorID"}, Value: strconv.FormatUint(uint64(p.Custom.VendorID), 10)},
			xml.Attr{Name: xml.Name{Local: "Subtype"}, Value: strconv.FormatUint(uint64(p.Custom.Subtype), 10)},
		)
	}
	attrs, err := fieldAttrs(reg, p.Spec.Fields, p.Values, path)
	if err != nil {
		return err
	}
	start.Attr = append(start.Attr, attrs...)

	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	ordered := llrpcodec.OrderSubParameters(reg, p.Spec.SubParams, p.Items)
	for _, child := range ordered {
		if err := encodeParameter(enc, reg, child, path); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

// Decode parses an XML document produced by Encode (or a conformant
// peer) back into a Message (Spec 4.5).
func Decode(reg *llrpspec.Registry, data []byte) (*llrptlv.Message, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root, err := nextStart(dec)
	if err != nil {
		return nil, err
	}
	spec, ok := reg.Messages[root.Name.Local]
	if !ok {
		return nil, unknownType(nil, "message "+root.Name.Local)
	}
	path := []string{spec.Name}

	var messageID uint64
	fieldByName := fieldMap(spec.Fields)
	values := map[string]llrptlv.Value{}
	for _, a := range root.Attr {
		if a.Name.Local == "MessageID" {
			messageID, _ = strconv.ParseUint(a.Value, 10, 32)
			continue
		}
		fs, ok := fieldByName[a.Name.Local]
		if !ok {
			return nil, typeMismatch(path, a.Name.Local, "unknown attribute")
		}
		v, err := decodeAttr(reg, fs, a.Value, path)
		if err != nil {
			return nil, err
		}
		values[a.Name.Local] = v
	}

	items, err := decodeChildren(dec, reg, spec.SubParams, path, root.Name)
	if err != nil {
		return nil, err
	}
	return llrptlv.NewMessage(spec, uint32(messageID), values, items...), nil
}

func decodeChildren(dec *xml.Decoder, reg *llrpspec.Registry, rules []llrpspec.SubParamRule, path []string, selfName xml.Name) ([]*llrptlv.Parameter, error) {
	allowed := make(map[string]bool, len(rules))
	for _, r := range rules {
		allowed[r.ParameterName] = true
	}

	var items []*llrptlv.Parameter
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, framingError(path, "xml: "+err.Error())
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p, err := decodeParameterElement(dec, reg, t, path)
			if err != nil {
				return nil, err
			}
			bucket := p.Name()
			if p.Custom != nil || p.Opaque != nil {
				bucket = llrpspec.CustomSlotName
			}
			if !allowed[bucket] {
				return nil, unexpectedParameter(path, bucket)
			}
			items = append(items, p)
		case xml.EndElement:
			if t.Name == selfName {
				return items, nil
			}
		}
	}
}

func decodeParameterElement(dec *xml.Decoder, reg *llrpspec.Registry, start xml.StartElement, parentPath []string) (*llrptlv.Parameter, error) {
	name := start.Name.Local

	if name == customElementName {
		var vendorID, subtype uint64
		var dataHex string
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "VendorID":
				vendorID, _ = strconv.ParseUint(a.Value, 10, 32)
			case "Subtype":
				subtype, _ = strconv.ParseUint(a.Value, 10, 32)
			case "Data":
				dataHex = a.Value
			}
		}
		raw, err := hex.DecodeString(dataHex)
		if err != nil {
			return nil, typeMismatch(parentPath, "Data", "malformed hex")
		}
		if err := skipToEnd(dec, start.Name); err != nil {
			return nil, err
		}
		return &llrptlv.Parameter{Opaque: &llrptlv.Opaque{
			VendorID: uint32(vendorID), Subtype: uint32(subtype), RawBytes: raw,
		}}, nil
	}

	spec, ok := reg.Parameters[name]
	var customRef *llrptlv.CustomRef
	if !ok {
		ext, ok2 := reg.CustomExtensionByName(name)
		if !ok2 || ext.Parameter == nil {
			return nil, unknownType(parentPath, "parameter "+name)
		}
		spec = ext.Parameter
		customRef = &llrptlv.CustomRef{VendorID: ext.VendorID, Subtype: ext.Subtype}
	}
	path := append(append([]string(nil), parentPath...), spec.Name)

	fieldByName := fieldMap(spec.Fields)
	values := map[string]llrptlv.Value{}
	for _, a := range start.Attr {
		if a.Name.Local == "VendorID" || a.Name.Local == "Subtype" {
			continue
		}
		fs, ok := fieldByName[a.Name.Local]
		if !ok {
			return nil, typeMismatch(path, a.Name.Local, "unknown attribute")
		}
		v, err := decodeAttr(reg, fs, a.Value, path)
		if err != nil {
			return nil, err
		}
		values[a.Name.Local] = v
	}

	items, err := decodeChildren(dec, reg, spec.SubParams, path, start.Name)
	if err != nil {
		return nil, err
	}
	p := llrptlv.NewParameter(spec, values, items...)
	p.Custom = customRef
	return p, nil
}

func skipToEnd(dec *xml.Decoder, name xml.Name) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return framingError(nil, "xml: "+err.Error())
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name == name {
				depth++
			}
		case xml.EndElement:
			if t.Name == name {
				if depth == 0 {
					return nil
				}
				depth--
			}
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, framingError(nil, "xml: "+err.Error())
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func fieldMap(fields []llrpspec.FieldSpec) map[string]*llrpspec.FieldSpec {
	m := make(map[string]*llrpspec.FieldSpec, len(fields))
	for i := range fields {
		if fields[i].Type == llrpspec.FieldTypeReserved {
			continue
		}
		m[fields[i].Name] = &fields[i]
	}
	return m
}
