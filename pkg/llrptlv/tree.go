package llrptlv

import "github.com/openllrp/llrp/pkg/llrpspec"

// Opaque preserves an unrecognized TLV parameter found inside a
// permitted Custom slot, so the enclosing message round-trips
// byte-identically even though this module has no CustomExtension
// registered for its (vendor, subtype) (Spec 4.3, 8).
type Opaque struct {
	VendorID uint32
	Subtype  uint32
	RawBytes []byte
}

// Parameter is one node of the runtime message tree (Spec 3.2): a
// reference to its ParameterSpec (or, for an unrecognized Custom
// payload, nil plus an Opaque), its field values keyed by field name,
// and its ordered sub-items.
type Parameter struct {
	Spec   *llrpspec.ParameterSpec
	Values map[string]Value
	Items  []*Parameter

	// Custom carries the (vendor, subtype) discriminant when Spec refers
	// to a registered CustomExtension parameter.
	Custom *CustomRef

	// Opaque is set instead of Spec/Values when this node is an
	// unrecognized Custom payload preserved verbatim (Spec 4.3).
	Opaque *Opaque
}

// CustomRef names the vendor/subtype discriminant of a custom parameter
// or message instance (Spec 3.1 CustomExtension).
type CustomRef struct {
	VendorID uint32
	Subtype  uint32
}

// NewParameter constructs a Parameter for a registered ParameterSpec.
// It does not validate: validation happens separately in
// pkg/llrpcodec; this constructor only shapes the tree node.
func NewParameter(spec *llrpspec.ParameterSpec, values map[string]Value, items ...*Parameter) *Parameter {
	if values == nil {
		values = map[string]Value{}
	}
	return &Parameter{Spec: spec, Values: values, Items: items}
}

// Name returns the parameter's spec name, or "Custom" for an opaque
// preserved payload.
func (p *Parameter) Name() string {
	if p.Spec != nil {
		return p.Spec.Name
	}
	return "Custom"
}

// Message is the top-level runtime tree node (Spec 3.2): like
// Parameter, but additionally carries the 32-bit message ID from the
// LLRP frame header.
type Message struct {
	Spec      *llrpspec.MessageSpec
	MessageID uint32
	Values    map[string]Value
	Items     []*Parameter

	// Custom carries the (vendor, subtype) discriminant for a custom
	// message (CUSTOM_MESSAGE type).
	Custom *CustomRef
}

// NewMessage constructs a Message node for a registered MessageSpec.
func NewMessage(spec *llrpspec.MessageSpec, messageID uint32, values map[string]Value, items ...*Parameter) *Message {
	if values == nil {
		values = map[string]Value{}
	}
	return &Message{Spec: spec, MessageID: messageID, Values: values, Items: items}
}

// Name returns the message's spec name.
func (m *Message) Name() string {
	if m.Spec != nil {
		return m.Spec.Name
	}
	return "Custom"
}

// Find returns the first sub-item whose spec name matches, or nil.
func (p *Parameter) Find(name string) *Parameter {
	for _, item := range p.Items {
		if item.Name() == name {
			return item
		}
	}
	return nil
}

// FindAll returns every sub-item whose spec name matches.
func (p *Parameter) FindAll(name string) []*Parameter {
	var out []*Parameter
	for _, item := range p.Items {
		if item.Name() == name {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the first top-level sub-parameter whose spec name
// matches, or nil.
func (m *Message) Find(name string) *Parameter {
	for _, item := range m.Items {
		if item.Name() == name {
			return item
		}
	}
	return nil
}

// FindAll returns every top-level sub-parameter whose spec name matches.
func (m *Message) FindAll(name string) []*Parameter {
	var out []*Parameter
	for _, item := range m.Items {
		if item.Name() == name {
			out = append(out, item)
		}
	}
	return out
}
