package llrpspec

import (
	"sort"
	"strconv"
)

// Registry is the process-wide, read-only description of the LLRP
// protocol: every message, parameter, enum, and custom extension, with
// all cross-references resolved (Spec 4.1, 9 "Global spec state").
//
// A Registry is built once by Load or Build and never mutated
// afterward; callers pass it explicitly rather than relying on a hidden
// singleton (Spec 9).
type Registry struct {
	Messages   map[string]*MessageSpec
	Parameters map[string]*ParameterSpec
	Enums      map[string]*EnumSpec

	messageByType   map[int]*MessageSpec
	parameterByType map[int]*ParameterSpec

	customByDiscriminant map[customKey]*CustomExtension
	customExtensions     []*CustomExtension
}

type customKey struct {
	vendorID uint32
	subtype  uint32
}

// RawRegistry is the artifact schema: the flat lists that Build resolves
// into a Registry's cross-reference maps. This is the shape the offline
// XML compiler (out of scope per Spec 1) is expected to emit.
type RawRegistry struct {
	Messages   []MessageSpec
	Parameters []ParameterSpec
	Enums      []EnumSpec
	Customs    []CustomExtension
}

// Build resolves a RawRegistry into a Registry, validating the
// invariants of Spec 3.1: unique type numbers per namespace, every
// enum_ref resolves, every sub_parameter name resolves, and choice
// groups are disjoint. Returns *SpecError on any violation.
func Build(raw *RawRegistry) (*Registry, error) {
	reg := &Registry{
		Messages:             make(map[string]*MessageSpec, len(raw.Messages)),
		Parameters:           make(map[string]*ParameterSpec, len(raw.Parameters)),
		Enums:                make(map[string]*EnumSpec, len(raw.Enums)),
		messageByType:        make(map[int]*MessageSpec, len(raw.Messages)),
		parameterByType:      make(map[int]*ParameterSpec, len(raw.Parameters)),
		customByDiscriminant: make(map[customKey]*CustomExtension, len(raw.Customs)),
	}

	for i := range raw.Enums {
		e := raw.Enums[i]
		reg.Enums[e.Name] = &e
	}

	for i := range raw.Parameters {
		p := raw.Parameters[i]
		if existing, ok := reg.parameterByType[p.TypeNumber]; ok {
			return nil, &SpecError{SpecErrDuplicateParameterType,
				p.Name + " and " + existing.Name + " both claim type " + strconv.Itoa(p.TypeNumber)}
		}
		reg.Parameters[p.Name] = &p
		reg.parameterByType[p.TypeNumber] = &p
	}

	for i := range raw.Messages {
		m := raw.Messages[i]
		if existing, ok := reg.messageByType[m.TypeNumber]; ok {
			return nil, &SpecError{SpecErrDuplicateMessageType,
				m.Name + " and " + existing.Name + " both claim type " + strconv.Itoa(m.TypeNumber)}
		}
		reg.Messages[m.Name] = &m
		reg.messageByType[m.TypeNumber] = &m
	}

	for i := range raw.Customs {
		c := raw.Customs[i]
		reg.customExtensions = append(reg.customExtensions, &c)
		reg.customByDiscriminant[customKey{c.VendorID, c.Subtype}] = &c
	}

	if err := reg.resolveAndValidate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) resolveAndValidate() error {
	checkFields := func(owner string, fields []FieldSpec) error {
		for _, f := range fields {
			if f.EnumRef == "" {
				continue
			}
			if _, ok := r.Enums[f.EnumRef]; !ok {
				return &SpecError{SpecErrUnresolvedEnumRef, owner + "." + f.Name + " -> " + f.EnumRef}
			}
		}
		return nil
	}

	checkSubParams := func(owner string, rules []SubParamRule) error {
		groups := make(map[string]bool)
		for _, rule := range rules {
			// "Custom" is the wildcard slot for any registered
			// CustomExtension (Spec 3.1, 4.3); it is not itself a
			// ParameterSpec, so it has no cross-reference to resolve.
			if rule.ParameterName == CustomSlotName {
				continue
			}
			if _, ok := r.Parameters[rule.ParameterName]; !ok {
				return &SpecError{SpecErrUnresolvedSubParam, owner + " -> " + rule.ParameterName}
			}
			if rule.ChoiceGroup != "" {
				groups[rule.ChoiceGroup] = true
			}
		}
		// Disjointness: within a given owner, a parameter name must not
		// appear in more than one choice group, and must not appear both
		// inside and outside a choice group.
		seen := make(map[string]string) // parameter name -> group (or "" for ungrouped)
		for _, rule := range rules {
			if prior, ok := seen[rule.ParameterName]; ok && prior != rule.ChoiceGroup {
				return &SpecError{SpecErrNonDisjointChoiceGroup,
					owner + ": " + rule.ParameterName + " appears in multiple choice contexts"}
			}
			seen[rule.ParameterName] = rule.ChoiceGroup
		}
		return nil
	}

	for name, p := range r.Parameters {
		if err := checkFields(name, p.Fields); err != nil {
			return err
		}
		if err := checkSubParams(name, p.SubParams); err != nil {
			return err
		}
	}
	for name, m := range r.Messages {
		if err := checkFields(name, m.Fields); err != nil {
			return err
		}
		if err := checkSubParams(name, m.SubParams); err != nil {
			return err
		}
	}
	return nil
}

// MessageByType looks up a MessageSpec by its wire type number.
func (r *Registry) MessageByType(typeNumber int) (*MessageSpec, bool) {
	m, ok := r.messageByType[typeNumber]
	return m, ok
}

// ParameterByType looks up a ParameterSpec by its wire type number
// (TV 1..127 or TLV >=128).
func (r *Registry) ParameterByType(typeNumber int) (*ParameterSpec, bool) {
	p, ok := r.parameterByType[typeNumber]
	return p, ok
}

// ResponseSpec returns the MessageSpec that answers request, following
// response_for links (Spec 3.1).
func (r *Registry) ResponseSpec(requestName string) (*MessageSpec, bool) {
	for _, m := range r.Messages {
		if m.ResponseFor == requestName {
			return m, true
		}
	}
	return nil, false
}

// CustomExtensionFor looks up a registered custom parameter or message
// by its (vendor, subtype) discriminant (Spec 4.3).
func (r *Registry) CustomExtensionFor(vendorID, subtype uint32) (*CustomExtension, bool) {
	c, ok := r.customByDiscriminant[customKey{vendorID, subtype}]
	return c, ok
}

// CustomExtensionByName looks up a registered custom parameter or
// message by its spec name, for formats (XmlCodec) that address
// extensions by name rather than by wire discriminant.
func (r *Registry) CustomExtensionByName(name string) (*CustomExtension, bool) {
	for _, c := range r.customExtensions {
		if c.Parameter != nil && c.Parameter.Name == name {
			return c, true
		}
		if c.Message != nil && c.Message.Name == name {
			return c, true
		}
	}
	return nil, false
}

// CustomExtensions returns all registered custom extensions, sorted by
// (vendor, subtype) for deterministic iteration.
func (r *Registry) CustomExtensions() []*CustomExtension {
	out := append([]*CustomExtension(nil), r.customExtensions...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].VendorID != out[j].VendorID {
			return out[i].VendorID < out[j].VendorID
		}
		return out[i].Subtype < out[j].Subtype
	})
	return out
}
