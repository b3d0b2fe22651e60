package llrpspec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// Load materializes a Registry from a pre-compiled artifact written by
// Save (Spec 4.1, 6). The artifact format is a gob encoding of
// RawRegistry: the loader's own type graph, so the artifact schema and
// the loader's types are identical by construction. Load fails fatally
// (returns a non-nil *SpecError-wrapping error) on a missing reference
// or a duplicate type number; callers should treat a Load failure as a
// program-build error, not a runtime condition to retry.
func Load(r io.Reader) (*Registry, error) {
	var raw RawRegistry
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("llrpspec: decode artifact: %w", err)
	}
	return Build(&raw)
}

// Save serializes raw to the artifact format Load expects. This is the
// entry point the out-of-scope offline XML compiler would call; it is
// exposed here so tests and the built-in fixture can round-trip through
// the same artifact encoding the runtime loader uses.
func Save(w io.Writer, raw *RawRegistry) error {
	enc := gob.NewEncoder(w)
	return enc.Encode(raw)
}

// MustLoadBytes is a convenience wrapper for embedding a fixed artifact
// blob (e.g. via go:embed) and panicking on a malformed build — mirrors
// the fatal-at-load contract of Spec 4.1.
func MustLoadBytes(b []byte) *Registry {
	reg, err := Load(bytes.NewReader(b))
	if err != nil {
		panic(err)
	}
	return reg
}
