package llrpsession

import (
	"context"
	"fmt"

	"github.com/openllrp/llrp/pkg/llrptlv"
)

// idMessage sends the message named specName carrying a single u32 ID
// field, the shape shared by every ROSpec/AccessSpec lifecycle message
// except the ADD variants, which instead carry a full spec
// sub-parameter (Spec 4.6 "ROSpec lifecycle").
func (s *Session) idMessage(ctx context.Context, specName, fieldName string, id uint32) (*llrptlv.Message, error) {
	spec, ok := s.reg.Messages[specName]
	if !ok {
		return nil, fmt.Errorf("llrpsession: registry has no %s message", specName)
	}
	req := llrptlv.NewMessage(spec, 0, map[string]llrptlv.Value{
		fieldName: llrptlv.Uint(uint64(id)),
	})
	return s.Transact(ctx, req)
}

// AddROSpec sends ADD_ROSPEC carrying roSpec and returns the reader's
// ADD_ROSPEC_RESPONSE.
func (s *Session) AddROSpec(ctx context.Context, roSpec *llrptlv.Parameter) (*llrptlv.Message, error) {
	spec, ok := s.reg.Messages["ADD_ROSPEC"]
	if !ok {
		return nil, fmt.Errorf("llrpsession: registry has no ADD_ROSPEC message")
	}
	req := llrptlv.NewMessage(spec, 0, nil, roSpec)
	return s.Transact(ctx, req)
}

// DeleteROSpec sends DELETE_ROSPEC for roSpecID.
func (s *Session) DeleteROSpec(ctx context.Context, roSpecID uint32) (*llrptlv.Message, error) {
	return s.idMessage(ctx, "DELETE_ROSPEC", "ROSpecID", roSpecID)
}

// StartROSpec sends START_ROSPEC for roSpecID.
func (s *Session) StartROSpec(ctx context.Context, roSpecID uint32) (*llrptlv.Message, error) {
	return s.idMessage(ctx, "START_ROSPEC", "ROSpecID", roSpecID)
}

// StopROSpec sends STOP_ROSPEC for roSpecID.
func (s *Session) StopROSpec(ctx context.Context, roSpecID uint32) (*llrptlv.Message, error) {
	return s.idMessage(ctx, "STOP_ROSPEC", "ROSpecID", roSpecID)
}

// EnableROSpec sends ENABLE_ROSPEC for roSpecID.
func (s *Session) EnableROSpec(ctx context.Context, roSpecID uint32) (*llrptlv.Message, error) {
	return s.idMessage(ctx, "ENABLE_ROSPEC", "ROSpecID", roSpecID)
}

// DisableROSpec sends DISABLE_ROSPEC for roSpecID.
func (s *Session) DisableROSpec(ctx context.Context, roSpecID uint32) (*llrptlv.Message, error) {
	return s.idMessage(ctx, "DISABLE_ROSPEC", "ROSpecID", roSpecID)
}

// AddAccessSpec sends ADD_ACCESSSPEC carrying accessSpec and returns the
// reader's ADD_ACCESSSPEC_RESPONSE.
func (s *Session) AddAccessSpec(ctx context.Context, accessSpec *llrptlv.Parameter) (*llrptlv.Message, error) {
	spec, ok := s.reg.Messages["ADD_ACCESSSPEC"]
	if !ok {
		return nil, fmt.Errorf("llrpsession: registry has no ADD_ACCESSSPEC message")
	}
	req := llrptlv.NewMessage(spec, 0, nil, accessSpec)
	return s.Transact(ctx, req)
}

// DeleteAccessSpec sends DELETE_ACCESSSPEC for accessSpecID.
func (s *Session) DeleteAccessSpec(ctx context.Context, accessSpecID uint32) (*llrptlv.Message, error) {
	return s.idMessage(ctx, "DELETE_ACCESSSPEC", "AccessSpecID", accessSpecID)
}

// EnableAccessSpec sends ENABLE_ACCESSSPEC for accessSpecID.
func (s *Session) EnableAccessSpec(ctx context.Context, accessSpecID uint32) (*llrptlv.Message, error) {
	return s.idMessage(ctx, "ENABLE_ACCESSSPEC", "AccessSpecID", accessSpecID)
}

// DisableAccessSpec sends DISABLE_ACCESSSPEC for accessSpecID.
func (s *Session) DisableAccessSpec(ctx context.Context, accessSpecID uint32) (*llrptlv.Message, error) {
	return s.idMessage(ctx, "DISABLE_ACCESSSPEC", "AccessSpecID", accessSpecID)
}
